/*
Copyright (C) 2023-2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package ticket implements the capacity-admission gate: an optional,
// sequence-numbered grant of storage capacity that a vault can be bound to,
// with an Ed25519-signed variant for tamper-evident issuance by an external
// control plane (spec.md §12, grounded on aethervault's vault/ticket.rs).
package ticket

import (
	"crypto/ed25519"
	"github.com/google/uuid"
	"github.com/launix-de/memvault/internal/format"
	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// Ticket is an unsigned capacity grant, applied directly by a caller that
// already trusts its source (e.g. a local CLI flag).
type Ticket struct {
	Issuer        string
	SeqNo         uint64
	ExpiresInSecs uint64
	CapacityBytes uint64 // 0 means "no capacity stated"
}

// SignedTicket is a capacity grant whose authenticity is verified against a
// known Ed25519 public key before it is applied.
type SignedTicket struct {
	Issuer        string
	SeqNo         uint64
	ExpiresInSecs uint64
	CapacityBytes uint64
	MemoryID      uuid.UUID
	Signature     []byte
}

// signedMessage builds the canonical byte sequence a SignedTicket's
// signature is computed over: memory id, issuer, seq_no, expires_in_secs,
// capacity_bytes, in that fixed order, using the vault's own deterministic
// binary encoder so producer and verifier never disagree on layout.
func signedMessage(memoryID uuid.UUID, issuer string, seqNo, expiresInSecs, capacityBytes uint64) []byte {
	w := format.NewWriter()
	idBytes, _ := memoryID.MarshalBinary()
	w.Raw(idBytes)
	w.Str(issuer)
	w.U64(seqNo)
	w.U64(expiresInSecs)
	w.U64(capacityBytes)
	return w.Bytes()
}

// VerifySignature checks t's signature against pubKey, without regard to
// replay protection (sequence numbers are checked separately by Apply since
// that requires the vault's current state).
func (t SignedTicket) VerifySignature(pubKey ed25519.PublicKey) error {
	msg := signedMessage(t.MemoryID, t.Issuer, t.SeqNo, t.ExpiresInSecs, t.CapacityBytes)
	if !ed25519.Verify(pubKey, msg, t.Signature) {
		return vaulterr.Newf(vaulterr.KindSchema, "ticket.VerifySignature", "signature does not verify")
	}
	return nil
}

// Apply validates and folds an unsigned ticket into ref, enforcing the
// monotonically-increasing sequence number (replay protection). The caller
// is responsible for persisting the returned TicketRef into the TOC.
func Apply(ref model.TicketRef, t Ticket, now int64) (model.TicketRef, error) {
	if t.SeqNo <= ref.SeqNo {
		return ref, vaulterr.Newf(vaulterr.KindSchema, "ticket.Apply", "ticket sequence %d must exceed current %d", t.SeqNo, ref.SeqNo)
	}
	return model.TicketRef{
		Present:       true,
		TicketID:      uuid.New().String(),
		GrantedBytes:  t.CapacityBytes,
		IssuedAtUnix:  now,
		Issuer:        t.Issuer,
		SeqNo:         t.SeqNo,
		ExpiresInSecs: t.ExpiresInSecs,
		Verified:      false,
	}, nil
}

// ApplySigned validates a SignedTicket's signature and sequence number,
// binds it to the given memory id, and folds it into ref.
func ApplySigned(ref model.TicketRef, t SignedTicket, pubKey ed25519.PublicKey, boundMemoryID uuid.UUID, now int64) (model.TicketRef, error) {
	if t.MemoryID != boundMemoryID {
		return ref, vaulterr.Newf(vaulterr.KindSchema, "ticket.ApplySigned", "ticket memory id %s does not match bound id %s", t.MemoryID, boundMemoryID)
	}
	if err := t.VerifySignature(pubKey); err != nil {
		return ref, err
	}
	if t.SeqNo <= ref.SeqNo {
		return ref, vaulterr.Newf(vaulterr.KindSchema, "ticket.ApplySigned", "ticket sequence %d must exceed current %d", t.SeqNo, ref.SeqNo)
	}
	return model.TicketRef{
		Present:       true,
		TicketID:      uuid.New().String(),
		GrantedBytes:  t.CapacityBytes,
		IssuedAtUnix:  now,
		Issuer:        t.Issuer,
		SeqNo:         t.SeqNo,
		ExpiresInSecs: t.ExpiresInSecs,
		Verified:      true,
	}, nil
}
