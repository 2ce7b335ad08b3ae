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

package vault

import (
	"time"

	"github.com/launix-de/memvault/internal/consolidate"
	"github.com/launix-de/memvault/internal/frame"
	"github.com/launix-de/memvault/internal/memorycard"
	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/replay"
	"github.com/launix-de/memvault/internal/ticket"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// PutOptions re-exports frame.PutOptions so callers never import internal/
// packages directly.
type PutOptions = frame.PutOptions

// PutResult re-exports frame.PutResult.
type PutResult = frame.PutResult

// Put runs the full normalize/chunk/consolidate/write pipeline on raw bytes
// and enqueues the new frame for background enrichment. The frame is durable
// only after the next Commit.
func (v *Vault) Put(raw []byte, opts PutOptions) (PutResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if opts.Track == "" {
		opts.Track = v.opts.DefaultTrack
	}

	if v.toc.TicketRef.Present {
		if err := ticket.Admit(v.toc.TicketRef, v.dataEnd, uint64(len(raw)), v.opts.now()); err != nil {
			return PutResult{}, err
		}
	}

	started := time.Now()
	result, err := v.store().Put(raw, opts)
	if err == nil && result.Decision != consolidate.Noop && len(opts.Embedding) > 0 {
		v.pendingEmbeddings[result.FrameID] = opts.Embedding
	}
	v.recordAction(replay.ActionType{Kind: replay.ActionPut, FrameID: result.FrameID}, raw, nil, []uint64{result.FrameID}, started)
	return result, err
}

// Update forces the new frame to supersede id regardless of the
// consolidation gate's own similarity decision, per spec.md §4.2 ("Update is
// the same pipeline but preserves supersedes/superseded_by links").
func (v *Vault) Update(id uint64, raw []byte, opts PutOptions) (PutResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	old := v.toc.FrameByID(id)
	if old == nil || old.Status != model.StatusActive {
		return PutResult{}, vaulterr.Newf(vaulterr.KindSchema, "vault.Update", "no active frame %d", id)
	}
	if opts.Track == "" {
		opts.Track = old.Track
	}

	started := time.Now()
	result, err := v.store().Put(raw, opts)
	if err != nil {
		return PutResult{}, err
	}

	if result.Decision != consolidate.Noop && old.Status == model.StatusActive {
		newF := v.toc.FrameByID(result.FrameID)
		old.Status = model.StatusSuperseded
		old.HasSuperseded = true
		old.SupersededBy = result.FrameID
		newF.HasSupersedes = true
		newF.Supersedes = old.ID
		if newF.ExtraMetadata == nil {
			newF.ExtraMetadata = map[string]string{}
		}
		if _, seen := newF.ExtraMetadata["supersedes_id"]; !seen {
			newF.ExtraMetaOrder = append(newF.ExtraMetaOrder, "supersedes_id")
		}
		newF.ExtraMetadata["supersedes_id"] = uint64ToString(old.ID)
		result.Decision = consolidate.Update
		result.SupersededID = old.ID
	}

	v.recordAction(replay.ActionType{Kind: replay.ActionUpdate, FrameID: result.FrameID}, raw, nil, []uint64{id, result.FrameID}, started)
	return result, nil
}

// Delete flips the frame's status to Deleted without touching payload bytes.
func (v *Vault) Delete(id uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	started := time.Now()
	err := v.store().Delete(id)
	v.sk.Remove(id)
	v.payloadCache.Remove(id)
	v.recordAction(replay.ActionType{Kind: replay.ActionDelete, FrameID: id}, nil, nil, []uint64{id}, started)
	return err
}

// PutMemoryCard appends a structured fact to the optional memories track;
// durable only after the next Commit.
func (v *Vault) PutMemoryCard(c model.MemoryCard) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cards = append(v.cards, c)
	v.cards = memorycard.Reduce(v.cards)
}

func (v *Vault) recordAction(a replay.ActionType, input, output []byte, affected []uint64, started time.Time) {
	if v.recorder == nil {
		return
	}
	v.recorder.Record(a, input, output, affected, uint64(time.Since(started).Milliseconds()))
}

func uint64ToString(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
