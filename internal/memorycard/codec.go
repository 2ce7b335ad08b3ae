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

package memorycard

import (
	"encoding/binary"

	"github.com/klauspost/compress/zstd"
	"github.com/launix-de/memvault/internal/format"
	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/vaulterr"
)

const (
	blobMagic   = "MVMC"
	blobVersion = uint16(1)
	maxCards    = 5_000_000
)

// Encode serializes cards as magic + version + u64 payload_len +
// zstd(bincode(cards)), matching the mesh track's on-disk shape (internal/
// mesh/codec.go) since both are optional TOC-located sidecar blobs.
func Encode(cards []model.MemoryCard) ([]byte, error) {
	w := format.NewWriter()
	w.U32(uint32(len(cards)))
	for _, c := range cards {
		w.U64(c.ID)
		w.U64(c.FrameID)
		w.Str(c.Summary)
		w.U8(c.Kind)
		w.Str(c.Entity)
		w.Str(c.Slot)
		w.Str(c.Value)
		w.I8(c.Polarity)
		w.I64(c.EventDate)
		w.I64(c.DocumentDate)
		w.Str(c.VersionKey)
		w.U8(c.VersionRelation)
		w.Str(c.SourceURI)
		w.Str(c.Engine)
		w.Str(c.EngineVer)
		w.F32(c.Confidence)
		w.I64(c.CreatedAtUnix)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindResource, "memorycard.Encode", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(w.Bytes(), nil)

	out := make([]byte, 0, len(blobMagic)+2+8+len(compressed))
	out = append(out, blobMagic...)
	var tmp [8]byte
	binary.LittleEndian.PutUint16(tmp[:2], blobVersion)
	out = append(out, tmp[:2]...)
	binary.LittleEndian.PutUint64(tmp[:8], uint64(len(compressed)))
	out = append(out, tmp[:8]...)
	out = append(out, compressed...)
	return out, nil
}

// Decode parses a blob produced by Encode.
func Decode(buf []byte) (cards []model.MemoryCard, err error) {
	defer func() {
		if r := recover(); r != nil {
			cards, err = nil, vaulterr.Newf(vaulterr.KindFormat, "memorycard.Decode", "%v", r)
		}
	}()

	if len(buf) < len(blobMagic)+2+8 {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "memorycard.Decode", "short blob")
	}
	if string(buf[:len(blobMagic)]) != blobMagic {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "memorycard.Decode", "bad magic")
	}
	pos := len(blobMagic)
	_ = binary.LittleEndian.Uint16(buf[pos : pos+2])
	pos += 2
	payloadLen := binary.LittleEndian.Uint64(buf[pos : pos+8])
	pos += 8
	if uint64(len(buf)-pos) < payloadLen {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "memorycard.Decode", "truncated payload")
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindResource, "memorycard.Decode", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(buf[pos:pos+int(payloadLen)], nil)
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindIntegrity, "memorycard.Decode", err)
	}

	r := format.NewReader(raw)
	n := int(r.U32())
	if n > maxCards {
		return nil, vaulterr.Newf(vaulterr.KindIntegrity, "memorycard.Decode", "card count %d exceeds limit", n)
	}
	cards = make([]model.MemoryCard, n)
	for i := range cards {
		cards[i] = model.MemoryCard{
			ID:              r.U64(),
			FrameID:         r.U64(),
			Summary:         r.Str(),
			Kind:            r.U8(),
			Entity:          r.Str(),
			Slot:            r.Str(),
			Value:           r.Str(),
			Polarity:        r.I8(),
			EventDate:       r.I64(),
			DocumentDate:    r.I64(),
			VersionKey:      r.Str(),
			VersionRelation: r.U8(),
			SourceURI:       r.Str(),
			Engine:          r.Str(),
			EngineVer:       r.Str(),
			Confidence:      r.F32(),
			CreatedAtUnix:   r.I64(),
		}
	}
	return cards, nil
}
