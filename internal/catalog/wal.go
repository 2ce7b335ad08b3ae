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

// Package catalog implements the segment catalog and the crash-safe
// manifest WAL described in spec.md §4.8, plus the parallel segment-builder
// worker pool.
package catalog

import (
	"encoding/binary"

	"github.com/launix-de/memvault/internal/format"
	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/sumcheck"
	"github.com/launix-de/memvault/internal/vaulterr"
)

const (
	walMagic      = "MVSGWAL1"
	walHeaderSize = len(walMagic) + 4
	// MaxWALRecordBytes bounds a single WAL payload; 0 or >4MiB is a hard
	// corruption signal per spec.md §4.8.
	MaxWALRecordBytes = 4 * 1024 * 1024
)

// WAL is the in-file, append-only manifest WAL.
type WAL struct {
	Version uint32
	Records []model.IndexSegmentRef
}

// NewWAL returns an empty WAL at the current format version.
func NewWAL() *WAL { return &WAL{Version: 1} }

// Append adds a pending segment ref.
func (w *WAL) Append(ref model.IndexSegmentRef) { w.Records = append(w.Records, ref) }

// Encode serializes the WAL: header "MVSGWAL1"+version, then records
// [u32 len | 32-byte BLAKE3(payload) | bincode payload].
func (w *WAL) Encode() []byte {
	buf := make([]byte, 0, walHeaderSize+len(w.Records)*128)
	buf = append(buf, walMagic...)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], w.Version)
	buf = append(buf, tmp[:]...)

	for _, rec := range w.Records {
		payload := encodeRef(rec)
		sum := sumcheck.Sum256(payload)
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(payload)))
		buf = append(buf, tmp[:]...)
		buf = append(buf, sum[:]...)
		buf = append(buf, payload...)
	}
	return buf
}

func encodeRef(ref model.IndexSegmentRef) []byte {
	w := format.NewWriter()
	w.Str(ref.Catalog)
	w.U64(ref.Desc.SegmentID)
	w.U64(ref.Desc.BytesOffset)
	w.U64(ref.Desc.BytesLength)
	w.Fixed32(ref.Desc.Checksum)
	w.Bool(ref.Desc.Span.HasSpan)
	w.U64(ref.Desc.Span.FrameStart)
	w.U64(ref.Desc.Span.FrameEnd)
	w.I32(int32(ref.Desc.Span.PageStart))
	w.I32(int32(ref.Desc.Span.PageEnd))
	w.I32(int32(ref.Desc.Span.TokenStart))
	w.I32(int32(ref.Desc.Span.TokenEnd))
	w.I32(int32(ref.Desc.Dimension))
	w.I32(int32(ref.Desc.VectorCount))
	w.U8(uint8(ref.Desc.Compression))
	return w.Bytes()
}

func decodeRef(buf []byte) model.IndexSegmentRef {
	r := format.NewReader(buf)
	var ref model.IndexSegmentRef
	ref.Catalog = r.Str()
	ref.Desc.SegmentID = r.U64()
	ref.Desc.BytesOffset = r.U64()
	ref.Desc.BytesLength = r.U64()
	ref.Desc.Checksum = r.Fixed32()
	ref.Desc.Span.HasSpan = r.Bool()
	ref.Desc.Span.FrameStart = r.U64()
	ref.Desc.Span.FrameEnd = r.U64()
	ref.Desc.Span.PageStart = int(r.I32())
	ref.Desc.Span.PageEnd = int(r.I32())
	ref.Desc.Span.TokenStart = int(r.I32())
	ref.Desc.Span.TokenEnd = int(r.I32())
	ref.Desc.Dimension = int(r.I32())
	ref.Desc.VectorCount = int(r.I32())
	ref.Desc.Compression = model.Compression(r.U8())
	return ref
}

// DecodeWAL scans buf front-to-back, truncating at the first partial,
// checksum-failed, or over-long record (spec.md §4.8 crash recovery).
func DecodeWAL(buf []byte) (*WAL, int, error) {
	if len(buf) < walHeaderSize {
		return nil, 0, vaulterr.Newf(vaulterr.KindFormat, "catalog.DecodeWAL", "short wal header")
	}
	if string(buf[:len(walMagic)]) != walMagic {
		return nil, 0, vaulterr.Newf(vaulterr.KindFormat, "catalog.DecodeWAL", "bad wal magic")
	}
	version := binary.LittleEndian.Uint32(buf[len(walMagic):walHeaderSize])
	w := &WAL{Version: version}

	pos := walHeaderSize
	for pos+4+32 <= len(buf) {
		recLen := int(binary.LittleEndian.Uint32(buf[pos : pos+4]))
		if recLen == 0 || recLen > MaxWALRecordBytes {
			break
		}
		recStart := pos + 4 + 32
		if recStart+recLen > len(buf) {
			break // partial record
		}
		var sum [32]byte
		copy(sum[:], buf[pos+4:pos+4+32])
		payload := buf[recStart : recStart+recLen]
		if sumcheck.Sum256(payload) != sum {
			break // checksum-failed record
		}
		w.Records = append(w.Records, decodeRef(payload))
		pos = recStart + recLen
	}
	return w, pos, nil
}

// Truncate resets the WAL back to just its header, called after the TOC
// has been persisted and the WAL's pending segments are now redundant.
func (w *WAL) Truncate() { w.Records = nil }
