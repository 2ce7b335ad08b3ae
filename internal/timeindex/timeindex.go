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

// Package timeindex implements the sorted (timestamp, frame_id) time index
// and the optional temporal track of mentions/anchors (spec.md §4.6),
// grounded on the teacher's google/btree-backed StorageIndex
// (storage/index.go).
package timeindex

import (
	"encoding/binary"

	"github.com/google/btree"
	"github.com/pierrec/lz4/v4"

	"github.com/launix-de/memvault/internal/sumcheck"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// Entry is one (timestamp, frame_id) record.
type Entry struct {
	Timestamp int64
	FrameID   uint64
}

func less(a, b Entry) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	return a.FrameID < b.FrameID
}

// Index is the sorted time index: a btree for ordered insert plus a flat
// sorted slice for binary-search windowing once built.
type Index struct {
	tree    *btree.BTreeG[Entry]
	entries []Entry
	built   bool
}

func New() *Index {
	return &Index{tree: btree.NewG(32, less)}
}

// Add inserts an entry and marks the flat slice stale; the next Window or
// Encode call rebuilds it.
func (idx *Index) Add(ts int64, frameID uint64) {
	idx.tree.ReplaceOrInsert(Entry{Timestamp: ts, FrameID: frameID})
	idx.built = false
}

// Build flattens the tree into a sorted slice for binary-search windowing.
func (idx *Index) Build() {
	idx.entries = idx.entries[:0]
	idx.tree.Ascend(func(e Entry) bool {
		idx.entries = append(idx.entries, e)
		return true
	})
	idx.built = true
}

// Window returns the entries with startUTC <= ts <= endUTC, located via
// binary search partition points as the slice [lower, upper).
func (idx *Index) Window(startUTC, endUTC int64) []Entry {
	if !idx.built {
		idx.Build()
	}
	lower := lowerBound(idx.entries, startUTC)
	upper := upperBound(idx.entries, endUTC)
	if lower >= upper {
		return nil
	}
	return idx.entries[lower:upper]
}

func lowerBound(entries []Entry, ts int64) int {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if entries[mid].Timestamp < ts {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func upperBound(entries []Entry, ts int64) int {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if entries[mid].Timestamp <= ts {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Len reports the number of entries.
func (idx *Index) Len() int { return idx.tree.Len() }

// Encode serializes the index as a single segment: header (magic, version,
// entry_count, raw_len, lz4_flag) followed by the packed (ts i64, frame_id
// u64) records, lz4-block-compressed when that shrinks the payload
// (SPEC_FULL.md §11 wires github.com/pierrec/lz4/v4 into time-segment blob
// compression). segmentVersion 2 adds the lz4 framing over the original
// uncompressed v1 layout.
const (
	segmentMagic   = "MVTIDX1\x00"
	segmentVersion = uint32(2)
)

func (idx *Index) Encode() []byte {
	if !idx.built {
		idx.Build()
	}
	raw := make([]byte, 0, len(idx.entries)*16)
	var tmp [8]byte
	for _, e := range idx.entries {
		binary.LittleEndian.PutUint64(tmp[:8], uint64(e.Timestamp))
		raw = append(raw, tmp[:8]...)
		binary.LittleEndian.PutUint64(tmp[:8], e.FrameID)
		raw = append(raw, tmp[:8]...)
	}
	payload, compressed := lz4CompressBlock(raw)

	buf := make([]byte, 0, len(segmentMagic)+13+len(payload))
	buf = append(buf, segmentMagic...)
	var h [4]byte
	binary.LittleEndian.PutUint32(h[:], segmentVersion)
	buf = append(buf, h[:]...)
	binary.LittleEndian.PutUint32(h[:], uint32(len(idx.entries)))
	buf = append(buf, h[:]...)
	binary.LittleEndian.PutUint32(h[:], uint32(len(raw)))
	buf = append(buf, h[:]...)
	if compressed {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, payload...)
	return buf
}

// Decode parses a segment produced by Encode, validating strict ordering.
func Decode(buf []byte) (*Index, error) {
	const headerLen = len(segmentMagic) + 13
	if len(buf) < headerLen {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "timeindex.Decode", "short segment: %d bytes", len(buf))
	}
	if string(buf[:len(segmentMagic)]) != segmentMagic {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "timeindex.Decode", "bad magic")
	}
	pos := len(segmentMagic)
	version := binary.LittleEndian.Uint32(buf[pos : pos+4])
	pos += 4
	if version != segmentVersion {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "timeindex.Decode", "unsupported segment version %d", version)
	}
	count := binary.LittleEndian.Uint32(buf[pos : pos+4])
	pos += 4
	rawLen := binary.LittleEndian.Uint32(buf[pos : pos+4])
	pos += 4
	compressed := buf[pos] == 1
	pos++

	raw, err := lz4DecompressBlock(buf[pos:], int(rawLen), compressed)
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindIntegrity, "timeindex.Decode", err)
	}

	idx := New()
	var prev Entry
	have := false
	rpos := 0
	for i := uint32(0); i < count; i++ {
		if rpos+16 > len(raw) {
			return nil, vaulterr.Newf(vaulterr.KindIntegrity, "timeindex.Decode", "truncated entry %d", i)
		}
		ts := int64(binary.LittleEndian.Uint64(raw[rpos : rpos+8]))
		id := binary.LittleEndian.Uint64(raw[rpos+8 : rpos+16])
		rpos += 16
		e := Entry{Timestamp: ts, FrameID: id}
		if have && less(e, prev) {
			return nil, vaulterr.Newf(vaulterr.KindIntegrity, "timeindex.Decode", "ordering violation at entry %d", i)
		}
		idx.Add(ts, id)
		prev = e
		have = true
	}
	idx.Build()
	return idx, nil
}

// lz4CompressBlock compresses raw with the LZ4 block format, falling back
// to storing it uncompressed when lz4 reports the input as incompressible
// (small or high-entropy payloads).
func lz4CompressBlock(raw []byte) (out []byte, compressed bool) {
	if len(raw) == 0 {
		return nil, false
	}
	dst := make([]byte, lz4.CompressBlockBound(len(raw)))
	var c lz4.Compressor
	n, err := c.CompressBlock(raw, dst)
	if err != nil || n == 0 {
		return raw, false
	}
	return dst[:n], true
}

// lz4DecompressBlock reverses lz4CompressBlock; when compressed is false it
// just validates buf is exactly rawLen bytes (catches truncation).
func lz4DecompressBlock(buf []byte, rawLen int, compressed bool) ([]byte, error) {
	if !compressed {
		if len(buf) != rawLen {
			return nil, vaulterr.Newf(vaulterr.KindIntegrity, "timeindex.lz4DecompressBlock", "stored block has %d bytes, want %d", len(buf), rawLen)
		}
		return buf, nil
	}
	dst := make([]byte, rawLen)
	n, err := lz4.UncompressBlock(buf, dst)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// Checksum is the BLAKE3 of the encoded segment.
func (idx *Index) Checksum() [32]byte { return sumcheck.Sum256(idx.Encode()) }
