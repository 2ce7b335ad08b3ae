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

package vecindex

import (
	"encoding/binary"

	"github.com/pierrec/lz4/v4"

	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/sumcheck"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// engineMagic/engineVersion frame the vec-segment blob written to the
// commit's append-only payload region (SPEC_FULL.md §11 wires
// github.com/pierrec/lz4/v4 into vector-segment blob compression). Layout:
// magic, version(u32), compression(u8), dimension(u32), vectorCount(u32),
// rawLen(u32), lz4Flag(u8), payload.
const (
	engineMagic   = "MVVECS1\x00"
	engineVersion = uint32(1)
)

// Len reports the number of vectors carried by the segment.
func (e *Engine) Len() int {
	if e.Compression == model.CompressionPQ96 {
		return len(e.PQ.Codes)
	}
	return len(e.Flat.Records)
}

// Encode serializes the segment for the vec-segment catalog. PQ96-backed
// engines encode codes only (PQ96.Encode never carries the trained
// codebooks, see pq96.go) so the blob is write-only: it round-trips for
// checksum/audit purposes but DecodeFlatSegment refuses to reconstruct a
// searchable engine from it. Flat-backed engines fully round-trip.
func (e *Engine) Encode() []byte {
	var raw []byte
	if e.Compression == model.CompressionPQ96 {
		raw = e.PQ.Encode()
	} else {
		raw = e.Flat.Encode()
	}
	payload, compressed := lz4CompressBytes(raw)

	buf := make([]byte, 0, len(engineMagic)+18+len(payload))
	buf = append(buf, engineMagic...)
	var h [4]byte
	binary.LittleEndian.PutUint32(h[:], engineVersion)
	buf = append(buf, h[:]...)
	buf = append(buf, byte(e.Compression))
	binary.LittleEndian.PutUint32(h[:], uint32(e.Dimension))
	buf = append(buf, h[:]...)
	binary.LittleEndian.PutUint32(h[:], uint32(e.Len()))
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

// Checksum is the BLAKE3 of the encoded segment.
func (e *Engine) Checksum() [32]byte { return sumcheck.Sum256(e.Encode()) }

// DecodeFlatSegment reverses Encode for CompressionNone (Flat-backed)
// segments. PQ96-backed segments are write-only (see Encode) and yield a
// schema error here; callers that only need the catalog descriptor (not a
// searchable engine) should decode the header fields directly instead.
func DecodeFlatSegment(buf []byte, metric Metric) (*Engine, error) {
	const headerLen = len(engineMagic) + 18
	if len(buf) < headerLen {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "vecindex.DecodeFlatSegment", "short segment: %d bytes", len(buf))
	}
	if string(buf[:len(engineMagic)]) != engineMagic {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "vecindex.DecodeFlatSegment", "bad magic")
	}
	pos := len(engineMagic)
	version := binary.LittleEndian.Uint32(buf[pos : pos+4])
	pos += 4
	if version != engineVersion {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "vecindex.DecodeFlatSegment", "unsupported segment version %d", version)
	}
	compression := model.Compression(buf[pos])
	pos++
	dimension := int(binary.LittleEndian.Uint32(buf[pos : pos+4]))
	pos += 4
	pos += 4 // vectorCount, recomputed from the decoded records
	rawLen := binary.LittleEndian.Uint32(buf[pos : pos+4])
	pos += 4
	compressed := buf[pos] == 1
	pos++

	if compression != model.CompressionNone {
		return nil, vaulterr.Newf(vaulterr.KindSchema, "vecindex.DecodeFlatSegment", "PQ96-backed vec segments are write-only (codebooks are not persisted)")
	}

	raw, err := lz4DecompressBytes(buf[pos:], int(rawLen), compressed)
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindIntegrity, "vecindex.DecodeFlatSegment", err)
	}
	flat, err := decodeFlat(raw, metric, dimension)
	if err != nil {
		return nil, err
	}
	return &Engine{Compression: model.CompressionNone, Flat: flat, Dimension: dimension}, nil
}

// lz4CompressBytes/lz4DecompressBytes mirror timeindex's lz4 block-format
// helpers (see internal/timeindex/timeindex.go), falling back to storing
// the raw payload when lz4 reports it as incompressible.
func lz4CompressBytes(raw []byte) (out []byte, compressed bool) {
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

func lz4DecompressBytes(buf []byte, rawLen int, compressed bool) ([]byte, error) {
	if !compressed {
		if len(buf) != rawLen {
			return nil, vaulterr.Newf(vaulterr.KindIntegrity, "vecindex.lz4DecompressBytes", "stored block has %d bytes, want %d", len(buf), rawLen)
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
