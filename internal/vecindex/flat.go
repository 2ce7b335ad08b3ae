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

// Package vecindex implements the flat and Product-Quantized (Pq96) vector
// index variants described in spec.md §4.5.
package vecindex

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/launix-de/memvault/internal/vaulterr"
)

// Metric selects the flat index's distance function.
type Metric int

const (
	Cosine Metric = iota
	L2
)

// Record is one (frame_id, embedding) pair.
type Record struct {
	FrameID   uint64
	Embedding []float32
}

// Flat is a brute-force vector index.
type Flat struct {
	Dimension int
	Records   []Record
	Metric    Metric
}

// NewFlat constructs an empty flat index with the dimension fixed by the
// first inserted vector (spec.md §4.5 dimension invariant).
func NewFlat(metric Metric) *Flat {
	return &Flat{Metric: metric}
}

// Add inserts a vector, enforcing the dimension invariant.
func (f *Flat) Add(id uint64, emb []float32) error {
	if f.Dimension == 0 {
		f.Dimension = len(emb)
	} else if len(emb) != f.Dimension {
		return vaulterr.Newf(vaulterr.KindSchema, "vecindex.Flat.Add", "dimension mismatch: expected %d, actual %d", f.Dimension, len(emb))
	}
	f.Records = append(f.Records, Record{FrameID: id, Embedding: emb})
	return nil
}

// ScoredHit is a ranked vector search result; Score is similarity (higher
// is better) regardless of the underlying metric.
type ScoredHit struct {
	FrameID uint64
	Score   float64
}

// Search returns the top_k nearest records to query.
func (f *Flat) Search(query []float32, topK int) ([]ScoredHit, error) {
	if f.Dimension != 0 && len(query) != f.Dimension {
		return nil, vaulterr.Newf(vaulterr.KindSchema, "vecindex.Flat.Search", "dimension mismatch: expected %d, actual %d", f.Dimension, len(query))
	}
	hits := make([]ScoredHit, 0, len(f.Records))
	for _, r := range f.Records {
		var score float64
		switch f.Metric {
		case Cosine:
			score = cosineSim(query, r.Embedding)
		default:
			score = -l2Dist(query, r.Embedding)
		}
		hits = append(hits, ScoredHit{FrameID: r.FrameID, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].FrameID < hits[j].FrameID
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func cosineSim(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func l2Dist(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Encode packs records in insertion order as (frame_id u64, dimension*f32),
// the raw payload an Engine then lz4-compresses for its segment blob (see
// engine_codec.go).
func (f *Flat) Encode() []byte {
	buf := make([]byte, 0, len(f.Records)*(8+f.Dimension*4))
	var idBuf [8]byte
	var fBuf [4]byte
	for _, r := range f.Records {
		binary.LittleEndian.PutUint64(idBuf[:], r.FrameID)
		buf = append(buf, idBuf[:]...)
		for _, v := range r.Embedding {
			binary.LittleEndian.PutUint32(fBuf[:], math.Float32bits(v))
			buf = append(buf, fBuf[:]...)
		}
	}
	return buf
}

// decodeFlat reverses Encode given the dimension carried by the segment
// descriptor.
func decodeFlat(raw []byte, metric Metric, dimension int) (*Flat, error) {
	f := NewFlat(metric)
	f.Dimension = dimension
	if dimension == 0 {
		if len(raw) != 0 {
			return nil, vaulterr.Newf(vaulterr.KindFormat, "vecindex.decodeFlat", "non-empty payload with zero dimension")
		}
		return f, nil
	}
	recSize := 8 + dimension*4
	if len(raw)%recSize != 0 {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "vecindex.decodeFlat", "payload length %d not a multiple of record size %d", len(raw), recSize)
	}
	for pos := 0; pos < len(raw); pos += recSize {
		id := binary.LittleEndian.Uint64(raw[pos : pos+8])
		emb := make([]float32, dimension)
		for d := 0; d < dimension; d++ {
			off := pos + 8 + d*4
			emb[d] = math.Float32frombits(binary.LittleEndian.Uint32(raw[off : off+4]))
		}
		f.Records = append(f.Records, Record{FrameID: id, Embedding: emb})
	}
	return f, nil
}
