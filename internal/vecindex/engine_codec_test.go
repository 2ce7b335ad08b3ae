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
	"testing"

	"github.com/launix-de/memvault/internal/model"
)

func flatEngineFixture(t *testing.T) *Engine {
	t.Helper()
	records := []Record{
		{FrameID: 1, Embedding: []float32{1, 0, 0}},
		{FrameID: 2, Embedding: []float32{0, 1, 0}},
		{FrameID: 3, Embedding: []float32{0, 0, 1}},
	}
	e, err := BuildEngine(records, false, Cosine, nil)
	if err != nil {
		t.Fatalf("BuildEngine: %v", err)
	}
	return e
}

func TestEngineEncodeDecodeFlatRoundTrip(t *testing.T) {
	e := flatEngineFixture(t)
	blob := e.Encode()

	got, err := DecodeFlatSegment(blob, Cosine)
	if err != nil {
		t.Fatalf("DecodeFlatSegment: %v", err)
	}
	if got.Len() != e.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), e.Len())
	}
	if got.Dimension != e.Dimension {
		t.Fatalf("Dimension = %d, want %d", got.Dimension, e.Dimension)
	}
	for i, r := range e.Flat.Records {
		gr := got.Flat.Records[i]
		if gr.FrameID != r.FrameID {
			t.Fatalf("record %d: FrameID = %d, want %d", i, gr.FrameID, r.FrameID)
		}
		for d := range r.Embedding {
			if gr.Embedding[d] != r.Embedding[d] {
				t.Fatalf("record %d dim %d: %v, want %v", i, d, gr.Embedding[d], r.Embedding[d])
			}
		}
	}
}

func TestEngineChecksumDeterministic(t *testing.T) {
	e := flatEngineFixture(t)
	if e.Checksum() != e.Checksum() {
		t.Fatal("Checksum is not deterministic across calls")
	}
}

func TestDecodeFlatSegmentRejectsPQ96(t *testing.T) {
	records := make([]Record, MinTrainingVectors)
	for i := range records {
		records[i] = Record{FrameID: uint64(i), Embedding: make([]float32, pqDimension)}
		records[i].Embedding[i%pqDimension] = 1
	}
	e, err := BuildEngine(records, true, Cosine, nil)
	if err != nil {
		t.Fatalf("BuildEngine: %v", err)
	}
	if e.Compression != model.CompressionPQ96 {
		t.Fatal("fixture did not train a PQ96 engine")
	}
	blob := e.Encode()
	if _, err := DecodeFlatSegment(blob, Cosine); err == nil {
		t.Fatal("DecodeFlatSegment should refuse a PQ96-backed segment (codebooks are not persisted)")
	}
}

func TestDecodeFlatSegmentRejectsBadMagic(t *testing.T) {
	buf := make([]byte, 32)
	if _, err := DecodeFlatSegment(buf, Cosine); err == nil {
		t.Fatal("DecodeFlatSegment should reject a buffer with no valid magic")
	}
}
