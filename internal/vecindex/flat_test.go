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

import "testing"

func TestFlatAddSetsDimension(t *testing.T) {
	f := NewFlat(Cosine)
	if err := f.Add(1, []float32{1, 0, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if f.Dimension != 3 {
		t.Fatalf("Dimension = %d, want 3", f.Dimension)
	}
}

func TestFlatAddRejectsDimensionMismatch(t *testing.T) {
	f := NewFlat(Cosine)
	if err := f.Add(1, []float32{1, 0, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := f.Add(2, []float32{1, 0}); err == nil {
		t.Fatal("Add with mismatched dimension should fail")
	}
}

func TestFlatSearchCosineRanksClosest(t *testing.T) {
	f := NewFlat(Cosine)
	_ = f.Add(1, []float32{1, 0, 0})
	_ = f.Add(2, []float32{0, 1, 0})
	_ = f.Add(3, []float32{0.9, 0.1, 0})

	hits, err := f.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Search() returned %d hits, want 2", len(hits))
	}
	if hits[0].FrameID != 1 {
		t.Fatalf("top hit = frame %d, want frame 1 (exact match)", hits[0].FrameID)
	}
	if hits[1].FrameID != 3 {
		t.Fatalf("second hit = frame %d, want frame 3 (closest neighbor)", hits[1].FrameID)
	}
}

func TestFlatSearchL2(t *testing.T) {
	f := NewFlat(L2)
	_ = f.Add(1, []float32{0, 0})
	_ = f.Add(2, []float32{10, 10})

	hits, err := f.Search([]float32{0, 0}, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits[0].FrameID != 1 {
		t.Fatalf("top hit = frame %d, want frame 1 (zero distance)", hits[0].FrameID)
	}
}

func TestFlatSearchDimensionMismatch(t *testing.T) {
	f := NewFlat(Cosine)
	_ = f.Add(1, []float32{1, 0, 0})
	if _, err := f.Search([]float32{1, 0}, 0); err == nil {
		t.Fatal("Search with mismatched query dimension should fail")
	}
}

func TestFlatSearchEmptyIndex(t *testing.T) {
	f := NewFlat(Cosine)
	hits, err := f.Search([]float32{1, 2, 3}, 0)
	if err != nil {
		t.Fatalf("Search on empty index: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("Search on empty index = %v, want empty", hits)
	}
}
