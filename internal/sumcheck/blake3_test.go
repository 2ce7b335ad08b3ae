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

package sumcheck

import (
	"bytes"
	"testing"
)

func TestSum256Deterministic(t *testing.T) {
	a := Sum256([]byte("hello world"))
	b := Sum256([]byte("hello world"))
	if a != b {
		t.Fatalf("Sum256 not deterministic: %x != %x", a, b)
	}
}

func TestSum256DiffersOnChange(t *testing.T) {
	a := Sum256([]byte("hello world"))
	b := Sum256([]byte("hello world!"))
	if a == b {
		t.Fatalf("Sum256 collided on distinct inputs")
	}
}

func TestHasherMatchesSum256(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	want := Sum256(data)

	h := NewHasher()
	if _, err := h.Write(data[:10]); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := h.Write(data[10:]); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := h.Sum(); got != want {
		t.Fatalf("incremental Hasher.Sum() = %x, want %x", got, want)
	}
}

func TestHasherEmpty(t *testing.T) {
	h := NewHasher()
	got := h.Sum()
	want := Sum256(nil)
	if !bytes.Equal(got[:], want[:]) {
		t.Fatalf("empty Hasher.Sum() = %x, want %x", got, want)
	}
}
