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

// Package sumcheck centralizes BLAKE3-256 checksumming so every subsystem
// (payloads, TOC, manifest-WAL records, temporal track, Logic-Mesh) hashes
// the same way.
package sumcheck

import "github.com/zeebo/blake3"

// Sum256 returns the BLAKE3-256 digest of data.
func Sum256(data []byte) [32]byte {
	var out [32]byte
	sum := blake3.Sum256(data)
	copy(out[:], sum[:])
	return out
}

// Hasher wraps blake3.Hasher for incremental, multi-write checksums (e.g.
// hashing a fixed header followed by a variable record body).
type Hasher struct {
	h *blake3.Hasher
}

func NewHasher() *Hasher {
	return &Hasher{h: blake3.New()}
}

func (h *Hasher) Write(p []byte) (int, error) { return h.h.Write(p) }

func (h *Hasher) Sum() [32]byte {
	var out [32]byte
	copy(out[:], h.h.Sum(nil))
	return out
}
