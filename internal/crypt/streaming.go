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

package crypt

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
)

var randReader = rand.Reader

var errTruncatedChunk = errors.New("crypt: truncated streaming chunk")

// chunkNonce derives a per-chunk nonce by XOR-ing the base nonce's last 8
// bytes with a little-endian chunk counter, so every chunk in a capsule
// gets a distinct nonce without storing one per chunk.
func chunkNonce(base []byte, index uint64) []byte {
	nonce := append([]byte(nil), base...)
	var ctr [8]byte
	binary.LittleEndian.PutUint64(ctr[:], index)
	for i := 0; i < 8; i++ {
		nonce[len(nonce)-8+i] ^= ctr[i]
	}
	return nonce
}

// sealStreaming encrypts plaintext as a sequence of StreamChunkSize-sized
// AEAD-sealed chunks, each length-prefixed with a u32 ciphertext length.
func sealStreaming(aead cipher.AEAD, baseNonce []byte, plaintext []byte) []byte {
	var out []byte
	var index uint64
	for offset := 0; offset < len(plaintext); offset += StreamChunkSize {
		end := offset + StreamChunkSize
		if end > len(plaintext) {
			end = len(plaintext)
		}
		chunk := plaintext[offset:end]
		sealed := aead.Seal(nil, chunkNonce(baseNonce, index), chunk, nil)

		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(sealed)))
		out = append(out, lenBuf[:]...)
		out = append(out, sealed...)
		index++
	}
	return out
}

// openStreaming reverses sealStreaming.
func openStreaming(aead cipher.AEAD, baseNonce []byte, body []byte) ([]byte, error) {
	var out []byte
	var index uint64
	pos := 0
	for pos < len(body) {
		if pos+4 > len(body) {
			return nil, errTruncatedChunk
		}
		n := int(binary.LittleEndian.Uint32(body[pos : pos+4]))
		pos += 4
		if pos+n > len(body) {
			return nil, errTruncatedChunk
		}
		sealed := body[pos : pos+n]
		pos += n

		chunk, err := aead.Open(nil, chunkNonce(baseNonce, index), sealed, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		index++
	}
	return out, nil
}
