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
	"bytes"
	"crypto/cipher"
	"testing"

	"golang.org/x/crypto/chacha20poly1305"
)

func testAEAD(t *testing.T) (cipher.AEAD, []byte) {
	t.Helper()
	key := deriveKey([]byte("test password"), bytes.Repeat([]byte{0x01}, saltSize))
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		t.Fatalf("chacha20poly1305.New: %v", err)
	}
	return aead, bytes.Repeat([]byte{0x02}, nonceSize)
}

func TestChunkNonceDiffersByIndex(t *testing.T) {
	base := bytes.Repeat([]byte{0xAA}, nonceSize)
	n0 := chunkNonce(base, 0)
	n1 := chunkNonce(base, 1)
	if bytes.Equal(n0, n1) {
		t.Fatal("chunkNonce should differ across chunk indices")
	}
	// index 0 XORs the last 8 bytes with all-zero counter bytes, so it
	// should equal the base nonce unchanged.
	if !bytes.Equal(n0, base) {
		t.Fatal("chunkNonce(base, 0) should equal the base nonce")
	}
}

func TestChunkNonceDeterministic(t *testing.T) {
	base := bytes.Repeat([]byte{0x55}, nonceSize)
	a := chunkNonce(base, 42)
	b := chunkNonce(base, 42)
	if !bytes.Equal(a, b) {
		t.Fatal("chunkNonce should be deterministic for the same base/index")
	}
}

func TestSealOpenStreamingRoundTrip(t *testing.T) {
	aead, nonce := testAEAD(t)
	plaintext := bytes.Repeat([]byte("abcdefgh"), StreamChunkSize/4+7) // spans multiple chunks

	sealed := sealStreaming(aead, nonce, plaintext)
	got, err := openStreaming(aead, nonce, sealed)
	if err != nil {
		t.Fatalf("openStreaming: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatal("openStreaming(sealStreaming(x)) != x")
	}
}

func TestSealStreamingEmptyPlaintext(t *testing.T) {
	aead, nonce := testAEAD(t)
	sealed := sealStreaming(aead, nonce, nil)
	got, err := openStreaming(aead, nonce, sealed)
	if err != nil {
		t.Fatalf("openStreaming: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("openStreaming of empty input = %v, want empty", got)
	}
}

func TestOpenStreamingRejectsTruncatedLengthPrefix(t *testing.T) {
	aead, nonce := testAEAD(t)
	sealed := sealStreaming(aead, nonce, []byte("some plaintext data"))
	truncated := sealed[:2] // shorter than the 4-byte length prefix
	if _, err := openStreaming(aead, nonce, truncated); err != errTruncatedChunk {
		t.Fatalf("openStreaming on a truncated length prefix = %v, want errTruncatedChunk", err)
	}
}

func TestOpenStreamingRejectsTruncatedChunkBody(t *testing.T) {
	aead, nonce := testAEAD(t)
	sealed := sealStreaming(aead, nonce, bytes.Repeat([]byte("x"), 100))
	truncated := sealed[:len(sealed)-1]
	if _, err := openStreaming(aead, nonce, truncated); err != errTruncatedChunk {
		t.Fatalf("openStreaming on a truncated chunk body = %v, want errTruncatedChunk", err)
	}
}

func TestOpenStreamingRejectsTamperedChunk(t *testing.T) {
	aead, nonce := testAEAD(t)
	sealed := sealStreaming(aead, nonce, []byte("some plaintext data"))
	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xFF
	if _, err := openStreaming(aead, nonce, tampered); err == nil {
		t.Fatal("openStreaming should reject a tampered chunk")
	}
}
