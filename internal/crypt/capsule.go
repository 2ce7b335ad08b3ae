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

// Package crypt implements the optional outer encryption capsule that wraps
// a whole vault file: magic "MV2E" header, Argon2id key derivation, and
// ChaCha20-Poly1305 AEAD sealing, in either a single-body legacy mode or a
// 1-MiB chunked streaming mode (spec.md §7, "Encryption capsule").
package crypt

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/launix-de/memvault/internal/format"
	"github.com/launix-de/memvault/internal/vaulterr"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	magic   = "MV2E"
	version = uint32(1)

	saltSize  = 16
	nonceSize = chacha20poly1305.NonceSize // 12

	// StreamChunkSize is the plaintext chunk size used in streaming mode;
	// files at or above this size are sealed in chunks rather than as one
	// AEAD body, so unlocking never has to hold the whole plaintext in
	// memory twice over.
	StreamChunkSize = 1 << 20

	modeLegacy    = 0x00
	modeStreaming = 0x01
)

// KDF identifies the key-derivation function recorded in the header.
type KDF uint8

const (
	KDFArgon2id KDF = iota
)

// Cipher identifies the AEAD cipher recorded in the header.
type Cipher uint8

const (
	CipherChaCha20Poly1305 Cipher = iota
)

// Header is the fixed-layout "MV2E" capsule header.
type Header struct {
	Version      uint32
	KDF          KDF
	Cipher       Cipher
	Salt         [saltSize]byte
	Nonce        [nonceSize]byte
	OriginalSize uint64
	Reserved     [4]byte // Reserved[0]: 0x00 legacy single-body, 0x01 streaming chunks
}

// HeaderSize is the exact on-disk size of an encoded Header.
const HeaderSize = 4 /*magic*/ + 4 /*version*/ + 1 /*kdf*/ + 1 /*cipher*/ + saltSize + nonceSize + 8 /*original_size*/ + 4 /*reserved*/

func (h Header) encode() []byte {
	buf := make([]byte, 0, HeaderSize)
	buf = append(buf, magic...)
	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], h.Version)
	buf = append(buf, v[:]...)
	buf = append(buf, byte(h.KDF), byte(h.Cipher))
	buf = append(buf, h.Salt[:]...)
	buf = append(buf, h.Nonce[:]...)
	var sz [8]byte
	binary.LittleEndian.PutUint64(sz[:], h.OriginalSize)
	buf = append(buf, sz[:]...)
	buf = append(buf, h.Reserved[:]...)
	return buf
}

func decodeHeader(buf []byte) (Header, error) {
	var h Header
	if len(buf) < HeaderSize {
		return h, vaulterr.Newf(vaulterr.KindFormat, "crypt.decodeHeader", "truncated capsule header")
	}
	if string(buf[:4]) != magic {
		return h, vaulterr.Newf(vaulterr.KindFormat, "crypt.decodeHeader", "bad magic: expected %q found %q", magic, buf[:4])
	}
	pos := 4
	h.Version = binary.LittleEndian.Uint32(buf[pos : pos+4])
	pos += 4
	h.KDF = KDF(buf[pos])
	pos++
	h.Cipher = Cipher(buf[pos])
	pos++
	copy(h.Salt[:], buf[pos:pos+saltSize])
	pos += saltSize
	copy(h.Nonce[:], buf[pos:pos+nonceSize])
	pos += nonceSize
	h.OriginalSize = binary.LittleEndian.Uint64(buf[pos : pos+8])
	pos += 8
	copy(h.Reserved[:], buf[pos:pos+4])
	return h, nil
}

// deriveKey runs Argon2id over password+salt with fixed, conservative cost
// parameters, producing a 32-byte ChaCha20-Poly1305 key.
func deriveKey(password, salt []byte) []byte {
	const (
		timeCost   = 3
		memoryCost = 64 * 1024 // KiB
		threads    = 4
		keyLen     = chacha20poly1305.KeySize
	)
	return argon2.IDKey(password, salt, timeCost, memoryCost, threads, keyLen)
}

// LockFile reads srcPath (a plain vault file) and writes its encrypted
// capsule to dstPath. Files at or above StreamChunkSize use the chunked
// streaming mode; smaller files use the legacy single-body mode.
func LockFile(srcPath, dstPath string, password []byte) error {
	plaintext, err := os.ReadFile(srcPath)
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "crypt.LockFile", err)
	}
	if len(plaintext) < len(format.Magic) || string(plaintext[:len(format.Magic)]) != format.Magic {
		return vaulterr.Newf(vaulterr.KindSchema, "crypt.LockFile", "%s is not a vault file", srcPath)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(randReader, salt); err != nil {
		return vaulterr.New(vaulterr.KindResource, "crypt.LockFile", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return vaulterr.New(vaulterr.KindResource, "crypt.LockFile", err)
	}
	key := deriveKey(password, salt)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "crypt.LockFile", err)
	}

	h := Header{
		Version:      version,
		KDF:          KDFArgon2id,
		Cipher:       CipherChaCha20Poly1305,
		OriginalSize: uint64(len(plaintext)),
	}
	copy(h.Salt[:], salt)
	copy(h.Nonce[:], nonce)

	var body []byte
	if len(plaintext) >= StreamChunkSize {
		h.Reserved[0] = modeStreaming
		body = sealStreaming(aead, nonce, plaintext)
	} else {
		h.Reserved[0] = modeLegacy
		body = aead.Seal(nil, nonce, plaintext, h.encode())
	}

	out := append(h.encode(), body...)
	if err := os.WriteFile(dstPath, out, 0o600); err != nil {
		return vaulterr.New(vaulterr.KindResource, "crypt.LockFile", err)
	}
	return nil
}

// UnlockFile reverses LockFile. A wrong password, or tampering that makes
// decryption fail, surfaces vaulterr.KindIntegrity, matching the reference's
// dedicated decryption-failure error; a truncated capsule or a bad magic is
// reported as vaulterr.KindFormat before any decryption is tried.
func UnlockFile(srcPath, dstPath string, password []byte) error {
	ciphertext, err := os.ReadFile(srcPath)
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "crypt.UnlockFile", err)
	}
	if len(ciphertext) < HeaderSize {
		return vaulterr.Newf(vaulterr.KindFormat, "crypt.UnlockFile", "truncated capsule")
	}
	h, err := decodeHeader(ciphertext[:HeaderSize])
	if err != nil {
		return err
	}
	body := ciphertext[HeaderSize:]

	key := deriveKey(password, h.Salt[:])
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "crypt.UnlockFile", err)
	}

	var plaintext []byte
	if h.Reserved[0] == modeStreaming {
		plaintext, err = openStreaming(aead, h.Nonce[:], body)
	} else {
		plaintext, err = aead.Open(nil, h.Nonce[:], body, ciphertext[:HeaderSize])
	}
	if err != nil {
		return vaulterr.New(vaulterr.KindIntegrity, "crypt.UnlockFile", err)
	}
	if uint64(len(plaintext)) != h.OriginalSize {
		return vaulterr.Newf(vaulterr.KindIntegrity, "crypt.UnlockFile", "size mismatch after decrypt: expected %d got %d", h.OriginalSize, len(plaintext))
	}

	if err := os.WriteFile(dstPath, plaintext, 0o600); err != nil {
		return vaulterr.New(vaulterr.KindResource, "crypt.UnlockFile", err)
	}
	return nil
}
