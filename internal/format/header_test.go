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

package format

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/launix-de/memvault/internal/vaulterr"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := &Header{
		Version:      FormatVersion,
		WALSize:      128,
		WALSequence:  7,
		FooterOffset: 4096,
		TOCChecksum:  [32]byte{9, 8, 7},
	}
	buf := h.Encode()
	if len(buf) != HeaderSize {
		t.Fatalf("Encode() length = %d, want %d", len(buf), HeaderSize)
	}

	got, err := DecodeHeader(buf)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if *got != *h {
		t.Fatalf("DecodeHeader() = %+v, want %+v", got, h)
	}
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	buf := make([]byte, HeaderSize)
	copy(buf, []byte("NOTMVLT\x00"))
	_, err := DecodeHeader(buf)
	if !vaulterr.Is(err, vaulterr.KindFormat) {
		t.Fatalf("DecodeHeader with bad magic: err = %v, want KindFormat", err)
	}
}

func TestDecodeHeaderShortBuffer(t *testing.T) {
	_, err := DecodeHeader(make([]byte, HeaderSize-1))
	if !vaulterr.Is(err, vaulterr.KindFormat) {
		t.Fatalf("DecodeHeader with short buffer: err = %v, want KindFormat", err)
	}
}

func TestDecodeHeaderUnsupportedVersion(t *testing.T) {
	h := &Header{Version: FormatVersion + 1}
	_, err := DecodeHeader(h.Encode())
	if !vaulterr.Is(err, vaulterr.KindFormat) {
		t.Fatalf("DecodeHeader with future version: err = %v, want KindFormat", err)
	}
}

func TestWriteReadHeaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	h := &Header{Version: FormatVersion, WALSize: 1, WALSequence: 2, FooterOffset: 3}
	if err := WriteHeader(f, h); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	got, err := ReadHeader(f)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if *got != *h {
		t.Fatalf("ReadHeader() = %+v, want %+v", got, h)
	}
}
