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

// Package format implements the vault's bit-exact on-disk layout: the fixed
// header, the TOC footer codec (with forward-only legacy tolerance), and the
// three-phase commit protocol described in spec.md §4.1 and §6.
package format

import (
	"fmt"
	"io"
	"os"

	"github.com/launix-de/memvault/internal/vaulterr"
)

// Magic identifies a memvault file. Little-endian throughout the file.
const Magic = "MVAULT1\x00"

// HeaderSize is the fixed byte size of the header record at offset 0:
// magic(8) + version(4) + wal_size(8) + wal_sequence(8) + footer_offset(8) + toc_checksum(32).
const HeaderSize = 8 + 4 + 8 + 8 + 8 + 32

// FormatVersion is the current on-disk format version this build writes.
const FormatVersion uint32 = 3

// Header is the fixed-size record at offset 0 of every vault file.
type Header struct {
	Version      uint32
	WALSize      uint64
	WALSequence  uint64
	FooterOffset uint64
	TOCChecksum  [32]byte
}

// Encode writes the header in its fixed binary layout.
func (h *Header) Encode() []byte {
	w := NewWriter()
	w.Raw([]byte(Magic))
	w.U32(h.Version)
	w.U64(h.WALSize)
	w.U64(h.WALSequence)
	w.U64(h.FooterOffset)
	w.Fixed32(h.TOCChecksum)
	buf := w.Bytes()
	if len(buf) != HeaderSize {
		panic(fmt.Sprintf("format: header encode size drift: got %d want %d", len(buf), HeaderSize))
	}
	return buf
}

// DecodeHeader parses a HeaderSize-byte buffer, validating the magic.
func DecodeHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "format.DecodeHeader", "short header: %d bytes", len(buf))
	}
	r := NewReader(buf[:HeaderSize])
	magic := string(r.Raw(len(Magic)))
	if magic != Magic {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "format.DecodeHeader", "bad magic %q", magic)
	}
	h := &Header{}
	h.Version = r.U32()
	h.WALSize = r.U64()
	h.WALSequence = r.U64()
	h.FooterOffset = r.U64()
	h.TOCChecksum = r.Fixed32()
	if h.Version == 0 || h.Version > FormatVersion {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "format.DecodeHeader", "unsupported version %d", h.Version)
	}
	return h, nil
}

// ReadHeader reads and decodes the header from the start of f.
func ReadHeader(f *os.File) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := f.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, vaulterr.New(vaulterr.KindResource, "format.ReadHeader", err)
	}
	return DecodeHeader(buf)
}

// WriteHeader writes the header at offset 0 and fsyncs — the final step of
// the three-phase commit protocol (§4.1 phase 3).
func WriteHeader(f *os.File, h *Header) error {
	if _, err := f.WriteAt(h.Encode(), 0); err != nil {
		return vaulterr.New(vaulterr.KindResource, "format.WriteHeader", err)
	}
	if err := f.Sync(); err != nil {
		return vaulterr.New(vaulterr.KindResource, "format.WriteHeader", err)
	}
	return nil
}
