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

package catalog

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/launix-de/memvault/internal/format"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// ArchiveEntry is one superseded/deleted frame's raw payload bytes, packed
// into a vacuum archive (vault.Doctor's Vacuum option; SPEC_FULL.md §11,
// "vacuum/rewrite archival compression").
type ArchiveEntry struct {
	FrameID uint64
	Data    []byte
}

const (
	archiveMagic   = "MVARC1\x00"
	archiveVersion = uint16(1)
	maxArchiveEntries = 5_000_000
)

// EncodeArchive packs entries (count + per-entry frame_id/blob) and
// xz-compresses the result, mirroring internal/memorycard's magic+version+
// compressed-payload codec shape.
func EncodeArchive(entries []ArchiveEntry) ([]byte, error) {
	w := format.NewWriter()
	w.U32(uint32(len(entries)))
	for _, e := range entries {
		w.U64(e.FrameID)
		w.Blob(e.Data)
	}

	var compressed bytes.Buffer
	zw, err := xz.NewWriter(&compressed)
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindResource, "catalog.EncodeArchive", err)
	}
	if _, err := zw.Write(w.Bytes()); err != nil {
		return nil, vaulterr.New(vaulterr.KindResource, "catalog.EncodeArchive", err)
	}
	if err := zw.Close(); err != nil {
		return nil, vaulterr.New(vaulterr.KindResource, "catalog.EncodeArchive", err)
	}

	out := make([]byte, 0, len(archiveMagic)+2+compressed.Len())
	out = append(out, archiveMagic...)
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], archiveVersion)
	out = append(out, tmp[:]...)
	out = append(out, compressed.Bytes()...)
	return out, nil
}

// DecodeArchive reverses EncodeArchive.
func DecodeArchive(buf []byte) (entries []ArchiveEntry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entries, err = nil, vaulterr.Newf(vaulterr.KindFormat, "catalog.DecodeArchive", "%v", r)
		}
	}()

	if len(buf) < len(archiveMagic)+2 {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "catalog.DecodeArchive", "short archive")
	}
	if string(buf[:len(archiveMagic)]) != archiveMagic {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "catalog.DecodeArchive", "bad magic")
	}
	pos := len(archiveMagic)
	version := binary.LittleEndian.Uint16(buf[pos : pos+2])
	pos += 2
	if version != archiveVersion {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "catalog.DecodeArchive", "unsupported archive version %d", version)
	}

	zr, err := xz.NewReader(bytes.NewReader(buf[pos:]))
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindIntegrity, "catalog.DecodeArchive", err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindIntegrity, "catalog.DecodeArchive", err)
	}

	r := format.NewReader(raw)
	n := int(r.U32())
	if n > maxArchiveEntries {
		return nil, vaulterr.Newf(vaulterr.KindIntegrity, "catalog.DecodeArchive", "entry count %d exceeds limit", n)
	}
	entries = make([]ArchiveEntry, n)
	for i := range entries {
		entries[i] = ArchiveEntry{FrameID: r.U64(), Data: r.Blob()}
	}
	return entries, nil
}
