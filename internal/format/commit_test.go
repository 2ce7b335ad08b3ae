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

	"github.com/launix-de/memvault/internal/model"
)

func TestCommitApplyThenOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	payload := []byte("hello, memvault")
	if _, err := f.WriteAt(payload, HeaderSize); err != nil {
		t.Fatalf("WriteAt payload: %v", err)
	}
	dataEnd := uint64(HeaderSize + len(payload))

	toc := &model.TOC{
		Frames: []model.Frame{
			{ID: 1, PayloadOffset: HeaderSize, PayloadLength: uint64(len(payload)), URI: "file://x", Status: model.StatusActive},
		},
	}

	c := NewCommit(f, 0, 1)
	h, err := c.Apply(toc, 0, dataEnd)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if h.FooterOffset != dataEnd {
		t.Fatalf("FooterOffset = %d, want %d", h.FooterOffset, dataEnd)
	}

	gotH, gotTOC, err := Open(f)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if gotH.FooterOffset != dataEnd {
		t.Fatalf("reopened FooterOffset = %d, want %d", gotH.FooterOffset, dataEnd)
	}
	if len(gotTOC.Frames) != 1 || gotTOC.Frames[0].URI != "file://x" {
		t.Fatalf("reopened TOC mismatch: %+v", gotTOC.Frames)
	}

	buf := make([]byte, len(payload))
	if _, err := f.ReadAt(buf, HeaderSize); err != nil {
		t.Fatalf("ReadAt payload: %v", err)
	}
	if string(buf) != string(payload) {
		t.Fatalf("payload bytes corrupted: %q", buf)
	}
}

func TestCommitFooterNeverMovesBackward(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	toc := &model.TOC{}
	c := NewCommit(f, 0, 0)
	h1, err := c.Apply(toc, 0, 4096)
	if err != nil {
		t.Fatalf("first Apply: %v", err)
	}

	// Second commit with a smaller dataEnd than the previous footer offset;
	// the footer must not move backward over the first footer's bytes.
	h2, err := c.Apply(toc, h1.FooterOffset, 100)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if h2.FooterOffset < h1.FooterOffset {
		t.Fatalf("footer moved backward: %d -> %d", h1.FooterOffset, h2.FooterOffset)
	}
}

func TestOpenRejectsCorruptedTOC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.bin")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	toc := &model.TOC{}
	c := NewCommit(f, 0, 0)
	if _, err := c.Apply(toc, 0, HeaderSize); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Flip a byte inside the footer region to corrupt the TOC without
	// touching the header's checksum.
	if _, err := f.WriteAt([]byte{0xFF}, HeaderSize+4); err != nil {
		t.Fatalf("WriteAt corruption: %v", err)
	}

	if _, _, err := Open(f); err == nil {
		t.Fatal("Open accepted a corrupted TOC")
	}
}
