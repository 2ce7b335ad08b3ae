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

	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/sumcheck"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// Commit runs the three-phase commit protocol described in spec.md §4.1.
// Callers have already appended new payload/segment bytes past the file's
// current data_end before calling Commit; dataEnd is the byte offset one
// past the last byte written in this commit.
type Commit struct {
	f        *os.File
	walBytes uint64
	walSeq   uint64
}

func NewCommit(f *os.File, walBytes, walSeq uint64) *Commit {
	return &Commit{f: f, walBytes: walBytes, walSeq: walSeq}
}

// Apply performs the footer phase then the header phase, returning the
// final header written. dataEnd is the current end of the append region;
// the footer is placed at max(prevFooterOffset, dataEnd), never backwards.
func (c *Commit) Apply(toc *model.TOC, prevFooterOffset, dataEnd uint64) (*Header, error) {
	footerOffset := prevFooterOffset
	if dataEnd > footerOffset {
		footerOffset = dataEnd
	}

	buf, err := EncodeTOC(toc)
	if err != nil {
		return nil, err
	}
	if _, err := c.f.WriteAt(buf, int64(footerOffset)); err != nil {
		return nil, vaulterr.New(vaulterr.KindResource, "format.Commit.Apply", err)
	}
	if err := c.f.Sync(); err != nil {
		return nil, vaulterr.New(vaulterr.KindResource, "format.Commit.Apply", err)
	}

	h := &Header{
		Version:      FormatVersion,
		WALSize:      c.walBytes,
		WALSequence:  c.walSeq,
		FooterOffset: footerOffset,
		TOCChecksum:  toc.TOCChecksum,
	}
	if err := WriteHeader(c.f, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open reads the header and TOC of an existing vault file, validating the
// checksum. Strict mode rejects legacy shapes and trailing bytes.
func Open(f *os.File) (*Header, *model.TOC, error) {
	h, err := ReadHeader(f)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		return nil, nil, vaulterr.New(vaulterr.KindResource, "format.Open", err)
	}
	footerLen := info.Size() - int64(h.FooterOffset)
	if footerLen < 0 {
		return nil, nil, vaulterr.Newf(vaulterr.KindFormat, "format.Open", "footer_offset %d beyond file size %d", h.FooterOffset, info.Size())
	}
	buf := make([]byte, footerLen)
	if _, err := f.ReadAt(buf, int64(h.FooterOffset)); err != nil {
		return nil, nil, vaulterr.New(vaulterr.KindResource, "format.Open", err)
	}
	toc, err := DecodeTOCStrict(buf, h.TOCChecksum)
	if err != nil {
		return nil, nil, err
	}
	return h, toc, nil
}

// OpenLenient is the recovery path: tolerates legacy TOC shapes and
// trailing bytes, returning which shape matched.
func OpenLenient(f *os.File) (*Header, *model.TOC, TOCShape, error) {
	h, err := ReadHeader(f)
	if err != nil {
		return nil, nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		return nil, nil, 0, vaulterr.New(vaulterr.KindResource, "format.OpenLenient", err)
	}
	footerLen := info.Size() - int64(h.FooterOffset)
	if footerLen < 0 {
		footerLen = 0
	}
	buf := make([]byte, footerLen)
	if _, err := f.ReadAt(buf, int64(h.FooterOffset)); err != nil {
		return nil, nil, 0, vaulterr.New(vaulterr.KindResource, "format.OpenLenient", err)
	}
	toc, shape, err := DecodeTOCLenient(buf, h.TOCChecksum)
	if err != nil {
		return nil, nil, 0, err
	}
	return h, toc, shape, nil
}

// VerifyTOCChecksum recomputes BLAKE3 over toc with toc_checksum zeroed and
// compares against expected, independent of the decode path.
func VerifyTOCChecksum(toc *model.TOC, expected [32]byte) bool {
	zeroed := *toc
	zeroed.TOCChecksum = [32]byte{}
	buf := encodeShape(&zeroed, TOCShape(toc.TOCVersion))
	return sumcheck.Sum256(buf) == expected
}
