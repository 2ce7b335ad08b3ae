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

package vault

import (
	"github.com/launix-de/memvault/internal/catalog"
	"github.com/launix-de/memvault/internal/format"
	"github.com/launix-de/memvault/internal/model"
)

// DoctorOptions mirrors the recognized doctor options from spec.md §6.
type DoctorOptions struct {
	RebuildLexIndex  bool
	RebuildTimeIndex bool
	RebuildVecIndex  bool
	Vacuum           bool
	DryRun           bool
	Quiet            bool
}

// DoctorReport summarizes what Doctor found and, if not a dry run, fixed.
type DoctorReport struct {
	ChecksumOK      bool
	FrameCount      int
	ActiveFrames    int
	SupersededFrames int
	DeletedFrames   int
	RebuiltLex      bool
	RebuiltTime     bool
	RebuiltVec      bool
	Notes           []string
}

// Doctor verifies the TOC checksum via the lenient decode path and,
// depending on opts, rebuilds the in-memory lex/time engines from frame
// payload bytes. It never rewrites the file's footer/header itself — a
// fixed-up in-memory state only becomes durable via a subsequent Commit.
func (v *Vault) Doctor(opts DoctorOptions) (DoctorReport, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var report DoctorReport
	_, toc, _, err := format.OpenLenient(v.f)
	if err != nil {
		return report, err
	}
	report.ChecksumOK = format.VerifyTOCChecksum(toc, v.header.TOCChecksum)

	for _, f := range toc.Frames {
		report.FrameCount++
		switch f.Status {
		case model.StatusActive:
			report.ActiveFrames++
		case model.StatusSuperseded:
			report.SupersededFrames++
		case model.StatusDeleted:
			report.DeletedFrames++
		}
	}

	if opts.DryRun {
		report.Notes = append(report.Notes, "dry_run: no in-memory state changed")
		return report, nil
	}

	if opts.RebuildLexIndex || opts.RebuildTimeIndex {
		v.rebuildFromFrames()
		report.RebuiltLex = opts.RebuildLexIndex
		report.RebuiltTime = opts.RebuildTimeIndex
	}
	if opts.RebuildVecIndex {
		v.vec = nil
		report.RebuiltVec = true
		report.Notes = append(report.Notes, "vector index cleared: no embeddings are persisted in raw form, re-Put/Update frames to repopulate it")
	}
	if opts.Vacuum {
		n, err := v.archiveColdFrames()
		if err != nil {
			return report, err
		}
		if n > 0 {
			report.Notes = append(report.Notes, "vacuum: archived cold (superseded/deleted) frame payloads to the xz-compressed vacuum archive; the live file is still append-only, a rewriting compaction is not implemented")
		} else {
			report.Notes = append(report.Notes, "vacuum: no superseded/deleted frames to archive")
		}
	}

	return report, nil
}

// archiveColdFrames packs every superseded/deleted frame's raw payload
// bytes into the xz-compressed vacuum archive (internal/catalog.ArchiveEntry)
// and appends it past data_end, recording the result in toc.Archive. It does
// not remove or zero the frames' original bytes: a real rewriting compaction
// would need to shrink the live file, which the append-only commit model
// here does not support (see DESIGN.md's vacuum entry). Archiving lets a
// caller ship cold payload ranges to a mirror or exclude them from future
// backups without touching the hot path.
func (v *Vault) archiveColdFrames() (int, error) {
	var entries []catalog.ArchiveEntry
	for _, f := range v.toc.Frames {
		if f.Status == model.StatusActive {
			continue
		}
		data := make([]byte, f.PayloadLength)
		if _, err := v.f.ReadAt(data, int64(f.PayloadOffset)); err != nil {
			return 0, err
		}
		entries = append(entries, catalog.ArchiveEntry{FrameID: f.ID, Data: data})
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var originalBytes uint64
	for _, e := range entries {
		originalBytes += uint64(len(e.Data))
	}

	blob, err := catalog.EncodeArchive(entries)
	if err != nil {
		return 0, err
	}
	offset, err := appender{v}.AppendPayload(blob)
	if err != nil {
		return 0, err
	}
	v.toc.Archive = model.ArchiveManifest{
		Present:       true,
		Offset:        offset,
		Length:        uint64(len(blob)),
		FrameCount:    uint32(len(entries)),
		OriginalBytes: originalBytes,
	}
	return len(entries), nil
}
