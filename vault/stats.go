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

import "github.com/launix-de/memvault/internal/model"

// Stats reports byte accounting and index sizes for the vault, grounded on
// aethervault's vault/ticket.rs stats() function (SPEC_FULL.md §12).
type Stats struct {
	FrameCount       int
	ActiveFrames     int
	SupersededFrames int
	DeletedFrames    int

	PayloadBytes   uint64
	FileBytes      uint64
	LexSegmentBytes  uint64
	VecSegmentBytes  uint64
	TimeSegmentBytes uint64
	WALBytes         uint64

	MeshNodes int
	MeshEdges int
	SketchEntries int
	MemoryCards   int
}

// Stats computes the current byte/segment accounting over the in-memory TOC.
func (v *Vault) Stats() (Stats, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	info, err := v.f.Stat()
	if err != nil {
		return Stats{}, err
	}

	s := Stats{FileBytes: uint64(info.Size())}
	for _, f := range v.toc.Frames {
		s.FrameCount++
		s.PayloadBytes += f.PayloadLength
		switch f.Status {
		case model.StatusActive:
			s.ActiveFrames++
		case model.StatusSuperseded:
			s.SupersededFrames++
		case model.StatusDeleted:
			s.DeletedFrames++
		}
	}
	for _, d := range v.toc.SegmentCatalog.LexSegments {
		s.LexSegmentBytes += d.BytesLength
	}
	for _, d := range v.toc.SegmentCatalog.VecSegments {
		s.VecSegmentBytes += d.BytesLength
	}
	for _, d := range v.toc.SegmentCatalog.TimeSegments {
		s.TimeSegmentBytes += d.BytesLength
	}
	s.WALBytes = v.header.WALSize
	s.MeshNodes = v.graph.NumNodes()
	s.MeshEdges = v.graph.NumEdges()
	s.SketchEntries = v.sk.Len()
	s.MemoryCards = len(v.cards)
	return s, nil
}
