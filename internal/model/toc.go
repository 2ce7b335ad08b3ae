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

package model

// IndexManifest locates the lex/vec/clip index blobs (if any).
type IndexManifest struct {
	HasLex  bool
	Lex     SegmentDescriptor
	HasVec  bool
	Vec     SegmentDescriptor
	HasClip bool
	Clip    SegmentDescriptor
}

// TimeIndexManifest locates the single time-index segment for a commit.
type TimeIndexManifest struct {
	Present bool
	Seg     SegmentDescriptor
}

// TemporalTrackManifest locates the optional mentions+anchors sidecar.
type TemporalTrackManifest struct {
	Present bool
	Offset  uint64
	Length  uint64
}

// LogicMeshManifest locates the optional entity-graph blob.
type LogicMeshManifest struct {
	Present bool
	Offset  uint64
	Length  uint64
}

// SketchTrackManifest locates the optional per-frame SimHash+bloom sidecar.
type SketchTrackManifest struct {
	Present bool
	Offset  uint64
	Length  uint64
}

// ReplayManifest locates the in-file segment of completed replay sessions.
type ReplayManifest struct {
	Present       bool
	SegmentOffset uint64
	SegmentSize   uint64
	SessionCount  uint32
	TotalActions  uint64
	Version       uint32
}

// MemoriesTrackManifest locates the optional memory-card summarization
// track (frame_id -> short synthesized summary). See SPEC_FULL.md §12.
type MemoriesTrackManifest struct {
	Present bool
	Offset  uint64
	Length  uint64
}

// MemoryCard is one entry of the optional memories track: a structured,
// versioned fact distilled from a frame, alongside the short synthesized
// summary a caller-supplied summarizer produced for it.
type MemoryCard struct {
	ID      uint64
	FrameID uint64
	Summary string

	Kind   uint8 // memorycard.Kind
	Entity string
	Slot   string
	Value  string

	Polarity     int8 // memorycard.Polarity, -1 if unset
	EventDate    int64
	DocumentDate int64

	VersionKey      string
	VersionRelation uint8 // memorycard.VersionRelation

	SourceURI    string
	Engine       string
	EngineVer    string
	Confidence   float32 // 0 if unset
	CreatedAtUnix int64
}

// TicketRef records the capacity-admission ticket last granted to this
// vault (see SPEC_FULL.md §12, grounded on aethervault's vault/ticket.rs).
type TicketRef struct {
	Present        bool
	TicketID       string
	GrantedBytes   uint64
	IssuedAtUnix   int64
	Issuer         string
	SeqNo          uint64
	ExpiresInSecs  uint64
	Verified       bool
}

// ArchiveManifest locates the optional vacuum archive: an xz-compressed
// blob of superseded/deleted frame payload bytes, written by Doctor's
// Vacuum option so cold payload ranges can be shipped to a mirror or
// dropped from future backups without touching the live append-only file
// (SPEC_FULL.md §11, "vacuum/rewrite archival compression").
type ArchiveManifest struct {
	Present       bool
	Offset        uint64
	Length        uint64
	FrameCount    uint32
	OriginalBytes uint64
}

// MemoryBinding optionally pins this vault to an external memory-provider
// identity; purely informational bookkeeping carried through the TOC.
type MemoryBinding struct {
	Present  bool
	Provider string
	Identity string
}

// EnrichmentQueueEntry is one pending background-enrichment task.
type EnrichmentQueueEntry struct {
	FrameID     uint64
	CreatedAt   int64
	ChunksDone  int
	ChunksTotal int
}

// TOC is the authoritative Table of Contents footer: the full in-memory
// description of a vault's contents, as defined in spec.md §3.
type TOC struct {
	TOCVersion uint32

	Frames   []Frame
	Segments []SegmentDescriptor // legacy flat segment list, kept for V1 compatibility

	Indexes IndexManifest

	TimeIndex      TimeIndexManifest
	TemporalTrack  TemporalTrackManifest
	MemoriesTrack  MemoriesTrackManifest
	LogicMesh      LogicMeshManifest
	SketchTrack    SketchTrackManifest

	SegmentCatalog SegmentCatalog

	TicketRef     TicketRef
	MemoryBinding MemoryBinding
	ReplayManifest ReplayManifest
	Archive        ArchiveManifest

	EnrichmentQueue []EnrichmentQueueEntry

	MerkleRoot   [32]byte
	TOCChecksum  [32]byte
}

// FrameByID returns a pointer into TOC.Frames for the given id, or nil.
// Callers must not retain the pointer across a TOC mutation that may
// reallocate the slice.
func (t *TOC) FrameByID(id uint64) *Frame {
	for i := range t.Frames {
		if t.Frames[i].ID == id {
			return &t.Frames[i]
		}
	}
	return nil
}

// FrameByURI returns the Active frame bound to uri, or nil.
func (t *TOC) FrameByURI(uri string) *Frame {
	for i := range t.Frames {
		if t.Frames[i].URI == uri && t.Frames[i].Status == StatusActive {
			return &t.Frames[i]
		}
	}
	return nil
}

// FrameByChecksum returns the first Active frame whose payload checksum
// matches sum, or nil. Used by the consolidation gate's exact-dedup path.
func (t *TOC) FrameByChecksum(sum [32]byte) *Frame {
	for i := range t.Frames {
		if t.Frames[i].Status == StatusActive && t.Frames[i].Checksum == sum {
			return &t.Frames[i]
		}
	}
	return nil
}

// NextFrameID returns the next id to assign, assuming dense monotonic
// allocation (§3: "assigned by dense monotonic sequence").
func (t *TOC) NextFrameID() uint64 {
	var max uint64
	for _, f := range t.Frames {
		if f.ID > max {
			max = f.ID
		}
	}
	return max + 1
}
