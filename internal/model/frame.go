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

// Package model holds the on-disk/in-memory data model shared across every
// vault subsystem: frames, segment descriptors, and the TOC that ties them
// together. Keeping these types in one leaf package lets the lex/vec/time/
// mesh/replay/catalog packages depend on the shapes without depending on
// each other.
package model

// Role classifies what a frame represents.
type Role uint8

const (
	RoleDocument Role = iota
	RoleDocumentChunk
	RoleReplayCheckpoint
	RoleMemoryCard
)

// Status is the lifecycle state of a frame.
type Status uint8

const (
	StatusActive Status = iota
	StatusSuperseded
	StatusDeleted
)

// EnrichmentState tracks how far background enrichment (embedding, entity
// extraction) has progressed for a frame.
type EnrichmentState uint8

const (
	EnrichmentSearchable EnrichmentState = iota
	EnrichmentEnriching
	EnrichmentEnriched
)

// AnchorSource records where a frame's anchor timestamp came from.
type AnchorSource uint8

const (
	AnchorExplicit AnchorSource = iota
	AnchorFrameTimestamp
	AnchorMetadata
	AnchorIngestionClock
)

// Encoding declares how canonical_length should be interpreted.
type Encoding uint8

const (
	EncodingPlain Encoding = iota
	EncodingDeclared
)

// Frame is the atomic stored unit: a payload reference plus metadata.
// See spec.md §3 for the field-by-field invariants.
type Frame struct {
	ID             uint64
	Timestamp      int64
	AnchorTS       int64
	AnchorSource   AnchorSource
	PayloadOffset  uint64
	PayloadLength  uint64
	Checksum       [32]byte
	URI            string
	Title          string
	Kind           string
	Track          string
	Metadata       map[string]string
	Tags           []string
	Labels         []string
	ExtraMetadata  map[string]string // ordered via ExtraMetadataOrder
	ExtraMetaOrder []string
	CanonicalEnc   Encoding
	CanonicalLen   int64

	Role          Role
	ParentID      uint64
	HasParent     bool
	ChunkIndex    int
	ChunkCount    int
	ChunkManifest []ChunkRange

	Status        Status
	Supersedes    uint64
	HasSupersedes bool
	SupersededBy  uint64
	HasSuperseded bool

	EnrichmentState EnrichmentState

	// EmbeddingIdentity records (provider, model) used to embed this frame,
	// so mixed-model corruption can be detected on read.
	EmbeddingProvider string
	EmbeddingModel    string
}

// ChunkRange is a (start,end) character range within a parent's normalized
// text, emitted by the chunk planner (§4.2 step 2).
type ChunkRange struct {
	Start int
	End   int
}

const (
	MaxTags          = 1024
	MaxLabels        = 1024
	MaxExtraMetadata = 4096
)

// IsActive reports whether the frame is visible to normal reads.
func (f *Frame) IsActive() bool { return f.Status == StatusActive }
