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

// Package sketch implements the per-frame candidate-generation track: a
// 64-bit SimHash of a frame's search text plus a 64-bit term-presence bloom
// filter, letting the orchestrator reject the bulk of a vault's frames in
// O(1) before handing a much smaller candidate set to the lex/vector
// engines (spec.md §4.4, "Sketch track").
package sketch

import (
	"math/bits"
	"sort"

	"github.com/launix-de/NonLockingReadMap"
	"github.com/launix-de/memvault/internal/lexindex"
)

// DefaultHammingThreshold is the maximum SimHash distance (out of 64 bits)
// for a frame to be considered a sketch candidate.
const DefaultHammingThreshold = 10

// DefaultMaxCandidates bounds how many candidates FindCandidates returns.
const DefaultMaxCandidates = 2000

// topTermCount is how many of a text's highest-frequency tokens are kept
// for the matching_top_terms signal.
const topTermCount = 8

// Entry is one frame's sketch, stored in a Track.
type Entry struct {
	FrameID    uint64
	SimHash    uint64
	TermFilter uint64
	TopTerms   []string
}

// GetKey and ComputeSize satisfy NonLockingReadMap.KeyGetter[uint64]. Value
// receivers are required: the map calls these on the dereferenced element.
func (e Entry) GetKey() uint64 { return e.FrameID }

func (e Entry) ComputeSize() uint {
	sz := uint(8 + 8 + 8 + 24)
	for _, t := range e.TopTerms {
		sz += uint(len(t))
	}
	return sz
}

// HammingDistance returns the number of differing bits against another
// 64-bit SimHash.
func (e Entry) HammingDistance(other uint64) uint32 {
	return uint32(bits.OnesCount64(e.SimHash ^ other))
}

// TermFilterMaybeOverlaps reports whether e's bloom filter could contain
// every term represented in queryFilter. A false result is a certain miss;
// a true result may still be a false positive from hash collisions.
func (e Entry) TermFilterMaybeOverlaps(queryFilter uint64) bool {
	return e.TermFilter&queryFilter == queryFilter
}

// CountMatchingTopTerms counts how many of queryTerms also appear in e's
// top terms.
func (e Entry) CountMatchingTopTerms(queryTerms []string) int {
	n := 0
	for _, q := range queryTerms {
		for _, t := range e.TopTerms {
			if q == t {
				n++
				break
			}
		}
	}
	return n
}

// Generate builds a sketch for frameID from its search text.
func Generate(frameID uint64, text string) Entry {
	tokens := lexindex.TokenizeFiltered(text)
	freq := termFrequency(tokens)
	return Entry{
		FrameID:    frameID,
		SimHash:    simHash(freq),
		TermFilter: termFilter(freq),
		TopTerms:   topTerms(freq, topTermCount),
	}
}

// Track holds every frame's sketch, keyed by frame id, behind a read-
// optimized map: sketches are written rarely (on ingest) and read
// constantly (on every search), matching the access pattern
// NonLockingReadMap is built for.
type Track struct {
	m NonLockingReadMap.NonLockingReadMap[Entry, uint64]
}

// NewTrack constructs an empty track.
func NewTrack() *Track {
	m := NonLockingReadMap.New[Entry, uint64]()
	return &Track{m: m}
}

// Insert adds or replaces a frame's sketch.
func (t *Track) Insert(e Entry) {
	t.m.Set(&e)
}

// Get returns a frame's sketch, or nil if it has none.
func (t *Track) Get(frameID uint64) *Entry {
	return t.m.Get(frameID)
}

// Remove drops a frame's sketch (e.g. on deletion or supersession).
func (t *Track) Remove(frameID uint64) {
	t.m.Remove(frameID)
}

// Len returns the number of sketches held.
func (t *Track) Len() int {
	return len(t.m.GetAll())
}

// IsEmpty reports whether the track holds no sketches.
func (t *Track) IsEmpty() bool {
	return t.Len() == 0
}

// All returns every sketch entry, in frame-id order.
func (t *Track) All() []Entry {
	ptrs := t.m.GetAll()
	out := make([]Entry, len(ptrs))
	for i, p := range ptrs {
		out[i] = *p
	}
	return out
}

// Stats summarizes a track's contents.
type Stats struct {
	EntryCount int
}

// ComputeStats reports basic counts about the track.
func (t *Track) ComputeStats() Stats {
	return Stats{EntryCount: t.Len()}
}

// QuerySketch is a query's sketch, comparable against every frame's Entry.
type QuerySketch struct {
	SimHash    uint64
	TermFilter uint64
	TopTerms   []string
}

// FromQuery builds a QuerySketch from raw query text, using the same
// tokenization as Generate so the SimHash/bloom bits line up.
func FromQuery(query string) QuerySketch {
	tokens := lexindex.TokenizeFiltered(query)
	freq := termFrequency(tokens)
	return QuerySketch{
		SimHash:    simHash(freq),
		TermFilter: termFilter(freq),
		TopTerms:   topTerms(freq, topTermCount),
	}
}

// Candidate is one frame surfaced by a sketch search.
type Candidate struct {
	FrameID           uint64
	Score             float64
	HammingDistance   uint32
	MatchingTopTerms  int
}

// SearchOptions configures FindCandidates.
type SearchOptions struct {
	HammingThreshold uint32
	MaxCandidates    int
	MinScore         float64
}

// DefaultSearchOptions mirrors the reference defaults (Hamming 10, 2000
// candidates, no score floor).
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		HammingThreshold: DefaultHammingThreshold,
		MaxCandidates:    DefaultMaxCandidates,
		MinScore:         0,
	}
}

// scoreEntry scores an entry against a query sketch, returning (score, ok);
// ok is false if the entry exceeds the Hamming threshold.
func scoreEntry(e Entry, q QuerySketch, hammingThreshold uint32) (float64, bool) {
	hamming := e.HammingDistance(q.SimHash)
	if hamming > hammingThreshold {
		return 0, false
	}
	simScore := 1 - float64(hamming)/64
	termScore := 0.0
	if len(q.TopTerms) > 0 {
		termScore = float64(e.CountMatchingTopTerms(q.TopTerms)) / float64(len(q.TopTerms))
	}
	return simScore*0.7 + termScore*0.3, true
}

// FindCandidates runs the two-stage filter (term bloom, then SimHash
// Hamming distance) over every sketch in the track, returning survivors
// sorted by score descending.
func (t *Track) FindCandidates(q QuerySketch, opts SearchOptions) []Candidate {
	var out []Candidate
	for _, e := range t.All() {
		if !e.TermFilterMaybeOverlaps(q.TermFilter) {
			continue
		}
		score, ok := scoreEntry(e, q, opts.HammingThreshold)
		if !ok || score < opts.MinScore {
			continue
		}
		out = append(out, Candidate{
			FrameID:          e.FrameID,
			Score:            score,
			HammingDistance:  e.HammingDistance(q.SimHash),
			MatchingTopTerms: e.CountMatchingTopTerms(q.TopTerms),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].FrameID < out[j].FrameID
	})
	if opts.MaxCandidates > 0 && len(out) > opts.MaxCandidates {
		out = out[:opts.MaxCandidates]
	}
	return out
}
