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

package lexindex

import "strings"

// Engine composes zero or more segment Indexes (one per commit) and a
// fallback in-process scanner, matching §4.4's "primary engine absent or
// zero hits -> fallback" contract.
type Engine struct {
	segments []*Index
	fallback []Doc
}

func NewEngine() *Engine { return &Engine{} }

// AddSegment registers a built segment (in ingestion order).
func (e *Engine) AddSegment(idx *Index) {
	if idx != nil {
		e.segments = append(e.segments, idx)
	}
}

// SetFallbackCorpus supplies the raw docs used by the fallback builder.
func (e *Engine) SetFallbackCorpus(docs []Doc) { e.fallback = docs }

// Search merges hits across all segments, then falls back to a linear scan
// over the fallback corpus if nothing matched (analyzer-edge-case guard).
func (e *Engine) Search(query string, filter Filter, limit int) []Hit {
	terms := TokenizeFiltered(query)
	if len(terms) == 0 {
		terms = Tokenize(query)
	}
	merged := make(map[uint64]float64)
	for _, seg := range e.segments {
		for _, h := range seg.Search(terms, filter, 0) {
			if h.Score > merged[h.FrameID] {
				merged[h.FrameID] = h.Score
			}
		}
	}
	if len(merged) == 0 {
		return e.fallbackSearch(terms, filter, limit)
	}
	hits := make([]Hit, 0, len(merged))
	for id, sc := range merged {
		hits = append(hits, Hit{FrameID: id, Score: sc})
	}
	sortHits(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// fallbackSearch is the naive in-process builder: a substring/token scan
// with a crude overlap score, used when the segmented engine is absent or
// its segments produce no hits.
func (e *Engine) fallbackSearch(terms []string, filter Filter, limit int) []Hit {
	var hits []Hit
	for _, d := range e.fallback {
		if filter.FrameIDs != nil && !filter.FrameIDs[d.FrameID] {
			continue
		}
		if filter.URI != "" && d.URI != filter.URI {
			continue
		}
		lc := strings.ToLower(d.Content)
		score := 0.0
		for _, t := range terms {
			if strings.Contains(lc, t) {
				score += 1.0
			}
		}
		if score > 0 {
			hits = append(hits, Hit{FrameID: d.FrameID, Score: score})
		}
	}
	sortHits(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func sortHits(hits []Hit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && (hits[j-1].Score < hits[j].Score || (hits[j-1].Score == hits[j].Score && hits[j-1].FrameID > hits[j].FrameID)); j-- {
			hits[j-1], hits[j] = hits[j], hits[j-1]
		}
	}
}
