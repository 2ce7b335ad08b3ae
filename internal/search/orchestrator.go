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

package search

import (
	"github.com/launix-de/memvault/internal/lexindex"
	"github.com/launix-de/memvault/internal/sketch"
	"github.com/launix-de/memvault/internal/vecindex"
)

// Request bundles every recognized search option (spec.md §4.9/§7).
type Request struct {
	Query        string
	TopK         int
	SnippetChars int
	URI          string
	Scope        string
	Cursor       int
	HasTemporal  bool
	TemporalFrom int64
	TemporalTo   int64
	AsOfFrame    uint64
	AsOfTS       int64
	NoSketch     bool
	Embedding    []float32 // nil -> lex-only
}

// FrameMeta is the metadata the orchestrator needs per candidate frame.
type FrameMeta struct {
	URI       string
	Title     string
	Track     string
	Tags      []string
	Timestamp int64
}

// Source resolves frame text/metadata; implemented by the vault layer over
// the TOC and payload store.
type Source interface {
	FrameMeta(frameID uint64) (FrameMeta, bool)
	FrameText(frameID uint64) (string, bool)
}

// ResultHit is one fused, reranked, snippeted hit in the response.
type ResultHit struct {
	FrameID   uint64
	Score     float64
	Title     string
	URI       string
	Snippets  []Snippet
}

// Response is the orchestrator's reply.
type Response struct {
	Hits       []ResultHit
	NextCursor int
	HasMore    bool
}

// Orchestrator composes the lex engine, an optional vector engine, and a
// frame Source into the full search pipeline of spec.md §4.9.
type Orchestrator struct {
	Lex    *lexindex.Engine
	Vec    *vecindex.Engine
	Sketch *sketch.Track // optional; nil disables candidate pre-filtering
	Source Source
}

// Search runs the full pipeline: parse -> filter extraction -> lex search
// (with fallback) -> optional vector search -> RRF fuse -> recency rerank
// -> snippet assembly -> cursor pagination.
func (o *Orchestrator) Search(req Request) (Response, error) {
	expr, err := Parse(req.Query)
	if err != nil {
		return Response{}, err
	}

	filter := lexindex.Filter{URI: req.URI, ScopePrefix: req.Scope}
	for _, f := range expr.CollectFields() {
		switch f.Field {
		case FieldURI:
			filter.URI = f.Text
		case FieldScope, FieldTrack:
			filter.ScopePrefix = f.Text
		}
	}

	terms := expr.CollectText()
	limit := req.TopK
	if limit <= 0 {
		limit = 10
	}

	if o.Sketch != nil && !o.Sketch.IsEmpty() && !req.NoSketch {
		qs := sketch.FromQuery(req.Query)
		candidates := o.Sketch.FindCandidates(qs, sketch.DefaultSearchOptions())
		ids := make(map[uint64]bool, len(candidates))
		for _, c := range candidates {
			ids[c.FrameID] = true
		}
		filter.FrameIDs = ids
	}

	var lexHits []lexindex.Hit
	if o.Lex != nil {
		lexHits = o.Lex.Search(req.Query, filter, 0)
	}
	_ = terms // terms are already embedded in req.Query for the engine's own tokenizer

	var vecHits []vecindex.ScoredHit
	if o.Vec != nil && len(req.Embedding) > 0 {
		vecHits, err = o.Vec.Search(req.Embedding, 0)
		if err != nil {
			return Response{}, err
		}
	}

	fused := Fuse(lexHits, vecHits)
	fused = RecencyRerank(fused, o.contentTimestamp)

	if req.HasTemporal {
		fused = filterByTemporal(fused, req.TemporalFrom, req.TemporalTo, o.Source)
	}

	start := req.Cursor
	if start < 0 {
		start = 0
	}
	end := start + limit
	hasMore := end < len(fused)
	if end > len(fused) {
		end = len(fused)
	}
	if start > len(fused) {
		start = len(fused)
	}
	window := fused[start:end]

	snippetChars := req.SnippetChars
	if snippetChars <= 0 {
		snippetChars = 200
	}

	out := make([]ResultHit, 0, len(window))
	for _, h := range window {
		meta, _ := o.Source.FrameMeta(h.FrameID)
		text, _ := o.Source.FrameText(h.FrameID)
		snippets := AssembleSnippets(text, queryWords(req.Query), snippetChars, 3, 0)
		out = append(out, ResultHit{
			FrameID:  h.FrameID,
			Score:    h.Score,
			Title:    meta.Title,
			URI:      meta.URI,
			Snippets: snippets,
		})
	}

	return Response{Hits: out, NextCursor: end, HasMore: hasMore}, nil
}

func (o *Orchestrator) contentTimestamp(frameID uint64) int64 {
	text, ok := o.Source.FrameText(frameID)
	if ok {
		if ts, found := ExtractContentDate(text); found {
			return ts
		}
	}
	meta, _ := o.Source.FrameMeta(frameID)
	return meta.Timestamp
}

func filterByTemporal(hits []FusedHit, from, to int64, src Source) []FusedHit {
	out := hits[:0:0]
	for _, h := range hits {
		meta, ok := src.FrameMeta(h.FrameID)
		if !ok {
			continue
		}
		if meta.Timestamp < from || meta.Timestamp > to {
			continue
		}
		out = append(out, h)
	}
	return out
}

func queryWords(q string) []string {
	return lexindex.TokenizeFiltered(q)
}
