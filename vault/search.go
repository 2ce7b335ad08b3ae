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
	"time"

	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/replay"
	"github.com/launix-de/memvault/internal/search"
)

// SearchRequest re-exports search.Request.
type SearchRequest = search.Request

// SearchResponse re-exports search.Response.
type SearchResponse = search.Response

// Search runs the full lex/vector/sketch orchestrator pipeline (spec.md
// §4.9) over this vault's current in-memory state.
func (v *Vault) Search(req SearchRequest) (SearchResponse, error) {
	v.mu.Lock()
	orch := search.Orchestrator{Lex: v.lex, Vec: v.vec, Sketch: v.sk, Source: v}
	v.mu.Unlock()

	started := time.Now()
	resp, err := orch.Search(req)

	mode := "lexical"
	if len(req.Embedding) > 0 {
		mode = "hybrid"
	}
	v.mu.Lock()
	v.recordAction(replay.ActionType{Kind: replay.ActionFind, Query: req.Query, Mode: mode, ResultCount: len(resp.Hits)}, nil, nil, nil, started)
	v.mu.Unlock()
	return resp, err
}

// FrameMeta implements search.Source.
func (v *Vault) FrameMeta(frameID uint64) (search.FrameMeta, bool) {
	f := v.toc.FrameByID(frameID)
	if f == nil || f.Status != model.StatusActive {
		return search.FrameMeta{}, false
	}
	return search.FrameMeta{URI: f.URI, Title: f.Title, Track: f.Track, Tags: f.Tags, Timestamp: f.AnchorTS}, true
}

// FrameText implements search.Source by reading the frame's raw payload
// bytes back off disk, through payloadCache so repeated lookups (fanning
// out across Search, consolidation candidates, and segment building)
// don't re-read the same bytes every time.
func (v *Vault) FrameText(frameID uint64) (string, bool) {
	if text, ok := v.payloadCache.Get(frameID); ok {
		return text, true
	}
	f := v.toc.FrameByID(frameID)
	if f == nil {
		return "", false
	}
	buf := make([]byte, f.PayloadLength)
	if _, err := v.f.ReadAt(buf, int64(f.PayloadOffset)); err != nil {
		return "", false
	}
	text := string(buf)
	v.payloadCache.Put(frameID, text)
	return text, true
}

// Ask synthesizes a bounded context window over the best-matching frames
// for a natural-language question, per spec.md §4.9's Ask path.
func (v *Vault) Ask(query string, topK int) (string, error) {
	resp, err := v.Search(SearchRequest{Query: query, TopK: topK})
	if err != nil {
		return "", err
	}
	hits := make([]search.DocHit, 0, len(resp.Hits))
	for i, h := range resp.Hits {
		snippet := ""
		matches := len(h.Snippets)
		if matches > 0 {
			snippet = h.Snippets[0].Text
		}
		hits = append(hits, search.DocHit{FrameID: h.FrameID, BaseURI: h.URI, Title: h.Title, Snippet: snippet, Matches: matches, Rank: i + 1})
	}

	v.mu.Lock()
	v.recordAction(replay.ActionType{Kind: replay.ActionAsk, Query: query}, nil, nil, nil, time.Now())
	v.mu.Unlock()

	return search.SynthesizeContext(hits), nil
}
