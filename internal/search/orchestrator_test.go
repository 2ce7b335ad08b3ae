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
	"testing"

	"github.com/launix-de/memvault/internal/lexindex"
)

type fakeSource struct {
	meta map[uint64]FrameMeta
	text map[uint64]string
}

func (f *fakeSource) FrameMeta(frameID uint64) (FrameMeta, bool) {
	m, ok := f.meta[frameID]
	return m, ok
}

func (f *fakeSource) FrameText(frameID uint64) (string, bool) {
	t, ok := f.text[frameID]
	return t, ok
}

func newTestOrchestrator() (*Orchestrator, *fakeSource) {
	docs := []lexindex.Doc{
		{FrameID: 1, Content: "the quick brown fox", URI: "file://fox.txt"},
		{FrameID: 2, Content: "a lazy dog sleeps", URI: "file://dog.txt"},
	}
	lex := lexindex.NewEngine()
	lex.AddSegment(lexindex.Build(docs))

	src := &fakeSource{
		meta: map[uint64]FrameMeta{
			1: {URI: "file://fox.txt", Title: "Fox", Timestamp: 100},
			2: {URI: "file://dog.txt", Title: "Dog", Timestamp: 200},
		},
		text: map[uint64]string{
			1: "the quick brown fox",
			2: "a lazy dog sleeps",
		},
	}
	return &Orchestrator{Lex: lex, Source: src}, src
}

func TestOrchestratorSearchReturnsMatchingHit(t *testing.T) {
	orch, _ := newTestOrchestrator()
	resp, err := orch.Search(Request{Query: "fox", TopK: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].FrameID != 1 {
		t.Fatalf("Search(\"fox\") = %+v, want a single hit on frame 1", resp.Hits)
	}
}

func TestOrchestratorSearchDefaultsTopK(t *testing.T) {
	orch, _ := newTestOrchestrator()
	resp, err := orch.Search(Request{Query: "dog"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Hits) != 1 {
		t.Fatalf("Search(\"dog\") returned %d hits, want 1", len(resp.Hits))
	}
}

func TestOrchestratorSearchPropagatesParseError(t *testing.T) {
	orch, _ := newTestOrchestrator()
	if _, err := orch.Search(Request{Query: "alpha)"}); err == nil {
		t.Fatal("Search should propagate a parse error for malformed query syntax")
	}
}

func TestOrchestratorSearchCursorPagination(t *testing.T) {
	orch, _ := newTestOrchestrator()
	resp, err := orch.Search(Request{Query: "fox OR dog", TopK: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Hits) != 1 {
		t.Fatalf("Search() with TopK=1 returned %d hits, want 1", len(resp.Hits))
	}
	if !resp.HasMore {
		t.Fatal("HasMore should be true when more hits remain beyond the page")
	}
	if resp.NextCursor != 1 {
		t.Fatalf("NextCursor = %d, want 1", resp.NextCursor)
	}
}

func TestOrchestratorSearchNoMatchReturnsEmpty(t *testing.T) {
	orch, _ := newTestOrchestrator()
	resp, err := orch.Search(Request{Query: "zzz_no_such_term"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Hits) != 0 {
		t.Fatalf("Search() = %v, want no hits", resp.Hits)
	}
}
