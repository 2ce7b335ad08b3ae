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

package catalog

import "testing"

func TestPoolExecuteReturnsResultsInPlanOrder(t *testing.T) {
	p := NewPool(BuildOpts{Threads: 4, QueueDepth: 4})
	plans := []SegmentPlan{
		{Chunks: []SegmentChunk{{FrameID: 1, Text: "alpha beta", URI: "file://a", Timestamp: 1}}},
		{Chunks: []SegmentChunk{{FrameID: 2, Text: "gamma delta", URI: "file://b", Timestamp: 2}}},
		{Chunks: []SegmentChunk{{FrameID: 3, Text: "epsilon zeta", URI: "file://c", Timestamp: 3}}},
	}

	results, err := p.Execute(plans)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Execute() returned %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.PlanIndex != i {
			t.Fatalf("results[%d].PlanIndex = %d, want %d (results must be sorted by plan index)", i, r.PlanIndex, i)
		}
		if r.LexIndex == nil {
			t.Fatalf("results[%d].LexIndex is nil, want a built index", i)
		}
	}
}

func TestPoolExecuteEmptyPlans(t *testing.T) {
	p := NewPool(BuildOpts{Threads: 2, QueueDepth: 2})
	results, err := p.Execute(nil)
	if err != nil {
		t.Fatalf("Execute(nil): %v", err)
	}
	if results != nil {
		t.Fatalf("Execute(nil) = %v, want nil", results)
	}
}

func TestPoolExecuteSkipsEmptyPlan(t *testing.T) {
	p := NewPool(BuildOpts{Threads: 1, QueueDepth: 1})
	results, err := p.Execute([]SegmentPlan{{}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Execute() returned %d results, want 1", len(results))
	}
	if results[0].LexIndex != nil {
		t.Fatal("an empty plan should not produce a lex index")
	}
}

func TestNewPoolClampsToMinimums(t *testing.T) {
	p := NewPool(BuildOpts{Threads: 0, QueueDepth: 0})
	if p.opts.Threads < 1 {
		t.Fatalf("Threads = %d, want clamped to at least 1", p.opts.Threads)
	}
	if p.opts.QueueDepth < 1 {
		t.Fatalf("QueueDepth = %d, want clamped to at least 1", p.opts.QueueDepth)
	}
}

func TestPoolExecuteBuildsVecEngineWhenEmbeddingsPresent(t *testing.T) {
	p := NewPool(BuildOpts{Threads: 1, QueueDepth: 1})
	plans := []SegmentPlan{
		{Chunks: []SegmentChunk{{FrameID: 1, Text: "alpha", Embedding: []float32{1, 0, 0}, Timestamp: 1}}},
	}
	results, err := p.Execute(plans)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if results[0].VecEngine == nil {
		t.Fatal("VecEngine should be built when chunks carry embeddings")
	}
	if results[0].TimeIndex == nil {
		t.Fatal("TimeIndex should always be built alongside lex/vec")
	}
}
