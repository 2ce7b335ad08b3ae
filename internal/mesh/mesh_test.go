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

package mesh

import "testing"

func TestNodeIDStableForSameInput(t *testing.T) {
	a := NodeID("Acme Corp", KindOrganization)
	b := NodeID("Acme Corp", KindOrganization)
	if a != b {
		t.Fatal("NodeID is not stable for identical (name, kind) input")
	}
}

func TestNodeIDDiffersByKind(t *testing.T) {
	a := NodeID("Acme", KindOrganization)
	b := NodeID("Acme", KindPerson)
	if a == b {
		t.Fatal("NodeID should differ when kind differs")
	}
}

func TestMergeNodeDedupsByCanonicalNameAndKind(t *testing.T) {
	g := New()
	g.MergeNode(Node{CanonicalName: "Alice", Kind: KindPerson, Confidence: 50, FrameIDs: []uint64{1}})
	g.MergeNode(Node{CanonicalName: "Alice", Kind: KindPerson, Confidence: 80, FrameIDs: []uint64{2}})

	if g.NumNodes() != 1 {
		t.Fatalf("NumNodes() = %d, want 1 (dedup expected)", g.NumNodes())
	}
	nodes := g.SortedNodes()
	if nodes[0].Confidence != 80 {
		t.Fatalf("Confidence = %d, want 80 (max of merged)", nodes[0].Confidence)
	}
	if len(nodes[0].FrameIDs) != 2 {
		t.Fatalf("FrameIDs = %v, want union of both merges", nodes[0].FrameIDs)
	}
}

func TestMergeEdgeDedupsByFromToLink(t *testing.T) {
	g := New()
	link := LinkType{Known: "worksAt"}
	g.MergeEdge(Edge{From: 1, To: 2, Link: link, Confidence: 40})
	g.MergeEdge(Edge{From: 1, To: 2, Link: link, Confidence: 90})

	if g.NumEdges() != 1 {
		t.Fatalf("NumEdges() = %d, want 1 (dedup expected)", g.NumEdges())
	}
	edges := g.SortedEdges()
	if edges[0].Confidence != 90 {
		t.Fatalf("Confidence = %d, want 90 (max of merged)", edges[0].Confidence)
	}
}

func TestFollowTraversesEdgesOfMatchingLink(t *testing.T) {
	g := New()
	g.MergeNode(Node{CanonicalName: "A", Kind: KindPerson})
	g.MergeNode(Node{CanonicalName: "B", Kind: KindPerson})
	g.MergeNode(Node{CanonicalName: "C", Kind: KindPerson})
	idA := NodeID("A", KindPerson)
	idB := NodeID("B", KindPerson)
	idC := NodeID("C", KindPerson)

	link := LinkType{Known: "knows"}
	other := LinkType{Known: "dislikes"}
	g.MergeEdge(Edge{From: idA, To: idB, Link: link, Confidence: 10})
	g.MergeEdge(Edge{From: idB, To: idC, Link: link, Confidence: 20})
	g.MergeEdge(Edge{From: idA, To: idC, Link: other, Confidence: 99})

	results := g.Follow(idA, link, 2)
	if len(results) != 2 {
		t.Fatalf("Follow() = %d results, want 2 (B and C via 'knows')", len(results))
	}
}

func TestFollowRespectsHopLimit(t *testing.T) {
	g := New()
	g.MergeNode(Node{CanonicalName: "A", Kind: KindPerson})
	g.MergeNode(Node{CanonicalName: "B", Kind: KindPerson})
	g.MergeNode(Node{CanonicalName: "C", Kind: KindPerson})
	idA := NodeID("A", KindPerson)
	idB := NodeID("B", KindPerson)
	idC := NodeID("C", KindPerson)

	link := LinkType{Known: "knows"}
	g.MergeEdge(Edge{From: idA, To: idB, Link: link})
	g.MergeEdge(Edge{From: idB, To: idC, Link: link})

	results := g.Follow(idA, link, 1)
	if len(results) != 1 {
		t.Fatalf("Follow() with hops=1 = %d results, want 1 (only B)", len(results))
	}
	if results[0].Node.CanonicalName != "B" {
		t.Fatalf("Follow() with hops=1 reached %q, want B", results[0].Node.CanonicalName)
	}
}

func TestSortedNodesAndEdgesAreOrdered(t *testing.T) {
	g := New()
	g.MergeNode(Node{CanonicalName: "Zeta", Kind: KindPerson})
	g.MergeNode(Node{CanonicalName: "Alpha", Kind: KindPerson})
	nodes := g.SortedNodes()
	if nodes[0].ID > nodes[1].ID {
		t.Fatal("SortedNodes() not sorted by ID")
	}
}

func TestLinkTypeString(t *testing.T) {
	known := LinkType{Known: "worksAt"}
	custom := LinkType{Custom: "mentorOf"}
	if known.String() != "worksAt" {
		t.Fatalf("String() on known = %q, want worksAt", known.String())
	}
	if custom.String() != "mentorOf" {
		t.Fatalf("String() on custom = %q, want mentorOf", custom.String())
	}
}
