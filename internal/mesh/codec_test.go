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

func sampleGraph() *Graph {
	g := New()
	g.MergeNode(Node{
		CanonicalName: "Acme Corp",
		DisplayName:   "Acme",
		Kind:          KindOrganization,
		Confidence:    90,
		FrameIDs:      []uint64{1, 2},
		Mentions:      []Mention{{FrameID: 1, ByteStart: 0, ByteLen: 9}},
	})
	g.MergeNode(Node{CanonicalName: "Alice", Kind: KindPerson, Confidence: 70, FrameIDs: []uint64{1}})
	idAcme := NodeID("Acme Corp", KindOrganization)
	idAlice := NodeID("Alice", KindPerson)
	g.MergeEdge(Edge{From: idAlice, To: idAcme, Link: LinkType{Known: "worksAt"}, Confidence: 60, FrameID: 1})
	g.MergeEdge(Edge{From: idAlice, To: idAcme, Link: LinkType{Custom: "mentionedWith"}, Confidence: 30, FrameID: 2})
	return g
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g := sampleGraph()
	buf, err := g.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.NumNodes() != g.NumNodes() {
		t.Fatalf("NumNodes() = %d, want %d", got.NumNodes(), g.NumNodes())
	}
	if got.NumEdges() != g.NumEdges() {
		t.Fatalf("NumEdges() = %d, want %d", got.NumEdges(), g.NumEdges())
	}

	wantNodes, gotNodes := g.SortedNodes(), got.SortedNodes()
	for i := range wantNodes {
		if wantNodes[i].CanonicalName != gotNodes[i].CanonicalName {
			t.Fatalf("node[%d].CanonicalName = %q, want %q", i, gotNodes[i].CanonicalName, wantNodes[i].CanonicalName)
		}
		if wantNodes[i].Confidence != gotNodes[i].Confidence {
			t.Fatalf("node[%d].Confidence = %d, want %d", i, gotNodes[i].Confidence, wantNodes[i].Confidence)
		}
	}

	wantEdges, gotEdges := g.SortedEdges(), got.SortedEdges()
	for i := range wantEdges {
		if wantEdges[i].Link.String() != gotEdges[i].Link.String() {
			t.Fatalf("edge[%d].Link = %q, want %q", i, gotEdges[i].Link.String(), wantEdges[i].Link.String())
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	buf := make([]byte, 32)
	if _, err := Decode(buf); err == nil {
		t.Fatal("Decode should reject a buffer without the blob magic")
	}
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatal("Decode should reject a too-short buffer")
	}
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	g := sampleGraph()
	buf, err := g.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	truncated := buf[:len(buf)-10]
	if _, err := Decode(truncated); err == nil {
		t.Fatal("Decode should reject a truncated payload")
	}
}

func TestEncodeEmptyGraph(t *testing.T) {
	g := New()
	buf, err := g.Encode()
	if err != nil {
		t.Fatalf("Encode on empty graph: %v", err)
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode on empty graph: %v", err)
	}
	if got.NumNodes() != 0 || got.NumEdges() != 0 {
		t.Fatalf("decoded empty graph has %d nodes, %d edges, want 0,0", got.NumNodes(), got.NumEdges())
	}
}
