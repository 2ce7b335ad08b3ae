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

// Package mesh implements the Logic-Mesh entity graph (spec.md §4.7): a
// deterministic node/edge store with adjacency index, merge, and bounded
// follow() traversal.
package mesh

import (
	"sort"
	"strconv"

	"github.com/launix-de/memvault/internal/sumcheck"
)

type NodeKind uint8

const (
	KindPerson NodeKind = iota
	KindOrganization
	KindProject
	KindEmail
	KindDate
	KindLocation
	KindProduct
	KindEvent
	KindMoney
	KindURL
	KindOther
)

// Mention is one (frame_id, byte_start, byte_len) occurrence of a node.
type Mention struct {
	FrameID   uint64
	ByteStart uint32
	ByteLen   uint32
}

// Node is one entity.
type Node struct {
	ID            uint64
	CanonicalName string
	DisplayName   string
	Kind          NodeKind
	Confidence    uint8
	FrameIDs      []uint64
	Mentions      []Mention
}

// LinkType is either a well-known enumerated link or a Custom(string).
type LinkType struct {
	Known  string // "" when Custom is set
	Custom string
}

func (l LinkType) String() string {
	if l.Known != "" {
		return l.Known
	}
	return l.Custom
}

// Edge connects two nodes.
type Edge struct {
	From       uint64
	To         uint64
	Link       LinkType
	Confidence uint8
	FrameID    uint64
}

const (
	maxNodes = 1_000_000
	maxEdges = 5_000_000
)

// NodeID hashes (canonical_name, kind) into a stable 64-bit id.
func NodeID(canonicalName string, kind NodeKind) uint64 {
	sum := sumcheck.Sum256([]byte(canonicalName + "\x00" + strconv.Itoa(int(kind))))
	var id uint64
	for i := 0; i < 8; i++ {
		id = id<<8 | uint64(sum[i])
	}
	return id
}

// Graph is the in-memory Logic-Mesh.
type Graph struct {
	nodes map[uint64]*Node
	edges map[edgeKey]*Edge
	adj   map[uint64][]uint64 // lazily built adjacency: node -> neighbor node ids
}

type edgeKey struct {
	from, to uint64
	link     string
}

func New() *Graph {
	return &Graph{nodes: make(map[uint64]*Node), edges: make(map[edgeKey]*Edge)}
}

// MergeNode dedups by (canonical_name, kind), taking max confidence and
// unioning frame_ids/mentions.
func (g *Graph) MergeNode(n Node) {
	id := NodeID(n.CanonicalName, n.Kind)
	n.ID = id
	existing, ok := g.nodes[id]
	if !ok {
		cp := n
		g.nodes[id] = &cp
		g.adj = nil
		return
	}
	if n.Confidence > existing.Confidence {
		existing.Confidence = n.Confidence
	}
	if existing.DisplayName == "" {
		existing.DisplayName = n.DisplayName
	}
	existing.FrameIDs = unionUint64(existing.FrameIDs, n.FrameIDs)
	existing.Mentions = append(existing.Mentions, n.Mentions...)
}

// MergeEdge dedups by (from, to, link), taking max confidence.
func (g *Graph) MergeEdge(e Edge) {
	key := edgeKey{from: e.From, to: e.To, link: e.Link.String()}
	if existing, ok := g.edges[key]; ok {
		if e.Confidence > existing.Confidence {
			existing.Confidence = e.Confidence
		}
		return
	}
	cp := e
	g.edges[key] = &cp
	g.adj = nil
}

func unionUint64(a, b []uint64) []uint64 {
	set := make(map[uint64]bool, len(a)+len(b))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		set[v] = true
	}
	out := make([]uint64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (g *Graph) buildAdjacency() {
	g.adj = make(map[uint64][]uint64, len(g.nodes))
	for _, e := range g.edges {
		g.adj[e.From] = append(g.adj[e.From], e.To)
	}
}

// FollowResult is one node reached during a follow() traversal.
type FollowResult struct {
	Node       *Node
	Kind       NodeKind
	Confidence uint8
	FrameIDs   []uint64
	PathLength int
}

// Follow does a bounded BFS from start, matching edges by link, up to hops.
func (g *Graph) Follow(start uint64, link LinkType, hops int) []FollowResult {
	if g.adj == nil {
		g.buildAdjacency()
	}
	visited := map[uint64]int{start: 0}
	queue := []uint64{start}
	var results []FollowResult
	for len(queue) > 0 && hops > 0 {
		var next []uint64
		for _, cur := range queue {
			depth := visited[cur]
			if depth >= hops {
				continue
			}
			for _, neigh := range g.adj[cur] {
				key := edgeKey{from: cur, to: neigh, link: link.String()}
				if _, ok := g.edges[key]; !ok {
					continue
				}
				if _, seen := visited[neigh]; seen {
					continue
				}
				visited[neigh] = depth + 1
				next = append(next, neigh)
				if n, ok := g.nodes[neigh]; ok {
					results = append(results, FollowResult{
						Node:       n,
						Kind:       n.Kind,
						Confidence: n.Confidence,
						FrameIDs:   n.FrameIDs,
						PathLength: depth + 1,
					})
				}
			}
		}
		queue = next
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Confidence > results[j].Confidence })
	return results
}

// SortedNodes returns nodes sorted by id, for deterministic serialization.
func (g *Graph) SortedNodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SortedEdges returns edges sorted by (from, to, link-as-str).
func (g *Graph) SortedEdges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].Link.String() < out[j].Link.String()
	})
	return out
}

func (g *Graph) NumNodes() int { return len(g.nodes) }
func (g *Graph) NumEdges() int { return len(g.edges) }
