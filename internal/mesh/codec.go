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

import (
	"encoding/binary"

	"github.com/klauspost/compress/zstd"
	"github.com/launix-de/memvault/internal/format"
	"github.com/launix-de/memvault/internal/vaulterr"
)

const (
	blobMagic   = "MVLM"
	blobVersion = uint16(1)
)

// Encode serializes the graph as magic + version + u64 payload_len +
// zstd(bincode(nodes, edges)), matching spec.md §4.7/§6.
func (g *Graph) Encode() ([]byte, error) {
	w := format.NewWriter()
	nodes := g.SortedNodes()
	edges := g.SortedEdges()

	w.U32(uint32(len(nodes)))
	for _, n := range nodes {
		w.U64(n.ID)
		w.Str(n.CanonicalName)
		w.Str(n.DisplayName)
		w.U8(uint8(n.Kind))
		w.U8(n.Confidence)
		w.U32(uint32(len(n.FrameIDs)))
		for _, f := range n.FrameIDs {
			w.U64(f)
		}
		w.U32(uint32(len(n.Mentions)))
		for _, m := range n.Mentions {
			w.U64(m.FrameID)
			w.U32(m.ByteStart)
			w.U32(m.ByteLen)
		}
	}

	w.U32(uint32(len(edges)))
	for _, e := range edges {
		w.U64(e.From)
		w.U64(e.To)
		w.Bool(e.Link.Known != "")
		w.Str(e.Link.Known)
		w.Str(e.Link.Custom)
		w.U8(e.Confidence)
		w.U64(e.FrameID)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindResource, "mesh.Encode", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(w.Bytes(), nil)

	out := make([]byte, 0, len(blobMagic)+2+8+len(compressed))
	out = append(out, blobMagic...)
	var tmp [8]byte
	binary.LittleEndian.PutUint16(tmp[:2], blobVersion)
	out = append(out, tmp[:2]...)
	binary.LittleEndian.PutUint64(tmp[:8], uint64(len(compressed)))
	out = append(out, tmp[:8]...)
	out = append(out, compressed...)
	return out, nil
}

// Decode parses a blob produced by Encode, enforcing the DoS limits
// (<=1M nodes, <=5M edges).
func Decode(buf []byte) (g *Graph, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, vaulterr.Newf(vaulterr.KindFormat, "mesh.Decode", "%v", r)
		}
	}()

	if len(buf) < len(blobMagic)+2+8 {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "mesh.Decode", "short blob")
	}
	if string(buf[:len(blobMagic)]) != blobMagic {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "mesh.Decode", "bad magic")
	}
	pos := len(blobMagic)
	_ = binary.LittleEndian.Uint16(buf[pos : pos+2])
	pos += 2
	payloadLen := binary.LittleEndian.Uint64(buf[pos : pos+8])
	pos += 8
	if uint64(len(buf)-pos) < payloadLen {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "mesh.Decode", "truncated payload")
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindResource, "mesh.Decode", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(buf[pos:pos+int(payloadLen)], nil)
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindIntegrity, "mesh.Decode", err)
	}

	r := format.NewReader(raw)
	g = New()

	numNodes := int(r.U32())
	if numNodes > maxNodes {
		return nil, vaulterr.Newf(vaulterr.KindIntegrity, "mesh.Decode", "node count %d exceeds limit", numNodes)
	}
	for i := 0; i < numNodes; i++ {
		var n Node
		n.ID = r.U64()
		n.CanonicalName = r.Str()
		n.DisplayName = r.Str()
		n.Kind = NodeKind(r.U8())
		n.Confidence = r.U8()
		nf := int(r.U32())
		n.FrameIDs = make([]uint64, nf)
		for j := range n.FrameIDs {
			n.FrameIDs[j] = r.U64()
		}
		nm := int(r.U32())
		n.Mentions = make([]Mention, nm)
		for j := range n.Mentions {
			n.Mentions[j] = Mention{FrameID: r.U64(), ByteStart: r.U32(), ByteLen: r.U32()}
		}
		g.nodes[n.ID] = &n
	}

	numEdges := int(r.U32())
	if numEdges > maxEdges {
		return nil, vaulterr.Newf(vaulterr.KindIntegrity, "mesh.Decode", "edge count %d exceeds limit", numEdges)
	}
	for i := 0; i < numEdges; i++ {
		var e Edge
		e.From = r.U64()
		e.To = r.U64()
		isKnown := r.Bool()
		known := r.Str()
		custom := r.Str()
		if isKnown {
			e.Link = LinkType{Known: known}
		} else {
			e.Link = LinkType{Custom: custom}
		}
		e.Confidence = r.U8()
		e.FrameID = r.U64()
		key := edgeKey{from: e.From, to: e.To, link: e.Link.String()}
		g.edges[key] = &e
	}

	return g, nil
}
