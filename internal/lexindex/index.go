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

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/launix-de/memvault/internal/sumcheck"
)

// Doc is one document fed to the builder.
type Doc struct {
	FrameID   uint64
	Content   string
	Tags      []string
	Labels    []string
	Track     string
	URI       string
	Timestamp int64
}

// posting is a packed [docID:8][freq:4] pair kept sorted by docID per term.
type posting struct {
	docID uint64
	freq  uint32
}

// Index is an in-memory BM25 inverted index: the primary lex engine of
// spec.md §4.4, single-threaded per segment for determinism.
type Index struct {
	postings  map[string][]posting
	docLen    map[uint64]int
	docMeta   map[uint64]Doc
	totalLen  int64
	numDocs   int
}

// Build constructs an Index from docs, grounded on the packed
// [docID][freq] postings layout used by the pack's streaming indexer
// (other_examples/a021e5af, go-mizu-mizu's StreamlineIndexer).
func Build(docs []Doc) *Index {
	idx := &Index{
		postings: make(map[string][]posting),
		docLen:   make(map[uint64]int),
		docMeta:  make(map[uint64]Doc, len(docs)),
	}
	for _, d := range docs {
		idx.add(d)
	}
	for term, ps := range idx.postings {
		sort.Slice(ps, func(i, j int) bool { return ps[i].docID < ps[j].docID })
		idx.postings[term] = ps
	}
	return idx
}

func (idx *Index) add(d Doc) {
	freqs := make(map[string]uint32)
	fields := []string{d.Content}
	fields = append(fields, d.Tags...)
	fields = append(fields, d.Labels...)
	if d.Track != "" {
		fields = append(fields, d.Track)
	}
	n := 0
	for _, f := range fields {
		for _, t := range TokenizeFiltered(f) {
			freqs[t]++
			n++
		}
	}
	for term, freq := range freqs {
		idx.postings[term] = append(idx.postings[term], posting{docID: d.FrameID, freq: freq})
	}
	idx.docLen[d.FrameID] = n
	idx.docMeta[d.FrameID] = d
	idx.totalLen += int64(n)
	idx.numDocs++
}

func (idx *Index) avgDocLen() float64 {
	if idx.numDocs == 0 {
		return 0
	}
	return float64(idx.totalLen) / float64(idx.numDocs)
}

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// Hit is a ranked search result.
type Hit struct {
	FrameID uint64
	Score   float64
}

// Filter narrows a search to a set of allowed frame ids (nil = no filter),
// a URI, and a track/scope prefix.
type Filter struct {
	FrameIDs  map[uint64]bool
	URI       string
	ScopePrefix string
}

// Search runs a disjunctive-OR BM25 query over terms and returns hits
// sorted by descending score, capped at limit.
func (idx *Index) Search(terms []string, filter Filter, limit int) []Hit {
	if idx == nil || idx.numDocs == 0 {
		return nil
	}
	scores := make(map[uint64]float64)
	avgLen := idx.avgDocLen()
	for _, term := range terms {
		ps := idx.postings[term]
		if len(ps) == 0 {
			continue
		}
		idf := math.Log(1 + (float64(idx.numDocs)-float64(len(ps))+0.5)/(float64(len(ps))+0.5))
		for _, p := range ps {
			if !idx.passesFilter(p.docID, filter) {
				continue
			}
			dl := float64(idx.docLen[p.docID])
			tf := float64(p.freq)
			denom := tf + bm25K1*(1-bm25B+bm25B*dl/avgLen)
			scores[p.docID] += idf * (tf * (bm25K1 + 1)) / denom
		}
	}
	hits := make([]Hit, 0, len(scores))
	for id, sc := range scores {
		hits = append(hits, Hit{FrameID: id, Score: sc})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].FrameID < hits[j].FrameID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func (idx *Index) passesFilter(id uint64, f Filter) bool {
	if f.FrameIDs != nil && !f.FrameIDs[id] {
		return false
	}
	meta, ok := idx.docMeta[id]
	if !ok {
		return true
	}
	if f.URI != "" && meta.URI != f.URI {
		return false
	}
	if f.ScopePrefix != "" && len(meta.Track) < len(f.ScopePrefix) || (f.ScopePrefix != "" && meta.Track[:len(f.ScopePrefix)] != f.ScopePrefix) {
		return false
	}
	return true
}

// Checksum returns BLAKE3 of a deterministic encoding of the index, used
// as a segment's per-blob checksum (the "sorted file tree" checksum of
// §4.4 re-expressed as the sorted-terms byte encoding for an in-memory
// index).
func (idx *Index) Checksum() [32]byte {
	return sumcheck.Sum256(idx.Encode())
}

// Encode serializes the index to the packed postings layout described in
// spec.md §4.4/§6: sorted terms, each with packed [docID:8][freq:4] pairs.
func (idx *Index) Encode() []byte {
	terms := make([]string, 0, len(idx.postings))
	for t := range idx.postings {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	buf := make([]byte, 0, 1024)
	var tmp [8]byte
	binary.LittleEndian.PutUint32(tmp[:4], uint32(len(terms)))
	buf = append(buf, tmp[:4]...)
	for _, term := range terms {
		binary.LittleEndian.PutUint16(tmp[:2], uint16(len(term)))
		buf = append(buf, tmp[:2]...)
		buf = append(buf, term...)
		ps := idx.postings[term]
		binary.LittleEndian.PutUint32(tmp[:4], uint32(len(ps)))
		buf = append(buf, tmp[:4]...)
		for _, p := range ps {
			binary.LittleEndian.PutUint64(tmp[:8], p.docID)
			buf = append(buf, tmp[:8]...)
			binary.LittleEndian.PutUint32(tmp[:4], p.freq)
			buf = append(buf, tmp[:4]...)
		}
	}
	return buf
}

// NumDocs reports how many documents are indexed.
func (idx *Index) NumDocs() int { return idx.numDocs }
