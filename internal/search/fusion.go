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
	"math"
	"sort"

	"github.com/launix-de/memvault/internal/lexindex"
	"github.com/launix-de/memvault/internal/vecindex"
)

const rrfK = 60

// FusedHit is one frame's combined lex+vector ranking, prior to recency
// reranking.
type FusedHit struct {
	FrameID uint64
	Score   float64
	LexRank int // 1-based; 0 means absent from that lane
	VecRank int
}

// Fuse combines lex hits (already rank-ordered) and vector hits via
// Reciprocal Rank Fusion: score_rrf(d) = sum_lane 1/(k + rank_lane(d)),
// k=60, per spec.md §4.9 step 5.
func Fuse(lexHits []lexindex.Hit, vecHits []vecindex.ScoredHit) []FusedHit {
	scores := make(map[uint64]*FusedHit)

	get := func(id uint64) *FusedHit {
		h, ok := scores[id]
		if !ok {
			h = &FusedHit{FrameID: id}
			scores[id] = h
		}
		return h
	}

	for i, lh := range lexHits {
		h := get(lh.FrameID)
		h.LexRank = i + 1
		h.Score += 1.0 / float64(rrfK+i+1)
	}
	for i, vh := range vecHits {
		h := get(vh.FrameID)
		h.VecRank = i + 1
		h.Score += 1.0 / float64(rrfK+i+1)
	}

	out := make([]FusedHit, 0, len(scores))
	for _, h := range scores {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].FrameID < out[j].FrameID
	})
	return out
}

// RecencyRerank applies the 0.4/0.6 one-day-half-life recency boost within
// the final result window: combined = 0.4*base + 0.6*base*exp(-ln(2)*
// (max_ts-ts_doc)/86400), per spec.md §4.9 step 6. tsOf resolves each
// frame's content date (falling back to frame timestamp at the caller).
func RecencyRerank(hits []FusedHit, tsOf func(frameID uint64) int64) []FusedHit {
	if len(hits) == 0 {
		return hits
	}
	var maxTS int64
	have := false
	for _, h := range hits {
		ts := tsOf(h.FrameID)
		if !have || ts > maxTS {
			maxTS, have = ts, true
		}
	}
	out := make([]FusedHit, len(hits))
	copy(out, hits)
	for i := range out {
		ts := tsOf(out[i].FrameID)
		age := float64(maxTS - ts)
		decay := math.Exp(-math.Ln2 * age / 86400)
		base := out[i].Score
		out[i].Score = 0.4*base + 0.6*base*decay
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].FrameID < out[j].FrameID
	})
	return out
}
