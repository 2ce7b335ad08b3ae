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

package vecindex

import (
	"math"
	"math/rand"
	"sort"

	"github.com/launix-de/memvault/internal/vaulterr"
)

const (
	pqDimension   = 384
	pqSubspaces   = 96
	pqSubspaceLen = pqDimension / pqSubspaces // 4
	pqK           = 256
	pqMaxIters    = 25
	// MinTrainingVectors below this count, PQ silently falls back to flat
	// (spec.md §4.5 fallback rule): the training set is too small to learn
	// useful codebooks.
	MinTrainingVectors = 100
)

// Codebook holds the k-means centroids for one subspace: pqK centroids of
// pqSubspaceLen float32 each.
type Codebook [pqK][pqSubspaceLen]float32

// PQ96 is the Product-Quantized vector index for 384-dimension embeddings.
type PQ96 struct {
	Codebooks [pqSubspaces]Codebook
	Codes     map[uint64][pqSubspaces]uint8
	order     []uint64
}

// TrainPQ96 builds a PQ96 index from vectors via per-subspace k-means with
// k-means++ initialization, up to pqMaxIters iterations. A nil rng uses
// math/rand's Float64. Returns an error if any vector's dimension is not 384.
func TrainPQ96(records []Record, rng func() float64) (*PQ96, error) {
	if rng == nil {
		rng = rand.Float64
	}
	for _, r := range records {
		if len(r.Embedding) != pqDimension {
			return nil, vaulterr.Newf(vaulterr.KindSchema, "vecindex.TrainPQ96", "dimension mismatch: expected %d, actual %d", pqDimension, len(r.Embedding))
		}
	}
	pq := &PQ96{Codes: make(map[uint64][pqSubspaces]uint8, len(records))}

	for s := 0; s < pqSubspaces; s++ {
		sub := make([][pqSubspaceLen]float32, len(records))
		for i, r := range records {
			copy(sub[i][:], r.Embedding[s*pqSubspaceLen:(s+1)*pqSubspaceLen])
		}
		pq.Codebooks[s] = kmeans(sub, rng)
	}

	for _, r := range records {
		var codes [pqSubspaces]uint8
		for s := 0; s < pqSubspaces; s++ {
			var sub [pqSubspaceLen]float32
			copy(sub[:], r.Embedding[s*pqSubspaceLen:(s+1)*pqSubspaceLen])
			codes[s] = nearestCentroid(pq.Codebooks[s], sub)
		}
		pq.Codes[r.FrameID] = codes
		pq.order = append(pq.order, r.FrameID)
	}
	return pq, nil
}

// kmeans runs k-means++ init followed by Lloyd iterations over points,
// returning pqK centroids (or fewer distinct points repeated if the input
// is smaller than pqK).
func kmeans(points [][pqSubspaceLen]float32, rng func() float64) Codebook {
	var cb Codebook
	n := len(points)
	if n == 0 {
		return cb
	}
	// k-means++ seed selection.
	cb[0] = points[int(rng()*float64(n))%n]
	chosen := 1
	dist2 := make([]float64, n)
	for chosen < pqK {
		var total float64
		for i, p := range points {
			d := sqDist(p, cb[chosen-1])
			if chosen == 1 || d < dist2[i] {
				dist2[i] = d
			}
			total += dist2[i]
		}
		if total == 0 {
			cb[chosen] = points[chosen%n]
			chosen++
			continue
		}
		target := rng() * total
		var cum float64
		idx := 0
		for i, d := range dist2 {
			cum += d
			if cum >= target {
				idx = i
				break
			}
		}
		cb[chosen] = points[idx]
		chosen++
	}

	assign := make([]int, n)
	for iter := 0; iter < pqMaxIters; iter++ {
		changed := false
		for i, p := range points {
			best, bestDist := 0, math.MaxFloat64
			for k := 0; k < pqK; k++ {
				d := sqDist(p, cb[k])
				if d < bestDist {
					bestDist = d
					best = k
				}
			}
			if assign[i] != best {
				changed = true
				assign[i] = best
			}
		}
		var sums [pqK][pqSubspaceLen]float64
		var counts [pqK]int
		for i, p := range points {
			k := assign[i]
			counts[k]++
			for d := 0; d < pqSubspaceLen; d++ {
				sums[k][d] += float64(p[d])
			}
		}
		for k := 0; k < pqK; k++ {
			if counts[k] == 0 {
				continue
			}
			for d := 0; d < pqSubspaceLen; d++ {
				cb[k][d] = float32(sums[k][d] / float64(counts[k]))
			}
		}
		if !changed {
			break
		}
	}
	return cb
}

func sqDist(a, b [pqSubspaceLen]float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func nearestCentroid(cb Codebook, v [pqSubspaceLen]float32) uint8 {
	best, bestDist := 0, math.MaxFloat64
	for k := 0; k < pqK; k++ {
		d := sqDist(v, cb[k])
		if d < bestDist {
			bestDist = d
			best = k
		}
	}
	return uint8(best)
}

// Search runs asymmetric distance computation (ADC): per subspace, the
// squared L2 distance from the query subspace to each candidate's
// centroid is summed, then square-rooted.
func (pq *PQ96) Search(query []float32, topK int) ([]ScoredHit, error) {
	if len(query) != pqDimension {
		return nil, vaulterr.Newf(vaulterr.KindSchema, "vecindex.PQ96.Search", "dimension mismatch: expected %d, actual %d", pqDimension, len(query))
	}
	var qSubs [pqSubspaces][pqSubspaceLen]float32
	for s := 0; s < pqSubspaces; s++ {
		copy(qSubs[s][:], query[s*pqSubspaceLen:(s+1)*pqSubspaceLen])
	}

	hits := make([]ScoredHit, 0, len(pq.order))
	for _, id := range pq.order {
		codes := pq.Codes[id]
		var sum float64
		for s := 0; s < pqSubspaces; s++ {
			sum += sqDist(qSubs[s], pq.Codebooks[s][codes[s]])
		}
		hits = append(hits, ScoredHit{FrameID: id, Score: -math.Sqrt(sum)})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].FrameID < hits[j].FrameID
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Encode packs each vector as its frame id (u64, little-endian) followed by
// its 96 code bytes, sorted by frame id.
func (pq *PQ96) Encode() []byte {
	ids := append([]uint64(nil), pq.order...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	buf := make([]byte, 0, len(ids)*(8+pqSubspaces))
	var idBuf [8]byte
	for _, id := range ids {
		for i := 0; i < 8; i++ {
			idBuf[i] = byte(id >> (8 * i))
		}
		buf = append(buf, idBuf[:]...)
		codes := pq.Codes[id]
		buf = append(buf, codes[:]...)
	}
	return buf
}
