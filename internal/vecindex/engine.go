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

import "github.com/launix-de/memvault/internal/model"

// Engine is one committed vector segment: either Flat or PQ96, chosen per
// the fallback rule in spec.md §4.5 ("fewer than 100 vectors -> flat").
type Engine struct {
	Compression model.Compression
	Flat        *Flat
	PQ          *PQ96
	Dimension   int
}

// BuildEngine trains a PQ96 index when requested and enough vectors are
// present, otherwise falls back to Flat.
func BuildEngine(records []Record, wantPQ bool, metric Metric, rng func() float64) (*Engine, error) {
	if wantPQ && len(records) >= MinTrainingVectors {
		pq, err := TrainPQ96(records, rng)
		if err != nil {
			return nil, err
		}
		return &Engine{Compression: model.CompressionPQ96, PQ: pq, Dimension: pqDimension}, nil
	}
	flat := NewFlat(metric)
	for _, r := range records {
		if err := flat.Add(r.FrameID, r.Embedding); err != nil {
			return nil, err
		}
	}
	return &Engine{Compression: model.CompressionNone, Flat: flat, Dimension: flat.Dimension}, nil
}

func (e *Engine) Search(query []float32, topK int) ([]ScoredHit, error) {
	if e.Compression == model.CompressionPQ96 {
		return e.PQ.Search(query, topK)
	}
	return e.Flat.Search(query, topK)
}
