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

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/launix-de/memvault/internal/lexindex"
	"github.com/launix-de/memvault/internal/timeindex"
	"github.com/launix-de/memvault/internal/vaulterr"
	"github.com/launix-de/memvault/internal/vecindex"
)

// SegmentChunk is one unit of pending work handed to a plan: a frame (or
// chunk-of-frame) ready for lex/vec/time artifact building.
type SegmentChunk struct {
	FrameID   uint64
	URI       string
	Text      string
	Tags      []string
	Embedding []float32
	Timestamp int64
}

// SegmentPlan is the planner's slice of pending work for one segment.
type SegmentPlan struct {
	Chunks []SegmentChunk
}

// PlannerMessage is the Plan|Shutdown sum type fed to workers (spec.md §4.8).
type PlannerMessage struct {
	Shutdown  bool
	PlanIndex int
	Plan      SegmentPlan
}

// SegmentResult is one plan's built artifacts.
type SegmentResult struct {
	PlanIndex int
	LexIndex  *lexindex.Index
	VecEngine *vecindex.Engine
	TimeIndex *timeindex.Index
}

// WorkerMessage is the Result|Error sum type returned by workers.
type WorkerMessage struct {
	Result SegmentResult
	Err    error
}

// BuildOpts configures segment building, mirroring the original's BuildOpts.
type BuildOpts struct {
	Threads    int
	QueueDepth int
	WantPQ     bool
	VecMetric  vecindex.Metric
	RNG        func() float64
}

// Pool drives segment-building work across worker goroutines, grounded on
// aethervault's vault/workers.rs SegmentWorkerPool (channels standing in
// for Rust's crossbeam_channel; cooperative cancellation via an atomic
// flag exactly as in the original).
type Pool struct {
	opts BuildOpts
}

func NewPool(opts BuildOpts) *Pool {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.QueueDepth < 1 {
		opts.QueueDepth = 1
	}
	return &Pool{opts: opts}
}

// Execute fans plans across worker goroutines and returns results sorted
// by plan_index, regardless of completion order.
func (p *Pool) Execute(plans []SegmentPlan) ([]SegmentResult, error) {
	n := len(plans)
	if n == 0 {
		return nil, nil
	}

	planCh := make(chan PlannerMessage, p.opts.QueueDepth)
	resultCh := make(chan WorkerMessage, p.opts.QueueDepth)
	var cancel atomic.Bool

	var wg sync.WaitGroup
	for w := 0; w < p.opts.Threads; w++ {
		wg.Add(1)
		go p.workerLoop(&wg, planCh, resultCh, &cancel)
	}

	go func() {
		for i, plan := range plans {
			if cancel.Load() {
				break
			}
			planCh <- PlannerMessage{PlanIndex: i, Plan: plan}
		}
		for w := 0; w < p.opts.Threads; w++ {
			planCh <- PlannerMessage{Shutdown: true}
		}
		close(planCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]SegmentResult, 0, n)
	var workerErr error
	for msg := range resultCh {
		if msg.Err != nil {
			workerErr = msg.Err
			cancel.Store(true)
			continue
		}
		results = append(results, msg.Result)
	}

	if workerErr != nil {
		return nil, workerErr
	}
	if len(results) != n {
		return nil, vaulterr.Newf(vaulterr.KindResource, "catalog.Pool.Execute", "expected %d segment results, received %d", n, len(results))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].PlanIndex < results[j].PlanIndex })
	return results, nil
}

func (p *Pool) workerLoop(wg *sync.WaitGroup, planCh <-chan PlannerMessage, resultCh chan<- WorkerMessage, cancel *atomic.Bool) {
	defer wg.Done()
	for msg := range planCh {
		if msg.Shutdown || cancel.Load() {
			return
		}
		result, err := buildSegment(msg.PlanIndex, msg.Plan, p.opts, cancel)
		if err != nil {
			resultCh <- WorkerMessage{Err: err}
			cancel.Store(true)
			return
		}
		resultCh <- WorkerMessage{Result: result}
	}
}

func buildSegment(planIndex int, plan SegmentPlan, opts BuildOpts, cancel *atomic.Bool) (result SegmentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = vaulterr.Newf(vaulterr.KindResource, "catalog.buildSegment", "worker panicked: %v", r)
		}
	}()

	result.PlanIndex = planIndex
	if len(plan.Chunks) == 0 {
		return result, nil
	}

	docs := make([]lexindex.Doc, 0, len(plan.Chunks))
	var records []vecindex.Record
	timeIdx := timeindex.New()
	for _, c := range plan.Chunks {
		if cancel.Load() {
			return result, fmt.Errorf("segment build cancelled")
		}
		docs = append(docs, lexindex.Doc{
			FrameID: c.FrameID, Content: c.Text, Tags: c.Tags, URI: c.URI, Timestamp: c.Timestamp,
		})
		if len(c.Embedding) > 0 {
			records = append(records, vecindex.Record{FrameID: c.FrameID, Embedding: c.Embedding})
		}
		timeIdx.Add(c.Timestamp, c.FrameID)
	}

	result.LexIndex = lexindex.Build(docs)
	timeIdx.Build()
	result.TimeIndex = timeIdx

	if len(records) > 0 {
		eng, err := vecindex.BuildEngine(records, opts.WantPQ, opts.VecMetric, opts.RNG)
		if err != nil {
			return result, err
		}
		result.VecEngine = eng
	}

	return result, nil
}
