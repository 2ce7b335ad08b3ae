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

package vault

import (
	"github.com/launix-de/memvault/internal/catalog"
	"github.com/launix-de/memvault/internal/format"
	"github.com/launix-de/memvault/internal/memorycard"
	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/sketch"
)

// Commit builds segments for every frame still in the enrichment queue,
// appends their bytes past data_end, folds them through the manifest WAL,
// and runs the three-phase footer/header commit (spec.md §4.1/§4.8). It is
// the only operation that durably persists prior Put/Update/Delete/
// PutMemoryCard calls.
func (v *Vault) Commit() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.commitLocked()
}

func (v *Vault) commitLocked() error {
	plan := v.buildPendingPlan()
	if len(plan.Chunks) > 0 {
		results, err := v.pool.Execute([]catalog.SegmentPlan{plan})
		if err != nil {
			return err
		}
		for _, res := range results {
			if err := v.foldSegmentResult(plan, res); err != nil {
				return err
			}
		}
		for _, c := range plan.Chunks {
			delete(v.pendingEmbeddings, c.FrameID)
		}
		v.toc.EnrichmentQueue = nil
	}

	if v.graph.NumNodes() > 0 || v.toc.LogicMesh.Present {
		blob, err := v.graph.Encode()
		if err != nil {
			return err
		}
		offset, err := appender{v}.AppendPayload(blob)
		if err != nil {
			return err
		}
		v.toc.LogicMesh = model.LogicMeshManifest{Present: true, Offset: offset, Length: uint64(len(blob))}
	}

	if len(v.cards) > 0 || v.toc.MemoriesTrack.Present {
		blob, err := memorycard.Encode(v.cards)
		if err != nil {
			return err
		}
		offset, err := appender{v}.AppendPayload(blob)
		if err != nil {
			return err
		}
		v.toc.MemoriesTrack = model.MemoriesTrackManifest{Present: true, Offset: offset, Length: uint64(len(blob))}
	}

	walBlob := v.wal.Encode()
	walOffset, err := appender{v}.AppendPayload(walBlob)
	if err != nil {
		return err
	}
	_ = walOffset

	catalog.Promote(&v.toc.SegmentCatalog, v.wal)

	commit := format.NewCommit(v.f, uint64(len(walBlob)), v.header.WALSequence+1)
	h, err := commit.Apply(v.toc, v.header.FooterOffset, v.dataEnd)
	if err != nil {
		return err
	}
	v.header = h
	return nil
}

// buildPendingPlan gathers every queued-but-uncommitted frame's text,
// tags, and timestamp into one SegmentChunk batch.
func (v *Vault) buildPendingPlan() catalog.SegmentPlan {
	var plan catalog.SegmentPlan
	for _, q := range v.toc.EnrichmentQueue {
		fr := v.toc.FrameByID(q.FrameID)
		if fr == nil || fr.Status != model.StatusActive {
			continue
		}
		text, ok := v.FrameText(fr.ID)
		if !ok {
			continue
		}
		plan.Chunks = append(plan.Chunks, catalog.SegmentChunk{
			FrameID: fr.ID, URI: fr.URI, Text: text, Tags: fr.Tags, Timestamp: fr.AnchorTS,
			Embedding: v.pendingEmbeddings[fr.ID],
		})
	}
	return plan
}

// foldSegmentResult merges one worker-built segment's artifacts into the
// vault's live engines and queues its persisted bytes via the manifest WAL.
// plan is the same SegmentPlan that produced res, used to update the
// in-memory time index and sketch track directly rather than re-deriving
// them from the built segment.
func (v *Vault) foldSegmentResult(plan catalog.SegmentPlan, res catalog.SegmentResult) error {
	if res.LexIndex != nil {
		v.lex.AddSegment(res.LexIndex)
		blob := res.LexIndex.Encode()
		offset, err := appender{v}.AppendPayload(blob)
		if err != nil {
			return err
		}
		id := catalog.NextSegmentID(&v.toc.SegmentCatalog)
		v.wal.Append(model.IndexSegmentRef{Catalog: "lex", Desc: model.SegmentDescriptor{
			SegmentID: id, BytesOffset: offset, BytesLength: uint64(len(blob)), Checksum: res.LexIndex.Checksum(),
		}})
	}
	if res.TimeIndex != nil {
		blob := res.TimeIndex.Encode()
		offset, err := appender{v}.AppendPayload(blob)
		if err != nil {
			return err
		}
		id := catalog.NextSegmentID(&v.toc.SegmentCatalog)
		v.wal.Append(model.IndexSegmentRef{Catalog: "time", Desc: model.SegmentDescriptor{
			SegmentID: id, BytesOffset: offset, BytesLength: uint64(len(blob)), Checksum: res.TimeIndex.Checksum(),
		}})
		v.toc.TimeIndex = model.TimeIndexManifest{Present: true, Seg: model.SegmentDescriptor{SegmentID: id, BytesOffset: offset, BytesLength: uint64(len(blob))}}
	}
	if res.VecEngine != nil {
		v.vec = res.VecEngine
		blob := res.VecEngine.Encode()
		offset, err := appender{v}.AppendPayload(blob)
		if err != nil {
			return err
		}
		id := catalog.NextSegmentID(&v.toc.SegmentCatalog)
		desc := model.SegmentDescriptor{
			SegmentID: id, BytesOffset: offset, BytesLength: uint64(len(blob)), Checksum: res.VecEngine.Checksum(),
			Dimension: res.VecEngine.Dimension, VectorCount: res.VecEngine.Len(), Compression: res.VecEngine.Compression,
		}
		v.wal.Append(model.IndexSegmentRef{Catalog: "vec", Desc: desc})
		v.toc.Indexes.HasVec = true
		v.toc.Indexes.Vec = desc
	}
	for _, c := range plan.Chunks {
		v.time.Add(c.Timestamp, c.FrameID)
		v.sk.Insert(sketch.Generate(c.FrameID, c.Text))
	}
	v.time.Build()
	return nil
}
