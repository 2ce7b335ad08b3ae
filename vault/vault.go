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
	"os"
	"sync"
	"time"

	"github.com/launix-de/memvault/internal/catalog"
	"github.com/launix-de/memvault/internal/consolidate"
	"github.com/launix-de/memvault/internal/format"
	"github.com/launix-de/memvault/internal/frame"
	"github.com/launix-de/memvault/internal/lexindex"
	"github.com/launix-de/memvault/internal/memorycard"
	"github.com/launix-de/memvault/internal/mesh"
	"github.com/launix-de/memvault/internal/mirror"
	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/replay"
	"github.com/launix-de/memvault/internal/sketch"
	"github.com/launix-de/memvault/internal/timeindex"
	"github.com/launix-de/memvault/internal/vaulterr"
	"github.com/launix-de/memvault/internal/vecindex"
)

func nowUnix() int64 { return time.Now().Unix() }

// Vault is one open handle on a single memvault file. All exported methods
// are safe for concurrent use; mutation holds mu for the duration of the
// in-memory change, and Commit additionally serializes the on-disk write.
type Vault struct {
	mu   sync.Mutex
	opts Options

	path string
	f    *os.File

	header *format.Header
	toc    *model.TOC

	lex    *lexindex.Engine
	vec    *vecindex.Engine
	time   *timeindex.Index
	graph  *mesh.Graph
	sk     *sketch.Track
	cards  []model.MemoryCard

	wal  *catalog.WAL
	pool *catalog.Pool

	// payloadCache avoids re-reading a frame's raw bytes off disk on every
	// FrameText call during Search/Ask/consolidation (spec.md §5: index
	// caches live behind the Vault handle, rebuilt on demand).
	payloadCache *catalog.PayloadCache

	recorder *replay.Recorder
	mirror   mirror.Mirror

	// pendingEmbeddings holds caller-supplied vectors for frames not yet
	// folded into a vector segment by Commit (frame.Frame itself never
	// stores a raw embedding, only its provider/model identity).
	pendingEmbeddings map[uint64][]float32

	dataEnd uint64
}

// appender implements frame.PayloadAppender by appending raw bytes past the
// file's current data end, exactly as the teacher's persistence layer grows
// its backing file on write (storage/persistence-files.go).
type appender struct{ v *Vault }

func (a appender) AppendPayload(b []byte) (uint64, error) {
	v := a.v
	offset := v.dataEnd
	if _, err := v.f.WriteAt(b, int64(offset)); err != nil {
		return 0, vaulterr.New(vaulterr.KindResource, "vault.appendPayload", err)
	}
	v.dataEnd += uint64(len(b))
	return offset, nil
}

// Create initializes a brand-new vault file at path, failing if one already
// exists there.
func Create(path string, opt ...Option) (*Vault, error) {
	o := defaultOptions()
	o.apply(opt)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindResource, "vault.Create", err)
	}

	v := &Vault{
		opts: *o,
		path: path,
		f:    f,
		toc:  &model.TOC{TOCVersion: uint32(format.FormatVersion)},
		lex:  lexindex.NewEngine(),
		vec:  nil,
		time: timeindex.New(),
		graph: mesh.New(),
		sk:   sketch.NewTrack(),
		wal:  catalog.NewWAL(),
		pool: catalog.NewPool(catalog.BuildOpts{
			Threads: o.WorkerThreads, QueueDepth: o.WorkerQueue,
			WantPQ: o.WantPQ, VecMetric: o.VecMetric, RNG: o.RNG,
		}),
		pendingEmbeddings: make(map[uint64][]float32),
		payloadCache:      catalog.NewPayloadCache(o.PayloadCacheBytes),
		dataEnd:           uint64(format.HeaderSize),
		mirror:            o.Mirror,
	}
	if o.ReplaySession != "" {
		v.recorder = replay.NewRecorder(o.ReplaySession, 50, o.now, v.stateSnapshot)
	}

	if _, err := v.header0Commit(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return v, nil
}

// header0Commit writes the initial empty TOC/header pair for a freshly
// created file, establishing data_end past the header (§4.1: the payload
// region begins immediately after the fixed header).
func (v *Vault) header0Commit() (*format.Header, error) {
	v.toc.TOCChecksum = [32]byte{}
	c := format.NewCommit(v.f, 0, 0)
	h, err := c.Apply(v.toc, 0, v.dataEnd)
	if err != nil {
		return nil, err
	}
	v.header = h
	return h, nil
}

// Open loads an existing vault file and rebuilds its in-memory search
// structures.
//
// The lexical and time indexes are always fully recoverable: they are
// rebuilt by re-deriving each active frame's canonical text from its
// payload bytes and re-running the exact same chunk/tokenize pipeline Put
// uses, rather than decoding the persisted segment blobs (lexindex.Index's
// on-disk encoding does not carry the per-document length statistics BM25
// scoring needs — see DESIGN.md). The vector index cannot be recovered this
// way: no embedding model lives inside this package, and raw embeddings are
// never persisted, only the trained segment artifacts built from them. A
// freshly opened vault therefore starts with an empty vector engine; Search
// falls back to lexical-only scoring for old frames until a new Put/Update
// supplies fresh embeddings for them.
func Open(path string, opt ...Option) (*Vault, error) {
	o := defaultOptions()
	o.apply(opt)

	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindResource, "vault.Open", err)
	}

	h, toc, err := format.Open(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, vaulterr.New(vaulterr.KindResource, "vault.Open", err)
	}

	v := &Vault{
		opts:   *o,
		path:   path,
		f:      f,
		header: h,
		toc:    toc,
		lex:    lexindex.NewEngine(),
		vec:    nil,
		time:   timeindex.New(),
		graph:  mesh.New(),
		sk:     sketch.NewTrack(),
		wal:    catalog.NewWAL(),
		pool: catalog.NewPool(catalog.BuildOpts{
			Threads: o.WorkerThreads, QueueDepth: o.WorkerQueue,
			WantPQ: o.WantPQ, VecMetric: o.VecMetric, RNG: o.RNG,
		}),
		pendingEmbeddings: make(map[uint64][]float32),
		payloadCache:      catalog.NewPayloadCache(o.PayloadCacheBytes),
		dataEnd:           h.FooterOffset,
		mirror:            o.Mirror,
	}
	_ = info

	if toc.LogicMesh.Present {
		blob := make([]byte, toc.LogicMesh.Length)
		if _, err := f.ReadAt(blob, int64(toc.LogicMesh.Offset)); err == nil {
			if g, err := mesh.Decode(blob); err == nil {
				v.graph = g
			}
		}
	}
	if toc.MemoriesTrack.Present {
		blob := make([]byte, toc.MemoriesTrack.Length)
		if _, err := f.ReadAt(blob, int64(toc.MemoriesTrack.Offset)); err == nil {
			if cards, err := memorycard.Decode(blob); err == nil {
				v.cards = cards
			}
		}
	}

	v.rebuildFromFrames()

	if o.ReplaySession != "" {
		v.recorder = replay.NewRecorder(o.ReplaySession, 50, o.now, v.stateSnapshot)
	}
	return v, nil
}

// rebuildFromFrames re-derives the lex/time/sketch engines from the active
// frames' payload bytes, in lieu of decoding the lossy persisted segment
// encodings (see Open's doc comment).
func (v *Vault) rebuildFromFrames() {
	var docs []lexindex.Doc
	for i := range v.toc.Frames {
		fr := &v.toc.Frames[i]
		if fr.Status != model.StatusActive {
			continue
		}
		raw := make([]byte, fr.PayloadLength)
		if _, err := v.f.ReadAt(raw, int64(fr.PayloadOffset)); err != nil {
			continue
		}
		text := string(raw)
		docs = append(docs, lexindex.Doc{FrameID: fr.ID, Content: text, Tags: fr.Tags, URI: fr.URI, Timestamp: fr.Timestamp})
		v.time.Add(fr.AnchorTS, fr.ID)
		v.sk.Insert(sketch.Generate(fr.ID, text))
	}
	v.lex.SetFallbackCorpus(docs)
	v.time.Build()
}

// Close folds any active replay session into the final commit and closes
// the underlying file.
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recorder != nil {
		v.recorder.End()
		if err := v.persistReplay(); err != nil {
			return err
		}
	}
	return v.f.Close()
}

// persistReplay appends the ended session's encoded segment past data_end
// and folds its manifest into the TOC, then re-runs the three-phase commit.
func (v *Vault) persistReplay() error {
	sessions := []*replay.Session{v.recorder.Session}
	blob := replay.EncodeSegment(sessions)
	offset, err := appender{v}.AppendPayload(blob)
	if err != nil {
		return err
	}
	v.toc.ReplayManifest = replay.BuildManifest(offset, blob, sessions)
	return v.commitLocked()
}

func (v *Vault) stateSnapshot() replay.StateSnapshot {
	ids := make([]uint64, 0, len(v.toc.Frames))
	for _, f := range v.toc.Frames {
		if f.Status == model.StatusActive {
			ids = append(ids, f.ID)
		}
	}
	return replay.StateSnapshot{
		FrameCount:  len(ids),
		FrameIDs:    ids,
		WALSequence: v.header.WALSequence,
	}
}

// consolidateLookup builds the callbacks frame.Store.Put needs from this
// vault's current in-memory state.
func (v *Vault) consolidateLookup() consolidate.Lookup {
	return consolidate.Lookup{
		ExactMatch: func(sum [32]byte) (uint64, bool) {
			if f := v.toc.FrameByChecksum(sum); f != nil {
				return f.ID, true
			}
			return 0, false
		},
		Candidates: func(track, prefix string, topK int) []consolidate.Candidate {
			filter := lexindex.Filter{ScopePrefix: track}
			hits := v.lex.Search(prefix, filter, topK)
			out := make([]consolidate.Candidate, 0, len(hits))
			for _, h := range hits {
				text, ok := v.FrameText(h.FrameID)
				if !ok {
					continue
				}
				out = append(out, consolidate.Candidate{FrameID: h.FrameID, Text: text})
			}
			return out
		},
	}
}

func (v *Vault) store() *frame.Store {
	return &frame.Store{TOC: v.toc, Appender: appender{v}, Lookup: v.consolidateLookup(), Now: v.opts.now}
}
