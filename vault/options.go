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

// Package vault is the public surface of the embeddable single-file
// knowledge vault: Open/Create a file, Put/Update/Delete frames, Search
// across lexical/vector/time/graph indexes, and maintain the file with
// Doctor/Timeline/Lock/Stats. It composes the internal/ packages the way
// storage/database.go composes memcp's storage engine.
package vault

import (
	"github.com/launix-de/memvault/internal/mirror"
	"github.com/launix-de/memvault/internal/ticket"
	"github.com/launix-de/memvault/internal/vecindex"
	"go.uber.org/zap"
)

// Options configures Open/Create. It is a builder-style struct per
// SPEC_FULL.md §10.3 — not a CLI surface — populated via functional
// options.
type Options struct {
	Logger *zap.Logger

	DefaultTrack string

	WorkerThreads  int
	WorkerQueue    int
	VecMetric      vecindex.Metric
	WantPQ         bool
	RNG            func() float64
	Now            func() int64
	ReplaySession  string // non-empty enables replay recording for this handle
	TicketPubKey   []byte // Ed25519 public key verifying signed capacity tickets, if any are applied
	CapacityTicket *ticket.Ticket
	Mirror         mirror.Mirror // optional snapshot-export backend (S3/Ceph), see vault.MirrorPush

	// PayloadCacheBytes bounds the in-memory read-through cache for frame
	// payload text (see internal/catalog.PayloadCache). defaultOptions sets
	// it to defaultPayloadCacheBytes; a non-positive value disables eviction.
	PayloadCacheBytes int64
}

// Option mutates Options; returned by the With* constructors below.
type Option func(*Options)

// defaultPayloadCacheBytes bounds the payload-text cache at 64MiB when the
// caller doesn't set one explicitly.
const defaultPayloadCacheBytes = 64 << 20

func defaultOptions() *Options {
	return &Options{
		Logger:            zap.NewNop(),
		WorkerThreads:     4,
		WorkerQueue:       8,
		VecMetric:         vecindex.Cosine,
		PayloadCacheBytes: defaultPayloadCacheBytes,
	}
}

// WithPayloadCache sets the memory budget (bytes) for the frame payload
// text read-through cache; a non-positive value disables eviction.
func WithPayloadCache(bytes int64) Option {
	return func(o *Options) { o.PayloadCacheBytes = bytes }
}

// WithLogger supplies a *zap.Logger; the default is a no-op logger so
// embedding this package never forces log configuration on the host
// process (SPEC_FULL.md §10.1).
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithTrack sets the default track new Put calls use when PutOptions.Track
// is empty.
func WithTrack(track string) Option {
	return func(o *Options) { o.DefaultTrack = track }
}

// WithWorkers sets the segment-builder pool's thread count and queue depth.
func WithWorkers(threads, queueDepth int) Option {
	return func(o *Options) {
		o.WorkerThreads = threads
		o.WorkerQueue = queueDepth
	}
}

// WithVectorIndex requests Pq96 compression (subject to the §4.5 fallback
// rule) and sets the distance metric used by the flat fallback.
func WithVectorIndex(wantPQ bool, metric vecindex.Metric) Option {
	return func(o *Options) {
		o.WantPQ = wantPQ
		o.VecMetric = metric
	}
}

// WithRNG overrides the k-means RNG used by Pq96 training; tests use this
// for determinism.
func WithRNG(rng func() float64) Option {
	return func(o *Options) { o.RNG = rng }
}

// WithClock overrides the wall clock used for frame timestamps and replay
// sequencing; tests use this for determinism.
func WithClock(now func() int64) Option {
	return func(o *Options) { o.Now = now }
}

// WithReplaySession turns on replay recording for this handle under the
// given session name (see internal/replay).
func WithReplaySession(name string) Option {
	return func(o *Options) { o.ReplaySession = name }
}

// WithCapacityTicket stores an admission-control ticket in
// Options.CapacityTicket. Create and Open do not apply it to the vault's
// TOC, so on its own it does not deny any write; Put enforces only the
// ticket already recorded in the TOC (see ticket.Admit).
func WithCapacityTicket(t ticket.Ticket) Option {
	return func(o *Options) { o.CapacityTicket = &t }
}

// WithMirror attaches a snapshot-export backend (internal/mirror's S3Mirror
// or CephMirror) that Vault.MirrorPush/MirrorPull use to ship the file's
// current bytes to off-box storage (SPEC_FULL.md §11).
func WithMirror(m mirror.Mirror) Option {
	return func(o *Options) { o.Mirror = m }
}

func (o *Options) apply(opts []Option) {
	for _, opt := range opts {
		opt(o)
	}
}

func (o *Options) now() int64 {
	if o.Now != nil {
		return o.Now()
	}
	return nowUnix()
}
