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

// Package mirror exports a vault's single on-disk file to a remote object
// store for backup/replication, adapting the teacher's sharded
// persistence-s3.go/persistence-ceph.go backends (which push per-column
// blobs of a multi-file database) into the single-blob shape this vault's
// file format needs (SPEC_FULL.md §13, "Mirror backends").
package mirror

import (
	"context"
	"io"
)

// Mirror pushes and pulls a whole vault file as one blob under a key,
// alongside a lightweight listing for doctor/backup tooling.
type Mirror interface {
	// Name identifies the backend for logging ("s3", "ceph").
	Name() string

	// Push uploads the vault file at localPath under key.
	Push(ctx context.Context, key string, localPath string) error

	// Pull downloads the blob under key to localPath.
	Pull(ctx context.Context, key string, localPath string) error

	// PushReader uploads from an already-open reader (e.g. an encryption
	// capsule being streamed straight to the backend without a local
	// intermediate file).
	PushReader(ctx context.Context, key string, r io.Reader, size int64) error

	// List enumerates blobs under a key prefix, most recent first where
	// the backend can report that ordering.
	List(ctx context.Context, prefix string) ([]Object, error)

	// Remove deletes the blob under key.
	Remove(ctx context.Context, key string) error
}

// Object describes one blob a Mirror knows about.
type Object struct {
	Key          string
	SizeBytes    int64
	LastModified int64 // unix seconds, 0 if unknown
}
