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

// Package sessionctx propagates the active replay session across goroutine
// boundaries using goroutine-local storage, mirroring the teacher's
// CurrentTx()/gls.Go() pattern (storage/transaction.go, storage/compute.go)
// for the replay recorder instead of a transaction context.
package sessionctx

import (
	"github.com/jtolds/gls"
	"github.com/launix-de/memvault/internal/replay"
)

const sessionKey = "memvault_replay_session"

// Go spawns cb on a new goroutine while propagating the calling goroutine's
// active session into it, exactly as the teacher's gls.Go wraps transaction
// propagation for parallel scans.
func Go(cb func()) {
	gls.Go(cb)
}

// WithSession runs cb with sess set as the active session for the duration
// of the call (and any goroutines it spawns via Go).
func WithSession(sess *replay.Session, cb func()) {
	gls.SetValues(gls.Values{sessionKey: sess}, cb)
}

// Current returns the active replay session for the calling goroutine, or
// nil if recording is not active.
func Current() *replay.Session {
	v, ok := gls.GetValue(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*replay.Session)
	return sess
}
