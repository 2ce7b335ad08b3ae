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

package sessionctx

import (
	"sync"
	"testing"

	"github.com/launix-de/memvault/internal/replay"
)

func TestCurrentIsNilOutsideWithSession(t *testing.T) {
	if Current() != nil {
		t.Fatal("Current() should be nil when no session has been set")
	}
}

func TestWithSessionSetsCurrentForDuration(t *testing.T) {
	sess := replay.NewSession("test", 0)
	var seen *replay.Session
	WithSession(sess, func() {
		seen = Current()
	})
	if seen != sess {
		t.Fatal("Current() inside WithSession should return the session that was set")
	}
	if Current() != nil {
		t.Fatal("Current() should revert to nil after WithSession returns")
	}
}

func TestGoPropagatesSessionToSpawnedGoroutine(t *testing.T) {
	sess := replay.NewSession("propagated", 0)
	var wg sync.WaitGroup
	var seen *replay.Session

	WithSession(sess, func() {
		wg.Add(1)
		Go(func() {
			defer wg.Done()
			seen = Current()
		})
		wg.Wait()
	})
	if seen != sess {
		t.Fatal("Go() should propagate the active session into the spawned goroutine")
	}
}

func TestGoWithoutActiveSessionPropagatesNil(t *testing.T) {
	var wg sync.WaitGroup
	var seen *replay.Session

	wg.Add(1)
	Go(func() {
		defer wg.Done()
		seen = Current()
	})
	wg.Wait()
	if seen != nil {
		t.Fatal("Go() without an active session should propagate nil")
	}
}
