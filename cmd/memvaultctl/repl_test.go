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

package main

import (
	"path/filepath"
	"testing"

	"github.com/launix-de/memvault/vault"
)

func newReplTestVault(t *testing.T) *vault.Vault {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repl.mv2")
	v, err := vault.Create(path)
	if err != nil {
		t.Fatalf("vault.Create: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func TestDispatchReplLineUnknownCommandErrors(t *testing.T) {
	v := newReplTestVault(t)
	if err := dispatchReplLine(v, "bogus"); err == nil {
		t.Fatal("dispatchReplLine should error on an unrecognized command")
	}
}

func TestDispatchReplLineStat(t *testing.T) {
	v := newReplTestVault(t)
	if err := dispatchReplLine(v, "stat"); err != nil {
		t.Fatalf("dispatchReplLine(stat): %v", err)
	}
}

func TestDispatchReplLineCommit(t *testing.T) {
	v := newReplTestVault(t)
	if _, err := v.Put([]byte("some content"), vault.PutOptions{URI: "doc://repl"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := dispatchReplLine(v, "commit"); err != nil {
		t.Fatalf("dispatchReplLine(commit): %v", err)
	}
}

func TestDispatchReplLineFind(t *testing.T) {
	v := newReplTestVault(t)
	if _, err := v.Put([]byte("the quick brown fox"), vault.PutOptions{URI: "doc://fox"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := v.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := dispatchReplLine(v, "find quick fox"); err != nil {
		t.Fatalf("dispatchReplLine(find): %v", err)
	}
}

func TestDispatchReplLineTimelineRequiresTwoArgs(t *testing.T) {
	v := newReplTestVault(t)
	if err := dispatchReplLine(v, "timeline 100"); err == nil {
		t.Fatal("dispatchReplLine(timeline) with one argument should error")
	}
}

func TestDispatchReplLineTimelineRejectsNonInteger(t *testing.T) {
	v := newReplTestVault(t)
	if err := dispatchReplLine(v, "timeline abc 200"); err == nil {
		t.Fatal("dispatchReplLine(timeline) with a non-integer bound should error")
	}
}

func TestDispatchReplLineDoctor(t *testing.T) {
	v := newReplTestVault(t)
	if err := dispatchReplLine(v, "doctor"); err != nil {
		t.Fatalf("dispatchReplLine(doctor): %v", err)
	}
}
