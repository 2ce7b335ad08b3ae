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

package replay

import (
	"strings"
	"testing"
)

func TestActionKindString(t *testing.T) {
	cases := map[ActionKind]string{
		ActionPut:        "PUT",
		ActionPutMany:    "PUT_MANY",
		ActionFind:       "FIND",
		ActionAsk:        "ASK",
		ActionCheckpoint: "CHECKPOINT",
		ActionUpdate:     "UPDATE",
		ActionDelete:     "DELETE",
		ActionToolCall:   "TOOL_CALL",
		ActionKind(99):   "UNKNOWN",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("ActionKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestWithInputHashesAndPreviews(t *testing.T) {
	a := NewAction(0, 100, ActionType{Kind: ActionFind}).WithInput([]byte("hello"))
	if a.InputHash == ([32]byte{}) {
		t.Fatal("WithInput should set a non-zero hash for non-empty input")
	}
	if a.InputPreview != "hello" {
		t.Fatalf("InputPreview = %q, want %q", a.InputPreview, "hello")
	}
}

func TestWithInputEmptyIsZeroHash(t *testing.T) {
	a := NewAction(0, 100, ActionType{Kind: ActionFind}).WithInput(nil)
	if a.InputHash != ([32]byte{}) {
		t.Fatal("WithInput(nil) should leave the hash zeroed")
	}
}

func TestWithInputOversizedUsesSentinel(t *testing.T) {
	big := make([]byte, maxInputSize+1)
	a := NewAction(0, 100, ActionType{Kind: ActionFind}).WithInput(big)
	var sentinel [32]byte
	for i := range sentinel {
		sentinel[i] = 0xFF
	}
	if a.InputHash != sentinel {
		t.Fatal("WithInput on an oversized payload should use the all-0xFF sentinel hash")
	}
	if !strings.Contains(a.InputPreview, "exceeds maximum size") {
		t.Fatalf("InputPreview = %q, want an error preview", a.InputPreview)
	}
}

func TestSanitizePreviewStripsControlCharsKeepsNewlineTab(t *testing.T) {
	a := NewAction(0, 100, ActionType{Kind: ActionFind}).WithInput([]byte("a\x01b\nc\td"))
	if a.InputPreview != "ab\nc\td" {
		t.Fatalf("InputPreview = %q, want control char stripped but newline/tab kept", a.InputPreview)
	}
}

func TestSanitizePreviewCapsLength(t *testing.T) {
	long := strings.Repeat("x", MaxPreviewLength+100)
	a := NewAction(0, 100, ActionType{Kind: ActionFind}).WithInput([]byte(long))
	if len(a.InputPreview) != MaxPreviewLength {
		t.Fatalf("InputPreview length = %d, want capped at %d", len(a.InputPreview), MaxPreviewLength)
	}
}

func TestSessionNextSequence(t *testing.T) {
	s := NewSession("test", 0)
	if s.NextSequence() != 0 {
		t.Fatalf("NextSequence() on empty session = %d, want 0", s.NextSequence())
	}
	s.AddAction(NewAction(0, 0, ActionType{Kind: ActionFind}))
	if s.NextSequence() != 1 {
		t.Fatalf("NextSequence() after one action = %d, want 1", s.NextSequence())
	}
}

func TestSessionEndIsIdempotent(t *testing.T) {
	s := NewSession("test", 0)
	s.End(100)
	s.End(200)
	if s.EndedSecs != 100 {
		t.Fatalf("EndedSecs = %d, want 100 (first End call wins)", s.EndedSecs)
	}
}

func TestSessionDurationSecsClampsNonNegative(t *testing.T) {
	s := NewSession("test", 500)
	if d := s.DurationSecs(100); d != 0 {
		t.Fatalf("DurationSecs() = %d, want clamped to 0 for a 'now' before creation", d)
	}
}

func TestSessionIsRecording(t *testing.T) {
	s := NewSession("test", 0)
	if !s.IsRecording() {
		t.Fatal("a freshly created session should be recording")
	}
	s.End(10)
	if s.IsRecording() {
		t.Fatal("an ended session should no longer be recording")
	}
}

func TestNewCheckpointHashesSnapshot(t *testing.T) {
	snap := StateSnapshot{FrameCount: 3, FrameIDs: []uint64{1, 2, 3}}
	cp := NewCheckpoint(1, 10, 1000, snap)
	if cp.StateHash == ([32]byte{}) {
		t.Fatal("NewCheckpoint should compute a non-zero state hash")
	}
}

func TestSessionSummary(t *testing.T) {
	s := NewSession("demo", 0)
	s.AddAction(NewAction(0, 0, ActionType{Kind: ActionFind}))
	s.AddCheckpoint(NewCheckpoint(0, 1, 0, StateSnapshot{}))
	sum := s.Summary(0)
	if sum.ActionCount != 1 || sum.CheckpointCount != 1 {
		t.Fatalf("Summary() = %+v, want ActionCount=1, CheckpointCount=1", sum)
	}
	if !sum.HasName || sum.Name != "demo" {
		t.Fatalf("Summary() name = %q (HasName=%v), want demo/true", sum.Name, sum.HasName)
	}
}
