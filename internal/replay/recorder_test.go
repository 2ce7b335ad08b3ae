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

import "testing"

func fixedClock(t int64) func() int64 {
	return func() int64 { return t }
}

func TestRecorderRecordAppendsAction(t *testing.T) {
	r := NewRecorder("s", 0, fixedClock(100), nil)
	r.Record(ActionType{Kind: ActionFind, Query: "alpha"}, nil, nil, nil, 5)
	if len(r.Session.Actions) != 1 {
		t.Fatalf("Actions = %v, want 1", r.Session.Actions)
	}
}

func TestRecorderDefaultsInterval(t *testing.T) {
	r := NewRecorder("s", 0, fixedClock(0), nil)
	if r.AutoCheckpointInterval != 50 {
		t.Fatalf("AutoCheckpointInterval = %d, want default 50", r.AutoCheckpointInterval)
	}
}

func TestRecorderAutoCheckpointsAtInterval(t *testing.T) {
	snapCalls := 0
	r := NewRecorder("s", 2, fixedClock(0), func() StateSnapshot {
		snapCalls++
		return StateSnapshot{FrameCount: snapCalls}
	})
	// seq 0 -> (0+1)%2 != 0, no checkpoint.
	r.Record(ActionType{Kind: ActionFind}, nil, nil, nil, 0)
	if len(r.Session.Checkpoints) != 0 {
		t.Fatalf("Checkpoints after 1 action = %d, want 0", len(r.Session.Checkpoints))
	}
	// seq 1 -> (1+1)%2 == 0, checkpoint fires.
	r.Record(ActionType{Kind: ActionFind}, nil, nil, nil, 0)
	if len(r.Session.Checkpoints) != 1 {
		t.Fatalf("Checkpoints after 2 actions = %d, want 1", len(r.Session.Checkpoints))
	}
}

func TestRecorderExplicitCheckpoint(t *testing.T) {
	r := NewRecorder("s", 100, fixedClock(0), func() StateSnapshot { return StateSnapshot{} })
	cp := r.Checkpoint()
	if cp.ID != 0 {
		t.Fatalf("first Checkpoint().ID = %d, want 0", cp.ID)
	}
	cp2 := r.Checkpoint()
	if cp2.ID != 1 {
		t.Fatalf("second Checkpoint().ID = %d, want 1", cp2.ID)
	}
}

func TestRecorderEndMarksSessionEnded(t *testing.T) {
	r := NewRecorder("s", 100, fixedClock(42), nil)
	r.End()
	if !r.Session.HasEnded || r.Session.EndedSecs != 42 {
		t.Fatalf("session not ended correctly: HasEnded=%v EndedSecs=%d", r.Session.HasEnded, r.Session.EndedSecs)
	}
}
