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

func sampleSession() *Session {
	s := NewSession("demo session", 1000)
	s.AddAction(NewAction(0, 1001, ActionType{Kind: ActionPut, FrameID: 7}).WithInput([]byte("put body")))
	s.AddAction(NewAction(1, 1002, ActionType{Kind: ActionFind, Query: "alpha", Mode: "hybrid", ResultCount: 3}))
	s.AddAction(NewAction(2, 1003, ActionType{Kind: ActionAsk, Query: "what happened", Provider: "anthropic", Model: "claude"}))
	s.AddCheckpoint(NewCheckpoint(0, 3, 1004, StateSnapshot{FrameCount: 1, FrameIDs: []uint64{7}, WALSequence: 5}))
	s.Metadata["source"] = "test"
	s.End(2000)
	return s
}

func TestEncodeDecodeSessionRoundTrip(t *testing.T) {
	s := sampleSession()
	buf := EncodeSession(s)

	got, err := DecodeSession(buf)
	if err != nil {
		t.Fatalf("DecodeSession: %v", err)
	}
	if got.SessionID != s.SessionID {
		t.Fatal("SessionID did not survive round trip")
	}
	if got.Name != s.Name || !got.HasName {
		t.Fatalf("Name = %q (HasName=%v), want %q/true", got.Name, got.HasName, s.Name)
	}
	if len(got.Actions) != len(s.Actions) {
		t.Fatalf("Actions = %d entries, want %d", len(got.Actions), len(s.Actions))
	}
	if got.Actions[0].ActionType.FrameID != 7 {
		t.Fatalf("Actions[0].ActionType.FrameID = %d, want 7", got.Actions[0].ActionType.FrameID)
	}
	if got.Actions[1].ActionType.Query != "alpha" {
		t.Fatalf("Actions[1].ActionType.Query = %q, want alpha", got.Actions[1].ActionType.Query)
	}
	if len(got.Checkpoints) != 1 || got.Checkpoints[0].Snapshot.FrameCount != 1 {
		t.Fatalf("Checkpoints = %+v, want one checkpoint with FrameCount=1", got.Checkpoints)
	}
	if got.Metadata["source"] != "test" {
		t.Fatalf("Metadata[source] = %q, want test", got.Metadata["source"])
	}
	if !got.HasEnded || got.EndedSecs != 2000 {
		t.Fatalf("HasEnded=%v EndedSecs=%d, want true/2000", got.HasEnded, got.EndedSecs)
	}
}

func TestDecodeSessionRejectsTruncatedBuffer(t *testing.T) {
	s := sampleSession()
	buf := EncodeSession(s)
	if _, err := DecodeSession(buf[:10]); err == nil {
		t.Fatal("DecodeSession should reject a truncated buffer")
	}
}

func TestEncodeDecodeActionTypeAllKinds(t *testing.T) {
	kinds := []ActionType{
		{Kind: ActionPut, FrameID: 1},
		{Kind: ActionPutMany, FrameIDs: []uint64{1, 2, 3}, Count: 3},
		{Kind: ActionFind, Query: "q", Mode: "lexical", ResultCount: 5},
		{Kind: ActionAsk, Query: "q2", Provider: "p", Model: "m"},
		{Kind: ActionCheckpoint, CheckpointID: 9},
		{Kind: ActionUpdate, FrameID: 2},
		{Kind: ActionDelete, FrameID: 3},
		{Kind: ActionToolCall, ToolName: "search"},
	}
	s := NewSession("", 0)
	for i, k := range kinds {
		s.AddAction(NewAction(uint64(i), 0, k))
	}
	buf := EncodeSession(s)
	got, err := DecodeSession(buf)
	if err != nil {
		t.Fatalf("DecodeSession: %v", err)
	}
	for i, k := range kinds {
		if got.Actions[i].ActionType.Kind != k.Kind {
			t.Fatalf("action %d kind = %v, want %v", i, got.Actions[i].ActionType.Kind, k.Kind)
		}
	}
	if got.Actions[1].ActionType.Count != 3 {
		t.Fatalf("PutMany Count = %d, want 3", got.Actions[1].ActionType.Count)
	}
}
