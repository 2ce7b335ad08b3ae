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

// Package replay implements the time-travel replay subsystem (spec.md
// §4.10): recorded ActiveSessions, auto-checkpoints, an in-file segment
// plus sidecar, and multi-version TOC tolerance for the replay manifest.
package replay

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/launix-de/memvault/internal/sumcheck"
)

const (
	// MaxPreviewLength caps input/output previews (spec.md §4.10).
	MaxPreviewLength = 512
	maxInputSize     = 10 * 1024 * 1024
	warnInputSize    = 1 * 1024 * 1024
)

// ActionKind tags which ActionType variant is populated.
type ActionKind uint8

const (
	ActionPut ActionKind = iota
	ActionPutMany
	ActionFind
	ActionAsk
	ActionCheckpoint
	ActionUpdate
	ActionDelete
	ActionToolCall
)

func (k ActionKind) String() string {
	switch k {
	case ActionPut:
		return "PUT"
	case ActionPutMany:
		return "PUT_MANY"
	case ActionFind:
		return "FIND"
	case ActionAsk:
		return "ASK"
	case ActionCheckpoint:
		return "CHECKPOINT"
	case ActionUpdate:
		return "UPDATE"
	case ActionDelete:
		return "DELETE"
	case ActionToolCall:
		return "TOOL_CALL"
	}
	return "UNKNOWN"
}

// ActionType is the sum-type payload for one recorded action.
type ActionType struct {
	Kind ActionKind

	FrameID      uint64   // Put, Update, Delete
	FrameIDs     []uint64 // PutMany
	Count        int      // PutMany

	Query       string // Find, Ask
	Mode        string // Find: "lexical"|"semantic"|"hybrid"
	ResultCount int    // Find

	Provider string // Ask
	Model    string // Ask

	CheckpointID uint64 // Checkpoint

	ToolName string   // ToolCall
	ArgsHash [32]byte // ToolCall
}

// ReplayAction is one recorded step within a session.
type ReplayAction struct {
	Sequence       uint64
	TimestampSecs  int64
	ActionType     ActionType
	InputHash      [32]byte
	OutputHash     [32]byte
	InputPreview   string
	OutputPreview  string
	AffectedFrames []uint64
	DurationMS     uint64
}

// NewAction creates a bare action at the given sequence; use WithInput/
// WithOutput/WithAffectedFrames/WithDuration to fill it in.
func NewAction(sequence uint64, now int64, action ActionType) ReplayAction {
	return ReplayAction{Sequence: sequence, TimestampSecs: now, ActionType: action}
}

// WithInput hashes and sanitizes input data, rejecting payloads over 10MiB
// with an all-0xFF error sentinel hash, per spec.md §4.10.
func (a ReplayAction) WithInput(data []byte) ReplayAction {
	a.InputHash, a.InputPreview = hashAndPreview(data, maxInputSize)
	return a
}

// WithOutput is WithInput's output-side counterpart.
func (a ReplayAction) WithOutput(data []byte) ReplayAction {
	a.OutputHash, a.OutputPreview = hashAndPreview(data, maxInputSize)
	return a
}

func hashAndPreview(data []byte, maxSize int) ([32]byte, string) {
	if len(data) == 0 {
		return [32]byte{}, ""
	}
	if len(data) > maxSize {
		var sentinel [32]byte
		for i := range sentinel {
			sentinel[i] = 0xFF
		}
		return sentinel, "[ERROR: input exceeds maximum size]"
	}
	return sumcheck.Sum256(data), sanitizePreview(data)
}

// sanitizePreview strips control characters (keeping newline/tab) and caps
// the result at MaxPreviewLength runes.
func sanitizePreview(data []byte) string {
	n := len(data)
	if n > MaxPreviewLength*4 {
		n = MaxPreviewLength * 4 // bound the scan; UTF-8 runes are <=4 bytes
	}
	var b strings.Builder
	count := 0
	for _, r := range string(data[:n]) {
		if count >= MaxPreviewLength {
			break
		}
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}

func (a ReplayAction) WithAffectedFrames(frames []uint64) ReplayAction {
	a.AffectedFrames = frames
	return a
}

func (a ReplayAction) WithDurationMS(ms uint64) ReplayAction {
	a.DurationMS = ms
	return a
}

// StateSnapshot is the restorable state captured by a checkpoint.
type StateSnapshot struct {
	FrameCount    int
	FrameIDs      []uint64
	LexIndexHash  [32]byte
	HasLexHash    bool
	VecIndexHash  [32]byte
	HasVecHash    bool
	WALSequence   uint64
	Generation    uint64
}

// Checkpoint is a point-in-time snapshot referenced from a session.
type Checkpoint struct {
	ID          uint64
	AtSequence  uint64
	TimestampSecs int64
	StateHash   [32]byte
	Snapshot    StateSnapshot
}

// NewCheckpoint computes the state hash from the snapshot's deterministic
// encoding.
func NewCheckpoint(id, atSequence uint64, now int64, snapshot StateSnapshot) Checkpoint {
	return Checkpoint{
		ID: id, AtSequence: atSequence, TimestampSecs: now,
		StateHash: sumcheck.Sum256(encodeSnapshot(snapshot)),
		Snapshot:  snapshot,
	}
}

// Session is an in-memory ReplaySession (spec.md §4.10).
type Session struct {
	SessionID   uuid.UUID
	Name        string
	HasName     bool
	CreatedSecs int64
	EndedSecs   int64
	HasEnded    bool
	Checkpoints []Checkpoint
	Actions     []ReplayAction
	Metadata    map[string]string
	Version     uint32
}

// NewSession starts a new recording session.
func NewSession(name string, now int64) *Session {
	s := &Session{
		SessionID:   uuid.New(),
		CreatedSecs: now,
		Metadata:    map[string]string{},
		Version:     1,
	}
	if name != "" {
		s.Name, s.HasName = name, true
	}
	return s
}

func (s *Session) IsRecording() bool { return !s.HasEnded }

func (s *Session) DurationSecs(now int64) int64 {
	end := now
	if s.HasEnded {
		end = s.EndedSecs
	}
	d := end - s.CreatedSecs
	if d < 0 {
		d = 0
	}
	return d
}

func (s *Session) NextSequence() uint64 {
	if len(s.Actions) == 0 {
		return 0
	}
	return s.Actions[len(s.Actions)-1].Sequence + 1
}

func (s *Session) AddAction(a ReplayAction) { s.Actions = append(s.Actions, a) }

func (s *Session) AddCheckpoint(c Checkpoint) { s.Checkpoints = append(s.Checkpoints, c) }

func (s *Session) End(now int64) {
	if !s.HasEnded {
		s.EndedSecs, s.HasEnded = now, true
	}
}

// Summary is the lightweight listing shape for a session.
type Summary struct {
	SessionID      uuid.UUID
	Name           string
	HasName        bool
	CreatedSecs    int64
	EndedSecs      int64
	HasEnded       bool
	ActionCount    int
	CheckpointCount int
	DurationSecs   int64
}

func (s *Session) Summary(now int64) Summary {
	return Summary{
		SessionID: s.SessionID, Name: s.Name, HasName: s.HasName,
		CreatedSecs: s.CreatedSecs, EndedSecs: s.EndedSecs, HasEnded: s.HasEnded,
		ActionCount: len(s.Actions), CheckpointCount: len(s.Checkpoints),
		DurationSecs: s.DurationSecs(now),
	}
}
