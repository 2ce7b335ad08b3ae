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
	"github.com/google/uuid"
	"github.com/launix-de/memvault/internal/format"
	"github.com/launix-de/memvault/internal/vaulterr"
)

func encodeSnapshot(s StateSnapshot) []byte {
	w := format.NewWriter()
	w.U32(uint32(s.FrameCount))
	w.U32(uint32(len(s.FrameIDs)))
	for _, id := range s.FrameIDs {
		w.U64(id)
	}
	w.Bool(s.HasLexHash)
	w.Fixed32(s.LexIndexHash)
	w.Bool(s.HasVecHash)
	w.Fixed32(s.VecIndexHash)
	w.U64(s.WALSequence)
	w.U64(s.Generation)
	return w.Bytes()
}

func decodeSnapshot(r *format.Reader) StateSnapshot {
	var s StateSnapshot
	s.FrameCount = int(r.U32())
	n := int(r.U32())
	s.FrameIDs = make([]uint64, n)
	for i := range s.FrameIDs {
		s.FrameIDs[i] = r.U64()
	}
	s.HasLexHash = r.Bool()
	s.LexIndexHash = r.Fixed32()
	s.HasVecHash = r.Bool()
	s.VecIndexHash = r.Fixed32()
	s.WALSequence = r.U64()
	s.Generation = r.U64()
	return s
}

func encodeAction(a ReplayAction, w *format.Writer) {
	w.U64(a.Sequence)
	w.I64(a.TimestampSecs)
	encodeActionType(a.ActionType, w)
	w.Fixed32(a.InputHash)
	w.Fixed32(a.OutputHash)
	w.Str(a.InputPreview)
	w.Str(a.OutputPreview)
	w.U32(uint32(len(a.AffectedFrames)))
	for _, id := range a.AffectedFrames {
		w.U64(id)
	}
	w.U64(a.DurationMS)
}

func decodeAction(r *format.Reader) ReplayAction {
	var a ReplayAction
	a.Sequence = r.U64()
	a.TimestampSecs = r.I64()
	a.ActionType = decodeActionType(r)
	a.InputHash = r.Fixed32()
	a.OutputHash = r.Fixed32()
	a.InputPreview = r.Str()
	a.OutputPreview = r.Str()
	n := int(r.U32())
	a.AffectedFrames = make([]uint64, n)
	for i := range a.AffectedFrames {
		a.AffectedFrames[i] = r.U64()
	}
	a.DurationMS = r.U64()
	return a
}

func encodeActionType(a ActionType, w *format.Writer) {
	w.U8(uint8(a.Kind))
	switch a.Kind {
	case ActionPut, ActionUpdate, ActionDelete:
		w.U64(a.FrameID)
	case ActionPutMany:
		w.U32(uint32(len(a.FrameIDs)))
		for _, id := range a.FrameIDs {
			w.U64(id)
		}
		w.U32(uint32(a.Count))
	case ActionFind:
		w.Str(a.Query)
		w.Str(a.Mode)
		w.U32(uint32(a.ResultCount))
	case ActionAsk:
		w.Str(a.Query)
		w.Str(a.Provider)
		w.Str(a.Model)
	case ActionCheckpoint:
		w.U64(a.CheckpointID)
	case ActionToolCall:
		w.Str(a.ToolName)
		w.Fixed32(a.ArgsHash)
	}
}

func decodeActionType(r *format.Reader) ActionType {
	var a ActionType
	a.Kind = ActionKind(r.U8())
	switch a.Kind {
	case ActionPut, ActionUpdate, ActionDelete:
		a.FrameID = r.U64()
	case ActionPutMany:
		n := int(r.U32())
		a.FrameIDs = make([]uint64, n)
		for i := range a.FrameIDs {
			a.FrameIDs[i] = r.U64()
		}
		a.Count = int(r.U32())
	case ActionFind:
		a.Query = r.Str()
		a.Mode = r.Str()
		a.ResultCount = int(r.U32())
	case ActionAsk:
		a.Query = r.Str()
		a.Provider = r.Str()
		a.Model = r.Str()
	case ActionCheckpoint:
		a.CheckpointID = r.U64()
	case ActionToolCall:
		a.ToolName = r.Str()
		a.ArgsHash = r.Fixed32()
	}
	return a
}

func encodeCheckpoint(c Checkpoint, w *format.Writer) {
	w.U64(c.ID)
	w.U64(c.AtSequence)
	w.I64(c.TimestampSecs)
	w.Fixed32(c.StateHash)
	w.Blob(encodeSnapshot(c.Snapshot))
}

func decodeCheckpoint(r *format.Reader) Checkpoint {
	var c Checkpoint
	c.ID = r.U64()
	c.AtSequence = r.U64()
	c.TimestampSecs = r.I64()
	c.StateHash = r.Fixed32()
	snapBuf := r.Blob()
	c.Snapshot = decodeSnapshot(format.NewReader(snapBuf))
	return c
}

// EncodeSession serializes one session's full payload (no length prefix;
// callers add the segment-level framing).
func EncodeSession(s *Session) []byte {
	w := format.NewWriter()
	idBytes, _ := s.SessionID.MarshalBinary()
	w.Raw(idBytes) // 16 bytes, fixed
	w.Bool(s.HasName)
	w.Str(s.Name)
	w.I64(s.CreatedSecs)
	w.Bool(s.HasEnded)
	w.I64(s.EndedSecs)

	w.U32(uint32(len(s.Checkpoints)))
	for _, c := range s.Checkpoints {
		encodeCheckpoint(c, w)
	}
	w.U32(uint32(len(s.Actions)))
	for _, a := range s.Actions {
		encodeAction(a, w)
	}
	keys := sortedKeys(s.Metadata)
	w.StrMap(keys, s.Metadata)
	w.U32(s.Version)
	return w.Bytes()
}

// DecodeSession parses a payload produced by EncodeSession.
func DecodeSession(buf []byte) (s *Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, vaulterr.Newf(vaulterr.KindFormat, "replay.DecodeSession", "%v", r)
		}
	}()
	r := format.NewReader(buf)
	s = &Session{}
	id, decErr := uuid.FromBytes(r.Raw(16))
	if decErr != nil {
		return nil, vaulterr.New(vaulterr.KindFormat, "replay.DecodeSession", decErr)
	}
	s.SessionID = id
	s.HasName = r.Bool()
	s.Name = r.Str()
	s.CreatedSecs = r.I64()
	s.HasEnded = r.Bool()
	s.EndedSecs = r.I64()

	nc := int(r.U32())
	s.Checkpoints = make([]Checkpoint, nc)
	for i := range s.Checkpoints {
		s.Checkpoints[i] = decodeCheckpoint(r)
	}
	na := int(r.U32())
	s.Actions = make([]ReplayAction, na)
	for i := range s.Actions {
		s.Actions[i] = decodeAction(r)
	}
	_, meta := r.StrMap()
	s.Metadata = meta
	s.Version = r.U32()
	return s, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
