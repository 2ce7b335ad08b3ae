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

// Recorder wraps an active Session with the auto-checkpoint policy of
// spec.md §4.10: after every AutoCheckpointInterval actions, capture a
// StateSnapshot whose hash becomes the checkpoint's state_hash.
type Recorder struct {
	Session                *Session
	AutoCheckpointInterval int
	Now                    func() int64
	Snapshot               func() StateSnapshot // supplied by the vault layer
	nextCheckpointID       uint64
}

// NewRecorder starts recording into a fresh session.
func NewRecorder(name string, interval int, now func() int64, snapshot func() StateSnapshot) *Recorder {
	if interval <= 0 {
		interval = 50
	}
	return &Recorder{
		Session:                NewSession(name, now()),
		AutoCheckpointInterval: interval,
		Now:                    now,
		Snapshot:               snapshot,
	}
}

// Record appends an action and, if the interval has elapsed, an
// auto-checkpoint immediately after it.
func (r *Recorder) Record(a ActionType, inputData, outputData []byte, affected []uint64, durationMS uint64) ReplayAction {
	seq := r.Session.NextSequence()
	action := NewAction(seq, r.Now(), a).
		WithInput(inputData).
		WithOutput(outputData).
		WithAffectedFrames(affected).
		WithDurationMS(durationMS)
	r.Session.AddAction(action)

	if r.AutoCheckpointInterval > 0 && (seq+1)%uint64(r.AutoCheckpointInterval) == 0 {
		r.checkpoint()
	}
	return action
}

func (r *Recorder) checkpoint() Checkpoint {
	var snap StateSnapshot
	if r.Snapshot != nil {
		snap = r.Snapshot()
	}
	cp := NewCheckpoint(r.nextCheckpointID, r.Session.NextSequence(), r.Now(), snap)
	r.nextCheckpointID++
	r.Session.AddCheckpoint(cp)

	seq := r.Session.NextSequence()
	explicit := NewAction(seq, r.Now(), ActionType{Kind: ActionCheckpoint, CheckpointID: cp.ID})
	r.Session.AddAction(explicit)
	return cp
}

// Checkpoint forces an explicit checkpoint outside the automatic interval.
func (r *Recorder) Checkpoint() Checkpoint { return r.checkpoint() }

// End stops recording.
func (r *Recorder) End() { r.Session.End(r.Now()) }
