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

package frame

import (
	"testing"

	"github.com/launix-de/memvault/internal/consolidate"
	"github.com/launix-de/memvault/internal/model"
)

// memAppender is an in-memory PayloadAppender for tests.
type memAppender struct {
	buf []byte
}

func (a *memAppender) AppendPayload(b []byte) (uint64, error) {
	offset := uint64(len(a.buf))
	a.buf = append(a.buf, b...)
	return offset, nil
}

func newTestStore() (*Store, *memAppender) {
	toc := &model.TOC{}
	app := &memAppender{}
	lookup := consolidate.Lookup{
		ExactMatch: func(sum [32]byte) (uint64, bool) {
			if f := toc.FrameByChecksum(sum); f != nil {
				return f.ID, true
			}
			return 0, false
		},
		Candidates: func(track, prefix string, topK int) []consolidate.Candidate { return nil },
	}
	clock := int64(1000)
	s := &Store{TOC: toc, Appender: app, Lookup: lookup, Now: func() int64 { return clock }}
	return s, app
}

func TestStorePutAddsFrame(t *testing.T) {
	s, app := newTestStore()
	res, err := s.Put([]byte("hello world"), PutOptions{URI: "file://a.txt", Track: "default"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if res.Decision != consolidate.Add {
		t.Fatalf("Decision = %v, want Add", res.Decision)
	}
	if len(s.TOC.Frames) != 1 {
		t.Fatalf("TOC has %d frames, want 1", len(s.TOC.Frames))
	}
	f := s.TOC.Frames[0]
	if f.ID != res.FrameID || f.Status != model.StatusActive {
		t.Fatalf("stored frame = %+v", f)
	}
	if string(app.buf) != "hello world" {
		t.Fatalf("appended payload = %q, want %q", app.buf, "hello world")
	}
}

func TestStorePutExactDuplicateIsNoop(t *testing.T) {
	s, _ := newTestStore()
	raw := []byte("identical content for dedup test")
	first, err := s.Put(raw, PutOptions{URI: "file://a.txt", Track: "default"})
	if err != nil {
		t.Fatalf("first Put: %v", err)
	}
	second, err := s.Put(raw, PutOptions{URI: "file://b.txt", Track: "default"})
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if second.Decision != consolidate.Noop {
		t.Fatalf("Decision = %v, want Noop", second.Decision)
	}
	if second.FrameID != first.FrameID {
		t.Fatalf("Noop FrameID = %d, want %d", second.FrameID, first.FrameID)
	}
	if len(s.TOC.Frames) != 1 {
		t.Fatalf("TOC has %d frames after duplicate Put, want 1", len(s.TOC.Frames))
	}
}

func TestStorePutEnqueuesEnrichment(t *testing.T) {
	s, _ := newTestStore()
	res, err := s.Put([]byte("some content to enrich"), PutOptions{Track: "default"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(s.TOC.EnrichmentQueue) != 1 {
		t.Fatalf("EnrichmentQueue has %d entries, want 1", len(s.TOC.EnrichmentQueue))
	}
	if s.TOC.EnrichmentQueue[0].FrameID != res.FrameID {
		t.Fatalf("enrichment entry FrameID = %d, want %d", s.TOC.EnrichmentQueue[0].FrameID, res.FrameID)
	}
}

func TestStorePutTooManyTagsIsSchemaError(t *testing.T) {
	s, _ := newTestStore()
	tags := make([]string, model.MaxTags+1)
	for i := range tags {
		tags[i] = "t"
	}
	_, err := s.Put([]byte("x"), PutOptions{Tags: tags})
	if err == nil {
		t.Fatal("Put with too many tags should fail")
	}
}

func TestStoreDeleteMarksStatus(t *testing.T) {
	s, _ := newTestStore()
	res, err := s.Put([]byte("to be deleted"), PutOptions{Track: "default"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(res.FrameID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	f := s.TOC.FrameByID(res.FrameID)
	if f.Status != model.StatusDeleted {
		t.Fatalf("frame status = %v, want Deleted", f.Status)
	}
}

func TestStoreDeleteUnknownFrame(t *testing.T) {
	s, _ := newTestStore()
	if err := s.Delete(999); err == nil {
		t.Fatal("Delete of unknown frame should fail")
	}
}
