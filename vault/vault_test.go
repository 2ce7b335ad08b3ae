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

package vault

import (
	"path/filepath"
	"testing"

	"github.com/launix-de/memvault/internal/consolidate"
)

func newTestVault(t *testing.T) (*Vault, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mv2")
	v, err := Create(path, WithTrack("notes"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v, path
}

func TestCreateThenOpenRoundTrip(t *testing.T) {
	v, path := newTestVault(t)
	if _, err := v.Put([]byte("hello world, this is the first frame"), PutOptions{URI: "doc://1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := v.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	v2, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer v2.Close()

	stats, err := v2.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ActiveFrames != 1 {
		t.Fatalf("ActiveFrames = %d, want 1", stats.ActiveFrames)
	}
}

func TestPutThenSearchFindsFrame(t *testing.T) {
	v, _ := newTestVault(t)
	res, err := v.Put([]byte("the quick brown fox jumps over the lazy dog"), PutOptions{URI: "doc://fox"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := v.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	resp, err := v.Search(SearchRequest{Query: "quick fox", TopK: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Hits) == 0 {
		t.Fatal("Search should find the committed frame")
	}
	found := false
	for _, h := range resp.Hits {
		if h.FrameID == res.FrameID {
			found = true
		}
	}
	if !found {
		t.Fatalf("Search results %v did not include frame %d", resp.Hits, res.FrameID)
	}
}

func TestPutDuplicateContentIsNoop(t *testing.T) {
	v, _ := newTestVault(t)
	content := []byte("identical content for dedup testing")
	r1, err := v.Put(content, PutOptions{URI: "doc://a"})
	if err != nil {
		t.Fatalf("Put #1: %v", err)
	}
	r2, err := v.Put(content, PutOptions{URI: "doc://a"})
	if err != nil {
		t.Fatalf("Put #2: %v", err)
	}
	if r2.Decision != consolidate.Noop {
		t.Fatalf("Put of identical content twice = %v, want Noop", r2.Decision)
	}
	if r2.FrameID != r1.FrameID {
		t.Fatalf("Noop put returned a different frame id: %d vs %d", r2.FrameID, r1.FrameID)
	}
}

func TestUpdateSupersedesPriorFrame(t *testing.T) {
	v, _ := newTestVault(t)
	r1, err := v.Put([]byte("original content about cats"), PutOptions{URI: "doc://cats"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	r2, err := v.Update(r1.FrameID, []byte("updated content about cats and dogs"), PutOptions{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if r2.SupersededID != r1.FrameID {
		t.Fatalf("Update SupersededID = %d, want %d", r2.SupersededID, r1.FrameID)
	}

	old := v.toc.FrameByID(r1.FrameID)
	if old == nil || !old.HasSuperseded || old.SupersededBy != r2.FrameID {
		t.Fatalf("old frame supersession links not set correctly: %+v", old)
	}
}

func TestUpdateUnknownFrameErrors(t *testing.T) {
	v, _ := newTestVault(t)
	if _, err := v.Update(999, []byte("data"), PutOptions{}); err == nil {
		t.Fatal("Update on a nonexistent frame id should error")
	}
}

func TestDeleteMarksFrameDeletedAndExcludesFromStats(t *testing.T) {
	v, _ := newTestVault(t)
	r, err := v.Put([]byte("content to be deleted"), PutOptions{URI: "doc://del"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := v.Delete(r.FrameID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	stats, err := v.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.DeletedFrames != 1 || stats.ActiveFrames != 0 {
		t.Fatalf("Stats after delete = %+v, want 1 deleted / 0 active", stats)
	}
}

func TestTimelineReturnsFramesInWindow(t *testing.T) {
	v, _ := newTestVault(t)
	ts := int64(1_700_000_000)
	if _, err := v.Put([]byte("timestamped note"), PutOptions{URI: "doc://t1", Timestamp: &ts}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := v.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	entries := v.Timeline(ts-10, ts+10)
	if len(entries) != 1 {
		t.Fatalf("Timeline() = %d entries, want 1", len(entries))
	}
}

func TestDoctorDryRunReportsCountsWithoutMutating(t *testing.T) {
	v, _ := newTestVault(t)
	if _, err := v.Put([]byte("a doctor test frame"), PutOptions{URI: "doc://doc1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := v.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	report, err := v.Doctor(DoctorOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Doctor: %v", err)
	}
	if report.ActiveFrames != 1 {
		t.Fatalf("Doctor report ActiveFrames = %d, want 1", report.ActiveFrames)
	}
	if !report.ChecksumOK {
		t.Fatal("Doctor should report a clean checksum on a freshly committed vault")
	}
}

func TestLockUnlockRoundTrip(t *testing.T) {
	v, path := newTestVault(t)
	if _, err := v.Put([]byte("data that will be locked"), PutOptions{URI: "doc://lock"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := v.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := v.Lock([]byte("vault password")); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	outPath := path + ".unlocked"
	if err := Unlock(path, outPath, []byte("vault password")); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	v2, err := Open(outPath)
	if err != nil {
		t.Fatalf("Open unlocked vault: %v", err)
	}
	defer v2.Close()

	stats, err := v2.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ActiveFrames != 1 {
		t.Fatalf("ActiveFrames after unlock = %d, want 1", stats.ActiveFrames)
	}
}

func TestAskSynthesizesContextFromHits(t *testing.T) {
	v, _ := newTestVault(t)
	if _, err := v.Put([]byte("Paris is the capital of France"), PutOptions{URI: "doc://geo"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := v.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	ctx, err := v.Ask("capital of France", 5)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ctx == "" {
		t.Fatal("Ask should synthesize a non-empty context for a matching query")
	}
}
