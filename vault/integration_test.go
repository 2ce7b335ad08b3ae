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

	"github.com/stretchr/testify/require"

	"github.com/launix-de/memvault/internal/replay"
	"github.com/launix-de/memvault/internal/vecindex"
)

// TestIngestSearchReplayRoundTrip exercises a larger end-to-end path than
// the package's other table-style tests: ingest several embedded frames,
// commit, search hybrid, close (folding the replay session), then reopen
// and verify every durable artifact — frames, the vec segment blob, and the
// replay segment — decodes back correctly.
func TestIngestSearchReplayRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "integration.mv2")

	v, err := Create(path, WithTrack("notes"), WithReplaySession("ingest-search"), WithVectorIndex(false, vecindex.Cosine))
	require.NoError(t, err)

	docs := []struct {
		uri  string
		text string
		emb  []float32
	}{
		{"doc://alpha", "the quick brown fox jumps over the lazy dog", []float32{1, 0, 0, 0}},
		{"doc://beta", "a slow green turtle naps under a warm rock", []float32{0, 1, 0, 0}},
		{"doc://gamma", "foxes and dogs rarely share the same den", []float32{0.9, 0.1, 0, 0}},
	}
	for _, d := range docs {
		_, err := v.Put([]byte(d.text), PutOptions{URI: d.uri, Embedding: d.emb})
		require.NoErrorf(t, err, "Put(%s)", d.uri)
	}
	require.NoError(t, v.Commit())

	resp, err := v.Search(SearchRequest{Query: "fox dog", TopK: 5, Embedding: []float32{1, 0, 0, 0}})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Hits, "hybrid search should surface at least one hit")

	require.NoError(t, v.Close())

	v2, err := Open(path)
	require.NoError(t, err)
	defer v2.Close()

	stats, err := v2.Stats()
	require.NoError(t, err)
	require.Equal(t, 3, stats.ActiveFrames)

	require.True(t, v2.toc.Indexes.HasVec, "vec segment should be recorded in the index manifest")
	desc := v2.toc.Indexes.Vec
	blob := make([]byte, desc.BytesLength)
	_, err = v2.f.ReadAt(blob, int64(desc.BytesOffset))
	require.NoError(t, err)
	eng, err := vecindex.DecodeFlatSegment(blob, vecindex.Cosine)
	require.NoError(t, err, "flat-backed vec segment must fully round-trip")
	require.Equal(t, len(docs), eng.Len())

	require.True(t, v2.toc.ReplayManifest.Present, "replay manifest should be recorded after Close")
	segBlob := make([]byte, v2.toc.ReplayManifest.SegmentSize)
	_, err = v2.f.ReadAt(segBlob, int64(v2.toc.ReplayManifest.SegmentOffset))
	require.NoError(t, err)
	sessions, err := replay.DecodeSegment(segBlob)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.GreaterOrEqual(t, len(sessions[0].Actions), len(docs)+1, "expected a Put action per document plus the find")
}
