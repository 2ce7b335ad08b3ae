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

// Package frame implements the frame store and ingestion pipeline
// (spec.md §4.2): chunk planning, payload writes, frame lifecycle, and
// the hand-off into the consolidation gate and enrichment queue.
package frame

import (
	"regexp"
	"strings"

	"github.com/launix-de/memvault/internal/model"
)

const (
	minChunkableLength = 2400
	targetChunkSize    = 1200
)

func chunkSlack() int {
	s := targetChunkSize / 5
	if s < 256 {
		return 256
	}
	return s
}

var (
	fencedCodeBlock = regexp.MustCompile("(?ms)^```.*?^```")
	markdownTable   = regexp.MustCompile(`(?m)^\s*\|.+\|\s*$(\n^\s*\|?[-:| ]+\|?\s*$)(\n^\s*\|.+\|\s*$)*`)
	sentenceBoundary = regexp.MustCompile(`[.!?][)\]"']?\s+`)
)

// Plan splits text into a chunk manifest per spec.md §4.2 step 2: structural
// units (fenced code, markdown tables) are kept intact and chunked around;
// the remainder is chunked at sentence/paragraph boundaries with a target
// size and slack.
func Plan(text string) []model.ChunkRange {
	if len(text) < minChunkableLength {
		return []model.ChunkRange{{Start: 0, End: len(text)}}
	}

	structural := structuralRanges(text)
	if len(structural) == 0 {
		return chunkBySentence(text, 0, len(text))
	}

	var out []model.ChunkRange
	cursor := 0
	for _, sr := range structural {
		if sr.Start > cursor {
			out = append(out, chunkBySentence(text, cursor, sr.Start)...)
		}
		out = append(out, sr)
		cursor = sr.End
	}
	if cursor < len(text) {
		out = append(out, chunkBySentence(text, cursor, len(text))...)
	}
	return out
}

// structuralRanges finds fenced code blocks and markdown tables, merged and
// sorted, non-overlapping.
func structuralRanges(text string) []model.ChunkRange {
	var ranges []model.ChunkRange
	for _, m := range fencedCodeBlock.FindAllStringIndex(text, -1) {
		ranges = append(ranges, model.ChunkRange{Start: m[0], End: m[1]})
	}
	for _, m := range markdownTable.FindAllStringIndex(text, -1) {
		ranges = append(ranges, model.ChunkRange{Start: m[0], End: m[1]})
	}
	if len(ranges) == 0 {
		return nil
	}
	for i := 1; i < len(ranges); i++ {
		for j := i; j > 0 && ranges[j-1].Start > ranges[j].Start; j-- {
			ranges[j-1], ranges[j] = ranges[j], ranges[j-1]
		}
	}
	merged := ranges[:1]
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// chunkBySentence greedily packs sentences into chunks targeting
// targetChunkSize with the configured slack, operating on text[from:to].
func chunkBySentence(text string, from, to int) []model.ChunkRange {
	if from >= to {
		return nil
	}
	sub := text[from:to]
	slack := chunkSlack()
	max := targetChunkSize + slack

	bounds := sentenceBoundary.FindAllStringIndex(sub, -1)
	starts := make([]int, 0, len(bounds)+1)
	starts = append(starts, 0)
	for _, b := range bounds {
		starts = append(starts, b[1])
	}

	var out []model.ChunkRange
	chunkStart := 0
	lastBoundary := 0
	for _, s := range starts[1:] {
		if s-chunkStart >= targetChunkSize {
			if s-chunkStart <= max {
				out = append(out, model.ChunkRange{Start: from + chunkStart, End: from + s})
				chunkStart = s
				lastBoundary = s
				continue
			}
			if lastBoundary > chunkStart {
				out = append(out, model.ChunkRange{Start: from + chunkStart, End: from + lastBoundary})
				chunkStart = lastBoundary
			}
		}
		lastBoundary = s
	}
	if chunkStart < len(sub) {
		out = append(out, model.ChunkRange{Start: from + chunkStart, End: from + len(sub)})
	}
	if len(out) == 0 {
		out = append(out, model.ChunkRange{Start: from, End: to})
	}
	return out
}

// ChunkText slices text per a chunk manifest produced by Plan.
func ChunkText(text string, ranges []model.ChunkRange) []string {
	out := make([]string, len(ranges))
	for i, r := range ranges {
		out[i] = text[r.Start:r.End]
	}
	return out
}

// HeaderRow extracts the first line of a markdown table chunk, used when
// propagating headers to continuation chunks (§4.11 table-merge heuristic).
func HeaderRow(chunk string) string {
	if idx := strings.IndexByte(chunk, '\n'); idx >= 0 {
		return chunk[:idx]
	}
	return chunk
}
