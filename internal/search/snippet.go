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

package search

import "strings"

// Snippet is one highlighted window into a chunk's text, with offsets
// relative to the chunk and translated to the frame's absolute offsets.
type Snippet struct {
	ChunkRelStart  int
	ChunkRelEnd    int
	FrameAbsStart  int
	FrameAbsEnd    int
	Text           string
}

// AssembleSnippets picks up to maxSnippets windows of snippetChars, each
// centered on a match occurrence of one of terms within chunkText, per
// spec.md §4.9 step 7. chunkFrameOffset is the chunk's start offset within
// the parent frame's normalized text.
func AssembleSnippets(chunkText string, terms []string, snippetChars, maxSnippets, chunkFrameOffset int) []Snippet {
	if snippetChars <= 0 {
		snippetChars = 200
	}
	lc := strings.ToLower(chunkText)

	var positions []int
	seen := make(map[int]bool)
	for _, t := range terms {
		if t == "" {
			continue
		}
		from := 0
		for {
			idx := strings.Index(lc[from:], t)
			if idx < 0 {
				break
			}
			pos := from + idx
			if !seen[pos] {
				seen[pos] = true
				positions = append(positions, pos)
			}
			from = pos + len(t)
			if from >= len(lc) {
				break
			}
		}
	}
	sortInts(positions)

	var out []Snippet
	lastEnd := -1
	for _, pos := range positions {
		if len(out) >= maxSnippets {
			break
		}
		half := snippetChars / 2
		start := pos - half
		if start < 0 {
			start = 0
		}
		end := start + snippetChars
		if end > len(chunkText) {
			end = len(chunkText)
			start = end - snippetChars
			if start < 0 {
				start = 0
			}
		}
		if start <= lastEnd {
			continue // overlaps the previous window
		}
		out = append(out, Snippet{
			ChunkRelStart: start,
			ChunkRelEnd:   end,
			FrameAbsStart: chunkFrameOffset + start,
			FrameAbsEnd:   chunkFrameOffset + end,
			Text:          chunkText[start:end],
		})
		lastEnd = end
	}
	if len(out) == 0 && len(chunkText) > 0 {
		end := snippetChars
		if end > len(chunkText) {
			end = len(chunkText)
		}
		out = append(out, Snippet{
			ChunkRelStart: 0, ChunkRelEnd: end,
			FrameAbsStart: chunkFrameOffset, FrameAbsEnd: chunkFrameOffset + end,
			Text: chunkText[:end],
		})
	}
	return out
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}
