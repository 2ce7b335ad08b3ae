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

import (
	"fmt"
	"strings"
)

// MaxAskDocs bounds the Ask-path context window, per spec.md §4.9 step 9.
const MaxAskDocs = 24

// DocHit is one ranked result as seen by context synthesis: enough to
// group by base URI, render a section, and count matches.
type DocHit struct {
	FrameID uint64
	BaseURI string
	Title   string
	Snippet string
	Matches int
	Rank    int
}

// SynthesizeContext performs the Ask-path's deterministic multi-document
// selection: one best hit per base URI first (diversity), then fill the
// remaining budget by rank, per spec.md §4.9 step 9. hits must already be
// rank-ordered (hits[i].Rank == i+1).
func SynthesizeContext(hits []DocHit) string {
	if len(hits) > 0 && hits[0].Rank == 0 {
		for i := range hits {
			hits[i].Rank = i + 1
		}
	}

	seen := make(map[string]bool)
	var selected []DocHit

	for _, h := range hits {
		if len(selected) >= MaxAskDocs {
			break
		}
		if h.BaseURI != "" && seen[h.BaseURI] {
			continue
		}
		if h.BaseURI != "" {
			seen[h.BaseURI] = true
		}
		selected = append(selected, h)
	}
	for _, h := range hits {
		if len(selected) >= MaxAskDocs {
			break
		}
		if containsDocHit(selected, h.FrameID) {
			continue
		}
		selected = append(selected, h)
	}

	var b strings.Builder
	for _, h := range selected {
		fmt.Fprintf(&b, "### [%d] %s — %s\n%s\n(matches: %d)\n\n", h.Rank, h.BaseURI, h.Title, h.Snippet, h.Matches)
	}
	return b.String()
}

func containsDocHit(hits []DocHit, frameID uint64) bool {
	for _, h := range hits {
		if h.FrameID == frameID {
			return true
		}
	}
	return false
}
