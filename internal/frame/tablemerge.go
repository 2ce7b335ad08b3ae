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

import "strings"

// TableQuality mirrors the quality downgrade rule in spec.md §4.11.
type TableQuality int

const (
	QualityLow TableQuality = iota
	QualityMedium
	QualityHigh
)

// TableChunk is a structural table chunk plus the bookkeeping needed by
// the cross-page merge heuristic.
type TableChunk struct {
	Page       int
	SourceFile string
	Header     string
	Body       string
	Columns    int
	Quality    TableQuality
}

// ShouldMerge implements the §4.11 rule: consecutive pages (gap <=2), equal
// column counts, similar headers (>=0.8), same source file.
func ShouldMerge(a, b TableChunk) bool {
	if a.SourceFile != b.SourceFile {
		return false
	}
	gap := b.Page - a.Page
	if gap < 0 {
		gap = -gap
	}
	if gap > 2 {
		return false
	}
	if a.Columns != b.Columns {
		return false
	}
	return headerSimilarity(a.Header, b.Header) >= 0.8
}

// Merge combines two table chunks; drops b's header row if the headers are
// similar enough, and downgrades quality per the High+Low->Medium rule.
func Merge(a, b TableChunk) TableChunk {
	body := a.Body
	if headerSimilarity(a.Header, b.Header) >= 0.8 {
		body += "\n" + stripHeader(b.Header, b.Body)
	} else {
		body += "\n" + b.Body
	}
	q := a.Quality
	if (a.Quality == QualityHigh && b.Quality == QualityLow) || (a.Quality == QualityLow && b.Quality == QualityHigh) {
		q = QualityMedium
	} else if b.Quality < q {
		q = b.Quality
	}
	return TableChunk{
		Page:       b.Page,
		SourceFile: a.SourceFile,
		Header:     a.Header,
		Body:       body,
		Columns:    a.Columns,
		Quality:    q,
	}
}

func stripHeader(header, body string) string {
	if strings.HasPrefix(body, header) {
		rest := body[len(header):]
		return strings.TrimPrefix(rest, "\n")
	}
	return body
}

// headerSimilarity does a normalized token-overlap comparison of two header
// rows (lowercased, whitespace/pipe-collapsed).
func headerSimilarity(a, b string) float64 {
	ta := normalizedHeaderTokens(a)
	tb := normalizedHeaderTokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	match := 0
	for _, t := range tb {
		if set[t] {
			match++
		}
	}
	denom := len(ta)
	if len(tb) > denom {
		denom = len(tb)
	}
	if denom == 0 {
		return 1.0
	}
	return float64(match) / float64(denom)
}

func normalizedHeaderTokens(s string) []string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "|", " ")
	return strings.Fields(s)
}
