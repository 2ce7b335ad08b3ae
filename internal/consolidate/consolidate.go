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

// Package consolidate implements the write-time ADD/UPDATE/NOOP decision
// gate described in spec.md §4.3.
package consolidate

import "strings"

// Decision is the gate's result enum, replacing exceptions-for-control-flow
// with an explicit sum type (spec.md §9).
type Decision struct {
	Kind       Kind
	ExistingID uint64 // Noop
	SupersedeID uint64 // Update
}

type Kind int

const (
	Add Kind = iota
	Update
	Noop
)

const (
	noopThreshold   = 0.85
	updateThreshold = 0.50
	candidatePrefix = 200
	topK            = 5
)

// Candidate is a lexical search hit fed into the Jaccard comparison.
type Candidate struct {
	FrameID uint64
	Text    string
}

// Lookup resolves the exact-checksum dedup and lexical-candidate steps; the
// gate itself is pure given these two callbacks so it has no storage
// dependency.
type Lookup struct {
	// ExactMatch returns the id of an Active frame with this checksum, if any.
	ExactMatch func(checksum [32]byte) (uint64, bool)
	// Candidates returns up to topK lexical hits restricted to track, using
	// the first candidatePrefix characters of searchText as the query.
	Candidates func(track, queryPrefix string, topK int) []Candidate
}

// Gate runs the full decision per spec.md §4.3.
func Gate(lookup Lookup, checksum [32]byte, track, searchText string) Decision {
	if id, ok := lookup.ExactMatch(checksum); ok {
		return Decision{Kind: Noop, ExistingID: id}
	}

	prefix := searchText
	if len(prefix) > candidatePrefix {
		prefix = truncateRunes(prefix, candidatePrefix)
	}
	candidates := lookup.Candidates(track, prefix, topK)

	var bestID uint64
	var bestScore float64 = -1
	qtoks := tokenize(searchText)
	for _, c := range candidates {
		score := jaccard(qtoks, tokenize(c.Text))
		if score > bestScore {
			bestScore = score
			bestID = c.FrameID
		}
	}

	if bestScore >= noopThreshold {
		return Decision{Kind: Noop, ExistingID: bestID}
	}
	if bestScore >= updateThreshold {
		return Decision{Kind: Update, SupersedeID: bestID}
	}
	return Decision{Kind: Add}
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "is": true, "it": true, "for": true, "on": true,
	"with": true, "as": true, "at": true, "by": true, "this": true, "that": true,
	"be": true, "are": true, "was": true, "were": true, "from": true,
}

// tokenize ASCII-lowercases, splits on whitespace, keeps tokens of length
// >=3, and drops stopwords — applied identically to query and candidate.
func tokenize(s string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = trimNonAlnum(tok)
		if len(tok) < 3 || stopwords[tok] {
			continue
		}
		out[tok] = true
	}
	return out
}

func trimNonAlnum(s string) string {
	isAlnum := func(r byte) bool {
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	}
	start, end := 0, len(s)
	for start < end && !isAlnum(s[start]) {
		start++
	}
	for end > start && !isAlnum(s[end-1]) {
		end--
	}
	return s[start:end]
}

// jaccard computes token-set Jaccard similarity; empty∩empty and
// empty∪empty are both defined as 1.0 per spec.md §4.3.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 1.0
	}
	return float64(inter) / float64(union)
}
