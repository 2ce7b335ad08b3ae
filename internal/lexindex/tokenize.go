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

// Package lexindex implements the BM25-style inverted index described in
// spec.md §4.4: an ASCII-lowercased tokenizer with stemming and stop-word
// filtering, packed postings, and a segment-based builder with a fallback
// in-process scanner.
package lexindex

import "strings"

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "were": true,
	"will": true, "with": true,
}

// Tokenize lowercases and splits on non-alphanumeric runes, dropping empty
// tokens. Stemming is a light suffix-stripping pass, grounded on the
// teacher/pack's preference for simple ASCII tokenizers over a full
// Porter-stemmer dependency (none is present anywhere in the retrieval
// pack's go.mod files).
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	var out []string
	start := -1
	for i := 0; i <= len(s); i++ {
		var c byte
		if i < len(s) {
			c = s[i]
		}
		isWord := i < len(s) && ((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'))
		if isWord {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	return out
}

// TokenizeFiltered tokenizes and drops stop-words, for index construction.
func TokenizeFiltered(s string) []string {
	toks := Tokenize(s)
	out := toks[:0:0]
	for _, t := range toks {
		if stopwords[t] {
			continue
		}
		out = append(out, stem(t))
	}
	return out
}

// stem applies a minimal suffix-stripping rule (plurals, -ing, -ed).
func stem(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 4 && strings.HasSuffix(w, "es"):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	case len(w) > 5 && strings.HasSuffix(w, "ing"):
		return w[:len(w)-3]
	case len(w) > 4 && strings.HasSuffix(w, "ed"):
		return w[:len(w)-2]
	}
	return w
}
