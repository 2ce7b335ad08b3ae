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

package sketch

import "testing"

func TestSimHashDeterministic(t *testing.T) {
	freq := termFrequency([]string{"alpha", "beta", "alpha"})
	a := simHash(freq)
	b := simHash(freq)
	if a != b {
		t.Fatal("simHash should be deterministic for the same frequency table")
	}
}

func TestSimHashDiffersForDifferentText(t *testing.T) {
	a := simHash(termFrequency([]string{"alpha", "beta"}))
	b := simHash(termFrequency([]string{"gamma", "delta"}))
	if a == b {
		t.Fatal("simHash should differ for entirely unrelated term sets")
	}
}

func TestTermFilterContainsAllQueryTerms(t *testing.T) {
	freq := termFrequency([]string{"alpha", "beta", "gamma"})
	filter := termFilter(freq)

	query := termFilter(termFrequency([]string{"alpha"}))
	if filter&query != query {
		t.Fatal("a document's term filter should contain the bits of any of its own terms")
	}
}

func TestTopTermsOrdersByFrequencyThenLexically(t *testing.T) {
	freq := map[string]int{"b": 2, "a": 2, "c": 5}
	top := topTerms(freq, 2)
	if len(top) != 2 {
		t.Fatalf("topTerms(n=2) = %v, want 2 entries", top)
	}
	if top[0] != "c" {
		t.Fatalf("topTerms()[0] = %q, want %q (highest frequency)", top[0], "c")
	}
	if top[1] != "a" {
		t.Fatalf("topTerms()[1] = %q, want %q (tie broken lexicographically)", top[1], "a")
	}
}

func TestTopTermsCapsAtN(t *testing.T) {
	freq := map[string]int{"a": 1, "b": 1, "c": 1, "d": 1}
	top := topTerms(freq, 2)
	if len(top) != 2 {
		t.Fatalf("topTerms(n=2) returned %d terms, want 2", len(top))
	}
}

func TestTokenHash64Deterministic(t *testing.T) {
	if tokenHash64("alpha") != tokenHash64("alpha") {
		t.Fatal("tokenHash64 should be deterministic")
	}
	if tokenHash64("alpha") == tokenHash64("beta") {
		t.Fatal("tokenHash64 should differ for different tokens (barring a hash collision)")
	}
}
