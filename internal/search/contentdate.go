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
	"regexp"
	"strconv"
	"strings"
	"time"
)

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

var (
	isoDateRe     = regexp.MustCompile(`\b(19|20)\d{2}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])\b`)
	slashDateRe   = regexp.MustCompile(`\b(19|20)\d{2}/(0[1-9]|1[0-2])/(0[1-9]|[12]\d|3[01])(?:\s*\([A-Za-z]+\)\s*(\d{1,2}):(\d{2}))?\b`)
	spelledOutRe  = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+((?:19|20)\d{2})\b`)
	europeanRe    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+((?:19|20)\d{2})\b`)
)

// ExtractContentDate scans text for the most recent parseable date across
// ISO-8601, slash-date, spelled-out and European forms; the latest date wins
// whichever form it was written in (spec.md §4.9 step 6). Four-digit years are only accepted in the
// 1900-2100 range to avoid matching IDs. PDF-newline normalization is
// applied before matching (collapse single newlines inside a date phrase).
func ExtractContentDate(text string) (int64, bool) {
	normalized := strings.ReplaceAll(text, "\n", " ")

	var best int64
	found := false
	consider := func(ts int64) {
		if !found || ts > best {
			best, found = ts, true
		}
	}

	for _, m := range isoDateRe.FindAllString(normalized, -1) {
		if ts, ok := parseISODate(m); ok {
			consider(ts)
		}
	}
	for _, m := range slashDateRe.FindAllStringSubmatch(normalized, -1) {
		if ts, ok := parseSlashDate(m); ok {
			consider(ts)
		}
	}
	for _, m := range spelledOutRe.FindAllStringSubmatch(normalized, -1) {
		if ts, ok := parseSpelledOut(m[1], m[2], m[3]); ok {
			consider(ts)
		}
	}
	for _, m := range europeanRe.FindAllStringSubmatch(normalized, -1) {
		if ts, ok := parseSpelledOut(m[2], m[1], m[3]); ok {
			consider(ts)
		}
	}
	return best, found
}

func parseISODate(s string) (int64, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}

func parseSlashDate(groups []string) (int64, bool) {
	full := groups[0]
	datePart := full
	if idx := strings.Index(full, "("); idx >= 0 {
		datePart = strings.TrimSpace(full[:idx])
	}
	t, err := time.Parse("2006/01/02", datePart)
	if err != nil {
		return 0, false
	}
	if groups[len(groups)-2] != "" && groups[len(groups)-1] != "" {
		hh, errH := strconv.Atoi(groups[len(groups)-2])
		mm, errM := strconv.Atoi(groups[len(groups)-1])
		if errH == nil && errM == nil {
			t = t.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
		}
	}
	return t.Unix(), true
}

func parseSpelledOut(monthName, dayStr, yearStr string) (int64, bool) {
	month, ok := months[strings.ToLower(monthName)]
	if !ok {
		return 0, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return 0, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1900 || year > 2100 {
		return 0, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return t.Unix(), true
}
