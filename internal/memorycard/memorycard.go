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

// Package memorycard implements the optional memories track (SPEC_FULL.md
// §12): structured, versioned facts distilled from frames by a
// caller-supplied summarizer. The track is dark (TOC.MemoriesTrack.Present
// == false) until a caller populates it; no search or consolidation
// operation requires it.
package memorycard

import "github.com/launix-de/memvault/internal/model"

// Kind classifies what a card represents.
type Kind uint8

const (
	KindFact Kind = iota
	KindPreference
	KindEvent
	KindProfile
	KindRelationship
	KindGoal
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindFact:
		return "fact"
	case KindPreference:
		return "preference"
	case KindEvent:
		return "event"
	case KindProfile:
		return "profile"
	case KindRelationship:
		return "relationship"
	case KindGoal:
		return "goal"
	default:
		return "other"
	}
}

// ParseKind maps a string back to a Kind, defaulting to KindOther.
func ParseKind(s string) Kind {
	switch s {
	case "fact":
		return KindFact
	case "preference":
		return KindPreference
	case "event":
		return KindEvent
	case "profile":
		return KindProfile
	case "relationship":
		return KindRelationship
	case "goal":
		return KindGoal
	default:
		return KindOther
	}
}

// Polarity carries sentiment for preference-kind cards. -1 means unset.
type Polarity int8

const (
	PolarityUnset    Polarity = -1
	PolarityPositive Polarity = 0
	PolarityNegative Polarity = 1
	PolarityNeutral  Polarity = 2
)

// VersionRelation says how a card relates to prior cards sharing its
// version key.
type VersionRelation uint8

const (
	RelationSets VersionRelation = iota
	RelationUpdates
	RelationExtends
	RelationRetracts
)

// DefaultVersionKey is entity:slot, used when a card doesn't state one
// explicitly.
func DefaultVersionKey(entity, slot string) string {
	return entity + ":" + slot
}

// VersionKeyOf returns c's effective version key.
func VersionKeyOf(c model.MemoryCard) string {
	if c.VersionKey != "" {
		return c.VersionKey
	}
	return DefaultVersionKey(c.Entity, c.Slot)
}

// EffectiveTimestamp orders a card temporally: event time, falling back to
// document time, falling back to creation time.
func EffectiveTimestamp(c model.MemoryCard) int64 {
	if c.EventDate != 0 {
		return c.EventDate
	}
	if c.DocumentDate != 0 {
		return c.DocumentDate
	}
	return c.CreatedAtUnix
}

// IsRetraction reports whether c retracts a prior value for its slot.
func IsRetraction(c model.MemoryCard) bool {
	return VersionRelation(c.VersionRelation) == RelationRetracts
}

// Supersedes reports whether newer supersedes older: same version key, an
// Updates or Retracts relation, and a strictly later effective timestamp.
// Sets and Extends never supersede a prior card for the same slot.
func Supersedes(newer, older model.MemoryCard) bool {
	if VersionKeyOf(newer) != VersionKeyOf(older) {
		return false
	}
	switch VersionRelation(newer.VersionRelation) {
	case RelationUpdates, RelationRetracts:
		return EffectiveTimestamp(newer) > EffectiveTimestamp(older)
	default:
		return false
	}
}

// Reduce applies Supersedes across cards sharing a version key, keeping
// only the latest non-superseded card per key (in encounter order for
// ties) plus every card whose relation is Sets or Extends. Cards that are
// pure retractions and have nothing left to retract are dropped too.
func Reduce(cards []model.MemoryCard) []model.MemoryCard {
	latest := make(map[string]model.MemoryCard)
	var extendsOrSets []model.MemoryCard

	for _, c := range cards {
		switch VersionRelation(c.VersionRelation) {
		case RelationSets, RelationExtends:
			extendsOrSets = append(extendsOrSets, c)
			continue
		}
		key := VersionKeyOf(c)
		cur, ok := latest[key]
		if !ok || Supersedes(c, cur) {
			latest[key] = c
		}
	}

	out := make([]model.MemoryCard, 0, len(extendsOrSets)+len(latest))
	out = append(out, extendsOrSets...)
	for _, c := range latest {
		if IsRetraction(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}
