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

package memorycard

import (
	"testing"

	"github.com/launix-de/memvault/internal/model"
)

func TestKindStringAndParseKindRoundTrip(t *testing.T) {
	kinds := []Kind{KindFact, KindPreference, KindEvent, KindProfile, KindRelationship, KindGoal, KindOther}
	for _, k := range kinds {
		if ParseKind(k.String()) != k {
			t.Fatalf("ParseKind(%q) did not round-trip to %v", k.String(), k)
		}
	}
}

func TestParseKindUnknownDefaultsToOther(t *testing.T) {
	if ParseKind("nonsense") != KindOther {
		t.Fatal("ParseKind of an unrecognized string should default to KindOther")
	}
}

func TestVersionKeyOfFallsBackToEntitySlot(t *testing.T) {
	c := model.MemoryCard{Entity: "alice", Slot: "favorite_color"}
	if got := VersionKeyOf(c); got != "alice:favorite_color" {
		t.Fatalf("VersionKeyOf() = %q, want %q", got, "alice:favorite_color")
	}
}

func TestVersionKeyOfPrefersExplicitKey(t *testing.T) {
	c := model.MemoryCard{Entity: "alice", Slot: "favorite_color", VersionKey: "explicit-key"}
	if got := VersionKeyOf(c); got != "explicit-key" {
		t.Fatalf("VersionKeyOf() = %q, want %q", got, "explicit-key")
	}
}

func TestEffectiveTimestampPrefersEventThenDocumentThenCreated(t *testing.T) {
	c := model.MemoryCard{EventDate: 100, DocumentDate: 200, CreatedAtUnix: 300}
	if got := EffectiveTimestamp(c); got != 100 {
		t.Fatalf("EffectiveTimestamp() = %d, want 100 (event date)", got)
	}
	c = model.MemoryCard{DocumentDate: 200, CreatedAtUnix: 300}
	if got := EffectiveTimestamp(c); got != 200 {
		t.Fatalf("EffectiveTimestamp() = %d, want 200 (document date)", got)
	}
	c = model.MemoryCard{CreatedAtUnix: 300}
	if got := EffectiveTimestamp(c); got != 300 {
		t.Fatalf("EffectiveTimestamp() = %d, want 300 (created date)", got)
	}
}

func TestIsRetraction(t *testing.T) {
	c := model.MemoryCard{VersionRelation: uint8(RelationRetracts)}
	if !IsRetraction(c) {
		t.Fatal("IsRetraction should be true for a RelationRetracts card")
	}
	c.VersionRelation = uint8(RelationSets)
	if IsRetraction(c) {
		t.Fatal("IsRetraction should be false for a RelationSets card")
	}
}

func TestSupersedesRequiresSameVersionKeyAndLaterTimestamp(t *testing.T) {
	older := model.MemoryCard{Entity: "alice", Slot: "color", VersionRelation: uint8(RelationUpdates), EventDate: 100}
	newer := model.MemoryCard{Entity: "alice", Slot: "color", VersionRelation: uint8(RelationUpdates), EventDate: 200}
	if !Supersedes(newer, older) {
		t.Fatal("a later Updates card should supersede an earlier one for the same key")
	}
	if Supersedes(older, newer) {
		t.Fatal("an earlier card should not supersede a later one")
	}
}

func TestSupersedesFalseForSetsAndExtends(t *testing.T) {
	older := model.MemoryCard{Entity: "alice", Slot: "color", EventDate: 100}
	newer := model.MemoryCard{Entity: "alice", Slot: "color", VersionRelation: uint8(RelationSets), EventDate: 200}
	if Supersedes(newer, older) {
		t.Fatal("a Sets-relation card should never supersede a prior card")
	}
}

func TestSupersedesFalseForDifferentVersionKey(t *testing.T) {
	older := model.MemoryCard{Entity: "alice", Slot: "color", VersionRelation: uint8(RelationUpdates), EventDate: 100}
	newer := model.MemoryCard{Entity: "bob", Slot: "color", VersionRelation: uint8(RelationUpdates), EventDate: 200}
	if Supersedes(newer, older) {
		t.Fatal("cards with different version keys should never supersede each other")
	}
}

func TestReduceKeepsLatestUpdateAndDropsSuperseded(t *testing.T) {
	cards := []model.MemoryCard{
		{Entity: "alice", Slot: "color", Value: "red", VersionRelation: uint8(RelationUpdates), EventDate: 100},
		{Entity: "alice", Slot: "color", Value: "blue", VersionRelation: uint8(RelationUpdates), EventDate: 200},
	}
	out := Reduce(cards)
	if len(out) != 1 {
		t.Fatalf("Reduce() = %d cards, want 1", len(out))
	}
	if out[0].Value != "blue" {
		t.Fatalf("Reduce() kept value %q, want %q (the later update)", out[0].Value, "blue")
	}
}

func TestReduceAlwaysKeepsSetsAndExtends(t *testing.T) {
	cards := []model.MemoryCard{
		{Entity: "alice", Slot: "bio", Value: "first", VersionRelation: uint8(RelationSets)},
		{Entity: "alice", Slot: "bio", Value: "second", VersionRelation: uint8(RelationExtends)},
	}
	out := Reduce(cards)
	if len(out) != 2 {
		t.Fatalf("Reduce() = %d cards, want 2 (Sets and Extends both kept)", len(out))
	}
}

func TestReduceDropsPureRetraction(t *testing.T) {
	cards := []model.MemoryCard{
		{Entity: "alice", Slot: "color", Value: "red", VersionRelation: uint8(RelationRetracts), EventDate: 100},
	}
	out := Reduce(cards)
	if len(out) != 0 {
		t.Fatalf("Reduce() = %d cards, want 0 (a pure retraction should be dropped)", len(out))
	}
}
