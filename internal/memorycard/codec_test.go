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

func sampleCards() []model.MemoryCard {
	return []model.MemoryCard{
		{
			ID: 1, FrameID: 10, Summary: "likes blue",
			Kind: uint8(KindPreference), Entity: "alice", Slot: "color", Value: "blue",
			Polarity: int8(PolarityPositive), EventDate: 100, DocumentDate: 90,
			VersionKey: "alice:color", VersionRelation: uint8(RelationUpdates),
			SourceURI: "doc://1", Engine: "eng", EngineVer: "v1",
			Confidence: 0.9, CreatedAtUnix: 1000,
		},
		{
			ID: 2, FrameID: 11, Summary: "born in 1990",
			Kind: uint8(KindFact), Entity: "alice", Slot: "birth_year", Value: "1990",
			Polarity: int8(PolarityUnset), CreatedAtUnix: 2000,
		},
	}
}

func TestEncodeDecodeCardsRoundTrip(t *testing.T) {
	cards := sampleCards()
	buf, err := Encode(cards)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(cards) {
		t.Fatalf("Decode() = %d cards, want %d", len(got), len(cards))
	}
	for i := range cards {
		if got[i] != cards[i] {
			t.Fatalf("card %d = %+v, want %+v", i, got[i], cards[i])
		}
	}
}

func TestEncodeEmptyCardsDecodesToEmpty(t *testing.T) {
	buf, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Decode() = %d cards, want 0", len(got))
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	buf, _ := Encode(sampleCards())
	buf[0] = 'X'
	if _, err := Decode(buf); err == nil {
		t.Fatal("Decode should reject a buffer with a corrupted magic")
	}
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatal("Decode should reject a too-short buffer")
	}
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	buf, _ := Encode(sampleCards())
	truncated := buf[:len(buf)-5]
	if _, err := Decode(truncated); err == nil {
		t.Fatal("Decode should reject a buffer whose compressed payload was truncated")
	}
}
