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

package timeindex

import (
	"encoding/binary"

	"github.com/launix-de/memvault/internal/sumcheck"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// MentionKind classifies a temporal mention found in text.
type MentionKind uint8

const (
	KindDate MentionKind = iota
	KindDateTime
	KindTime
	KindRangeStart
	KindRangeEnd
	KindDuration
)

// Mention is a fixed 32-byte record: ts_utc(8) frame_id(8) byte_start(4)
// byte_len(4) kind(1) confidence(2) tz_hint_minutes(2) flags(1) + 2 pad.
type Mention struct {
	TSUtc         int64
	FrameID       uint64
	ByteStart     uint32
	ByteLen       uint32
	Kind          MentionKind
	Confidence    uint16
	TZHintMinutes int16
	Flags         uint8
}

// Anchor is a 24-byte record: frame_id(8) anchor_ts(8) source(1) + 7 pad.
type Anchor struct {
	FrameID   uint64
	AnchorTS  int64
	Source    uint8
}

const temporalMagic = "MVTT"

// Track holds the mentions and anchors tables, sorted per spec.md §4.6.
type Track struct {
	Mentions []Mention
	Anchors  []Anchor
}

// AddMention inserts in (ts_utc, frame_id, byte_start) order.
func (t *Track) AddMention(m Mention) {
	i := len(t.Mentions)
	t.Mentions = append(t.Mentions, m)
	for i > 0 && mentionLess(m, t.Mentions[i-1]) {
		t.Mentions[i] = t.Mentions[i-1]
		i--
	}
	t.Mentions[i] = m
}

func mentionLess(a, b Mention) bool {
	if a.TSUtc != b.TSUtc {
		return a.TSUtc < b.TSUtc
	}
	if a.FrameID != b.FrameID {
		return a.FrameID < b.FrameID
	}
	return a.ByteStart < b.ByteStart
}

// AddAnchor inserts in strictly increasing frame_id order.
func (t *Track) AddAnchor(a Anchor) error {
	if len(t.Anchors) > 0 && t.Anchors[len(t.Anchors)-1].FrameID >= a.FrameID {
		return vaulterr.Newf(vaulterr.KindIntegrity, "timeindex.Track.AddAnchor", "anchors must be strictly increasing by frame_id")
	}
	t.Anchors = append(t.Anchors, a)
	return nil
}

// Window returns mentions with ts_utc in [startUTC, endUTC] via binary
// search partition points.
func (t *Track) Window(startUTC, endUTC int64) []Mention {
	lo := lowerBoundMention(t.Mentions, startUTC)
	hi := upperBoundMention(t.Mentions, endUTC)
	if lo >= hi {
		return nil
	}
	return t.Mentions[lo:hi]
}

func lowerBoundMention(ms []Mention, ts int64) int {
	lo, hi := 0, len(ms)
	for lo < hi {
		mid := (lo + hi) / 2
		if ms[mid].TSUtc < ts {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func upperBoundMention(ms []Mention, ts int64) int {
	lo, hi := 0, len(ms)
	for lo < hi {
		mid := (lo + hi) / 2
		if ms[mid].TSUtc <= ts {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Encode serializes the track: a 56-byte header "MVTT" + version u16 +
// flags u16 + entry_count u64 + anchor_count u64 + BLAKE3(32) (the reserved
// field is zero bytes long in this version), followed by 32-byte mention
// records then 24-byte anchor records.
func (t *Track) Encode() []byte {
	body := make([]byte, 0, len(t.Mentions)*32+len(t.Anchors)*24)
	for _, m := range t.Mentions {
		body = append(body, encodeMention(m)...)
	}
	for _, a := range t.Anchors {
		body = append(body, encodeAnchor(a)...)
	}
	sum := sumcheck.Sum256(body)

	header := make([]byte, 0, 56)
	header = append(header, temporalMagic...)
	var tmp [8]byte
	binary.LittleEndian.PutUint16(tmp[:2], 1)
	header = append(header, tmp[:2]...)
	binary.LittleEndian.PutUint16(tmp[:2], 0)
	header = append(header, tmp[:2]...)
	binary.LittleEndian.PutUint64(tmp[:8], uint64(len(t.Mentions)))
	header = append(header, tmp[:8]...)
	binary.LittleEndian.PutUint64(tmp[:8], uint64(len(t.Anchors)))
	header = append(header, tmp[:8]...)
	header = append(header, make([]byte, 56-4-2-2-8-8-32)...) // reserved
	header = append(header, sum[:]...)

	return append(header, body...)
}

func encodeMention(m Mention) []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(m.TSUtc))
	binary.LittleEndian.PutUint64(buf[8:16], m.FrameID)
	binary.LittleEndian.PutUint32(buf[16:20], m.ByteStart)
	binary.LittleEndian.PutUint32(buf[20:24], m.ByteLen)
	buf[24] = uint8(m.Kind)
	binary.LittleEndian.PutUint16(buf[25:27], m.Confidence)
	binary.LittleEndian.PutUint16(buf[27:29], uint16(m.TZHintMinutes))
	buf[29] = m.Flags
	return buf
}

func encodeAnchor(a Anchor) []byte {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint64(buf[0:8], a.FrameID)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(a.AnchorTS))
	buf[16] = a.Source
	return buf
}

// DecodeTrack parses a track encoded by Encode, validating header magic,
// table sizes, and the combined BLAKE3 checksum.
func DecodeTrack(buf []byte) (*Track, error) {
	if len(buf) < 56 {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "timeindex.DecodeTrack", "short header")
	}
	if string(buf[:4]) != temporalMagic {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "timeindex.DecodeTrack", "bad magic")
	}
	entryCount := binary.LittleEndian.Uint64(buf[8:16])
	anchorCount := binary.LittleEndian.Uint64(buf[16:24])
	var checksum [32]byte
	copy(checksum[:], buf[24:56])

	body := buf[56:]
	if sumcheck.Sum256(body) != checksum {
		return nil, vaulterr.Newf(vaulterr.KindIntegrity, "timeindex.DecodeTrack", "checksum mismatch")
	}

	needed := int(entryCount)*32 + int(anchorCount)*24
	if len(body) < needed {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "timeindex.DecodeTrack", "truncated body")
	}

	t := &Track{}
	pos := 0
	var prevM Mention
	for i := uint64(0); i < entryCount; i++ {
		m := decodeMention(body[pos : pos+32])
		if i > 0 && mentionLess(m, prevM) {
			return nil, vaulterr.Newf(vaulterr.KindIntegrity, "timeindex.DecodeTrack", "mention ordering violation at %d", i)
		}
		t.Mentions = append(t.Mentions, m)
		prevM = m
		pos += 32
	}
	var prevFrame uint64
	for i := uint64(0); i < anchorCount; i++ {
		a := decodeAnchor(body[pos : pos+24])
		if i > 0 && a.FrameID <= prevFrame {
			return nil, vaulterr.Newf(vaulterr.KindIntegrity, "timeindex.DecodeTrack", "anchor ordering violation at %d", i)
		}
		t.Anchors = append(t.Anchors, a)
		prevFrame = a.FrameID
		pos += 24
	}
	return t, nil
}

func decodeMention(b []byte) Mention {
	return Mention{
		TSUtc:         int64(binary.LittleEndian.Uint64(b[0:8])),
		FrameID:       binary.LittleEndian.Uint64(b[8:16]),
		ByteStart:     binary.LittleEndian.Uint32(b[16:20]),
		ByteLen:       binary.LittleEndian.Uint32(b[20:24]),
		Kind:          MentionKind(b[24]),
		Confidence:    binary.LittleEndian.Uint16(b[25:27]),
		TZHintMinutes: int16(binary.LittleEndian.Uint16(b[27:29])),
		Flags:         b[29],
	}
}

func decodeAnchor(b []byte) Anchor {
	return Anchor{
		FrameID:  binary.LittleEndian.Uint64(b[0:8]),
		AnchorTS: int64(binary.LittleEndian.Uint64(b[8:16])),
		Source:   b[16],
	}
}
