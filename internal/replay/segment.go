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

package replay

import (
	"encoding/binary"

	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/vaulterr"
)

const (
	segmentMagic   = "MV2RPLY!"
	segmentVersion = uint32(1)
)

// EncodeSegment serializes completed sessions into the in-file segment
// layout: header [magic | version u32 | session_count u32 | total_size u64]
// followed by length-prefixed session payloads, per spec.md §4.10.
func EncodeSegment(sessions []*Session) []byte {
	var body []byte
	for _, s := range sessions {
		payload := EncodeSession(s)
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
		body = append(body, lenBuf[:]...)
		body = append(body, payload...)
	}

	header := make([]byte, 0, len(segmentMagic)+4+4+8)
	header = append(header, segmentMagic...)
	var tmp [8]byte
	binary.LittleEndian.PutUint32(tmp[:4], segmentVersion)
	header = append(header, tmp[:4]...)
	binary.LittleEndian.PutUint32(tmp[:4], uint32(len(sessions)))
	header = append(header, tmp[:4]...)
	binary.LittleEndian.PutUint64(tmp[:8], uint64(len(header)+len(body)))
	header = append(header, tmp[:8]...)

	return append(header, body...)
}

const segmentHeaderSize = len(segmentMagic) + 4 + 4 + 8

// DecodeSegment parses a segment produced by EncodeSegment.
func DecodeSegment(buf []byte) (sessions []*Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			sessions, err = nil, vaulterr.Newf(vaulterr.KindFormat, "replay.DecodeSegment", "%v", r)
		}
	}()
	if len(buf) < segmentHeaderSize {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "replay.DecodeSegment", "short header")
	}
	if string(buf[:len(segmentMagic)]) != segmentMagic {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "replay.DecodeSegment", "bad magic")
	}
	pos := len(segmentMagic)
	_ = binary.LittleEndian.Uint32(buf[pos : pos+4]) // version
	pos += 4
	count := binary.LittleEndian.Uint32(buf[pos : pos+4])
	pos += 4
	_ = binary.LittleEndian.Uint64(buf[pos : pos+8]) // total_size
	pos += 8

	for i := uint32(0); i < count; i++ {
		if pos+4 > len(buf) {
			return nil, vaulterr.Newf(vaulterr.KindFormat, "replay.DecodeSegment", "truncated length prefix at session %d", i)
		}
		n := int(binary.LittleEndian.Uint32(buf[pos : pos+4]))
		pos += 4
		if pos+n > len(buf) {
			return nil, vaulterr.Newf(vaulterr.KindFormat, "replay.DecodeSegment", "truncated session payload at %d", i)
		}
		s, decErr := DecodeSession(buf[pos : pos+n])
		if decErr != nil {
			return nil, decErr
		}
		sessions = append(sessions, s)
		pos += n
	}
	return sessions, nil
}

// BuildManifest derives the TOC's replay_manifest from an encoded segment
// appended at segmentOffset.
func BuildManifest(segmentOffset uint64, segmentBytes []byte, sessions []*Session) model.ReplayManifest {
	var totalActions uint64
	for _, s := range sessions {
		totalActions += uint64(len(s.Actions))
	}
	return model.ReplayManifest{
		Present:       true,
		SegmentOffset: segmentOffset,
		SegmentSize:   uint64(len(segmentBytes)),
		SessionCount:  uint32(len(sessions)),
		TotalActions:  totalActions,
		Version:       segmentVersion,
	}
}
