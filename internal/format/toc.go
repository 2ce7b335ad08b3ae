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

package format

import (
	"github.com/launix-de/memvault/internal/model"
	"github.com/launix-de/memvault/internal/sumcheck"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// TOCShape enumerates the decodable footer shapes, oldest first. New shapes
// are appended; old ones are never removed (§4.1, §4.10 "multi-version TOC
// tolerance").
type TOCShape uint32

const (
	ShapeV1 TOCShape = 1 // no memories_track, logic_mesh, replay_manifest, archive
	ShapeV2 TOCShape = 2 // no replay_manifest, archive
	ShapeV3 TOCShape = 3 // no archive
	ShapeV4 TOCShape = 4 // current
)

// MaxIndexBytes bounds the TOC's encoded size (§6).
const MaxIndexBytes = 512 * 1024 * 1024

// EncodeTOC serializes t in the current (ShapeV4) layout with toc_checksum
// zeroed, then stamps the real BLAKE3 checksum over that zeroed encoding —
// matching the commit protocol's "encode with checksum=0, hash, stamp" rule.
func EncodeTOC(t *model.TOC) ([]byte, error) {
	t.TOCVersion = uint32(ShapeV4)
	zeroed := *t
	zeroed.TOCChecksum = [32]byte{}
	buf := encodeShape(&zeroed, ShapeV4)
	if len(buf) > MaxIndexBytes {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "format.EncodeTOC", "toc exceeds MAX_INDEX_BYTES: %d", len(buf))
	}
	sum := sumcheck.Sum256(buf)
	t.TOCChecksum = sum
	// Re-encode with the real checksum in place so the returned bytes match
	// what verification will re-hash against header.toc_checksum.
	final := *t
	return encodeShape(&final, ShapeV4), nil
}

func encodeShape(t *model.TOC, shape TOCShape) []byte {
	w := NewWriter()
	w.U32(uint32(shape))

	w.U32(uint32(len(t.Frames)))
	for i := range t.Frames {
		encodeFrame(w, &t.Frames[i])
	}

	w.U32(uint32(len(t.Segments)))
	for _, s := range t.Segments {
		encodeSegmentDescriptor(w, s)
	}

	encodeIndexManifest(w, t.Indexes)
	encodeTimeIndexManifest(w, t.TimeIndex)
	encodeTemporalTrackManifest(w, t.TemporalTrack)

	if shape >= ShapeV2 {
		encodeMemoriesTrackManifest(w, t.MemoriesTrack)
		encodeLogicMeshManifest(w, t.LogicMesh)
	}
	encodeSketchTrackManifest(w, t.SketchTrack)
	encodeSegmentCatalog(w, t.SegmentCatalog)
	encodeTicketRef(w, t.TicketRef)
	encodeMemoryBinding(w, t.MemoryBinding)

	if shape >= ShapeV3 {
		encodeReplayManifest(w, t.ReplayManifest)
	}
	if shape >= ShapeV4 {
		encodeArchiveManifest(w, t.Archive)
	}

	w.U32(uint32(len(t.EnrichmentQueue)))
	for _, e := range t.EnrichmentQueue {
		w.U64(e.FrameID)
		w.I64(e.CreatedAt)
		w.U32(uint32(e.ChunksDone))
		w.U32(uint32(e.ChunksTotal))
	}

	w.Fixed32(t.MerkleRoot)
	w.Fixed32(t.TOCChecksum)
	return w.Bytes()
}

func encodeFrame(w *Writer, f *model.Frame) {
	w.U64(f.ID)
	w.I64(f.Timestamp)
	w.I64(f.AnchorTS)
	w.U8(uint8(f.AnchorSource))
	w.U64(f.PayloadOffset)
	w.U64(f.PayloadLength)
	w.Fixed32(f.Checksum)
	w.Str(f.URI)
	w.Str(f.Title)
	w.Str(f.Kind)
	w.Str(f.Track)
	metaKeys := sortedKeys(f.Metadata)
	w.StrMap(metaKeys, f.Metadata)
	w.StrSlice(f.Tags)
	w.StrSlice(f.Labels)
	w.StrMap(f.ExtraMetaOrder, f.ExtraMetadata)
	w.U8(uint8(f.CanonicalEnc))
	w.I64(f.CanonicalLen)

	w.U8(uint8(f.Role))
	w.Bool(f.HasParent)
	w.U64(f.ParentID)
	w.U32(uint32(f.ChunkIndex))
	w.U32(uint32(f.ChunkCount))
	w.U32(uint32(len(f.ChunkManifest)))
	for _, c := range f.ChunkManifest {
		w.U32(uint32(c.Start))
		w.U32(uint32(c.End))
	}

	w.U8(uint8(f.Status))
	w.Bool(f.HasSupersedes)
	w.U64(f.Supersedes)
	w.Bool(f.HasSuperseded)
	w.U64(f.SupersededBy)

	w.U8(uint8(f.EnrichmentState))
	w.Str(f.EmbeddingProvider)
	w.Str(f.EmbeddingModel)
}

func decodeFrame(r *Reader) model.Frame {
	var f model.Frame
	f.ID = r.U64()
	f.Timestamp = r.I64()
	f.AnchorTS = r.I64()
	f.AnchorSource = model.AnchorSource(r.U8())
	f.PayloadOffset = r.U64()
	f.PayloadLength = r.U64()
	f.Checksum = r.Fixed32()
	f.URI = r.Str()
	f.Title = r.Str()
	f.Kind = r.Str()
	f.Track = r.Str()
	_, f.Metadata = r.StrMap()
	f.Tags = r.StrSlice()
	f.Labels = r.StrSlice()
	f.ExtraMetaOrder, f.ExtraMetadata = r.StrMap()
	f.CanonicalEnc = model.Encoding(r.U8())
	f.CanonicalLen = r.I64()

	f.Role = model.Role(r.U8())
	f.HasParent = r.Bool()
	f.ParentID = r.U64()
	f.ChunkIndex = int(r.U32())
	f.ChunkCount = int(r.U32())
	n := int(r.U32())
	f.ChunkManifest = make([]model.ChunkRange, n)
	for i := 0; i < n; i++ {
		f.ChunkManifest[i] = model.ChunkRange{Start: int(r.U32()), End: int(r.U32())}
	}

	f.Status = model.Status(r.U8())
	f.HasSupersedes = r.Bool()
	f.Supersedes = r.U64()
	f.HasSuperseded = r.Bool()
	f.SupersededBy = r.U64()

	f.EnrichmentState = model.EnrichmentState(r.U8())
	f.EmbeddingProvider = r.Str()
	f.EmbeddingModel = r.Str()
	return f
}

func encodeSegmentDescriptor(w *Writer, s model.SegmentDescriptor) {
	w.U64(s.SegmentID)
	w.U64(s.BytesOffset)
	w.U64(s.BytesLength)
	w.Fixed32(s.Checksum)
	w.Bool(s.Span.HasSpan)
	w.U64(s.Span.FrameStart)
	w.U64(s.Span.FrameEnd)
	w.I32(int32(s.Span.PageStart))
	w.I32(int32(s.Span.PageEnd))
	w.I32(int32(s.Span.TokenStart))
	w.I32(int32(s.Span.TokenEnd))
	w.I32(int32(s.Dimension))
	w.I32(int32(s.VectorCount))
	w.U8(uint8(s.Compression))
}

func decodeSegmentDescriptor(r *Reader) model.SegmentDescriptor {
	var s model.SegmentDescriptor
	s.SegmentID = r.U64()
	s.BytesOffset = r.U64()
	s.BytesLength = r.U64()
	s.Checksum = r.Fixed32()
	s.Span.HasSpan = r.Bool()
	s.Span.FrameStart = r.U64()
	s.Span.FrameEnd = r.U64()
	s.Span.PageStart = int(r.I32())
	s.Span.PageEnd = int(r.I32())
	s.Span.TokenStart = int(r.I32())
	s.Span.TokenEnd = int(r.I32())
	s.Dimension = int(r.I32())
	s.VectorCount = int(r.I32())
	s.Compression = model.Compression(r.U8())
	return s
}

func encodeIndexManifest(w *Writer, m model.IndexManifest) {
	w.Bool(m.HasLex)
	encodeSegmentDescriptor(w, m.Lex)
	w.Bool(m.HasVec)
	encodeSegmentDescriptor(w, m.Vec)
	w.Bool(m.HasClip)
	encodeSegmentDescriptor(w, m.Clip)
}

func decodeIndexManifest(r *Reader) model.IndexManifest {
	var m model.IndexManifest
	m.HasLex = r.Bool()
	m.Lex = decodeSegmentDescriptor(r)
	m.HasVec = r.Bool()
	m.Vec = decodeSegmentDescriptor(r)
	m.HasClip = r.Bool()
	m.Clip = decodeSegmentDescriptor(r)
	return m
}

func encodeTimeIndexManifest(w *Writer, m model.TimeIndexManifest) {
	w.Bool(m.Present)
	encodeSegmentDescriptor(w, m.Seg)
}

func decodeTimeIndexManifest(r *Reader) model.TimeIndexManifest {
	var m model.TimeIndexManifest
	m.Present = r.Bool()
	m.Seg = decodeSegmentDescriptor(r)
	return m
}

func encodeTemporalTrackManifest(w *Writer, m model.TemporalTrackManifest) {
	w.Bool(m.Present)
	w.U64(m.Offset)
	w.U64(m.Length)
}

func decodeTemporalTrackManifest(r *Reader) model.TemporalTrackManifest {
	var m model.TemporalTrackManifest
	m.Present = r.Bool()
	m.Offset = r.U64()
	m.Length = r.U64()
	return m
}

func encodeMemoriesTrackManifest(w *Writer, m model.MemoriesTrackManifest) {
	w.Bool(m.Present)
	w.U64(m.Offset)
	w.U64(m.Length)
}

func decodeMemoriesTrackManifest(r *Reader) model.MemoriesTrackManifest {
	var m model.MemoriesTrackManifest
	m.Present = r.Bool()
	m.Offset = r.U64()
	m.Length = r.U64()
	return m
}

func encodeLogicMeshManifest(w *Writer, m model.LogicMeshManifest) {
	w.Bool(m.Present)
	w.U64(m.Offset)
	w.U64(m.Length)
}

func decodeLogicMeshManifest(r *Reader) model.LogicMeshManifest {
	var m model.LogicMeshManifest
	m.Present = r.Bool()
	m.Offset = r.U64()
	m.Length = r.U64()
	return m
}

func encodeSketchTrackManifest(w *Writer, m model.SketchTrackManifest) {
	w.Bool(m.Present)
	w.U64(m.Offset)
	w.U64(m.Length)
}

func decodeSketchTrackManifest(r *Reader) model.SketchTrackManifest {
	var m model.SketchTrackManifest
	m.Present = r.Bool()
	m.Offset = r.U64()
	m.Length = r.U64()
	return m
}

func encodeSegmentCatalog(w *Writer, c model.SegmentCatalog) {
	w.U32(uint32(len(c.LexSegments)))
	for _, s := range c.LexSegments {
		encodeSegmentDescriptor(w, s)
	}
	w.U32(uint32(len(c.VecSegments)))
	for _, s := range c.VecSegments {
		encodeSegmentDescriptor(w, s)
	}
	w.U32(uint32(len(c.TimeSegments)))
	for _, s := range c.TimeSegments {
		encodeSegmentDescriptor(w, s)
	}
	w.U64(c.NextSegmentID)
	w.U32(c.Version)
}

func decodeSegmentCatalog(r *Reader) model.SegmentCatalog {
	var c model.SegmentCatalog
	n := int(r.U32())
	c.LexSegments = make([]model.SegmentDescriptor, n)
	for i := range c.LexSegments {
		c.LexSegments[i] = decodeSegmentDescriptor(r)
	}
	n = int(r.U32())
	c.VecSegments = make([]model.SegmentDescriptor, n)
	for i := range c.VecSegments {
		c.VecSegments[i] = decodeSegmentDescriptor(r)
	}
	n = int(r.U32())
	c.TimeSegments = make([]model.SegmentDescriptor, n)
	for i := range c.TimeSegments {
		c.TimeSegments[i] = decodeSegmentDescriptor(r)
	}
	c.NextSegmentID = r.U64()
	c.Version = r.U32()
	return c
}

func encodeTicketRef(w *Writer, t model.TicketRef) {
	w.Bool(t.Present)
	w.Str(t.TicketID)
	w.U64(t.GrantedBytes)
	w.I64(t.IssuedAtUnix)
	w.Str(t.Issuer)
	w.U64(t.SeqNo)
	w.U64(t.ExpiresInSecs)
	w.Bool(t.Verified)
}

func decodeTicketRef(r *Reader) model.TicketRef {
	var t model.TicketRef
	t.Present = r.Bool()
	t.TicketID = r.Str()
	t.GrantedBytes = r.U64()
	t.IssuedAtUnix = r.I64()
	t.Issuer = r.Str()
	t.SeqNo = r.U64()
	t.ExpiresInSecs = r.U64()
	t.Verified = r.Bool()
	return t
}

func encodeMemoryBinding(w *Writer, m model.MemoryBinding) {
	w.Bool(m.Present)
	w.Str(m.Provider)
	w.Str(m.Identity)
}

func decodeMemoryBinding(r *Reader) model.MemoryBinding {
	var m model.MemoryBinding
	m.Present = r.Bool()
	m.Provider = r.Str()
	m.Identity = r.Str()
	return m
}

func encodeReplayManifest(w *Writer, m model.ReplayManifest) {
	w.Bool(m.Present)
	w.U64(m.SegmentOffset)
	w.U64(m.SegmentSize)
	w.U32(m.SessionCount)
	w.U64(m.TotalActions)
	w.U32(m.Version)
}

func decodeReplayManifest(r *Reader) model.ReplayManifest {
	var m model.ReplayManifest
	m.Present = r.Bool()
	m.SegmentOffset = r.U64()
	m.SegmentSize = r.U64()
	m.SessionCount = r.U32()
	m.TotalActions = r.U64()
	m.Version = r.U32()
	return m
}

func encodeArchiveManifest(w *Writer, m model.ArchiveManifest) {
	w.Bool(m.Present)
	w.U64(m.Offset)
	w.U64(m.Length)
	w.U32(m.FrameCount)
	w.U64(m.OriginalBytes)
}

func decodeArchiveManifest(r *Reader) model.ArchiveManifest {
	var m model.ArchiveManifest
	m.Present = r.Bool()
	m.Offset = r.U64()
	m.Length = r.U64()
	m.FrameCount = r.U32()
	m.OriginalBytes = r.U64()
	return m
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// simple insertion sort: metadata maps are small (bounded, see §3)
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// decodeShape parses buf assuming it was encoded with the given shape.
// It recovers from truncation panics raised by Reader and turns them into
// errors, so the caller can fall back to an older shape.
func decodeShape(buf []byte, shape TOCShape) (t *model.TOC, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			t = nil
			err = vaulterr.Newf(vaulterr.KindFormat, "format.decodeShape", "shape %d: %v", shape, rec)
		}
	}()

	r := NewReader(buf)
	gotShape := TOCShape(r.U32())
	if gotShape != shape {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "format.decodeShape", "shape mismatch: buffer says %d, tried %d", gotShape, shape)
	}

	out := &model.TOC{TOCVersion: uint32(shape)}

	n := int(r.U32())
	out.Frames = make([]model.Frame, n)
	for i := range out.Frames {
		out.Frames[i] = decodeFrame(r)
	}

	n = int(r.U32())
	out.Segments = make([]model.SegmentDescriptor, n)
	for i := range out.Segments {
		out.Segments[i] = decodeSegmentDescriptor(r)
	}

	out.Indexes = decodeIndexManifest(r)
	out.TimeIndex = decodeTimeIndexManifest(r)
	out.TemporalTrack = decodeTemporalTrackManifest(r)

	if shape >= ShapeV2 {
		out.MemoriesTrack = decodeMemoriesTrackManifest(r)
		out.LogicMesh = decodeLogicMeshManifest(r)
	}
	out.SketchTrack = decodeSketchTrackManifest(r)
	out.SegmentCatalog = decodeSegmentCatalog(r)
	out.TicketRef = decodeTicketRef(r)
	out.MemoryBinding = decodeMemoryBinding(r)

	if shape >= ShapeV3 {
		out.ReplayManifest = decodeReplayManifest(r)
	}
	if shape >= ShapeV4 {
		out.Archive = decodeArchiveManifest(r)
	}

	n = int(r.U32())
	out.EnrichmentQueue = make([]model.EnrichmentQueueEntry, n)
	for i := range out.EnrichmentQueue {
		out.EnrichmentQueue[i] = model.EnrichmentQueueEntry{
			FrameID:     r.U64(),
			CreatedAt:   r.I64(),
			ChunksDone:  int(r.U32()),
			ChunksTotal: int(r.U32()),
		}
	}

	out.MerkleRoot = r.Fixed32()
	out.TOCChecksum = r.Fixed32()

	if strict := r.Remaining(); strict != 0 {
		return out, vaulterr.Newf(vaulterr.KindFormat, "format.decodeShape", "%d trailing bytes", strict)
	}
	return out, nil
}

// DecodeTOCStrict decodes the current shape only, rejecting trailing bytes.
// Used by the normal open path (§4.1: "a TOC checksum mismatch is fatal").
func DecodeTOCStrict(buf []byte, expectedChecksum [32]byte) (*model.TOC, error) {
	t, err := decodeShape(buf, ShapeV4)
	if err != nil {
		return nil, err
	}
	if err := verifyChecksum(buf, t.TOCChecksum, expectedChecksum, ShapeV4); err != nil {
		return nil, err
	}
	return t, nil
}

// DecodeTOCLenient tries the current shape, then each legacy shape in turn,
// tolerating trailing bytes. Used only when a caller explicitly opts into
// recovery (§4.1, §7).
func DecodeTOCLenient(buf []byte, expectedChecksum [32]byte) (*model.TOC, TOCShape, error) {
	shapes := []TOCShape{ShapeV4, ShapeV3, ShapeV2, ShapeV1}
	var lastErr error
	for _, shape := range shapes {
		r := NewReader(buf)
		if int(r.U32()) != int(shape) {
			continue
		}
		t, err := decodeLenientShape(buf, shape)
		if err != nil {
			lastErr = err
			continue
		}
		if err := verifyChecksumLenient(t.TOCChecksum, expectedChecksum); err == nil {
			return t, shape, nil
		}
		lastErr = vaulterr.Newf(vaulterr.KindIntegrity, "format.DecodeTOCLenient", "checksum mismatch under shape %d", shape)
	}
	if lastErr == nil {
		lastErr = vaulterr.Newf(vaulterr.KindFormat, "format.DecodeTOCLenient", "no shape matched")
	}
	return nil, 0, lastErr
}

// decodeLenientShape is decodeShape without the trailing-bytes check.
func decodeLenientShape(buf []byte, shape TOCShape) (t *model.TOC, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			t = nil
			err = vaulterr.Newf(vaulterr.KindFormat, "format.decodeLenientShape", "shape %d: %v", shape, rec)
		}
	}()
	out, err := decodeShape(buf, shape)
	if err != nil {
		// decodeShape only returns an error for trailing bytes once fields
		// parsed cleanly; in that case `out` is still valid.
		if out != nil {
			return out, nil
		}
		return nil, err
	}
	return out, nil
}

func verifyChecksum(buf []byte, embedded, expected [32]byte, shape TOCShape) error {
	if embedded != expected {
		return vaulterr.Newf(vaulterr.KindIntegrity, "format.verifyChecksum", "toc checksum mismatch under shape %d", shape)
	}
	// Recompute over the zeroed encoding to guard against a corrupted field
	// that happens to still carry the old checksum bytes. The checksum is the
	// last field of the encoding, so zeroing buf's final 32 bytes reproduces
	// exactly what EncodeTOC hashed.
	if len(buf) < 32 {
		return vaulterr.Newf(vaulterr.KindFormat, "format.verifyChecksum", "toc too short to carry a checksum")
	}
	zeroed := append([]byte(nil), buf...)
	for i := len(zeroed) - 32; i < len(zeroed); i++ {
		zeroed[i] = 0
	}
	if sumcheck.Sum256(zeroed) != expected {
		return vaulterr.Newf(vaulterr.KindIntegrity, "format.verifyChecksum", "toc contents do not match checksum under shape %d", shape)
	}
	return nil
}

func verifyChecksumLenient(embedded, expected [32]byte) error {
	if embedded != expected {
		return vaulterr.New(vaulterr.KindIntegrity, "format.verifyChecksumLenient", errMismatch)
	}
	return nil
}

var errMismatch = vaulterr.Newf(vaulterr.KindIntegrity, "format", "checksum mismatch")
