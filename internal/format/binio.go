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
	"encoding/binary"
	"fmt"
	"math"
)

// Writer is a small deterministic, little-endian, fixed-int binary encoder.
// It plays the role spec.md assigns to "bincode": every TOC, segment header,
// and manifest-WAL record in this vault is built from the same primitives,
// so two encodes of equal structures always produce byte-identical output.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer { return &Writer{buf: make([]byte, 0, 4096)} }

func (w *Writer) Bytes() []byte { return w.buf }
func (w *Writer) Len() int      { return len(w.buf) }

func (w *Writer) U8(v uint8)   { w.buf = append(w.buf, v) }
func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
	} else {
		w.U8(0)
	}
}

func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) I64(v int64) { w.U64(uint64(v)) }
func (w *Writer) I32(v int32) { w.U32(uint32(v)) }
func (w *Writer) I8(v int8)   { w.U8(uint8(v)) }

func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }
func (w *Writer) F64(v float64) { w.U64(math.Float64bits(v)) }

func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

// Fixed32 writes a fixed 32-byte field verbatim (checksums).
func (w *Writer) Fixed32(b [32]byte) { w.buf = append(w.buf, b[:]...) }

// Blob writes a u32 length prefix followed by the bytes.
func (w *Writer) Blob(b []byte) {
	w.U32(uint32(len(b)))
	w.Raw(b)
}

// Str writes a u32 length prefix followed by the UTF-8 bytes.
func (w *Writer) Str(s string) { w.Blob([]byte(s)) }

// StrSlice writes a u32 count followed by each string.
func (w *Writer) StrSlice(ss []string) {
	w.U32(uint32(len(ss)))
	for _, s := range ss {
		w.Str(s)
	}
}

// StrMap writes a u32 count followed by (key,value) string pairs, in the
// order given by keys — callers are responsible for deterministic ordering.
func (w *Writer) StrMap(keys []string, m map[string]string) {
	w.U32(uint32(len(keys)))
	for _, k := range keys {
		w.Str(k)
		w.Str(m[k])
	}
}

// Reader decodes buffers produced by Writer. All Read* methods panic on
// truncated input; callers recover at the decode boundary and translate the
// panic into a vaulterr.KindFormat error (see toc.go's decodeShape).
type Reader struct {
	buf []byte
	pos int
}

func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) need(n int) {
	if r.pos+n > len(r.buf) {
		panic(fmt.Errorf("format: truncated record: need %d bytes, have %d", n, len(r.buf)-r.pos))
	}
}

func (r *Reader) U8() uint8 {
	r.need(1)
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *Reader) Bool() bool { return r.U8() != 0 }

func (r *Reader) U16() uint16 {
	r.need(2)
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *Reader) U32() uint32 {
	r.need(4)
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *Reader) U64() uint64 {
	r.need(8)
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v
}

func (r *Reader) I64() int64 { return int64(r.U64()) }
func (r *Reader) I32() int32 { return int32(r.U32()) }
func (r *Reader) I8() int8   { return int8(r.U8()) }

func (r *Reader) F32() float32 { return math.Float32frombits(r.U32()) }
func (r *Reader) F64() float64 { return math.Float64frombits(r.U64()) }

func (r *Reader) Raw(n int) []byte {
	r.need(n)
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) Fixed32() [32]byte {
	var out [32]byte
	copy(out[:], r.Raw(32))
	return out
}

func (r *Reader) Blob() []byte {
	n := int(r.U32())
	return append([]byte(nil), r.Raw(n)...)
}

func (r *Reader) Str() string { return string(r.Blob()) }

func (r *Reader) StrSlice() []string {
	n := int(r.U32())
	out := make([]string, n)
	for i := range out {
		out[i] = r.Str()
	}
	return out
}

func (r *Reader) StrMap() ([]string, map[string]string) {
	n := int(r.U32())
	keys := make([]string, n)
	m := make(map[string]string, n)
	for i := 0; i < n; i++ {
		k := r.Str()
		v := r.Str()
		keys[i] = k
		m[k] = v
	}
	return keys, m
}
