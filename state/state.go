// This file is part of dragon32.
//
// dragon32 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// dragon32 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with dragon32.  If not, see <https://www.gnu.org/licenses/>.

// Package state implements the tagged value stream used to save and restore
// the machine. Every value is written with a name tag and a type byte so that
// a stream can be checked as it is read back. Reading a value with the wrong
// tag or the wrong type, or reading past the end of the stream, is an error.
//
// Errors are sticky. The first decode error is retained and every subsequent
// read returns the zero value. Callers should decode into temporary values,
// check Err() once, and only then commit the result. A failed decode must
// never leave a machine component half restored.
package state

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// list of type bytes used in the stream.
const (
	typeUint8 byte = iota + 1
	typeUint16
	typeInt64
	typeBool
	typeBytes
)

func typeName(t byte) string {
	switch t {
	case typeUint8:
		return "uint8"
	case typeUint16:
		return "uint16"
	case typeInt64:
		return "int64"
	case typeBool:
		return "bool"
	case typeBytes:
		return "bytes"
	}
	return fmt.Sprintf("unknown (%#02x)", t)
}

// Writer accumulates tagged values into a byte stream.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter is the preferred method of initialisation for the Writer type.
func NewWriter() *Writer {
	return &Writer{}
}

// Data returns the accumulated stream.
func (w *Writer) Data() []byte {
	return w.buf.Bytes()
}

func (w *Writer) tag(name string, typ byte) {
	w.buf.WriteByte(byte(len(name)))
	w.buf.WriteString(name)
	w.buf.WriteByte(typ)
}

// Uint8 writes an 8-bit value with the given tag.
func (w *Writer) Uint8(name string, v uint8) {
	w.tag(name, typeUint8)
	w.buf.WriteByte(v)
}

// Uint16 writes a 16-bit value with the given tag.
func (w *Writer) Uint16(name string, v uint16) {
	w.tag(name, typeUint16)
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// Int64 writes a 64-bit signed value with the given tag.
func (w *Writer) Int64(name string, v int64) {
	w.tag(name, typeInt64)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

// Bool writes a boolean value with the given tag.
func (w *Writer) Bool(name string, v bool) {
	w.tag(name, typeBool)
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// Bytes writes an opaque byte slice with the given tag.
func (w *Writer) Bytes(name string, v []byte) {
	w.tag(name, typeBytes)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(len(v)))
	w.buf.Write(b[:])
	w.buf.Write(v)
}

// Reader decodes a stream produced by Writer. Values must be read back in the
// order and with the tags they were written with.
type Reader struct {
	data []byte
	pos  int
	err  error
}

// NewReader is the preferred method of initialisation for the Reader type.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first error encountered during decoding, or nil.
func (r *Reader) Err() error {
	return r.err
}

// More returns true if there are undecoded values left in the stream.
func (r *Reader) More() bool {
	return r.err == nil && r.pos < len(r.data)
}

func (r *Reader) fail(format string, args ...interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("state: "+format, args...)
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.fail("stream truncated")
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) expect(name string, typ byte) bool {
	l := r.take(1)
	if l == nil {
		return false
	}
	tag := r.take(int(l[0]))
	if tag == nil {
		return false
	}
	t := r.take(1)
	if t == nil {
		return false
	}
	if string(tag) != name {
		r.fail("unexpected tag %q (wanted %q)", string(tag), name)
		return false
	}
	if t[0] != typ {
		r.fail("tag %q has type %s (wanted %s)", name, typeName(t[0]), typeName(typ))
		return false
	}
	return true
}

// Uint8 reads an 8-bit value, checking the tag.
func (r *Reader) Uint8(name string) uint8 {
	if !r.expect(name, typeUint8) {
		return 0
	}
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Uint16 reads a 16-bit value, checking the tag.
func (r *Reader) Uint16(name string) uint16 {
	if !r.expect(name, typeUint16) {
		return 0
	}
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// Int64 reads a 64-bit signed value, checking the tag.
func (r *Reader) Int64(name string) int64 {
	if !r.expect(name, typeInt64) {
		return 0
	}
	b := r.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// Bool reads a boolean value, checking the tag.
func (r *Reader) Bool(name string) bool {
	if !r.expect(name, typeBool) {
		return false
	}
	b := r.take(1)
	if b == nil {
		return false
	}
	return b[0] != 0
}

// Bytes reads an opaque byte slice, checking the tag.
func (r *Reader) Bytes(name string) []byte {
	if !r.expect(name, typeBytes) {
		return nil
	}
	l := r.take(4)
	if l == nil {
		return nil
	}
	b := r.take(int(binary.BigEndian.Uint32(l)))
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
