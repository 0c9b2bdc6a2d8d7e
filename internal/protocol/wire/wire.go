// Package wire implements the payload encoding patterns shared by every
// message type: fixed little-endian scalar records, length-prefixed blobs,
// null-terminated strings, fixed-width zero-padded strings, repeated
// fixed-size records and the empty payload.
//
// A message describes its payload as an ordered []Field bound to its own
// struct fields. Encode, Decode and Size are generic over that list, so the
// wire layout of a type is declared in exactly one place.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrTruncated     = errors.New("wire: truncated payload")
	ErrTrailingBytes = errors.New("wire: trailing bytes after payload")
	ErrInvalidUTF8   = errors.New("wire: invalid utf-8 in string field")
	ErrEmbeddedNUL   = errors.New("wire: string contains NUL byte")
	ErrCountMismatch = errors.New("wire: record count mismatch")
	ErrTooLarge      = errors.New("wire: value too large for u32 length")
)

// Writer accumulates little-endian encoded values.
type Writer struct {
	buf []byte
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) U8(v uint8) {
	w.buf = append(w.buf, v)
}

// Bool writes exactly 0 or 1.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

func (w *Writer) U32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) I32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) F32(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *Writer) U64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *Writer) Zeros(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reader consumes little-endian values from a complete payload.
type Reader struct {
	buf []byte
	off int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Next returns the next n bytes without copying.
func (r *Reader) Next(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.off, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.Next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool treats any non-zero byte as true.
func (r *Reader) Bool() (bool, error) {
	v, err := r.U8()
	return v != 0, err
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.Next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	return math.Float32frombits(v), err
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.Next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Done reports an error when unread bytes remain.
func (r *Reader) Done() error {
	if n := r.Remaining(); n != 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingBytes, n)
	}
	return nil
}

// Encode serializes fields in order.
func Encode(fields []Field) ([]byte, error) {
	w := NewWriter(Size(fields))
	for _, f := range fields {
		if err := f.Encode(w); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// Decode fills fields from b and requires that b is consumed exactly.
func Decode(b []byte, fields []Field) error {
	r := NewReader(b)
	for _, f := range fields {
		if err := f.Decode(r); err != nil {
			return err
		}
	}
	return r.Done()
}

// Size returns the encoded size of fields with their current values.
func Size(fields []Field) int {
	n := 0
	for _, f := range fields {
		n += f.Size()
	}
	return n
}

// Variable reports whether any field has a value-dependent size.
func Variable(fields []Field) bool {
	for _, f := range fields {
		if f.Variable() {
			return true
		}
	}
	return false
}
