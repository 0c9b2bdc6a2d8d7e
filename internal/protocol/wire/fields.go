package wire

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Field binds one slot of a payload layout to a Go value.
type Field interface {
	Encode(w *Writer) error
	Decode(r *Reader) error
	// Size is the encoded size for the current value.
	Size() int
	// Variable reports whether Size depends on the value.
	Variable() bool
}

type scalar struct{ size int }

func (s scalar) Size() int      { return s.size }
func (s scalar) Variable() bool { return false }

type u8Field struct {
	scalar
	p *uint8
}

func U8(p *uint8) Field { return u8Field{scalar{1}, p} }

func (f u8Field) Encode(w *Writer) error { w.U8(*f.p); return nil }

func (f u8Field) Decode(r *Reader) (err error) {
	*f.p, err = r.U8()
	return err
}

type boolField struct {
	scalar
	p *bool
}

func Bool(p *bool) Field { return boolField{scalar{1}, p} }

func (f boolField) Encode(w *Writer) error { w.Bool(*f.p); return nil }

func (f boolField) Decode(r *Reader) (err error) {
	*f.p, err = r.Bool()
	return err
}

type u32Field struct {
	scalar
	p *uint32
}

func U32(p *uint32) Field { return u32Field{scalar{4}, p} }

func (f u32Field) Encode(w *Writer) error { w.U32(*f.p); return nil }

func (f u32Field) Decode(r *Reader) (err error) {
	*f.p, err = r.U32()
	return err
}

type i32Field struct {
	scalar
	p *int32
}

func I32(p *int32) Field { return i32Field{scalar{4}, p} }

func (f i32Field) Encode(w *Writer) error { w.I32(*f.p); return nil }

func (f i32Field) Decode(r *Reader) (err error) {
	*f.p, err = r.I32()
	return err
}

type f32Field struct {
	scalar
	p *float32
}

func F32(p *float32) Field { return f32Field{scalar{4}, p} }

func (f f32Field) Encode(w *Writer) error { w.F32(*f.p); return nil }

func (f f32Field) Decode(r *Reader) (err error) {
	*f.p, err = r.F32()
	return err
}

type u64Field struct {
	scalar
	p *uint64
}

func U64(p *uint64) Field { return u64Field{scalar{8}, p} }

func (f u64Field) Encode(w *Writer) error { w.U64(*f.p); return nil }

func (f u64Field) Decode(r *Reader) (err error) {
	*f.p, err = r.U64()
	return err
}

// F32s expands a float array into one F32 field per element.
func F32s(vals []float32) []Field {
	out := make([]Field, len(vals))
	for i := range vals {
		out[i] = F32(&vals[i])
	}
	return out
}

// Padded is a fixed-width string field: at most n bytes of the value are
// written, then zeros up to n. Longer values are silently truncated.
// Decoding strips every trailing NUL and replaces invalid UTF-8.
type paddedField struct {
	p *string
	n int
}

func Padded(p *string, n int) Field { return paddedField{p, n} }

func (f paddedField) Size() int      { return f.n }
func (f paddedField) Variable() bool { return false }

func (f paddedField) Encode(w *Writer) error {
	s := *f.p
	if len(s) > f.n {
		s = s[:f.n]
	}
	w.Raw([]byte(s))
	w.Zeros(f.n - len(s))
	return nil
}

func (f paddedField) Decode(r *Reader) error {
	b, err := r.Next(f.n)
	if err != nil {
		return err
	}
	*f.p = lossyString(bytes.TrimRight(b, "\x00"))
	return nil
}

// lossyString replaces each maximal ill-formed subsequence of b with one
// U+FFFD, so "\xe2\x82" yields one replacement and "\xff\xfe" yields two.
func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b) + 8)
	for len(b) > 0 {
		r, n := utf8.DecodeRune(b)
		if r != utf8.RuneError || n > 1 {
			sb.Write(b[:n])
			b = b[n:]
			continue
		}
		sb.WriteRune(utf8.RuneError)
		b = b[invalidPrefixLen(b):]
	}
	return sb.String()
}

// invalidPrefixLen returns the length of the maximal subpart at the start
// of b: a lead byte plus the continuation bytes that are still valid for
// it, or 1 when the first byte cannot start a sequence.
func invalidPrefixLen(b []byte) int {
	lo, hi := byte(0x80), byte(0xbf)
	var need int
	switch c := b[0]; {
	case c >= 0xc2 && c <= 0xdf:
		need = 1
	case c == 0xe0:
		need, lo = 2, 0xa0
	case c == 0xed:
		need, hi = 2, 0x9f
	case c >= 0xe1 && c <= 0xef:
		need = 2
	case c == 0xf0:
		need, lo = 3, 0x90
	case c == 0xf4:
		need, hi = 3, 0x8f
	case c >= 0xf1 && c <= 0xf3:
		need = 3
	default:
		return 1
	}
	n := 1
	for ; n <= need && n < len(b); n++ {
		if b[n] < lo || b[n] > hi {
			break
		}
		lo, hi = 0x80, 0xbf
	}
	return n
}

// CString is a NUL-terminated UTF-8 string.
type cstringField struct {
	p *string
}

func CString(p *string) Field { return cstringField{p} }

func (f cstringField) Size() int      { return len(*f.p) + 1 }
func (f cstringField) Variable() bool { return true }

func (f cstringField) Encode(w *Writer) error {
	if err := checkCString(*f.p); err != nil {
		return err
	}
	w.Raw([]byte(*f.p))
	w.U8(0)
	return nil
}

func (f cstringField) Decode(r *Reader) error {
	s, err := readCString(r)
	if err != nil {
		return err
	}
	*f.p = s
	return nil
}

// LenCString is a CString preceded by a u32 holding len+1. The count is
// redundant with the terminator and is ignored on decode.
type lenCStringField struct {
	p *string
}

func LenCString(p *string) Field { return lenCStringField{p} }

func (f lenCStringField) Size() int      { return 4 + len(*f.p) + 1 }
func (f lenCStringField) Variable() bool { return true }

func (f lenCStringField) Encode(w *Writer) error {
	if err := checkCString(*f.p); err != nil {
		return err
	}
	if uint64(len(*f.p))+1 > math.MaxUint32 {
		return ErrTooLarge
	}
	w.U32(uint32(len(*f.p) + 1))
	w.Raw([]byte(*f.p))
	w.U8(0)
	return nil
}

func (f lenCStringField) Decode(r *Reader) error {
	if _, err := r.U32(); err != nil {
		return err
	}
	s, err := readCString(r)
	if err != nil {
		return err
	}
	*f.p = s
	return nil
}

func checkCString(s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return ErrEmbeddedNUL
	}
	if !utf8.ValidString(s) {
		return ErrInvalidUTF8
	}
	return nil
}

func readCString(r *Reader) (string, error) {
	rest := r.buf[r.off:]
	i := bytes.IndexByte(rest, 0)
	if i < 0 {
		return "", fmt.Errorf("%w: missing string terminator", ErrTruncated)
	}
	b := rest[:i]
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	r.off += i + 1
	return string(b), nil
}

// Blob is a u32 byte count followed by that many raw bytes.
type blobField struct {
	p *[]byte
}

func Blob(p *[]byte) Field { return blobField{p} }

func (f blobField) Size() int      { return 4 + len(*f.p) }
func (f blobField) Variable() bool { return true }

func (f blobField) Encode(w *Writer) error {
	if uint64(len(*f.p)) > math.MaxUint32 {
		return ErrTooLarge
	}
	w.U32(uint32(len(*f.p)))
	w.Raw(*f.p)
	return nil
}

func (f blobField) Decode(r *Reader) error {
	n, err := r.U32()
	if err != nil {
		return err
	}
	if uint64(n) > uint64(r.Remaining()) {
		return fmt.Errorf("%w: blob declares %d bytes, have %d", ErrTruncated, n, r.Remaining())
	}
	b, _ := r.Next(int(n))
	out := make([]byte, len(b))
	copy(out, b)
	*f.p = out
	return nil
}

// RecordSize returns the encoded size of one zero-valued record.
func RecordSize[T any](fields func(*T) []Field) int {
	var zero T
	return Size(fields(&zero))
}

// Records is a u32 element count followed by that many fixed-size records.
type recordsField[T any] struct {
	p      *[]T
	fields func(*T) []Field
}

func Records[T any](p *[]T, fields func(*T) []Field) Field {
	return recordsField[T]{p, fields}
}

func (f recordsField[T]) Size() int      { return 4 + len(*f.p)*RecordSize(f.fields) }
func (f recordsField[T]) Variable() bool { return true }

func (f recordsField[T]) Encode(w *Writer) error {
	if uint64(len(*f.p)) > math.MaxUint32 {
		return ErrTooLarge
	}
	w.U32(uint32(len(*f.p)))
	return encodeRecords(w, *f.p, f.fields)
}

func (f recordsField[T]) Decode(r *Reader) error {
	n, err := r.U32()
	if err != nil {
		return err
	}
	out, err := decodeRecords(r, int64(n), f.fields)
	if err != nil {
		return err
	}
	*f.p = out
	return nil
}

// Trailing is a run of fixed-size records whose count is carried by an
// earlier field of the same payload. count is evaluated lazily so that on
// decode it sees the already-decoded header fields.
type trailingField[T any] struct {
	p      *[]T
	count  func() int64
	fields func(*T) []Field
}

func Trailing[T any](p *[]T, count func() int64, fields func(*T) []Field) Field {
	return trailingField[T]{p, count, fields}
}

func (f trailingField[T]) Size() int      { return len(*f.p) * RecordSize(f.fields) }
func (f trailingField[T]) Variable() bool { return true }

func (f trailingField[T]) Encode(w *Writer) error {
	if want := f.count(); int64(len(*f.p)) != want {
		return fmt.Errorf("%w: header declares %d records, have %d", ErrCountMismatch, want, len(*f.p))
	}
	return encodeRecords(w, *f.p, f.fields)
}

func (f trailingField[T]) Decode(r *Reader) error {
	out, err := decodeRecords(r, f.count(), f.fields)
	if err != nil {
		return err
	}
	*f.p = out
	return nil
}

func encodeRecords[T any](w *Writer, items []T, fields func(*T) []Field) error {
	for i := range items {
		for _, fl := range fields(&items[i]) {
			if err := fl.Encode(w); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeRecords[T any](r *Reader, n int64, fields func(*T) []Field) ([]T, error) {
	size := int64(RecordSize(fields))
	if n < 0 || (size > 0 && n > int64(r.Remaining())/size) {
		return nil, fmt.Errorf("%w: %d records of %d bytes, have %d", ErrTruncated, n, size, r.Remaining())
	}
	out := make([]T, n)
	for i := range out {
		for _, fl := range fields(&out[i]) {
			if err := fl.Decode(r); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
