package wire

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type point struct{ X, Y int32 }

func pointFields(p *point) []Field { return []Field{I32(&p.X), I32(&p.Y)} }

func TestScalarsLittleEndian(t *testing.T) {
	var (
		a uint32  = 0x01020304
		b int32   = -2
		c float32 = 1.0
		d uint64  = 0x0102030405060708
		e bool    = true
		g uint8   = 0xab
	)
	got, err := Encode([]Field{U32(&a), I32(&b), F32(&c), U64(&d), Bool(&e), U8(&g)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{
		0x04, 0x03, 0x02, 0x01,
		0xfe, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x80, 0x3f,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		0x01,
		0xab,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("bytes mismatch:\n got=%v\nwant=%v", got, want)
	}
}

func TestBoolDecodesNonZeroAsTrue(t *testing.T) {
	var v bool
	if err := Decode([]byte{0x7f}, []Field{Bool(&v)}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !v {
		t.Fatalf("expected true")
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	var v uint32
	err := Decode([]byte{1, 0, 0, 0, 9}, []Field{U32(&v)})
	if !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

func TestDecodeTruncatedScalar(t *testing.T) {
	var v uint32
	err := Decode([]byte{1, 0}, []Field{U32(&v)})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestPaddedTruncatesAndPads(t *testing.T) {
	long := strings.Repeat("x", 300)
	b, err := Encode([]Field{Padded(&long, 256)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(b) != 256 {
		t.Fatalf("expected 256 bytes, got %d", len(b))
	}
	var back string
	if err := Decode(b, []Field{Padded(&back, 256)}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != long[:256] {
		t.Fatalf("expected first 256 bytes, got len %d", len(back))
	}

	short := "eDP-1"
	b, _ = Encode([]Field{Padded(&short, 32)})
	if !bytes.Equal(b[:5], []byte("eDP-1")) || !bytes.Equal(b[5:], make([]byte, 27)) {
		t.Fatalf("unexpected padding: %v", b)
	}
}

func TestPaddedDecodeIsLossy(t *testing.T) {
	raw := append([]byte{'a', 0xff, 'b'}, make([]byte, 5)...)
	var s string
	if err := Decode(raw, []Field{Padded(&s, 8)}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s != "a�b" {
		t.Fatalf("unexpected lossy decode: %q", s)
	}
}

func TestPaddedDecodeReplacesEachIllFormedSubpart(t *testing.T) {
	cases := map[string]string{
		"a\xff\xfeb\xe2\x82": "a\uFFFD\uFFFDb\uFFFD",
		"\xe2\x82\xac":       "\u20ac",
		"\xf0\x9f\x98":       "\uFFFD",
		"\xed\xa0\x80":       "\uFFFD\uFFFD\uFFFD",
		"\xc0\xaf":           "\uFFFD\uFFFD",
		"\xe0\x80x":          "\uFFFD\uFFFDx",
	}
	for in, want := range cases {
		raw := append([]byte(in), make([]byte, 16-len(in))...)
		var s string
		if err := Decode(raw, []Field{Padded(&s, 16)}); err != nil {
			t.Fatalf("decode %q: %v", in, err)
		}
		if s != want {
			t.Fatalf("decode %q: got %q want %q", in, s, want)
		}
	}
}

func TestCStringRoundTrip(t *testing.T) {
	for _, in := range []string{"", "hello", "ünïcødé"} {
		v := in
		b, err := Encode([]Field{CString(&v)})
		if err != nil {
			t.Fatalf("encode %q: %v", in, err)
		}
		if len(b) != len(in)+1 || b[len(b)-1] != 0 {
			t.Fatalf("bad terminator for %q: %v", in, b)
		}
		var out string
		if err := Decode(b, []Field{CString(&out)}); err != nil {
			t.Fatalf("decode %q: %v", in, err)
		}
		if out != in {
			t.Fatalf("round trip mismatch: %q != %q", out, in)
		}
	}
}

func TestCStringErrors(t *testing.T) {
	var s string
	if err := Decode([]byte("abc"), []Field{CString(&s)}); !errors.Is(err, ErrTruncated) {
		t.Fatalf("missing terminator: expected ErrTruncated, got %v", err)
	}
	if err := Decode([]byte{0xc3, 0x28, 0}, []Field{CString(&s)}); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("bad utf-8: expected ErrInvalidUTF8, got %v", err)
	}
	nul := "a\x00b"
	if _, err := Encode([]Field{CString(&nul)}); !errors.Is(err, ErrEmbeddedNUL) {
		t.Fatalf("embedded NUL: expected ErrEmbeddedNUL, got %v", err)
	}
}

func TestLenCStringIgnoresDeclaredLength(t *testing.T) {
	cmd := "foot"
	b, err := Encode([]Field{LenCString(&cmd)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{5, 0, 0, 0, 'f', 'o', 'o', 't', 0}
	if !bytes.Equal(b, want) {
		t.Fatalf("bytes mismatch: %v", b)
	}
	b[0] = 99
	var out string
	if err := Decode(b, []Field{LenCString(&out)}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != "foot" {
		t.Fatalf("unexpected command %q", out)
	}
}

func TestBlobBounds(t *testing.T) {
	data := []byte{1, 2, 3}
	b, _ := Encode([]Field{Blob(&data)})
	if !bytes.Equal(b, []byte{3, 0, 0, 0, 1, 2, 3}) {
		t.Fatalf("unexpected blob bytes: %v", b)
	}
	var out []byte
	err := Decode([]byte{0xff, 0xff, 0xff, 0xff, 1}, []Field{Blob(&out)})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestRecordsEmptyAndHugeCount(t *testing.T) {
	var pts []point
	b, _ := Encode([]Field{Records(&pts, pointFields)})
	if !bytes.Equal(b, []byte{0, 0, 0, 0}) {
		t.Fatalf("empty records: %v", b)
	}
	err := Decode([]byte{0xff, 0xff, 0xff, 0x7f}, []Field{Records(&pts, pointFields)})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated for huge count, got %v", err)
	}
}

func TestTrailingUsesEarlierCount(t *testing.T) {
	type poly struct {
		N      uint32
		Points []point
	}
	fields := func(p *poly) []Field {
		return []Field{
			U32(&p.N),
			Trailing(&p.Points, func() int64 { return int64(p.N) }, pointFields),
		}
	}
	in := poly{N: 2, Points: []point{{1, 2}, {-3, 4}}}
	b, err := Encode(fields(&in))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(b) != 4+2*8 {
		t.Fatalf("unexpected size %d", len(b))
	}
	var out poly
	if err := Decode(b, fields(&out)); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.N != 2 || len(out.Points) != 2 || out.Points[1] != (point{-3, 4}) {
		t.Fatalf("unexpected decode: %+v", out)
	}

	bad := poly{N: 3, Points: []point{{1, 2}}}
	if _, err := Encode(fields(&bad)); !errors.Is(err, ErrCountMismatch) {
		t.Fatalf("expected ErrCountMismatch, got %v", err)
	}
}

func TestSizeAndVariable(t *testing.T) {
	var a uint32
	var s string
	fixed := []Field{U32(&a), Padded(&s, 32)}
	if Size(fixed) != 36 || Variable(fixed) {
		t.Fatalf("fixed layout misreported: size=%d", Size(fixed))
	}
	if !Variable([]Field{U32(&a), CString(&s)}) {
		t.Fatalf("cstring layout should be variable")
	}
	if RecordSize(pointFields) != 8 {
		t.Fatalf("unexpected record size %d", RecordSize(pointFields))
	}
}
