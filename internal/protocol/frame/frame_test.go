package frame

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestHeaderEncodeLayout(t *testing.T) {
	h := Header{Length: 44, Type: 1, Flags: 0x0102, Sequence: 0x03040506, NumFDs: -1}
	got := EncodeHeader(h)
	want := []byte{
		44, 0, 0, 0,
		1, 0,
		0x02, 0x01,
		0x06, 0x05, 0x04, 0x03,
		0xff, 0xff, 0xff, 0xff,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("header bytes mismatch:\n got=%v\nwant=%v", got, want)
	}
	back, err := DecodeHeader(got)
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if back != h {
		t.Fatalf("header mismatch: got=%+v want=%+v", back, h)
	}
}

func TestReadWriteFrameRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	var buf bytes.Buffer
	if err := WriteFrame(&buf, New(28, payload), DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if buf.Len() != HeaderLen+len(payload) {
		t.Fatalf("unexpected frame size: %d", buf.Len())
	}
	out, err := ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if out.Header.Length != uint32(HeaderLen+len(payload)) {
		t.Fatalf("length invariant violated: %d", out.Header.Length)
	}
	if out.Header.Type != 28 || out.Header.Flags != 0 || out.Header.Sequence != 0 || out.Header.NumFDs != 0 {
		t.Fatalf("unexpected header: %+v", out.Header)
	}
	if !bytes.Equal(out.Payload, payload) {
		t.Fatalf("payload mismatch: %v", out.Payload)
	}
}

func TestWriteFrameRecomputesLength(t *testing.T) {
	f := Frame{Header: Header{Length: 999, Type: 2}, Payload: []byte{9, 9, 9, 9}}
	b, err := Marshal(f, DefaultLimits())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	h, _ := DecodeHeader(b)
	if h.Length != 20 {
		t.Fatalf("expected length 20, got %d", h.Length)
	}
}

func TestEmptyPayloadFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, New(51, nil), DefaultLimits()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Header.Length != HeaderLen || len(out.Payload) != 0 {
		t.Fatalf("unexpected frame: %+v", out)
	}
}

func TestReadFrameShortHeader(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{1, 2, 3}), DefaultLimits())
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF in chain, got %v", err)
	}
}

func TestReadFrameCleanEOF(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil), DefaultLimits())
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestDecodeHeaderShortInput(t *testing.T) {
	_, err := DecodeHeader(make([]byte, 15))
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestReadFrameLengthBelowHeader(t *testing.T) {
	buf := EncodeHeader(Header{Length: 10, Type: 1})
	// Trailing bytes must not be consumed as a negative-length payload.
	r := bytes.NewReader(append(buf, 0xaa, 0xbb))
	_, err := ReadFrame(r, DefaultLimits())
	if !errors.Is(err, ErrLengthTooSmall) {
		t.Fatalf("expected ErrLengthTooSmall, got %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("payload bytes were consumed: remaining=%d", r.Len())
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	buf := EncodeHeader(Header{Length: HeaderLen + 8, Type: 2})
	buf = append(buf, 1, 2, 3)
	_, err := ReadFrame(bytes.NewReader(buf), DefaultLimits())
	if !errors.Is(err, ErrShortPayload) {
		t.Fatalf("expected ErrShortPayload, got %v", err)
	}
}

func TestReadFramePayloadLimit(t *testing.T) {
	buf := EncodeHeader(Header{Length: HeaderLen + 1024, Type: 28})
	_, err := ReadFrame(bytes.NewReader(buf), Limits{MaxPayloadBytes: 512})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestReadFrameNumFDsRange(t *testing.T) {
	for _, n := range []int32{-1, MaxFDs + 1} {
		buf := EncodeHeader(Header{Length: HeaderLen, Type: 8, NumFDs: n})
		_, err := ReadFrame(bytes.NewReader(buf), DefaultLimits())
		if !errors.Is(err, ErrTooManyFDs) {
			t.Fatalf("num_fds=%d: expected ErrTooManyFDs, got %v", n, err)
		}
	}
}

type chunkWriter struct {
	buf   bytes.Buffer
	chunk int
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	if len(p) > w.chunk {
		p = p[:w.chunk]
	}
	return w.buf.Write(p)
}

func TestWriteFullRetriesShortWrites(t *testing.T) {
	w := &chunkWriter{chunk: 3}
	payload := bytes.Repeat([]byte{7}, 50)
	if err := WriteFrame(w, New(42, payload), DefaultLimits()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if w.buf.Len() != HeaderLen+len(payload) {
		t.Fatalf("short frame flushed: %d", w.buf.Len())
	}
}
