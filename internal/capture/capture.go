// Package capture records protocol frames to an append-only CBOR sequence
// and reads them back for replay.
//
// A capture file is one preamble item followed by one item per frame. The
// payload is stored exactly as it crossed the wire, undecoded.
package capture

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/5hells/icm/internal/protocol"
	"github.com/5hells/icm/internal/protocol/frame"
)

const formatName = "icm-capture"

var (
	ErrNotCapture         = errors.New("capture: not a capture stream")
	ErrUnsupportedVersion = errors.New("capture: unsupported protocol version")
)

type Direction uint8

const (
	Received Direction = iota + 1
	Sent
)

func (d Direction) String() string {
	switch d {
	case Received:
		return "recv"
	case Sent:
		return "send"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

type preamble struct {
	Format  string `cbor:"1,keyasint"`
	Version int    `cbor:"2,keyasint"`
}

// Record is one captured frame.
type Record struct {
	UnixNano  int64     `cbor:"1,keyasint"`
	Direction Direction `cbor:"2,keyasint"`
	Type      uint16    `cbor:"3,keyasint"`
	Flags     uint16    `cbor:"4,keyasint,omitempty"`
	Sequence  uint32    `cbor:"5,keyasint,omitempty"`
	NumFDs    int32     `cbor:"6,keyasint,omitempty"`
	Payload   []byte    `cbor:"7,keyasint"`
}

func (r Record) Time() time.Time {
	return time.Unix(0, r.UnixNano)
}

// Frame rebuilds the captured frame; Length is recomputed from the payload.
func (r Record) Frame() frame.Frame {
	f := frame.New(r.Type, r.Payload)
	f.Header.Flags = r.Flags
	f.Header.Sequence = r.Sequence
	f.Header.NumFDs = r.NumFDs
	return f
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("capture: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("capture: CBOR decoder initialization failed: " + err.Error())
	}
}

// Writer appends records. It is safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	enc *cbor.Encoder
	now func() time.Time
}

func NewWriter(w io.Writer) (*Writer, error) {
	enc := encMode.NewEncoder(w)
	if err := enc.Encode(preamble{Format: formatName, Version: protocol.Version}); err != nil {
		return nil, fmt.Errorf("capture: write preamble: %w", err)
	}
	return &Writer{enc: enc, now: time.Now}, nil
}

func (w *Writer) Record(dir Direction, f frame.Frame) error {
	rec := Record{
		Direction: dir,
		Type:      f.Header.Type,
		Flags:     f.Header.Flags,
		Sequence:  f.Header.Sequence,
		NumFDs:    f.Header.NumFDs,
		Payload:   f.Payload,
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	rec.UnixNano = w.now().UnixNano()
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("capture: write record: %w", err)
	}
	return nil
}

type Reader struct {
	dec *cbor.Decoder
}

// NewReader validates the preamble and positions r at the first record.
func NewReader(r io.Reader) (*Reader, error) {
	dec := decMode.NewDecoder(r)
	var p preamble
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotCapture, err)
	}
	if p.Format != formatName {
		return nil, fmt.Errorf("%w: format %q", ErrNotCapture, p.Format)
	}
	if p.Version != protocol.Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p.Version)
	}
	return &Reader{dec: dec}, nil
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("capture: read record: %w", err)
	}
	return rec, nil
}
