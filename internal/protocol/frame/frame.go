package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	HeaderLen = 16

	// MaxFDs is the largest num_fds value a frame may declare.
	MaxFDs = 4
)

var (
	ErrShortHeader     = errors.New("frame: short header")
	ErrLengthTooSmall  = errors.New("frame: length smaller than header")
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrTooManyFDs      = errors.New("frame: num_fds out of range")
	ErrShortPayload    = errors.New("frame: short payload")
)

// Header is the fixed 16-byte envelope that precedes every message.
type Header struct {
	Length   uint32
	Type     uint16
	Flags    uint16
	Sequence uint32
	NumFDs   int32
}

// PayloadLen returns Length minus the header size. Callers must have
// checked Length >= HeaderLen.
func (h Header) PayloadLen() int {
	return int(h.Length) - HeaderLen
}

// Frame is one complete wire message, payload still undecoded.
type Frame struct {
	Header  Header
	Payload []byte
}

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxPayloadBytes uint32
}

func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes: 64 * 1024 * 1024,
	}
}

// New builds a frame for msgType with reserved fields zeroed.
func New(msgType uint16, payload []byte) Frame {
	return Frame{
		Header: Header{
			Length: uint32(HeaderLen + len(payload)),
			Type:   msgType,
		},
		Payload: payload,
	}
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen)
	PutHeader(buf, h)
	return buf
}

// PutHeader writes h into the first 16 bytes of buf.
func PutHeader(buf []byte, h Header) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Length)
	binary.LittleEndian.PutUint16(buf[4:6], h.Type)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags)
	binary.LittleEndian.PutUint32(buf[8:12], h.Sequence)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.NumFDs))
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, fmt.Errorf("%w: have %d bytes: %w", ErrShortHeader, len(b), io.ErrUnexpectedEOF)
	}
	return Header{
		Length:   binary.LittleEndian.Uint32(b[0:4]),
		Type:     binary.LittleEndian.Uint16(b[4:6]),
		Flags:    binary.LittleEndian.Uint16(b[6:8]),
		Sequence: binary.LittleEndian.Uint32(b[8:12]),
		NumFDs:   int32(binary.LittleEndian.Uint32(b[12:16])),
	}, nil
}

// Validate checks the header fields the transport is responsible for.
func (h Header) Validate(limits Limits) error {
	if h.Length < HeaderLen {
		return fmt.Errorf("%w: length=%d", ErrLengthTooSmall, h.Length)
	}
	if limits.MaxPayloadBytes > 0 && uint32(h.PayloadLen()) > limits.MaxPayloadBytes {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, h.PayloadLen(), limits.MaxPayloadBytes)
	}
	if h.NumFDs < 0 || h.NumFDs > MaxFDs {
		return fmt.Errorf("%w: %d", ErrTooManyFDs, h.NumFDs)
	}
	return nil
}

// ReadFrame reads exactly one header and then exactly the payload it
// declares. The returned error wraps io.EOF only when the stream ended
// cleanly before the first header byte.
func ReadFrame(r io.Reader, limits Limits) (Frame, error) {
	var fixed [HeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, fmt.Errorf("%w: %w", ErrShortHeader, err)
		}
		return Frame{}, err
	}
	h, err := DecodeHeader(fixed[:])
	if err != nil {
		return Frame{}, err
	}
	return readPayload(r, h, limits)
}

// ReadPayload completes a frame whose header was obtained separately.
func ReadPayload(r io.Reader, h Header, limits Limits) (Frame, error) {
	return readPayload(r, h, limits)
}

func readPayload(r io.Reader, h Header, limits Limits) (Frame, error) {
	if err := h.Validate(limits); err != nil {
		return Frame{}, err
	}
	payload := make([]byte, h.PayloadLen())
	if len(payload) > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Frame{}, fmt.Errorf("%w: want %d bytes: %w", ErrShortPayload, len(payload), io.ErrUnexpectedEOF)
			}
			return Frame{}, err
		}
	}
	return Frame{Header: h, Payload: payload}, nil
}

// Marshal returns header and payload as one contiguous buffer. Length is
// always recomputed from the payload.
func Marshal(f Frame, limits Limits) ([]byte, error) {
	if limits.MaxPayloadBytes > 0 && uint64(len(f.Payload)) > uint64(limits.MaxPayloadBytes) {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(f.Payload), limits.MaxPayloadBytes)
	}
	if f.Header.NumFDs < 0 || f.Header.NumFDs > MaxFDs {
		return nil, fmt.Errorf("%w: %d", ErrTooManyFDs, f.Header.NumFDs)
	}
	h := f.Header
	h.Length = uint32(HeaderLen + len(f.Payload))
	buf := make([]byte, HeaderLen+len(f.Payload))
	PutHeader(buf, h)
	copy(buf[HeaderLen:], f.Payload)
	return buf, nil
}

// WriteFrame writes the frame as a single buffer, retrying short writes
// until everything is flushed or w fails.
func WriteFrame(w io.Writer, f Frame, limits Limits) error {
	buf, err := Marshal(f, limits)
	if err != nil {
		return err
	}
	return WriteFull(w, buf)
}

// WriteFull loops over short writes. io.Writer implementations must return
// an error on short writes, but sockets in non-blocking mode have been seen
// to report n < len(b) with a nil error.
func WriteFull(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}
