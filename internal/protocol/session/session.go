package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/5hells/icm/internal/observability"
	"github.com/5hells/icm/internal/protocol"
	"github.com/5hells/icm/internal/protocol/frame"
	"github.com/5hells/icm/internal/protocol/schema"
)

type State int32

const (
	StateConnected State = iota + 1
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var ErrSessionClosed = errors.New("session: closed")

// Session frames messages over one stream connection.
type Session struct {
	conn      net.Conn
	cfg       Config
	state     atomic.Int32
	closeOnce sync.Once
	closeErr  error
	log       zerolog.Logger
}

// Dial connects to address. On failure no session exists.
func Dial(ctx context.Context, network, address string, cfg Config) (*Session, error) {
	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("session: dial %s %s: %w", network, address, err)
	}
	return New(conn, cfg), nil
}

// New wraps an already connected stream.
func New(conn net.Conn, cfg Config) *Session {
	s := &Session{
		conn: conn,
		cfg:  cfg,
		log: log.With().
			Str("component", "session").
			Str("peer", peerName(conn)).
			Logger(),
	}
	s.state.Store(int32(StateConnected))
	return s
}

func peerName(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil && addr.String() != "" {
		return addr.String()
	}
	if addr := conn.LocalAddr(); addr != nil {
		return addr.String()
	}
	return "pipe"
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) Config() Config {
	return s.cfg
}

// Send writes one frame with flags, sequence and num_fds zeroed.
func (s *Session) Send(msgType uint16, payload []byte) error {
	if s.State() == StateClosed {
		return ErrSessionClosed
	}
	buf, err := frame.Marshal(frame.New(msgType, payload), s.cfg.Limits)
	if err != nil {
		return err
	}
	if err := s.writeBuf(buf, nil); err != nil {
		return err
	}
	observability.RecordFrame(observability.DirectionOut, schema.MessageType(msgType).String(), uint32(len(buf)))
	return nil
}

// SendMessage encodes msg through the registry and sends it.
func (s *Session) SendMessage(msg protocol.Message) error {
	payload, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return s.Send(uint16(msg.Type()), payload)
}

// Receive reads exactly one frame. The payload is returned undecoded.
func (s *Session) Receive() (frame.Frame, error) {
	if s.State() == StateClosed {
		return frame.Frame{}, ErrSessionClosed
	}
	if err := s.armRead(); err != nil {
		return frame.Frame{}, err
	}
	f, err := frame.ReadFrame(s.conn, s.cfg.Limits)
	if err != nil {
		return frame.Frame{}, s.fail("read", err)
	}
	observability.RecordFrame(observability.DirectionIn, schema.MessageType(f.Header.Type).String(), f.Header.Length)
	return f, nil
}

// ReceiveMessage reads and decodes one frame. A frame that cannot be
// decoded leaves the stream position valid but the peer misbehaving, so
// the session is closed.
func (s *Session) ReceiveMessage() (protocol.Message, error) {
	f, err := s.Receive()
	if err != nil {
		return nil, err
	}
	msg, err := protocol.DecodeFrame(f)
	if err != nil {
		return nil, s.fail("decode", err)
	}
	return msg, nil
}

// Close closes the connection. Later Send/Receive calls return
// ErrSessionClosed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		s.closeErr = s.conn.Close()
		s.log.Debug().Msg("session closed")
	})
	return s.closeErr
}

func (s *Session) armRead() error {
	if s.cfg.ReadTimeout <= 0 {
		return nil
	}
	if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
		return s.fail("read deadline", err)
	}
	return nil
}

func (s *Session) armWrite() error {
	if s.cfg.WriteTimeout <= 0 {
		return nil
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return s.fail("write deadline", err)
	}
	return nil
}

// writeBuf writes buf in full. oob, when set, is attached to the first
// write only.
func (s *Session) writeBuf(buf, oob []byte) error {
	if err := s.armWrite(); err != nil {
		return err
	}
	if len(oob) > 0 {
		n, err := writeWithRights(s.conn, buf, oob)
		if err != nil {
			return s.fail("write", err)
		}
		buf = buf[n:]
	}
	if err := frame.WriteFull(s.conn, buf); err != nil {
		return s.fail("write", err)
	}
	return nil
}

// fail closes the session and returns err annotated with op.
func (s *Session) fail(op string, err error) error {
	if s.State() != StateClosed {
		ev := s.log.Warn()
		if IsExpectedClose(err) {
			ev = s.log.Debug()
		}
		ev.Err(err).Str("op", op).Msg("session failed")
		observability.RecordFrameError(op)
	}
	_ = s.Close()
	return fmt.Errorf("session: %s: %w", op, err)
}

// IsTransportFault reports whether err came from the underlying stream
// rather than from the bytes it carried.
func IsTransportFault(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrShortWrite),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, os.ErrDeadlineExceeded):
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var errno syscall.Errno
	return errors.As(err, &errno)
}

// IsExpectedClose reports whether err is a normal connection termination:
// EOF, closed connection, broken pipe, or connection reset.
func IsExpectedClose(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}
