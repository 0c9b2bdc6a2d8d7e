package session

import (
	"errors"
	"fmt"

	"github.com/5hells/icm/internal/protocol/frame"
)

var (
	ErrFDPassingUnsupported = errors.New("session: handle passing requires a unix socket")
	ErrFDCountMismatch      = errors.New("session: received handle count differs from num_fds")
	ErrControlTruncated     = errors.New("session: ancillary data truncated")
)

// FDSender and FDReceiver are the handle passing capability. *Session
// satisfies both, but the calls fail with ErrFDPassingUnsupported unless
// the stream is a *net.UnixConn; check CanPassFDs first.
type FDSender interface {
	SendWithFDs(msgType uint16, payload []byte, fds []int) error
}

type FDReceiver interface {
	ReceiveWithFDs() (frame.Frame, []int, error)
}

var (
	_ FDSender   = (*Session)(nil)
	_ FDReceiver = (*Session)(nil)
)

// PeerCredentials identifies the process on the other end of a unix socket.
type PeerCredentials struct {
	PID int32
	UID uint32
	GID uint32
}

// SendWithFDs sends one frame with num_fds set and the handles attached as
// SCM_RIGHTS ancillary data to its first byte. The handles stay owned by
// the caller.
func (s *Session) SendWithFDs(msgType uint16, payload []byte, fds []int) error {
	if s.State() == StateClosed {
		return ErrSessionClosed
	}
	if len(fds) > frame.MaxFDs {
		return fmt.Errorf("%w: %d", frame.ErrTooManyFDs, len(fds))
	}
	if !canPassFDs(s.conn) {
		return ErrFDPassingUnsupported
	}
	f := frame.New(msgType, payload)
	f.Header.NumFDs = int32(len(fds))
	buf, err := frame.Marshal(f, s.cfg.Limits)
	if err != nil {
		return err
	}
	return s.writeBuf(buf, rightsFor(fds))
}

// ReceiveWithFDs reads one frame together with any handles that arrived
// with its bytes. The caller owns the returned handles.
func (s *Session) ReceiveWithFDs() (frame.Frame, []int, error) {
	if s.State() == StateClosed {
		return frame.Frame{}, nil, ErrSessionClosed
	}
	if !canPassFDs(s.conn) {
		return frame.Frame{}, nil, ErrFDPassingUnsupported
	}
	if err := s.armRead(); err != nil {
		return frame.Frame{}, nil, err
	}
	var hdr [frame.HeaderLen]byte
	fds, err := readWithRights(s.conn, hdr[:])
	if err != nil {
		return frame.Frame{}, nil, s.fail("read", err)
	}
	h, err := frame.DecodeHeader(hdr[:])
	if err != nil {
		closeFDs(fds)
		return frame.Frame{}, nil, s.fail("read", err)
	}
	f, err := frame.ReadPayload(s.conn, h, s.cfg.Limits)
	if err != nil {
		closeFDs(fds)
		return frame.Frame{}, nil, s.fail("read", err)
	}
	if len(fds) != int(h.NumFDs) {
		closeFDs(fds)
		return frame.Frame{}, nil, s.fail("read", fmt.Errorf("%w: header=%d got=%d", ErrFDCountMismatch, h.NumFDs, len(fds)))
	}
	return f, fds, nil
}

// PeerCredentials returns the credentials of the connected peer process.
func (s *Session) PeerCredentials() (PeerCredentials, error) {
	return peerCredentials(s.conn)
}

// CanPassFDs reports whether SendWithFDs and ReceiveWithFDs work on this
// session's stream.
func (s *Session) CanPassFDs() bool {
	return canPassFDs(s.conn)
}

// CloseFDs closes handles returned by ReceiveWithFDs.
func CloseFDs(fds []int) {
	closeFDs(fds)
}
