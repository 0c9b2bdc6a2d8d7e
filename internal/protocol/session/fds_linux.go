//go:build linux

package session

import (
	"errors"
	"fmt"
	"io"
	"net"

	"golang.org/x/sys/unix"

	"github.com/5hells/icm/internal/protocol/frame"
)

func canPassFDs(conn net.Conn) bool {
	_, ok := conn.(*net.UnixConn)
	return ok
}

func rightsFor(fds []int) []byte {
	if len(fds) == 0 {
		return nil
	}
	return unix.UnixRights(fds...)
}

func writeWithRights(conn net.Conn, buf, oob []byte) (int, error) {
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		return 0, ErrFDPassingUnsupported
	}
	n, oobn, err := uc.WriteMsgUnix(buf, oob, nil)
	if err != nil {
		return n, err
	}
	if oobn != len(oob) {
		return n, fmt.Errorf("session: ancillary data short write: %d of %d", oobn, len(oob))
	}
	return n, nil
}

// readWithRights fills buf exactly. Ancillary data is only collected from
// the first read, which is where the sender attached it.
func readWithRights(conn net.Conn, buf []byte) ([]int, error) {
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		return nil, ErrFDPassingUnsupported
	}
	oob := make([]byte, unix.CmsgSpace(frame.MaxFDs*4))
	n, oobn, flags, _, err := uc.ReadMsgUnix(buf, oob)
	if err != nil {
		return nil, err
	}
	fds, perr := parseRights(oob[:oobn])
	if flags&unix.MSG_CTRUNC != 0 {
		closeFDs(fds)
		return nil, fmt.Errorf("%w: more than %d handles sent", ErrControlTruncated, frame.MaxFDs)
	}
	if n == 0 {
		closeFDs(fds)
		return nil, io.EOF
	}
	if n < len(buf) {
		if _, err := io.ReadFull(conn, buf[n:]); err != nil {
			closeFDs(fds)
			return nil, fmt.Errorf("%w: %w", frame.ErrShortHeader, io.ErrUnexpectedEOF)
		}
	}
	if perr != nil {
		closeFDs(fds)
		return nil, perr
	}
	return fds, nil
}

func parseRights(oob []byte) ([]int, error) {
	if len(oob) == 0 {
		return nil, nil
	}
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, fmt.Errorf("session: parse control message: %w", err)
	}
	var fds []int
	var errs []error
	for i := range msgs {
		got, err := unix.ParseUnixRights(&msgs[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fds = append(fds, got...)
	}
	return fds, errors.Join(errs...)
}

func closeFDs(fds []int) {
	for _, fd := range fds {
		_ = unix.Close(fd)
	}
}

func peerCredentials(conn net.Conn) (PeerCredentials, error) {
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		return PeerCredentials{}, ErrFDPassingUnsupported
	}
	raw, err := uc.SyscallConn()
	if err != nil {
		return PeerCredentials{}, err
	}
	var cred *unix.Ucred
	var serr error
	if err := raw.Control(func(fd uintptr) {
		cred, serr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return PeerCredentials{}, err
	}
	if serr != nil {
		return PeerCredentials{}, fmt.Errorf("session: SO_PEERCRED: %w", serr)
	}
	return PeerCredentials{PID: cred.Pid, UID: cred.Uid, GID: cred.Gid}, nil
}
