//go:build linux

package session

import (
	"bytes"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/5hells/icm/internal/protocol"
	"github.com/5hells/icm/internal/protocol/frame"
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/testutil/testlog"
)

func TestSendReceiveWithFDs(t *testing.T) {
	testlog.Start(t)
	client, server := unixPair(t)

	path := filepath.Join(t.TempDir(), "plane0")
	if err := os.WriteFile(path, []byte("dmabuf"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	msg := &protocol.ImportDmabuf{BufferID: 9, Width: 64, Height: 64, NumPlanes: 1}
	msg.Planes[0].FD = int32(file.Fd())
	payload, err := protocol.Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	errc := make(chan error, 1)
	go func() { errc <- client.SendWithFDs(uint16(schema.ImportDmabuf), payload, []int{int(file.Fd())}) }()

	f, fds, err := server.ReceiveWithFDs()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("send: %v", err)
	}
	if f.Header.NumFDs != 1 || len(fds) != 1 {
		t.Fatalf("expected one handle, header=%d got=%d", f.Header.NumFDs, len(fds))
	}
	got := os.NewFile(uintptr(fds[0]), "received")
	defer got.Close()
	buf := make([]byte, 6)
	if _, err := got.ReadAt(buf, 0); err != nil {
		t.Fatalf("read received handle: %v", err)
	}
	if !bytes.Equal(buf, []byte("dmabuf")) {
		t.Fatalf("received handle points elsewhere: %q", buf)
	}
	if _, err := protocol.DecodeFrame(f); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestReceiveWithFDsPlainFrame(t *testing.T) {
	testlog.Start(t)
	client, server := unixPair(t)
	go func() { _ = client.SendMessage(&protocol.QueryScreenDimensions{}) }()
	f, fds, err := server.ReceiveWithFDs()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(fds) != 0 || f.Header.Type != uint16(schema.QueryScreenDimensions) {
		t.Fatalf("unexpected frame %+v fds=%v", f.Header, fds)
	}
}

func TestPeerCredentials(t *testing.T) {
	testlog.Start(t)
	_, server := unixPair(t)
	cred, err := server.PeerCredentials()
	if err != nil {
		t.Fatalf("peer credentials: %v", err)
	}
	if int(cred.PID) != os.Getpid() || int(cred.UID) != os.Getuid() {
		t.Fatalf("unexpected credentials: %+v", cred)
	}
}

func TestReceiveWithFDsRejectsTruncatedRights(t *testing.T) {
	testlog.Start(t)
	client, server := unixPair(t)

	file, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	fd := int(file.Fd())
	fds := []int{fd, fd, fd, fd, fd, fd, fd, fd}

	// Eight handles do not fit the space reserved for four.
	hdr := frame.EncodeHeader(frame.Header{
		Length: frame.HeaderLen,
		Type:   uint16(schema.QueryScreenDimensions),
		NumFDs: frame.MaxFDs,
	})
	uc := client.conn.(*net.UnixConn)
	if _, _, err := uc.WriteMsgUnix(hdr, unix.UnixRights(fds...), nil); err != nil {
		t.Fatalf("raw send: %v", err)
	}

	_, got, err := server.ReceiveWithFDs()
	if !errors.Is(err, ErrControlTruncated) {
		t.Fatalf("expected ErrControlTruncated, got %v (fds=%v)", err, got)
	}
	if server.State() != StateClosed {
		t.Fatalf("truncated ancillary data must close the session")
	}
}
