package session

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/5hells/icm/internal/protocol"
	"github.com/5hells/icm/internal/protocol/frame"
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/testutil/testlog"
)

func pipePair(t *testing.T) (*Session, *Session) {
	t.Helper()
	a, b := net.Pipe()
	cfg := DefaultConfig()
	cfg.WriteTimeout = 2 * time.Second
	sa, sb := New(a, cfg), New(b, cfg)
	t.Cleanup(func() {
		_ = sa.Close()
		_ = sb.Close()
	})
	return sa, sb
}

func TestNextBackoffDelayDeterministicNoJitter(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Jitter:       false,
	}
	if got := NextBackoffDelay(cfg, 1, nil); got != 250*time.Millisecond {
		t.Fatalf("attempt1 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 2, nil); got != 500*time.Millisecond {
		t.Fatalf("attempt2 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 3, nil); got != time.Second {
		t.Fatalf("attempt3 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 6, nil); got != 5*time.Second {
		t.Fatalf("attempt6 got=%v", got)
	}
}

func TestSendReceiveRoundTrip(t *testing.T) {
	testlog.Start(t)
	client, server := pipePair(t)

	errc := make(chan error, 1)
	go func() {
		errc <- client.SendMessage(&protocol.DrawText{WindowID: 7, X: 1, Y: 2, FontSize: 12, Text: "hello"})
	}()
	f, err := server.Receive()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("send: %v", err)
	}
	if f.Header.Type != uint16(schema.DrawText) || f.Header.Flags != 0 || f.Header.Sequence != 0 || f.Header.NumFDs != 0 {
		t.Fatalf("unexpected header: %+v", f.Header)
	}
	if int(f.Header.Length) != frame.HeaderLen+len(f.Payload) {
		t.Fatalf("length invariant violated: %+v", f.Header)
	}
	msg, err := protocol.DecodeFrame(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dt := msg.(*protocol.DrawText); dt.Text != "hello" || dt.WindowID != 7 {
		t.Fatalf("unexpected message: %+v", dt)
	}
}

func TestEmptyPayloadFrame(t *testing.T) {
	testlog.Start(t)
	client, server := pipePair(t)
	go func() { _ = client.SendMessage(&protocol.QueryMonitors{}) }()
	msg, err := server.ReceiveMessage()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if msg.Type() != schema.QueryMonitors {
		t.Fatalf("unexpected type %s", msg.Type())
	}
}

func TestFramingViolationClosesSession(t *testing.T) {
	testlog.Start(t)
	a, b := net.Pipe()
	server := New(b, DefaultConfig())
	defer a.Close()

	go func() {
		_, _ = a.Write(frame.EncodeHeader(frame.Header{Length: 10, Type: 1}))
	}()
	_, err := server.Receive()
	if !errors.Is(err, frame.ErrLengthTooSmall) {
		t.Fatalf("expected ErrLengthTooSmall, got %v", err)
	}
	if IsTransportFault(err) {
		t.Fatalf("framing violation classified as transport fault: %v", err)
	}
	if server.State() != StateClosed {
		t.Fatalf("session still %s", server.State())
	}
	if _, err := server.Receive(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if err := server.Send(1, nil); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed on send, got %v", err)
	}
}

func TestUnknownTypeClosesOnReceiveMessage(t *testing.T) {
	testlog.Start(t)
	client, server := pipePair(t)
	go func() { _ = client.Send(500, []byte{1, 2}) }()
	_, err := server.ReceiveMessage()
	if !errors.Is(err, protocol.ErrUnknownMessageType) {
		t.Fatalf("expected ErrUnknownMessageType, got %v", err)
	}
	if server.State() != StateClosed {
		t.Fatalf("session should close after a payload violation")
	}
}

func TestPeerCloseIsExpected(t *testing.T) {
	testlog.Start(t)
	client, server := pipePair(t)
	_ = client.Close()
	_, err := server.Receive()
	if !IsExpectedClose(err) || !IsTransportFault(err) {
		t.Fatalf("peer close misclassified: %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	testlog.Start(t)
	client, _ := pipePair(t)
	_ = client.Close()
	_ = client.Close()
	if err := client.SendMessage(&protocol.QueryMonitors{}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestSendPayloadLimitKeepsSessionOpen(t *testing.T) {
	testlog.Start(t)
	a, b := net.Pipe()
	defer b.Close()
	cfg := DefaultConfig()
	cfg.Limits.MaxPayloadBytes = 8
	s := New(a, cfg)
	defer s.Close()
	err := s.SendMessage(&protocol.UploadImage{Data: make([]byte, 64)})
	if !errors.Is(err, frame.ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if s.State() != StateConnected {
		t.Fatalf("local encode failure must not close the session")
	}
}

func TestReadTimeout(t *testing.T) {
	testlog.Start(t)
	a, b := net.Pipe()
	defer a.Close()
	cfg := DefaultConfig()
	cfg.ReadTimeout = 20 * time.Millisecond
	s := New(b, cfg)
	_, err := s.Receive()
	if !IsTransportFault(err) {
		t.Fatalf("expected deadline transport fault, got %v", err)
	}
}

func TestFDPassingRequiresUnixSocket(t *testing.T) {
	testlog.Start(t)
	client, _ := pipePair(t)
	if err := client.SendWithFDs(8, nil, []int{0}); !errors.Is(err, ErrFDPassingUnsupported) {
		t.Fatalf("expected ErrFDPassingUnsupported, got %v", err)
	}
	if err := client.SendWithFDs(8, nil, make([]int, 5)); !errors.Is(err, frame.ErrTooManyFDs) {
		t.Fatalf("expected ErrTooManyFDs, got %v", err)
	}
}

func unixPair(t *testing.T) (*Session, *Session) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "icm.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			accepted <- nil
			return
		}
		accepted <- c
	}()
	client, err := Dial(context.Background(), "unix", path, DefaultConfig())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn := <-accepted
	if conn == nil {
		t.Fatalf("accept failed")
	}
	server := New(conn, DefaultConfig())
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return client, server
}

func TestDialMissingSocket(t *testing.T) {
	testlog.Start(t)
	_, err := Dial(context.Background(), "unix", filepath.Join(t.TempDir(), "absent.sock"), DefaultConfig())
	if err == nil {
		t.Fatalf("expected dial error")
	}
}

func TestWaitBackoffHonorsContext(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := BackoffConfig{InitialDelay: time.Hour}
	if err := WaitBackoff(ctx, cfg, 1, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
