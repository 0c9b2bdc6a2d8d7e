package compositor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/5hells/icm/internal/observability"
	"github.com/5hells/icm/internal/protocol"
	"github.com/5hells/icm/internal/protocol/frame"
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/protocol/session"
)

var (
	ErrSocketInUse  = errors.New("compositor: socket already served by a live process")
	ErrNotSocket    = errors.New("compositor: path exists and is not a socket")
	ErrServerClosed = errors.New("compositor: server closed")
)

// Handler reacts to decoded client messages. Handle owns fds and must
// close the ones it keeps no use for.
type Handler interface {
	Connected(c *Conn)
	Handle(ctx context.Context, c *Conn, msg protocol.Message, fds []int) error
	Disconnected(c *Conn)
}

type ServerConfig struct {
	Session session.Config
	// FrameRate limits inbound frames per second per connection; zero or
	// less disables the limit.
	FrameRate  float64
	FrameBurst int
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Session:    session.DefaultConfig(),
		FrameRate:  2000,
		FrameBurst: 256,
	}
}

// Conn is one connected client.
type Conn struct {
	id      uint64
	sess    *session.Session
	sendMu  sync.Mutex
	peer    session.PeerCredentials
	hasPeer bool
	log     zerolog.Logger
}

func (c *Conn) ID() uint64 {
	return c.id
}

// Peer returns the client process credentials when the transport exposes
// them.
func (c *Conn) Peer() (session.PeerCredentials, bool) {
	return c.peer, c.hasPeer
}

// Send pushes one message to the client. Safe for concurrent use.
func (c *Conn) Send(msg protocol.Message) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.sess.SendMessage(msg)
}

func (c *Conn) Close() error {
	return c.sess.Close()
}

func (c *Conn) receive() (frame.Frame, []int, error) {
	if c.sess.CanPassFDs() {
		return c.sess.ReceiveWithFDs()
	}
	f, err := c.sess.Receive()
	return f, nil, err
}

type Server struct {
	cfg     ServerConfig
	handler Handler
	nextID  atomic.Uint64
	closed  atomic.Bool

	mu    sync.Mutex
	conns map[uint64]*Conn
	wg    sync.WaitGroup
	log   zerolog.Logger
}

func NewServer(cfg ServerConfig, h Handler) *Server {
	if cfg.Session.Limits.MaxPayloadBytes == 0 {
		cfg.Session.Limits = frame.DefaultLimits()
	}
	return &Server{
		cfg:     cfg,
		handler: h,
		conns:   make(map[uint64]*Conn),
		log:     log.With().Str("component", "compositor").Logger(),
	}
}

// Listen binds a unix socket at path, replacing a stale socket file left
// by a dead process.
func Listen(path string) (net.Listener, error) {
	if err := removeStaleSocket(path); err != nil {
		return nil, err
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("compositor: listen %s: %w", path, err)
	}
	if ul, ok := ln.(*net.UnixListener); ok {
		ul.SetUnlinkOnClose(true)
	}
	return ln, nil
}

func removeStaleSocket(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if fi.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("%w: %s", ErrNotSocket, path)
	}
	if conn, err := net.DialTimeout("unix", path, 200*time.Millisecond); err == nil {
		_ = conn.Close()
		return fmt.Errorf("%w: %s", ErrSocketInUse, path)
	}
	log.Debug().Str("path", path).Msg("removing stale socket")
	return os.Remove(path)
}

func (s *Server) ListenAndServe(ctx context.Context, path string) error {
	ln, err := Listen(path)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts clients until ctx ends, then broadcasts shutdown, closes
// every connection and waits for their loops to exit.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	defer ln.Close()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()

	for {
		raw, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.Shutdown()
				return nil
			}
			return err
		}
		c := s.track(raw)
		if c == nil {
			_ = raw.Close()
			continue
		}
		go s.serveConn(ctx, c)
	}
}

// Shutdown sends CompositorShutdown to every client, closes them and
// waits for their read loops.
func (s *Server) Shutdown() {
	s.mu.Lock()
	if !s.closed.CompareAndSwap(false, true) {
		s.mu.Unlock()
		s.wg.Wait()
		return
	}
	conns := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.Send(&protocol.CompositorShutdown{}); err != nil {
			c.log.Debug().Err(err).Msg("shutdown notice not delivered")
		}
		_ = c.Close()
	}
	s.wg.Wait()
	s.log.Info().Int("clients", len(conns)).Msg("shut down")
}

// Broadcast sends msg to every connected client and returns the number
// of clients reached.
func (s *Server) Broadcast(msg protocol.Message) int {
	s.mu.Lock()
	conns := make([]*Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	var n int
	for _, c := range conns {
		if err := c.Send(msg); err == nil {
			n++
		}
	}
	return n
}

func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// track registers raw and counts it in wg. It returns nil once Shutdown
// has begun; the caller then owns raw.
func (s *Server) track(raw net.Conn) *Conn {
	id := s.nextID.Add(1)
	sess := session.New(raw, s.cfg.Session)
	c := &Conn{
		id:   id,
		sess: sess,
		log:  s.log.With().Uint64("conn", id).Logger(),
	}
	if creds, err := sess.PeerCredentials(); err == nil {
		c.peer, c.hasPeer = creds, true
		c.log = c.log.With().Int32("pid", creds.PID).Logger()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return nil
	}
	s.conns[id] = c
	s.wg.Add(1)
	return c
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c.id)
	s.mu.Unlock()
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer s.wg.Done()
	defer s.untrack(c)
	defer c.Close()

	observability.ConnectionOpened()
	defer observability.ConnectionClosed()
	c.log.Info().Msg("client connected")
	s.handler.Connected(c)
	defer func() {
		s.handler.Disconnected(c)
		c.log.Info().Msg("client disconnected")
	}()

	var limiter *rate.Limiter
	if s.cfg.FrameRate > 0 {
		burst := s.cfg.FrameBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(s.cfg.FrameRate), burst)
	}

	for {
		f, fds, err := c.receive()
		if err != nil {
			if session.IsExpectedClose(err) || errors.Is(err, session.ErrSessionClosed) || s.closed.Load() {
				c.log.Debug().Err(err).Msg("read loop ended")
			} else {
				c.log.Warn().Err(err).Msg("read failed")
			}
			return
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				session.CloseFDs(fds)
				return
			}
		}
		if err := schema.Validate(f.Header.Type, schema.ToCompositor); err != nil {
			observability.RecordFrameError("invalid_type")
			c.log.Warn().Err(err).Uint16("msg_type", f.Header.Type).Msg("closing client")
			session.CloseFDs(fds)
			return
		}
		msg, err := protocol.DecodeFrame(f)
		if err != nil {
			observability.RecordFrameError("decode")
			c.log.Warn().Err(err).Str("msg_type", schema.MessageType(f.Header.Type).String()).Uint32("length", f.Header.Length).Msg("closing client")
			session.CloseFDs(fds)
			return
		}
		start := time.Now()
		err = s.handler.Handle(ctx, c, msg, fds)
		observability.RecordHandle(msg.Type().String(), time.Since(start))
		if err != nil {
			c.log.Warn().Err(err).Str("msg_type", msg.Type().String()).Msg("handle failed")
		}
	}
}
