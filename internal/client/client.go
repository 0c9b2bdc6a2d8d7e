package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/5hells/icm/internal/capture"
	"github.com/5hells/icm/internal/protocol"
	"github.com/5hells/icm/internal/protocol/frame"
	"github.com/5hells/icm/internal/protocol/schema"
	"github.com/5hells/icm/internal/protocol/session"
)

var (
	ErrCompositorShutdown = errors.New("client: compositor shut down")
	ErrNotResponse        = errors.New("client: message type is not compositor-to-client")
	ErrAddressRequired    = errors.New("client: address required")
)

// EventHandler receives compositor messages that are not the answer to a
// pending query. It runs on the receiving goroutine.
type EventHandler func(protocol.Message)

// Recorder observes every frame that crosses the connection.
type Recorder interface {
	Record(dir capture.Direction, f frame.Frame) error
}

type Options struct {
	Network string
	Session session.Config
	// MaxConnectAttempts bounds dialing; zero or less retries until ctx ends.
	MaxConnectAttempts int
	OnEvent            EventHandler
	Recorder           Recorder
}

func DefaultOptions() Options {
	return Options{
		Network:            "unix",
		Session:            session.DefaultConfig(),
		MaxConnectAttempts: 3,
	}
}

func (o Options) withDefaults() Options {
	if o.Network == "" {
		o.Network = "unix"
	}
	if o.Session.Limits.MaxPayloadBytes == 0 {
		o.Session.Limits = frame.DefaultLimits()
	}
	return o
}

type Client struct {
	sess   *session.Session
	opts   Options
	sendMu sync.Mutex
	recvMu sync.Mutex
	log    zerolog.Logger
}

// Connect dials address, retrying with exponential backoff.
func Connect(ctx context.Context, address string, opts Options) (*Client, error) {
	if address == "" {
		return nil, ErrAddressRequired
	}
	opts = opts.withDefaults()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var attempt int
	for {
		attempt++
		sess, err := session.Dial(ctx, opts.Network, address, opts.Session)
		if err == nil {
			c := newClient(sess, address, opts)
			c.log.Info().Int("attempt", attempt).Msg("connected")
			return c, nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("address", address).Msg("client dial failed")
		if opts.MaxConnectAttempts > 0 && attempt >= opts.MaxConnectAttempts {
			return nil, fmt.Errorf("client: connect %s after %d attempts: %w", address, attempt, err)
		}
		if err := session.WaitBackoff(ctx, opts.Session.Backoff, attempt, rng); err != nil {
			return nil, err
		}
	}
}

// New wraps an already connected stream.
func New(conn net.Conn, opts Options) *Client {
	opts = opts.withDefaults()
	return newClient(session.New(conn, opts.Session), remoteName(conn), opts)
}

func remoteName(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil && addr.String() != "" {
		return addr.String()
	}
	return "unknown"
}

func newClient(sess *session.Session, address string, opts Options) *Client {
	return &Client{
		sess: sess,
		opts: opts,
		log: log.With().
			Str("component", "client").
			Str("address", address).
			Logger(),
	}
}

func (c *Client) Close() error {
	return c.sess.Close()
}

func (c *Client) Closed() bool {
	return c.sess.State() == session.StateClosed
}

// Send encodes and writes one message. Safe for concurrent use.
func (c *Client) Send(msg protocol.Message) error {
	payload, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("client: encode %s: %w", msg.Type(), err)
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := c.sess.Send(uint16(msg.Type()), payload); err != nil {
		return err
	}
	c.record(capture.Sent, frame.New(uint16(msg.Type()), payload))
	return nil
}

// SendWithFDs writes msg with handles attached. The handles stay owned by
// the caller.
func (c *Client) SendWithFDs(msg protocol.Message, fds []int) error {
	payload, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("client: encode %s: %w", msg.Type(), err)
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := c.sess.SendWithFDs(uint16(msg.Type()), payload, fds); err != nil {
		return err
	}
	f := frame.New(uint16(msg.Type()), payload)
	f.Header.NumFDs = int32(len(fds))
	c.record(capture.Sent, f)
	return nil
}

// Query sends req and reads until a message of type want arrives. Other
// messages read meanwhile go to the event handler in arrival order.
// Cancelling ctx closes the connection, since a partially read frame
// cannot be resumed. Query waits while an Events loop owns the receive side.
func (c *Client) Query(ctx context.Context, req protocol.Message, want schema.MessageType) (protocol.Message, error) {
	if e, ok := schema.Lookup(want); !ok || e.Direction != schema.ToClient {
		return nil, fmt.Errorf("%w: %s", ErrNotResponse, want)
	}
	c.recvMu.Lock()
	defer c.recvMu.Unlock()
	if err := c.Send(req); err != nil {
		return nil, err
	}
	for {
		msg, err := c.receive(ctx)
		if err != nil {
			return nil, err
		}
		if msg.Type() == want {
			return msg, nil
		}
		if err := c.dispatch(msg, c.opts.OnEvent); err != nil {
			return nil, err
		}
	}
}

// Events delivers compositor messages to handler until ctx ends, the
// connection fails or the compositor shuts down. A nil handler falls back
// to Options.OnEvent.
func (c *Client) Events(ctx context.Context, handler EventHandler) error {
	if handler == nil {
		handler = c.opts.OnEvent
	}
	c.recvMu.Lock()
	defer c.recvMu.Unlock()
	for {
		msg, err := c.receive(ctx)
		if err != nil {
			return err
		}
		if err := c.dispatch(msg, handler); err != nil {
			return err
		}
	}
}

func (c *Client) dispatch(msg protocol.Message, handler EventHandler) error {
	if handler != nil {
		handler(msg)
	}
	if msg.Type() == schema.CompositorShutdown {
		c.log.Info().Msg("compositor shutdown received")
		_ = c.sess.Close()
		return ErrCompositorShutdown
	}
	return nil
}

func (c *Client) receive(ctx context.Context) (protocol.Message, error) {
	stop := context.AfterFunc(ctx, func() { _ = c.sess.Close() })
	f, err := c.sess.Receive()
	if !stop() {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	c.record(capture.Received, f)
	if err := schema.Validate(f.Header.Type, schema.ToClient); err != nil {
		_ = c.sess.Close()
		return nil, fmt.Errorf("client: %w", err)
	}
	msg, err := protocol.DecodeFrame(f)
	if err != nil {
		_ = c.sess.Close()
		return nil, fmt.Errorf("client: decode %s: %w", schema.MessageType(f.Header.Type), err)
	}
	return msg, nil
}

func (c *Client) record(dir capture.Direction, f frame.Frame) {
	if c.opts.Recorder == nil {
		return
	}
	if err := c.opts.Recorder.Record(dir, f); err != nil {
		c.log.Warn().Err(err).Msg("capture record failed")
	}
}

// query runs Query and narrows the answer to T.
func query[T protocol.Message](ctx context.Context, c *Client, req protocol.Message) (T, error) {
	var zero T
	msg, err := c.Query(ctx, req, zero.Type())
	if err != nil {
		return zero, err
	}
	out, ok := msg.(T)
	if !ok {
		return zero, fmt.Errorf("client: unexpected %T for %s", msg, zero.Type())
	}
	return out, nil
}
