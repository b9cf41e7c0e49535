package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/oklog/ulid/v2"

	"boarbot/internal/crypto"
	"boarbot/internal/domain"
	"boarbot/internal/protocol/wire"
)

const (
	maxFrameBytes     = 4 << 20
	maxPingFailures   = 3
	defaultKeepalive  = 30 * time.Second
	defaultTimeout    = 30 * time.Second
	defaultEventQueue = 256
)

// ErrClosed is returned by requests issued on, or interrupted by, a closed
// connection.
var ErrClosed = errors.New("gateway: connection closed")

// Options configures Dial. Zero values select defaults.
type Options struct {
	URL   string
	Codec wire.Codec
	// Keepalive is the ping interval. Negative disables pings.
	Keepalive time.Duration
	// RequestTimeout bounds each request round-trip.
	RequestTimeout time.Duration
	// EventQueue is the capacity of the Events channel. Events beyond it
	// wait in an unbounded in-memory queue; frames are never left unread.
	EventQueue int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is a live gateway session bound to one device.
type Client struct {
	conn      *websocket.Conn
	codec     wire.Codec
	timeout   time.Duration
	log       *slog.Logger
	sessionID string

	mu      sync.Mutex
	pending map[string]chan wire.Envelope
	closed  bool
	readErr error
	queue   []domain.Event

	events    chan domain.Event
	notify    chan struct{}
	drained   chan struct{}
	done      chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once
}

var _ domain.Connection = (*Client)(nil)

// Dial connects to the gateway and completes the hello handshake for device.
func Dial(ctx context.Context, opts Options, device domain.Device) (*Client, error) {
	if opts.Codec == nil {
		opts.Codec = wire.JSON
	}
	if opts.Keepalive == 0 {
		opts.Keepalive = defaultKeepalive
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultTimeout
	}
	if opts.EventQueue <= 0 {
		opts.EventQueue = defaultEventQueue
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	conn, resp, err := websocket.Dial(ctx, opts.URL, &websocket.DialOptions{
		Subprotocols: []string{opts.Codec.Subprotocol()},
		HTTPClient:   opts.HTTPClient,
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("gateway: dial %s: %w", opts.URL, err)
	}
	if sp := conn.Subprotocol(); sp != opts.Codec.Subprotocol() {
		_ = conn.Close(websocket.StatusProtocolError, "subprotocol required")
		return nil, fmt.Errorf("gateway: dial %s: server selected subprotocol %q, want %q", opts.URL, sp, opts.Codec.Subprotocol())
	}
	conn.SetReadLimit(maxFrameBytes)

	loopCtx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:    conn,
		codec:   opts.Codec,
		timeout: opts.RequestTimeout,
		log:     log.With("component", "gateway"),
		pending: make(map[string]chan wire.Envelope),
		events:  make(chan domain.Event, opts.EventQueue),
		notify:  make(chan struct{}, 1),
		drained: make(chan struct{}),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	go c.readLoop(loopCtx)
	go c.deliver(loopCtx)

	fp := crypto.DeviceFingerprint(device)
	var ack wire.HelloAckPayload
	err = c.call(ctx, wire.TypeHello, wire.HelloPayload{
		Device:    fp,
		PublicKey: device.PublicKey.Slice(),
		Brand:     device.Brand,
		Model:     device.Model,
		OSVersion: device.OSVersion,
	}, wire.TypeHelloAck, &ack)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("gateway: hello: %w", err)
	}
	c.sessionID = ack.SessionID
	c.log.Info("connected", "url", opts.URL, "codec", opts.Codec.Name(), "device", fp, "session_id", ack.SessionID)

	if opts.Keepalive > 0 {
		go c.keepalive(loopCtx, opts.Keepalive)
	}
	return c, nil
}

// SessionID returns the id assigned by the gateway during the handshake.
func (c *Client) SessionID() string { return c.sessionID }

// Events returns the pushed events in arrival order. The channel is closed
// once the connection has ended and every queued event was delivered.
func (c *Client) Events() <-chan domain.Event { return c.events }

// Done is closed when the connection has ended.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err returns nil while the connection is open. Afterwards it returns
// ErrClosed, wrapping the read error that ended the connection.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.closedErr()
	default:
		return nil
	}
}

// Close ends the session. It is safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if err := c.conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
			c.log.Debug("close handshake", "err", err)
		}
		c.cancel()
		<-c.done
		<-c.drained
	})
	return nil
}

// call sends one request and waits for its response. A TypeError response
// yields a *wire.RemoteError; any other type than want is a protocol error.
func (c *Client) call(ctx context.Context, typ string, payload any, want string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	id := ulid.Make().String()
	ch := make(chan wire.Envelope, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	data, err := wire.Encode(c.codec, typ, id, time.Now().UTC(), payload)
	if err != nil {
		return err
	}
	mt := websocket.MessageText
	if c.codec.Binary() {
		mt = websocket.MessageBinary
	}
	if err := c.conn.Write(ctx, mt, data); err != nil {
		return fmt.Errorf("%s: write: %w", typ, err)
	}

	var resp wire.Envelope
	select {
	case resp = <-ch:
	case <-c.done:
		return fmt.Errorf("%s: %w", typ, c.closedErr())
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", typ, ctx.Err())
	}

	switch resp.Type {
	case want:
	case wire.TypeError:
		var p wire.ErrorPayload
		if err := wire.DecodePayload(c.codec, resp, &p); err != nil {
			return err
		}
		return &wire.RemoteError{Code: p.Code, Message: p.Message}
	default:
		return fmt.Errorf("%s: unexpected response type %q", typ, resp.Type)
	}
	if out == nil {
		return nil
	}
	return wire.DecodePayload(c.codec, resp, out)
}

func (c *Client) closedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return fmt.Errorf("%w: %v", ErrClosed, c.readErr)
	}
	return ErrClosed
}

func (c *Client) readLoop(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.wake()
		close(c.done)
	}()

	for {
		mt, data, err := c.conn.Read(ctx)
		if err != nil {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
				c.log.Info("connection closed")
			} else {
				c.log.Warn("connection lost", "err", err)
			}
			return
		}
		if mt != websocket.MessageText && mt != websocket.MessageBinary {
			continue
		}

		env, err := wire.Decode(c.codec, data)
		if err != nil {
			c.log.Warn("dropping malformed frame", "err", err)
			continue
		}

		if env.Type == wire.TypeEvent {
			var p wire.EventPayload
			if err := wire.DecodePayload(c.codec, env, &p); err != nil {
				c.log.Warn("dropping malformed event", "id", env.ID, "err", err)
				continue
			}
			c.mu.Lock()
			c.queue = append(c.queue, p.Event())
			c.mu.Unlock()
			c.wake()
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[env.ID]
		delete(c.pending, env.ID)
		c.mu.Unlock()
		if !ok {
			c.log.Debug("response without pending request", "id", env.ID, "type", env.Type)
			continue
		}
		ch <- env
	}
}

func (c *Client) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// deliver moves queued events to the events channel in arrival order. It
// closes events when ctx ends, or once the read loop has ended and the
// queue is empty.
func (c *Client) deliver(ctx context.Context) {
	defer close(c.drained)
	defer close(c.events)

	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			ended := c.closed
			c.mu.Unlock()
			if ended {
				return
			}
			select {
			case <-c.notify:
			case <-ctx.Done():
				return
			}
			continue
		}
		ev := c.queue[0]
		c.queue[0] = nil
		c.queue = c.queue[1:]
		c.mu.Unlock()

		select {
		case c.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) keepalive(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-t.C:
			pingCtx, cancel := context.WithTimeout(ctx, every)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			c.log.Warn("ping failed", "failures", failures, "err", err)
			if failures >= maxPingFailures {
				_ = c.conn.Close(websocket.StatusGoingAway, "keepalive failed")
				return
			}
		}
	}
}
