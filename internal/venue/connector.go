package venue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayanmadaan/trading-engine/internal/errors"
	"github.com/ayanmadaan/trading-engine/internal/model/enum"
	"github.com/yanun0323/logs"

	"github.com/ayanmadaan/trading-engine/pkg/websocket"
)

// DefaultHeartbeatInterval is the periodic send_heartbeat timer (§4.2: "default 10s").
const DefaultHeartbeatInterval = 10 * time.Second

// SendFunc writes one frame on the current connection. It is only valid for
// the duration of the callback that received it (OnOpen, OnHeartbeat) or
// between Connector.Send calls once State() reports StateOpen.
type SendFunc func(msgType websocket.MessageType, payload []byte) error

// Config wires one venue channel's auth/subscribe/heartbeat/parse behavior
// into the generic reconnect-and-dispatch state machine.
type Config struct {
	Venue             enum.Venue
	Dialer            websocket.Dialer
	RequiresAuth      bool
	RetryLimit        int
	HeartbeatInterval time.Duration
	MaxFrameSize      int
	Backoff           websocket.Backoff

	// OnOpen sends the auth or subscribe payload(s) for a freshly dialed
	// connection. A non-nil return is treated as onFail (§4.2).
	OnOpen func(send SendFunc) error
	// OnHeartbeat sends one venue-specific ping. A non-nil return surfaces
	// WebSocketDisconnected(false) (§4.2 "If a send throws...").
	OnHeartbeat func(send SendFunc) error
	// OnMessage parses one inbound frame. Invoked on the connector's single
	// read goroutine; handlers must not block.
	OnMessage func(payload []byte)
	// OnStateChange observes every state transition.
	OnStateChange func(ConnState)
	// OnDisconnect fires on every onClose/onFail, reporting whether the
	// retry limit was just exceeded (§4.2).
	OnDisconnect func(reachedRetryLimit bool)
}

// Connector owns exactly one websocket connection for one (venue, channel)
// at a time (§4.2). Reconnection is linear: the run loop never starts a
// second dial while a prior session is still being torn down.
type Connector struct {
	cfg Config

	state   atomic.Uint32
	attempt atomic.Int32

	shutdown atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}

	writeMu sync.Mutex
	conn    websocket.Conn
}

// New validates cfg defaults and returns an idle connector. Call Start to
// begin dialing.
func New(cfg Config) *Connector {
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = 3
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.MaxFrameSize <= 0 {
		cfg.MaxFrameSize = 64 << 10
	}
	if cfg.Backoff.Min == 0 && cfg.Backoff.Max == 0 {
		cfg.Backoff = websocket.DefaultBackoff()
	}
	c := &Connector{cfg: cfg}
	c.setState(StateDisconnected)
	return c
}

// State returns the connector's current lifecycle state.
func (c *Connector) State() ConnState {
	return ConnState(c.state.Load())
}

func (c *Connector) setState(s ConnState) {
	c.state.Store(uint32(s))
	if c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(s)
	}
}

// Start spawns the reconnect-and-read loop. Safe to call once.
func (c *Connector) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go func() {
		defer close(c.done)
		c.run(ctx)
	}()
}

// Stop sets the shutdown-requested flag so no further reconnect attempts are
// scheduled, then closes the active connection if any and waits for the run
// loop to exit (§4.2 "stop(): suppresses further reconnection attempts").
func (c *Connector) Stop() {
	c.shutdown.Store(true)
	if c.cancel != nil {
		c.cancel()
	}
	if c.done != nil {
		<-c.done
	}
}

// Send writes one frame on the current connection. Returns
// errors.ErrVenueNotConnected if no session is open.
func (c *Connector) Send(msgType websocket.MessageType, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return errors.ErrVenueNotConnected
	}
	return c.conn.Write(context.Background(), msgType, payload)
}

func (c *Connector) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			c.setState(StateDisconnected)
			return
		}

		c.setState(StateConnecting)
		conn, err := c.cfg.Dialer.Dial(ctx)
		if err != nil {
			c.onFail(ctx)
			if c.shutdown.Load() || ctx.Err() != nil {
				c.setState(StateDisconnected)
				return
			}
			continue
		}

		c.writeMu.Lock()
		c.conn = conn
		c.writeMu.Unlock()
		c.attempt.Store(0)
		c.setState(StateOpen)

		if c.cfg.OnOpen != nil {
			if err := c.cfg.OnOpen(c.Send); err != nil {
				logs.Errorf("venue[%s]: onOpen failed: %+v", c.cfg.Venue.String(), err)
				c.closeConn()
				c.onFail(ctx)
				if c.shutdown.Load() || ctx.Err() != nil {
					c.setState(StateDisconnected)
					return
				}
				continue
			}
		}

		sessionErr := c.runSession(ctx, conn)
		c.setState(StateClosing)
		c.closeConn()

		if c.shutdown.Load() {
			c.setState(StateDisconnected)
			return
		}
		if sessionErr != nil {
			logs.Warnf("venue[%s]: session ended: %+v", c.cfg.Venue.String(), sessionErr)
		}
		c.onFail(ctx)
		if ctx.Err() != nil {
			c.setState(StateDisconnected)
			return
		}
	}
}

// onFail increments the reconnect-attempt counter and reports whether the
// retry limit is now exceeded (§4.2: "If it now exceeds retry_limit, emit
// WebSocketDisconnected(reached_retry_limit=true) and remain Disconnected.
// Otherwise emit WebSocketDisconnected(false) and call connect() again.").
// A reconnection that succeeds exactly at attempt == retry_limit is still
// allowed; only the (retry_limit+1)-th attempt is refused, so the decision
// and the event are emitted here, before the caller loops back to dial.
func (c *Connector) onFail(ctx context.Context) {
	if c.shutdown.Load() {
		return
	}
	attempt := c.attempt.Add(1)
	reachedLimit := attempt > int32(c.cfg.RetryLimit)
	if c.cfg.OnDisconnect != nil {
		c.cfg.OnDisconnect(reachedLimit)
	}
	if reachedLimit {
		c.shutdown.Store(true)
		return
	}
	c.sleepBackoff(ctx, int(attempt))
}

func (c *Connector) sleepBackoff(ctx context.Context, attempt int) {
	wait := c.cfg.Backoff.Next(attempt)
	if wait <= 0 {
		return
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (c *Connector) closeConn() {
	c.writeMu.Lock()
	conn := c.conn
	c.conn = nil
	c.writeMu.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.CloseNormal, "session_end")
	}
}

func (c *Connector) runSession(ctx context.Context, conn websocket.Conn) error {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go c.readLoop(sessionCtx, conn, errCh)

	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-ticker.C:
			if c.cfg.OnHeartbeat == nil {
				continue
			}
			if err := c.cfg.OnHeartbeat(c.Send); err != nil {
				return err
			}
		}
	}
}

func (c *Connector) readLoop(ctx context.Context, conn websocket.Conn, errCh chan<- error) {
	buf := make([]byte, c.cfg.MaxFrameSize)
	for {
		n, msgType, err := conn.Read(ctx, buf)
		if err != nil {
			errCh <- err
			return
		}
		if n <= 0 {
			continue
		}
		if msgType != websocket.MessageText && msgType != websocket.MessageBinary {
			continue
		}
		if c.cfg.OnMessage != nil {
			payload := make([]byte, n)
			copy(payload, buf[:n])
			c.cfg.OnMessage(payload)
		}
	}
}
