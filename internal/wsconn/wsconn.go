// Package wsconn provides a production-grade WebSocket client with reconnection.
package wsconn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// ErrClosed is returned when operating on a closed client.
var ErrClosed = errors.New("wsconn: client closed")

// ErrNotConnected is returned when sending on a disconnected client.
var ErrNotConnected = errors.New("wsconn: not connected")

// MessageHandler receives inbound messages.
type MessageHandler func(ctx context.Context, msg []byte)

// StateChangeHandler receives state transitions. err is non-nil when the
// transition was caused by a failure.
type StateChangeHandler func(state State, err error)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	Name           string // label used in error messages
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int           // 0 = infinite
	PingInterval   time.Duration // 0 disables pings
	PongTimeout    time.Duration
	MaxMessageSize int64 // 0 = library default
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0, // infinite
		PingInterval:   30 * time.Second,
		PongTimeout:    10 * time.Second,
	}
}

// Client is a WebSocket client with automatic reconnection.
type Client struct {
	config Config

	mu      sync.RWMutex
	conn    *websocket.Conn
	state   State
	onMsg   MessageHandler
	onState StateChangeHandler

	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
	loopWG    sync.WaitGroup
}

// New creates a new WebSocket client.
func New(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, errors.New("wsconn: URL is required")
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = 30 * time.Second
	}
	return &Client{
		config: config,
		state:  StateDisconnected,
		done:   make(chan struct{}),
	}, nil
}

// OnMessage registers the inbound message handler. Must be called before Connect.
func (c *Client) OnMessage(h MessageHandler) {
	c.mu.Lock()
	c.onMsg = h
	c.mu.Unlock()
}

// OnStateChange registers the state transition handler. Must be called before Connect.
func (c *Client) OnStateChange(h StateChangeHandler) {
	c.mu.Lock()
	c.onState = h
	c.mu.Unlock()
}

// Connect dials the server and starts the read and ping loops.
func (c *Client) Connect(ctx context.Context) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.setState(StateConnecting, nil)

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected, err)
		return fmt.Errorf("wsconn %s: dial %s: %w", c.config.Name, c.config.URL, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected, nil)

	c.loopWG.Add(1)
	go c.readLoop(conn)

	if c.config.PingInterval > 0 {
		c.loopWG.Add(1)
		go c.pingLoop(conn)
	}

	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		return nil, err
	}
	if c.config.MaxMessageSize > 0 {
		conn.SetReadLimit(c.config.MaxMessageSize)
	}
	return conn, nil
}

// Send writes a text message.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	conn := c.currentConn()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		return fmt.Errorf("wsconn %s: send: %w", c.config.Name, err)
	}
	return nil
}

// SendJSON marshals v and writes it as a text message.
func (c *Client) SendJSON(ctx context.Context, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wsconn %s: marshal: %w", c.config.Name, err)
	}
	return c.Send(ctx, data)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the client currently has a live connection.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Close gracefully closes the connection. It is idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.mu.Unlock()

		if conn != nil {
			conn.Close(websocket.StatusNormalClosure, "client shutdown")
		}
		c.loopWG.Wait()

		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
	})
	return nil
}

func (c *Client) currentConn() *websocket.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

func (c *Client) setState(state State, err error) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = state
	handler := c.onState
	c.mu.Unlock()

	if handler != nil {
		handler(state, err)
	}
}

// readLoop reads messages until the connection fails, then reconnects.
func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.loopWG.Done()

	ctx := context.Background()
	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			c.reconnect(err)
			return
		}

		c.mu.RLock()
		handler := c.onMsg
		c.mu.RUnlock()
		if handler != nil {
			handler(ctx, data)
		}
	}
}

// pingLoop keeps the connection alive.
func (c *Client) pingLoop(conn *websocket.Conn) {
	defer c.loopWG.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			timeout := c.config.PongTimeout
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			err := conn.Ping(ctx)
			cancel()
			if err != nil {
				// readLoop will observe the broken connection
				return
			}
		}
	}
}

// reconnect dials again with exponential backoff and jitter.
func (c *Client) reconnect(cause error) {
	c.setState(StateReconnecting, cause)

	backoff := c.config.InitialBackoff
	attempts := 0

	for {
		select {
		case <-c.done:
			return
		default:
		}

		if c.config.MaxReconnects > 0 && attempts >= c.config.MaxReconnects {
			c.setState(StateDisconnected, fmt.Errorf("wsconn %s: gave up after %d reconnect attempts: %w", c.config.Name, attempts, cause))
			return
		}

		jitter := time.Duration(rand.Int63n(int64(backoff)/4 + 1))
		select {
		case <-c.done:
			return
		case <-time.After(backoff + jitter):
		}

		attempts++

		dialCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		conn, err := c.dial(dialCtx)
		cancel()
		if err != nil {
			backoff *= 2
			if backoff > c.config.MaxBackoff {
				backoff = c.config.MaxBackoff
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		c.setState(StateConnected, nil)

		c.loopWG.Add(1)
		go c.readLoop(conn)
		return
	}
}
