package sources

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// reconnectDelay is the wait between dial attempts when the companion app
// endpoint is unreachable.
const reconnectDelay = 2 * time.Second

// WSLocationClient reads JSON fixes from a companion-app websocket endpoint.
// It reconnects on any read or dial failure and drops fixes whose timestamp
// does not advance, so a replaying or buffering upstream cannot walk the
// navigation state backwards.
type WSLocationClient struct {
	url    string
	logger *slog.Logger

	fixes chan Fix
	quit  chan struct{}
	done  chan struct{}

	mu   sync.Mutex
	conn *websocket.Conn

	closeOnce sync.Once
}

// NewWSLocationClient starts the read loop immediately; fixes arrive on
// Fixes() once the endpoint accepts a connection.
func NewWSLocationClient(url string, logger *slog.Logger) *WSLocationClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &WSLocationClient{
		url:    url,
		logger: logger.With("component", "sources.wslocation"),
		fixes:  make(chan Fix, 16),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.run()
	return c
}

// Fixes implements LocationSource. The channel closes after Close.
func (c *WSLocationClient) Fixes() <-chan Fix {
	return c.fixes
}

// Close shuts the client down. Safe to call more than once.
func (c *WSLocationClient) Close() error {
	c.closeOnce.Do(func() {
		close(c.quit)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
		<-c.done
		close(c.fixes)
	})
	return nil
}

func (c *WSLocationClient) run() {
	defer close(c.done)

	var lastTS time.Time
	for {
		select {
		case <-c.quit:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err != nil {
			c.logger.Warn("dial failed", "url", c.url, "error", err)
			select {
			case <-c.quit:
				return
			case <-time.After(reconnectDelay):
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.logger.Info("location feed connected", "url", c.url)

		lastTS = c.readLoop(conn, lastTS)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}
}

// readLoop consumes fixes until the connection breaks or the client closes.
// Returns the latest accepted timestamp so filtering survives reconnects.
func (c *WSLocationClient) readLoop(conn *websocket.Conn, lastTS time.Time) time.Time {
	for {
		var fix Fix
		if err := conn.ReadJSON(&fix); err != nil {
			select {
			case <-c.quit:
			default:
				c.logger.Warn("location feed lost", "error", err)
			}
			return lastTS
		}

		if fix.Timestamp.IsZero() {
			fix.Timestamp = time.Now()
		}
		if !fix.Timestamp.After(lastTS) {
			continue
		}
		lastTS = fix.Timestamp

		select {
		case c.fixes <- fix:
		case <-c.quit:
			return lastTS
		default:
			// Consumer is behind; a stale fix is worthless, drop it.
		}
	}
}

var _ LocationSource = (*WSLocationClient)(nil)
