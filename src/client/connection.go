package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
)

const writeWait = 10 * time.Second

// connection is a WebSocket connection to one server, shared by the sessions
// targeting that server.
type connection struct {
	client   *Client
	url      string
	host     string
	timeouts syncmanager.TimeoutOptions

	mu            sync.Mutex
	ws            *websocket.Conn
	stop          chan struct{}
	sessions      map[*Session]struct{}
	fastReconnect bool
	released      bool
	lingerTimer   *time.Timer
	lingerGen     uint64

	wg sync.WaitGroup
}

func newConnection(client *Client, url, host string, timeouts syncmanager.TimeoutOptions) *connection {
	return &connection{
		client:   client,
		url:      url,
		host:     host,
		timeouts: timeouts,
		sessions: make(map[*Session]struct{}),
	}
}

func (c *connection) attach(ctx context.Context, cfg SessionConfig) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil, errReleased
	}

	c.cancelLingerLocked()

	if err := c.connectLocked(ctx, cfg.AccessToken); err != nil {
		if len(c.sessions) == 0 {
			c.releaseLocked()
		}
		return nil, err
	}

	s := &Session{
		id:           cfg.ID,
		token:        cfg.AccessToken,
		conn:         c,
		uploadActive: c.fastReconnect,
	}
	c.sessions[s] = struct{}{}

	return s, nil
}

func (c *connection) detach(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[s]; !ok {
		return
	}
	delete(c.sessions, s)

	if len(c.sessions) > 0 {
		return
	}

	if c.ws == nil || c.timeouts.ConnectionLingerTime == 0 {
		c.closeLocked()
		c.releaseLocked()
		return
	}

	c.client.Log(syncmanager.LogLevelDetail,
		fmt.Sprintf("Connection to %s idle, lingering for %v", c.url, c.timeouts.ConnectionLingerTime))

	c.lingerGen++
	gen := c.lingerGen
	c.wg.Add(1)
	c.lingerTimer = time.AfterFunc(c.timeouts.ConnectionLingerTime, func() {
		defer c.wg.Done()
		c.lingerExpired(gen)
	})
}

func (c *connection) lingerExpired(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.lingerGen || len(c.sessions) > 0 {
		return
	}

	c.lingerTimer = nil
	c.closeLocked()
	c.releaseLocked()
}

func (c *connection) cancelLingerLocked() {
	c.lingerGen++
	if c.lingerTimer != nil && c.lingerTimer.Stop() {
		c.wg.Done()
	}
	c.lingerTimer = nil
}

// connectLocked establishes the WebSocket connection if there is none. The
// connect timeout covers name resolution, TCP connect, TLS and WebSocket
// handshakes.
func (c *connection) connectLocked(ctx context.Context, token string) error {
	if c.ws != nil {
		return nil
	}

	dialer, err := c.client.dialer(c.host, c.timeouts.ConnectTimeout)
	if err != nil {
		return &Error{Kind: ConnectionFailed, Server: c.url, Err: err}
	}

	if c.timeouts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeouts.ConnectTimeout)
		defer cancel()
	}

	ws, _, err := dialer.DialContext(ctx, c.url, c.client.requestHeader(token))
	if err != nil {
		return &Error{Kind: ConnectionFailed, Server: c.url, Err: err}
	}

	established := time.Now()
	lost, ok := c.client.lostAt(c.url)
	c.fastReconnect = ok && established.Sub(lost) < c.timeouts.FastReconnectLimit

	c.ws = ws
	c.stop = make(chan struct{})

	pongCh := make(chan struct{}, 1)
	ws.SetPongHandler(func(string) error {
		select {
		case pongCh <- struct{}{}:
		default:
		}
		return nil
	})

	c.wg.Add(1)
	go c.readLoop(ws)

	if c.timeouts.PingKeepalivePeriod > 0 {
		c.wg.Add(1)
		go c.keepalive(ws, c.stop, pongCh)
	}

	for s := range c.sessions {
		s.uploadActive = c.fastReconnect || s.downloadComplete
	}

	c.client.Log(syncmanager.LogLevelDetail,
		fmt.Sprintf("Connected to %s, fast_reconnect=%v", c.url, c.fastReconnect))

	return nil
}

// readLoop drains incoming frames so that control frames, PONG in particular,
// are processed.
func (c *connection) readLoop(ws *websocket.Conn) {
	defer c.wg.Done()
	for {
		if _, _, err := ws.NextReader(); err != nil {
			c.lost(ws, &Error{Kind: ConnectionClosed, Server: c.url, Err: err})
			return
		}
	}
}

func (c *connection) keepalive(ws *websocket.Conn, stop <-chan struct{}, pongCh <-chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.timeouts.PingKeepalivePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		// Drop a PONG left over from an earlier PING.
		select {
		case <-pongCh:
		default:
		}

		if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
			c.lost(ws, &Error{Kind: ConnectionClosed, Server: c.url, Err: err})
			return
		}
		c.client.Log(syncmanager.LogLevelTrace, "PING sent to "+c.url)

		if c.timeouts.PongKeepaliveTimeout == 0 {
			continue
		}

		timer := time.NewTimer(c.timeouts.PongKeepaliveTimeout)
		select {
		case <-pongCh:
			timer.Stop()
			c.client.Log(syncmanager.LogLevelTrace, "PONG received from "+c.url)
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
			c.lost(ws, &Error{
				Kind:   HeartbeatTimeout,
				Server: c.url,
				Err:    fmt.Errorf("no PONG within %v", c.timeouts.PongKeepaliveTimeout),
			})
			return
		}
	}
}

// lost tears down ws after an error, unless it was already closed on purpose,
// and reports the error.
func (c *connection) lost(ws *websocket.Conn, err error) {
	c.mu.Lock()
	if c.ws != ws {
		c.mu.Unlock()
		return
	}
	c.closeLocked()
	if len(c.sessions) == 0 {
		c.releaseLocked()
	}
	c.mu.Unlock()

	c.client.Log(syncmanager.LogLevelWarn, err.Error())
	c.client.ReportError(err, nil)
}

func (c *connection) closeLocked() {
	if c.ws == nil {
		return
	}

	ws := c.ws
	c.ws = nil
	close(c.stop)

	ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	ws.Close()

	c.client.setLostAt(c.url, time.Now())

	for s := range c.sessions {
		s.uploadActive = false
		s.downloadComplete = false
	}

	c.client.Log(syncmanager.LogLevelDetail, "Connection to "+c.url+" closed")
}

func (c *connection) releaseLocked() {
	if c.released {
		return
	}
	c.released = true
	c.client.release(c)
}

func (c *connection) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLingerLocked()
	c.closeLocked()
	c.sessions = make(map[*Session]struct{})
	c.releaseLocked()
}
