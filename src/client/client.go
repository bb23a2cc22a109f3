package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// MetadataStore persists what the client needs to remember across restarts.
type MetadataStore interface {
	PutSnapshot(snapshot syncmanager.Snapshot) error
	LastLost(server string) (time.Time, error)
	SetLastLost(server string, t time.Time) error
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logrus Entry used when the application has not set a
// log function.
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithStore makes the client record the latched configuration and the time
// connections were lost, so that fast reconnects survive a restart.
func WithStore(store MetadataStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// SessionConfig describes a session to open.
type SessionConfig struct {
	// ID identifies the session in error reports.
	ID string

	// ServerURL is the ws:// or wss:// URL of the sync server.
	ServerURL string

	// AccessToken is sent in the authorization header when the connection is
	// established. It is optional.
	AccessToken string
}

// Client is the consumer of the sync configuration. It latches the Manager on
// start and manages one connection per server.
type Client struct {
	settings *syncmanager.Manager
	logger   *logrus.Entry
	store    MetadataStore

	sink atomic.Pointer[logSink]

	mu       sync.Mutex
	closed   bool
	snapshot syncmanager.Snapshot
	timeouts syncmanager.TimeoutOptions
	conns    map[string]*connection
	lastLost map[string]time.Time

	wg sync.WaitGroup
}

// New returns a Client reading its configuration from settings, which should be
// syncmanager.Shared().
func New(settings *syncmanager.Manager, opts ...Option) *Client {
	c := &Client{
		settings: settings,
		conns:    make(map[string]*connection),
		lastLost: make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = defaultLogger()
	}

	return c
}

func defaultLogger() *logrus.Entry {
	logger := logrus.New()
	logger.Level = logrus.TraceLevel
	logger.Formatter = new(prefixed.TextFormatter)
	return logger.WithField("prefix", "sync")
}

// Start latches the Manager and builds the log sink. It is called by
// OpenSession and only has an effect the first time.
func (c *Client) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	if c.sink.Load() != nil {
		return nil
	}

	snapshot, err := c.settings.Latch()
	if err != nil {
		return err
	}

	c.snapshot = snapshot

	sink := newLogSink(snapshot.LogLevel, snapshot.Logger, c.logger)
	c.sink.Store(sink)

	if c.store != nil {
		if err := c.store.PutSnapshot(snapshot); err != nil {
			sink.log(syncmanager.LogLevelWarn, fmt.Sprintf("Cannot record sync configuration: %v", err))
		}
	}

	sink.log(syncmanager.LogLevelTrace, fmt.Sprintf("Sync client started, app_id=%s", snapshot.AppID))

	return nil
}

// Log is the entry point of the client's log events. Before Start, messages are
// filtered with the Manager's current values.
func (c *Client) Log(level syncmanager.LogLevel, message string) {
	sink := c.sink.Load()
	if sink == nil {
		sink = newLogSink(c.settings.LogLevel(), c.settings.Logger(), c.logger)
	}
	sink.log(level, message)
}

// ReportError delivers err to the Manager's current error handler, on a new
// goroutine. session is nil for errors that do not concern a single session.
// Without an error handler the error is logged.
func (c *Client) ReportError(err error, session syncmanager.Session) {
	handler := c.settings.ErrorHandler()
	if handler == nil {
		c.Log(syncmanager.LogLevelError, err.Error())
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		handler(err, session)
	}()
}

// TimeoutOptions returns the options read at the last cold start of the
// connection manager.
func (c *Client) TimeoutOptions() syncmanager.TimeoutOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeouts
}

// OpenSession starts the client if needed and attaches a new session to the
// connection for cfg.ServerURL, establishing it if necessary.
func (c *Client) OpenSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if err := c.Start(); err != nil {
		return nil, err
	}

	for {
		conn, err := c.connectionFor(cfg.ServerURL)
		if err != nil {
			return nil, err
		}

		s, err := conn.attach(ctx, cfg)
		if err == errReleased {
			continue
		}
		if err != nil {
			c.Log(syncmanager.LogLevelError, err.Error())
			return nil, err
		}

		c.Log(syncmanager.LogLevelDebug, fmt.Sprintf("Session %s opened on %s", cfg.ID, cfg.ServerURL))

		return s, nil
	}
}

// Close closes every connection and waits for the pending error reports.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conns := make([]*connection, 0, len(c.conns))
	for _, conn := range c.conns {
		conns = append(conns, conn)
	}
	c.conns = make(map[string]*connection)
	c.mu.Unlock()

	for _, conn := range conns {
		conn.shutdown()
	}
	for _, conn := range conns {
		conn.wg.Wait()
	}

	c.wg.Wait()

	return nil
}

func (c *Client) connectionFor(serverURL string) (*connection, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported scheme %q in %s", u.Scheme, serverURL)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}

	if conn, ok := c.conns[serverURL]; ok {
		return conn, nil
	}

	// Cold start of the connection manager.
	if len(c.conns) == 0 {
		c.timeouts = c.readTimeouts()
	}

	conn := newConnection(c, serverURL, u.Hostname(), c.timeouts)
	c.conns[serverURL] = conn

	return conn, nil
}

func (c *Client) readTimeouts() syncmanager.TimeoutOptions {
	if opts, ok := c.settings.TimeoutOptions(); ok {
		return opts
	}
	return syncmanager.DefaultTimeoutOptions()
}

func (c *Client) release(conn *connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conns[conn.url] == conn {
		delete(c.conns, conn.url)
	}
}

func (c *Client) requestHeader(token string) http.Header {
	c.mu.Lock()
	snapshot := c.snapshot
	c.mu.Unlock()

	header := http.Header{}

	if snapshot.UserAgent != "" {
		header.Set("User-Agent", snapshot.UserAgent)
	}

	for name, value := range snapshot.CustomRequestHeaders {
		header.Set(name, value)
	}

	if token != "" {
		name := snapshot.AuthorizationHeaderName
		if name == "" {
			name = syncmanager.DefaultAuthorizationHeaderName
		}
		header.Set(name, token)
	}

	return header
}

func (c *Client) dialer(host string, connectTimeout time.Duration) (*websocket.Dialer, error) {
	c.mu.Lock()
	pins := c.snapshot.PinnedCertificatePaths
	c.mu.Unlock()

	tlsConfig, err := pinnedTLSConfig(host, pins)
	if err != nil {
		return nil, err
	}

	return &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		TLSClientConfig:  tlsConfig,
		HandshakeTimeout: connectTimeout,
	}, nil
}

func (c *Client) lostAt(server string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.lastLost[server]; ok {
		return t, true
	}

	if c.store != nil {
		if t, err := c.store.LastLost(server); err == nil {
			c.lastLost[server] = t
			return t, true
		}
	}

	return time.Time{}, false
}

func (c *Client) setLostAt(server string, t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastLost[server] = t

	if c.store != nil {
		if err := c.store.SetLastLost(server, t); err != nil {
			c.logger.WithError(err).Warn("Cannot record connection loss")
		}
	}
}
