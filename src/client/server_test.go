package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// testServer is a WebSocket server that records the handshake headers of the
// connections it accepts and signals when they end.
type testServer struct {
	*httptest.Server

	noPong bool

	mu      sync.Mutex
	headers []http.Header

	closedCh chan struct{}
}

func newTestServer(t *testing.T, noPong bool) *testServer {
	s := &testServer{
		noPong:   noPong,
		closedCh: make(chan struct{}, 16),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func newTLSTestServer(t *testing.T) *testServer {
	s := &testServer{
		closedCh: make(chan struct{}, 16),
	}
	s.Server = httptest.NewTLSServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *testServer) handle(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	s.mu.Lock()
	s.headers = append(s.headers, r.Header.Clone())
	s.mu.Unlock()

	if s.noPong {
		ws.SetPingHandler(func(string) error { return nil })
	}

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	s.closedCh <- struct{}{}
}

func (s *testServer) wsURL() string {
	if strings.HasPrefix(s.URL, "https") {
		return "wss" + strings.TrimPrefix(s.URL, "https")
	}
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func (s *testServer) accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.headers)
}

func (s *testServer) header(i int) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[i]
}

func (s *testServer) waitClosed(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-s.closedCh:
	case <-time.After(timeout):
		t.Fatal("timeout waiting for the server side of the connection to close")
	}
}

func (s *testServer) assertOpen(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case <-s.closedCh:
		t.Fatal("connection should still be open")
	case <-time.After(d):
	}
}
