package mobile

import (
	"strings"
	"testing"
	"time"

	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
)

type exception struct {
	sessionID string
	message   string
}

type testHandler struct {
	exceptions chan exception
	logs       []string
}

func (h *testHandler) OnException(sessionID string, message string) {
	h.exceptions <- exception{sessionID, message}
}

func (h *testHandler) OnLog(level int, message string) {
	h.logs = append(h.logs, message)
}

func newTestSettings(t *testing.T) *Settings {
	return &Settings{manager: syncmanager.NewTestManager(t)}
}

func TestSettingsMaps(t *testing.T) {
	s := newTestSettings(t)

	if s.CustomRequestHeaders() != "" {
		t.Fatalf("no headers should be set, got %s", s.CustomRequestHeaders())
	}

	if err := s.SetCustomRequestHeaders(`{"X-Client":"mobile"}`); err != nil {
		t.Fatal(err)
	}
	if got := s.CustomRequestHeaders(); got != `{"X-Client":"mobile"}` {
		t.Fatalf("wrong headers: %s", got)
	}

	if err := s.SetPinnedCertificatePaths(`{"example.com":"/certs/example.cer"}`); err != nil {
		t.Fatal(err)
	}
	if got := s.PinnedCertificatePaths(); got != `{"example.com":"/certs/example.cer"}` {
		t.Fatalf("wrong pins: %s", got)
	}

	if err := s.SetCustomRequestHeaders(`{"X-Client":`); err == nil {
		t.Fatal("malformed JSON should be rejected")
	}
	if err := s.SetCustomRequestHeaders(`{"Bad Header":"v"}`); !syncmanager.IsErr(err, syncmanager.InvalidConfiguration) {
		t.Fatalf("expected InvalidConfiguration, got %v", err)
	}
}

func TestSettingsLogLevel(t *testing.T) {
	s := newTestSettings(t)

	if s.LogLevel() != LogLevelInfo {
		t.Fatalf("default level should be info, got %d", s.LogLevel())
	}
	if err := s.SetLogLevel(LogLevelDebug); err != nil {
		t.Fatal(err)
	}
	if s.LogLevel() != LogLevelDebug {
		t.Fatalf("level should be debug, got %d", s.LogLevel())
	}
	for _, level := range []int{-1, LogLevelAll + 1} {
		if err := s.SetLogLevel(level); !syncmanager.IsErr(err, syncmanager.InvalidConfiguration) {
			t.Fatalf("level %d should be rejected, got %v", level, err)
		}
	}
}

func TestSettingsTimeoutOptions(t *testing.T) {
	s := newTestSettings(t)

	if s.TimeoutOptions() != nil {
		t.Fatal("no timeout options should be set")
	}

	opts := NewTimeoutOptions(1000, 0, 500, 250, 60000)
	if err := s.SetTimeoutOptions(opts); err != nil {
		t.Fatal(err)
	}

	opts.ConnectTimeout = 1
	got := s.TimeoutOptions()
	if *got != *NewTimeoutOptions(1000, 0, 500, 250, 60000) {
		t.Fatalf("wrong timeout options: %+v", got)
	}

	if err := s.SetTimeoutOptions(NewTimeoutOptions(-1, 0, 0, 0, 0)); !syncmanager.IsErr(err, syncmanager.InvalidConfiguration) {
		t.Fatalf("negative timeout should be rejected, got %v", err)
	}

	if err := s.SetTimeoutOptions(NewTimeoutOptions(0, 18500000000000, 0, 0, 0)); !syncmanager.IsErr(err, syncmanager.InvalidConfiguration) {
		t.Fatalf("linger overflowing a duration should be rejected, got %v", err)
	}
	if got := s.TimeoutOptions(); *got != *NewTimeoutOptions(1000, 0, 500, 250, 60000) {
		t.Fatalf("rejected options should not be stored, got %+v", got)
	}

	if err := s.SetTimeoutOptions(nil); err != nil {
		t.Fatal(err)
	}
	if s.TimeoutOptions() != nil {
		t.Fatal("timeout options should be cleared")
	}

	if *DefaultTimeoutOptions() != *NewTimeoutOptions(120000, 30000, 60000, 120000, 60000) {
		t.Fatalf("wrong defaults: %+v", DefaultTimeoutOptions())
	}
}

func TestLogHandler(t *testing.T) {
	s := newTestSettings(t)
	h := &testHandler{}

	if err := s.SetLogHandler(h); err != nil {
		t.Fatal(err)
	}

	s.manager.Logger()(syncmanager.LogLevelWarn, "warned")

	if len(h.logs) != 1 || h.logs[0] != "warned" {
		t.Fatalf("handler should receive the message, got %v", h.logs)
	}

	if err := s.SetLogHandler(nil); err != nil {
		t.Fatal(err)
	}
	if s.manager.Logger() != nil {
		t.Fatal("nil handler should restore the default logger")
	}
}

func TestExceptionHandler(t *testing.T) {
	s := newTestSettings(t)
	h := &testHandler{exceptions: make(chan exception, 1)}

	if err := s.SetExceptionHandler(h); err != nil {
		t.Fatal(err)
	}

	c := newClient(s.manager, "")
	defer c.Shutdown()

	if session := c.OpenSession("s1", "http://example.com", ""); session != nil {
		t.Fatal("session should not open on an http URL")
	}

	select {
	case e := <-h.exceptions:
		if e.sessionID != "" {
			t.Fatalf("session ID should be empty, got %s", e.sessionID)
		}
		if !strings.Contains(e.message, "s1") {
			t.Fatalf("message should name the session: %s", e.message)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for exception")
	}
}
