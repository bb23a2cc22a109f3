package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mosaicnetworks/syncmanager/src/common"
	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
	"github.com/sirupsen/logrus"
)

func TestSetDataDir(t *testing.T) {
	config := NewDefaultConfig()

	config.SetDataDir("/tmp/sync")
	if config.DatabaseDir != filepath.Join("/tmp/sync", DefaultBadgerFile) {
		t.Fatalf("DatabaseDir should follow DataDir, got %s", config.DatabaseDir)
	}

	config.DatabaseDir = "/var/db"
	config.SetDataDir("/tmp/other")
	if config.DatabaseDir != "/var/db" {
		t.Fatalf("an explicit DatabaseDir should be kept, got %s", config.DatabaseDir)
	}
}

func TestApply(t *testing.T) {
	config := NewTestConfig(t, common.TestLogLevel)
	config.AppID = "io.mosaicnetworks.config"
	config.UserAgent = "config-test/1.0"
	config.LogLevel = "debug"
	config.AuthorizationHeader = "X-Auth"
	config.Headers = map[string]string{"X-Client": "cli"}
	config.PinnedCerts = map[string]string{"example.com": "/certs/example.cer"}
	config.SetTimeouts = true
	config.ConnectTimeout = 5 * time.Second
	config.ConnectionLingerTime = 0

	m := syncmanager.NewTestManager(t)
	if err := config.Apply(m); err != nil {
		t.Fatal(err)
	}

	if m.AppID() != "io.mosaicnetworks.config" {
		t.Fatalf("AppID should be io.mosaicnetworks.config, not %s", m.AppID())
	}
	if m.UserAgent() != "config-test/1.0" {
		t.Fatalf("UserAgent should be config-test/1.0, not %s", m.UserAgent())
	}
	if m.LogLevel() != syncmanager.LogLevelDebug {
		t.Fatalf("LogLevel should be debug, not %v", m.LogLevel())
	}
	if m.AuthorizationHeaderName() != "X-Auth" {
		t.Fatalf("AuthorizationHeaderName should be X-Auth, not %s", m.AuthorizationHeaderName())
	}
	if m.CustomRequestHeaders()["X-Client"] != "cli" {
		t.Fatalf("wrong headers: %v", m.CustomRequestHeaders())
	}
	if m.PinnedCertificatePaths()["example.com"] != "/certs/example.cer" {
		t.Fatalf("wrong pins: %v", m.PinnedCertificatePaths())
	}

	opts, ok := m.TimeoutOptions()
	if !ok {
		t.Fatal("timeout options should be set")
	}
	if opts.ConnectTimeout != 5*time.Second || opts.ConnectionLingerTime != 0 {
		t.Fatalf("wrong timeout options: %+v", opts)
	}
	if opts.PingKeepalivePeriod != syncmanager.DefaultPingKeepalivePeriod {
		t.Fatalf("ping period should keep its default, got %v", opts.PingKeepalivePeriod)
	}
}

func TestApplyWithoutTimeouts(t *testing.T) {
	config := NewTestConfig(t, common.TestLogLevel)

	m := syncmanager.NewTestManager(t)
	if err := config.Apply(m); err != nil {
		t.Fatal(err)
	}

	if _, ok := m.TimeoutOptions(); ok {
		t.Fatal("timeout options should not be set")
	}
}

func TestApplyCollectsErrors(t *testing.T) {
	config := NewTestConfig(t, common.TestLogLevel)
	config.LogLevel = "loud"
	config.Headers = map[string]string{"Bad Header": "v"}
	config.SetTimeouts = true
	config.PongKeepaliveTimeout = -time.Second

	m := syncmanager.NewTestManager(t)
	err := config.Apply(m)
	if err == nil {
		t.Fatal("Apply should fail")
	}
	if !syncmanager.IsErr(err, syncmanager.InvalidConfiguration) {
		t.Fatalf("expected InvalidConfiguration, got %v", err)
	}

	for _, field := range []string{"logLevel", "customRequestHeaders", "pongKeepaliveTimeout"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("error should mention %s: %v", field, err)
		}
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"off":     logrus.PanicLevel,
		"error":   logrus.ErrorLevel,
		"warning": logrus.WarnLevel,
		"detail":  logrus.InfoLevel,
		"debug":   logrus.DebugLevel,
		"all":     logrus.TraceLevel,
		"bogus":   logrus.InfoLevel,
	}
	for name, expected := range cases {
		if got := LogLevel(name); got != expected {
			t.Fatalf("LogLevel(%s) should be %v, not %v", name, expected, got)
		}
	}
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")

	config := NewDefaultConfig()
	config.LogFile = path
	config.Logger().Info("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Fatalf("log file should contain the message, got %q", data)
	}
	if !strings.Contains(string(data), `"prefix":"syncmanager"`) {
		t.Fatalf("log file should contain the prefix field, got %q", data)
	}
}
