package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/mosaicnetworks/syncmanager/src/common"
	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database
	DefaultBadgerFile = "badger_db"

	// DefaultConfigFile is the name, without extension, of the configuration
	// file looked up in the data directory.
	DefaultConfigFile = "syncmanager"

	// DefaultEnvFile is the name of the optional dotenv file in the data
	// directory.
	DefaultEnvFile = ".env"
)

// Default configuration values.
const (
	DefaultLogLevel = "info"
	DefaultStore    = false
)

// Config contains the configuration properties of a sync client.
type Config struct {
	// DataDir is the top-level directory containing the configuration and data
	DataDir string `mapstructure:"datadir"`

	// AppID identifies the application to the sync server.
	AppID string `mapstructure:"app-id"`

	// UserAgent is sent in the User-Agent header of the WebSocket handshake.
	UserAgent string `mapstructure:"user-agent"`

	// LogLevel is the sync log threshold, one of off, fatal, error, warn,
	// info, detail, debug, trace or all.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, receives a JSON copy of every log line.
	LogFile string `mapstructure:"log-file"`

	// AuthorizationHeader is the name of the header carrying access tokens.
	// Empty means Authorization.
	AuthorizationHeader string `mapstructure:"authorization-header"`

	// Headers are added to every WebSocket handshake.
	Headers map[string]string `mapstructure:"headers"`

	// PinnedCerts maps server hostnames to the path of a certificate file.
	// Connections to a pinned host only trust that certificate.
	PinnedCerts map[string]string `mapstructure:"pinned-certs"`

	// SetTimeouts controls whether the timeouts below are set on the Manager.
	// When false, the client uses its defaults.
	SetTimeouts bool `mapstructure:"set-timeouts"`

	ConnectTimeout       time.Duration `mapstructure:"connect-timeout"`
	ConnectionLingerTime time.Duration `mapstructure:"linger"`
	PingKeepalivePeriod  time.Duration `mapstructure:"ping-period"`
	PongKeepaliveTimeout time.Duration `mapstructure:"pong-timeout"`
	FastReconnectLimit   time.Duration `mapstructure:"fast-reconnect"`

	// Store activates the metadata store, which keeps the latched
	// configuration and the connection loss times across restarts.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	defaults := syncmanager.DefaultTimeoutOptions()

	config := &Config{
		DataDir:              DefaultDataDir(),
		LogLevel:             DefaultLogLevel,
		ConnectTimeout:       defaults.ConnectTimeout,
		ConnectionLingerTime: defaults.ConnectionLingerTime,
		PingKeepalivePeriod:  defaults.PingKeepalivePeriod,
		PongKeepaliveTimeout: defaults.PongKeepaliveTimeout,
		FastReconnectLimit:   defaults.FastReconnectLimit,
		Store:                DefaultStore,
		DatabaseDir:          DefaultDatabaseDir(),
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level directory, and updates the database directory
// if it is currently set to the default value.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// EnvFile returns the full path of the dotenv file.
func (c *Config) EnvFile() string {
	return filepath.Join(c.DataDir, DefaultEnvFile)
}

// Timeouts returns the timeout fields as TimeoutOptions.
func (c *Config) Timeouts() syncmanager.TimeoutOptions {
	return syncmanager.TimeoutOptions{
		ConnectTimeout:       c.ConnectTimeout,
		ConnectionLingerTime: c.ConnectionLingerTime,
		PingKeepalivePeriod:  c.PingKeepalivePeriod,
		PongKeepaliveTimeout: c.PongKeepaliveTimeout,
		FastReconnectLimit:   c.FastReconnectLimit,
	}
}

// Apply copies the configuration onto m. Every field is attempted; the errors
// are returned together.
func (c *Config) Apply(m *syncmanager.Manager) error {
	var result *multierror.Error

	level, err := syncmanager.ParseLogLevel(c.LogLevel)
	if err != nil {
		result = multierror.Append(result, err)
	} else {
		result = multierror.Append(result, m.SetLogLevel(level))
	}

	result = multierror.Append(result,
		m.SetAppID(c.AppID),
		m.SetUserAgent(c.UserAgent),
		m.SetAuthorizationHeaderName(c.AuthorizationHeader),
		m.SetCustomRequestHeaders(c.Headers),
		m.SetPinnedCertificatePaths(c.PinnedCerts),
		m.SetDiagnostics(c.Logger()),
	)

	if c.SetTimeouts {
		result = multierror.Append(result, m.SetTimeoutOptions(c.Timeouts()))
	}

	return result.ErrorOrNil()
}

// Logger returns a formatted logrus Entry, with prefix set to "syncmanager".
// When LogFile is set, log lines are also written to that file in JSON.
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			c.logger.AddHook(fileHook(c.LogFile))
		}
	}
	return c.logger.WithField("prefix", "syncmanager")
}

func fileHook(path string) logrus.Hook {
	paths := lfshook.PathMap{}
	for _, level := range logrus.AllLevels {
		paths[level] = path
	}
	return lfshook.NewHook(paths, &logrus.JSONFormatter{})
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default data directory based on the underlying
// OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".SyncManager")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "SyncManager")
		} else {
			return filepath.Join(home, ".syncmanager")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a sync level name into the matching logrus level. Unknown
// names give logrus.InfoLevel.
func LogLevel(l string) logrus.Level {
	level, err := syncmanager.ParseLogLevel(l)
	if err != nil {
		return logrus.InfoLevel
	}
	return level.LogrusLevel()
}

func (c *Config) String() string {
	return fmt.Sprintf("datadir=%s app-id=%s log=%s store=%v", c.DataDir, c.AppID, c.LogLevel, c.Store)
}
