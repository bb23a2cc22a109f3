package syncmanager

import (
	"strings"
	"sync"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// DefaultAuthorizationHeaderName is the header carrying the access token when
// no custom name is configured.
const DefaultAuthorizationHeaderName = "Authorization"

// LogFunc receives the log messages of the sync client. It may be called from
// several goroutines at once and must do its own synchronization.
type LogFunc func(level LogLevel, message string)

// Session identifies the sync session an error relates to.
type Session interface {
	ID() string
}

// ErrorHandler is called by the sync client, on its own goroutine, whenever a
// sync error occurs. session is nil when the error is not specific to one
// session.
type ErrorHandler func(err error, session Session)

type state uint32

const (
	configurable state = iota
	latched
)

// Snapshot is the part of the configuration that the sync client latches when
// it opens its first session.
type Snapshot struct {
	AppID                   string
	UserAgent               string
	LogLevel                LogLevel
	Logger                  LogFunc `codec:"-"`
	AuthorizationHeaderName string
	CustomRequestHeaders    map[string]string
	PinnedCertificatePaths  map[string]string
}

func (s Snapshot) clone() Snapshot {
	s.CustomRequestHeaders = copyMap(s.CustomRequestHeaders)
	s.PinnedCertificatePaths = copyMap(s.PinnedCertificatePaths)
	return s
}

// Manager is the central point for sync related configuration. There is one
// Manager per process; it must be obtained with Shared. A Manager built any
// other way fails every setter with an IllegalConstruction error.
//
// Most settings are only read by the sync client when it opens its first
// session (see Latch). Setting them afterwards does nothing.
type Manager struct {
	lock sync.RWMutex

	issued bool
	state  state

	snapshot       Snapshot
	errorHandler   ErrorHandler
	timeoutOptions *TimeoutOptions

	logger *logrus.Entry
}

var (
	shared     *Manager
	sharedOnce sync.Once
)

// Shared returns the sole Manager of the process, creating it on first use.
// It is safe to call from any goroutine and never returns nil.
func Shared() *Manager {
	sharedOnce.Do(func() {
		shared = newManager(logrus.StandardLogger().WithField("prefix", "syncmanager"))
	})
	return shared
}

func newManager(logger *logrus.Entry) *Manager {
	return &Manager{
		issued: true,
		state:  configurable,
		snapshot: Snapshot{
			LogLevel: DefaultLogLevel,
		},
		logger: logger,
	}
}

func (m *Manager) check() error {
	if m == nil || !m.issued {
		return newErr(IllegalConstruction, "", "Manager cannot be created directly, use Shared()")
	}
	return nil
}

// SetDiagnostics replaces the logger used to report writes that were ignored
// because the Manager is latched.
func (m *Manager) SetDiagnostics(logger *logrus.Entry) error {
	if err := m.check(); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.logger = logger
	return nil
}

// setLatched applies set under lock, unless the Manager is latched, in which
// case the write is dropped and a warning is logged.
func (m *Manager) setLatched(field string, set func(s *Snapshot)) error {
	if err := m.check(); err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if m.state == latched {
		if m.logger != nil {
			m.logger.WithField("setting", field).Warn("Sync client already started, ignoring setting")
		}
		return nil
	}

	set(&m.snapshot)

	return nil
}

// Latch freezes the latched settings and returns them. It is called by the
// sync client when it opens its first session. Subsequent calls return the same
// values.
func (m *Manager) Latch() (Snapshot, error) {
	if err := m.check(); err != nil {
		return Snapshot{}, err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if m.state == configurable {
		m.state = latched
		if m.logger != nil {
			m.logger.WithField("app_id", m.snapshot.AppID).Debug("Sync configuration latched")
		}
	}

	return m.snapshot.clone(), nil
}

// Latched reports whether Latch has been called.
func (m *Manager) Latched() bool {
	if m == nil {
		return false
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.state == latched
}

//------------------------------------------------------------------------------
// Never latched

// ErrorHandler returns the current error handler, or nil.
func (m *Manager) ErrorHandler() ErrorHandler {
	if m == nil {
		return nil
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.errorHandler
}

// SetErrorHandler sets the function called on sync errors. It can be changed
// at any time.
func (m *Manager) SetErrorHandler(handler ErrorHandler) error {
	if err := m.check(); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.errorHandler = handler
	return nil
}

// TimeoutOptions returns a copy of the configured timeout options. ok is false
// when none are set.
func (m *Manager) TimeoutOptions() (opts TimeoutOptions, ok bool) {
	if m == nil {
		return TimeoutOptions{}, false
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.timeoutOptions == nil {
		return TimeoutOptions{}, false
	}
	return *m.timeoutOptions, true
}

// SetTimeoutOptions stores a copy of opts. Negative durations are rejected.
func (m *Manager) SetTimeoutOptions(opts TimeoutOptions) error {
	if err := m.check(); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.timeoutOptions = &opts
	return nil
}

// ClearTimeoutOptions removes the timeout options so that the client falls back
// to DefaultTimeoutOptions.
func (m *Manager) ClearTimeoutOptions() error {
	if err := m.check(); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.timeoutOptions = nil
	return nil
}

//------------------------------------------------------------------------------
// Latched

// AppID returns the reverse-DNS identifier of the application.
func (m *Manager) AppID() string {
	if m == nil {
		return ""
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshot.AppID
}

// SetAppID sets the reverse-DNS identifier of the application.
func (m *Manager) SetAppID(appID string) error {
	return m.setLatched("appID", func(s *Snapshot) { s.AppID = appID })
}

// UserAgent returns the string sent in the User-Agent header.
func (m *Manager) UserAgent() string {
	if m == nil {
		return ""
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshot.UserAgent
}

// SetUserAgent sets the string sent in the User-Agent header of sync
// connections. It must be set before the first session is opened.
func (m *Manager) SetUserAgent(userAgent string) error {
	if err := validateHeaderValue("userAgent", userAgent); err != nil {
		return err
	}
	return m.setLatched("userAgent", func(s *Snapshot) { s.UserAgent = userAgent })
}

// LogLevel returns the logging threshold.
func (m *Manager) LogLevel() LogLevel {
	if m == nil {
		return LogLevelOff
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshot.LogLevel
}

// SetLogLevel sets the logging threshold used by the sync client. It must be
// set before the first session is opened.
func (m *Manager) SetLogLevel(level LogLevel) error {
	if !level.Valid() {
		return newErr(InvalidConfiguration, "logLevel", level.String()+" is not a log level")
	}
	return m.setLatched("logLevel", func(s *Snapshot) { s.LogLevel = level })
}

// Logger returns the log function, or nil when logs go to the default logger.
func (m *Manager) Logger() LogFunc {
	if m == nil {
		return nil
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshot.Logger
}

// SetLogger sets the function receiving the log messages of the sync client.
// When nil, messages are written by logrus. It must be set before the first
// session is opened.
func (m *Manager) SetLogger(fn LogFunc) error {
	return m.setLatched("logger", func(s *Snapshot) { s.Logger = fn })
}

// AuthorizationHeaderName returns the custom authorization header name, or ""
// when the default is used.
func (m *Manager) AuthorizationHeaderName() string {
	if m == nil {
		return ""
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshot.AuthorizationHeaderName
}

// SetAuthorizationHeaderName sets the header used to send the access token,
// for servers configured to expect a custom header. "" restores the default.
func (m *Manager) SetAuthorizationHeaderName(name string) error {
	if name != "" {
		if err := validateHeaderName("authorizationHeaderName", name); err != nil {
			return err
		}
	}
	return m.setLatched("authorizationHeaderName", func(s *Snapshot) { s.AuthorizationHeaderName = name })
}

// CustomRequestHeaders returns a copy of the extra headers sent with every
// request.
func (m *Manager) CustomRequestHeaders() map[string]string {
	if m == nil {
		return nil
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	return copyMap(m.snapshot.CustomRequestHeaders)
}

// SetCustomRequestHeaders sets the extra headers sent with every request. The
// map is copied.
func (m *Manager) SetCustomRequestHeaders(headers map[string]string) error {
	var result error
	for name, value := range headers {
		if err := validateHeaderName("customRequestHeaders", name); err != nil {
			result = multierror.Append(result, err)
		}
		if err := validateHeaderValue("customRequestHeaders", value); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if result != nil {
		return result
	}

	headers = copyMap(headers)

	return m.setLatched("customRequestHeaders", func(s *Snapshot) { s.CustomRequestHeaders = headers })
}

// PinnedCertificatePaths returns a copy of the hostname to certificate file map.
func (m *Manager) PinnedCertificatePaths() map[string]string {
	if m == nil {
		return nil
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	return copyMap(m.snapshot.PinnedCertificatePaths)
}

// SetPinnedCertificatePaths sets the certificates to pin, keyed by hostname.
// When a connection is made to a host present in the map, only the certificate
// in the file (or certificates it signed, if it is a CA) is trusted. Keys are
// compared with the server hostname as is, without normalization. The map is
// copied.
func (m *Manager) SetPinnedCertificatePaths(paths map[string]string) error {
	var result error
	for host, path := range paths {
		if host == "" {
			result = multierror.Append(result,
				newErr(InvalidConfiguration, "pinnedCertificatePaths", "empty hostname"))
		}
		if path == "" {
			result = multierror.Append(result,
				newErr(InvalidConfiguration, "pinnedCertificatePaths", "empty certificate path for "+host))
		}
	}
	if result != nil {
		return result
	}

	paths = copyMap(paths)

	return m.setLatched("pinnedCertificatePaths", func(s *Snapshot) { s.PinnedCertificatePaths = paths })
}

//------------------------------------------------------------------------------

func validateHeaderName(field, name string) error {
	if name == "" {
		return newErr(InvalidConfiguration, field, "empty header name")
	}
	if strings.ContainsAny(name, " \t\r\n:") {
		return newErr(InvalidConfiguration, field, "invalid header name "+name)
	}
	return nil
}

func validateHeaderValue(field, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return newErr(InvalidConfiguration, field, "header value contains a line break")
	}
	return nil
}

func copyMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
