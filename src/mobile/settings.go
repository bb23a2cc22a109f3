package mobile

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
)

// Settings exposes the shared sync configuration with types that gomobile can
// bind. Maps are passed as JSON objects of strings.
type Settings struct {
	manager *syncmanager.Manager
}

// SharedSettings returns the Settings backed by the process-wide Manager.
func SharedSettings() *Settings {
	return &Settings{manager: syncmanager.Shared()}
}

func (s *Settings) AppID() string {
	return s.manager.AppID()
}

func (s *Settings) SetAppID(appID string) error {
	return s.manager.SetAppID(appID)
}

func (s *Settings) UserAgent() string {
	return s.manager.UserAgent()
}

func (s *Settings) SetUserAgent(userAgent string) error {
	return s.manager.SetUserAgent(userAgent)
}

// LogLevel returns one of the LogLevel constants.
func (s *Settings) LogLevel() int {
	return int(s.manager.LogLevel())
}

// SetLogLevel takes one of the LogLevel constants.
func (s *Settings) SetLogLevel(level int) error {
	if level < 0 {
		level = LogLevelAll + 1
	}
	return s.manager.SetLogLevel(syncmanager.LogLevel(level))
}

// SetLogHandler routes the sync log messages to handler. A nil handler
// restores the default logger.
func (s *Settings) SetLogHandler(handler LogHandler) error {
	if handler == nil {
		return s.manager.SetLogger(nil)
	}
	return s.manager.SetLogger(func(level syncmanager.LogLevel, message string) {
		handler.OnLog(int(level), message)
	})
}

// SetExceptionHandler routes the sync errors to handler. It can be changed at
// any time.
func (s *Settings) SetExceptionHandler(handler ExceptionHandler) error {
	if handler == nil {
		return s.manager.SetErrorHandler(nil)
	}
	return s.manager.SetErrorHandler(func(err error, session syncmanager.Session) {
		id := ""
		if session != nil {
			id = session.ID()
		}
		handler.OnException(id, err.Error())
	})
}

func (s *Settings) AuthorizationHeaderName() string {
	return s.manager.AuthorizationHeaderName()
}

func (s *Settings) SetAuthorizationHeaderName(name string) error {
	return s.manager.SetAuthorizationHeaderName(name)
}

// CustomRequestHeaders returns the custom headers as a JSON object.
func (s *Settings) CustomRequestHeaders() string {
	return encodeMap(s.manager.CustomRequestHeaders())
}

// SetCustomRequestHeaders takes the custom headers as a JSON object.
func (s *Settings) SetCustomRequestHeaders(jsonHeaders string) error {
	headers, err := decodeMap(jsonHeaders)
	if err != nil {
		return err
	}
	return s.manager.SetCustomRequestHeaders(headers)
}

// PinnedCertificatePaths returns the hostname to certificate path map as a
// JSON object.
func (s *Settings) PinnedCertificatePaths() string {
	return encodeMap(s.manager.PinnedCertificatePaths())
}

// SetPinnedCertificatePaths takes the hostname to certificate path map as a
// JSON object.
func (s *Settings) SetPinnedCertificatePaths(jsonPaths string) error {
	paths, err := decodeMap(jsonPaths)
	if err != nil {
		return err
	}
	return s.manager.SetPinnedCertificatePaths(paths)
}

// TimeoutOptions returns a copy of the timeout options, or nil when none are
// set.
func (s *Settings) TimeoutOptions() *TimeoutOptions {
	opts, ok := s.manager.TimeoutOptions()
	if !ok {
		return nil
	}
	return fromOptions(opts)
}

// SetTimeoutOptions stores a copy of opts. nil clears the options.
func (s *Settings) SetTimeoutOptions(opts *TimeoutOptions) error {
	if opts == nil {
		return s.manager.ClearTimeoutOptions()
	}
	options, err := opts.toOptions()
	if err != nil {
		return err
	}
	return s.manager.SetTimeoutOptions(options)
}

func encodeMap(m map[string]string) string {
	if m == nil {
		return ""
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(m); err != nil {
		return ""
	}

	return strings.TrimSpace(buf.String())
}

func decodeMap(s string) (map[string]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var m map[string]string
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}

	return m, nil
}
