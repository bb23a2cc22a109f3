package client

import "context"

// Session is a sync session attached to a connection. Its state is guarded by
// the connection's lock.
type Session struct {
	id    string
	token string
	conn  *connection

	uploadActive     bool
	downloadComplete bool
}

// ID implements the syncmanager.Session interface.
func (s *Session) ID() string {
	return s.id
}

// UploadActive reports whether the session may upload changes. Uploads start
// immediately after a fast reconnect, otherwise once the initial download has
// completed.
func (s *Session) UploadActive() bool {
	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()
	return s.uploadActive
}

// MarkDownloadComplete records that the initial download completed, which
// activates uploads while the connection is up.
func (s *Session) MarkDownloadComplete() {
	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()

	if _, ok := s.conn.sessions[s]; !ok {
		return
	}

	s.downloadComplete = true
	if s.conn.ws != nil {
		s.uploadActive = true
	}
}

// Connected reports whether the session is open and its connection is up.
func (s *Session) Connected() bool {
	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()
	_, ok := s.conn.sessions[s]
	return ok && s.conn.ws != nil
}

// Reconnect re-establishes the session's connection after it was lost. It does
// nothing when the connection is up.
func (s *Session) Reconnect(ctx context.Context) error {
	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()

	if _, ok := s.conn.sessions[s]; !ok {
		return ErrSessionClosed
	}

	return s.conn.connectLocked(ctx, s.token)
}

// Close detaches the session from its connection. The connection lingers if
// this was its last session.
func (s *Session) Close() error {
	s.conn.detach(s)
	return nil
}
