package mobile

import (
	"context"
	"fmt"

	"github.com/mosaicnetworks/syncmanager/src/client"
	"github.com/mosaicnetworks/syncmanager/src/store"
	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
	"github.com/sirupsen/logrus"
)

// Client is the mobile entry point of the sync client. Errors are reported to
// the ExceptionHandler set on the Settings.
type Client struct {
	client *client.Client
	store  *store.BadgerStore
	logger *logrus.Entry
}

// NewClient creates a client using the shared Settings. When storePath is not
// empty, connection metadata is kept in a database in that directory.
func NewClient(storePath string) *Client {
	return newClient(syncmanager.Shared(), storePath)
}

func newClient(manager *syncmanager.Manager, storePath string) *Client {
	logger := logrus.New().WithField("prefix", "mobile")

	c := &Client{logger: logger}

	opts := []client.Option{client.WithLogger(logger)}

	if storePath != "" {
		db, err := store.NewBadgerStore(storePath, logger)
		if err != nil {
			logger.WithError(err).Error("Cannot open store, continuing without it")
		} else {
			c.store = db
			opts = append(opts, client.WithStore(db))
		}
	}

	c.client = client.New(manager, opts...)

	return c
}

// OpenSession opens a session on serverURL. It returns nil on error, after
// reporting the error to the exception handler.
func (c *Client) OpenSession(sessionID string, serverURL string, accessToken string) *Session {
	s, err := c.client.OpenSession(context.Background(), client.SessionConfig{
		ID:          sessionID,
		ServerURL:   serverURL,
		AccessToken: accessToken,
	})
	if err != nil {
		c.client.ReportError(fmt.Errorf("Cannot open session %s: %v", sessionID, err), nil)
		return nil
	}

	return &Session{session: s}
}

// Shutdown closes every connection and the store.
func (c *Client) Shutdown() {
	c.client.Close()
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.logger.WithError(err).Error("Cannot close store")
		}
	}
}

// Session is an open sync session.
type Session struct {
	session *client.Session
}

func (s *Session) ID() string {
	return s.session.ID()
}

func (s *Session) UploadActive() bool {
	return s.session.UploadActive()
}

func (s *Session) Connected() bool {
	return s.session.Connected()
}

func (s *Session) MarkDownloadComplete() {
	s.session.MarkDownloadComplete()
}

// Close detaches the session from its connection.
func (s *Session) Close() {
	s.session.Close()
}
