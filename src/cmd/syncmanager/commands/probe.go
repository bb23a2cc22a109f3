package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/mosaicnetworks/syncmanager/src/client"
	"github.com/mosaicnetworks/syncmanager/src/store"
	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//NewProbeCmd returns the command that opens a session on a sync server
func NewProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "probe [url]",
		Short:   "Open a session on a sync server and report the connection state",
		Args:    cobra.ExactArgs(1),
		PreRunE: loadConfig,
		RunE:    runProbe,
	}
	AddConfigFlags(cmd)
	cmd.Flags().String("token", _config.Token, "Access token")
	cmd.Flags().Duration("wait", _config.Wait, "Time to keep the session open")
	return cmd
}

func runProbe(cmd *cobra.Command, args []string) error {
	serverURL := args[0]
	logger := _config.Sync.Logger()
	out := cmd.OutOrStdout()

	m := sharedSettings()

	if err := _config.Sync.Apply(m); err != nil {
		return err
	}

	err := m.SetErrorHandler(func(err error, session syncmanager.Session) {
		fields := logrus.Fields{"server": serverURL}
		if session != nil {
			fields["session"] = session.ID()
		}
		logger.WithFields(fields).WithError(err).Error("Sync error")
	})
	if err != nil {
		return err
	}

	opts := []client.Option{client.WithLogger(logger)}

	if _config.Sync.Store {
		db, err := store.NewBadgerStore(_config.Sync.DatabaseDir, logger)
		if err != nil {
			logger.Error("Cannot open store:", err)
			return err
		}
		defer db.Close()
		opts = append(opts, client.WithStore(db))
	}

	c := client.New(m, opts...)
	defer c.Close()

	session, err := c.OpenSession(context.Background(), client.SessionConfig{
		ID:          "probe",
		ServerURL:   serverURL,
		AccessToken: _config.Token,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "connected to %s\n", serverURL)
	fmt.Fprintf(out, "upload active: %v\n", session.UploadActive())

	deadline := time.After(_config.Wait)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for session.Connected() {
		select {
		case <-deadline:
			session.Close()
			fmt.Fprintln(out, "closed")
			return nil
		case <-ticker.C:
		}
	}

	session.Close()

	return fmt.Errorf("connection to %s lost", serverURL)
}
