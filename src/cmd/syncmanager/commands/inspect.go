package commands

import (
	"fmt"
	"time"

	"github.com/mosaicnetworks/syncmanager/src/store"
	"github.com/spf13/cobra"
)

//NewInspectCmd returns the command that prints the content of the store
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inspect [url...]",
		Short:   "Show the last latched configuration and connection losses",
		PreRunE: loadConfig,
		RunE:    runInspect,
	}
	AddConfigFlags(cmd)
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	db, err := store.NewBadgerStore(_config.Sync.DatabaseDir, _config.Sync.Logger())
	if err != nil {
		return err
	}
	defer db.Close()

	record, err := db.GetSnapshot()
	switch {
	case err == nil:
		fmt.Fprintf(out, "latched at %s\n", record.LatchedAt.Format(time.RFC3339))
		fmt.Fprintf(out, "app-id = %q\n", record.Snapshot.AppID)
		fmt.Fprintf(out, "user-agent = %q\n", record.Snapshot.UserAgent)
		fmt.Fprintf(out, "log = %q\n", record.Snapshot.LogLevel)
		fmt.Fprintf(out, "authorization-header = %q\n", authorizationHeader(record.Snapshot.AuthorizationHeaderName))
		printTable(out, "headers", record.Snapshot.CustomRequestHeaders)
		printTable(out, "pinned-certs", record.Snapshot.PinnedCertificatePaths)
	case store.IsStore(err, store.KeyNotFound):
		fmt.Fprintln(out, "no latched configuration")
	default:
		return err
	}

	for _, server := range args {
		lost, err := db.LastLost(server)
		switch {
		case err == nil:
			fmt.Fprintf(out, "%s lost at %s\n", server, lost.Format(time.RFC3339Nano))
		case store.IsStore(err, store.KeyNotFound):
			fmt.Fprintf(out, "%s never lost\n", server)
		default:
			return err
		}
	}

	return nil
}
