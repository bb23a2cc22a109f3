package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
	"github.com/spf13/cobra"
)

//NewShowCmd returns the command that prints the effective sync configuration
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Show the sync configuration",
		PreRunE: loadConfig,
		RunE:    runShow,
	}
	AddConfigFlags(cmd)
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	m := sharedSettings()

	if err := _config.Sync.Apply(m); err != nil {
		return err
	}

	printSettings(cmd.OutOrStdout(), m)

	return nil
}

func printSettings(w io.Writer, m *syncmanager.Manager) {
	fmt.Fprintf(w, "app-id = %q\n", m.AppID())
	fmt.Fprintf(w, "user-agent = %q\n", m.UserAgent())
	fmt.Fprintf(w, "log = %q\n", m.LogLevel())
	fmt.Fprintf(w, "authorization-header = %q\n", authorizationHeader(m.AuthorizationHeaderName()))

	opts, ok := m.TimeoutOptions()
	if !ok {
		opts = syncmanager.DefaultTimeoutOptions()
	}
	fmt.Fprintf(w, "connect-timeout = %q\n", opts.ConnectTimeout)
	fmt.Fprintf(w, "linger = %q\n", opts.ConnectionLingerTime)
	fmt.Fprintf(w, "ping-period = %q\n", opts.PingKeepalivePeriod)
	fmt.Fprintf(w, "pong-timeout = %q\n", opts.PongKeepaliveTimeout)
	fmt.Fprintf(w, "fast-reconnect = %q\n", opts.FastReconnectLimit)

	printTable(w, "headers", m.CustomRequestHeaders())
	printTable(w, "pinned-certs", m.PinnedCertificatePaths())
}

func printTable(w io.Writer, name string, m map[string]string) {
	if len(m) == 0 {
		return
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\n[%s]\n", name)
	for _, k := range keys {
		fmt.Fprintf(w, "%q = %q\n", k, m[k])
	}
}

func authorizationHeader(name string) string {
	if name == "" {
		return syncmanager.DefaultAuthorizationHeaderName
	}
	return name
}
