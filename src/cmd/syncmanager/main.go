package main

import (
	"os"

	cmd "github.com/mosaicnetworks/syncmanager/src/cmd/syncmanager/commands"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.VersionCmd,
		cmd.NewShowCmd(),
		cmd.NewProbeCmd(),
		cmd.NewInspectCmd(),
	)

	//Do not print usage when error occurs
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
