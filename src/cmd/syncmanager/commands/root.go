package commands

import (
	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()

	// sharedSettings returns the Manager the commands configure.
	sharedSettings = syncmanager.Shared
)

//RootCmd is the root command for syncmanager
var RootCmd = &cobra.Command{
	Use:              "syncmanager",
	Short:            "sync client configuration and connection probe",
	TraverseChildren: true,
}
