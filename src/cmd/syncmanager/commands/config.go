package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mosaicnetworks/syncmanager/src/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables read by the CLI, eg.
// SYNCMANAGER_APP_ID.
const EnvPrefix = "SYNCMANAGER"

//CLIConfig contains configuration for the commands
type CLIConfig struct {
	Sync config.Config `mapstructure:",squash"`

	// HeaderFlags and PinFlags are NAME=VALUE pairs given on the command line.
	// They are merged into Sync.Headers and Sync.PinnedCerts.
	HeaderFlags []string `mapstructure:"header"`
	PinFlags    []string `mapstructure:"pin"`

	// Token is the access token sent by the probe command.
	Token string `mapstructure:"token"`

	// Wait is how long the probe command keeps its session open.
	Wait time.Duration `mapstructure:"wait"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		Sync: *config.NewDefaultConfig(),
		Wait: 5 * time.Second,
	}
}

//AddConfigFlags adds the sync configuration flags to cmd
func AddConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.Sync.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.Sync.LogLevel, "off, fatal, error, warn, info, detail, debug, trace, all")
	cmd.Flags().String("log-file", _config.Sync.LogFile, "Also write logs to this file, in JSON")

	// Request
	cmd.Flags().String("app-id", _config.Sync.AppID, "Reverse-DNS identifier of the application")
	cmd.Flags().String("user-agent", _config.Sync.UserAgent, "User-Agent header of sync connections")
	cmd.Flags().String("authorization-header", _config.Sync.AuthorizationHeader, "Header carrying the access token (default Authorization)")
	cmd.Flags().StringSlice("header", _config.HeaderFlags, "Custom request header, NAME=VALUE")
	cmd.Flags().StringSlice("pin", _config.PinFlags, "Pinned certificate, HOSTNAME=PATH")

	// Timeouts
	cmd.Flags().Bool("set-timeouts", _config.Sync.SetTimeouts, "Set the timeouts below instead of the client defaults")
	cmd.Flags().Duration("connect-timeout", _config.Sync.ConnectTimeout, "Connect timeout, 0 for none")
	cmd.Flags().Duration("linger", _config.Sync.ConnectionLingerTime, "Time an idle connection is kept open")
	cmd.Flags().Duration("ping-period", _config.Sync.PingKeepalivePeriod, "Time between PINGs, 0 disables the heartbeat")
	cmd.Flags().Duration("pong-timeout", _config.Sync.PongKeepaliveTimeout, "Time to wait for a PONG, 0 disables detection")
	cmd.Flags().Duration("fast-reconnect", _config.Sync.FastReconnectLimit, "Maximum time since the last loss for a fast reconnect")

	// Store
	cmd.Flags().Bool("store", _config.Sync.Store, "Keep connection metadata in badgerDB")
	cmd.Flags().String("db", _config.Sync.DatabaseDir, "Database directory")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.Sync.SetDataDir(_config.Sync.DataDir)

	if err := mergeAssignments(_config.HeaderFlags, &_config.Sync.Headers); err != nil {
		return err
	}
	if err := mergeAssignments(_config.PinFlags, &_config.Sync.PinnedCerts); err != nil {
		return err
	}

	logFields := logrus.Fields{
		"sync.DataDir":             _config.Sync.DataDir,
		"sync.AppID":               _config.Sync.AppID,
		"sync.UserAgent":           _config.Sync.UserAgent,
		"sync.LogLevel":            _config.Sync.LogLevel,
		"sync.AuthorizationHeader": _config.Sync.AuthorizationHeader,
		"sync.Headers":             len(_config.Sync.Headers),
		"sync.PinnedCerts":         len(_config.Sync.PinnedCerts),
		"sync.Store":               _config.Sync.Store,
	}

	if _config.Sync.SetTimeouts {
		logFields["sync.ConnectTimeout"] = _config.Sync.ConnectTimeout
		logFields["sync.ConnectionLingerTime"] = _config.Sync.ConnectionLingerTime
		logFields["sync.PingKeepalivePeriod"] = _config.Sync.PingKeepalivePeriod
		logFields["sync.PongKeepaliveTimeout"] = _config.Sync.PongKeepaliveTimeout
		logFields["sync.FastReconnectLimit"] = _config.Sync.FastReconnectLimit
	}

	if _config.Sync.Store {
		logFields["sync.DatabaseDir"] = _config.Sync.DatabaseDir
	}

	_config.Sync.Logger().WithFields(logFields).Debug(cmd.Name())

	return nil
}

// Bind all flags, load the dotenv file and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Variables already set in the environment take precedence over the
	// dotenv file.
	datadir, err := cmd.Flags().GetString("datadir")
	if err != nil {
		return err
	}
	if err := godotenv.Load(envFile(datadir)); err != nil && !os.IsNotExist(err) {
		return err
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// first unmarshal to read from CLI flags and the environment
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/syncmanager.toml (.json, .yaml also work)
	viper.SetConfigName(config.DefaultConfigFile) // name of config file (without extension)
	viper.AddConfigPath(_config.Sync.DataDir)     // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Sync.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Sync.Logger().Debugf("No config file found in: %s", _config.Sync.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}

func envFile(datadir string) string {
	c := config.Config{DataDir: datadir}
	return c.EnvFile()
}

// mergeAssignments parses NAME=VALUE pairs into dst, creating it if needed.
func mergeAssignments(pairs []string, dst *map[string]string) error {
	for _, p := range pairs {
		i := strings.Index(p, "=")
		if i <= 0 {
			return fmt.Errorf("expected NAME=VALUE, got %q", p)
		}
		if *dst == nil {
			*dst = make(map[string]string)
		}
		(*dst)[strings.TrimSpace(p[:i])] = strings.TrimSpace(p[i+1:])
	}
	return nil
}
