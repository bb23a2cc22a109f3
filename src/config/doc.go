// Package config defines the configuration of a sync client process.
//
// The command line tool and embedders that do not drive the Manager directly
// describe the sync settings with a Config, usually filled by viper from flags,
// environment variables and a syncmanager.toml file in the data directory.
// Config.Apply copies the values onto a syncmanager.Manager before the client
// starts. The data directory may also contain:
//
//  syncmanager.toml // (optional) configuration file read by the CLI.
//  .env // (optional) environment variables loaded before the flags are parsed.
//  badger_db // (optional) the metadata store, when Store is set.
package config
