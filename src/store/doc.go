// Package store persists the metadata of the sync client in a Badger database:
// the configuration latched at the last start, and for each server the time
// the last connection to it was lost. The latter lets a fast reconnect be
// recognised across restarts of the application.
package store
