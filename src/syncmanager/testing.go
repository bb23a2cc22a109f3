package syncmanager

import (
	"testing"

	"github.com/mosaicnetworks/syncmanager/src/common"
)

// NewTestManager returns a Manager that is independent from the shared one,
// with diagnostics written to t. It lets tests of the sync client latch a
// fresh configuration each time. It is the only way besides Shared to obtain a
// usable Manager, and it panics outside of a test binary.
func NewTestManager(t testing.TB) *Manager {
	if !testing.Testing() {
		panic("syncmanager: NewTestManager called outside of a test binary")
	}
	return newManager(common.NewTestEntry(t, common.TestLogLevel))
}
