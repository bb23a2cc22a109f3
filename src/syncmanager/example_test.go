package syncmanager_test

import (
	"fmt"
	"time"

	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
)

func Example() {
	settings := syncmanager.Shared()

	settings.SetUserAgent("example-app/1.0")
	settings.SetLogLevel(syncmanager.LogLevelDebug)
	settings.SetPinnedCertificatePaths(map[string]string{
		"example.com": "/path/to/example.com.cer",
	})

	opts := syncmanager.DefaultTimeoutOptions()
	opts.ConnectionLingerTime = 5 * time.Second
	settings.SetTimeoutOptions(opts)

	stored, _ := settings.TimeoutOptions()
	fmt.Println(settings.LogLevel(), stored.ConnectionLingerTime)
	// Output: debug 5s
}
