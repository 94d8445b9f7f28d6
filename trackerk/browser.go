package trackerk

import (
	"context"
	"time"
)

// Browser is a single tab inside an isolated browser session. Network events
// observed by the tab are pushed onto the channel given to Launcher.Launch.
type Browser interface {
	ID() int64
	// Navigate to url, returns once the load event fired or ctx is done
	Navigate(ctx context.Context, url string) error
	// WaitQuiet waits until no requests are in flight and nothing new was seen for quietPeriod
	WaitQuiet(ctx context.Context, quietPeriod time.Duration) error
	// URL of the current document, empty if it can not be determined
	URL(ctx context.Context) string
	// HTML of the rendered document
	HTML(ctx context.Context) (string, error)
	// Cookies in the session's jar
	Cookies(ctx context.Context) ([]*Cookie, error)
	// Close the tab and release the browser process
	Close() error
}

// Launcher starts a fresh, isolated browser session for a single scan
type Launcher interface {
	Launch(ctx context.Context, events chan<- *NetworkEvent) (Browser, error)
}
