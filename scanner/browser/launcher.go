package browser

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"gitlab.com/trackerker/trackerk"
)

// GCDLauncher leases a fresh chrome process per scan and opens a single tab in it.
// Nothing is shared between two launched browsers.
type GCDLauncher struct {
	leaser LeaserService
	host   string
}

// NewGCDLauncher using leaser to start browser processes reachable on host
func NewGCDLauncher(leaser LeaserService, host string) *GCDLauncher {
	if host == "" {
		host = "localhost"
	}
	return &GCDLauncher{leaser: leaser, host: host}
}

// Launch a browser, on failure anything already acquired is returned to the leaser
func (l *GCDLauncher) Launch(ctx context.Context, events chan<- *trackerk.NetworkEvent) (trackerk.Browser, error) {
	port, err := l.leaser.Acquire()
	if err != nil {
		return nil, errors.Wrap(err, "acquire browser")
	}

	returnBrowser := func() {
		if err := l.leaser.Return(port); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("port", port).Msg("failed to return browser")
		}
	}

	g := gcd.NewChromeDebugger()
	if err := g.ConnectToInstance(l.host, port); err != nil {
		returnBrowser()
		return nil, errors.Wrap(err, "connect to browser")
	}

	target, err := g.NewTab()
	if err != nil {
		returnBrowser()
		return nil, errors.Wrap(err, "open tab")
	}

	tab := NewTab(ctx, g, target, events)
	tab.release = func() error { return l.leaser.Return(port) }
	tab.SetDisconnectedHandler(func(tab *Tab, reason string) {
		log.Ctx(ctx).Warn().Int64("tab", tab.ID()).Str("port", port).Str("reason", reason).Msg("browser disconnected")
	})
	log.Ctx(ctx).Debug().Int64("tab", tab.ID()).Str("port", port).Msg("browser launched")
	return tab, nil
}

// Cleanup left over browser state
func (l *GCDLauncher) Cleanup() error {
	_, err := l.leaser.Cleanup()
	return err
}
