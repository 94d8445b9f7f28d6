package mock

import (
	"context"
	"sync/atomic"
	"time"

	"gitlab.com/trackerker/trackerk"
)

// Browser is a fake tab, every call is recorded
type Browser struct {
	IDFn func() int64

	NavigateFn     func(ctx context.Context, url string) error
	NavigateCalled bool

	WaitQuietFn     func(ctx context.Context, quietPeriod time.Duration) error
	WaitQuietCalled bool

	URLFn     func(ctx context.Context) string
	URLCalled bool

	HTMLFn     func(ctx context.Context) (string, error)
	HTMLCalled bool

	CookiesFn     func(ctx context.Context) ([]*trackerk.Cookie, error)
	CookiesCalled bool

	CloseFn    func() error
	CloseCalls int32

	release func()
}

// ID of the browser
func (b *Browser) ID() int64 {
	return b.IDFn()
}

// Navigate to url
func (b *Browser) Navigate(ctx context.Context, url string) error {
	b.NavigateCalled = true
	return b.NavigateFn(ctx, url)
}

// WaitQuiet for the network
func (b *Browser) WaitQuiet(ctx context.Context, quietPeriod time.Duration) error {
	b.WaitQuietCalled = true
	return b.WaitQuietFn(ctx, quietPeriod)
}

// URL of the page
func (b *Browser) URL(ctx context.Context) string {
	b.URLCalled = true
	return b.URLFn(ctx)
}

// HTML of the page
func (b *Browser) HTML(ctx context.Context) (string, error) {
	b.HTMLCalled = true
	return b.HTMLFn(ctx)
}

// Cookies of the session
func (b *Browser) Cookies(ctx context.Context) ([]*trackerk.Cookie, error) {
	b.CookiesCalled = true
	return b.CookiesFn(ctx)
}

// Close the browser, every call releases so a double close shows up in the launcher count
func (b *Browser) Close() error {
	atomic.AddInt32(&b.CloseCalls, 1)
	if b.release != nil {
		b.release()
	}
	return b.CloseFn()
}

// MakeMockBrowser that loads MockPageHTML and emits MakeMockEvents onto events during Navigate
func MakeMockBrowser(events chan<- *trackerk.NetworkEvent) *Browser {
	b := &Browser{}
	b.IDFn = func() int64 { return 1 }
	b.NavigateFn = func(ctx context.Context, url string) error {
		for _, evt := range MakeMockEvents() {
			events <- evt
		}
		return nil
	}
	b.WaitQuietFn = func(ctx context.Context, quietPeriod time.Duration) error {
		return nil
	}
	b.URLFn = func(ctx context.Context) string {
		return MockPageURL
	}
	b.HTMLFn = func(ctx context.Context) (string, error) {
		return MockPageHTML, nil
	}
	b.CookiesFn = func(ctx context.Context) ([]*trackerk.Cookie, error) {
		return MakeMockCookies(), nil
	}
	b.CloseFn = func() error {
		return nil
	}
	return b
}

// Launcher hands out browsers and counts how many are currently acquired
type Launcher struct {
	LaunchFn    func(ctx context.Context, events chan<- *trackerk.NetworkEvent) (trackerk.Browser, error)
	LaunchCalls int32

	active int32
}

// Launch a browser
func (l *Launcher) Launch(ctx context.Context, events chan<- *trackerk.NetworkEvent) (trackerk.Browser, error) {
	atomic.AddInt32(&l.LaunchCalls, 1)
	return l.LaunchFn(ctx, events)
}

// Active browsers that have been launched but not closed
func (l *Launcher) Active() int32 {
	return atomic.LoadInt32(&l.active)
}

// MakeMockLauncher that builds a new browser for every launch with build.
// Browsers must be closed for Active to return to zero.
func MakeMockLauncher(build func(events chan<- *trackerk.NetworkEvent) *Browser) *Launcher {
	l := &Launcher{}
	l.LaunchFn = func(ctx context.Context, events chan<- *trackerk.NetworkEvent) (trackerk.Browser, error) {
		b := build(events)
		atomic.AddInt32(&l.active, 1)
		b.release = func() { atomic.AddInt32(&l.active, -1) }
		return b, nil
	}
	return l
}

// MakeMockFailingLauncher never manages to start a browser
func MakeMockFailingLauncher(err error) *Launcher {
	l := &Launcher{}
	l.LaunchFn = func(ctx context.Context, events chan<- *trackerk.NetworkEvent) (trackerk.Browser, error) {
		return nil, err
	}
	return l
}
