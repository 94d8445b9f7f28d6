package browser

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/trackerker/trackerk"

	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
)

// Tab is a chromium browser tab we use for instrumentation
type Tab struct {
	g                   *gcd.Gcd
	t                   *gcd.ChromeTarget
	id                  int64
	events              chan<- *trackerk.NetworkEvent // owned by the session, we only ever send
	inflightLock        sync.Mutex
	inflight            map[string]struct{}    // request ids that have not finished or failed
	lastActivity        atomic.Value           // time.Time of the last network event
	isNavigatingFlag    atomic.Value           // are we currently navigating (between Page.Navigate -> page.loadEventFired)
	navigationCh        chan struct{}          // for receiving navigation complete messages while isNavigating is true
	crashedCh           chan string            // the chrome tab crashed with a reason
	exitCh              chan struct{}          // for when we close the tab, kill go routines
	closeOnce           sync.Once              // Close may only tear down once
	release             func() error           // returns the browser process to the leaser
	handlerLock         sync.RWMutex
	disconnectedHandler TabDisconnectedHandler // called with reason the chrome tab was disconnected from the debugger service
}

// NewTab to use, network events are sent to events until the tab is closed
func NewTab(ctx context.Context, gcdBrowser *gcd.Gcd, tab *gcd.ChromeTarget, events chan<- *trackerk.NetworkEvent) *Tab {
	t := &Tab{
		g:            gcdBrowser,
		t:            tab,
		events:       events,
		inflight:     make(map[string]struct{}),
		navigationCh: make(chan struct{}, 1), // for signaling navigation complete
		crashedCh:    make(chan string, 1),   // reason the tab crashed/was disconnected.
		exitCh:       make(chan struct{}),
		release:      func() error { return nil },
	}
	t.id = trackerk.GetBrowserID()
	t.lastActivity.Store(time.Now())
	t.disconnectedHandler = t.defaultDisconnectedHandler
	t.subscribeBrowserEvents(ctx)
	return t
}

// SetDisconnectedHandler so caller can trap when the debugger was disconnected/crashed.
func (t *Tab) SetDisconnectedHandler(handlerFn TabDisconnectedHandler) {
	t.handlerLock.Lock()
	defer t.handlerLock.Unlock()
	t.disconnectedHandler = handlerFn
}

func (t *Tab) defaultDisconnectedHandler(tab *Tab, reason string) {
	log.Debug().Msgf("tab %s tabID: %s", reason, tab.t.Target.Id)
}

// ID of this browser (tab)
func (t *Tab) ID() int64 {
	return t.id
}

// Navigate to url and wait for the load event. Returns ErrNavigationTimedOut if
// ctx expires before the page loaded.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	// clear out a load event from a previous navigation
	select {
	case <-t.navigationCh:
	default:
	}

	t.setIsNavigating(true)
	defer t.setIsNavigating(false)

	navErr := make(chan error, 1)
	go func() {
		navParams := &gcdapi.PageNavigateParams{Url: url, TransitionType: "typed"}
		_, _, errText, err := t.t.Page.NavigateWithParams(navParams)
		if err != nil {
			navErr <- err
			return
		}
		if errText != "" {
			navErr <- errors.Wrap(ErrNavigating, errText)
			return
		}
		navErr <- nil
	}()

	select {
	case err := <-navErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		return ctxErr(ctx, ErrNavigationTimedOut)
	case reason := <-t.crashedCh:
		return errors.Wrap(ErrTabCrashed, reason)
	case <-t.exitCh:
		return ErrTabClosing
	}

	select {
	case <-t.navigationCh:
		return nil
	case <-ctx.Done():
		return ctxErr(ctx, ErrNavigationTimedOut)
	case reason := <-t.crashedCh:
		return errors.Wrap(ErrTabCrashed, reason)
	case <-t.exitCh:
		return ErrTabClosing
	}
}

// WaitQuiet waits for no requests to be in flight and no network activity for
// quietPeriod. Returns ErrTimedOut if ctx expires first.
func (t *Tab) WaitQuiet(ctx context.Context, quietPeriod time.Duration) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case reason := <-t.crashedCh:
			return errors.Wrap(ErrTabCrashed, reason)
		case <-ctx.Done():
			return ctxErr(ctx, ErrTimedOut)
		case <-t.exitCh:
			return ErrTabClosing
		case <-ticker.C:
			if t.InflightCount() == 0 && time.Since(t.lastActivityTime()) >= quietPeriod {
				log.Ctx(ctx).Debug().Int64("tab", t.id).Msg("network quiet")
				return nil
			}
		}
	}
}

// HTML serializes the current DOM
func (t *Tab) HTML(ctx context.Context) (string, error) {
	node, err := t.t.DOM.GetDocument(-1, true)
	if err != nil {
		return "", errors.Wrap(err, "failed to get document")
	}
	html, err := t.t.DOM.GetOuterHTMLWithParams(&gcdapi.DOMGetOuterHTMLParams{
		NodeId: node.NodeId,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to get outer html")
	}
	return html, nil
}

// Cookies from the browser's cookie jar, the profile is fresh so this is only
// what this scan set
func (t *Tab) Cookies(ctx context.Context) ([]*trackerk.Cookie, error) {
	cookies, err := t.t.Network.GetAllCookies()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get cookies")
	}
	return GCDCookieToTrackerk(cookies), nil
}

// URL of the current document by looking at the navigation history
func (t *Tab) URL(ctx context.Context) string {
	_, entries, err := t.t.Page.GetNavigationHistory()
	if err != nil || len(entries) == 0 {
		return ""
	}
	return entries[len(entries)-1].Url
}

// Close the tab and return the browser process. Safe to call more than once,
// only the first call does anything.
func (t *Tab) Close() error {
	var closeErrs []string

	t.closeOnce.Do(func() {
		close(t.exitCh)

		if err := t.g.CloseTab(t.t); err != nil {
			closeErrs = append(closeErrs, "close tab: "+err.Error())
		}

		if err := t.release(); err != nil {
			closeErrs = append(closeErrs, "release browser: "+err.Error())
		}
	})

	if len(closeErrs) > 0 {
		return errors.New(strings.Join(closeErrs, "; "))
	}
	return nil
}

// InflightCount of requests that have not finished or failed yet
func (t *Tab) InflightCount() int {
	t.inflightLock.Lock()
	defer t.inflightLock.Unlock()
	return len(t.inflight)
}

func (t *Tab) requestStarted(requestID string) {
	t.inflightLock.Lock()
	t.inflight[requestID] = struct{}{}
	t.inflightLock.Unlock()
	t.lastActivity.Store(time.Now())
}

func (t *Tab) requestDone(requestID string) {
	t.inflightLock.Lock()
	delete(t.inflight, requestID)
	t.inflightLock.Unlock()
	t.lastActivity.Store(time.Now())
}

func (t *Tab) lastActivityTime() time.Time {
	if last, ok := t.lastActivity.Load().(time.Time); ok {
		return last
	}
	return time.Time{}
}

func (t *Tab) setIsNavigating(set bool) {
	t.isNavigatingFlag.Store(set)
}

// IsNavigating answers if we currently navigating
func (t *Tab) IsNavigating() bool {
	if flag, ok := t.isNavigatingFlag.Load().(bool); ok {
		return flag
	}
	return false
}

// dispatch a network event to the session, never blocks once the tab is closed
func (t *Tab) dispatch(evt *trackerk.NetworkEvent) {
	select {
	case t.events <- evt:
	case <-t.exitCh:
	}
}

// ctxErr maps a deadline to timeoutErr, cancellation is returned as is
func ctxErr(ctx context.Context, timeoutErr error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return timeoutErr
	}
	return ctx.Err()
}
