package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/trackerker/trackerk"
)

// size of the buffer between the tab's event subscriptions and the correlator
const eventBufferSize = 1024

// Session runs one isolated capture per call to Run. A Session holds no state
// between runs and may be used from multiple goroutines.
type Session struct {
	launcher    trackerk.Launcher
	settleTime  time.Duration
	quietPeriod time.Duration
}

// NewSession using launcher to get a fresh browser for every run
func NewSession(launcher trackerk.Launcher, cfg *trackerk.Config) *Session {
	if cfg == nil {
		cfg = trackerk.DefaultConfig()
	}
	return &Session{
		launcher:    launcher,
		settleTime:  cfg.SettleTime,
		quietPeriod: cfg.QuietPeriod,
	}
}

// Run a capture of url. Navigation and the network quiet wait are each bounded by navTimeout.
// Anything that goes wrong after the browser launched results in a partial capture, the only
// error returned is ErrLaunchFailed. Cancelling ctx aborts the capture and tears down immediately.
func (s *Session) Run(ctx context.Context, url string, navTimeout time.Duration) (capture *trackerk.Capture, err error) {
	if navTimeout <= 0 {
		navTimeout = trackerk.DefaultConfig().NavTimeout
	}
	logger := log.Ctx(ctx).With().Str("url", url).Logger()

	events := make(chan *trackerk.NetworkEvent, eventBufferSize)
	stop := make(chan struct{})
	drained := make(chan struct{})
	correlator := NewCorrelator(logger)
	go func() {
		defer close(drained)
		correlator.Drain(events, stop)
	}()

	b, launchErr := s.launch(ctx, events)
	if launchErr != nil {
		close(stop)
		<-drained
		if ctx.Err() != nil {
			return &trackerk.Capture{URL: url, Outcome: trackerk.Partial(trackerk.PartialCancelled), Completed: time.Now()}, nil
		}
		logger.Error().Err(launchErr).Msg("failed to launch browser")
		return nil, errors.Wrap(trackerk.ErrLaunchFailed, launchErr.Error())
	}

	capture = &trackerk.Capture{URL: url, Outcome: trackerk.Complete()}

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Str("panic", fmt.Sprintf("%v", r)).Msg("capture failed, returning partial result")
			if !capture.Outcome.IsPartial() {
				capture.Outcome = trackerk.Partial(trackerk.PartialNavigationError)
			}
			err = nil
		}

		teardown(logger, b)
		close(stop)
		<-drained

		capture.Exchanges = correlator.Exchanges()
		capture.Completed = time.Now()
		logger.Info().Str("status", string(capture.Outcome.Status)).
			Str("reason", capture.Outcome.Reason).
			Int("exchanges", len(capture.Exchanges)).
			Int("misses", correlator.Misses()).
			Msg("capture finished")
	}()

	if !s.load(ctx, logger, b, url, navTimeout, capture) {
		return capture, nil
	}

	if ctx.Err() != nil {
		capture.Outcome = trackerk.Partial(trackerk.PartialCancelled)
		return capture, nil
	}
	s.snapshot(ctx, logger, b, capture)
	return capture, nil
}

// launch a browser, a panicking launcher is a failed launch
func (s *Session) launch(ctx context.Context, events chan<- *trackerk.NetworkEvent) (b trackerk.Browser, err error) {
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = errors.Errorf("launcher panicked: %v", r)
		}
	}()
	return s.launcher.Launch(ctx, events)
}

// load navigates, waits for quiet and settles. Returns false if ctx was cancelled
// and the run should go straight to teardown.
func (s *Session) load(ctx context.Context, logger zerolog.Logger, b trackerk.Browser, url string, navTimeout time.Duration, capture *trackerk.Capture) bool {
	navCtx, cancel := context.WithTimeout(ctx, navTimeout)
	err := b.Navigate(navCtx, url)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			capture.Outcome = trackerk.Partial(trackerk.PartialCancelled)
			return false
		}
		if errors.Is(err, trackerk.ErrNavigationTimedOut) {
			logger.Warn().Dur("timeout", navTimeout).Msg("navigation timed out, capturing what loaded")
			capture.Outcome = trackerk.Partial(trackerk.PartialNavigationTimeout)
		} else {
			logger.Warn().Err(err).Msg("navigation failed, capturing what loaded")
			capture.Outcome = trackerk.Partial(trackerk.PartialNavigationError)
		}
		return true
	}

	quietCtx, cancel := context.WithTimeout(ctx, navTimeout)
	err = b.WaitQuiet(quietCtx, s.quietPeriod)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			capture.Outcome = trackerk.Partial(trackerk.PartialCancelled)
			return false
		}
		if errors.Is(err, trackerk.ErrTimedOut) {
			logger.Warn().Dur("timeout", navTimeout).Msg("network never went quiet")
			capture.Outcome = trackerk.Partial(trackerk.PartialQuietTimeout)
		} else {
			logger.Warn().Err(err).Msg("waiting for network quiet failed")
			capture.Outcome = trackerk.Partial(trackerk.PartialNavigationError)
		}
		return true
	}

	settle := time.NewTimer(s.settleTime)
	defer settle.Stop()
	select {
	case <-settle.C:
	case <-ctx.Done():
		capture.Outcome = trackerk.Partial(trackerk.PartialCancelled)
		return false
	}
	return true
}

// snapshot the document url, html and cookie jar, failures keep whatever was retrieved
func (s *Session) snapshot(ctx context.Context, logger zerolog.Logger, b trackerk.Browser, capture *trackerk.Capture) {
	capture.FinalURL = b.URL(ctx)
	if capture.FinalURL != "" && capture.FinalURL != capture.URL {
		logger.Debug().Str("final_url", capture.FinalURL).Msg("page was redirected")
	}

	html, err := b.HTML(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to snapshot html")
		s.markSnapshotFailed(capture)
	}
	capture.HTML = html

	cookies, err := b.Cookies(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to snapshot cookies")
		s.markSnapshotFailed(capture)
	}
	capture.Cookies = cookies
}

func (s *Session) markSnapshotFailed(capture *trackerk.Capture) {
	if !capture.Outcome.IsPartial() {
		capture.Outcome = trackerk.Partial(trackerk.PartialSnapshotError)
	}
}

// teardown closes the browser, errors and panics are logged and dropped
func teardown(logger zerolog.Logger, b trackerk.Browser) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Str("panic", fmt.Sprintf("%v", r)).Msg("browser teardown panicked")
		}
	}()

	if err := b.Close(); err != nil {
		logger.Warn().Err(err).Int64("browser_id", b.ID()).Msg("failed to close browser")
	}
}
