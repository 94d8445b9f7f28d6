package scanner

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	uuid "github.com/satori/go.uuid"

	"gitlab.com/trackerker/scanner/cookies"
	"gitlab.com/trackerker/scanner/domain"
	"gitlab.com/trackerker/scanner/extract"
	"gitlab.com/trackerker/scanner/report"
	"gitlab.com/trackerker/scanner/score"
	"gitlab.com/trackerker/trackerk"
)

// Validator decides if a url may be scanned at all
type Validator interface {
	Validate(ctx context.Context, rawURL string) error
}

// Capturer runs a browser capture of a url
type Capturer interface {
	Run(ctx context.Context, url string, navTimeout time.Duration) (*trackerk.Capture, error)
}

// Scanner is our engine
type Scanner struct {
	cfg     *trackerk.Config
	guard   Validator
	session Capturer
	metrics *Metrics
}

// New engine
func New(cfg *trackerk.Config, guard Validator, session Capturer) *Scanner {
	if cfg == nil {
		cfg = trackerk.DefaultConfig()
	}
	return &Scanner{cfg: cfg, guard: guard, session: session}
}

// SetMetrics so scans are counted
func (s *Scanner) SetMetrics(metrics *Metrics) *Scanner {
	s.metrics = metrics
	return s
}

// Scan the url in req. The target is validated before any browser work is done, a
// rejected target returns a *trackerk.ValidationError. Capture problems never fail the
// scan, they show up as a partial capture in the result. The only other error is
// trackerk.ErrLaunchFailed when no browser could be started at all.
func (s *Scanner) Scan(ctx context.Context, req trackerk.ScanRequest) (*trackerk.ScanResult, error) {
	id := uuid.NewV4().String()
	logger := log.With().Str("scan_id", id).Str("url", req.URL).Logger()
	ctx = logger.WithContext(ctx)

	if err := s.guard.Validate(ctx, req.URL); err != nil {
		logger.Warn().Err(err).Msg("target rejected")
		s.metrics.rejected()
		return nil, err
	}

	navTimeout := req.NavTimeout
	if navTimeout <= 0 {
		navTimeout = s.cfg.NavTimeout
	}

	started := time.Now()
	logger.Info().Dur("nav_timeout", navTimeout).Msg("starting capture")
	capture, err := s.session.Run(ctx, req.URL, navTimeout)
	if err != nil {
		logger.Error().Err(err).Msg("capture failed")
		s.metrics.failed(started)
		return nil, err
	}

	mainDomain := domain.Registered(req.URL)
	pageURL := req.URL
	if capture.FinalURL != "" {
		pageURL = capture.FinalURL
	}
	srcs := extract.ScriptSources(capture.HTML, pageURL)
	cookieInfo := cookies.Classify(capture.Cookies, mainDomain)
	thirdPartyDomains := report.ThirdPartyDomains(capture.Exchanges, mainDomain)
	points := score.Compute(len(thirdPartyDomains), len(cookieInfo))

	result := report.Build(report.Input{
		ID:                id,
		URL:               req.URL,
		MainDomain:        mainDomain,
		Capture:           capture,
		ScriptSrcs:        srcs,
		ThirdPartyScripts: extract.ThirdPartyScripts(srcs, mainDomain),
		ThirdPartyDomains: thirdPartyDomains,
		Cookies:           cookieInfo,
		Score:             points,
		Grade:             score.GradeFor(points),
	})

	s.metrics.scanned(result, started)
	logger.Info().
		Int("score", result.Score).
		Str("grade", string(result.Grade)).
		Int("trackers", result.TrackerCount).
		Int("cookies", result.CookieCount).
		Str("capture", string(result.Capture.Status)).
		Msg("scan complete")
	return result, nil
}
