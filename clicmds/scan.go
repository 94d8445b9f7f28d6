package clicmds

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"gitlab.com/trackerker/scanner"
	"gitlab.com/trackerker/scanner/browser"
	"gitlab.com/trackerker/scanner/domain"
	"gitlab.com/trackerker/scanner/guard"
	"gitlab.com/trackerker/scanner/report"
	"gitlab.com/trackerker/store"
	"gitlab.com/trackerker/trackerk"
)

// Scanner runs a single scan
type Scanner interface {
	Scan(ctx context.Context, req trackerk.ScanRequest) (*trackerk.ScanResult, error)
}

// ScanFlags for the scan command, targets are given with --url and/or as arguments
func ScanFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "url",
			Usage: "url to scan",
		},
		&cli.IntFlag{
			Name:  "retries",
			Usage: "times to retry a scan that failed to capture",
		},
		&cli.DurationFlag{
			Name:  "backoff",
			Usage: "wait between retries",
		},
		&cli.IntFlag{
			Name:  "numscanners",
			Usage: "max number of targets to scan in parallel",
		},
		&cli.StringFlag{
			Name:  "metrics",
			Usage: "address to serve prometheus metrics on, eg :9090",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print results as json",
			Value: false,
		},
		&cli.BoolFlag{
			Name:  "nostore",
			Usage: "do not save results to the data directory",
			Value: false,
		},
		&cli.BoolFlag{
			Name:  "dump",
			Usage: "dump the full results for debugging",
			Value: false,
		},
	}
	return append(flags, ConfigFlags()...)
}

// Scan the targets and print a report for each
func Scan(ctx *cli.Context) error {
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return err
	}

	targets := ctx.Args().Slice()
	if cfg.URL != "" {
		targets = append([]string{cfg.URL}, targets...)
	}
	if len(targets) == 0 {
		return errors.New("no targets given, use --url or pass urls as arguments")
	}

	scanContext, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	metrics := scanner.NewMetrics()
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer srv.Close()
	}

	var reports store.ReportStorer
	if !ctx.Bool("nostore") {
		reportStore := store.NewReportStore(cfg.DataPath)
		if err := reportStore.Init(); err != nil {
			log.Error().Err(err).Msg("failed to init report store")
			return err
		}
		defer reportStore.Close()
		reports = reportStore
	}

	log.Info().Int("targets", len(targets)).Msg("starting trackerker")
	launcher := NewLauncher(cfg)
	defer launcher.Cleanup()

	validator := guard.New(net.DefaultResolver, cfg.ResolverTimeout)
	s := scanner.New(cfg, validator, browser.NewSession(launcher, cfg)).SetMetrics(metrics)
	reporter := ScanTargets(scanContext, s, reports, cfg, targets)

	if ctx.Bool("dump") {
		spew.Fdump(os.Stderr, reporter.Results())
	}

	if ctx.Bool("json") {
		err = reporter.PrintJSON(os.Stdout)
	} else {
		err = reporter.Print(os.Stdout)
	}
	if err != nil {
		return err
	}

	if failed := len(targets) - len(reporter.Results()); failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d scans failed", failed, len(targets)), 1)
	}
	return nil
}

// ScanTargets scans each target, at most cfg.NumScanners at a time. Results are saved to
// reports when it is not nil. Failures are recorded in the returned reporter.
func ScanTargets(ctx context.Context, s Scanner, reports store.ReportStorer, cfg *trackerk.Config, targets []string) *report.Reporter {
	reporter := report.New()

	numScanners := cfg.NumScanners
	if numScanners <= 0 {
		numScanners = 1
	}

	g := &errgroup.Group{}
	g.SetLimit(numScanners)
	for _, target := range targets {
		target := target
		g.Go(func() error {
			req := trackerk.ScanRequest{URL: target, NavTimeout: cfg.NavTimeout, OverallTimeout: cfg.OverallTimeout}
			result, err := ScanWithRetry(ctx, s, req, cfg.Retries, cfg.RetryBackoff)
			if err != nil {
				reporter.Fail(target, err)
				return nil
			}

			if reports != nil {
				if err := reports.Save(Website(target), result); err != nil {
					log.Error().Err(err).Str("url", target).Msg("failed to save report")
				}
			}
			reporter.Add(result)
			return nil
		})
	}
	_ = g.Wait()
	return reporter
}

// ScanWithRetry runs the scan, retrying up to retries more times with backoff between
// attempts. A rejected target is returned immediately and never retried. Each attempt is
// bounded by req.OverallTimeout when it is set.
func ScanWithRetry(ctx context.Context, s Scanner, req trackerk.ScanRequest, retries int, backoff time.Duration) (*trackerk.ScanResult, error) {
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			log.Warn().Err(lastErr).Str("url", req.URL).Int("attempt", attempt).Dur("backoff", backoff).Msg("scan failed, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), "scan cancelled")
			}
		}

		result, err := scanAttempt(ctx, s, req)
		if err == nil {
			return result, nil
		}

		if _, ok := trackerk.IsValidationError(err); ok {
			return nil, err
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "scan cancelled")
		}
	}
	return nil, errors.Wrapf(lastErr, "scan failed after %d attempts", retries+1)
}

func scanAttempt(ctx context.Context, s Scanner, req trackerk.ScanRequest) (*trackerk.ScanResult, error) {
	if req.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.OverallTimeout)
		defer cancel()
	}
	return s.Scan(ctx, req)
}

// NewLauncher of browsers, from the leaser service when one is configured otherwise
// chrome processes started on this host
func NewLauncher(cfg *trackerk.Config) *browser.GCDLauncher {
	if cfg.LeaserSocket != "" {
		leaser := browser.NewSocketLeaser(cfg.LeaserSocket, "localhost")
		return browser.NewGCDLauncher(leaser, leaser.Host())
	}
	return browser.NewGCDLauncher(browser.NewLocalLeaser(cfg.ChromePath, cfg.TmpDir), "localhost")
}

// Website a target is stored under, its host name
func Website(target string) string {
	return domain.Host(target)
}
