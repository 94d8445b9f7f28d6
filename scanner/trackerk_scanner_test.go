package scanner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gitlab.com/trackerker/mock"
	"gitlab.com/trackerker/scanner"
	"gitlab.com/trackerker/scanner/browser"
	"gitlab.com/trackerker/scanner/guard"
	"gitlab.com/trackerker/trackerk"
)

func testScanner(resolver *mock.Resolver, launcher *mock.Launcher) *scanner.Scanner {
	cfg := trackerk.DefaultConfig()
	cfg.SettleTime = time.Millisecond
	cfg.QuietPeriod = time.Millisecond
	return scanner.New(cfg, guard.New(resolver, time.Second), browser.NewSession(launcher, cfg))
}

func TestScan(t *testing.T) {
	resolver := mock.MakeMockResolver("93.184.216.34")
	launcher := mock.MakeMockLauncher(mock.MakeMockBrowser)
	metrics := scanner.NewMetrics()
	s := testScanner(resolver, launcher).SetMetrics(metrics)

	result, err := s.Scan(context.Background(), trackerk.ScanRequest{URL: mock.MockPageURL, NavTimeout: time.Second})
	if err != nil {
		t.Fatalf("error scanning: %s\n", err)
	}

	if result.MainDomain != "example.com" {
		t.Fatalf("expected main domain example.com got %s\n", result.MainDomain)
	}

	if result.TrackerCount != 2 || len(result.ThirdPartyDomains) != 2 {
		t.Fatalf("expected 2 trackers got %d %v\n", result.TrackerCount, result.ThirdPartyDomains)
	}

	if result.ThirdPartyDomains[0] != "example.co.uk" || result.ThirdPartyDomains[1] != "tracker.net" {
		t.Fatalf("unexpected third party domains %v\n", result.ThirdPartyDomains)
	}

	if result.CookieCount != 3 || result.CrossSiteCookieCount != 2 {
		t.Fatalf("expected 3 cookies 2 cross site got %d %d\n", result.CookieCount, result.CrossSiteCookieCount)
	}

	if result.Score != 78 || result.Grade != trackerk.GradeC {
		t.Fatalf("expected 78/C got %d/%s\n", result.Score, result.Grade)
	}

	if len(result.ThirdPartyScripts) != 2 || len(result.Evidence.ScriptSrcs) != 3 {
		t.Fatalf("expected 2 of 3 scripts to be third party got %d of %d\n", len(result.ThirdPartyScripts), len(result.Evidence.ScriptSrcs))
	}

	if len(result.NetworkRequests) != 5 {
		t.Fatalf("expected 5 network requests got %d\n", len(result.NetworkRequests))
	}

	if result.Headers["server"] != "mock" {
		t.Fatalf("expected main document headers got %v\n", result.Headers)
	}

	if result.ID == "" || result.Timestamp.IsZero() {
		t.Fatalf("result is missing an id or timestamp")
	}

	if launcher.Active() != 0 {
		t.Fatalf("browser was not released")
	}

	if got := counterValue(t, metrics, "trackerker_scans_total", "complete"); got != 1 {
		t.Fatalf("expected 1 complete scan counted got %v\n", got)
	}
}

func TestScanRedirectedPage(t *testing.T) {
	resolver := mock.MakeMockResolver("93.184.216.34")
	launcher := mock.MakeMockLauncher(func(events chan<- *trackerk.NetworkEvent) *mock.Browser {
		b := mock.MakeMockBrowser(events)
		b.URLFn = func(ctx context.Context) string {
			return "https://shop.example.com/home"
		}
		return b
	})
	s := testScanner(resolver, launcher)

	result, err := s.Scan(context.Background(), trackerk.ScanRequest{URL: mock.MockPageURL, NavTimeout: time.Second})
	if err != nil {
		t.Fatalf("error scanning: %s\n", err)
	}

	if result.URL != mock.MockPageURL || result.FinalURL != "https://shop.example.com/home" {
		t.Fatalf("expected requested and loaded url got %s %s\n", result.URL, result.FinalURL)
	}

	if result.Evidence.ScriptSrcs[0] != "https://shop.example.com/static/app.js" {
		t.Fatalf("relative scripts should resolve against the loaded page got %s\n", result.Evidence.ScriptSrcs[0])
	}

	if result.MainDomain != "example.com" || result.TrackerCount != 2 {
		t.Fatalf("expected main domain of the requested url got %s %d\n", result.MainDomain, result.TrackerCount)
	}
}

func TestScanRejected(t *testing.T) {
	var tests = []struct {
		url      string
		resolver *mock.Resolver
		reason   string
	}{
		{"ftp://example.com", mock.MakeMockUnusedResolver(), trackerk.ReasonUnsupportedScheme},
		{"http://", mock.MakeMockUnusedResolver(), trackerk.ReasonNoHostname},
		{"http://127.0.0.1:8080/", mock.MakeMockUnusedResolver(), trackerk.ReasonPrivateIP},
		{"http://[::1]/", mock.MakeMockUnusedResolver(), trackerk.ReasonPrivateIP},
		{"https://internal.example.com/", mock.MakeMockResolver("10.0.0.5"), trackerk.ReasonDNSPrivateIP},
	}

	for _, tt := range tests {
		launcher := mock.MakeMockLauncher(mock.MakeMockBrowser)
		metrics := scanner.NewMetrics()
		s := testScanner(tt.resolver, launcher).SetMetrics(metrics)

		result, err := s.Scan(context.Background(), trackerk.ScanRequest{URL: tt.url})
		if result != nil {
			t.Fatalf("%s: rejected scan returned a result\n", tt.url)
		}

		verr, ok := trackerk.IsValidationError(err)
		if !ok {
			t.Fatalf("%s: expected validation error got %v\n", tt.url, err)
		}

		if verr.Reason != tt.reason {
			t.Fatalf("%s: expected %s got %s\n", tt.url, tt.reason, verr.Reason)
		}

		if launcher.LaunchCalls != 0 {
			t.Fatalf("%s: browser launched for a rejected target\n", tt.url)
		}

		if got := counterValue(t, metrics, "trackerker_scans_total", "rejected"); got != 1 {
			t.Fatalf("%s: expected rejection to be counted got %v\n", tt.url, got)
		}
	}
}

func TestScanDNSFailureAllowed(t *testing.T) {
	launcher := mock.MakeMockLauncher(mock.MakeMockBrowser)
	s := testScanner(mock.MakeMockFailingResolver(), launcher)

	if _, err := s.Scan(context.Background(), trackerk.ScanRequest{URL: mock.MockPageURL}); err != nil {
		t.Fatalf("dns failure must not reject the target: %s\n", err)
	}

	if launcher.LaunchCalls != 1 {
		t.Fatalf("expected the scan to proceed to the browser")
	}
}

func TestScanNavigationTimeout(t *testing.T) {
	launcher := mock.MakeMockLauncher(func(events chan<- *trackerk.NetworkEvent) *mock.Browser {
		b := mock.MakeMockBrowser(events)
		b.NavigateFn = func(ctx context.Context, url string) error {
			for _, evt := range mock.MakeMockEvents()[:3] {
				events <- evt
			}
			<-ctx.Done()
			return trackerk.ErrNavigationTimedOut
		}
		return b
	})
	metrics := scanner.NewMetrics()
	s := testScanner(mock.MakeMockResolver("93.184.216.34"), launcher).SetMetrics(metrics)

	result, err := s.Scan(context.Background(), trackerk.ScanRequest{URL: mock.MockPageURL, NavTimeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("navigation timeout must not fail the scan: %s\n", err)
	}

	if result.Capture.Reason != trackerk.PartialNavigationTimeout {
		t.Fatalf("expected partial capture got %#v\n", result.Capture)
	}

	// document, app.js and t.js were requested before the timeout
	if len(result.NetworkRequests) != 3 || result.TrackerCount != 1 {
		t.Fatalf("expected the partial network log, got %d requests %d trackers\n", len(result.NetworkRequests), result.TrackerCount)
	}

	if result.CookieCount != 3 {
		t.Fatalf("expected cookies captured at timeout got %d\n", result.CookieCount)
	}

	if launcher.Active() != 0 {
		t.Fatalf("browser was not released")
	}

	if got := counterValue(t, metrics, "trackerker_partial_captures_total", trackerk.PartialNavigationTimeout); got != 1 {
		t.Fatalf("expected partial capture to be counted got %v\n", got)
	}
}

func TestScanLaunchFailed(t *testing.T) {
	metrics := scanner.NewMetrics()
	s := testScanner(mock.MakeMockResolver("93.184.216.34"), mock.MakeMockFailingLauncher(errors.New("chrome not found"))).SetMetrics(metrics)

	_, err := s.Scan(context.Background(), trackerk.ScanRequest{URL: mock.MockPageURL})
	if !errors.Is(err, trackerk.ErrLaunchFailed) {
		t.Fatalf("expected launch failure got %v\n", err)
	}

	if _, ok := trackerk.IsValidationError(err); ok {
		t.Fatalf("launch failure must not look like a validation error")
	}

	if got := counterValue(t, metrics, "trackerker_scans_total", "failed"); got != 1 {
		t.Fatalf("expected failure to be counted got %v\n", got)
	}
}

func counterValue(t *testing.T, metrics *scanner.Metrics, name, label string) float64 {
	families, err := metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("error gathering metrics: %s\n", err)
	}

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
