package report_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gitlab.com/trackerker/scanner/report"
	"gitlab.com/trackerker/trackerk"
)

func exchange(id, domain, resourceType string, status int, headers map[string]string) trackerk.NetworkExchange {
	ex := trackerk.NetworkExchange{ID: id, URL: "https://" + domain + "/" + id, Domain: domain, ResourceType: resourceType, Method: "GET"}
	if status != 0 {
		ex.Respond(status, headers)
	}
	return ex
}

func testCapture() *trackerk.Capture {
	return &trackerk.Capture{
		URL: "https://example.com/",
		Exchanges: []trackerk.NetworkExchange{
			exchange("1", "example.com", "Document", 301, map[string]string{"location": "https://www.example.com/"}),
			exchange("2", "example.com", "Document", 200, map[string]string{"server": "nginx"}),
			exchange("3", "tracker.net", "Script", 200, nil),
			exchange("4", "analytics.io", "XHR", 0, nil),
			exchange("5", "tracker.net", "Image", 200, nil),
			exchange("6", "", "Image", 200, nil),
		},
		Outcome:   trackerk.Partial(trackerk.PartialQuietTimeout),
		Completed: time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestThirdPartyDomains(t *testing.T) {
	domains := report.ThirdPartyDomains(testCapture().Exchanges, "example.com")
	if len(domains) != 2 || domains[0] != "analytics.io" || domains[1] != "tracker.net" {
		t.Fatalf("expected sorted distinct domains got %v\n", domains)
	}
}

func TestMainDocumentHeaders(t *testing.T) {
	headers := report.MainDocumentHeaders(testCapture().Exchanges)
	if headers["server"] != "nginx" {
		t.Fatalf("expected headers of the document after the redirect got %v\n", headers)
	}

	if report.MainDocumentHeaders(nil) != nil {
		t.Fatalf("expected nil headers with no exchanges")
	}
}

func TestBuild(t *testing.T) {
	capture := testCapture()
	domains := report.ThirdPartyDomains(capture.Exchanges, "example.com")
	result := report.Build(report.Input{
		ID:                "abc",
		URL:               "https://example.com/",
		MainDomain:        "example.com",
		Capture:           capture,
		ScriptSrcs:        []string{"https://tracker.net/t.js"},
		ThirdPartyScripts: []trackerk.ScriptReference{{Src: "https://tracker.net/t.js", Domain: "tracker.net"}},
		ThirdPartyDomains: domains,
		Cookies: []trackerk.CookieRecord{
			{Name: "a", Domain: "example.com"},
			{Name: "b", Domain: "tracker.net", IsThirdParty: true},
		},
		Score: 80,
		Grade: trackerk.GradeB,
	})

	if result.TrackerCount != len(result.ThirdPartyDomains) || result.TrackerCount != 2 {
		t.Fatalf("tracker count must equal the third party domains got %d\n", result.TrackerCount)
	}

	if result.CookieCount != 2 || result.CrossSiteCookieCount != 1 {
		t.Fatalf("unexpected cookie counts %d %d\n", result.CookieCount, result.CrossSiteCookieCount)
	}

	if !result.Timestamp.Equal(capture.Completed) {
		t.Fatalf("timestamp should be the capture completion time")
	}

	if result.Capture.Reason != trackerk.PartialQuietTimeout {
		t.Fatalf("capture outcome was not carried over")
	}

	if len(result.NetworkRequests) != 6 || len(result.Evidence.NetworkRequests) != 6 {
		t.Fatalf("expected all exchanges in the result")
	}

	// the result must not share state with the capture
	*capture.Exchanges[2].Status = 500
	if *result.NetworkRequests[2].Status != 200 {
		t.Fatalf("result shares exchange state with the capture")
	}
}

func TestBuildEmpty(t *testing.T) {
	result := report.Build(report.Input{URL: "https://example.com/", Score: 100, Grade: trackerk.GradeA})
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("error marshaling: %s\n", err)
	}

	// empty lists must be [] not null
	for _, field := range []string{`"third_party_scripts":[]`, `"third_party_domains":[]`, `"script_srcs":[]`, `"cookie_info":[]`, `"network_requests":[]`} {
		if !strings.Contains(string(data), field) {
			t.Fatalf("expected %s in %s\n", field, string(data))
		}
	}
}

func TestReporterPrint(t *testing.T) {
	r := report.New()
	r.Add(report.Build(report.Input{
		URL:               "https://b.example.com/",
		Capture:           testCapture(),
		ThirdPartyDomains: []string{"tracker.net"},
		Score:             92,
		Grade:             trackerk.GradeA,
	}))
	r.Add(report.Build(report.Input{URL: "https://a.example.com/", Score: 100, Grade: trackerk.GradeA}))
	r.Fail("https://c.example.com/", errors.New("target not allowed: private-or-loopback-ip"))

	buf := &bytes.Buffer{}
	if err := r.Print(buf); err != nil {
		t.Fatalf("error printing: %s\n", err)
	}

	out := buf.String()
	if strings.Index(out, "a.example.com") > strings.Index(out, "b.example.com") {
		t.Fatalf("results should be printed in url order:\n%s\n", out)
	}

	for _, want := range []string{"A (92/100)", "partial (network-quiet-timeout)", "tracker.net", "c.example.com/: scan failed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s\n", want, out)
		}
	}

	buf.Reset()
	if err := r.PrintJSON(buf); err != nil {
		t.Fatalf("error printing json: %s\n", err)
	}

	results := make([]*trackerk.ScanResult, 0)
	if err := json.Unmarshal(buf.Bytes(), &results); err != nil {
		t.Fatalf("error reading json output: %s\n", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results got %d\n", len(results))
	}
}
