package trackerk

import "time"

// ScanRequest for a single scan. OverallTimeout is advisory, Scan never enforces it,
// callers that need a ceiling should cancel the context they pass in.
type ScanRequest struct {
	URL            string
	NavTimeout     time.Duration
	OverallTimeout time.Duration
}

// Grade of a scan
type Grade string

// revive:exported
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// CaptureStatus of a browser session
type CaptureStatus string

const (
	// CaptureComplete navigation, quiet wait and settle all completed
	CaptureComplete CaptureStatus = "complete"
	// CapturePartial something went wrong, the data is whatever was captured up to that point
	CapturePartial CaptureStatus = "partial"
)

// Partial capture reasons
const (
	PartialNavigationTimeout = "navigation-timeout"
	PartialQuietTimeout      = "network-quiet-timeout"
	PartialNavigationError   = "navigation-error"
	PartialSnapshotError     = "snapshot-error"
	PartialCancelled         = "cancelled"
)

// CaptureOutcome tags a capture as complete or partial (with the reason)
type CaptureOutcome struct {
	Status CaptureStatus `json:"status" msgpack:"status"`
	Reason string        `json:"reason,omitempty" msgpack:"reason"`
}

// Complete outcome
func Complete() CaptureOutcome {
	return CaptureOutcome{Status: CaptureComplete}
}

// Partial outcome for reason
func Partial(reason string) CaptureOutcome {
	return CaptureOutcome{Status: CapturePartial, Reason: reason}
}

// IsPartial returns true if the capture did not complete
func (c CaptureOutcome) IsPartial() bool {
	return c.Status == CapturePartial
}

// Capture is everything a browser session hands back
type Capture struct {
	URL       string
	FinalURL  string // url of the loaded document after redirects, empty if unknown
	HTML      string
	Cookies   []*Cookie
	Exchanges []NetworkExchange
	Outcome   CaptureOutcome
	Completed time.Time
}

// ScriptReference is a script src found in the final DOM
type ScriptReference struct {
	Src    string `json:"src" msgpack:"src"`
	Domain string `json:"domain" msgpack:"domain"`
}

// Evidence is the raw lists the score was derived from
type Evidence struct {
	NetworkRequests      []NetworkExchange `json:"network_requests" msgpack:"network_requests"`
	ScriptSrcs           []string          `json:"script_srcs" msgpack:"script_srcs"`
	ThirdPartyDomains    []string          `json:"third_party_domains" msgpack:"third_party_domains"`
	ThirdPartyScriptTags []ScriptReference `json:"third_party_script_tags" msgpack:"third_party_script_tags"`
	CookieInfo           []CookieRecord    `json:"cookie_info" msgpack:"cookie_info"`
}

// ScanResult is built once at the end of a scan and never modified afterwards
type ScanResult struct {
	ID                   string            `json:"id" msgpack:"id"`
	URL                  string            `json:"url" msgpack:"url"`
	FinalURL             string            `json:"final_url,omitempty" msgpack:"final_url"`
	MainDomain           string            `json:"main_domain" msgpack:"main_domain"`
	TrackerCount         int               `json:"tracker_count" msgpack:"tracker_count"`
	CookieCount          int               `json:"cookie_count" msgpack:"cookie_count"`
	CrossSiteCookieCount int               `json:"cross_site_cookie_count" msgpack:"cross_site_cookie_count"`
	ThirdPartyScripts    []ScriptReference `json:"third_party_scripts" msgpack:"third_party_scripts"`
	ThirdPartyDomains    []string          `json:"third_party_domains" msgpack:"third_party_domains"`
	NetworkRequests      []NetworkExchange `json:"network_requests" msgpack:"network_requests"`
	Headers              map[string]string `json:"headers" msgpack:"headers"`
	Score                int               `json:"score" msgpack:"score"`
	Grade                Grade             `json:"grade" msgpack:"grade"`
	Timestamp            time.Time         `json:"timestamp" msgpack:"timestamp"`
	Evidence             Evidence          `json:"evidence" msgpack:"evidence"`
	Capture              CaptureOutcome    `json:"capture" msgpack:"capture"`
}
