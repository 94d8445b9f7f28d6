package report

import (
	"sort"
	"time"

	"gitlab.com/trackerker/trackerk"
)

// Input is everything a scan collected, Build only assembles it
type Input struct {
	ID                string
	URL               string
	MainDomain        string
	Capture           *trackerk.Capture
	ScriptSrcs        []string
	ThirdPartyScripts []trackerk.ScriptReference
	ThirdPartyDomains []string
	Cookies           []trackerk.CookieRecord
	Score             int
	Grade             trackerk.Grade
}

// Build the scan result. The capture's exchanges are copied so the result shares
// nothing with the session that produced it.
func Build(in Input) *trackerk.ScanResult {
	capture := in.Capture
	if capture == nil {
		capture = &trackerk.Capture{URL: in.URL, Outcome: trackerk.Complete(), Completed: time.Now()}
	}

	exchanges := make([]trackerk.NetworkExchange, len(capture.Exchanges))
	for i, ex := range capture.Exchanges {
		exchanges[i] = ex.Copy()
	}

	scripts := in.ThirdPartyScripts
	if scripts == nil {
		scripts = make([]trackerk.ScriptReference, 0)
	}

	domains := in.ThirdPartyDomains
	if domains == nil {
		domains = make([]string, 0)
	}

	srcs := in.ScriptSrcs
	if srcs == nil {
		srcs = make([]string, 0)
	}

	cookies := in.Cookies
	if cookies == nil {
		cookies = make([]trackerk.CookieRecord, 0)
	}

	crossSite := 0
	for _, c := range cookies {
		if c.IsThirdParty {
			crossSite++
		}
	}

	return &trackerk.ScanResult{
		ID:                   in.ID,
		URL:                  in.URL,
		FinalURL:             capture.FinalURL,
		MainDomain:           in.MainDomain,
		TrackerCount:         len(domains),
		CookieCount:          len(cookies),
		CrossSiteCookieCount: crossSite,
		ThirdPartyScripts:    scripts,
		ThirdPartyDomains:    domains,
		NetworkRequests:      exchanges,
		Headers:              MainDocumentHeaders(exchanges),
		Score:                in.Score,
		Grade:                in.Grade,
		Timestamp:            capture.Completed,
		Capture:              capture.Outcome,
		Evidence: trackerk.Evidence{
			NetworkRequests:      exchanges,
			ScriptSrcs:           srcs,
			ThirdPartyDomains:    domains,
			ThirdPartyScriptTags: scripts,
			CookieInfo:           cookies,
		},
	}
}

// ThirdPartyDomains seen in the network log, sorted and distinct. Exchanges without a
// registered domain (ip addresses, data: urls) are not counted.
func ThirdPartyDomains(exchanges []trackerk.NetworkExchange, mainDomain string) []string {
	seen := make(map[string]struct{})
	for _, ex := range exchanges {
		if ex.Domain == "" || ex.Domain == mainDomain {
			continue
		}
		seen[ex.Domain] = struct{}{}
	}

	domains := make([]string, 0, len(seen))
	for d := range seen {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

// MainDocumentHeaders are the response headers of the first document that was not
// a redirect, nil if there was none.
func MainDocumentHeaders(exchanges []trackerk.NetworkExchange) map[string]string {
	for _, ex := range exchanges {
		if ex.ResourceType != "Document" || !ex.HasResponse() {
			continue
		}
		if *ex.Status >= 300 && *ex.Status < 400 {
			continue
		}
		return ex.ResponseHeaders
	}
	return nil
}
