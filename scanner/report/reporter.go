package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"gitlab.com/trackerker/trackerk"
)

// Reporter collects the results of one or more scans for printing
type Reporter struct {
	resultLock sync.Mutex
	results    map[string]*trackerk.ScanResult
	failures   map[string]error
}

// New reporter
func New() *Reporter {
	return &Reporter{
		results:  make(map[string]*trackerk.ScanResult),
		failures: make(map[string]error),
	}
}

// Add a result, a later result for the same url replaces the earlier one
func (r *Reporter) Add(result *trackerk.ScanResult) {
	r.resultLock.Lock()
	defer r.resultLock.Unlock()
	r.results[result.URL] = result
	delete(r.failures, result.URL)
}

// Fail records that url could not be scanned
func (r *Reporter) Fail(url string, err error) {
	r.resultLock.Lock()
	defer r.resultLock.Unlock()
	r.failures[url] = err
}

// Results sorted by url
func (r *Reporter) Results() []*trackerk.ScanResult {
	r.resultLock.Lock()
	defer r.resultLock.Unlock()

	results := make([]*trackerk.ScanResult, 0, len(r.results))
	for _, result := range r.results {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].URL < results[j].URL })
	return results
}

// Print a human readable summary of every result
func (r *Reporter) Print(writer io.Writer) error {
	for _, result := range r.Results() {
		if err := PrintResult(writer, result); err != nil {
			return err
		}
	}

	r.resultLock.Lock()
	defer r.resultLock.Unlock()
	urls := make([]string, 0, len(r.failures))
	for url := range r.failures {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	for _, url := range urls {
		if _, err := fmt.Fprintf(writer, "%s: scan failed: %s\n", url, r.failures[url]); err != nil {
			return err
		}
	}
	return nil
}

// PrintJSON writes the results as a json array
func (r *Reporter) PrintJSON(writer io.Writer) error {
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Results())
}

// PrintResult summary for a single scan
func PrintResult(writer io.Writer, result *trackerk.ScanResult) error {
	w := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "url\t%s\n", result.URL)
	if result.FinalURL != "" && result.FinalURL != result.URL {
		fmt.Fprintf(w, "loaded\t%s\n", result.FinalURL)
	}
	fmt.Fprintf(w, "grade\t%s (%d/100)\n", result.Grade, result.Score)
	fmt.Fprintf(w, "trackers\t%d\n", result.TrackerCount)
	fmt.Fprintf(w, "cookies\t%d (%d cross site)\n", result.CookieCount, result.CrossSiteCookieCount)
	fmt.Fprintf(w, "requests\t%d\n", len(result.NetworkRequests))
	if result.Capture.IsPartial() {
		fmt.Fprintf(w, "capture\tpartial (%s)\n", result.Capture.Reason)
	}
	if len(result.ThirdPartyDomains) > 0 {
		fmt.Fprintf(w, "third party\t%s\n", strings.Join(result.ThirdPartyDomains, ", "))
	}
	for _, script := range result.ThirdPartyScripts {
		fmt.Fprintf(w, "script\t%s\n", script.Src)
	}
	fmt.Fprintln(w)
	return w.Flush()
}
