package browser_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"gitlab.com/trackerker/scanner/browser"
	"gitlab.com/trackerker/trackerk"
)

func request(id, url string) *trackerk.NetworkEvent {
	return &trackerk.NetworkEvent{Type: trackerk.EvtRequest, RequestID: id, URL: url, Method: "GET", ResourceType: "Script"}
}

func response(id, url string, status int) *trackerk.NetworkEvent {
	return &trackerk.NetworkEvent{Type: trackerk.EvtResponse, RequestID: id, URL: url, Status: status, Headers: map[string]string{"content-type": "text/html"}}
}

func TestCorrelateByID(t *testing.T) {
	c := browser.NewCorrelator(zerolog.Nop())
	c.Observe(request("1", "https://example.com/"))
	c.Observe(request("2", "https://cdn.tracker.net/t.js"))
	c.Observe(response("2", "https://cdn.tracker.net/t.js", 200))
	c.Observe(response("1", "https://example.com/", 301))

	exchanges := c.Exchanges()
	if len(exchanges) != 2 {
		t.Fatalf("expected 2 exchanges got %d\n", len(exchanges))
	}

	if exchanges[0].ID != "1" || exchanges[1].ID != "2" {
		t.Fatalf("exchanges are not in observation order: %s %s\n", exchanges[0].ID, exchanges[1].ID)
	}

	if exchanges[0].Status == nil || *exchanges[0].Status != 301 {
		t.Fatalf("expected 301 for first exchange")
	}

	if exchanges[1].Status == nil || *exchanges[1].Status != 200 {
		t.Fatalf("expected 200 for second exchange")
	}

	if exchanges[1].Domain != "tracker.net" {
		t.Fatalf("expected registered domain tracker.net got %s\n", exchanges[1].Domain)
	}

	if exchanges[1].ResponseHeaders["content-type"] != "text/html" {
		t.Fatalf("expected response headers to be attached")
	}
}

func TestCorrelateFallbackByURL(t *testing.T) {
	c := browser.NewCorrelator(zerolog.Nop())
	c.Observe(request("", "https://example.com/a.js"))
	c.Observe(request("", "https://example.com/b.js"))
	c.Observe(request("", "https://example.com/a.js"))

	before := c.Len()
	c.Observe(response("", "https://example.com/a.js", 200))
	c.Observe(response("", "https://example.com/a.js", 404))

	if c.Len() != before {
		t.Fatalf("responses must not add records, had %d now %d\n", before, c.Len())
	}

	exchanges := c.Exchanges()
	// most recent un-responded record for the url is matched first
	if exchanges[2].Status == nil || *exchanges[2].Status != 200 {
		t.Fatalf("expected latest a.js record to have 200")
	}

	if exchanges[0].Status == nil || *exchanges[0].Status != 404 {
		t.Fatalf("expected earliest a.js record to have 404")
	}

	if exchanges[1].HasResponse() {
		t.Fatalf("b.js should not have a response")
	}

	for _, e := range exchanges {
		if e.ID == "" {
			t.Fatalf("exchange was not assigned an id")
		}
	}

	if exchanges[0].ID == exchanges[2].ID {
		t.Fatalf("generated ids must be unique")
	}
}

func TestCorrelateMissDropped(t *testing.T) {
	c := browser.NewCorrelator(zerolog.Nop())
	c.Observe(request("1", "https://example.com/"))
	c.Observe(response("1", "https://example.com/", 200))

	// no id and nothing waiting for it
	c.Observe(response("", "https://other.com/", 200))
	// same url but the record already has a status
	c.Observe(response("", "https://example.com/", 500))

	exchanges := c.Exchanges()
	if len(exchanges) != 1 {
		t.Fatalf("expected 1 exchange got %d\n", len(exchanges))
	}

	if *exchanges[0].Status != 200 {
		t.Fatalf("status must only be set once, got %d\n", *exchanges[0].Status)
	}

	if c.Misses() != 2 {
		t.Fatalf("expected 2 misses got %d\n", c.Misses())
	}
}

func TestCorrelateDuplicateResponse(t *testing.T) {
	c := browser.NewCorrelator(zerolog.Nop())
	c.Observe(request("1", "https://example.com/"))
	c.Observe(request("2", "https://example.com/"))
	c.Observe(response("1", "https://example.com/", 200))
	c.Observe(response("1", "https://example.com/", 500))

	exchanges := c.Exchanges()
	if *exchanges[0].Status != 200 {
		t.Fatalf("expected first status to win got %d\n", *exchanges[0].Status)
	}

	if exchanges[1].HasResponse() {
		t.Fatalf("duplicate response must not be attached to another request")
	}
}

func TestCorrelateResponseBeforeRequest(t *testing.T) {
	c := browser.NewCorrelator(zerolog.Nop())
	c.Observe(response("7", "https://example.com/cached.js", 200))
	if c.Len() != 0 {
		t.Fatalf("a response must never create a record")
	}

	c.Observe(request("7", "https://example.com/cached.js"))
	exchanges := c.Exchanges()
	if len(exchanges) != 1 || exchanges[0].Status == nil || *exchanges[0].Status != 200 {
		t.Fatalf("expected early response to be attached once the request arrived")
	}

	if c.Misses() != 0 {
		t.Fatalf("expected no misses got %d\n", c.Misses())
	}
}

func TestCorrelateEarlyResponseKeepsOwner(t *testing.T) {
	c := browser.NewCorrelator(zerolog.Nop())
	c.Observe(request("a", "https://example.com/x.js"))
	c.Observe(response("b", "https://example.com/x.js", 404))
	c.Observe(request("b", "https://example.com/x.js"))
	c.Observe(response("a", "https://example.com/x.js", 200))

	exchanges := c.Exchanges()
	if len(exchanges) != 2 {
		t.Fatalf("expected 2 exchanges got %d\n", len(exchanges))
	}

	if exchanges[0].ID != "a" || exchanges[0].Status == nil || *exchanges[0].Status != 200 {
		t.Fatalf("expected a to keep its own 200 got %v\n", exchanges[0].Status)
	}

	if exchanges[1].ID != "b" || exchanges[1].Status == nil || *exchanges[1].Status != 404 {
		t.Fatalf("expected b to get its early 404 got %v\n", exchanges[1].Status)
	}

	if c.Misses() != 0 {
		t.Fatalf("expected no misses got %d\n", c.Misses())
	}
}

func TestCorrelateRedirectChain(t *testing.T) {
	c := browser.NewCorrelator(zerolog.Nop())
	c.Observe(request("1", "http://example.com/"))
	redirect := request("1", "https://example.com/")
	redirect.RedirectStatus = 301
	redirect.RedirectHeaders = map[string]string{"location": "https://example.com/"}
	c.Observe(redirect)
	c.Observe(response("1", "https://example.com/", 200))

	exchanges := c.Exchanges()
	if len(exchanges) != 2 {
		t.Fatalf("expected a record per hop got %d\n", len(exchanges))
	}

	if *exchanges[0].Status != 301 || exchanges[0].ResponseHeaders["location"] != "https://example.com/" {
		t.Fatalf("expected redirect hop to carry the 301")
	}

	if *exchanges[1].Status != 200 {
		t.Fatalf("expected final hop to carry the 200")
	}
}

func TestCorrelateMalformedEvents(t *testing.T) {
	c := browser.NewCorrelator(zerolog.Nop())
	c.Observe(nil)
	c.Observe(&trackerk.NetworkEvent{Type: 99})
	c.Observe(request("1", "http://%zz"))

	exchanges := c.Exchanges()
	if len(exchanges) != 1 {
		t.Fatalf("malformed url should still be recorded, got %d records\n", len(exchanges))
	}

	if exchanges[0].Domain != "" {
		t.Fatalf("expected empty domain for malformed url got %s\n", exchanges[0].Domain)
	}
}

func TestCorrelatorExchangesAreCopies(t *testing.T) {
	c := browser.NewCorrelator(zerolog.Nop())
	c.Observe(request("1", "https://example.com/"))
	c.Observe(response("1", "https://example.com/", 200))

	exchanges := c.Exchanges()
	*exchanges[0].Status = 500
	exchanges[0].ResponseHeaders["content-type"] = "changed"

	again := c.Exchanges()
	if *again[0].Status != 200 || again[0].ResponseHeaders["content-type"] != "text/html" {
		t.Fatalf("modifying returned exchanges must not modify the log")
	}
}

func TestDrain(t *testing.T) {
	c := browser.NewCorrelator(zerolog.Nop())
	events := make(chan *trackerk.NetworkEvent, 100)
	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Drain(events, stop)
	}()

	for i := 0; i < 50; i++ {
		events <- request(fmt.Sprintf("%d", i), fmt.Sprintf("https://example.com/%d", i))
	}
	for i := 0; i < 50; i++ {
		events <- response(fmt.Sprintf("%d", i), fmt.Sprintf("https://example.com/%d", i), 200)
	}
	close(stop)
	wg.Wait()

	exchanges := c.Exchanges()
	if len(exchanges) != 50 {
		t.Fatalf("expected 50 exchanges got %d\n", len(exchanges))
	}

	for i, e := range exchanges {
		if e.ID != fmt.Sprintf("%d", i) {
			t.Fatalf("expected exchange %d got %s\n", i, e.ID)
		}
		if !e.HasResponse() {
			t.Fatalf("exchange %d has no response\n", i)
		}
	}
}
