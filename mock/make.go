package mock

import (
	"fmt"
	"time"

	"gitlab.com/trackerker/trackerk"
)

// MockPageURL the mock browser pretends to load
const MockPageURL = "https://www.example.com/"

// MockPageHTML is the rendered page, one first party script, two third party and one inline
const MockPageHTML = `<html><head>
<script src="/static/app.js"></script>
<script src="https://cdn.tracker.net/t.js"></script>
<script src="//ads.example.co.uk/pixel.js"></script>
<script>window.inline = true;</script>
</head><body>hello</body></html>`

// MakeMockEvents for a page load. The document, a first party script and
// three third party requests, all answered.
func MakeMockEvents() []*trackerk.NetworkEvent {
	urls := []struct {
		url          string
		resourceType string
	}{
		{MockPageURL, "Document"},
		{"https://www.example.com/static/app.js", "Script"},
		{"https://cdn.tracker.net/t.js", "Script"},
		{"https://ads.example.co.uk/pixel.js", "Script"},
		{"https://collect.tracker.net/beacon?id=1", "XHR"},
	}

	evts := make([]*trackerk.NetworkEvent, 0, len(urls)*2)
	for i, u := range urls {
		id := fmt.Sprintf("%d", i+1)
		evts = append(evts, &trackerk.NetworkEvent{
			Type:         trackerk.EvtRequest,
			RequestID:    id,
			URL:          u.url,
			Method:       "GET",
			ResourceType: u.resourceType,
			Observed:     time.Now(),
		})
	}

	for i := range urls {
		evts = append(evts, &trackerk.NetworkEvent{
			Type:      trackerk.EvtResponse,
			RequestID: fmt.Sprintf("%d", i+1),
			URL:       urls[i].url,
			Status:    200,
			Headers:   map[string]string{"content-type": "text/html", "server": "mock"},
			Observed:  time.Now(),
		})
	}
	return evts
}

// MakeMockCookies one first party, two third party (one with no domain)
func MakeMockCookies() []*trackerk.Cookie {
	return []*trackerk.Cookie{
		{
			Name:     "session",
			Value:    "abc",
			Domain:   ".example.com",
			Path:     "/",
			HTTPOnly: true,
			Secure:   true,
			SameSite: "Lax",
			Session:  true,
		},
		{
			Name:     "_tid",
			Value:    "123",
			Domain:   "tracker.net",
			Path:     "/",
			Secure:   true,
			SameSite: "None",
			Expires:  float64(time.Now().Add(time.Hour * 24 * 365).Unix()),
		},
		{
			Name:  "orphan",
			Value: "x",
			Path:  "/",
		},
	}
}
