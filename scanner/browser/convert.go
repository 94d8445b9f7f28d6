package browser

import (
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/trackerker/trackerk"
)

// GCDRequestToEvent converts a Network.requestWillBeSent event
func GCDRequestToEvent(req *gcdapi.NetworkRequestWillBeSentEvent) *trackerk.NetworkEvent {
	p := req.Params
	evt := &trackerk.NetworkEvent{
		Type:         trackerk.EvtRequest,
		RequestID:    p.RequestId,
		ResourceType: p.Type,
		Observed:     wallTime(p.WallTime),
	}

	if p.Request != nil {
		evt.URL = p.Request.Url
		evt.Method = p.Request.Method
	}

	if p.RedirectResponse != nil {
		evt.RedirectStatus = int(p.RedirectResponse.Status)
		evt.RedirectHeaders = encodeHeaders(p.RedirectResponse.Headers)
	}
	return evt
}

// GCDResponseToEvent converts a Network.responseReceived event
func GCDResponseToEvent(resp *gcdapi.NetworkResponseReceivedEvent) *trackerk.NetworkEvent {
	p := resp.Params
	evt := &trackerk.NetworkEvent{
		Type:         trackerk.EvtResponse,
		RequestID:    p.RequestId,
		ResourceType: p.Type,
		Observed:     time.Now().UTC(),
	}

	if p.Response != nil {
		evt.URL = p.Response.Url
		evt.Status = int(p.Response.Status)
		evt.Headers = encodeHeaders(p.Response.Headers)
	}
	return evt
}

// GCDCookieToTrackerk converts the cookie jar
func GCDCookieToTrackerk(gcdCookie []*gcdapi.NetworkCookie) []*trackerk.Cookie {
	if gcdCookie == nil {
		return nil
	}
	observed := time.Now()
	cookies := make([]*trackerk.Cookie, 0, len(gcdCookie))
	for _, c := range gcdCookie {
		if c == nil {
			continue
		}
		cookies = append(cookies, &trackerk.Cookie{
			Name:         c.Name,
			Value:        c.Value,
			Domain:       c.Domain,
			Path:         c.Path,
			Expires:      c.Expires,
			Size:         c.Size,
			HTTPOnly:     c.HttpOnly,
			Secure:       c.Secure,
			Session:      c.Session,
			SameSite:     c.SameSite,
			Priority:     c.Priority,
			ObservedTime: observed,
		})
	}
	return cookies
}

// encode the header depending on type, and lower case the header name so easier to search.
func encodeHeaders(gcdHeaders map[string]interface{}) map[string]string {
	if gcdHeaders == nil {
		return nil
	}
	headers := make(map[string]string, len(gcdHeaders))
	for k, v := range gcdHeaders {
		name := strings.ToLower(k)
		switch rv := v.(type) {
		case string:
			headers[name] = rv
		case []string:
			headers[name] = strings.Join(rv, ",")
		case []interface{}:
			values := make([]string, 0, len(rv))
			for _, value := range rv {
				if s, ok := value.(string); ok {
					values = append(values, s)
				}
			}
			headers[name] = strings.Join(values, ",")
		case nil:
			headers[name] = ""
		default:
			log.Warn().Str("header_name", k).Msg("unable to encode header value")
		}
	}
	return headers
}

// chrome's wall time is seconds since the epoch
func wallTime(seconds float64) time.Time {
	if seconds <= 0 {
		return time.Now().UTC()
	}
	sec, frac := math.Modf(seconds)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
