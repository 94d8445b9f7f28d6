package trackerk

import "time"

// NetworkEventType of a NetworkEvent
type NetworkEventType int8

const (
	// EvtRequest an outbound request was observed
	EvtRequest NetworkEventType = iota + 1
	// EvtResponse a response was observed
	EvtResponse
)

// NetworkEvent is what a browser pushes onto the session's event channel. RequestID
// is the driver supplied correlation key and may be empty if the driver can't provide one.
type NetworkEvent struct {
	Type            NetworkEventType
	RequestID       string
	URL             string
	Method          string
	ResourceType    string
	Status          int
	Headers         map[string]string
	RedirectStatus  int               // status of the previous hop when this request is a redirect
	RedirectHeaders map[string]string // headers of the previous hop when this request is a redirect
	Observed        time.Time
}

// NetworkExchange is a single request and (once correlated) its response
type NetworkExchange struct {
	ID              string            `json:"id" msgpack:"id"`
	URL             string            `json:"url" msgpack:"url"`
	Domain          string            `json:"domain" msgpack:"domain"`
	ResourceType    string            `json:"resource_type" msgpack:"resource_type"`
	Method          string            `json:"method" msgpack:"method"`
	Timestamp       time.Time         `json:"timestamp" msgpack:"timestamp"`
	Status          *int              `json:"status,omitempty" msgpack:"status"`
	ResponseHeaders map[string]string `json:"response_headers,omitempty" msgpack:"response_headers"`
}

// HasResponse returns true once a response was attached
func (n *NetworkExchange) HasResponse() bool {
	return n.Status != nil
}

// Respond attaches the response, only the first call has any effect
func (n *NetworkExchange) Respond(status int, headers map[string]string) bool {
	if n.Status != nil {
		return false
	}
	n.Status = &status
	n.ResponseHeaders = headers
	return true
}

// Copy of the exchange so callers can't modify the correlator's records
func (n *NetworkExchange) Copy() NetworkExchange {
	c := *n
	if n.Status != nil {
		status := *n.Status
		c.Status = &status
	}
	if n.ResponseHeaders != nil {
		c.ResponseHeaders = make(map[string]string, len(n.ResponseHeaders))
		for k, v := range n.ResponseHeaders {
			c.ResponseHeaders[k] = v
		}
	}
	return c
}
