package trackerk

import "sync/atomic"

var (
	browserCounter int64
	requestCounter int64
)

// GetBrowserID a global browser ID
func GetBrowserID() int64 {
	return atomic.AddInt64(&browserCounter, 1)
}

// NextRequestID is used when the browser driver did not supply a request id
func NextRequestID() int64 {
	return atomic.AddInt64(&requestCounter, 1)
}
