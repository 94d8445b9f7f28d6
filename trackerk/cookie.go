package trackerk

import "time"

// Cookie properties as read from the browser's cookie jar
type Cookie struct {
	Name         string    `json:"name"`               // Cookie name.
	Value        string    `json:"value"`              // Cookie value.
	Domain       string    `json:"domain"`             // Cookie domain.
	Path         string    `json:"path"`               // Cookie path.
	Expires      float64   `json:"expires"`            // Cookie expiration date as the number of seconds since the UNIX epoch.
	Size         int       `json:"size"`               // Cookie size.
	HTTPOnly     bool      `json:"httpOnly"`           // True if cookie is http-only.
	Secure       bool      `json:"secure"`             // True if cookie is secure.
	Session      bool      `json:"session"`            // True in case of session cookie.
	SameSite     string    `json:"sameSite,omitempty"` // Cookie SameSite type. enum values: Strict, Lax, None
	Priority     string    `json:"priority"`           // Cookie Priority enum values: Low, Medium, High
	ObservedTime time.Time `json:"time_observed"`      // When the cookie was observed being set
}

// CookieRecord is a classified cookie, the value is deliberately not kept
type CookieRecord struct {
	Name         string  `json:"name" msgpack:"name"`
	Domain       string  `json:"domain" msgpack:"domain"`
	IsThirdParty bool    `json:"is_third_party" msgpack:"is_third_party"`
	HTTPOnly     bool    `json:"httpOnly" msgpack:"http_only"`
	Secure       bool    `json:"secure" msgpack:"secure"`
	SameSite     string  `json:"sameSite" msgpack:"same_site"`
	Expires      float64 `json:"expires" msgpack:"expires"`
	Path         string  `json:"path" msgpack:"path"`
}
