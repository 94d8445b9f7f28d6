// Package cookies labels captured cookies as first or third party
package cookies

import (
	"strings"

	"gitlab.com/trackerker/scanner/domain"
	"gitlab.com/trackerker/trackerk"
)

// IsThirdParty if the registered domain of cookieDomain is not mainDomain.
// A cookie without a domain is always counted as third party.
func IsThirdParty(cookieDomain, mainDomain string) bool {
	if cookieDomain == "" {
		return true
	}
	return domain.Registered(strings.TrimLeft(cookieDomain, ".")) != mainDomain
}

// Classify cookies relative to mainDomain, order is preserved
func Classify(cookies []*trackerk.Cookie, mainDomain string) []trackerk.CookieRecord {
	records := make([]trackerk.CookieRecord, 0, len(cookies))
	for _, c := range cookies {
		if c == nil {
			continue
		}
		records = append(records, trackerk.CookieRecord{
			Name:         c.Name,
			Domain:       c.Domain,
			IsThirdParty: IsThirdParty(c.Domain, mainDomain),
			HTTPOnly:     c.HTTPOnly,
			Secure:       c.Secure,
			SameSite:     c.SameSite,
			Expires:      c.Expires,
			Path:         c.Path,
		})
	}
	return records
}

// CrossSite count of records
func CrossSite(records []trackerk.CookieRecord) int {
	count := 0
	for _, r := range records {
		if r.IsThirdParty {
			count++
		}
	}
	return count
}
