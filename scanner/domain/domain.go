// Package domain extracts registered domains (eTLD+1) from urls and hostnames.
package domain

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Registered returns the public suffix aware registered domain of a url or bare
// hostname, "a.b.example.co.uk" -> "example.co.uk". Returns an empty string for
// anything that has no registered domain: malformed input, ip addresses, bare
// public suffixes or single label hosts.
func Registered(input string) string {
	host := Host(input)
	if host == "" {
		return ""
	}

	if net.ParseIP(host) != nil {
		return ""
	}

	registered, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return registered
}

// Host extracts the lower cased hostname from a url or bare hostname (with or
// without port). Leading and trailing dots are removed.
func Host(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	var host string
	if strings.Contains(input, "://") || strings.HasPrefix(input, "//") {
		u, err := url.Parse(input)
		if err != nil {
			return ""
		}
		host = u.Hostname()
	} else {
		// bare host, possibly with a port or a trailing path
		if i := strings.IndexAny(input, "/?#"); i >= 0 {
			input = input[:i]
		}
		host = input
		if h, _, err := net.SplitHostPort(input); err == nil {
			host = h
		}
		host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	}

	host = strings.Trim(strings.ToLower(host), ".")
	if strings.ContainsAny(host, " \t\r\n@") {
		return ""
	}
	return host
}

// IsThirdParty reports if candidate's registered domain differs from mainDomain.
// Candidates without a registered domain are never third party.
func IsThirdParty(candidate, mainDomain string) bool {
	d := Registered(candidate)
	return d != "" && d != mainDomain
}
