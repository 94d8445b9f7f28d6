// Package guard stops the scanner from being pointed at internal infrastructure.
package guard

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/trackerker/trackerk"
)

// Resolver looks up the addresses of a host, *net.Resolver satisfies it
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Guard validates targets before a browser is ever launched. The check is done
// once, redirects and in page navigations reached later are not re-validated.
type Guard struct {
	resolver Resolver
	timeout  time.Duration
}

// New guard using resolver, if resolver is nil net.DefaultResolver is used
func New(resolver Resolver, timeout time.Duration) *Guard {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Guard{resolver: resolver, timeout: timeout}
}

// Validate returns nil if rawURL may be scanned or a *trackerk.ValidationError
// carrying the rejection reason.
//
// A failed DNS lookup allows the target. A host with intermittent or no DNS
// therefore passes the check, this is an accepted gap.
func (g *Guard) Validate(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return reject(rawURL, trackerk.ReasonUnsupportedScheme)
	}

	host := u.Hostname()
	if host == "" {
		return reject(rawURL, trackerk.ReasonNoHostname)
	}

	if ip, ok := ParseHostIP(host); ok {
		if Disallowed(ip) {
			return reject(rawURL, trackerk.ReasonPrivateIP)
		}
		return nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	addrs, err := g.resolver.LookupIPAddr(lookupCtx, host)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Str("host", host).Msg("dns resolution failed, allowing target")
		return nil
	}

	for _, addr := range addrs {
		if Disallowed(addr.IP) {
			log.Ctx(ctx).Warn().Str("host", host).Str("addr", addr.IP.String()).Msg("host resolved to disallowed address")
			return reject(rawURL, trackerk.ReasonDNSPrivateIP)
		}
	}
	return nil
}

func reject(rawURL, reason string) error {
	return &trackerk.ValidationError{URL: rawURL, Reason: reason}
}
