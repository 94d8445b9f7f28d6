package mock

import (
	"context"
	"errors"
	"net"
)

type Resolver struct {
	LookupIPAddrFn     func(ctx context.Context, host string) ([]net.IPAddr, error)
	LookupIPAddrCalled bool
}

func (r *Resolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	r.LookupIPAddrCalled = true
	return r.LookupIPAddrFn(ctx, host)
}

// MakeMockResolver that resolves every host to addrs
func MakeMockResolver(addrs ...string) *Resolver {
	r := &Resolver{}
	r.LookupIPAddrFn = func(ctx context.Context, host string) ([]net.IPAddr, error) {
		ips := make([]net.IPAddr, len(addrs))
		for i, addr := range addrs {
			ips[i] = net.IPAddr{IP: net.ParseIP(addr)}
		}
		return ips, nil
	}
	return r
}

// MakeMockFailingResolver that fails every lookup like an NXDOMAIN would
func MakeMockFailingResolver() *Resolver {
	r := &Resolver{}
	r.LookupIPAddrFn = func(ctx context.Context, host string) ([]net.IPAddr, error) {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	return r
}

var errUnexpectedLookup = errors.New("unexpected dns lookup")

// MakeMockUnusedResolver fails the lookup and records it was called, for tests that expect no lookup
func MakeMockUnusedResolver() *Resolver {
	r := &Resolver{}
	r.LookupIPAddrFn = func(ctx context.Context, host string) ([]net.IPAddr, error) {
		return nil, errUnexpectedLookup
	}
	return r
}
