package guard

import (
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// special purpose ranges that are neither covered by the net.IP helpers nor
// routable on the public internet
var reservedPrefixes = mustPrefixes(
	"0.0.0.0/8",          // "this" network
	"100.64.0.0/10",      // carrier grade nat
	"192.0.0.0/24",       // ietf protocol assignments
	"192.0.2.0/24",       // test-net-1
	"198.18.0.0/15",      // benchmarking
	"198.51.100.0/24",    // test-net-2
	"203.0.113.0/24",     // test-net-3
	"240.0.0.0/4",        // reserved
	"255.255.255.255/32", // broadcast
	"2001::/23",          // ietf protocol assignments
	"2001:db8::/32",      // documentation
	"3fff::/20",          // documentation
)

// the only IPv6 space assigned for global unicast, everything outside it is
// reserved, private, link local or multicast
var globalUnicast = netip.MustParsePrefix("2000::/3")

// 6to4 addresses carry an IPv4 address in bits 16-48
var sixToFour = netip.MustParsePrefix("2002::/16")

func mustPrefixes(cidrs ...string) []netip.Prefix {
	prefixes := make([]netip.Prefix, len(cidrs))
	for i, cidr := range cidrs {
		prefixes[i] = netip.MustParsePrefix(cidr)
	}
	return prefixes
}

// Disallowed returns true for private, loopback, link-local, reserved,
// unspecified and multicast addresses. IPv4 mapped IPv6 addresses are checked
// as the IPv4 address they map to. IPv6 outside of 2000::/3 is always disallowed.
func Disallowed(ip net.IP) bool {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return true
	}
	return disallowedAddr(addr.Unmap())
}

func disallowedAddr(addr netip.Addr) bool {
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() || addr.IsUnspecified() {
		return true
	}

	if addr.Is6() {
		if !globalUnicast.Contains(addr) {
			return true
		}
		if sixToFour.Contains(addr) {
			b := addr.As16()
			if disallowedAddr(netip.AddrFrom4([4]byte{b[2], b[3], b[4], b[5]})) {
				return true
			}
		}
	}

	for _, prefix := range reservedPrefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ParseHostIP parses host as an ip address. Besides the canonical forms this
// also accepts the legacy numeric IPv4 notations browsers still resolve
// without DNS (2130706433, 0x7f.1, 0177.0.0.1).
func ParseHostIP(host string) (net.IP, bool) {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if i := strings.IndexByte(host, '%'); i >= 0 {
		host = host[:i] // zone
	}

	if ip := net.ParseIP(host); ip != nil {
		return ip, true
	}
	return parseLegacyIPv4(host)
}

func parseLegacyIPv4(host string) (net.IP, bool) {
	host = strings.TrimSuffix(host, ".")
	parts := strings.Split(host, ".")
	if len(parts) == 0 || len(parts) > 4 {
		return nil, false
	}

	nums := make([]uint64, len(parts))
	for i, part := range parts {
		n, ok := parseIPv4Part(part)
		if !ok {
			return nil, false
		}
		nums[i] = n
	}

	// all but the last part are single bytes, the last part fills the remaining bytes
	for _, n := range nums[:len(nums)-1] {
		if n > 0xff {
			return nil, false
		}
	}
	last := nums[len(nums)-1]
	if last >= 1<<(8*uint(5-len(nums))) {
		return nil, false
	}

	var v uint64
	for _, n := range nums[:len(nums)-1] {
		v = v<<8 | n
	}
	v = v<<(8*uint(5-len(nums))) | last

	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v)), true
}

func parseIPv4Part(part string) (uint64, bool) {
	if part == "" {
		return 0, false
	}
	base := 10
	lower := strings.ToLower(part)
	switch {
	case strings.HasPrefix(lower, "0x"):
		base = 16
		lower = lower[2:]
		if lower == "" {
			return 0, true
		}
	case len(lower) > 1 && lower[0] == '0':
		base = 8
		lower = lower[1:]
	}
	n, err := strconv.ParseUint(lower, base, 32)
	if err != nil {
		return 0, false
	}
	return n, true
}
