package domain_test

import (
	"testing"

	"gitlab.com/trackerker/scanner/domain"
)

func TestRegistered(t *testing.T) {
	var tests = []struct {
		in       string
		expected string
	}{
		{"https://a.b.example.co.uk/x", "example.co.uk"},
		{"https://www.example.com/path?q=1", "example.com"},
		{"http://EXAMPLE.com:8080/", "example.com"},
		{"sub.example.com", "example.com"},
		{".example.com", "example.com"},
		{"example.com:443", "example.com"},
		{"//cdn.tracker.net/t.js", "tracker.net"},
		{"https://foo.bar.com.au/", "bar.com.au"},
		{"http://127.0.0.1/", ""},
		{"http://[::1]:80/", ""},
		{"co.uk", ""},
		{"localhost", ""},
		{"", ""},
		{"http://%zz", ""},
		{"not a host", ""},
	}

	for _, tt := range tests {
		if got := domain.Registered(tt.in); got != tt.expected {
			t.Fatalf("Registered(%q) expected %q got %q\n", tt.in, tt.expected, got)
		}
	}
}

func TestIsThirdParty(t *testing.T) {
	if !domain.IsThirdParty("https://www.google-analytics.com/analytics.js", "example.com") {
		t.Fatalf("google-analytics should be third party")
	}

	if domain.IsThirdParty("https://static.example.com/app.js", "example.com") {
		t.Fatalf("subdomain should be first party")
	}

	if domain.IsThirdParty("http://10.0.0.1/x.js", "example.com") {
		t.Fatalf("ip hosts have no registered domain and are not third party")
	}
}
