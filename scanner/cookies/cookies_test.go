package cookies_test

import (
	"testing"

	"gitlab.com/trackerker/mock"
	"gitlab.com/trackerker/scanner/cookies"
)

func TestIsThirdParty(t *testing.T) {
	var tests = []struct {
		cookieDomain string
		mainDomain   string
		want         bool
	}{
		{"other.com", "example.com", true},
		{"", "example.com", true},
		{"example.com", "example.com", false},
		{".example.com", "example.com", false},
		{"www.example.com", "example.com", false},
		{".ads.example.co.uk", "example.com", true},
		{"..example.com", "example.com", false},
		{"localhost", "example.com", true},
	}

	for _, tt := range tests {
		if got := cookies.IsThirdParty(tt.cookieDomain, tt.mainDomain); got != tt.want {
			t.Fatalf("IsThirdParty(%q, %q) expected %v got %v\n", tt.cookieDomain, tt.mainDomain, tt.want, got)
		}
	}
}

func TestClassify(t *testing.T) {
	records := cookies.Classify(mock.MakeMockCookies(), "example.com")
	if len(records) != 3 {
		t.Fatalf("expected 3 records got %d\n", len(records))
	}

	if records[0].IsThirdParty {
		t.Fatalf("session cookie on .example.com should be first party")
	}

	if !records[0].HTTPOnly || !records[0].Secure || records[0].SameSite != "Lax" || records[0].Path != "/" {
		t.Fatalf("cookie attributes were not copied %#v\n", records[0])
	}

	if !records[1].IsThirdParty || !records[2].IsThirdParty {
		t.Fatalf("tracker.net and domainless cookies should be third party")
	}

	if records[0].Domain != ".example.com" {
		t.Fatalf("domain should be reported as captured got %s\n", records[0].Domain)
	}

	if cross := cookies.CrossSite(records); cross != 2 {
		t.Fatalf("expected 2 cross site cookies got %d\n", cross)
	}
}
