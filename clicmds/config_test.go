package clicmds_test

import (
	"flag"
	"testing"
	"time"

	"github.com/urfave/cli/v2"
	"gitlab.com/trackerker/clicmds"
)

func TestDecodeConfig(t *testing.T) {
	cfg, err := clicmds.DecodeConfig(`
url = "https://example.com"
nav_timeout = "10s"
settle_time = "2s"
retries = 5
num_scanners = 4
data_path = "/tmp/reports"
`)
	if err != nil {
		t.Fatalf("error decoding: %s\n", err)
	}

	if cfg.URL != "https://example.com" || cfg.NavTimeout != 10*time.Second || cfg.SettleTime != 2*time.Second {
		t.Fatalf("unexpected config %#v\n", cfg)
	}

	if cfg.Retries != 5 || cfg.NumScanners != 4 || cfg.DataPath != "/tmp/reports" {
		t.Fatalf("unexpected config %#v\n", cfg)
	}

	if _, err := clicmds.DecodeConfig(`nav_timeout = "soon"`); err == nil {
		t.Fatalf("expected error for a bad duration")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range clicmds.ScanFlags() {
		if err := f.Apply(set); err != nil {
			t.Fatalf("error applying flag: %s\n", err)
		}
	}

	if err := set.Parse([]string{"--url", "https://example.com", "--navtimeout", "5s"}); err != nil {
		t.Fatalf("error parsing flags: %s\n", err)
	}

	cfg, err := clicmds.LoadConfig(cli.NewContext(cli.NewApp(), set, nil))
	if err != nil {
		t.Fatalf("error loading config: %s\n", err)
	}

	if cfg.URL != "https://example.com" || cfg.NavTimeout != 5*time.Second {
		t.Fatalf("flags were not applied %#v\n", cfg)
	}

	if cfg.SettleTime != 1500*time.Millisecond || cfg.Retries != 3 || cfg.ResolverTimeout != 5*time.Second {
		t.Fatalf("defaults were not applied %#v\n", cfg)
	}
}
