package trackerk

import "time"

// Config for trackerker
type Config struct {
	URL             string
	NavTimeout      time.Duration // bounds navigation and the network quiet wait
	OverallTimeout  time.Duration // advisory, enforced by callers only
	SettleTime      time.Duration // extra wait for late firing trackers
	QuietPeriod     time.Duration // no network activity for this long == quiet
	ResolverTimeout time.Duration // bounds the guard's DNS lookups
	ChromePath      string
	LeaserSocket    string // ask a leaser service on this unix socket for browsers instead of starting them
	TmpDir          string
	DataPath        string
	Retries         int
	RetryBackoff    time.Duration
	NumScanners     int
	MetricsAddr     string
}

// DefaultConfig values, anything left zero in a loaded config is taken from here
func DefaultConfig() *Config {
	return &Config{
		NavTimeout:      30 * time.Second,
		OverallTimeout:  2 * time.Minute,
		SettleTime:      1500 * time.Millisecond,
		QuietPeriod:     500 * time.Millisecond,
		ResolverTimeout: 5 * time.Second,
		DataPath:        "trackerktmp",
		Retries:         3,
		RetryBackoff:    30 * time.Second,
		NumScanners:     1,
	}
}

// Merge fills the zero valued fields of c with those from other
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if c.URL == "" {
		c.URL = other.URL
	}
	if c.NavTimeout == 0 {
		c.NavTimeout = other.NavTimeout
	}
	if c.OverallTimeout == 0 {
		c.OverallTimeout = other.OverallTimeout
	}
	if c.SettleTime == 0 {
		c.SettleTime = other.SettleTime
	}
	if c.QuietPeriod == 0 {
		c.QuietPeriod = other.QuietPeriod
	}
	if c.ResolverTimeout == 0 {
		c.ResolverTimeout = other.ResolverTimeout
	}
	if c.ChromePath == "" {
		c.ChromePath = other.ChromePath
	}
	if c.LeaserSocket == "" {
		c.LeaserSocket = other.LeaserSocket
	}
	if c.TmpDir == "" {
		c.TmpDir = other.TmpDir
	}
	if c.DataPath == "" {
		c.DataPath = other.DataPath
	}
	if c.Retries == 0 {
		c.Retries = other.Retries
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = other.RetryBackoff
	}
	if c.NumScanners == 0 {
		c.NumScanners = other.NumScanners
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = other.MetricsAddr
	}
}
