package clicmds

import (
	"io/ioutil"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gitlab.com/trackerker/trackerk"
)

// fileConfig is the toml layout of a config file, durations are strings like "30s"
type fileConfig struct {
	URL             string `toml:"url"`
	NavTimeout      string `toml:"nav_timeout"`
	OverallTimeout  string `toml:"overall_timeout"`
	SettleTime      string `toml:"settle_time"`
	QuietPeriod     string `toml:"quiet_period"`
	ResolverTimeout string `toml:"resolver_timeout"`
	ChromePath      string `toml:"chrome_path"`
	LeaserSocket    string `toml:"leaser_socket"`
	TmpDir          string `toml:"tmp_dir"`
	DataPath        string `toml:"data_path"`
	Retries         int    `toml:"retries"`
	RetryBackoff    string `toml:"retry_backoff"`
	NumScanners     int    `toml:"num_scanners"`
	MetricsAddr     string `toml:"metrics_addr"`
}

// ConfigFlags shared by commands that run scans
func ConfigFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "toml config to use, flags fill in anything it leaves unset",
			Value: "",
		},
		&cli.DurationFlag{
			Name:  "navtimeout",
			Usage: "timeout for navigation and for the network to go quiet",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "overall timeout for a single scan attempt",
		},
		&cli.DurationFlag{
			Name:  "resolvertimeout",
			Usage: "timeout for resolving the target before scanning",
		},
		&cli.StringFlag{
			Name:  "chrome",
			Usage: "path to the chrome binary",
		},
		&cli.StringFlag{
			Name:  "leaser",
			Usage: "unix socket of a browser leaser service, chrome is started locally when empty",
		},
		&cli.StringFlag{
			Name:  "tmpdir",
			Usage: "directory for browser profiles",
		},
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory",
		},
	}
}

// LoadConfig from the --config file if given, then flags, then defaults
func LoadConfig(ctx *cli.Context) (*trackerk.Config, error) {
	cfg := &trackerk.Config{}

	if ctx.String("config") != "" {
		data, err := ioutil.ReadFile(ctx.String("config"))
		if err != nil {
			return nil, err
		}

		if cfg, err = DecodeConfig(string(data)); err != nil {
			return nil, errors.Wrap(err, "failed to read config "+ctx.String("config"))
		}
	}

	cfg.Merge(flagConfig(ctx))
	cfg.Merge(trackerk.DefaultConfig())
	return cfg, nil
}

// DecodeConfig from toml
func DecodeConfig(data string) (*trackerk.Config, error) {
	file := &fileConfig{}
	if err := toml.NewDecoder(strings.NewReader(data)).Decode(file); err != nil {
		return nil, err
	}

	cfg := &trackerk.Config{
		URL:          file.URL,
		ChromePath:   file.ChromePath,
		LeaserSocket: file.LeaserSocket,
		TmpDir:       file.TmpDir,
		DataPath:     file.DataPath,
		Retries:      file.Retries,
		NumScanners:  file.NumScanners,
		MetricsAddr:  file.MetricsAddr,
	}

	durations := []struct {
		name  string
		value string
		into  *time.Duration
	}{
		{"nav_timeout", file.NavTimeout, &cfg.NavTimeout},
		{"overall_timeout", file.OverallTimeout, &cfg.OverallTimeout},
		{"settle_time", file.SettleTime, &cfg.SettleTime},
		{"quiet_period", file.QuietPeriod, &cfg.QuietPeriod},
		{"resolver_timeout", file.ResolverTimeout, &cfg.ResolverTimeout},
		{"retry_backoff", file.RetryBackoff, &cfg.RetryBackoff},
	}

	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, errors.Wrap(err, d.name)
		}
		*d.into = parsed
	}
	return cfg, nil
}

func flagConfig(ctx *cli.Context) *trackerk.Config {
	return &trackerk.Config{
		URL:             ctx.String("url"),
		NavTimeout:      ctx.Duration("navtimeout"),
		OverallTimeout:  ctx.Duration("timeout"),
		ResolverTimeout: ctx.Duration("resolvertimeout"),
		ChromePath:      ctx.String("chrome"),
		LeaserSocket:    ctx.String("leaser"),
		TmpDir:          ctx.String("tmpdir"),
		DataPath:        ctx.String("datadir"),
		Retries:         ctx.Int("retries"),
		RetryBackoff:    ctx.Duration("backoff"),
		NumScanners:     ctx.Int("numscanners"),
		MetricsAddr:     ctx.String("metrics"),
	}
}
