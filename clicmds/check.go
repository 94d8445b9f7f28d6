package clicmds

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"
	"gitlab.com/trackerker/scanner"
	"gitlab.com/trackerker/scanner/guard"
	"gitlab.com/trackerker/trackerk"
)

// CheckFlags for checking targets without scanning
func CheckFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "resolvertimeout",
			Usage: "timeout for resolving the target",
		},
		&cli.BoolFlag{
			Name:  "dump",
			Usage: "dump rejection details",
			Value: false,
		},
	}
}

// Check the targets passed as arguments are allowed to be scanned, no browser is started
func Check(ctx *cli.Context) error {
	targets := ctx.Args().Slice()
	if len(targets) == 0 {
		return cli.Exit("no targets given", 1)
	}

	timeout := ctx.Duration("resolvertimeout")
	if timeout == 0 {
		timeout = trackerk.DefaultConfig().ResolverTimeout
	}

	rejected := CheckTargets(context.Background(), os.Stdout, guard.New(net.DefaultResolver, timeout), targets, ctx.Bool("dump"))
	if rejected > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d targets rejected", rejected, len(targets)), 1)
	}
	return nil
}

// CheckTargets prints whether each target is allowed, returns how many were rejected
func CheckTargets(ctx context.Context, writer io.Writer, validator scanner.Validator, targets []string, dump bool) int {
	rejected := 0
	for _, target := range targets {
		err := validator.Validate(ctx, target)
		if err == nil {
			fmt.Fprintf(writer, "%s: allowed\n", target)
			continue
		}

		rejected++
		if verr, ok := trackerk.IsValidationError(err); ok {
			fmt.Fprintf(writer, "%s: rejected (%s)\n", target, verr.Reason)
		} else {
			fmt.Fprintf(writer, "%s: rejected (%s)\n", target, err)
		}

		if dump {
			spew.Fdump(writer, err)
		}
	}
	return rejected
}
