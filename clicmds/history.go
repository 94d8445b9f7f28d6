package clicmds

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/trackerker/scanner/report"
	"gitlab.com/trackerker/store"
)

// HistoryFlags for viewing stored reports
func HistoryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory",
			Value: "trackerktmp",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "url or host name of the website, lists every scanned website when empty",
		},
		&cli.IntFlag{
			Name:  "last",
			Usage: "only print the last n reports, 0 for all",
			Value: 0,
		},
	}
}

// History prints the stored reports of a website, or the scanned websites when no url is given
func History(ctx *cli.Context) error {
	reports := store.NewReportStore(ctx.String("datadir"))
	if err := reports.Init(); err != nil {
		log.Error().Err(err).Msg("failed to init database for viewing")
		return err
	}
	defer reports.Close()

	if ctx.String("url") == "" {
		return PrintWebsites(os.Stdout, reports)
	}
	return PrintHistory(os.Stdout, reports, Website(ctx.String("url")), ctx.Int("last"))
}

// PrintWebsites that have stored reports along with when they were last scanned
func PrintWebsites(writer io.Writer, reports store.ReportStorer) error {
	websites, err := reports.Websites()
	if err != nil {
		return err
	}

	if len(websites) == 0 {
		fmt.Fprintf(writer, "no websites have been scanned\n")
		return nil
	}

	for _, website := range websites {
		scanned, err := reports.LastScanned(website)
		if err != nil {
			return err
		}
		fmt.Fprintf(writer, "%s\tlast scanned %s\n", website, scanned.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

// PrintHistory of website, oldest first
func PrintHistory(writer io.Writer, reports store.ReportStorer, website string, last int) error {
	scanned, err := reports.LastScanned(website)
	if errors.Is(err, store.ErrNotScanned) {
		fmt.Fprintf(writer, "%s has not been scanned\n", website)
		return nil
	}
	if err != nil {
		return err
	}

	results, err := reports.Reports(website)
	if err != nil {
		return err
	}

	fmt.Fprintf(writer, "%s: %d reports, last scanned %s\n\n", website, len(results), scanned.Format("2006-01-02 15:04:05 MST"))
	if last > 0 && len(results) > last {
		results = results[len(results)-last:]
	}

	for _, result := range results {
		fmt.Fprintf(writer, "scanned %s\n", result.Timestamp.Format("2006-01-02 15:04:05 MST"))
		if err := report.PrintResult(writer, result); err != nil {
			return err
		}
	}
	return nil
}
