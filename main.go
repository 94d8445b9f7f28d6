package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/trackerker/clicmds"
)

func main() {
	app := cli.NewApp()
	app.Name = "trackerker"
	app.Version = "0.1"
	app.Usage = "Grade how much a website tracks its visitors"
	app.Flags = clicmds.LoggingFlags()
	app.Before = clicmds.SetupLogging
	app.Commands = []*cli.Command{
		{
			Name:    "scan",
			Aliases: []string{"s"},
			Usage:   "scan one or more urls and print their privacy report",
			Action:  clicmds.Scan,
			Flags:   clicmds.ScanFlags(),
		},
		{
			Name:    "history",
			Aliases: []string{"h"},
			Usage:   "print the stored reports of a website",
			Action:  clicmds.History,
			Flags:   clicmds.HistoryFlags(),
		},
		{
			Name:    "check",
			Aliases: []string{"c"},
			Usage:   "check urls are allowed to be scanned without scanning them",
			Action:  clicmds.Check,
			Flags:   clicmds.CheckFlags(),
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Msg("trackerker failed")
	}
}
