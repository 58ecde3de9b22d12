package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ojpilot/ojpilot/pkg/api"
	"github.com/ojpilot/ojpilot/pkg/journey"
	"github.com/ojpilot/ojpilot/pkg/tools"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("OJPILOT_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("OJPILOT_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "ojpilot",
		Description: "Single binary of truth for OJPilot - Swiss public transport tools over OJP",

		Commands: []*cli.Command{
			tools.RegisterCLI(),
			api.RegisterCLI(),
			journey.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
