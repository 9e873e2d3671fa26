package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/api"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/dataimporter"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/realtime"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("BTP_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("BTP_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "barrietransit",
		Description: "Single binary of truth for the Barrie trip planner - runs all the services",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			realtime.RegisterCLI(),
			dataimporter.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
