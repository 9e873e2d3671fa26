package detourtracker

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/database"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/dataimporter/gtfsstatic"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/detour"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/elastic_client"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/redis_client"
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/transit"
)

const sweepInterval = 30 * time.Second

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "detour-tracker",
		Usage: "Detour engine ingests location data and tracks off-route excursions",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run an instance of the detour engine",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "gtfs",
						Usage:    "path to the extracted GTFS Schedule dataset",
						EnvVars:  []string{"BTP_GTFS_STATIC_PATH"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "overrides",
						Usage:   "path to the per-route detour config overrides file",
						EnvVars: []string{"BTP_DETOUR_OVERRIDES_PATH"},
					},
					&cli.StringFlag{
						Name:    "instance",
						Usage:   "instance name used for state persistence",
						EnvVars: []string{"BTP_INSTANCE"},
						Value:   "primary",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					reference, err := gtfsstatic.LoadReferenceData(c.String("gtfs"))
					if err != nil {
						return err
					}

					overrides := map[string]detour.RouteConfigOverride{}
					if overridesPath := c.String("overrides"); overridesPath != "" {
						overrides, err = detour.LoadRouteOverrides(overridesPath)
						if err != nil {
							return err
						}
					}

					engine := detour.NewEngine(detour.GetEngineConfig(), overrides)

					instance := c.String("instance")
					state := RestoreState(instance)

					tracker := NewTracker(engine, state, reference, instance)

					StartConsumers(tracker)

					go runSweeper(tracker)

					StartStatsServer(tracker)

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					tracker.Persist()

					return nil
				},
			},
			{
				Name:  "cleaner",
				Usage: "run the queue cleaner for the detour queue",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					StartCleaner()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
			{
				Name:  "testdetect",
				Usage: "push a synthetic excursion through the detour engine",
				Action: func(c *cli.Context) error {
					config := detour.GetEngineConfig()
					// Synthetic ticks all land in the same instant so the
					// duration gate has to come off for this to fire
					config.Defaults.MinOffRouteDuration = 0

					engine := detour.NewEngine(config, nil)
					state := detour.NewEngineState()

					reference := &transit.ReferenceData{
						Shapes: map[string][]transit.Location{
							"shape_8": {
								{Latitude: 44.3890, Longitude: -79.6900},
								{Latitude: 44.3950, Longitude: -79.6900},
								{Latitude: 44.4010, Longitude: -79.6900},
								{Latitude: 44.4100, Longitude: -79.6900},
							},
						},
						RouteShapes: map[string][]string{"8": {"shape_8"}},
					}

					// Two vehicles running the same side street east of the
					// corridor, one after the other
					for _, vehicleID := range []string{"bus-801", "bus-802"} {
						points := []transit.Location{
							{Latitude: 44.3890, Longitude: -79.6900},
							{Latitude: 44.3950, Longitude: -79.6830},
							{Latitude: 44.3990, Longitude: -79.6830},
							{Latitude: 44.4030, Longitude: -79.6830},
							{Latitude: 44.4100, Longitude: -79.6900},
						}

						for _, point := range points {
							location := point
							vehicle := &transit.Vehicle{
								PrimaryIdentifier: vehicleID,
								RouteID:           "8",
								DirectionID:       "0",
								Location:          &location,
							}

							if result := engine.ProcessVehicle(state, vehicle, reference); result != nil {
								log.Info().Str("detour", result.PrimaryIdentifier).Msg("Detour recorded")
							}
						}
					}

					pretty.Println(state.GetActiveDetours())

					return nil
				},
			},
		},
	}
}

func runSweeper(tracker *Tracker) {
	for range time.Tick(sweepInterval) {
		archived := tracker.Sweep()

		tracker.PersistHistory(archived)
		tracker.Persist()
	}
}
