package gtfsrt

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/redis_client"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "gtfsrt",
		Usage: "Poll GTFS-RT feeds onto the detour queue",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "poll the feeds on an interval",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "vehicle-positions-url",
						Usage:    "GTFS-RT VehiclePositions feed URL",
						EnvVars:  []string{"BTP_GTFSRT_VEHICLE_POSITIONS_URL"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "service-alerts-url",
						Usage:   "GTFS-RT ServiceAlerts feed URL",
						EnvVars: []string{"BTP_GTFSRT_SERVICE_ALERTS_URL"},
					},
					&cli.DurationFlag{
						Name:    "interval",
						Usage:   "how often to poll the feeds",
						EnvVars: []string{"BTP_GTFSRT_INTERVAL"},
						Value:   30 * time.Second,
					},
				},
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					queue, err := redis_client.QueueConnection.OpenQueue("detour-queue")
					if err != nil {
						return err
					}

					realtime := Realtime{}
					realtime.SetupRealtimeQueue(queue)

					feedURLs := []string{c.String("vehicle-positions-url")}
					if alertsURL := c.String("service-alerts-url"); alertsURL != "" {
						feedURLs = append(feedURLs, alertsURL)
					}

					interval := c.Duration("interval")

					for {
						startTime := time.Now()

						for _, feedURL := range feedURLs {
							if err := importFeed(&realtime, feedURL); err != nil {
								log.Error().Err(err).Str("url", feedURL).Msg("Failed to import feed")
							}
						}

						executionDuration := time.Since(startTime)

						waitTime := interval - executionDuration
						if waitTime.Seconds() > 0 {
							time.Sleep(waitTime)
						}
					}
				},
			},
			{
				Name:      "file",
				Usage:     "import a single feed snapshot from disk",
				ArgsUsage: "<path>",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					queue, err := redis_client.QueueConnection.OpenQueue("detour-queue")
					if err != nil {
						return err
					}

					realtime := Realtime{}
					realtime.SetupRealtimeQueue(queue)

					file, err := os.Open(c.Args().First())
					if err != nil {
						return err
					}
					defer file.Close()

					return realtime.Import(file)
				},
			},
		},
	}
}

func importFeed(realtime *Realtime, feedURL string) error {
	operation := func() error {
		resp, err := http.Get(feedURL)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("feed returned status %d", resp.StatusCode)
		}

		return realtime.Import(resp.Body)
	}

	retryPolicy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)

	return backoff.Retry(operation, retryPolicy)
}
