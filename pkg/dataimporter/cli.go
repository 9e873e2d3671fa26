package dataimporter

import (
	"github.com/urfave/cli/v2"

	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/dataimporter/gtfsrt"

	_ "time/tzdata"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Pull third party feeds onto the realtime queue",
		Subcommands: []*cli.Command{
			gtfsrt.RegisterCLI(),
		},
	}
}
