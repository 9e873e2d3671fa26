package realtime

import (
	"github.com/mikermcconnell/BarrieTripPlanner-sub003/pkg/realtime/detourtracker"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "realtime",
		Usage: "Realtime sources",
		Subcommands: []*cli.Command{
			detourtracker.RegisterCLI(),
		},
	}
}
