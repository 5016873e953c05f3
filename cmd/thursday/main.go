package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/tgifai/thursday"
	"github.com/tgifai/thursday/internal/consts"
	"github.com/tgifai/thursday/internal/pkg/logs"
)

func main() {
	cmd := &cli.Command{
		Name:    "thursday",
		Usage:   "Crazy Thursday broadcaster: weekly, at-most-once scheduled messages",
		Version: thursday.VERSION,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the config file",
				Value:   consts.DefaultConfigPath(),
			},
		},
		Commands: []*cli.Command{
			runHwd.cmd(),
			fireHwd.cmd(),
			statusHwd.cmd(),
			slotsHwd.cmd(),
			msgHwd.cmd(),
			initHwd.cmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logs.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}
