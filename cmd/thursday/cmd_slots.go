package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tgifai/thursday/internal/app"
)

var slotsHwd = &SlotsRunner{}

type SlotsRunner struct{}

func (r *SlotsRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "slots",
		Usage: "List fired slots recorded in the ledger",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "purge",
				Usage: "Drop entries not dated today (takes the dispatch lock)",
			},
		},
		Action: r.run,
	}
}

func (r *SlotsRunner) run(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, app.Options{Offline: true})
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	defer func() { _ = a.Stop(context.Background()) }()
	l := a.Ledger()

	if cmd.Bool("purge") {
		ok, err := a.Locker().TryAcquire(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("dispatch lock (%s) is held by a running scheduler, try again later", cfg.Lock.Backend)
		}
		defer func() { _ = a.Locker().Release(context.Background()) }()

		dropped, err := l.PurgeStale(time.Now().In(cfg.Schedule.Location()))
		if err != nil {
			return err
		}
		cSuccess.Printf("  ✓ purged %d stale entries\n", dropped)
	}

	entries := l.Entries()
	cDim.Printf("  %s: %d entries\n", l.Path(), len(entries))
	for _, k := range entries {
		fmt.Printf("  %s\n", k)
	}
	return nil
}
