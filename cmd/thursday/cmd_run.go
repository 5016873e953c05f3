package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/tgifai/thursday/internal/app"
	"github.com/tgifai/thursday/internal/pkg/logs"
)

var runHwd = &RunRunner{}

type RunRunner struct{}

func (r *RunRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Run the scheduler until interrupted",
		Action: r.run,
	}
}

func (r *RunRunner) run(ctx context.Context, cmd *cli.Command) error {
	cfg, cfgPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logs.CtxInfo(ctx, "booting Thursday scheduler, using config file: %s...", cfgPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	if err = a.Start(ctx); err != nil {
		cancel()
		_ = a.Stop(context.Background())
		return fmt.Errorf("start runtime: %w", err)
	}

	logs.CtxInfo(ctx, "ALL IS WELL!!! Press Ctrl+C to stop.")

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case sig := <-signalCh:
		logs.CtxInfo(ctx, "Received shutdown signal (%s). Stopping scheduler...", sig.String())
	case <-ctx.Done():
		logs.CtxInfo(ctx, "Context canceled. Stopping scheduler...")
	}

	cancel()
	if err = a.Stop(context.Background()); err != nil {
		logs.CtxError(ctx, "stop runtime error: %v", err)
	}

	logs.CtxInfo(ctx, "all stopped, good bye!")
	return nil
}
