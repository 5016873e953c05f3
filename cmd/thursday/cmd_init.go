package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tgifai/thursday/internal/config"
)

var initHwd = &InitRunner{}

type InitRunner struct{}

func (r *InitRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a starter config file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config (the old file is backed up)",
			},
		},
		Action: r.run,
	}
}

func (r *InitRunner) run(_ context.Context, cmd *cli.Command) error {
	cfgPath := strings.TrimSpace(cmd.String("config"))

	cfg, err := config.WriteDefault(cfgPath, cmd.Bool("force"))
	if errors.Is(err, config.ErrConfigExists) {
		cWarn.Printf("  Config already exists at %s, use --force to overwrite\n", cfgPath)
		return nil
	}
	if err != nil {
		cError.Printf("  ✗ Failed to write config: %v\n", err)
		return err
	}

	cSuccess.Printf("  ✓ Created %s\n", cfgPath)
	cDim.Printf("  Data directory:  %s\n", cfg.DataDir)
	cDim.Printf("  Model:           %s\n", cfg.Generation.Model)
	fmt.Println()
	fmt.Println("  Next steps:")
	fmt.Println("    1. set providers.openai.config.api_key (or point generation.model at another provider)")
	fmt.Println("    2. enable a channel and add its credentials")
	fmt.Println("    3. list recipients under schedule.recipients, e.g. telegram:123456")
	fmt.Println()
	cSuccess.Println("  All set! Run \"thursday run\" to start.")
	return nil
}
