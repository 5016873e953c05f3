package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/tgifai/thursday/internal/config"
	"github.com/tgifai/thursday/internal/dispatch"
	"github.com/tgifai/thursday/internal/pkg/logs"
)

var (
	cTitle   = color.New(color.FgCyan, color.Bold)
	cWarn    = color.New(color.FgYellow)
	cSuccess = color.New(color.FgGreen)
	cError   = color.New(color.FgRed)
	cDim     = color.New(color.FgHiBlack)
)

// loadConfig reads the --config file and configures logging from it.
func loadConfig(cmd *cli.Command) (*config.Config, string, error) {
	cfgPath := strings.TrimSpace(cmd.String("config"))

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return nil, cfgPath, fmt.Errorf("config %s not found, run \"thursday init\" first", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("loading config error: %w", err)
	}

	if err = initLogger(cfg.Logging); err != nil {
		return nil, cfgPath, fmt.Errorf("init logger error: %w", err)
	}
	return cfg, cfgPath, nil
}

func initLogger(cfg config.LoggingConfig) error {
	return logs.Init(logs.Options{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		File:       cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	})
}

func printReport(r *dispatch.Report) {
	fmt.Println()
	cTitle.Printf("  %s\n", r.Summary())
	for _, res := range r.Results {
		switch res.Outcome {
		case dispatch.OutcomeSuccess:
			cSuccess.Printf("  ✓ %s", res.Recipient)
		case dispatch.OutcomeFallback:
			cWarn.Printf("  ~ %s (fallback: %s)", res.Recipient, res.GenerationError)
		default:
			cError.Printf("  ✗ %s: %s", res.Recipient, res.Error)
		}
		if res.ImageSent {
			cDim.Print("  +image")
		} else if res.ImageError != "" {
			cWarn.Printf("  image failed: %s", res.ImageError)
		}
		fmt.Println()
	}
	fmt.Println()
}
