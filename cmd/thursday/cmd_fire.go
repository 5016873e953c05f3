package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tgifai/thursday/internal/app"
	"github.com/tgifai/thursday/internal/pkg/utils"
	"github.com/tgifai/thursday/internal/rule"
	"github.com/tgifai/thursday/internal/scheduler"
)

var fireHwd = &FireRunner{}

type FireRunner struct{}

func (r *FireRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "fire",
		Usage: "Dispatch a rule right now, bypassing the schedule and the fired-slot ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "rule",
				Usage: "Rule to fire: morning, noon, evening, night or custom",
				Value: rule.IDCustom,
			},
			&cli.BoolFlag{
				Name:  "random",
				Usage: "Fire a randomly chosen fixed Thursday rule",
			},
			&cli.IntFlag{
				Name:  "weekday",
				Usage: "Label the message as this weekday (1 = Monday ... 7 = Sunday)",
			},
			&cli.IntFlag{
				Name:  "hour",
				Usage: "Label the message with this hour",
				Value: -1,
			},
			&cli.IntFlag{
				Name:  "minute",
				Usage: "Label the message with this minute",
				Value: -1,
			},
			&cli.StringSliceFlag{
				Name:  "to",
				Usage: "Recipient (channelID:chatID); repeat to address several. Defaults to the configured list",
			},
			&cli.StringFlag{
				Name:  "prompt",
				Usage: "Prompt override for this dispatch",
			},
		},
		Action: r.run,
	}
}

func (r *FireRunner) run(ctx context.Context, cmd *cli.Command) error {
	ruleID := strings.TrimSpace(cmd.String("rule"))
	if cmd.Bool("random") {
		ids := make([]string, 0, len(rule.FixedTimes))
		for _, ft := range rule.FixedTimes {
			ids = append(ids, ft.ID)
		}
		ruleID = utils.Pick(ids)
	}

	weekday, hour, minute := int(cmd.Int("weekday")), int(cmd.Int("hour")), int(cmd.Int("minute"))
	if err := validateLabel(weekday, hour, minute); err != nil {
		return err
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	defer func() { _ = a.Stop(context.Background()) }()

	at := labelTime(time.Now().In(cfg.Schedule.Location()), weekday, hour, minute)
	cDim.Printf("  firing %s as %s %s\n", ruleID, rule.WeekdayOf(at), at.Format("15:04"))

	report, err := a.Scheduler().FireNow(ctx, ruleID, scheduler.FireOptions{
		Recipients: cmd.StringSlice("to"),
		Prompt:     strings.TrimSpace(cmd.String("prompt")),
		At:         at,
	})
	if err != nil {
		return err
	}
	printReport(report)

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d recipients failed", len(failed), len(report.Results))
	}
	return nil
}

func validateLabel(weekday, hour, minute int) error {
	if weekday != 0 && (weekday < 1 || weekday > 7) {
		return errors.New("--weekday must be within 1..7")
	}
	if hour < -1 || hour > 23 {
		return errors.New("--hour must be within 0..23")
	}
	if minute < -1 || minute > 59 {
		return errors.New("--minute must be within 0..59")
	}
	return nil
}

// labelTime moves now forward to the requested weekday of the current week
// cycle and overrides the clock fields that are set (>= 0).
func labelTime(now time.Time, weekday, hour, minute int) time.Time {
	t := now
	if weekday >= 1 && weekday <= 7 {
		diff := (int(rule.WeekdayFromNumber(weekday)) - int(rule.WeekdayOf(now)) + 7) % 7
		t = t.AddDate(0, 0, diff)
	}
	if hour < 0 {
		hour = t.Hour()
	}
	if minute < 0 {
		minute = t.Minute()
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, t.Location())
}
