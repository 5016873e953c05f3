package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/urfave/cli/v3"

	"github.com/tgifai/thursday/internal/app"
	"github.com/tgifai/thursday/internal/scheduler"
)

var statusHwd = &StatusRunner{}

type StatusRunner struct{}

func (r *StatusRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show rules, eligibility, fired slots, lock holder and recent dispatches",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw snapshot as JSON",
			},
		},
		Action: r.run,
	}
}

func (r *StatusRunner) run(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, app.Options{Offline: true})
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	defer func() { _ = a.Stop(context.Background()) }()

	snap := a.Scheduler().Status(ctx)
	if cmd.Bool("json") {
		out, err := sonic.ConfigStd.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printSnapshot(snap)
	return nil
}

func printSnapshot(s scheduler.Snapshot) {
	fmt.Println()
	cTitle.Printf("  Today: %s, %s (%s)\n", s.Today, s.Now.Format(time.DateTime), s.Timezone)
	if s.TodayEligible {
		cSuccess.Println("  ✓ today is an eligible day")
	} else {
		cDim.Printf("  next eligible day in %d day(s)\n", s.DaysUntilNextEligible)
	}
	cDim.Printf("  eligible days: %s\n", strings.Join(s.EligibleDays, ", "))
	cDim.Printf("  recipients:    %s\n", joinOrNone(s.Recipients))
	cDim.Printf("  image:         %s\n", s.Image)
	fmt.Println()

	cTitle.Println("  Rules")
	for _, rs := range s.Rules {
		state := cSuccess.Sprint("on ")
		if !rs.Enabled {
			state = cDim.Sprint("off")
		}
		next := "-"
		if rs.NextFire != nil {
			next = rs.NextFire.Format("Mon 2006-01-02 15:04")
		}
		fired := ""
		if rs.FiredToday {
			fired = cSuccess.Sprint("  fired today")
		}
		fmt.Printf("  %s %-8s %-9s %s  next: %s%s\n", state, rs.ID, rs.Weekday, rs.Clock, next, fired)
	}
	fmt.Println()

	if s.LockHolder != nil {
		cWarn.Printf("  lock held by %s (pid %d on %s) since %s\n",
			s.LockHolder.Owner, s.LockHolder.PID, s.LockHolder.Host, s.LockHolder.AcquiredAt.Format(time.DateTime))
	} else {
		cDim.Println("  lock: free")
	}
	cDim.Printf("  fired today: %s\n", joinOrNone(s.FiredSlots))
	fmt.Println()

	if len(s.Recent) > 0 {
		cTitle.Println("  Recent dispatches")
		for _, rep := range s.Recent {
			fmt.Printf("  %s  %s\n", rep.StartedAt.In(s.Now.Location()).Format(time.DateTime), rep.Summary())
		}
		fmt.Println()
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
