package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tgifai/thursday/internal/dispatch"
	"github.com/tgifai/thursday/internal/ledger"
	"github.com/tgifai/thursday/internal/pkg/logs"
	"github.com/tgifai/thursday/internal/rule"
)

// FireOptions adjust a manual dispatch.
type FireOptions struct {
	// Recipients overrides the configured list when non-empty.
	Recipients []string
	// Prompt overrides the rule's prompt.
	Prompt string
	// At labels the message: prompt placeholders render with this time.
	At     time.Time
	Header string
}

// FireNow dispatches ruleID immediately. The schedule, the lock and the
// ledger are bypassed and nothing is recorded as fired.
func (s *Scheduler) FireNow(ctx context.Context, ruleID string, opts FireOptions) (*dispatch.Report, error) {
	r, ok := s.deps.Rules.Get(ruleID)
	if !ok {
		return nil, fmt.Errorf("unknown rule %q", ruleID)
	}

	recipients := opts.Recipients
	if len(recipients) == 0 {
		recipients = s.deps.Recipients
	}
	if len(recipients) == 0 {
		return nil, errors.New("no recipients configured")
	}

	at := opts.At
	if at.IsZero() {
		at = s.clock()
	}
	at = at.In(s.deps.Location)

	dopts := []dispatch.Option{dispatch.WithTrigger(dispatch.TriggerManual), dispatch.WithTime(at)}
	if opts.Prompt != "" {
		dopts = append(dopts, dispatch.WithPrompt(opts.Prompt))
	}
	if opts.Header != "" {
		dopts = append(dopts, dispatch.WithHeader(opts.Header))
	}

	logs.CtxInfo(ctx, "[scheduler] manual fire of %s (%s %s) to %d recipients",
		r.ID, rule.WeekdayOf(at), at.Format("15:04"), len(recipients))
	return s.deps.Dispatcher.Dispatch(ctx, r, ledger.KeyFor(at, r.ID), recipients, dopts...), nil
}
