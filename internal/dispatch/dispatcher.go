package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tgifai/thursday/internal/consts"
	"github.com/tgifai/thursday/internal/generator"
	"github.com/tgifai/thursday/internal/ledger"
	"github.com/tgifai/thursday/internal/pkg/logs"
	"github.com/tgifai/thursday/internal/pkg/prometheus"
	"github.com/tgifai/thursday/internal/rule"
)

// Deliverer is the transport used to reach a recipient.
type Deliverer interface {
	SendText(ctx context.Context, target, text string) error
	SendImage(ctx context.Context, target, path string) error
}

type Options struct {
	FallbackText string
	// ImagePath is sent after the text when it exists on disk.
	ImagePath string
	// Interval spaces consecutive recipients; zero disables pacing.
	Interval time.Duration
	Journal  *Journal
}

type Dispatcher struct {
	gen     generator.Generator
	out     Deliverer
	opts    Options
	limiter *rate.Limiter
	now     func() time.Time
}

func New(gen generator.Generator, out Deliverer, opts Options) *Dispatcher {
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	return &Dispatcher{
		gen:     gen,
		out:     out,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
}

type dispatchOptions struct {
	trigger Trigger
	header  string
	prompt  string
	at      time.Time
}

type Option func(*dispatchOptions)

// WithTrigger marks the report as scheduled or manual.
func WithTrigger(t Trigger) Option {
	return func(o *dispatchOptions) { o.trigger = t }
}

// WithHeader prepends a line to every delivered text.
func WithHeader(header string) Option {
	return func(o *dispatchOptions) { o.header = header }
}

// WithTime sets the time prompt placeholders render with; the default is
// the moment each recipient is served.
func WithTime(at time.Time) Option {
	return func(o *dispatchOptions) { o.at = at }
}

// WithPrompt overrides the rule's prompt.
func WithPrompt(prompt string) Option {
	return func(o *dispatchOptions) { o.prompt = prompt }
}

// Dispatch generates and delivers r's message to every recipient in order.
// A failure for one recipient never stops the others, and nothing is
// retried. The report is appended to the journal when one is configured.
func (d *Dispatcher) Dispatch(ctx context.Context, r rule.Rule, slot ledger.SlotKey, recipients []string, opts ...Option) *Report {
	o := dispatchOptions{trigger: TriggerSchedule, prompt: r.Prompt}
	for _, opt := range opts {
		opt(&o)
	}
	ctx = context.WithValue(ctx, consts.CtxKeyRuleID, r.ID)

	report := &Report{
		ID:        uuid.NewString(),
		RuleID:    r.ID,
		Slot:      slot.String(),
		Trigger:   o.trigger,
		StartedAt: d.now(),
		Results:   make([]Result, 0, len(recipients)),
	}

	imagePath := d.imagePath(ctx)
	logs.CtxInfo(ctx, "[dispatch] %s %s to %d recipients", o.trigger, report.Slot, len(recipients))

	for i, target := range recipients {
		if err := d.limiter.Wait(ctx); err != nil {
			// cancelled: the rest are recorded as failed without sending
			for _, rest := range recipients[i:] {
				report.Results = append(report.Results, Result{Recipient: rest, Outcome: OutcomeFailed, Error: err.Error()})
			}
			break
		}
		res := d.deliverOne(ctx, r, o, target, imagePath)
		report.Results = append(report.Results, res)
		prometheus.RecipientOutcomes.WithLabelValues(r.ID, string(res.Outcome)).Inc()
	}

	report.FinishedAt = d.now()
	if len(report.Failed()) > 0 {
		logs.CtxWarn(ctx, "[dispatch] %s", report.Summary())
	} else {
		logs.CtxInfo(ctx, "[dispatch] %s", report.Summary())
	}

	if d.opts.Journal != nil {
		if err := d.opts.Journal.Append(report); err != nil {
			logs.CtxWarn(ctx, "[dispatch] journal append failed: %v", err)
		}
	}
	return report
}

func (d *Dispatcher) deliverOne(ctx context.Context, r rule.Rule, o dispatchOptions, target, imagePath string) Result {
	ctx = context.WithValue(ctx, consts.CtxKeyRecipient, target)
	start := d.now()
	res := Result{Recipient: target, Outcome: OutcomeSuccess}

	at := o.at
	if at.IsZero() {
		at = start
	}
	prompt := generator.Render(o.prompt, at, target)
	text, err := d.gen.Generate(ctx, prompt, target)
	if err != nil {
		if errors.Is(err, generator.ErrUnavailable) {
			logs.CtxDebug(ctx, "[dispatch] generator unavailable for %s, using fallback", target)
		} else {
			logs.CtxWarn(ctx, "[dispatch] generation failed for %s, using fallback: %v", target, err)
		}
		text = d.opts.FallbackText
		res.Outcome = OutcomeFallback
		res.GenerationError = err.Error()
	}
	if o.header != "" {
		text = o.header + "\n" + text
	}

	if err := d.out.SendText(ctx, target, text); err != nil {
		logs.CtxError(ctx, "[dispatch] send text to %s failed: %v", target, err)
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		res.Duration = d.now().Sub(start)
		return res
	}

	if imagePath != "" {
		if err := d.out.SendImage(ctx, target, imagePath); err != nil {
			logs.CtxWarn(ctx, "[dispatch] send image to %s failed: %v", target, err)
			res.ImageError = err.Error()
		} else {
			res.ImageSent = true
		}
	}

	res.Duration = d.now().Sub(start)
	return res
}

func (d *Dispatcher) imagePath(ctx context.Context) string {
	if d.opts.ImagePath == "" {
		return ""
	}
	info, err := os.Stat(d.opts.ImagePath)
	if err != nil || info.IsDir() {
		logs.CtxWarn(ctx, "[dispatch] image %s not available, sending text only", d.opts.ImagePath)
		return ""
	}
	return d.opts.ImagePath
}

// ImageStatus describes the configured image for status output.
func ImageStatus(path string) string {
	if path == "" {
		return "not configured"
	}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return fmt.Sprintf("missing (%s)", path)
	case info.IsDir():
		return fmt.Sprintf("not a file (%s)", path)
	default:
		return fmt.Sprintf("ok (%s, %d bytes)", path, info.Size())
	}
}
