package dispatch

import (
	"fmt"
	"strings"
	"time"
)

type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFallback Outcome = "fallback" // generation failed, fallback text delivered
	OutcomeFailed   Outcome = "failed"   // text delivery failed
)

type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerManual   Trigger = "manual"
)

// Result is the outcome for one recipient.
type Result struct {
	Recipient       string        `json:"recipient"`
	Outcome         Outcome       `json:"outcome"`
	Error           string        `json:"error,omitempty"`
	GenerationError string        `json:"generation_error,omitempty"`
	ImageSent       bool          `json:"image_sent"`
	ImageError      string        `json:"image_error,omitempty"`
	Duration        time.Duration `json:"duration"`
}

// Report covers one rule dispatched to the whole recipient list.
type Report struct {
	ID         string    `json:"id"`
	RuleID     string    `json:"rule_id"`
	Slot       string    `json:"slot"`
	Trigger    Trigger   `json:"trigger"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Results    []Result  `json:"results"`
}

func (r *Report) Counts() map[Outcome]int {
	out := make(map[Outcome]int, 3)
	for _, res := range r.Results {
		out[res.Outcome]++
	}
	return out
}

// Failed lists recipients whose text delivery failed, in dispatch order.
func (r *Report) Failed() []string {
	var out []string
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			out = append(out, res.Recipient)
		}
	}
	return out
}

func (r *Report) Result(recipient string) (Result, bool) {
	for _, res := range r.Results {
		if res.Recipient == recipient {
			return res, true
		}
	}
	return Result{}, false
}

func (r *Report) Summary() string {
	c := r.Counts()
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d recipients, %d ok, %d fallback, %d failed",
		r.Trigger, r.Slot, len(r.Results), c[OutcomeSuccess], c[OutcomeFallback], c[OutcomeFailed])
	if failed := r.Failed(); len(failed) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(failed, ", "))
	}
	return b.String()
}
