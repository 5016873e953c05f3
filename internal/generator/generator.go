package generator

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tgifai/thursday/internal/rule"
)

// ErrUnavailable means no usable model is configured. Callers fall back to
// fixed text instead of failing.
var ErrUnavailable = errors.New("content generator unavailable")

// Generator writes the message text for one prompt addressed to target.
type Generator interface {
	Generate(ctx context.Context, prompt, target string) (string, error)
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, prompt, target string) (string, error)

func (f Func) Generate(ctx context.Context, prompt, target string) (string, error) {
	return f(ctx, prompt, target)
}

// Unavailable always fails with ErrUnavailable.
type Unavailable struct {
	Reason string
}

func (u Unavailable) Generate(context.Context, string, string) (string, error) {
	if u.Reason == "" {
		return "", ErrUnavailable
	}
	return "", errors.Join(ErrUnavailable, errors.New(u.Reason))
}

// Render substitutes {weekday}, {weekday_num}, {date}, {time} and
// {recipient} in a prompt template.
func Render(prompt string, at time.Time, recipient string) string {
	if !strings.Contains(prompt, "{") {
		return prompt
	}
	wd := rule.WeekdayOf(at)
	r := strings.NewReplacer(
		"{weekday}", wd.String(),
		"{weekday_num}", strconv.Itoa(wd.Number()),
		"{date}", at.Format("2006-01-02"),
		"{time}", at.Format("15:04"),
		"{recipient}", recipient,
	)
	return r.Replace(prompt)
}
