package dispatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgifai/thursday/internal/generator"
	"github.com/tgifai/thursday/internal/ledger"
	"github.com/tgifai/thursday/internal/rule"
)

type sent struct {
	target string
	text   string
	image  string
}

type fakeDeliverer struct {
	mu        sync.Mutex
	sent      []sent
	failText  map[string]bool
	failImage map[string]bool
}

func (f *fakeDeliverer) SendText(_ context.Context, target, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failText[target] {
		return errors.New("chat not found")
	}
	f.sent = append(f.sent, sent{target: target, text: text})
	return nil
}

func (f *fakeDeliverer) SendImage(_ context.Context, target, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failImage[target] {
		return errors.New("upload rejected")
	}
	f.sent = append(f.sent, sent{target: target, image: path})
	return nil
}

func (f *fakeDeliverer) texts() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{}
	for _, s := range f.sent {
		if s.text != "" {
			out[s.target] = s.text
		}
	}
	return out
}

var (
	evening = rule.Rule{ID: rule.IDEvening, Weekday: rule.Thursday, Hour: 18, Enabled: true, Prompt: "funny ask for {recipient}"}
	slotAt  = time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
)

func echoGen() generator.Generator {
	return generator.Func(func(_ context.Context, prompt, target string) (string, error) {
		return "generated: " + prompt, nil
	})
}

func TestDispatch_PerRecipientIsolation(t *testing.T) {
	out := &fakeDeliverer{failText: map[string]bool{"B": true}}
	d := New(echoGen(), out, Options{FallbackText: "fallback"})

	report := d.Dispatch(context.Background(), evening, ledger.KeyFor(slotAt, evening.ID), []string{"A", "B", "C"})

	require.Len(t, report.Results, 3)
	assert.Equal(t, []string{"B"}, report.Failed())
	assert.Equal(t, "A", report.Results[0].Recipient)
	assert.Equal(t, OutcomeSuccess, report.Results[0].Outcome)
	assert.Equal(t, OutcomeFailed, report.Results[1].Outcome)
	assert.Equal(t, OutcomeSuccess, report.Results[2].Outcome)
	assert.Equal(t, "2026-01-15_18:00@evening", report.Slot)
	assert.Equal(t, TriggerSchedule, report.Trigger)

	texts := out.texts()
	assert.Equal(t, "generated: funny ask for A", texts["A"])
	assert.Equal(t, "generated: funny ask for C", texts["C"])
	assert.NotContains(t, texts, "B")
}

func TestDispatch_GenerationFallback(t *testing.T) {
	gen := generator.Func(func(_ context.Context, _, target string) (string, error) {
		if target == "A" {
			return "", errors.New("model timeout")
		}
		return "hi", nil
	})
	out := &fakeDeliverer{}
	d := New(gen, out, Options{FallbackText: "KFC Crazy Thursday, V me 50"})

	report := d.Dispatch(context.Background(), evening, ledger.KeyFor(slotAt, evening.ID), []string{"A", "B"})

	res, ok := report.Result("A")
	require.True(t, ok)
	assert.Equal(t, OutcomeFallback, res.Outcome)
	assert.Contains(t, res.GenerationError, "model timeout")
	assert.Equal(t, "KFC Crazy Thursday, V me 50", out.texts()["A"])
	assert.Equal(t, "hi", out.texts()["B"])
	assert.Empty(t, report.Failed())
}

func TestDispatch_ImageFailureKeepsText(t *testing.T) {
	img := filepath.Join(t.TempDir(), "qr.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o644))

	out := &fakeDeliverer{failImage: map[string]bool{"A": true}}
	d := New(echoGen(), out, Options{ImagePath: img})

	report := d.Dispatch(context.Background(), evening, ledger.KeyFor(slotAt, evening.ID), []string{"A", "B"})

	a, _ := report.Result("A")
	assert.Equal(t, OutcomeSuccess, a.Outcome)
	assert.False(t, a.ImageSent)
	assert.Contains(t, a.ImageError, "upload rejected")

	b, _ := report.Result("B")
	assert.True(t, b.ImageSent)
}

func TestDispatch_MissingImageIsSkipped(t *testing.T) {
	out := &fakeDeliverer{}
	d := New(echoGen(), out, Options{ImagePath: filepath.Join(t.TempDir(), "absent.png")})

	report := d.Dispatch(context.Background(), evening, ledger.KeyFor(slotAt, evening.ID), []string{"A"})
	assert.False(t, report.Results[0].ImageSent)
	assert.Empty(t, report.Results[0].ImageError)
	assert.Len(t, out.sent, 1)
}

func TestDispatch_OptionsAndJournal(t *testing.T) {
	journal := NewJournal(filepath.Join(t.TempDir(), "history.jsonl"))
	out := &fakeDeliverer{}
	d := New(echoGen(), out, Options{Journal: journal})

	d.Dispatch(context.Background(), evening, ledger.KeyFor(slotAt, evening.ID), []string{"A"},
		WithTrigger(TriggerManual), WithHeader("Thursday 18:00"), WithPrompt("custom"))
	d.Dispatch(context.Background(), evening, ledger.KeyFor(slotAt, "custom"), []string{"B"})

	assert.True(t, strings.HasPrefix(out.texts()["A"], "Thursday 18:00\ngenerated: custom"))

	reports, err := journal.Recent(10)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, TriggerManual, reports[0].Trigger)
	assert.Equal(t, "2026-01-15_18:00@custom", reports[1].Slot)

	require.NoError(t, journal.Compact(1))
	reports, _ = journal.Recent(0)
	require.Len(t, reports, 1)
	assert.Equal(t, "B", reports[0].Results[0].Recipient)
}

func TestDispatch_Pacing(t *testing.T) {
	out := &fakeDeliverer{}
	d := New(echoGen(), out, Options{Interval: 50 * time.Millisecond})

	start := time.Now()
	d.Dispatch(context.Background(), evening, ledger.KeyFor(slotAt, evening.ID), []string{"A", "B", "C"})
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestDispatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := &fakeDeliverer{}
	d := New(generator.Func(func(context.Context, string, string) (string, error) {
		cancel()
		return "hi", nil
	}), out, Options{Interval: time.Hour})

	report := d.Dispatch(ctx, evening, ledger.KeyFor(slotAt, evening.ID), []string{"A", "B", "C"})
	require.Len(t, report.Results, 3)
	assert.Equal(t, OutcomeSuccess, report.Results[0].Outcome)
	assert.Equal(t, []string{"B", "C"}, report.Failed())
}

func TestImageStatus(t *testing.T) {
	assert.Equal(t, "not configured", ImageStatus(""))
	assert.Contains(t, ImageStatus(filepath.Join(t.TempDir(), "x.png")), "missing")
}
