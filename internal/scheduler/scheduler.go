package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tgifai/thursday/internal/dispatch"
	"github.com/tgifai/thursday/internal/ledger"
	"github.com/tgifai/thursday/internal/lock"
	"github.com/tgifai/thursday/internal/pkg/logs"
	"github.com/tgifai/thursday/internal/rule"
)

const (
	defaultPollInterval = 10 * time.Second
	defaultBusyBackoff  = 60 * time.Second
	defaultErrorBackoff = 60 * time.Second

	// minFiredWait keeps a poller that just fired out of the same minute.
	minFiredWait  = 30 * time.Second
	nextMinutePad = 5 * time.Second
	maxSleepChunk = time.Hour
	journalKeep   = 500
	recentReports = 20
)

// Deps are the collaborators a Scheduler owns for its lifetime.
type Deps struct {
	Rules      *rule.RuleSet
	Ledger     *ledger.Ledger
	Locker     lock.Locker
	Dispatcher *dispatch.Dispatcher
	Journal    *dispatch.Journal // optional
	Recipients []string
	ImagePath  string
	Location   *time.Location
	ConfigHash string
}

type Options struct {
	PollInterval time.Duration
	BusyBackoff  time.Duration
	ErrorBackoff time.Duration
}

// Scheduler arms the fine poller on eligible days and sleeps through the
// rest of the week. Instances sharing a data directory coordinate only
// through the lock and the ledger file.
type Scheduler struct {
	deps Deps
	opts Options

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool

	mu        sync.Mutex
	lastPurge string // date of the last successful purge
	armed     bool
	armedTill time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(deps Deps, opts Options) (*Scheduler, error) {
	switch {
	case deps.Rules == nil:
		return nil, errors.New("scheduler: rules are required")
	case deps.Ledger == nil:
		return nil, errors.New("scheduler: ledger is required")
	case deps.Locker == nil:
		return nil, errors.New("scheduler: locker is required")
	case deps.Dispatcher == nil:
		return nil, errors.New("scheduler: dispatcher is required")
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.BusyBackoff <= 0 {
		opts.BusyBackoff = defaultBusyBackoff
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = defaultErrorBackoff
	}

	return &Scheduler{
		deps:  deps,
		opts:  opts,
		now:   time.Now,
		sleep: sleepCtx,
	}, nil
}

// Start runs the controller in the background until Stop or ctx ends.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cancel != nil {
		return errors.New("scheduler already started")
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(ctx)
	}()

	logs.CtxInfo(ctx, "[scheduler] started (eligible=%v, recipients=%d, tz=%s)",
		s.deps.Rules.SortedEligibleDays(), len(s.deps.Recipients), s.deps.Location)
	return nil
}

// Stop cancels the controller and waits for an in-flight tick to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logs.CtxWarn(ctx, "[scheduler] stop timed out waiting for the poller")
	}

	// a tick interrupted mid-dispatch may still hold the lock
	if err := s.deps.Locker.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, lock.ErrNotHeld) {
		logs.CtxWarn(ctx, "[scheduler] release lock on shutdown: %v", err)
	}
	logs.CtxInfo(ctx, "[scheduler] stopped")
}

// clock is the wall clock in the schedule's timezone.
func (s *Scheduler) clock() time.Time {
	return s.now().In(s.deps.Location)
}

func (s *Scheduler) setArmed(armed bool, till time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed, s.armedTill = armed, till
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
