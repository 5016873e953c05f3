package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tgifai/thursday/internal/channel"
	"github.com/tgifai/thursday/internal/channel/lark"
	"github.com/tgifai/thursday/internal/channel/telegram"
	"github.com/tgifai/thursday/internal/channel/webhook"
	"github.com/tgifai/thursday/internal/config"
	"github.com/tgifai/thursday/internal/dispatch"
	"github.com/tgifai/thursday/internal/generator"
	"github.com/tgifai/thursday/internal/ledger"
	"github.com/tgifai/thursday/internal/lock"
	"github.com/tgifai/thursday/internal/pkg/logs"
	"github.com/tgifai/thursday/internal/pkg/prometheus"
	"github.com/tgifai/thursday/internal/provider"
	"github.com/tgifai/thursday/internal/rule"
	"github.com/tgifai/thursday/internal/scheduler"
	"github.com/tgifai/thursday/internal/server"
)

type Options struct {
	// Offline skips providers and channels, for commands that only read
	// local state such as `thursday status`.
	Offline bool
}

// App owns every runtime component built from one config.
type App struct {
	cfg *config.Config

	providers *provider.Registry
	channels  *channel.Registry
	router    *channel.Router
	generator generator.Generator
	journal   *dispatch.Journal
	ledger    *ledger.Ledger
	locker    lock.Locker
	scheduler *scheduler.Scheduler
	server    *server.Server

	stopOnce sync.Once
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	a := &App{
		cfg:       cfg,
		providers: provider.NewRegistry(),
		channels:  channel.NewRegistry(),
		journal:   dispatch.NewJournal(cfg.JournalPath()),
	}

	if opts.Offline {
		a.generator = generator.Unavailable{Reason: "offline"}
	} else {
		if err := a.initProviders(ctx); err != nil {
			return nil, fmt.Errorf("init providers: %w", err)
		}
		if err := a.initChannels(ctx); err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("init channels: %w", err)
		}
	}
	a.router = channel.NewRouter(a.channels, cfg.Schedule.DefaultChannel)

	l, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	a.ledger = l

	if a.locker, err = newLocker(cfg); err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("init lock: %w", err)
	}

	rules, err := rule.FromConfig(cfg.Schedule)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("build rules: %w", err)
	}

	d := dispatch.New(a.generator, a.router, dispatch.Options{
		FallbackText: cfg.Schedule.FallbackText,
		ImagePath:    cfg.Schedule.Image,
		Interval:     cfg.Schedule.SendInterval(),
		Journal:      a.journal,
	})

	a.scheduler, err = scheduler.New(scheduler.Deps{
		Rules:      rules,
		Ledger:     a.ledger,
		Locker:     a.locker,
		Dispatcher: d,
		Journal:    a.journal,
		Recipients: cfg.Schedule.Recipients,
		ImagePath:  cfg.Schedule.Image,
		Location:   cfg.Schedule.Location(),
		ConfigHash: cfg.Hash(),
	}, scheduler.Options{
		PollInterval: time.Duration(cfg.Schedule.PollIntervalSec) * time.Second,
		BusyBackoff:  time.Duration(cfg.Schedule.BusyBackoffSec) * time.Second,
		ErrorBackoff: time.Duration(cfg.Schedule.ErrorBackoffSec) * time.Second,
	})
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	if cfg.Server.Enabled && !opts.Offline {
		a.server = server.New(cfg.Server, a.scheduler, prometheus.GetRegistry())
	}
	return a, nil
}

func (a *App) Scheduler() *scheduler.Scheduler { return a.scheduler }
func (a *App) Router() *channel.Router         { return a.router }
func (a *App) Channels() *channel.Registry     { return a.channels }
func (a *App) Ledger() *ledger.Ledger          { return a.ledger }
func (a *App) Locker() lock.Locker             { return a.locker }

// Start runs the scheduler and, when enabled, the status server.
func (a *App) Start(ctx context.Context) error {
	a.checkImage(ctx)
	if len(a.cfg.Schedule.Recipients) == 0 {
		logs.CtxWarn(ctx, "[app] no recipients configured, scheduled slots will fire to nobody")
	}

	if a.server != nil {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("start status server: %w", err)
		}
	}
	return a.scheduler.Start(ctx)
}

func (a *App) Stop(ctx context.Context) error {
	var err error
	a.stopOnce.Do(func() {
		a.scheduler.Stop(ctx)
		if a.server != nil {
			if stopErr := a.server.Stop(ctx); stopErr != nil {
				logs.CtxWarn(ctx, "[app] shutdown status server error: %v", stopErr)
			}
		}
		err = a.close(ctx)
		logs.CtxInfo(ctx, "[app] all resources stopped")
	})
	return err
}

func (a *App) close(ctx context.Context) error {
	a.channels.CloseAll(ctx)
	a.providers.Close()
	if c, ok := a.locker.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// initProviders registers what can be built. A broken provider is not fatal:
// generation falls back to the fixed text.
func (a *App) initProviders(ctx context.Context) error {
	if err := a.providers.Build(ctx, a.cfg.Providers); err != nil {
		logs.CtxWarn(ctx, "[app] some providers failed to build: %v", err)
	}

	a.generator = generator.New(a.providers, a.cfg.Generation)
	if u, ok := a.generator.(generator.Unavailable); ok {
		logs.CtxWarn(ctx, "[app] content generation unavailable (%s), fallback text will be sent", u.Reason)
	}
	return nil
}

func (a *App) initChannels(ctx context.Context) error {
	for id, cfg := range a.cfg.Channels {
		cfg.ID = id
		if !cfg.Enabled {
			logs.CtxInfo(ctx, "[app] channel #%s is disabled, skipping", id)
			continue
		}

		ch, err := NewChannel(id, cfg)
		if err != nil {
			logs.CtxError(ctx, "[app] create channel #%s error: %v", id, err)
			return fmt.Errorf("create channel %s: %w", id, err)
		}
		if err = a.channels.Register(ch); err != nil {
			return fmt.Errorf("register channel %s: %w", id, err)
		}
		logs.CtxInfo(ctx, "[app] channel #%s (%s) ready", id, ch.Type())
	}
	return nil
}

// NewChannel builds the adapter for one channel section.
func NewChannel(id string, cfg config.ChannelConfig) (channel.Channel, error) {
	switch channel.Type(strings.ToLower(strings.TrimSpace(cfg.Type))) {
	case channel.Telegram:
		return telegram.NewChannel(id, &cfg)
	case channel.Lark:
		return lark.NewChannel(id, &cfg)
	case channel.Webhook:
		return webhook.NewChannel(id, &cfg)
	default:
		return nil, fmt.Errorf("unsupported channel type: %s", cfg.Type)
	}
}

func newLocker(cfg *config.Config) (lock.Locker, error) {
	owner := lock.NewOwner()
	stale := time.Duration(cfg.Lock.StaleAfterSec) * time.Second

	switch cfg.Lock.Backend {
	case config.LockBackendRedis:
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.Lock.Redis.Addr},
			Password: cfg.Lock.Redis.Password,
			DB:       cfg.Lock.Redis.DB,
		})
		return lock.NewRedisLock(client, cfg.Lock.Redis.Key, owner, stale), nil
	case config.LockBackendFile, "":
		return lock.NewFileLock(cfg.LockPath(), owner, stale), nil
	default:
		return nil, fmt.Errorf("unsupported lock backend %q", cfg.Lock.Backend)
	}
}

func (a *App) checkImage(ctx context.Context) {
	path := a.cfg.Schedule.Image
	if path == "" {
		return
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logs.CtxWarn(ctx, "[app] image %s does not exist, messages will be text only", filepath.Clean(path))
		return
	}
	logs.CtxInfo(ctx, "[app] image: %s", dispatch.ImageStatus(path))
}
