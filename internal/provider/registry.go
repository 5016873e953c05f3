package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bytedance/gg/gmap"

	"github.com/tgifai/thursday/internal/config"
	"github.com/tgifai/thursday/internal/pkg/logs"
)

type Registry struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

func (r *Registry) Register(p Provider) error {
	if p == nil || p.ID() == "" {
		return errors.New("provider id cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.providers[p.ID()]; ok {
		_ = old.Close()
	}
	r.providers[p.ID()] = p
	return nil
}

// Get returns nil when id is unknown.
func (r *Registry) Get(id string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[id]
}

func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := gmap.ToSlice(r.providers, func(k string, v Provider) Provider { return v })
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[id] != nil
}

func (r *Registry) Unregister(id string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[id]; ok {
		_ = p.Close()
		delete(r.providers, id)
	}
}

// Build constructs and registers every configured provider. A provider that
// fails to build is logged and skipped; the joined errors are returned so the
// caller can decide whether that is fatal.
func (r *Registry) Build(ctx context.Context, cfgs map[string]config.ProviderConfig) error {
	var errs []error
	for _, id := range gmap.Keys(cfgs) {
		cfg := cfgs[id]
		if cfg.ID == "" {
			cfg.ID = id
		}
		p, err := New(ctx, cfg)
		if err != nil {
			logs.CtxWarn(ctx, "[provider] skip %s: %v", id, err)
			errs = append(errs, fmt.Errorf("provider %s: %w", id, err))
			continue
		}
		if err := r.Register(p); err != nil {
			errs = append(errs, err)
			continue
		}
		logs.CtxInfo(ctx, "[provider] registered %s (%s, default model %s)", p.ID(), p.Type(), p.DefaultModel())
	}
	return errors.Join(errs...)
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.providers {
		if err := p.Close(); err != nil {
			logs.Warn("[provider] close %s: %v", id, err)
		}
	}
	r.providers = make(map[string]Provider)
}
