package channel

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bytedance/gg/gmap"

	"github.com/tgifai/thursday/internal/pkg/logs"
)

type Registry struct {
	chans map[string]Channel
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		chans: make(map[string]Channel, 8),
	}
}

func (r *Registry) Register(ch Channel) error {
	if ch == nil || ch.ID() == "" {
		return fmt.Errorf("channel id cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chans[ch.ID()] = ch
	return nil
}

func (r *Registry) Get(id string) (Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.chans[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, id)
	}
	return ch, nil
}

func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.chans[id]
	return ok
}

func (r *Registry) List() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := gmap.ToSlice(
		r.chans,
		func(k string, v Channel) Channel { return v },
	)
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chans)
}

func (r *Registry) Unregister(id string) {
	if id == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.chans, id)
}

// CloseAll closes and removes every channel.
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ch := range r.chans {
		if err := ch.Close(ctx); err != nil {
			logs.CtxWarn(ctx, "[channel] close %s error: %v", id, err)
		}
	}
	r.chans = make(map[string]Channel, 8)
}
