package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// modelFactory creates the eino chat model for one model name.
type modelFactory func(ctx context.Context, modelName string) (model.BaseChatModel, error)

// chatProvider adapts any eino chat model family to Provider, caching one
// chat model per model name.
type chatProvider struct {
	opts     Options
	factory  modelFactory
	modelMap map[string]model.BaseChatModel
	mu       sync.RWMutex
}

var _ Provider = (*chatProvider)(nil)

func newChatProvider(opts Options, factory modelFactory) *chatProvider {
	return &chatProvider{
		opts:     opts,
		factory:  factory,
		modelMap: make(map[string]model.BaseChatModel, 4),
	}
}

func (p *chatProvider) ID() string {
	return p.opts.ID
}

func (p *chatProvider) Type() Type {
	return p.opts.Type
}

func (p *chatProvider) DefaultModel() string {
	return p.opts.DefaultModel
}

func (p *chatProvider) Close() error {
	return nil
}

func (p *chatProvider) Generate(ctx context.Context, modelName string, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if modelName == "" {
		modelName = p.opts.DefaultModel
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	chatModel, err := p.getOrCreateModel(ctx, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat model for %s: %w", modelName, err)
	}

	sanitizeMessages(input)

	resp, err := chatModel.Generate(ctx, input, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s API call failed: %w", p.opts.Type, err)
	}
	return resp, nil
}

// sanitizeMessages fills empty contents, which some backends reject.
func sanitizeMessages(msgs []*schema.Message) {
	for _, m := range msgs {
		if m.Content == "" {
			m.Content = "..."
		}
	}
}

func (p *chatProvider) getOrCreateModel(ctx context.Context, modelName string) (model.BaseChatModel, error) {
	p.mu.RLock()
	if m, exists := p.modelMap[modelName]; exists {
		p.mu.RUnlock()
		return m, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if m, exists := p.modelMap[modelName]; exists {
		return m, nil
	}

	chatModel, err := p.factory(ctx, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model for %s: %w", modelName, err)
	}
	p.modelMap[modelName] = chatModel
	return chatModel, nil
}
