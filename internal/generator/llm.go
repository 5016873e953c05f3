package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tgifai/thursday/internal/config"
	"github.com/tgifai/thursday/internal/pkg/logs"
	"github.com/tgifai/thursday/internal/provider"
)

// LLM generates text through a provider from the registry.
type LLM struct {
	registry    *provider.Registry
	spec        provider.ModelSpec
	persona     string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

var _ Generator = (*LLM)(nil)

// New returns an LLM generator, or Unavailable when the generation section
// names no model or its provider is not registered.
func New(reg *provider.Registry, cfg config.GenerationConfig) Generator {
	if strings.TrimSpace(cfg.Model) == "" {
		return Unavailable{Reason: "generation.model is not set"}
	}
	spec, err := provider.ParseModelSpec(cfg.Model)
	if err != nil {
		return Unavailable{Reason: err.Error()}
	}
	if reg == nil || !reg.Exists(spec.ProviderID) {
		return Unavailable{Reason: fmt.Sprintf("provider %q is not configured", spec.ProviderID)}
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LLM{
		registry:    reg,
		spec:        *spec,
		persona:     strings.TrimSpace(cfg.Persona),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     timeout,
	}
}

func (g *LLM) Model() string {
	return g.spec.String()
}

func (g *LLM) Generate(ctx context.Context, prompt, target string) (string, error) {
	p := g.registry.Get(g.spec.ProviderID)
	if p == nil {
		return "", fmt.Errorf("%w: provider %q", ErrUnavailable, g.spec.ProviderID)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := make([]*schema.Message, 0, 2)
	if g.persona != "" {
		messages = append(messages, schema.SystemMessage(g.persona))
	}
	messages = append(messages, schema.UserMessage(prompt))

	var opts []model.Option
	if g.temperature > 0 {
		opts = append(opts, model.WithTemperature(g.temperature))
	}
	if g.maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(g.maxTokens))
	}

	start := time.Now()
	resp, err := p.Generate(ctx, g.spec.ModelName, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("generate for %s: %w", target, err)
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", fmt.Errorf("generate for %s: empty completion", target)
	}

	logs.CtxDebug(ctx, "[generator] %s wrote %d chars for %s in %s",
		g.spec.String(), len(text), target, time.Since(start).Truncate(time.Millisecond))
	return text, nil
}
