package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/claude"
	gmodel "github.com/cloudwego/eino-ext/components/model/gemini"
	ollamamodel "github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	qwenmodel "github.com/cloudwego/eino-ext/components/model/qwen"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/tgifai/thursday/internal/config"
)

type builder func(ctx context.Context, opts Options) (Provider, error)

var builders = map[Type]builder{
	OpenAI:    newOpenAI,
	Anthropic: newAnthropic,
	Gemini:    newGemini,
	Ollama:    newOllama,
	Qwen:      newQwen,
	Ark:       newArk,
}

// New builds a provider from its config section.
func New(ctx context.Context, cfg config.ProviderConfig) (Provider, error) {
	typ := Type(strings.ToLower(strings.TrimSpace(cfg.Type)))
	build, ok := builders[typ]
	if !ok {
		return nil, fmt.Errorf("unsupported provider type %q", cfg.Type)
	}
	opts, err := ParseOptions(cfg.ID, typ, cfg.Config)
	if err != nil {
		return nil, err
	}
	return build(ctx, *opts)
}

func newOpenAI(_ context.Context, opts Options) (Provider, error) {
	return newChatProvider(opts, func(ctx context.Context, modelName string) (model.BaseChatModel, error) {
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  opts.APIKey,
			Model:   modelName,
			BaseURL: opts.BaseURL,
			ByAzure: opts.ByAzure,
		})
	}), nil
}

func newAnthropic(_ context.Context, opts Options) (Provider, error) {
	return newChatProvider(opts, func(ctx context.Context, modelName string) (model.BaseChatModel, error) {
		var baseURLPtr *string
		if opts.BaseURL != "" {
			baseURL := opts.BaseURL
			baseURLPtr = &baseURL
		}
		return claude.NewChatModel(ctx, &claude.Config{
			APIKey:     opts.APIKey,
			BaseURL:    baseURLPtr,
			Model:      modelName,
			MaxTokens:  opts.MaxTokens,
			HTTPClient: &http.Client{Timeout: opts.Timeout},
		})
	}), nil
}

func newGemini(ctx context.Context, opts Options) (Provider, error) {
	clientCfg := &genai.ClientConfig{
		APIKey: opts.APIKey,
	}
	if opts.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("new gemini client failed: %w", err)
	}

	return newChatProvider(opts, func(ctx context.Context, modelName string) (model.BaseChatModel, error) {
		return gmodel.NewChatModel(ctx, &gmodel.Config{
			Client: client,
			Model:  modelName,
		})
	}), nil
}

func newOllama(_ context.Context, opts Options) (Provider, error) {
	return newChatProvider(opts, func(ctx context.Context, modelName string) (model.BaseChatModel, error) {
		return ollamamodel.NewChatModel(ctx, &ollamamodel.ChatModelConfig{
			BaseURL: opts.BaseURL,
			Timeout: opts.Timeout,
			Model:   modelName,
		})
	}), nil
}

func newQwen(_ context.Context, opts Options) (Provider, error) {
	return newChatProvider(opts, func(ctx context.Context, modelName string) (model.BaseChatModel, error) {
		return qwenmodel.NewChatModel(ctx, &qwenmodel.ChatModelConfig{
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
			Timeout: opts.Timeout,
			Model:   modelName,
		})
	}), nil
}

func newArk(_ context.Context, opts Options) (Provider, error) {
	return newChatProvider(opts, func(ctx context.Context, modelName string) (model.BaseChatModel, error) {
		timeout := opts.Timeout
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
			Region:  opts.Region,
			Timeout: &timeout,
			Model:   modelName,
		})
	}), nil
}
