package provider

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/gg/gconv"
)

// Options is the backend-independent provider configuration decoded from the
// free-form config map of a provider section.
type Options struct {
	ID           string
	Type         Type
	APIKey       string
	BaseURL      string
	DefaultModel string
	MaxTokens    int
	Timeout      time.Duration
	Region       string
	ByAzure      bool
}

type typeDefaults struct {
	baseURL   string
	model     string
	maxTokens int
	keyless   bool
}

var defaults = map[Type]typeDefaults{
	OpenAI:    {baseURL: "https://api.openai.com/v1", model: "gpt-4o-mini"},
	Anthropic: {baseURL: "https://api.anthropic.com", model: "claude-3-5-sonnet-20241022", maxTokens: 4096},
	Gemini:    {model: "gemini-2.0-flash"},
	Ollama:    {baseURL: "http://localhost:11434", model: "llama3", keyless: true},
	Qwen:      {baseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1", model: "qwen-plus"},
	Ark:       {baseURL: "https://ark.cn-beijing.volces.com/api/v3"},
}

func ParseOptions(id string, typ Type, configMap map[string]any) (*Options, error) {
	d, ok := defaults[typ]
	if !ok {
		return nil, fmt.Errorf("unsupported provider type %q", typ)
	}

	opts := &Options{
		ID:   id,
		Type: typ,
	}

	apiKey := gconv.To[string](configMap["api_key"])
	if apiKey == "" {
		apiKey = gconv.To[string](configMap["secret_key"])
	}
	opts.APIKey = strings.TrimSpace(apiKey)

	if baseURL := gconv.To[string](configMap["base_url"]); baseURL != "" {
		opts.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	} else {
		opts.BaseURL = d.baseURL
	}

	if defaultModel := gconv.To[string](configMap["default_model"]); defaultModel != "" {
		opts.DefaultModel = defaultModel
	} else {
		opts.DefaultModel = d.model
	}

	if maxTokens := gconv.To[int](configMap["max_tokens"]); maxTokens > 0 {
		opts.MaxTokens = maxTokens
	} else {
		opts.MaxTokens = d.maxTokens
	}

	if timeout := gconv.To[int](configMap["timeout"]); timeout > 0 {
		opts.Timeout = time.Duration(timeout) * time.Second
	} else {
		opts.Timeout = 60 * time.Second
	}

	opts.Region = gconv.To[string](configMap["region"])
	opts.ByAzure = gconv.To[bool](configMap["by_azure"])

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", typ, err)
	}
	return opts, nil
}

func (o *Options) Validate() error {
	if o.ID == "" {
		return errors.New("provider ID cannot be empty")
	}
	if o.APIKey == "" && !defaults[o.Type].keyless {
		return errors.New("api_key is required")
	}
	if o.Type == Ark && o.DefaultModel == "" {
		// ark addresses endpoints, there is no sensible default
		return errors.New("default_model (endpoint id) is required")
	}
	return nil
}
