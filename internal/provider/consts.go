package provider

import (
	"fmt"
	"strings"
)

type Type string

const (
	OpenAI    Type = "openai"
	Anthropic Type = "anthropic"
	Gemini    Type = "gemini"
	Ollama    Type = "ollama"
	Qwen      Type = "qwen"
	Ark       Type = "ark"
)

var SupportedProviders = []Type{
	OpenAI,
	Anthropic,
	Gemini,
	Ollama,
	Qwen,
	Ark,
}

type ModelSpec struct {
	ProviderID string
	ModelName  string
}

// Parse accepts provider_id:model_name. A bare provider_id selects the
// provider's default model.
func (m *ModelSpec) Parse(str string) error {
	str = strings.TrimSpace(str)
	parts := strings.SplitN(str, ":", 2)
	if parts[0] == "" {
		return fmt.Errorf("invalid model spec format: %s (expected provider_id:model_name)", str)
	}

	m.ProviderID = parts[0]
	if len(parts) == 2 {
		m.ModelName = parts[1]
	}
	return nil
}

func (m ModelSpec) String() string {
	if m.ModelName == "" {
		return m.ProviderID
	}
	return m.ProviderID + ":" + m.ModelName
}

func ParseModelSpec(str string) (*ModelSpec, error) {
	m := &ModelSpec{}
	if err := m.Parse(str); err != nil {
		return nil, err
	}
	return m, nil
}
