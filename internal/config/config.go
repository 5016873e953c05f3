package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bytedance/sonic"
)

type (
	Config struct {
		Logging    LoggingConfig             `yaml:"logging"`
		DataDir    string                    `yaml:"data_dir"`
		Schedule   ScheduleConfig            `yaml:"schedule"`
		Lock       LockConfig                `yaml:"lock"`
		Generation GenerationConfig          `yaml:"generation"`
		Server     ServerConfig              `yaml:"server"`
		Providers  map[string]ProviderConfig `yaml:"providers"`
		Channels   map[string]ChannelConfig  `yaml:"channels"`
	}

	LoggingConfig struct {
		Level      string `yaml:"level"`  // debug, info, warn, error
		Format     string `yaml:"format"` // json, text
		Output     string `yaml:"output"` // stdout, file, both
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"` // MB
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"` // days
	}

	ScheduleConfig struct {
		Timezone        string     `yaml:"timezone"`
		Recipients      []string   `yaml:"recipients"` // channelID:chatID, or chatID on the default channel
		DefaultChannel  string     `yaml:"default_channel"`
		Image           string     `yaml:"image"`
		FallbackText    string     `yaml:"fallback_text"`
		SendIntervalSec *int       `yaml:"send_interval_sec"` // 0 disables pacing
		PollIntervalSec int        `yaml:"poll_interval_sec"`
		BusyBackoffSec  int        `yaml:"busy_backoff_sec"`
		ErrorBackoffSec int        `yaml:"error_backoff_sec"`
		Morning         SlotConfig `yaml:"morning"`
		Noon            SlotConfig `yaml:"noon"`
		Evening         SlotConfig `yaml:"evening"`
		Night           SlotConfig `yaml:"night"`
		Custom          CustomRule `yaml:"custom"`
	}

	SlotConfig struct {
		Enabled *bool  `yaml:"enabled"`
		Prompt  string `yaml:"prompt"`
	}

	CustomRule struct {
		Enabled *bool  `yaml:"enabled"`
		Weekday int    `yaml:"weekday"` // 1 = Monday ... 7 = Sunday
		Hour    *int   `yaml:"hour"`
		Minute  *int   `yaml:"minute"`
		Prompt  string `yaml:"prompt"`
	}

	LockConfig struct {
		Backend       string      `yaml:"backend"` // file, redis
		StaleAfterSec int         `yaml:"stale_after_sec"`
		Redis         RedisConfig `yaml:"redis"`
	}

	RedisConfig struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Key      string `yaml:"key"`
	}

	GenerationConfig struct {
		Model       string  `yaml:"model"` // provider_id:model_name
		Persona     string  `yaml:"persona"`
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
		TimeoutSec  int     `yaml:"timeout_sec"`
	}

	ServerConfig struct {
		Enabled     bool   `yaml:"enabled"`
		Bind        string `yaml:"bind"`
		MetricsBind string `yaml:"metrics_bind"`
	}

	ProviderConfig struct {
		ID     string         `yaml:"-"`
		Type   string         `yaml:"type"` // openai, anthropic, gemini, ollama, qwen, ark
		Config map[string]any `yaml:"config"`
	}

	ChannelConfig struct {
		ID      string                 `yaml:"-"`
		Type    string                 `yaml:"type"` // telegram, lark, webhook
		Enabled bool                   `yaml:"enabled"`
		Config  map[string]interface{} `yaml:"config"`
	}
)

// IsEnabled reports the slot flag; an unset flag means enabled.
func (s SlotConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

func (c CustomRule) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Clone .
func (c *Config) Clone() (*Config, error) {
	if c == nil {
		return nil, fmt.Errorf("config is nil")
	}

	raw, err := sonic.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	var cloned Config
	if err := sonic.Unmarshal(raw, &cloned); err != nil {
		return nil, fmt.Errorf("unmarshal config clone: %w", err)
	}
	return &cloned, nil
}

// Hash .
func (c *Config) Hash() string {
	json := sonic.Config{SortMapKeys: true, UseNumber: true}.Froze()
	raw, _ := json.Marshal(c)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
