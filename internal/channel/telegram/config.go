package telegram

import (
	"errors"
	"time"

	"github.com/bytedance/gg/gconv"
)

type Config struct {
	Token     string // Telegram Bot Token
	ServerURL string // bot API endpoint override, e.g. a local bot-api server
	Timeout   time.Duration
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("telegram bot token cannot be empty")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

func ParseConfig(configMap map[string]interface{}) (*Config, error) {
	config := &Config{
		Token:     gconv.To[string](configMap["token"]),
		ServerURL: gconv.To[string](configMap["server_url"]),
	}
	if timeout := gconv.To[int](configMap["timeout_sec"]); timeout > 0 {
		config.Timeout = time.Duration(timeout) * time.Second
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
