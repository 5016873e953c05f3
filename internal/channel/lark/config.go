package lark

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/gg/gconv"
	lark "github.com/larksuite/oapi-sdk-go/v3"
)

type Config struct {
	AppID     string // Lark App ID (required)
	AppSecret string // Lark App Secret (required)
	BaseURL   string // open platform endpoint, Feishu by default
}

func (c *Config) Validate() error {
	if c.AppID == "" {
		return errors.New("lark app_id cannot be empty")
	}
	if c.AppSecret == "" {
		return errors.New("lark app_secret cannot be empty")
	}
	return nil
}

func ParseConfig(configMap map[string]interface{}) (*Config, error) {
	config := &Config{
		AppID:     gconv.To[string](configMap["app_id"]),
		AppSecret: gconv.To[string](configMap["app_secret"]),
		BaseURL:   strings.TrimSpace(gconv.To[string](configMap["base_url"])),
	}

	switch strings.ToLower(config.BaseURL) {
	case "", "feishu":
		config.BaseURL = lark.FeishuBaseUrl
	case "lark", "larksuite":
		config.BaseURL = lark.LarkBaseUrl
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lark config: %w", err)
	}
	return config, nil
}
