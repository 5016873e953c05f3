package webhook

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/bytedance/gg/gconv"
)

type Config struct {
	URL     string
	Secret  string // HMAC-SHA256 key for the signature header, optional
	Headers map[string]string
	Timeout time.Duration
}

func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("webhook url cannot be empty")
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("webhook url %q must be an absolute http(s) url", c.URL)
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return nil
}

func ParseConfig(configMap map[string]interface{}) (*Config, error) {
	config := &Config{
		URL:     gconv.To[string](configMap["url"]),
		Secret:  gconv.To[string](configMap["secret"]),
		Headers: map[string]string{},
	}
	if timeout := gconv.To[int](configMap["timeout_sec"]); timeout > 0 {
		config.Timeout = time.Duration(timeout) * time.Second
	}
	if headers, ok := configMap["headers"].(map[string]interface{}); ok {
		for k, v := range headers {
			config.Headers[k] = gconv.To[string](v)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid webhook config: %w", err)
	}
	return config, nil
}
