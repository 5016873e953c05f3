package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tgifai/thursday/internal/consts"
)

const (
	DefaultMorningPrompt = "Write a sweet, coaxing message asking the reader to transfer you 50. You are craving KFC and today is Crazy Thursday, so ask in the cutest way you can."
	DefaultNoonPrompt    = "Write a pitiful message asking the reader to transfer you 50. Your wallet is empty, you badly want KFC, and today is Crazy Thursday."
	DefaultEveningPrompt = "Write a funny message asking the reader to transfer you 50. You really want KFC and today is Crazy Thursday; make them laugh until they pay."
	DefaultNightPrompt   = "Write an adorable message asking the reader to transfer you 50. You are dying for KFC and today is Crazy Thursday."
	DefaultCustomPrompt  = "Write an eye-catching KFC promo in your own style."
	DefaultFallbackText  = "KFC Crazy Thursday, V me 50, act fast! 🍗"

	defaultCustomWeekday = 4 // Thursday, 1-based
	defaultCustomHour    = 18
	defaultCustomMinute  = 30

	defaultSendIntervalSec = 2
	defaultPollIntervalSec = 10
	defaultBusyBackoffSec  = 60
	defaultErrorBackoffSec = 60
	defaultStaleAfterSec   = 180
	defaultGenTimeoutSec   = 60

	LockBackendFile  = "file"
	LockBackendRedis = "redis"
)

// Validate fills defaults and rejects configurations the scheduler cannot run.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config cannot be nil")
	}

	c.DataDir = strings.TrimSpace(c.DataDir)
	if c.DataDir == "" {
		c.DataDir = consts.DefaultDataDir()
	}

	if err := c.Schedule.Validate(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if err := c.Lock.Validate(); err != nil {
		return fmt.Errorf("lock: %w", err)
	}

	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = defaultGenTimeoutSec
	}
	c.Generation.Model = strings.TrimSpace(c.Generation.Model)

	if c.Server.Bind == "" {
		c.Server.Bind = "127.0.0.1:8089"
	}

	normalizedProviders := make(map[string]ProviderConfig, len(c.Providers))
	for key, one := range c.Providers {
		providerID := strings.TrimSpace(key)
		if providerID == "" {
			return errors.New("provider id cannot be empty")
		}
		one.ID = providerID
		normalizedProviders[providerID] = one
	}
	c.Providers = normalizedProviders

	normalizedChannels := make(map[string]ChannelConfig, len(c.Channels))
	for key, one := range c.Channels {
		channelID := strings.TrimSpace(key)
		if channelID == "" {
			return errors.New("channel id cannot be empty")
		}
		if strings.Contains(channelID, ":") {
			return fmt.Errorf("channel id %q cannot contain ':'", channelID)
		}
		one.ID = channelID
		one.Type = strings.ToLower(strings.TrimSpace(one.Type))
		normalizedChannels[channelID] = one
	}
	c.Channels = normalizedChannels

	if c.Schedule.DefaultChannel == "" && len(c.Channels) == 1 {
		for id := range c.Channels {
			c.Schedule.DefaultChannel = id
		}
	}
	return nil
}

func (s *ScheduleConfig) Validate() error {
	s.Timezone = strings.TrimSpace(s.Timezone)
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
		}
	}

	recipients := make([]string, 0, len(s.Recipients))
	seen := make(map[string]struct{}, len(s.Recipients))
	for _, r := range s.Recipients {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		// duplicates would receive the broadcast twice per slot
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		recipients = append(recipients, r)
	}
	s.Recipients = recipients

	s.Image = strings.TrimSpace(s.Image)
	if s.Image != "" && !filepath.IsAbs(s.Image) {
		if abs, err := filepath.Abs(s.Image); err == nil {
			s.Image = abs
		}
	}
	if strings.TrimSpace(s.FallbackText) == "" {
		s.FallbackText = DefaultFallbackText
	}

	if s.SendIntervalSec == nil {
		v := defaultSendIntervalSec
		s.SendIntervalSec = &v
	}
	if *s.SendIntervalSec < 0 {
		return errors.New("send_interval_sec cannot be negative")
	}
	if s.PollIntervalSec <= 0 {
		s.PollIntervalSec = defaultPollIntervalSec
	}
	if s.BusyBackoffSec <= 0 {
		s.BusyBackoffSec = defaultBusyBackoffSec
	}
	if s.ErrorBackoffSec <= 0 {
		s.ErrorBackoffSec = defaultErrorBackoffSec
	}

	defaultPrompt(&s.Morning, DefaultMorningPrompt)
	defaultPrompt(&s.Noon, DefaultNoonPrompt)
	defaultPrompt(&s.Evening, DefaultEveningPrompt)
	defaultPrompt(&s.Night, DefaultNightPrompt)

	return s.Custom.Validate()
}

func defaultPrompt(slot *SlotConfig, prompt string) {
	if strings.TrimSpace(slot.Prompt) == "" {
		slot.Prompt = prompt
	}
}

func (c *CustomRule) Validate() error {
	if c.Weekday == 0 {
		c.Weekday = defaultCustomWeekday
	}
	if c.Weekday < 1 || c.Weekday > 7 {
		return fmt.Errorf("custom.weekday must be within 1..7, got %d", c.Weekday)
	}
	if c.Hour == nil {
		h := defaultCustomHour
		c.Hour = &h
	}
	if *c.Hour < 0 || *c.Hour > 23 {
		return fmt.Errorf("custom.hour must be within 0..23, got %d", *c.Hour)
	}
	if c.Minute == nil {
		m := defaultCustomMinute
		c.Minute = &m
	}
	if *c.Minute < 0 || *c.Minute > 59 {
		return fmt.Errorf("custom.minute must be within 0..59, got %d", *c.Minute)
	}
	if strings.TrimSpace(c.Prompt) == "" {
		c.Prompt = DefaultCustomPrompt
	}
	return nil
}

func (l *LockConfig) Validate() error {
	l.Backend = strings.ToLower(strings.TrimSpace(l.Backend))
	if l.Backend == "" {
		l.Backend = LockBackendFile
	}
	if l.StaleAfterSec <= 0 {
		l.StaleAfterSec = defaultStaleAfterSec
	}

	switch l.Backend {
	case LockBackendFile:
	case LockBackendRedis:
		if strings.TrimSpace(l.Redis.Addr) == "" {
			return errors.New("redis.addr is required when backend=redis")
		}
		if l.Redis.Key == "" {
			l.Redis.Key = "thursday:dispatch:lock"
		}
	default:
		return fmt.Errorf("unsupported backend %q", l.Backend)
	}
	return nil
}

// SendInterval is the spacing between recipients; zero means no pacing.
func (s *ScheduleConfig) SendInterval() time.Duration {
	if s.SendIntervalSec == nil {
		return defaultSendIntervalSec * time.Second
	}
	return time.Duration(*s.SendIntervalSec) * time.Second
}

// Location resolves the configured timezone, falling back to time.Local.
func (s *ScheduleConfig) Location() *time.Location {
	if s.Timezone == "" || strings.EqualFold(s.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) LedgerPath() string {
	return filepath.Join(c.DataDir, consts.LedgerFileName)
}

func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, consts.LockFileName)
}

func (c *Config) JournalPath() string {
	return filepath.Join(c.DataDir, consts.JournalFileName)
}
