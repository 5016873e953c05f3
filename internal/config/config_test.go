package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
data_dir: `+dir+`
schedule:
  recipients: ["tg:100", " tg:200 ", "tg:100", ""]
  night:
    enabled: false
channels:
  " tg ":
    type: Telegram
    enabled: true
    config:
      token: abc
`)

	ins := &InstanceManager{}
	cfg, err := ins.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"tg:100", "tg:200"}, cfg.Schedule.Recipients)
	assert.Equal(t, DefaultFallbackText, cfg.Schedule.FallbackText)
	require.NotNil(t, cfg.Schedule.SendIntervalSec)
	assert.Equal(t, 2*time.Second, cfg.Schedule.SendInterval())
	assert.Equal(t, 10, cfg.Schedule.PollIntervalSec)
	assert.Equal(t, 60, cfg.Schedule.BusyBackoffSec)
	assert.Equal(t, 180, cfg.Lock.StaleAfterSec)
	assert.Equal(t, LockBackendFile, cfg.Lock.Backend)

	assert.True(t, cfg.Schedule.Morning.IsEnabled())
	assert.False(t, cfg.Schedule.Night.IsEnabled())
	assert.Equal(t, DefaultMorningPrompt, cfg.Schedule.Morning.Prompt)

	assert.Equal(t, 4, cfg.Schedule.Custom.Weekday)
	require.NotNil(t, cfg.Schedule.Custom.Hour)
	assert.Equal(t, 18, *cfg.Schedule.Custom.Hour)
	assert.Equal(t, 30, *cfg.Schedule.Custom.Minute)

	ch, ok := cfg.Channels["tg"]
	require.True(t, ok)
	assert.Equal(t, "tg", ch.ID)
	assert.Equal(t, "telegram", ch.Type)
	assert.Equal(t, "tg", cfg.Schedule.DefaultChannel)

	assert.Equal(t, filepath.Join(dir, "fired_slots.txt"), cfg.LedgerPath())
	assert.Equal(t, filepath.Join(dir, "thursday.lock"), cfg.LockPath())
}

func TestLoad_MidnightCustomRuleIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
schedule:
  custom:
    weekday: 6
    hour: 0
    minute: 0
`)

	cfg, err := (&InstanceManager{}).Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Schedule.Custom.Weekday)
	assert.Equal(t, 0, *cfg.Schedule.Custom.Hour)
	assert.Equal(t, 0, *cfg.Schedule.Custom.Minute)
}

func TestLoad_ZeroSendIntervalDisablesPacing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
schedule:
  send_interval_sec: 0
`)

	cfg, err := (&InstanceManager{}).Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Schedule.SendIntervalSec)
	assert.Equal(t, 0, *cfg.Schedule.SendIntervalSec)
	assert.Equal(t, time.Duration(0), cfg.Schedule.SendInterval())
}

func TestValidate_Rejects(t *testing.T) {
	bad, negative := 24, -1
	tests := []struct {
		name string
		cfg  Config
	}{
		{"weekday", Config{Schedule: ScheduleConfig{Custom: CustomRule{Weekday: 8}}}},
		{"hour", Config{Schedule: ScheduleConfig{Custom: CustomRule{Hour: &bad}}}},
		{"timezone", Config{Schedule: ScheduleConfig{Timezone: "Mars/Olympus"}}},
		{"send interval", Config{Schedule: ScheduleConfig{SendIntervalSec: &negative}}},
		{"backend", Config{Lock: LockConfig{Backend: "etcd"}}},
		{"redis addr", Config{Lock: LockConfig{Backend: "redis"}}},
		{"channel id", Config{Channels: map[string]ChannelConfig{"a:b": {Type: "telegram"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	ins := &InstanceManager{}
	cfg, err := ins.WriteDefault(path, false)
	require.NoError(t, err)
	assert.Equal(t, "openai:gpt-4o-mini", cfg.Generation.Model)

	_, err = ins.WriteDefault(path, false)
	assert.True(t, errors.Is(err, ErrConfigExists))

	// force keeps a timestamped backup of the previous file
	_, err = ins.WriteDefault(path, true)
	require.NoError(t, err)
	backups, _ := filepath.Glob(path + ".*")
	assert.NotEmpty(t, backups)

	loaded, err := (&InstanceManager{}).Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Schedule.Custom.Weekday, loaded.Schedule.Custom.Weekday)
	assert.Equal(t, cfg.Generation.Persona, loaded.Generation.Persona)
	assert.Equal(t, cfg.Hash(), loaded.Hash())
}

func TestGet_NotLoaded(t *testing.T) {
	_, err := (&InstanceManager{}).Get()
	assert.Error(t, err)
}
