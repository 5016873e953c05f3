package config

import (
	"github.com/tgifai/thursday/internal/consts"
)

// Default is the starter configuration written by `thursday init`.
func Default() *Config {
	hour, minute := defaultCustomHour, defaultCustomMinute
	interval := defaultSendIntervalSec
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		DataDir: consts.DefaultDataDir(),
		Schedule: ScheduleConfig{
			Timezone:        "Local",
			Recipients:      []string{},
			FallbackText:    DefaultFallbackText,
			SendIntervalSec: &interval,
			PollIntervalSec: defaultPollIntervalSec,
			BusyBackoffSec:  defaultBusyBackoffSec,
			ErrorBackoffSec: defaultErrorBackoffSec,
			Morning:         SlotConfig{Prompt: DefaultMorningPrompt},
			Noon:            SlotConfig{Prompt: DefaultNoonPrompt},
			Evening:         SlotConfig{Prompt: DefaultEveningPrompt},
			Night:           SlotConfig{Prompt: DefaultNightPrompt},
			Custom: CustomRule{
				Weekday: defaultCustomWeekday,
				Hour:    &hour,
				Minute:  &minute,
				Prompt:  DefaultCustomPrompt,
			},
		},
		Lock: LockConfig{
			Backend:       LockBackendFile,
			StaleAfterSec: defaultStaleAfterSec,
		},
		Generation: GenerationConfig{
			Model:       "openai:gpt-4o-mini",
			Persona:     "You are a playful friend who loves KFC and writes short, cheeky chat messages.",
			Temperature: 0.9,
			MaxTokens:   300,
			TimeoutSec:  defaultGenTimeoutSec,
		},
		Server: ServerConfig{
			Bind: "127.0.0.1:8089",
		},
		Providers: map[string]ProviderConfig{
			"openai": {
				Type: "openai",
				Config: map[string]any{
					"api_key":  "",
					"base_url": "https://api.openai.com/v1",
				},
			},
		},
		Channels: map[string]ChannelConfig{
			"telegram": {
				Type:    "telegram",
				Enabled: false,
				Config: map[string]interface{}{
					"token": "",
				},
			},
		},
	}
}
