package telegram

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/tgifai/thursday/internal/channel"
	"github.com/tgifai/thursday/internal/config"
	"github.com/tgifai/thursday/internal/pkg/logs"
)

var _ channel.Channel = (*Telegram)(nil)

type Telegram struct {
	id     string
	config Config
	bot    *bot.Bot
}

func NewChannel(chanId string, chCfg *config.ChannelConfig) (channel.Channel, error) {
	cfg, err := ParseConfig(chCfg.Config)
	if err != nil {
		return nil, fmt.Errorf("parse telegram config: %w", err)
	}

	// outbound only: no update polling, and identity is not needed
	opts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(cfg.Timeout, &http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.ServerURL != "" {
		opts = append(opts, bot.WithServerURL(cfg.ServerURL))
	}

	tgBot, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Telegram{
		id:     chanId,
		config: *cfg,
		bot:    tgBot,
	}, nil
}

func (c *Telegram) ID() string {
	return c.id
}

func (c *Telegram) Type() channel.Type {
	return channel.Telegram
}

func (c *Telegram) SendMessage(ctx context.Context, chatID string, content string) error {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	entityText, entities := convertMarkdownEntities(content)
	if entityText == "" {
		entityText = content
	}

	_, err = c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:   chatIDInt,
		Text:     entityText,
		Entities: entities,
	})
	if err != nil && len(entities) > 0 {
		logs.CtxWarn(ctx, "[channel:telegram] entity send failed, falling back to plain text: %v", err)
		_, err = c.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatIDInt,
			Text:   content,
		})
	}
	return err
}

func (c *Telegram) SendImage(ctx context.Context, chatID string, path string) error {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	_, err = c.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatIDInt,
		Photo: &models.InputFileUpload{
			Filename: filepath.Base(path),
			Data:     f,
		},
	})
	if err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

func (c *Telegram) Close(ctx context.Context) error {
	return nil
}
