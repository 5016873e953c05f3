package lark

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/tgifai/thursday/internal/channel"
	"github.com/tgifai/thursday/internal/config"
)

var _ channel.Channel = (*Lark)(nil)

type Lark struct {
	id     string
	config Config
	client *lark.Client
}

func NewChannel(chanId string, chCfg *config.ChannelConfig) (channel.Channel, error) {
	cfg, err := ParseConfig(chCfg.Config)
	if err != nil {
		return nil, fmt.Errorf("parse lark config: %w", err)
	}

	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithOpenBaseUrl(cfg.BaseURL),
		lark.WithEnableTokenCache(true),
	)

	return &Lark{
		id:     chanId,
		config: *cfg,
		client: client,
	}, nil
}

func (l *Lark) ID() string {
	return l.id
}

func (l *Lark) Type() channel.Type {
	return channel.Lark
}

func (l *Lark) SendMessage(ctx context.Context, chatID string, content string) error {
	msgType, body, err := buildPostContent(content)
	if err != nil {
		return fmt.Errorf("build lark post content: %w", err)
	}
	return l.send(ctx, chatID, msgType, body)
}

// SendImage uploads the image first; Lark messages reference images by key.
func (l *Lark) SendImage(ctx context.Context, chatID string, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	resp, err := l.client.Im.Image.Create(ctx,
		larkim.NewCreateImageReqBuilder().
			Body(larkim.NewCreateImageReqBodyBuilder().
				ImageType(larkim.ImageTypeMessage).
				Image(f).
				Build()).
			Build())
	if err != nil {
		return fmt.Errorf("lark upload image: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("lark upload image failed: code=%d msg=%s", resp.Code, resp.Msg)
	}
	if resp.Data == nil || resp.Data.ImageKey == nil || *resp.Data.ImageKey == "" {
		return errors.New("lark upload image returned no image key")
	}

	body, err := buildImageContent(*resp.Data.ImageKey)
	if err != nil {
		return err
	}
	return l.send(ctx, chatID, larkim.MsgTypeImage, body)
}

func (l *Lark) send(ctx context.Context, chatID, msgType, body string) error {
	resp, err := l.client.Im.Message.Create(ctx,
		larkim.NewCreateMessageReqBuilder().
			ReceiveIdType(receiveIDType(chatID)).
			Body(larkim.NewCreateMessageReqBodyBuilder().
				MsgType(msgType).
				ReceiveId(chatID).
				Content(body).
				Build()).
			Build())
	if err != nil {
		return fmt.Errorf("lark send message: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("lark send message failed: code=%d msg=%s", resp.Code, resp.Msg)
	}
	return nil
}

// receiveIDType infers the id kind from Lark's id prefixes; group chats
// are oc_, users are ou_ (open id) or on_ (union id).
func receiveIDType(id string) string {
	switch {
	case strings.HasPrefix(id, "ou_"):
		return larkim.ReceiveIdTypeOpenId
	case strings.HasPrefix(id, "on_"):
		return larkim.ReceiveIdTypeUnionId
	case strings.Contains(id, "@"):
		return larkim.ReceiveIdTypeEmail
	default:
		return larkim.ReceiveIdTypeChatId
	}
}

func (l *Lark) Close(_ context.Context) error {
	return nil
}
