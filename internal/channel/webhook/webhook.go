package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/tgifai/thursday/internal/channel"
	"github.com/tgifai/thursday/internal/config"
	"github.com/tgifai/thursday/internal/pkg/utils"
)

const (
	HeaderSignature = "X-Thursday-Signature"
	HeaderTimestamp = "X-Thursday-Timestamp"

	// maxImageSize keeps base64 payloads within what typical receivers accept (5 MB).
	maxImageSize = 5 * 1024 * 1024
)

var _ channel.Channel = (*Webhook)(nil)

// Payload is the JSON body posted for every delivery.
type Payload struct {
	Channel  string `json:"channel"`
	ChatID   string `json:"chat_id"`
	Kind     string `json:"kind"` // text, image
	Text     string `json:"text,omitempty"`
	Markdown string `json:"markdown,omitempty"`
	Filename string `json:"filename,omitempty"`
	MIME     string `json:"mime,omitempty"`
	Image    string `json:"image_base64,omitempty"`
	SentAt   int64  `json:"sent_at"`
}

// Webhook posts broadcasts to an HTTP endpoint, for bridges to platforms
// without a native adapter.
type Webhook struct {
	id     string
	config Config
	client *client.Client
	now    func() time.Time
}

func NewChannel(chanId string, chCfg *config.ChannelConfig) (channel.Channel, error) {
	cfg, err := ParseConfig(chCfg.Config)
	if err != nil {
		return nil, fmt.Errorf("parse webhook config: %w", err)
	}

	c, err := client.NewClient(
		client.WithDialTimeout(cfg.Timeout),
		client.WithClientReadTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create webhook client: %w", err)
	}

	return &Webhook{
		id:     chanId,
		config: *cfg,
		client: c,
		now:    time.Now,
	}, nil
}

func (w *Webhook) ID() string {
	return w.id
}

func (w *Webhook) Type() channel.Type {
	return channel.Webhook
}

func (w *Webhook) SendMessage(ctx context.Context, chatID string, content string) error {
	return w.post(ctx, &Payload{
		ChatID:   chatID,
		Kind:     "text",
		Text:     channel.ParseMarkdown(content).PlainText(),
		Markdown: content,
	})
}

func (w *Webhook) SendImage(ctx context.Context, chatID string, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if len(raw) > maxImageSize {
		return fmt.Errorf("image %s is %d bytes, limit is %d", filepath.Base(path), len(raw), maxImageSize)
	}

	return w.post(ctx, &Payload{
		ChatID:   chatID,
		Kind:     "image",
		Filename: filepath.Base(path),
		MIME:     http.DetectContentType(raw),
		Image:    base64.StdEncoding.EncodeToString(raw),
	})
}

func (w *Webhook) post(ctx context.Context, payload *Payload) error {
	payload.Channel = w.id
	payload.SentAt = w.now().Unix()

	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, resp := protocol.AcquireRequest(), protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetRequestURI(w.config.URL)
	req.SetMethod(consts.MethodPost)
	req.Header.SetContentTypeBytes([]byte(consts.MIMEApplicationJSON))
	for k, v := range w.config.Headers {
		req.Header.Set(k, v)
	}
	if w.config.Secret != "" {
		ts := strconv.FormatInt(payload.SentAt, 10)
		req.Header.Set(HeaderTimestamp, ts)
		req.Header.Set(HeaderSignature, Sign(w.config.Secret, ts, body))
	}
	req.SetBody(body)

	if err := w.client.DoTimeout(ctx, req, resp, w.config.Timeout); err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("webhook post failed: status=%d body=%s", code, utils.Truncate(string(resp.Body()), 200))
	}
	return nil
}

// Sign computes hex(HMAC-SHA256(secret, timestamp + "." + body)).
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (w *Webhook) Close(_ context.Context) error {
	return nil
}
