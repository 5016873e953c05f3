package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgifai/thursday/internal/config"
)

type botCall struct {
	method string
	fields map[string]string
	file   []byte
}

type fakeBotAPI struct {
	mu    sync.Mutex
	calls []botCall
	fail  map[string]bool
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := botCall{
		method: r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:],
		fields: map[string]string{},
	}
	if err := r.ParseMultipartForm(1 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			call.fields[k] = v[0]
		}
		for _, files := range r.MultipartForm.File {
			fh, _ := files[0].Open()
			call.file, _ = io.ReadAll(fh)
			_ = fh.Close()
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	fail := f.fail[call.fields["text"]]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fail {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`))
		return
	}
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":100,"type":"private"}}}`))
}

func (f *fakeBotAPI) snapshot() []botCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]botCall(nil), f.calls...)
}

func newTestChannel(t *testing.T, api *fakeBotAPI) *Telegram {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	ch, err := NewChannel("tg", &config.ChannelConfig{
		Type: "telegram",
		Config: map[string]interface{}{
			"token":      "123:abc",
			"server_url": srv.URL,
		},
	})
	require.NoError(t, err)
	return ch.(*Telegram)
}

func TestParseConfig(t *testing.T) {
	_, err := ParseConfig(map[string]interface{}{})
	assert.Error(t, err)

	cfg, err := ParseConfig(map[string]interface{}{"token": "t", "timeout_sec": 5})
	require.NoError(t, err)
	assert.Equal(t, "t", cfg.Token)
	assert.Equal(t, "5s", cfg.Timeout.String())
}

func TestConvertMarkdownEntities(t *testing.T) {
	text, entities := convertMarkdownEntities("🍗 **V me 50** [now](https://kfc.example)")
	assert.Equal(t, "🍗 V me 50 now", text)
	require.Len(t, entities, 2)

	// the drumstick is a surrogate pair
	assert.Equal(t, models.MessageEntityTypeBold, entities[0].Type)
	assert.Equal(t, 3, entities[0].Offset)
	assert.Equal(t, 7, entities[0].Length)

	assert.Equal(t, models.MessageEntityTypeTextLink, entities[1].Type)
	assert.Equal(t, "https://kfc.example", entities[1].URL)
	assert.Equal(t, 11, entities[1].Offset)
}

func TestSendMessage(t *testing.T) {
	api := &fakeBotAPI{}
	tg := newTestChannel(t, api)

	require.NoError(t, tg.SendMessage(context.Background(), "100", "**hi** there"))

	calls := api.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "sendMessage", calls[0].method)
	assert.Equal(t, "100", calls[0].fields["chat_id"])
	assert.Equal(t, "hi there", calls[0].fields["text"])
	assert.Contains(t, calls[0].fields["entities"], "bold")
}

func TestSendMessage_FallsBackToPlainText(t *testing.T) {
	api := &fakeBotAPI{fail: map[string]bool{"hi there": true}}
	tg := newTestChannel(t, api)

	require.NoError(t, tg.SendMessage(context.Background(), "100", "**hi** there"))

	calls := api.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, "**hi** there", calls[1].fields["text"])
}

func TestSendMessage_InvalidChatID(t *testing.T) {
	api := &fakeBotAPI{}
	tg := newTestChannel(t, api)

	assert.Error(t, tg.SendMessage(context.Background(), "@someone", "hi"))
	assert.Empty(t, api.snapshot())
}

func TestSendImage(t *testing.T) {
	api := &fakeBotAPI{}
	tg := newTestChannel(t, api)

	path := filepath.Join(t.TempDir(), "kfc.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o644))

	require.NoError(t, tg.SendImage(context.Background(), "100", path))
	calls := api.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "sendPhoto", calls[0].method)
	assert.Equal(t, []byte("png-bytes"), calls[0].file)

	assert.Error(t, tg.SendImage(context.Background(), "100", filepath.Join(t.TempDir(), "missing.png")))
}
