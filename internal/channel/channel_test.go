package channel

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	chatID string
	body   string
	image  bool
}

type fakeChannel struct {
	id  string
	mu  sync.Mutex
	out []sent
	err error
}

func (f *fakeChannel) ID() string                  { return f.id }
func (f *fakeChannel) Type() Type                  { return Webhook }
func (f *fakeChannel) Close(context.Context) error { return nil }

func (f *fakeChannel) SendMessage(_ context.Context, chatID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, sent{chatID: chatID, body: content})
	return f.err
}

func (f *fakeChannel) SendImage(_ context.Context, chatID, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, sent{chatID: chatID, body: path, image: true})
	return f.err
}

func newTestRouter(t *testing.T, defaultChannel string) (*Router, *fakeChannel, *fakeChannel) {
	t.Helper()
	tg, lk := &fakeChannel{id: "tg"}, &fakeChannel{id: "lark"}
	reg := NewRegistry()
	require.NoError(t, reg.Register(tg))
	require.NoError(t, reg.Register(lk))
	return NewRouter(reg, defaultChannel), tg, lk
}

func TestRouter_Resolve(t *testing.T) {
	r, _, _ := newTestRouter(t, "lark")

	tests := []struct {
		target string
		want   Recipient
	}{
		{"tg:100", Recipient{ChannelID: "tg", ChatID: "100"}},
		{" tg:-100200 ", Recipient{ChannelID: "tg", ChatID: "-100200"}},
		{"oc_123", Recipient{ChannelID: "lark", ChatID: "oc_123"}},
		// unknown prefix: the whole target is a chat id on the default channel
		{"chat:xyz", Recipient{ChannelID: "lark", ChatID: "chat:xyz"}},
	}
	for _, tt := range tests {
		got, err := r.Resolve(tt.target)
		require.NoError(t, err, tt.target)
		assert.Equal(t, tt.want, got, tt.target)
	}

	_, err := r.Resolve("tg:")
	assert.Error(t, err)
	_, err = r.Resolve("  ")
	assert.Error(t, err)

	noDefault, _, _ := newTestRouter(t, "")
	_, err = noDefault.Resolve("100")
	assert.Error(t, err)
}

func TestRouter_Send(t *testing.T) {
	r, tg, lk := newTestRouter(t, "tg")
	ctx := context.Background()

	require.NoError(t, r.SendText(ctx, "100", "hello"))
	require.NoError(t, r.SendImage(ctx, "lark:oc_1", "/tmp/kfc.png"))

	assert.Equal(t, []sent{{chatID: "100", body: "hello"}}, tg.out)
	assert.Equal(t, []sent{{chatID: "oc_1", body: "/tmp/kfc.png", image: true}}, lk.out)

	lk.err = errors.New("boom")
	assert.EqualError(t, r.SendText(ctx, "lark:oc_1", "x"), "boom")
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Register(&fakeChannel{}))
	require.NoError(t, reg.Register(&fakeChannel{id: "b"}))
	require.NoError(t, reg.Register(&fakeChannel{id: "a"}))

	ids := []string{}
	for _, ch := range reg.List() {
		ids = append(ids, ch.ID())
	}
	assert.Equal(t, []string{"a", "b"}, ids)

	_, err := reg.Get("zz")
	assert.ErrorIs(t, err, ErrUnknownChannel)

	reg.CloseAll(context.Background())
	assert.Equal(t, 0, reg.Len())
}

func TestParseMarkdown(t *testing.T) {
	doc := ParseMarkdown("# Title\n\nSome **bold** text.\n\n- a\n- b")
	assert.Equal(t, "Title\n\nSome bold text.\n\n- a\n- b", doc.PlainText())

	require.NotEmpty(t, doc.Paragraphs)
	assert.Equal(t, []Style{StyleBold}, doc.Paragraphs[0][0].Styles)

	var bold Segment
	for _, seg := range doc.Paragraphs[2] {
		if seg.Text == "bold" {
			bold = seg
		}
	}
	assert.Equal(t, []Style{StyleBold}, bold.Styles)

	assert.Empty(t, ParseMarkdown("  ").Paragraphs)
}

func TestParseMarkdown_LinksAndCode(t *testing.T) {
	doc := ParseMarkdown("pay at [kfc](https://kfc.example) with `V50`")
	require.Len(t, doc.Paragraphs, 1)

	var link, code Segment
	for _, seg := range doc.Paragraphs[0] {
		switch {
		case seg.Href != "":
			link = seg
		case seg.Text == "V50":
			code = seg
		}
	}
	assert.Equal(t, "kfc", link.Text)
	assert.Equal(t, "https://kfc.example", link.Href)
	assert.Equal(t, []Style{StyleCode}, code.Styles)
}
