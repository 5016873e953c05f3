package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgifai/thursday/internal/config"
	"github.com/tgifai/thursday/internal/provider"
)

type stubProvider struct {
	reply string
	err   error
	seen  []*schema.Message
	model string
}

func (s *stubProvider) ID() string           { return "stub" }
func (s *stubProvider) Type() provider.Type  { return provider.OpenAI }
func (s *stubProvider) DefaultModel() string { return "default" }
func (s *stubProvider) Close() error         { return nil }
func (s *stubProvider) Generate(_ context.Context, modelName string, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	s.seen = input
	s.model = modelName
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func TestRender(t *testing.T) {
	at := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	got := Render("Crazy {weekday} #{weekday_num} {date} {time} for {recipient}", at, "tg:1")
	assert.Equal(t, "Crazy Thursday #4 2026-01-15 18:00 for tg:1", got)
	assert.Equal(t, "plain", Render("plain", at, "x"))
}

func TestNew_Unavailable(t *testing.T) {
	ctx := context.Background()

	g := New(provider.NewRegistry(), config.GenerationConfig{})
	_, err := g.Generate(ctx, "p", "t")
	assert.True(t, errors.Is(err, ErrUnavailable))

	g = New(provider.NewRegistry(), config.GenerationConfig{Model: "missing:gpt"})
	_, err = g.Generate(ctx, "p", "t")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestLLM_Generate(t *testing.T) {
	reg := provider.NewRegistry()
	stub := &stubProvider{reply: "  V me 50  "}
	require.NoError(t, reg.Register(stub))

	g := New(reg, config.GenerationConfig{Model: "stub:kfc-1", Persona: "be cute", MaxTokens: 100})
	llm, ok := g.(*LLM)
	require.True(t, ok)
	assert.Equal(t, "stub:kfc-1", llm.Model())

	text, err := g.Generate(context.Background(), "ask for 50", "tg:1")
	require.NoError(t, err)
	assert.Equal(t, "V me 50", text)
	assert.Equal(t, "kfc-1", stub.model)
	require.Len(t, stub.seen, 2)
	assert.Equal(t, schema.System, stub.seen[0].Role)
	assert.Equal(t, "ask for 50", stub.seen[1].Content)

	stub.reply = "   "
	_, err = g.Generate(context.Background(), "ask", "tg:1")
	assert.Error(t, err)

	stub.err = errors.New("boom")
	_, err = g.Generate(context.Background(), "ask", "tg:1")
	assert.Error(t, err)
}
