package channel

import (
	"context"
	"fmt"
	"strings"
)

// Recipient is a parsed broadcast target.
type Recipient struct {
	ChannelID string
	ChatID    string
}

func (r Recipient) String() string {
	return r.ChannelID + ":" + r.ChatID
}

// Router delivers to targets written as channelID:chatID. A target whose
// prefix is not a registered channel id is addressed as a whole to the
// default channel, so chat ids that contain ':' still work there.
type Router struct {
	registry       *Registry
	defaultChannel string
}

func NewRouter(registry *Registry, defaultChannel string) *Router {
	return &Router{
		registry:       registry,
		defaultChannel: defaultChannel,
	}
}

func (r *Router) Resolve(target string) (Recipient, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Recipient{}, fmt.Errorf("empty recipient")
	}

	if prefix, chatID, ok := strings.Cut(target, ":"); ok && r.registry.Exists(prefix) {
		if chatID == "" {
			return Recipient{}, fmt.Errorf("recipient %q has no chat id", target)
		}
		return Recipient{ChannelID: prefix, ChatID: chatID}, nil
	}

	if r.defaultChannel == "" {
		return Recipient{}, fmt.Errorf("recipient %q names no known channel and no default channel is set", target)
	}
	return Recipient{ChannelID: r.defaultChannel, ChatID: target}, nil
}

func (r *Router) SendText(ctx context.Context, target, text string) error {
	rcpt, ch, err := r.lookup(target)
	if err != nil {
		return err
	}
	return ch.SendMessage(ctx, rcpt.ChatID, text)
}

func (r *Router) SendImage(ctx context.Context, target, path string) error {
	rcpt, ch, err := r.lookup(target)
	if err != nil {
		return err
	}
	return ch.SendImage(ctx, rcpt.ChatID, path)
}

func (r *Router) lookup(target string) (Recipient, Channel, error) {
	rcpt, err := r.Resolve(target)
	if err != nil {
		return Recipient{}, nil, err
	}
	ch, err := r.registry.Get(rcpt.ChannelID)
	if err != nil {
		return Recipient{}, nil, err
	}
	return rcpt, ch, nil
}
