package channel

import (
	"errors"
)

var (
	ErrUnsupportedOperation = errors.New("channel operation is not supported")
	ErrUnknownChannel       = errors.New("channel not found")
)

type Type string

const (
	Telegram Type = "telegram"

	Lark Type = "lark"

	Webhook Type = "webhook"
)

var SupportedChannels = []Type{
	Telegram,
	Lark,
	Webhook,
}
