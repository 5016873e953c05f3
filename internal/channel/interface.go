package channel

import (
	"context"
)

// Channel is an outbound adapter to one chat platform account. chatID is
// provider-specific and passed as a string for portability.
type Channel interface {
	// ID returns the unique configured channel identifier.
	ID() string

	// Type returns the channel provider type.
	Type() Type

	// SendMessage sends text content to the target chat. Content may be
	// markdown; channels render it to their native formatting.
	SendMessage(ctx context.Context, chatID string, content string) error

	// SendImage uploads the image at path to the target chat.
	// Implementations that cannot send images return ErrUnsupportedOperation.
	SendImage(ctx context.Context, chatID string, path string) error

	// Close releases channel resources.
	Close(ctx context.Context) error
}
