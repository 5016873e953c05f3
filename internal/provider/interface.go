package provider

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type Provider interface {
	// ID returns the configured provider instance identifier.
	// The value is used as the lookup key in the provider registry.
	ID() string

	// Type returns the backend family of this provider instance.
	Type() Type

	// DefaultModel is used when a generation request names no model.
	DefaultModel() string

	// Generate performs a single non-streaming chat completion request.
	// If modelName is empty the provider's default model is used; opts are
	// forwarded to the underlying eino model call.
	Generate(ctx context.Context, modelName string, input []*schema.Message, opts ...model.Option) (*schema.Message, error)

	// Close releases provider-owned resources. It should be safe to call
	// during shutdown.
	Close() error
}
