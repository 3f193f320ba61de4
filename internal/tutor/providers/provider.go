package providers

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

// ErrInvalidResponse is returned when a provider envelope carries no assistant text.
var ErrInvalidResponse = errors.New("invalid response format")

// Request is one provider call. Messages is the full list: system prompt,
// history and the current user message, in that order.
type Request struct {
	Messages []*schema.Message
}

// Reply is the normalized provider output.
type Reply struct {
	Content string
	Model   string
	Usage   *schema.TokenUsage
}

// Provider is implemented once per upstream API shape.
type Provider interface {
	ID() model.ModelID
	// Configured reports whether credentials are present. Unconfigured
	// providers fail lazily on Send.
	Configured() bool
	Send(ctx context.Context, req Request) (Reply, error)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
