package llm

import (
	"context"
	"errors"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/chat"
)

var (
	// ErrNotConfigured is returned when no provider credentials are present.
	ErrNotConfigured = errors.New("llm client not configured")
	// ErrUpstreamFailure wraps transport errors, non-2xx replies and empty completions.
	ErrUpstreamFailure = errors.New("llm upstream failure")
)

// Options bounds a single completion call.
type Options struct {
	MaxTokens   int
	Temperature float32
}

// DefaultOptions keeps replies short: 100 tokens at temperature 0.7.
func DefaultOptions() Options {
	return Options{MaxTokens: 100, Temperature: 0.7}
}

// Client sends an ordered message list to a chat completion backend and
// returns the first choice's content.
type Client interface {
	Send(ctx context.Context, messages []chat.Message, opts Options) (string, error)
	Model() string
	Configured() bool
}

// Unconfigured is the client used when credentials are absent.
type Unconfigured struct {
	ModelName string
}

func (u Unconfigured) Send(context.Context, []chat.Message, Options) (string, error) {
	return "", ErrNotConfigured
}

func (u Unconfigured) Model() string { return u.ModelName }

func (u Unconfigured) Configured() bool { return false }
