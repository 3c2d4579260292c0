// Package providers implements the LLM transport: a single synchronous
// chat-completion call per backend, with no native tool-calling, streaming,
// or vision support — the turn loop drives everything through plain text.
package providers

import (
	"context"
	"fmt"
)

// Provider is the interface every LLM backend implements.
type Provider interface {
	// Chat sends messages and returns the model's full reply.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// DefaultModel returns the provider's default model identifier.
	DefaultModel() string

	// Name returns the provider identifier (e.g. "anthropic", "openai").
	Name() string
}

// Message is one turn of a conversation. CacheControl marks a message for
// provider-side prompt caching where supported (currently Anthropic only);
// providers that don't support it ignore the flag.
type Message struct {
	Role         string // "system", "user", "assistant"
	Content      string
	CacheControl bool
}

// ChatRequest is the input to a Chat call.
type ChatRequest struct {
	Messages    []Message
	Model       string
	Temperature float64
	MaxTokens   int
}

// ChatResponse is an LLM call's result.
type ChatResponse struct {
	Content string
	Usage   Usage
}

// Usage reports token consumption as returned by the provider, when available.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// OverloadedError marks a provider response as a transient capacity error —
// the only error class the retry wrapper in internal/llm treats as retryable.
type OverloadedError struct {
	Status int
	Body   string
}

func (e *OverloadedError) Error() string {
	return fmt.Sprintf("provider overloaded (status %d): %s", e.Status, e.Body)
}
