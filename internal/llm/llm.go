// Package llm wraps a Provider with the two concerns every caller needs
// regardless of backend: retrying a transient overload with jittered
// backoff, and annotating Anthropic requests for prompt caching.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/nextlevelbuilder/hiveagent/internal/providers"
)

const maxRetries = 10

// Client issues chat completions through a Provider, applying retry and
// cache-annotation policy uniformly across backends.
type Client struct {
	Provider    providers.Provider
	Model       string
	Temperature float64
	MaxTokens   int
}

// New returns a Client bound to provider, using model (or the provider's
// default, if model is empty) for every call.
func New(provider providers.Provider, model string, temperature float64, maxTokens int) *Client {
	return &Client{Provider: provider, Model: model, Temperature: temperature, MaxTokens: maxTokens}
}

// Send issues one chat completion for messages and returns the reply text.
// If the resolved model identifier contains "anthropic/", the system
// message and the last two user messages are marked for ephemeral prompt
// caching before the call is made.
func (c *Client) Send(ctx context.Context, messages []providers.Message) (string, error) {
	model := c.Model
	if model == "" {
		model = c.Provider.DefaultModel()
	}

	req := providers.ChatRequest{
		Messages:    annotateForCaching(messages, model),
		Model:       model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := c.Provider.Chat(ctx, req)
		if err == nil {
			return resp.Content, nil
		}

		var overloaded *providers.OverloadedError
		if !errors.As(err, &overloaded) || attempt == maxRetries-1 {
			return "", err
		}

		delay := backoffDelay(attempt)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", fmt.Errorf("llm: exhausted %d retries", maxRetries)
}

// backoffDelay returns min(2^attempt + U(0, 0.1*2^attempt), 60) seconds.
func backoffDelay(attempt int) time.Duration {
	base := float64(uint(1) << uint(attempt))
	jitter := rand.Float64() * base * 0.1
	seconds := base + jitter
	if seconds > 60 {
		seconds = 60
	}
	return time.Duration(seconds * float64(time.Second))
}

// annotateForCaching returns a copy of messages with CacheControl set on the
// system message and the last two user messages, when model targets
// Anthropic. Non-Anthropic models are returned unmodified.
func annotateForCaching(messages []providers.Message, model string) []providers.Message {
	if !strings.Contains(model, "anthropic/") {
		return messages
	}

	out := make([]providers.Message, len(messages))
	copy(out, messages)

	for i := range out {
		if out[i].Role == "system" {
			out[i].CacheControl = true
		}
	}

	userIndices := make([]int, 0, 2)
	for i, msg := range out {
		if msg.Role == "user" {
			userIndices = append(userIndices, i)
		}
	}
	for _, i := range lastN(userIndices, 2) {
		out[i].CacheControl = true
	}

	return out
}

func lastN(xs []int, n int) []int {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
