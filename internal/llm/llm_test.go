package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nextlevelbuilder/hiveagent/internal/providers"
)

type fakeProvider struct {
	calls        int
	failTimes    int
	failWith     error
	defaultModel string
	name         string
}

func (f *fakeProvider) Chat(ctx context.Context, req providers.ChatRequest) (*providers.ChatResponse, error) {
	f.calls++
	if f.calls <= f.failTimes {
		return nil, f.failWith
	}
	return &providers.ChatResponse{Content: "reply"}, nil
}

func (f *fakeProvider) DefaultModel() string { return f.defaultModel }
func (f *fakeProvider) Name() string         { return f.name }

func TestSendSucceedsWithoutRetry(t *testing.T) {
	p := &fakeProvider{defaultModel: "m"}
	c := New(p, "m", 0.5, 100)

	reply, err := c.Send(context.Background(), []providers.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "reply" {
		t.Errorf("unexpected reply: %q", reply)
	}
	if p.calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", p.calls)
	}
}

func TestSendRetriesOnOverload(t *testing.T) {
	p := &fakeProvider{defaultModel: "m", failTimes: 1, failWith: &providers.OverloadedError{Status: 529}}
	c := New(p, "m", 0.5, 100)

	reply, err := c.Send(context.Background(), []providers.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "reply" {
		t.Errorf("unexpected reply: %q", reply)
	}
	if p.calls != 2 {
		t.Errorf("expected 2 calls (1 failure + success), got %d", p.calls)
	}
}

func TestSendNonRetryableErrorReturnsImmediately(t *testing.T) {
	p := &fakeProvider{defaultModel: "m", failTimes: 1, failWith: errors.New("boom")}
	c := New(p, "m", 0.5, 100)

	_, err := c.Send(context.Background(), []providers.Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if p.calls != 1 {
		t.Errorf("expected exactly 1 call for a non-retryable error, got %d", p.calls)
	}
}

func TestSendRespectsContextCancellation(t *testing.T) {
	p := &fakeProvider{defaultModel: "m", failTimes: 5, failWith: &providers.OverloadedError{Status: 529}}
	c := New(p, "m", 0.5, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Send(ctx, []providers.Message{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestBackoffDelayBounds(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		d := backoffDelay(attempt)
		if d < 0 {
			t.Errorf("attempt %d: negative delay %v", attempt, d)
		}
		if d > 60*time.Second {
			t.Errorf("attempt %d: delay %v exceeds 60s cap", attempt, d)
		}
	}
}

func TestBackoffDelayCapsAtSixtySeconds(t *testing.T) {
	d := backoffDelay(20)
	if d != 60*time.Second {
		t.Errorf("expected delay capped at 60s for a large attempt, got %v", d)
	}
}

func TestAnnotateForCachingSkipsNonAnthropicModels(t *testing.T) {
	msgs := []providers.Message{{Role: "system", Content: "s"}, {Role: "user", Content: "u"}}
	out := annotateForCaching(msgs, "openai/gpt-4")
	for _, m := range out {
		if m.CacheControl {
			t.Error("expected no cache annotation for a non-Anthropic model")
		}
	}
}

func TestAnnotateForCachingMarksSystemAndLastTwoUserMessages(t *testing.T) {
	msgs := []providers.Message{
		{Role: "system", Content: "s"},
		{Role: "user", Content: "u1"},
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "u2"},
		{Role: "assistant", Content: "a2"},
		{Role: "user", Content: "u3"},
	}
	out := annotateForCaching(msgs, "anthropic/claude-sonnet")

	if !out[0].CacheControl {
		t.Error("expected system message annotated")
	}
	if out[1].CacheControl {
		t.Error("expected oldest user message (u1) not annotated")
	}
	if !out[3].CacheControl || !out[5].CacheControl {
		t.Error("expected the last two user messages annotated")
	}
	if out[2].CacheControl || out[4].CacheControl {
		t.Error("expected assistant messages never annotated")
	}
}

func TestAnnotateForCachingDoesNotMutateInput(t *testing.T) {
	msgs := []providers.Message{{Role: "system", Content: "s"}}
	annotateForCaching(msgs, "anthropic/claude-sonnet")
	if msgs[0].CacheControl {
		t.Error("expected original slice left untouched")
	}
}
