package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/goleak"

	"github.com/rematerial/rematerial-backend/internal/platform/logger"
	"github.com/rematerial/rematerial-backend/internal/platform/openai"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	last  openai.ChatRequest
	fn    func(ctx context.Context) (string, error)
}

func (f *fakeProvider) ChatCompletion(ctx context.Context, req openai.ChatRequest) (string, error) {
	f.mu.Lock()
	f.calls++
	f.last = req
	f.mu.Unlock()
	return f.fn(ctx)
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestReasonerAsk(t *testing.T) {
	fp := &fakeProvider{fn: func(context.Context) (string, error) { return `{"materialIds":[1]}`, nil }}
	r := NewReasoner(fp, ReasonerConfig{Timeout: time.Second}, logger.Nop())

	raw, err := r.Ask(context.Background(), testProject(), "timber", nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if raw != `{"materialIds":[1]}` {
		t.Fatalf("raw=%q", raw)
	}
	if len(fp.last.Messages) != 2 || fp.last.Messages[0].Content != SystemPrompt || fp.last.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages: %+v", fp.last.Messages)
	}
}

func TestReasonerDisabled(t *testing.T) {
	r := NewReasoner(nil, ReasonerConfig{}, logger.Nop())
	_, err := r.Ask(context.Background(), testProject(), "q", nil)
	var pe *ProviderError
	if !errors.As(err, &pe) || !errors.Is(err, ErrProviderDisabled) {
		t.Fatalf("expected disabled ProviderError, got %v", err)
	}
}

func TestReasonerTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	fp := &fakeProvider{fn: func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	r := NewReasoner(fp, ReasonerConfig{Timeout: 20 * time.Millisecond}, logger.Nop())

	start := time.Now()
	_, err := r.Ask(context.Background(), testProject(), "q", nil)
	var pe *ProviderError
	if !errors.As(err, &pe) || !pe.Timeout() {
		t.Fatalf("expected timeout ProviderError, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not enforced")
	}
}

func TestReasonerBreakerOpens(t *testing.T) {
	fp := &fakeProvider{fn: func(context.Context) (string, error) { return "", errors.New("connection refused") }}
	r := NewReasoner(fp, ReasonerConfig{
		Timeout:         time.Second,
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	}, logger.Nop())

	for i := 0; i < 2; i++ {
		if _, err := r.Ask(context.Background(), testProject(), "q", nil); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	_, err := r.Ask(context.Background(), testProject(), "q", nil)
	var pe *ProviderError
	if !errors.As(err, &pe) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open-circuit ProviderError, got %v", err)
	}
	if fp.Calls() != 2 {
		t.Fatalf("provider reached %d times, want 2", fp.Calls())
	}
}
