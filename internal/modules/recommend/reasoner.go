package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	types "github.com/rematerial/rematerial-backend/internal/domain"
	"github.com/rematerial/rematerial-backend/internal/observability"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
	"github.com/rematerial/rematerial-backend/internal/platform/openai"
)

// ErrProviderDisabled is wrapped in a ProviderError when no provider is configured.
var ErrProviderDisabled = errors.New("reasoning provider not configured")

// ProviderError wraps any failure to obtain a completion: transport and HTTP
// errors, timeouts and an open circuit.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.Op == "" {
		return fmt.Sprintf("provider error: %v", e.Err)
	}
	return fmt.Sprintf("provider error: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Timeout reports whether the provider call hit its deadline.
func (e *ProviderError) Timeout() bool {
	return e != nil && errors.Is(e.Err, context.DeadlineExceeded)
}

// Reasoner asks the external provider for a ranked recommendation. It returns
// the raw completion; an empty completion is not an error.
type Reasoner interface {
	Ask(ctx context.Context, p *types.Project, query string, materials []*types.Material) (string, error)
}

// ChatProvider is the chat-completions surface the reasoner needs.
type ChatProvider interface {
	ChatCompletion(ctx context.Context, req openai.ChatRequest) (string, error)
}

type ReasonerConfig struct {
	Timeout time.Duration
	// BreakerFailures is the consecutive failure count that opens the
	// circuit. Zero disables the breaker.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

type llmReasoner struct {
	provider ChatProvider
	cfg      ReasonerConfig
	cb       *gobreaker.CircuitBreaker[string]
	log      *logger.Logger
}

// NewReasoner builds a Reasoner over provider. A nil provider yields a
// reasoner that always fails with ErrProviderDisabled.
func NewReasoner(provider ChatProvider, cfg ReasonerConfig, baseLog *logger.Logger) Reasoner {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	r := &llmReasoner{
		provider: provider,
		cfg:      cfg,
		log:      baseLog.With("service", "Reasoner"),
	}
	if cfg.BreakerFailures > 0 {
		threshold := cfg.BreakerFailures
		r.cb = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:        "reasoning-provider",
			MaxRequests: 1,
			Timeout:     cfg.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				r.log.Warn("provider circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
				observability.Current().SetBreakerState(to.String())
			},
		})
	}
	return r
}

func (r *llmReasoner) Ask(ctx context.Context, p *types.Project, query string, materials []*types.Material) (string, error) {
	if r.provider == nil {
		return "", &ProviderError{Op: "ask", Err: ErrProviderDisabled}
	}
	prompt, err := BuildPrompt(p, query, materials)
	if err != nil {
		return "", &ProviderError{Op: "prompt", Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	call := func() (string, error) {
		return r.provider.ChatCompletion(callCtx, openai.ChatRequest{
			Messages: []openai.Message{
				{Role: "system", Content: SystemPrompt},
				{Role: "user", Content: prompt},
			},
		})
	}

	var raw string
	if r.cb != nil {
		raw, err = r.cb.Execute(call)
	} else {
		raw, err = call()
	}
	if err != nil {
		if ctxErr := callCtx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return "", &ProviderError{Op: "chat_completion", Err: err}
	}
	return raw, nil
}
