package openai

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, v any) *http.Response {
	b, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func TestChatCompletion(t *testing.T) {
	calls := 0
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			if req.URL.Path != "/v1/chat/completions" {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			if got := req.Header.Get("Authorization"); got != "Bearer sk-test" {
				t.Fatalf("authorization=%q", got)
			}

			var in chatCompletionRequest
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				t.Fatalf("decode req: %v", err)
			}
			if in.Model != DefaultModel || in.Temperature != DefaultTemperature || in.MaxTokens != DefaultMaxTokens {
				t.Fatalf("unexpected params: %+v", in)
			}
			if len(in.Messages) != 2 || in.Messages[0].Role != "system" {
				t.Fatalf("unexpected messages: %+v", in.Messages)
			}

			return jsonResponse(http.StatusOK, map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": `{"materialIds":[1]}`}},
				},
			}), nil
		}),
	}

	c, err := NewWithHTTPClient(logger.Nop(), Config{
		APIKey:      "sk-test",
		BaseURL:     "http://upstream/",
		Temperature: DefaultTemperature,
	}, client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}

	text, err := c.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "json only"},
			{Role: "user", Content: "recommend"},
			{Role: "user", Content: "   "},
		},
	})
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if text != `{"materialIds":[1]}` {
		t.Fatalf("text=%q", text)
	}
	if calls != 1 {
		t.Fatalf("calls=%d", calls)
	}
}

func TestChatCompletionHTTPErrorIsNotRetried(t *testing.T) {
	calls := 0
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			return &http.Response{
				StatusCode: http.StatusTooManyRequests,
				Body:       io.NopCloser(strings.NewReader("rate limited")),
			}, nil
		}),
	}
	c, err := NewWithHTTPClient(logger.Nop(), Config{APIKey: "k", BaseURL: "http://upstream"}, client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}

	_, err = c.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected HTTPError 429, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestChatCompletionEmptyChoices(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, map[string]any{"choices": []any{}}), nil
		}),
	}
	c, err := NewWithHTTPClient(logger.Nop(), Config{APIKey: "k", BaseURL: "http://upstream"}, client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	text, err := c.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil || text != "" {
		t.Fatalf("expected empty text and nil error, got %q, %v", text, err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(logger.Nop(), Config{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
