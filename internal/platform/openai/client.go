package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rematerial/rematerial-backend/internal/observability"
	"github.com/rematerial/rematerial-backend/internal/platform/logger"
)

const (
	DefaultBaseURL     = "https://api.openai.com"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 800

	chatCompletionsPath = "/v1/chat/completions"
)

var ErrMissingAPIKey = errors.New("missing OPENAI_API_KEY")

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	// Timeout bounds a single HTTP exchange; zero leaves it to the caller's context.
	Timeout time.Duration
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest overrides the client defaults when a field is set.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature *float64
	MaxTokens   int
}

// Client is a chat-completions client for OpenAI-compatible endpoints.
// It makes exactly one HTTP attempt per call.
type Client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	temp       float64
	maxTokens  int
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(log *logger.Logger, cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if log == nil {
		log = logger.Nop()
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		log:        log.With("client", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		temp:       cfg.Temperature,
		maxTokens:  maxTokens,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{Transport: tr},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(log *logger.Logger, cfg Config, httpClient *http.Client) (*Client, error) {
	c, err := NewClient(log, cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

func (c *Client) Model() string { return c.model }

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// ChatCompletion returns the first non-empty choice text. An empty completion
// is not an error.
func (c *Client) ChatCompletion(ctx context.Context, in ChatRequest) (string, error) {
	msgs := make([]Message, 0, len(in.Messages))
	for _, m := range in.Messages {
		role := strings.TrimSpace(m.Role)
		if role == "" || strings.TrimSpace(m.Content) == "" {
			continue
		}
		msgs = append(msgs, Message{Role: role, Content: m.Content})
	}
	if len(msgs) == 0 {
		return "", errors.New("openai: no messages")
	}

	req := chatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: c.temp,
		MaxTokens:   c.maxTokens,
	}
	if m := strings.TrimSpace(in.Model); m != "" {
		req.Model = m
	}
	if in.Temperature != nil {
		req.Temperature = *in.Temperature
	}
	if in.MaxTokens > 0 {
		req.MaxTokens = in.MaxTokens
	}

	start := time.Now()
	var resp chatCompletionResponse
	status, err := c.doJSON(ctx, http.MethodPost, chatCompletionsPath, req, &resp)
	if metrics := observability.Current(); metrics != nil {
		metrics.ObserveLLMRequest(req.Model, status, time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
	if err != nil {
		c.log.Warn("chat completion failed", "model", req.Model, "status", status, "error", err)
		return "", err
	}
	return extractChatText(resp), nil
}

func extractChatText(resp chatCompletionResponse) string {
	for _, ch := range resp.Choices {
		if strings.TrimSpace(ch.Message.Content) != "" {
			return ch.Message.Content
		}
		if strings.TrimSpace(ch.Text) != "" {
			return ch.Text
		}
	}
	return ""
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) (string, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return "encode_error", err
		}
	}

	ctx2 := ctx
	var cancel context.CancelFunc
	if c.timeout > 0 {
		ctx2, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, &buf)
	if err != nil {
		return "request_error", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx2.Err(), context.DeadlineExceeded) {
			return "timeout", err
		}
		return "transport_error", err
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return status, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return status, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "decode_error", fmt.Errorf("openai decode error: %w", err)
	}
	return status, nil
}
