// Package real implements the OpenAI-compatible chat and image client.
package real

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"log/slog"

	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-future-predictor/internal/config"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

const provider = "openai"

// Client implements domain.AIClient and domain.ImageGenerator.
type Client struct {
	cfg     config.Config
	chatHC  *http.Client
	imageHC *http.Client
}

var (
	_ domain.AIClient       = (*Client)(nil)
	_ domain.ImageGenerator = (*Client)(nil)
)

// New constructs a client whose transports are traced with otelhttp.
func New(cfg config.Config) *Client {
	chatTimeout := cfg.AIChatTimeout
	if chatTimeout <= 0 {
		chatTimeout = 90 * time.Second
	}
	imageTimeout := cfg.AIImageTimeout
	if imageTimeout <= 0 {
		imageTimeout = 120 * time.Second
	}
	return &Client{
		cfg:     cfg,
		chatHC:  &http.Client{Timeout: chatTimeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		imageHC: &http.Client{Timeout: imageTimeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// getBackoffConfig returns a configured ExponentialBackOff based on the current environment.
func (c *Client) getBackoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()

	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier

	return expo
}

// statusError carries a non-2xx provider status through the retry loop.
type statusError struct {
	op     string
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s status %d", e.op, e.status)
}

func snippet(b []byte) string {
	if len(b) > 512 {
		return string(b[:512])
	}
	return string(b)
}

// classify maps a terminal retry error onto the domain taxonomy.
func classify(op string, err error) error {
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusTooManyRequests {
		return fmt.Errorf("op=openai.%s: %w: %v", op, domain.ErrUpstreamRateLimit, err)
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("op=openai.%s: %w: %v", op, domain.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("op=openai.%s: %w", op, err)
}

// postJSON sends body to path and decodes a 2xx response into out. 429 and 5xx
// are retried; other 4xx stop immediately.
func (c *Client) postJSON(ctx context.Context, hc *http.Client, op, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("op=openai.%s: marshal: %w", op, err)
	}
	endpoint := strings.TrimRight(c.cfg.OpenAIBaseURL, "/") + path
	lg := observability.LoggerFromContext(ctx)

	attempt := func() error {
		start := time.Now()
		// Recreate request each attempt to avoid reusing consumed bodies
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := hc.Do(r)
		observability.AIRequestsTotal.WithLabelValues(provider, op).Inc()
		observability.AIRequestDuration.WithLabelValues(provider, op).Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lg.Warn("ai provider rate limited", slog.String("provider", provider), slog.String("op", op), slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
			return &statusError{op: op, status: resp.StatusCode, body: snippet(bodyBytes)}
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			lg.Warn("ai provider 4xx", slog.String("provider", provider), slog.String("op", op), slog.Int("status", resp.StatusCode), slog.String("body", snippet(bodyBytes)))
			return backoff.Permanent(&statusError{op: op, status: resp.StatusCode, body: snippet(bodyBytes)})
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			lg.Error("ai provider non-2xx", slog.String("provider", provider), slog.String("op", op), slog.Int("status", resp.StatusCode), slog.String("body", snippet(bodyBytes)))
			return &statusError{op: op, status: resp.StatusCode, body: snippet(bodyBytes)}
		}
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			lg.Error("ai provider decode error", slog.String("provider", provider), slog.String("op", op), slog.Any("error", err))
			return backoff.Permanent(err)
		}
		return nil
	}

	if err := backoff.Retry(attempt, backoff.WithContext(c.getBackoffConfig(), ctx)); err != nil {
		return classify(op, err)
	}
	return nil
}

// ChatJSON runs a single system+user completion and returns the message content.
func (c *Client) ChatJSON(ctx domain.Context, req domain.ChatRequest) (string, error) {
	if strings.TrimSpace(c.cfg.OpenAIAPIKey) == "" {
		return "", fmt.Errorf("op=openai.chat: %w: OPENAI_API_KEY missing", domain.ErrInvalidArgument)
	}
	body := map[string]any{
		"model":       c.cfg.ChatModel,
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": req.SystemPrompt},
			{"role": "user", "content": req.UserPrompt},
		},
	}
	var out struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.postJSON(ctx, c.chatHC, "chat", "/chat/completions", body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("op=openai.chat: empty choices")
	}
	observability.LoggerFromContext(ctx).Debug("chat completion received",
		slog.String("provider", provider),
		slog.String("model", out.Model),
		slog.Int("content_len", len(out.Choices[0].Message.Content)))
	return out.Choices[0].Message.Content, nil
}

// GenerateImage requests one image and returns its hosted URL.
func (c *Client) GenerateImage(ctx domain.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.cfg.OpenAIAPIKey) == "" {
		return "", fmt.Errorf("op=openai.image: %w: OPENAI_API_KEY missing", domain.ErrInvalidArgument)
	}
	body := map[string]any{
		"model":   c.cfg.ImageModel,
		"prompt":  prompt,
		"size":    c.cfg.ImageSize,
		"quality": c.cfg.ImageQuality,
		"n":       1,
	}
	var out struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := c.postJSON(ctx, c.imageHC, "image", "/images/generations", body, &out); err != nil {
		return "", err
	}
	if len(out.Data) == 0 || out.Data[0].URL == "" {
		return "", fmt.Errorf("op=openai.image: no image url in response")
	}
	return out.Data[0].URL, nil
}
