// Package predictapi is the HTTP client for the POST /predict endpoint.
package predictapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

// Client calls a prediction server. Each Predict is a single attempt; the
// requester decides what happens on failure.
type Client struct {
	baseURL string
	hc      *http.Client
}

var _ domain.PredictionAPI = (*Client)(nil)

// New builds a client for baseURL (e.g. http://localhost:8080).
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

type response struct {
	Success bool                     `json:"success"`
	Data    *domain.PredictionRecord `json:"data"`
	Error   string                   `json:"error"`
}

// StatusError is returned for non-2xx answers.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("predict status %d: %s", e.Status, e.Message)
}

// Predict posts req and returns the stored record from a successful answer.
func (c *Client) Predict(ctx domain.Context, req domain.PredictRequest) (domain.PredictionRecord, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.PredictionRecord{}, fmt.Errorf("op=predictapi.predict: %w", err)
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return domain.PredictionRecord{}, fmt.Errorf("op=predictapi.predict: %w", err)
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(hreq)
	if err != nil {
		return domain.PredictionRecord{}, fmt.Errorf("op=predictapi.predict: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return domain.PredictionRecord{}, fmt.Errorf("op=predictapi.predict: %w", err)
	}

	var out response
	_ = json.Unmarshal(raw, &out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return domain.PredictionRecord{}, fmt.Errorf("op=predictapi.predict: %w", &StatusError{Status: resp.StatusCode, Message: msg})
	}
	if !out.Success || out.Data == nil {
		return domain.PredictionRecord{}, fmt.Errorf("op=predictapi.predict: unsuccessful response")
	}
	return *out.Data, nil
}
