package real

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-future-predictor/internal/config"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

type chatReq struct {
	Model       string              `json:"model"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
	Messages    []map[string]string `json:"messages"`
}

type imageReq struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	N       int    `json:"n"`
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppEnv:        "test",
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: baseURL,
		ChatModel:     "gpt-4-turbo-preview",
		ImageModel:    "dall-e-3",
		ImageSize:     "1024x1024",
		ImageQuality:  "hd",
	}
}

func TestChatJSON_SendsCompletionRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var cr chatReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cr))
		assert.Equal(t, "gpt-4-turbo-preview", cr.Model)
		assert.Equal(t, 0.7, cr.Temperature)
		assert.Equal(t, 3000, cr.MaxTokens)
		require.Len(t, cr.Messages, 2)
		assert.Equal(t, "system", cr.Messages[0]["role"])
		assert.Equal(t, "sys", cr.Messages[0]["content"])
		assert.Equal(t, "user", cr.Messages[1]["role"])
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   "gpt-4-turbo-preview",
			"choices": []map[string]any{{"message": map[string]any{"content": `{"ok":true}`}}},
		})
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	out, err := c.ChatJSON(context.Background(), domain.ChatRequest{SystemPrompt: "sys", UserPrompt: "user", MaxTokens: 3000, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
}

func TestChatJSON_RetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "done"}}},
		})
	}))
	defer ts.Close()

	out, err := New(testConfig(ts.URL)).ChatJSON(context.Background(), domain.ChatRequest{MaxTokens: 10})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestChatJSON_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad"}}`))
	}))
	defer ts.Close()

	_, err := New(testConfig(ts.URL)).ChatJSON(context.Background(), domain.ChatRequest{MaxTokens: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat status 400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestChatJSON_RateLimitExhausted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := New(testConfig(ts.URL)).ChatJSON(context.Background(), domain.ChatRequest{MaxTokens: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamRateLimit), "got %v", err)
}

func TestChatJSON_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	_, err := New(testConfig(ts.URL)).ChatJSON(context.Background(), domain.ChatRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty choices")
}

func TestChatJSON_MissingKey(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.OpenAIAPIKey = ""
	_, err := New(cfg).ChatJSON(context.Background(), domain.ChatRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = New(cfg).GenerateImage(context.Background(), "p")
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestGenerateImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		var ir imageReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ir))
		assert.Equal(t, imageReq{Model: "dall-e-3", Prompt: "毕业照", Size: "1024x1024", Quality: "hd", N: 1}, ir)
		_, _ = w.Write([]byte(`{"data":[{"url":"https://img.example/grad.png"}]}`))
	}))
	defer ts.Close()

	url, err := New(testConfig(ts.URL)).GenerateImage(context.Background(), "毕业照")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/grad.png", url)
}

func TestGenerateImage_NoURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer ts.Close()

	_, err := New(testConfig(ts.URL)).GenerateImage(context.Background(), "x")
	require.Error(t, err)
}

func TestChatJSON_CancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(testConfig(ts.URL)).ChatJSON(ctx, domain.ChatRequest{})
	require.Error(t, err)
}
