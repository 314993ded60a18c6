package domain

import "time"

// Repositories (ports)

// PredictionRepository stores one prediction row per user.
// Get returns an error wrapping ErrNotFound when no row exists.
type PredictionRepository interface {
	Upsert(ctx Context, r PredictionRecord) (PredictionRecord, error)
	Get(ctx Context, userID string) (PredictionRecord, error)
}

// ProfileRepository stores wizard submissions.
type ProfileRepository interface {
	Upsert(ctx Context, p StudentProfile) (StudentProfile, error)
	Get(ctx Context, userID string) (StudentProfile, error)
	SetPhotoURL(ctx Context, userID, url string) error
}

// ChatRequest is a single system+user completion.
type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// AIClient (port)
type AIClient interface {
	// ChatJSON returns the raw message content; it may or may not be valid JSON.
	ChatJSON(ctx Context, req ChatRequest) (string, error)
}

// ImageGenerator returns a hosted URL for a generated image.
type ImageGenerator interface {
	GenerateImage(ctx Context, prompt string) (string, error)
}

// PhotoStore persists a student photo and returns its public URL.
type PhotoStore interface {
	UploadPhoto(ctx Context, userID string, data []byte, contentType string) (string, error)
}

// EventPublisher emits prediction lifecycle events.
type EventPublisher interface {
	PublishPrediction(ctx Context, ev PredictionEvent) error
}

// RateLimiter is a keyed token bucket.
type RateLimiter interface {
	Allow(ctx Context, key string, cost int64) (allowed bool, retryAfter time.Duration, err error)
}

// PredictRequest is the body of a prediction call, shared by the HTTP endpoint,
// the service, and the requester transport.
type PredictRequest struct {
	UserID            string   `json:"userId" validate:"required,max=128"`
	Profile           *Profile `json:"profileData" validate:"required"`
	PhotoBase64       string   `json:"photoBase64,omitempty"`
	UseFallbackPrompt bool     `json:"useFallbackPrompt,omitempty"`
}

// PredictionAPI is the remote prediction endpoint as seen by the requester.
type PredictionAPI interface {
	Predict(ctx Context, req PredictRequest) (PredictionRecord, error)
}
