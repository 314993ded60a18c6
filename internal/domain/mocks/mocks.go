// Package mocks holds testify mocks for the domain ports.
package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

// MockPredictionRepository is a mock of domain.PredictionRepository.
type MockPredictionRepository struct{ mock.Mock }

// Upsert provides a mock function.
func (m *MockPredictionRepository) Upsert(ctx domain.Context, r domain.PredictionRecord) (domain.PredictionRecord, error) {
	ret := m.Called(ctx, r)
	if fn, ok := ret.Get(0).(func(domain.Context, domain.PredictionRecord) domain.PredictionRecord); ok {
		return fn(ctx, r), ret.Error(1)
	}
	return ret.Get(0).(domain.PredictionRecord), ret.Error(1)
}

// Get provides a mock function.
func (m *MockPredictionRepository) Get(ctx domain.Context, userID string) (domain.PredictionRecord, error) {
	ret := m.Called(ctx, userID)
	return ret.Get(0).(domain.PredictionRecord), ret.Error(1)
}

// MockProfileRepository is a mock of domain.ProfileRepository.
type MockProfileRepository struct{ mock.Mock }

// Upsert provides a mock function.
func (m *MockProfileRepository) Upsert(ctx domain.Context, p domain.StudentProfile) (domain.StudentProfile, error) {
	ret := m.Called(ctx, p)
	return ret.Get(0).(domain.StudentProfile), ret.Error(1)
}

// Get provides a mock function.
func (m *MockProfileRepository) Get(ctx domain.Context, userID string) (domain.StudentProfile, error) {
	ret := m.Called(ctx, userID)
	return ret.Get(0).(domain.StudentProfile), ret.Error(1)
}

// SetPhotoURL provides a mock function.
func (m *MockProfileRepository) SetPhotoURL(ctx domain.Context, userID, url string) error {
	return m.Called(ctx, userID, url).Error(0)
}

// MockAIClient is a mock of domain.AIClient.
type MockAIClient struct{ mock.Mock }

// ChatJSON provides a mock function.
func (m *MockAIClient) ChatJSON(ctx domain.Context, req domain.ChatRequest) (string, error) {
	ret := m.Called(ctx, req)
	return ret.String(0), ret.Error(1)
}

// MockImageGenerator is a mock of domain.ImageGenerator.
type MockImageGenerator struct{ mock.Mock }

// GenerateImage provides a mock function.
func (m *MockImageGenerator) GenerateImage(ctx domain.Context, prompt string) (string, error) {
	ret := m.Called(ctx, prompt)
	return ret.String(0), ret.Error(1)
}

// MockPhotoStore is a mock of domain.PhotoStore.
type MockPhotoStore struct{ mock.Mock }

// UploadPhoto provides a mock function.
func (m *MockPhotoStore) UploadPhoto(ctx domain.Context, userID string, data []byte, contentType string) (string, error) {
	ret := m.Called(ctx, userID, data, contentType)
	return ret.String(0), ret.Error(1)
}

// MockEventPublisher is a mock of domain.EventPublisher.
type MockEventPublisher struct{ mock.Mock }

// PublishPrediction provides a mock function.
func (m *MockEventPublisher) PublishPrediction(ctx domain.Context, ev domain.PredictionEvent) error {
	return m.Called(ctx, ev).Error(0)
}

// MockRateLimiter is a mock of domain.RateLimiter.
type MockRateLimiter struct{ mock.Mock }

// Allow provides a mock function.
func (m *MockRateLimiter) Allow(ctx domain.Context, key string, cost int64) (bool, time.Duration, error) {
	ret := m.Called(ctx, key, cost)
	return ret.Bool(0), ret.Get(1).(time.Duration), ret.Error(2)
}

// MockPredictionAPI is a mock of domain.PredictionAPI.
type MockPredictionAPI struct{ mock.Mock }

// Predict provides a mock function.
func (m *MockPredictionAPI) Predict(ctx domain.Context, req domain.PredictRequest) (domain.PredictionRecord, error) {
	ret := m.Called(ctx, req)
	return ret.Get(0).(domain.PredictionRecord), ret.Error(1)
}
