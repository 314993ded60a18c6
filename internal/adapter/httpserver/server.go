package httpserver

import (
	"context"

	"github.com/fairyhunter13/ai-future-predictor/internal/config"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

// Profiles is the profile use case as seen by the handlers.
type Profiles interface {
	SaveProfile(ctx domain.Context, p domain.StudentProfile) (domain.StudentProfile, error)
	GetProfile(ctx domain.Context, userID string) (domain.StudentProfile, error)
	UploadPhoto(ctx domain.Context, userID string, data []byte) (string, error)
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg         config.Config
	Predictor   domain.PredictionAPI
	Predictions domain.PredictionRepository
	Profiles    Profiles
	// Limiter throttles predictions per user id. Nil disables it.
	Limiter    domain.RateLimiter
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, predictor domain.PredictionAPI, predictions domain.PredictionRepository, profiles Profiles, limiter domain.RateLimiter, dbCheck, redisCheck func(context.Context) error) *Server {
	return &Server{
		Cfg:         cfg,
		Predictor:   predictor,
		Predictions: predictions,
		Profiles:    profiles,
		Limiter:     limiter,
		DBCheck:     dbCheck,
		RedisCheck:  redisCheck,
	}
}
