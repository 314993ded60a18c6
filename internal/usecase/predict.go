// Package usecase contains the prediction workflow and its supporting services.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
	"github.com/fairyhunter13/ai-future-predictor/internal/fallback"
)

// Breaker gates model calls. *ai.CircuitBreaker satisfies it.
type Breaker interface {
	ShouldAttempt() bool
	RecordSuccess()
	RecordFailure()
}

// Decoder turns raw model text into a validated prediction. *ai.PredictionDecoder satisfies it.
type Decoder interface {
	Decode(raw string) (domain.Prediction, error)
}

// PromptSettings overrides the prompt budgets. Zero fields keep the defaults.
type PromptSettings struct {
	Model             string
	FullMaxTokens     int
	FallbackMaxTokens int
	Temperature       float64
}

// DefaultPublishTimeout bounds an event publish when PublishTimeout is unset.
const DefaultPublishTimeout = 3 * time.Second

// PredictService runs one prediction end to end and persists the result.
type PredictService struct {
	Predictions domain.PredictionRepository
	AI          domain.AIClient
	Images      domain.ImageGenerator
	Decoder     Decoder

	// Optional collaborators.
	Breaker  Breaker
	Events   domain.EventPublisher
	Rand     fallback.Rand
	Settings PromptSettings
	// PublishTimeout bounds each event publish; zero uses DefaultPublishTimeout.
	PublishTimeout time.Duration
}

// NewPredictService constructs a PredictService. img may be nil to disable portraits.
func NewPredictService(p domain.PredictionRepository, ai domain.AIClient, img domain.ImageGenerator, dec Decoder) *PredictService {
	return &PredictService{Predictions: p, AI: ai, Images: img, Decoder: dec}
}

// Predict marks the user as processing, asks the model, falls back on any model
// problem, generates portraits when a photo is present, and writes the
// completed record. The only returned errors are invalid input and persistence
// failures. The work is detached from ctx cancellation so a disconnecting
// client does not leave the row in processing.
func (s *PredictService) Predict(ctx domain.Context, req domain.PredictRequest) (domain.PredictionRecord, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" || req.Profile == nil {
		return domain.PredictionRecord{}, fmt.Errorf("%w: Missing required parameters", domain.ErrInvalidArgument)
	}
	ctx = context.WithoutCancel(ctx)
	lg := observability.LoggerFromContext(ctx).With(slog.String("user_id", userID))
	profile := *req.Profile

	path := observability.PathFailed
	observability.StartPrediction()
	defer func() { observability.FinishPrediction(path) }()

	if _, err := s.Predictions.Upsert(ctx, domain.StatusRecord(userID, domain.StatusProcessing)); err != nil {
		lg.Error("mark processing failed", slog.Any("error", err))
		return domain.PredictionRecord{}, fmt.Errorf("op=predict.start: %w", err)
	}

	prompt := s.buildPrompt(profile, req.UseFallbackPrompt)
	observability.SetPromptTokens(prompt.Variant, tokencount.EstimateChatTokens(prompt.SystemPrompt, prompt.UserPrompt, s.Settings.Model))

	pred, outcome := s.generate(ctx, lg, prompt, profile)

	var graduateURL, careerURL *string
	if req.PhotoBase64 != "" && !req.UseFallbackPrompt && s.Images != nil {
		graduateURL, careerURL = s.portraits(ctx, lg, profile.CareerTitle())
	}

	saved, err := s.Predictions.Upsert(ctx, domain.CompletedRecord(userID, pred, graduateURL, careerURL))
	if err != nil {
		lg.Error("store prediction failed", slog.Any("error", err))
		if _, ferr := s.Predictions.Upsert(ctx, domain.StatusRecord(userID, domain.StatusFailed)); ferr != nil {
			lg.Warn("mark failed also failed", slog.Any("error", ferr))
		}
		s.publish(ctx, lg, domain.PredictionEvent{UserID: userID, Status: domain.StatusFailed, Path: outcome})
		return domain.PredictionRecord{}, fmt.Errorf("op=predict.store: %w", err)
	}

	path = outcome
	observability.ObserveConfidence(pred.ConfidenceScore)
	s.publish(ctx, lg, domain.PredictionEvent{
		UserID:          userID,
		Status:          domain.StatusCompleted,
		Path:            outcome,
		ConfidenceScore: pred.ConfidenceScore,
		HasImages:       graduateURL != nil || careerURL != nil,
	})
	lg.Info("prediction completed", slog.String("path", outcome), slog.Float64("confidence", pred.ConfidenceScore))
	return saved, nil
}

func (s *PredictService) buildPrompt(p domain.Profile, useFallback bool) Prompt {
	prompt := BuildPrompt(p, useFallback)
	if useFallback && s.Settings.FallbackMaxTokens > 0 {
		prompt.MaxTokens = s.Settings.FallbackMaxTokens
	}
	if !useFallback && s.Settings.FullMaxTokens > 0 {
		prompt.MaxTokens = s.Settings.FullMaxTokens
	}
	if s.Settings.Temperature > 0 {
		prompt.Temperature = s.Settings.Temperature
	}
	return prompt
}

// generate returns the model's prediction or the service fallback, plus the outcome path.
func (s *PredictService) generate(ctx context.Context, lg *slog.Logger, prompt Prompt, p domain.Profile) (domain.Prediction, string) {
	if s.Breaker != nil && !s.Breaker.ShouldAttempt() {
		lg.Warn("model circuit open, using fallback")
		return fallback.Build(fallback.Service, p, s.Rand), observability.PathCallFallback
	}
	raw, err := s.AI.ChatJSON(ctx, prompt.ChatRequest)
	if err != nil {
		if s.Breaker != nil {
			s.Breaker.RecordFailure()
		}
		lg.Warn("model call failed, using fallback", slog.Any("error", err))
		return fallback.Build(fallback.Service, p, s.Rand), observability.PathCallFallback
	}
	if s.Breaker != nil {
		s.Breaker.RecordSuccess()
	}
	pred, err := s.Decoder.Decode(raw)
	if err != nil {
		lg.Warn("model output rejected, using fallback", slog.Any("error", err), slog.Int("raw_len", len(raw)))
		return fallback.Build(fallback.Service, p, s.Rand), observability.PathParseFallback
	}
	return pred, observability.PathModel
}

// portraits generates both images concurrently. A failed image leaves its URL nil.
func (s *PredictService) portraits(ctx context.Context, lg *slog.Logger, careerTitle string) (*string, *string) {
	var graduate, career *string
	var g errgroup.Group
	g.Go(func() error {
		graduate = s.image(ctx, lg, "graduate", GraduateImagePrompt())
		return nil
	})
	g.Go(func() error {
		career = s.image(ctx, lg, "career", CareerImagePrompt(careerTitle))
		return nil
	})
	_ = g.Wait()
	return graduate, career
}

func (s *PredictService) image(ctx context.Context, lg *slog.Logger, kind, prompt string) *string {
	start := time.Now()
	url, err := s.Images.GenerateImage(ctx, prompt)
	if err != nil || url == "" {
		if err == nil {
			err = errors.New("empty image url")
		}
		observability.RecordImageFailure(kind)
		lg.Warn("image generation failed", slog.String("kind", kind), slog.Any("error", err))
		return nil
	}
	lg.Debug("image generated", slog.String("kind", kind), slog.Duration("took", time.Since(start)))
	return &url
}

func (s *PredictService) publish(ctx context.Context, lg *slog.Logger, ev domain.PredictionEvent) {
	if s.Events == nil {
		return
	}
	ev.RequestID = observability.RequestIDFromContext(ctx)
	ev.OccurredAt = time.Now().UTC()
	timeout := s.PublishTimeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Events.PublishPrediction(ctx, ev); err != nil {
		lg.Warn("publish prediction event failed", slog.Any("error", err))
	}
}
