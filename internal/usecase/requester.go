package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
	"github.com/fairyhunter13/ai-future-predictor/internal/fallback"
	"github.com/fairyhunter13/ai-future-predictor/internal/photo"
	"github.com/fairyhunter13/ai-future-predictor/internal/profile"
)

// Tier names which step of the requester chain produced the result.
type Tier string

const (
	TierPrimary  Tier = "primary"
	TierFallback Tier = "fallback"
	TierLocal    Tier = "local"
)

// Outcome is the requester's result.
type Outcome struct {
	Tier   Tier                    `json:"tier"`
	Record domain.PredictionRecord `json:"record"`
}

// Requester drives the client side of a prediction: the full call, then the
// fallback-prompt call, then a locally built record written straight to the store.
// The tiers run strictly in sequence.
type Requester struct {
	API         domain.PredictionAPI
	Predictions domain.PredictionRepository
	Rand        fallback.Rand
}

// NewRequester constructs a Requester.
func NewRequester(api domain.PredictionAPI, store domain.PredictionRepository) *Requester {
	return &Requester{API: api, Predictions: store}
}

// Request runs the tiers for userID. Only a failed local write is returned as an error.
func (r *Requester) Request(ctx domain.Context, userID string, p domain.Profile, photoData []byte, photoContentType string) (Outcome, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Outcome{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}
	lg := observability.LoggerFromContext(ctx).With(slog.String("user_id", userID))

	primary := domain.PredictRequest{UserID: userID, Profile: &p}
	if len(photoData) > 0 {
		primary.PhotoBase64 = photo.EncodeDataURL(photoData, photoContentType)
	}
	rec, err := r.API.Predict(ctx, primary)
	if err == nil {
		return Outcome{Tier: TierPrimary, Record: rec}, nil
	}
	lg.Warn("primary prediction failed", slog.Any("error", err))

	reduced := profile.Reduced(p)
	rec, err = r.API.Predict(ctx, domain.PredictRequest{UserID: userID, Profile: &reduced, UseFallbackPrompt: true})
	if err == nil {
		return Outcome{Tier: TierFallback, Record: rec}, nil
	}
	lg.Warn("fallback prediction failed, building locally", slog.Any("error", err))

	pred := fallback.Build(fallback.Local, p, r.Rand)
	saved, err := r.Predictions.Upsert(ctx, domain.LocalRecord(userID, pred))
	if err != nil {
		return Outcome{}, fmt.Errorf("op=requester.local: %w", err)
	}
	observability.RecordLocalFallback()
	return Outcome{Tier: TierLocal, Record: saved}, nil
}
