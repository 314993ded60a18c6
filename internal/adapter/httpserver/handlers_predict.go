package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
	"github.com/fairyhunter13/ai-future-predictor/internal/photo"
	"github.com/fairyhunter13/ai-future-predictor/internal/service/ratelimiter"
)

const (
	msgMissingParams = "Missing required parameters"
	msgPredictFailed = "Failed to generate prediction"
)

type predictResponse struct {
	Success bool                    `json:"success"`
	Data    domain.PredictionRecord `json:"data"`
}

// PredictHandler runs a prediction synchronously and returns the stored record.
// Errors use the flat {"error": "..."} body.
func (s *Server) PredictHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.Cfg.MaxPhotoBytes()*2+1<<20)
		var req domain.PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeFlatError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			writeFlatError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		req.UserID = strings.TrimSpace(req.UserID)
		if err := getValidator().Struct(req); err != nil {
			msg := "Invalid parameters"
			if missingRequired(err) {
				msg = msgMissingParams
			}
			LoggerFrom(r).Warn("predict rejected", slog.Any("fields", validationDetails(err)))
			writeFlatError(w, http.StatusBadRequest, msg)
			return
		}
		// Type and size rules belong to the upload surface; here the photo only has to decode.
		if req.PhotoBase64 != "" {
			if _, _, err := photo.DecodeDataURL(req.PhotoBase64); err != nil {
				writeFlatError(w, http.StatusBadRequest, "Invalid photo")
				return
			}
		}

		if s.Limiter != nil {
			allowed, retryAfter, err := s.Limiter.Allow(r.Context(), ratelimiter.PredictKey(req.UserID), 1)
			if err != nil {
				LoggerFrom(r).Warn("rate limiter unavailable", slog.Any("error", err))
			}
			if !allowed {
				observability.RecordRateLimited(ratelimiter.ScopePredict)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				writeFlatError(w, http.StatusTooManyRequests, "Too many prediction requests")
				return
			}
		}

		rec, err := s.Predictor.Predict(r.Context(), req)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				writeFlatError(w, http.StatusBadRequest, msgMissingParams)
				return
			}
			LoggerFrom(r).Error("prediction failed", slog.String("user_id", req.UserID), slog.Any("error", err))
			writeFlatError(w, http.StatusInternalServerError, msgPredictFailed)
			return
		}
		writeJSON(w, http.StatusOK, predictResponse{Success: true, Data: rec})
	}
}

// PredictionHandler returns the stored prediction for a user.
func (s *Server) PredictionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		if !ValidUserID(userID) {
			writeError(w, r, fmt.Errorf("%w: invalid user id", domain.ErrInvalidArgument), map[string]string{"userId": "format"})
			return
		}
		rec, err := s.Predictions.Get(r.Context(), userID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
