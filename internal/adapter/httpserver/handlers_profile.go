package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

type profileRequest struct {
	Name             string                        `json:"name" validate:"required,max=100"`
	StudentID        string                        `json:"student_id" validate:"max=64"`
	Phone            string                        `json:"phone" validate:"max=32"`
	Gender           domain.Gender                 `json:"gender" validate:"omitempty,oneof=male female other"`
	IdealCareer      string                        `json:"ideal_career" validate:"max=100"`
	CareerCustom     string                        `json:"career_custom" validate:"max=100"`
	PersonalityType  string                        `json:"personality_type" validate:"max=32"`
	LearningGoals    *domain.LearningGoals         `json:"learning_goals"`
	Interests        []string                      `json:"interests" validate:"max=20,dive,max=64"`
	SkillsAssessment map[string]domain.SkillAnswer `json:"skills_assessment" validate:"max=10"`
}

func (p profileRequest) toDomain(userID string) domain.StudentProfile {
	interests := make([]string, 0, len(p.Interests))
	for _, i := range p.Interests {
		if i = SanitizeString(i); i != "" {
			interests = append(interests, i)
		}
	}
	return domain.StudentProfile{
		UserID:           userID,
		Name:             SanitizeString(p.Name),
		StudentID:        SanitizeString(p.StudentID),
		Phone:            SanitizeString(p.Phone),
		Gender:           p.Gender,
		IdealCareer:      SanitizeString(p.IdealCareer),
		CareerCustom:     SanitizeString(p.CareerCustom),
		PersonalityType:  SanitizeString(p.PersonalityType),
		LearningGoals:    p.LearningGoals,
		Interests:        interests,
		SkillsAssessment: p.SkillsAssessment,
	}
}

// SaveProfileHandler upserts the wizard submission for a user.
func (s *Server) SaveProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		if !ValidUserID(userID) {
			writeError(w, r, fmt.Errorf("%w: invalid user id", domain.ErrInvalidArgument), map[string]string{"userId": "format"})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), validationDetails(err))
			return
		}
		saved, err := s.Profiles.SaveProfile(r.Context(), req.toDomain(userID))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

// GetProfileHandler returns the stored profile for a user.
func (s *Server) GetProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		if !ValidUserID(userID) {
			writeError(w, r, fmt.Errorf("%w: invalid user id", domain.ErrInvalidArgument), map[string]string{"userId": "format"})
			return
		}
		p, err := s.Profiles.GetProfile(r.Context(), userID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// UploadPhotoHandler accepts a multipart "photo" file and stores it for the user.
func (s *Server) UploadPhotoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		if !ValidUserID(userID) {
			writeError(w, r, fmt.Errorf("%w: invalid user id", domain.ErrInvalidArgument), map[string]string{"userId": "format"})
			return
		}
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxPhotoBytes()
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+64<<10)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code: "INVALID_ARGUMENT", Message: "payload too large", Details: map[string]any{"max_mb": s.Cfg.MaxPhotoMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		f, _, err := r.FormFile("photo")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: photo file required", domain.ErrInvalidArgument), map[string]string{"field": "photo"})
			return
		}
		defer func() { _ = f.Close() }()
		data, err := io.ReadAll(f)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: photo read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		url, err := s.Profiles.UploadPhoto(r.Context(), userID, data)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"photo_url": url})
	}
}
