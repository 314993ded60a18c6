package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
	"github.com/fairyhunter13/ai-future-predictor/internal/photo"
)

// ProfileService stores wizard submissions and their photos.
type ProfileService struct {
	Profiles domain.ProfileRepository
	// Photos may be nil when no avatar bucket is configured.
	Photos        domain.PhotoStore
	MaxPhotoBytes int64
}

// NewProfileService constructs a ProfileService.
func NewProfileService(r domain.ProfileRepository, photos domain.PhotoStore, maxPhotoBytes int64) ProfileService {
	return ProfileService{Profiles: r, Photos: photos, MaxPhotoBytes: maxPhotoBytes}
}

// SaveProfile upserts the profile keyed by its user id.
func (s ProfileService) SaveProfile(ctx domain.Context, p domain.StudentProfile) (domain.StudentProfile, error) {
	p.UserID = strings.TrimSpace(p.UserID)
	p.Name = strings.TrimSpace(p.Name)
	if p.UserID == "" || p.Name == "" {
		return domain.StudentProfile{}, fmt.Errorf("%w: user id and name are required", domain.ErrInvalidArgument)
	}
	if p.LearningGoals != nil && p.LearningGoals.CareerPath != "" && !p.LearningGoals.CareerPath.Valid() {
		return domain.StudentProfile{}, fmt.Errorf("%w: unknown career path %q", domain.ErrInvalidArgument, p.LearningGoals.CareerPath)
	}
	saved, err := s.Profiles.Upsert(ctx, p)
	if err != nil {
		return domain.StudentProfile{}, fmt.Errorf("op=profile.save: %w", err)
	}
	return saved, nil
}

// GetProfile returns the stored profile for userID.
func (s ProfileService) GetProfile(ctx domain.Context, userID string) (domain.StudentProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.StudentProfile{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}
	return s.Profiles.Get(ctx, userID)
}

// UploadPhoto validates and stores a photo, then points the profile at it.
// The profile must already exist.
func (s ProfileService) UploadPhoto(ctx domain.Context, userID string, data []byte) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}
	if s.Photos == nil {
		return "", fmt.Errorf("%w: photo upload is not configured", domain.ErrInternal)
	}
	contentType, err := photo.Validate(data, s.MaxPhotoBytes)
	if err != nil {
		return "", err
	}
	url, err := s.Photos.UploadPhoto(ctx, userID, data, contentType)
	if err != nil {
		return "", fmt.Errorf("op=profile.upload_photo: %w", err)
	}
	if err := s.Profiles.SetPhotoURL(ctx, userID, url); err != nil {
		return "", fmt.Errorf("op=profile.upload_photo: %w", err)
	}
	observability.LoggerFromContext(ctx).Info("photo stored", slog.String("user_id", userID), slog.String("content_type", contentType))
	return url, nil
}
