// Package gcs stores student photos in a Google Cloud Storage bucket.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"google.golang.org/api/option"

	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-future-predictor/internal/config"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
	"github.com/fairyhunter13/ai-future-predictor/internal/photo"
)

// objectUploader writes one object. The GCS client implementation is below; tests swap it.
type objectUploader interface {
	Upload(ctx context.Context, bucket, key, contentType string, r io.Reader) error
	Close() error
}

type gcsUploader struct{ client *storage.Client }

func (u gcsUploader) Upload(ctx context.Context, bucket, key, contentType string, r io.Reader) error {
	w := u.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (u gcsUploader) Close() error { return u.client.Close() }

// AvatarStore implements domain.PhotoStore.
type AvatarStore struct {
	uploader      objectUploader
	bucket        string
	publicBaseURL string
	maxBytes      int64
	now           func() time.Time
}

var _ domain.PhotoStore = (*AvatarStore)(nil)

// NewAvatarStore creates a storage client for cfg.AvatarBucket. When
// STORAGE_EMULATOR_HOST is set the client skips authentication.
func NewAvatarStore(ctx context.Context, cfg config.Config) (*AvatarStore, error) {
	if !cfg.PhotoUploadEnabled() {
		return nil, fmt.Errorf("op=gcs.NewAvatarStore: %w: AVATAR_GCS_BUCKET_NAME not set", domain.ErrInvalidArgument)
	}
	var opts []option.ClientOption
	if os.Getenv("STORAGE_EMULATOR_HOST") != "" {
		opts = append(opts, option.WithoutAuthentication())
	} else {
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("op=gcs.NewAvatarStore: %w", err)
	}
	slog.Info("avatar storage initialized", slog.String("bucket", cfg.AvatarBucket), slog.String("public_base_url", cfg.AvatarPublicBaseURL))
	return newAvatarStore(gcsUploader{client: client}, cfg), nil
}

func newAvatarStore(u objectUploader, cfg config.Config) *AvatarStore {
	return &AvatarStore{
		uploader:      u,
		bucket:        cfg.AvatarBucket,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(cfg.AvatarPublicBaseURL), "/"),
		maxBytes:      cfg.MaxPhotoBytes(),
		now:           time.Now,
	}
}

// ObjectKey is the bucket key for a photo uploaded at t.
func ObjectKey(userID string, t time.Time) string {
	return fmt.Sprintf("%s/photo_%d.jpg", userID, t.UnixMilli())
}

// PublicURL returns the public URL of key.
func (s *AvatarStore) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	base := s.publicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return fmt.Sprintf("%s/%s/%s", base, s.bucket, key)
}

// UploadPhoto validates data, stores it, and returns its public URL.
func (s *AvatarStore) UploadPhoto(ctx domain.Context, userID string, data []byte, contentType string) (string, error) {
	tracer := otel.Tracer("storage.gcs")
	ctx, span := tracer.Start(ctx, "avatars.UploadPhoto")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("op=gcs.upload: %w: empty user id", domain.ErrInvalidArgument)
	}
	sniffed, err := photo.Validate(data, s.maxBytes)
	if err != nil {
		return "", fmt.Errorf("op=gcs.upload: %w", err)
	}
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = sniffed
	}
	key := ObjectKey(userID, s.now())

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if err := s.uploader.Upload(ctx, s.bucket, key, contentType, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("op=gcs.upload: %w: %w", domain.ErrPersistence, err)
	}
	observability.LoggerFromContext(ctx).Info("photo uploaded",
		slog.String("user_id", userID), slog.String("key", key), slog.Int("bytes", len(data)))
	return s.PublicURL(key), nil
}

// Close releases the storage client.
func (s *AvatarStore) Close() error {
	if s.uploader == nil {
		return nil
	}
	return s.uploader.Close()
}
