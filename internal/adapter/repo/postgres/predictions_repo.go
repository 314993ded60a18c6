package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

// PredictionRepo persists one future_predictions row per user.
type PredictionRepo struct{ Pool PgxPool }

// NewPredictionRepo constructs a PredictionRepo with the given pool.
func NewPredictionRepo(p PgxPool) *PredictionRepo { return &PredictionRepo{Pool: p} }

var _ domain.PredictionRepository = (*PredictionRepo)(nil)

const predictionColumns = `id::text, user_id, processing_status, graduate_image_url, career_image_url,
	graduate_achievements, career_achievements, skill_radar_data, growth_path, confidence_score, created_at, updated_at`

// Upsert inserts or updates the row keyed by user_id. Only fields present in
// rec are written on conflict: nil payload fields keep the stored value, and
// the image URLs are replaced only when rec.WriteImages is set. The stored row
// is returned.
func (r *PredictionRepo) Upsert(ctx domain.Context, rec domain.PredictionRecord) (domain.PredictionRecord, error) {
	tracer := otel.Tracer("repo.predictions")
	ctx, span := tracer.Start(ctx, "predictions.Upsert")
	defer span.End()

	if rec.UserID == "" {
		return domain.PredictionRecord{}, fmt.Errorf("op=prediction.upsert: %w: empty user id", domain.ErrInvalidArgument)
	}
	grad, err := jsonOrNil(rec.GraduateAchievements)
	if err != nil {
		return domain.PredictionRecord{}, fmt.Errorf("op=prediction.upsert: %w", err)
	}
	career, err := jsonOrNil(rec.CareerAchievements)
	if err != nil {
		return domain.PredictionRecord{}, fmt.Errorf("op=prediction.upsert: %w", err)
	}
	radar, err := jsonOrNil(rec.SkillRadarData)
	if err != nil {
		return domain.PredictionRecord{}, fmt.Errorf("op=prediction.upsert: %w", err)
	}
	growth, err := jsonOrNil(rec.GrowthPath)
	if err != nil {
		return domain.PredictionRecord{}, fmt.Errorf("op=prediction.upsert: %w", err)
	}

	q := `INSERT INTO future_predictions (user_id, processing_status, graduate_image_url, career_image_url,
		graduate_achievements, career_achievements, skill_radar_data, growth_path, confidence_score, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now())
	ON CONFLICT (user_id)
	DO UPDATE SET processing_status=EXCLUDED.processing_status,
		graduate_image_url=CASE WHEN $10::boolean THEN EXCLUDED.graduate_image_url ELSE future_predictions.graduate_image_url END,
		career_image_url=CASE WHEN $10::boolean THEN EXCLUDED.career_image_url ELSE future_predictions.career_image_url END,
		graduate_achievements=COALESCE(EXCLUDED.graduate_achievements, future_predictions.graduate_achievements),
		career_achievements=COALESCE(EXCLUDED.career_achievements, future_predictions.career_achievements),
		skill_radar_data=COALESCE(EXCLUDED.skill_radar_data, future_predictions.skill_radar_data),
		growth_path=COALESCE(EXCLUDED.growth_path, future_predictions.growth_path),
		confidence_score=COALESCE(EXCLUDED.confidence_score, future_predictions.confidence_score),
		updated_at=now()
	RETURNING ` + predictionColumns
	row := r.Pool.QueryRow(ctx, q, rec.UserID, string(rec.Status), rec.GraduateImageURL, rec.CareerImageURL,
		grad, career, radar, growth, rec.ConfidenceScore, rec.WriteImages)
	out, err := scanPrediction(row)
	if err != nil {
		return domain.PredictionRecord{}, fmt.Errorf("op=prediction.upsert: %w: %w", domain.ErrPersistence, err)
	}
	return out, nil
}

// Get loads the row for userID.
func (r *PredictionRepo) Get(ctx domain.Context, userID string) (domain.PredictionRecord, error) {
	tracer := otel.Tracer("repo.predictions")
	ctx, span := tracer.Start(ctx, "predictions.Get")
	defer span.End()

	q := `SELECT ` + predictionColumns + ` FROM future_predictions WHERE user_id=$1`
	rec, err := scanPrediction(r.Pool.QueryRow(ctx, q, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PredictionRecord{}, fmt.Errorf("op=prediction.get: %w", domain.ErrNotFound)
		}
		return domain.PredictionRecord{}, fmt.Errorf("op=prediction.get: %w: %w", domain.ErrPersistence, err)
	}
	return rec, nil
}

// scanPrediction reads one row laid out as predictionColumns.
func scanPrediction(row pgx.Row) (domain.PredictionRecord, error) {
	var (
		rec                         domain.PredictionRecord
		status                      string
		grad, career, radar, growth []byte
	)
	err := row.Scan(&rec.ID, &rec.UserID, &status, &rec.GraduateImageURL, &rec.CareerImageURL,
		&grad, &career, &radar, &growth, &rec.ConfidenceScore, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return domain.PredictionRecord{}, err
	}
	rec.Status = domain.ProcessingStatus(status)
	if rec.GraduateAchievements, err = decodeOrNil[domain.GraduateAchievements](grad); err != nil {
		return domain.PredictionRecord{}, err
	}
	if rec.CareerAchievements, err = decodeOrNil[domain.CareerAchievements](career); err != nil {
		return domain.PredictionRecord{}, err
	}
	if rec.SkillRadarData, err = decodeOrNil[domain.SkillRadar](radar); err != nil {
		return domain.PredictionRecord{}, err
	}
	if rec.GrowthPath, err = decodeOrNil[domain.GrowthPath](growth); err != nil {
		return domain.PredictionRecord{}, err
	}
	return rec, nil
}

// jsonOrNil marshals v, returning nil for a nil pointer so the column is NULL.
func jsonOrNil[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func decodeOrNil[T any](b []byte) (*T, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
