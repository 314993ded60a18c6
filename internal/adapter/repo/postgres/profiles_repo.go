package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

// ProfileRepo persists wizard submissions in student_profiles.
type ProfileRepo struct{ Pool PgxPool }

// NewProfileRepo constructs a ProfileRepo with the given pool.
func NewProfileRepo(p PgxPool) *ProfileRepo { return &ProfileRepo{Pool: p} }

var _ domain.ProfileRepository = (*ProfileRepo)(nil)

// Upsert inserts or updates a profile by user_id. A nil PhotoURL keeps the stored one.
func (r *ProfileRepo) Upsert(ctx domain.Context, p domain.StudentProfile) (domain.StudentProfile, error) {
	tracer := otel.Tracer("repo.profiles")
	ctx, span := tracer.Start(ctx, "profiles.Upsert")
	defer span.End()

	if p.UserID == "" {
		return domain.StudentProfile{}, fmt.Errorf("op=profile.upsert: %w: empty user id", domain.ErrInvalidArgument)
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	goals, err := jsonOrNil(p.LearningGoals)
	if err != nil {
		return domain.StudentProfile{}, fmt.Errorf("op=profile.upsert: %w", err)
	}
	interests, err := json.Marshal(nonNilStrings(p.Interests))
	if err != nil {
		return domain.StudentProfile{}, fmt.Errorf("op=profile.upsert: %w", err)
	}
	skills := p.SkillsAssessment
	if skills == nil {
		skills = map[string]domain.SkillAnswer{}
	}
	assessment, err := json.Marshal(skills)
	if err != nil {
		return domain.StudentProfile{}, fmt.Errorf("op=profile.upsert: %w", err)
	}

	q := `INSERT INTO student_profiles (id, user_id, student_id, name, phone, gender, ideal_career, career_custom,
		personality_type, learning_goals, interests, skills_assessment, photo_url, created_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,now(),now())
	ON CONFLICT (user_id)
	DO UPDATE SET student_id=EXCLUDED.student_id, name=EXCLUDED.name, phone=EXCLUDED.phone, gender=EXCLUDED.gender,
		ideal_career=EXCLUDED.ideal_career, career_custom=EXCLUDED.career_custom, personality_type=EXCLUDED.personality_type,
		learning_goals=EXCLUDED.learning_goals, interests=EXCLUDED.interests, skills_assessment=EXCLUDED.skills_assessment,
		photo_url=COALESCE(EXCLUDED.photo_url, student_profiles.photo_url), updated_at=now()
	RETURNING id::text, photo_url, created_at, updated_at`
	row := r.Pool.QueryRow(ctx, q, p.ID, p.UserID, p.StudentID, p.Name, p.Phone, string(p.Gender), p.IdealCareer,
		p.CareerCustom, p.PersonalityType, goals, interests, assessment, p.PhotoURL)
	if err := row.Scan(&p.ID, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.StudentProfile{}, fmt.Errorf("op=profile.upsert: %w: %w", domain.ErrPersistence, err)
	}
	return p, nil
}

// Get loads a profile by user_id.
func (r *ProfileRepo) Get(ctx domain.Context, userID string) (domain.StudentProfile, error) {
	tracer := otel.Tracer("repo.profiles")
	ctx, span := tracer.Start(ctx, "profiles.Get")
	defer span.End()

	q := `SELECT id::text, user_id, COALESCE(student_id,''), name, COALESCE(phone,''), COALESCE(gender,''),
		COALESCE(ideal_career,''), COALESCE(career_custom,''), COALESCE(personality_type,''),
		learning_goals, interests, skills_assessment, photo_url, created_at, updated_at
	FROM student_profiles WHERE user_id=$1`
	var (
		p                            domain.StudentProfile
		gender                       string
		goals, interests, assessment []byte
	)
	err := r.Pool.QueryRow(ctx, q, userID).Scan(&p.ID, &p.UserID, &p.StudentID, &p.Name, &p.Phone, &gender,
		&p.IdealCareer, &p.CareerCustom, &p.PersonalityType, &goals, &interests, &assessment, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StudentProfile{}, fmt.Errorf("op=profile.get: %w", domain.ErrNotFound)
		}
		return domain.StudentProfile{}, fmt.Errorf("op=profile.get: %w: %w", domain.ErrPersistence, err)
	}
	p.Gender = domain.Gender(gender)
	if p.LearningGoals, err = decodeOrNil[domain.LearningGoals](goals); err != nil {
		return domain.StudentProfile{}, fmt.Errorf("op=profile.get: %w: %w", domain.ErrPersistence, err)
	}
	if len(interests) > 0 {
		if err := json.Unmarshal(interests, &p.Interests); err != nil {
			return domain.StudentProfile{}, fmt.Errorf("op=profile.get: %w: %w", domain.ErrPersistence, err)
		}
	}
	if len(assessment) > 0 {
		if err := json.Unmarshal(assessment, &p.SkillsAssessment); err != nil {
			return domain.StudentProfile{}, fmt.Errorf("op=profile.get: %w: %w", domain.ErrPersistence, err)
		}
	}
	return p, nil
}

// SetPhotoURL records the uploaded photo on an existing profile.
func (r *ProfileRepo) SetPhotoURL(ctx domain.Context, userID, url string) error {
	tracer := otel.Tracer("repo.profiles")
	ctx, span := tracer.Start(ctx, "profiles.SetPhotoURL")
	defer span.End()

	tag, err := r.Pool.Exec(ctx, `UPDATE student_profiles SET photo_url=$2, updated_at=now() WHERE user_id=$1`, userID, url)
	if err != nil {
		return fmt.Errorf("op=profile.set_photo: %w: %w", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=profile.set_photo: %w", domain.ErrNotFound)
	}
	return nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
