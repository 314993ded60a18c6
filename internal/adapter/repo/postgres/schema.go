package postgres

import (
	"context"
	"fmt"
)

// schemaStatements create the two tables if they are missing. Payload columns are
// nullable so a status-only upsert can clear them.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS future_predictions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL UNIQUE,
		processing_status TEXT NOT NULL CHECK (processing_status IN ('pending','processing','completed','failed')),
		graduate_image_url TEXT,
		career_image_url TEXT,
		graduate_achievements JSONB,
		career_achievements JSONB,
		skill_radar_data JSONB,
		growth_path JSONB,
		confidence_score DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS student_profiles (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		student_id TEXT,
		name TEXT NOT NULL,
		phone TEXT,
		gender TEXT,
		ideal_career TEXT,
		career_custom TEXT,
		personality_type TEXT,
		learning_goals JSONB,
		interests JSONB,
		skills_assessment JSONB,
		photo_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema applies the DDL. It is idempotent.
func EnsureSchema(ctx context.Context, pool PgxPool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("op=postgres.EnsureSchema: %w", err)
		}
	}
	return nil
}
