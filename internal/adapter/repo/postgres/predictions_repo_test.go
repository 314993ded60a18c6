package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

func samplePrediction() domain.Prediction {
	return domain.Prediction{
		GraduateAchievements: domain.GraduateAchievements{GPA: 3.9, Skills: []string{"Go"}, Projects: 5, Certifications: 2, Description: "毕业"},
		CareerAchievements:   domain.CareerAchievements{Position: "架构师", Salary: "30-50K", Experience: "10年", Companies: []string{"字节跳动"}, Description: "职业"},
		SkillRadarData:       domain.SkillRadar{Technical: 9, Communication: 7, Leadership: 6, Creativity: 8, ProblemSolving: 9},
		GrowthPath:           domain.GrowthPath{Year1: "一", Year2: "二", Year3: "三", Year4: "四"},
		ConfidenceScore:      0.85,
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestPredictionRepo_UpsertStatusKeepsStoredPayload(t *testing.T) {
	p := samplePrediction()
	now := time.Now().UTC()
	// The returned row is the stored one: the earlier result survives the status change.
	pool := &poolStub{row: scanInto("6f1c3c1e-0000-4000-8000-000000000001", "u1", "failed", "https://img/grad.png", nil,
		mustJSON(t, p.GraduateAchievements), mustJSON(t, p.CareerAchievements), mustJSON(t, p.SkillRadarData), mustJSON(t, p.GrowthPath),
		0.85, now, now)}
	repo := postgres.NewPredictionRepo(pool)

	out, err := repo.Upsert(context.Background(), domain.StatusRecord("u1", domain.StatusFailed))
	require.NoError(t, err)
	assert.Equal(t, "6f1c3c1e-0000-4000-8000-000000000001", out.ID)
	assert.Equal(t, domain.StatusFailed, out.Status)
	assert.Equal(t, now, out.UpdatedAt)
	assert.True(t, out.HasPayload())
	require.NotNil(t, out.GraduateImageURL)

	assert.Contains(t, pool.lastSQL, "ON CONFLICT (user_id)")
	for _, col := range []string{"graduate_achievements", "career_achievements", "skill_radar_data", "growth_path", "confidence_score"} {
		assert.Contains(t, pool.lastSQL, col+"=COALESCE(EXCLUDED."+col+", future_predictions."+col+")")
	}
	assert.Contains(t, pool.lastSQL, "ELSE future_predictions.graduate_image_url END")
	require.Len(t, pool.lastArgs, 10)
	assert.Equal(t, "u1", pool.lastArgs[0])
	assert.Equal(t, "failed", pool.lastArgs[1])
	for i := 4; i <= 7; i++ {
		assert.Nil(t, pool.lastArgs[i], "payload arg %d", i)
	}
	assert.Nil(t, pool.lastArgs[8])
	assert.Equal(t, false, pool.lastArgs[9])
}

func TestPredictionRepo_UpsertCompletedEncodesPayload(t *testing.T) {
	p := samplePrediction()
	now := time.Now().UTC()
	pool := &poolStub{row: scanInto("id-1", "u1", "completed", "https://img/grad.png", nil,
		mustJSON(t, p.GraduateAchievements), mustJSON(t, p.CareerAchievements), mustJSON(t, p.SkillRadarData), mustJSON(t, p.GrowthPath),
		0.85, now, now)}
	grad := "https://img/grad.png"

	out, err := postgres.NewPredictionRepo(pool).Upsert(context.Background(), domain.CompletedRecord("u1", p, &grad, nil))
	require.NoError(t, err)
	assert.True(t, out.HasPayload())
	assert.Nil(t, out.CareerImageURL)

	assert.Equal(t, "completed", pool.lastArgs[1])
	assert.Equal(t, &grad, pool.lastArgs[2])
	var radar domain.SkillRadar
	require.NoError(t, json.Unmarshal(pool.lastArgs[6].([]byte), &radar))
	assert.Equal(t, 9, radar.ProblemSolving)
	assert.JSONEq(t, `{"year1":"一","year2":"二","year3":"三","year4":"四"}`, string(pool.lastArgs[7].([]byte)))
	assert.Equal(t, true, pool.lastArgs[9])
}

func TestPredictionRepo_UpsertLocalKeepsImages(t *testing.T) {
	now := time.Now().UTC()
	pool := &poolStub{row: scanInto("id-1", "u1", "completed", nil, nil, nil, nil, nil, nil, nil, now, now)}

	_, err := postgres.NewPredictionRepo(pool).Upsert(context.Background(), domain.LocalRecord("u1", samplePrediction()))
	require.NoError(t, err)
	assert.Nil(t, pool.lastArgs[2])
	assert.Nil(t, pool.lastArgs[3])
	assert.NotNil(t, pool.lastArgs[4])
	assert.Equal(t, false, pool.lastArgs[9])
}

func TestPredictionRepo_UpsertErrors(t *testing.T) {
	_, err := postgres.NewPredictionRepo(&poolStub{}).Upsert(context.Background(), domain.PredictionRecord{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	pool := &poolStub{row: rowStub{scan: func(_ ...any) error { return errors.New("conn reset") }}}
	_, err = postgres.NewPredictionRepo(pool).Upsert(context.Background(), domain.StatusRecord("u1", domain.StatusFailed))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Contains(t, err.Error(), "op=prediction.upsert")
}

func TestPredictionRepo_Get(t *testing.T) {
	p := samplePrediction()
	created := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	pool := &poolStub{row: scanInto("id-1", "u1", "completed", "https://img/grad.png", nil,
		mustJSON(t, p.GraduateAchievements), mustJSON(t, p.CareerAchievements), mustJSON(t, p.SkillRadarData), mustJSON(t, p.GrowthPath),
		0.85, created, created)}

	rec, err := postgres.NewPredictionRepo(pool).Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, rec.Status)
	require.NotNil(t, rec.GraduateImageURL)
	assert.Equal(t, "https://img/grad.png", *rec.GraduateImageURL)
	assert.Nil(t, rec.CareerImageURL)
	require.True(t, rec.HasPayload())
	assert.Equal(t, p.CareerAchievements, *rec.CareerAchievements)
	assert.Equal(t, 0.85, *rec.ConfidenceScore)
	assert.Equal(t, []any{"u1"}, pool.lastArgs)
}

func TestPredictionRepo_GetStatusOnlyRow(t *testing.T) {
	pool := &poolStub{row: scanInto("id-1", "u1", "pending", nil, nil, nil, nil, nil, nil, nil, time.Now(), time.Now())}
	rec, err := postgres.NewPredictionRepo(pool).Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, rec.Status)
	assert.False(t, rec.HasPayload())
	assert.Nil(t, rec.GraduateAchievements)
}

func TestPredictionRepo_GetNotFound(t *testing.T) {
	pool := &poolStub{row: rowStub{scan: func(_ ...any) error { return pgx.ErrNoRows }}}
	_, err := postgres.NewPredictionRepo(pool).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrPersistence)
}

func TestPredictionRepo_GetCorruptPayload(t *testing.T) {
	pool := &poolStub{row: scanInto("id-1", "u1", "completed", nil, nil, []byte(`{bad`), nil, nil, nil, nil, time.Now(), time.Now())}
	_, err := postgres.NewPredictionRepo(pool).Get(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
