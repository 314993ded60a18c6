//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fairyhunter13/ai-future-predictor/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "app"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(90 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })
	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, "postgres://postgres:postgres@"+host+":"+port.Port()+"/app?sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.Eventually(t, func() bool { return pool.Ping(ctx) == nil }, 30*time.Second, time.Second)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))
	return pool
}

func TestIntegration_PredictionLifecycle(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	repo := postgres.NewPredictionRepo(pool)

	first, err := repo.Upsert(ctx, domain.StatusRecord("u1", domain.StatusProcessing))
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	img := "https://img/grad.png"
	_, err = repo.Upsert(ctx, domain.CompletedRecord("u1", samplePrediction(), &img, nil))
	require.NoError(t, err)

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.True(t, got.HasPayload())
	assert.Equal(t, samplePrediction().SkillRadarData, *got.SkillRadarData)

	// a failed rerun only changes the status
	_, err = repo.Upsert(ctx, domain.StatusRecord("u1", domain.StatusProcessing))
	require.NoError(t, err)
	failed, err := repo.Upsert(ctx, domain.StatusRecord("u1", domain.StatusFailed))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, failed.Status)
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	require.True(t, got.HasPayload())
	require.NotNil(t, got.GraduateImageURL)
	assert.Equal(t, img, *got.GraduateImageURL)

	// the local tier replaces the payload and leaves the images
	local := samplePrediction()
	local.ConfidenceScore = 0.6
	_, err = repo.Upsert(ctx, domain.LocalRecord("u1", local))
	require.NoError(t, err)
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.InDelta(t, 0.6, *got.ConfidenceScore, 1e-9)
	require.NotNil(t, got.GraduateImageURL)

	// a service result without images clears them
	_, err = repo.Upsert(ctx, domain.CompletedRecord("u1", samplePrediction(), nil, nil))
	require.NoError(t, err)
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got.GraduateImageURL)

	_, err = repo.Get(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIntegration_ConcurrentUpsertsKeepOneRow(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	repo := postgres.NewPredictionRepo(pool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Upsert(ctx, domain.CompletedRecord("u2", samplePrediction(), nil, nil))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM future_predictions WHERE user_id='u2'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestIntegration_ProfilePhotoPreserved(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	repo := postgres.NewProfileRepo(pool)

	_, err := repo.Upsert(ctx, domain.StudentProfile{UserID: "u3", Name: "小李", Interests: []string{"人工智能"}})
	require.NoError(t, err)
	require.NoError(t, repo.SetPhotoURL(ctx, "u3", "https://cdn/u3.jpg"))

	_, err = repo.Upsert(ctx, domain.StudentProfile{UserID: "u3", Name: "小李2"})
	require.NoError(t, err)
	p, err := repo.Get(ctx, "u3")
	require.NoError(t, err)
	assert.Equal(t, "小李2", p.Name)
	require.NotNil(t, p.PhotoURL)
	assert.Equal(t, "https://cdn/u3.jpg", *p.PhotoURL)

	assert.ErrorIs(t, repo.SetPhotoURL(ctx, "ghost", "x"), domain.ErrNotFound)
}
