package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-future-predictor/internal/domain"
	"github.com/fairyhunter13/ai-future-predictor/internal/domain/mocks"
	"github.com/fairyhunter13/ai-future-predictor/internal/fallback"
	"github.com/fairyhunter13/ai-future-predictor/internal/usecase"
)

func completedRecord(userID string) domain.PredictionRecord {
	return domain.CompletedRecord(userID, fallback.Build(fallback.Service, *testProfile(), zeroRand{}), nil, nil)
}

func TestRequester_PrimarySucceeds(t *testing.T) {
	api := &mocks.MockPredictionAPI{}
	api.On("Predict", mock.Anything, mock.MatchedBy(func(r domain.PredictRequest) bool {
		return !r.UseFallbackPrompt && strings.HasPrefix(r.PhotoBase64, "data:image/png;base64,") && r.Profile.Name == "小明"
	})).Return(completedRecord("u1"), nil).Once()
	store := &mocks.MockPredictionRepository{}

	out, err := usecase.NewRequester(api, store).Request(context.Background(), "u1", *testProfile(), []byte{0x89, 'P', 'N', 'G'}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, usecase.TierPrimary, out.Tier)
	assert.Equal(t, domain.StatusCompleted, out.Record.Status)
	api.AssertExpectations(t)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestRequester_FallbackCallSendsReducedProfile(t *testing.T) {
	api := &mocks.MockPredictionAPI{}
	api.On("Predict", mock.Anything, mock.MatchedBy(func(r domain.PredictRequest) bool { return !r.UseFallbackPrompt })).
		Return(domain.PredictionRecord{}, errors.New("500")).Once()
	api.On("Predict", mock.Anything, mock.MatchedBy(func(r domain.PredictRequest) bool {
		p := r.Profile
		return r.UseFallbackPrompt && r.PhotoBase64 == "" &&
			p.IdealCareer == "数据科学家" && len(p.TechInterests) == 2 && p.PersonalityType == "" &&
			p.ProgrammingSkills == 8 && p.LogicalThinking == 7
	})).Return(completedRecord("u1"), nil).Once()

	p := *testProfile()
	p.TechInterests = []string{"人工智能", "数据分析", "云计算"}
	out, err := usecase.NewRequester(api, &mocks.MockPredictionRepository{}).Request(context.Background(), "u1", p, []byte("photo"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, usecase.TierFallback, out.Tier)
	api.AssertExpectations(t)
}

func TestRequester_LocalFallbackWritesStore(t *testing.T) {
	api := &mocks.MockPredictionAPI{}
	api.On("Predict", mock.Anything, mock.Anything).Return(domain.PredictionRecord{}, errors.New("connection refused")).Twice()
	repo := newMemRepo()

	grad := "https://img/earlier.png"
	_, err := repo.Upsert(context.Background(), domain.CompletedRecord("u1", fallback.Build(fallback.Service, *testProfile(), zeroRand{}), &grad, nil))
	require.NoError(t, err)

	r := usecase.NewRequester(api, repo)
	r.Rand = zeroRand{}
	out, err := r.Request(context.Background(), "u1", *testProfile(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, usecase.TierLocal, out.Tier)
	assert.Equal(t, domain.StatusCompleted, out.Record.Status)
	require.True(t, out.Record.HasPayload())
	assert.Equal(t, fallback.LocalConfidence, *out.Record.ConfidenceScore)
	assert.Equal(t, fallback.LocalGPA(8), out.Record.GraduateAchievements.GPA)

	stored, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Equal(t, fallback.LocalConfidence, *stored.ConfidenceScore)
	require.NotNil(t, stored.GraduateImageURL, "local tier leaves image urls alone")
	assert.Equal(t, grad, *stored.GraduateImageURL)
	api.AssertNumberOfCalls(t, "Predict", 2)
}

func TestRequester_LocalWriteFailurePropagates(t *testing.T) {
	api := &mocks.MockPredictionAPI{}
	api.On("Predict", mock.Anything, mock.Anything).Return(domain.PredictionRecord{}, errors.New("down"))
	repo := newMemRepo()
	repo.failOn = domain.StatusCompleted

	_, err := usecase.NewRequester(api, repo).Request(context.Background(), "u1", *testProfile(), nil, "")
	require.ErrorIs(t, err, domain.ErrPersistence)
}

func TestRequester_RequiresUserID(t *testing.T) {
	api := &mocks.MockPredictionAPI{}
	_, err := usecase.NewRequester(api, newMemRepo()).Request(context.Background(), " ", *testProfile(), nil, "")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	api.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}
