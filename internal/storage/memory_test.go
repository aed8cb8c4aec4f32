package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/coursedeck/internal/domain/models"
)

func TestMemoryStorage(t *testing.T) {
	st := NewMemoryStorage()
	ctx := context.Background()
	now := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)

	first := &models.QuizResult{UserID: 7, QuizID: 10, Score: 67, TotalQuestions: 3, CompletedAt: now}
	require.NoError(t, st.SaveResult(ctx, first))
	assert.Equal(t, 1, first.ID)

	other := &models.QuizResult{UserID: 8, QuizID: 10, Score: 100, TotalQuestions: 3, CompletedAt: now}
	require.NoError(t, st.SaveResult(ctx, other))
	assert.Equal(t, 2, other.ID)

	results, err := st.ListResults(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []models.QuizResult{*first}, results)

	results, err = st.ListResults(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryStorage_Invalid(t *testing.T) {
	st := NewMemoryStorage()
	now := time.Now()

	tests := []struct {
		name   string
		result *models.QuizResult
	}{
		{"nil", nil},
		{"no quiz", &models.QuizResult{Score: 50, TotalQuestions: 2, CompletedAt: now}},
		{"no questions", &models.QuizResult{QuizID: 10, Score: 0, CompletedAt: now}},
		{"score above 100", &models.QuizResult{QuizID: 10, Score: 101, TotalQuestions: 1, CompletedAt: now}},
		{"negative score", &models.QuizResult{QuizID: 10, Score: -1, TotalQuestions: 1, CompletedAt: now}},
		{"no time", &models.QuizResult{QuizID: 10, Score: 50, TotalQuestions: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, st.SaveResult(context.Background(), tt.result), ErrInvalidResult)
		})
	}
}

func TestMemoryStorage_CanceledContext(t *testing.T) {
	st := NewMemoryStorage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := st.SaveResult(ctx, &models.QuizResult{QuizID: 10, Score: 1, TotalQuestions: 1, CompletedAt: time.Now()})
	assert.ErrorIs(t, err, context.Canceled)
}
