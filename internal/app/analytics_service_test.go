package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-results-service/internal/domain"
	"quiz-results-service/internal/infra/memory"
)

func TestAnalyticsService(t *testing.T) {
	e := newEnv()
	seedResults(t, e)
	svc := NewAnalyticsService(e.dir, memory.NewAnalytics(e.store, e.dir))
	svc.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	avg, err := svc.UserAverage(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1.0, avg)

	_, err = svc.UserAverage(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNoResults)

	avgs, err := svc.CompanyUserAverages(ctx, 8, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.UserAverage{{UserID: 7, Average: 1}, {UserID: 8, Average: 0}}, avgs)

	summaries, err := svc.UserQuizSummaries(ctx, 1, 7, 2)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Arithmetic", summaries[0].QuizName)

	recent, err := svc.CompanyResultsSince(ctx, 9, 3, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	last, err := svc.CompanyLastAttempts(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "admin@acme.test", last[1].Email)

	weekly, err := svc.UserQuizAveragesSince(ctx, 8, 7, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.QuizAverage{{UserID: 7, QuizID: 5, QuizName: "Arithmetic", Average: 1}}, weekly)
}

func TestUserQuizAveragesSinceEmpty(t *testing.T) {
	e := newEnv()
	seedResults(t, e)
	svc := NewAnalyticsService(e.dir, memory.NewAnalytics(e.store, e.dir))
	ctx := context.Background()

	// no results for the owner themselves
	svc.now = func() time.Time { return fixedNow }
	_, err := svc.UserQuizAveragesSince(ctx, 1, 1, 2, 0)
	assert.ErrorIs(t, err, domain.ErrNoResults)

	// everything falls outside the default week
	svc.now = func() time.Time { return fixedNow.Add(DefaultRecentWindow + time.Second) }
	_, err = svc.UserQuizAveragesSince(ctx, 1, 7, 2, 0)
	assert.ErrorIs(t, err, domain.ErrNoResults)

	// a wider window brings them back
	out, err := svc.UserQuizAveragesSince(ctx, 1, 7, 2, 2*DefaultRecentWindow)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestAnalyticsServiceGuards(t *testing.T) {
	e := newEnv()
	seedResults(t, e)
	svc := NewAnalyticsService(e.dir, memory.NewAnalytics(e.store, e.dir))
	ctx := context.Background()

	_, err := svc.CompanyUserAverages(ctx, 7, 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	_, err = svc.UserQuizSummaries(ctx, 12, 7, 2)
	assert.ErrorIs(t, err, domain.ErrWrongCompany)

	_, err = svc.CompanyResultsSince(ctx, 4, 2, DefaultRecentWindow)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	_, err = svc.CompanyLastAttempts(ctx, 1, 42)
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)

	_, err = svc.UserQuizAveragesSince(ctx, 7, 8, 2, 0)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)

	_, err = svc.UserQuizAveragesSince(ctx, 12, 7, 2, 0)
	assert.ErrorIs(t, err, domain.ErrWrongCompany)

	_, err = svc.UserQuizAveragesSince(ctx, 9, 7, 2, 0)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}
