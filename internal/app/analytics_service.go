package app

import (
	"context"
	"time"

	"quiz-results-service/internal/domain"
)

// DefaultRecentWindow is the look-back of CompanyResultsSince and
// UserQuizAveragesSince when none is given.
const DefaultRecentWindow = 7 * 24 * time.Hour

// AnalyticsService aggregates durable results. Company scoped reports go
// through the same authorization as cache queries.
type AnalyticsService struct {
	access companyAccess
	repo   AnalyticsRepository
	now    func() time.Time
}

func NewAnalyticsService(dir Directory, repo AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{access: companyAccess{dir: dir}, repo: repo, now: time.Now}
}

// UserAverage is the requester's mean score across all own results.
func (s *AnalyticsService) UserAverage(ctx context.Context, userID int64) (float64, error) {
	avg, ok, err := s.repo.UserAverage(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrNoResults
	}
	return avg, nil
}

func (s *AnalyticsService) CompanyUserAverages(ctx context.Context, requesterID, companyID int64) ([]domain.UserAverage, error) {
	if _, err := s.access.byID(ctx, requesterID, companyID); err != nil {
		return nil, err
	}
	out, err := s.repo.CompanyUserAverages(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNoResults
	}
	return out, nil
}

func (s *AnalyticsService) UserQuizSummaries(ctx context.Context, requesterID, userID, companyID int64) ([]domain.QuizSummary, error) {
	if _, err := s.access.byID(ctx, requesterID, companyID); err != nil {
		return nil, err
	}
	out, err := s.repo.UserQuizSummaries(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNoResults
	}
	return out, nil
}

// CompanyResultsSince lists results updated within window, oldest first.
func (s *AnalyticsService) CompanyResultsSince(ctx context.Context, requesterID, companyID int64, window time.Duration) ([]domain.ScoredResult, error) {
	if _, err := s.access.byID(ctx, requesterID, companyID); err != nil {
		return nil, err
	}
	if window <= 0 {
		window = DefaultRecentWindow
	}
	out, err := s.repo.CompanyResultsSince(ctx, companyID, s.now().Add(-window))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNoResults
	}
	return out, nil
}

// UserQuizAveragesSince averages one user's results per quiz over the
// results updated within window, ordered by quiz.
func (s *AnalyticsService) UserQuizAveragesSince(ctx context.Context, requesterID, userID, companyID int64, window time.Duration) ([]domain.QuizAverage, error) {
	if _, err := s.access.byID(ctx, requesterID, companyID); err != nil {
		return nil, err
	}
	if window <= 0 {
		window = DefaultRecentWindow
	}
	out, err := s.repo.UserQuizAveragesSince(ctx, userID, companyID, s.now().Add(-window))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNoResults
	}
	return out, nil
}

func (s *AnalyticsService) CompanyLastAttempts(ctx context.Context, requesterID, companyID int64) ([]domain.LastAttempt, error) {
	if _, err := s.access.byID(ctx, requesterID, companyID); err != nil {
		return nil, err
	}
	out, err := s.repo.CompanyLastAttempts(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNoResults
	}
	return out, nil
}
