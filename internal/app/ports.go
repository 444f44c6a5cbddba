package app

import (
	"context"
	"time"

	"quiz-results-service/internal/domain"
)

// Directory resolves the entities this service consumes but does not own.
// Lookups return a nil pointer and a nil error when the entity is absent.
type Directory interface {
	Membership(ctx context.Context, userID int64) (*domain.Membership, error)
	Company(ctx context.Context, companyID int64) (*domain.Company, error)
	CompanyByName(ctx context.Context, name string) (*domain.Company, error)
	User(ctx context.Context, userID int64) (*domain.User, error)
	Option(ctx context.Context, optionID int64) (*domain.Option, error)
}

// QuizRepository loads quiz definitions (from cache/backing store).
// A missing quiz is reported as domain.ErrQuizNotFound.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
}

// ResultStore owns the durable, authoritative results.
type ResultStore interface {
	// Upsert keeps at most one result per (user, quiz). r.ID is used as the
	// id of a newly inserted row when non-zero. A uniqueness violation that
	// slips past the store's own check surfaces as domain.ErrDuplicateResult.
	Upsert(ctx context.Context, r domain.ScoredResult) (domain.ScoredResult, error)
	Get(ctx context.Context, resultID int64) (*domain.ScoredResult, error)
}

// ResultCache is the key-value snapshot store for computed results.
type ResultCache interface {
	Put(ctx context.Context, entry domain.CacheEntry) error
	// GetByPattern never returns a nil slice.
	GetByPattern(ctx context.Context, pattern string) ([]domain.CacheEntry, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) (string, bool, error)
}

// AnalyticsRepository aggregates durable results.
type AnalyticsRepository interface {
	UserAverage(ctx context.Context, userID int64) (float64, bool, error)
	CompanyUserAverages(ctx context.Context, companyID int64) ([]domain.UserAverage, error)
	UserQuizSummaries(ctx context.Context, userID, companyID int64) ([]domain.QuizSummary, error)
	CompanyResultsSince(ctx context.Context, companyID int64, since time.Time) ([]domain.ScoredResult, error)
	UserQuizAveragesSince(ctx context.Context, userID, companyID int64, since time.Time) ([]domain.QuizAverage, error)
	CompanyLastAttempts(ctx context.Context, companyID int64) ([]domain.LastAttempt, error)
}
