package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"quiz-results-service/internal/domain"
	"quiz-results-service/internal/infra/memory"
)

var fixedNow = time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Company 2 "acme" is owned by user 1; user 7 is a member, user 8 an admin.
// Company 3 "globex" is owned by user 9; user 12 is a globex admin.
func testCatalog() domain.Catalog {
	return domain.Catalog{
		Users: []domain.User{
			{ID: 1, Email: "owner@acme.test"},
			{ID: 7, Email: "member@acme.test"},
			{ID: 8, Email: "admin@acme.test"},
			{ID: 9, Email: "owner@globex.test"},
			{ID: 12, Email: "admin@globex.test"},
		},
		Companies: []domain.Company{
			{ID: 2, Name: "acme", Description: "Acme Corp", OwnerID: 1},
			{ID: 3, Name: "globex", Description: "Globex", OwnerID: 9},
		},
		Memberships: []domain.Membership{
			{UserID: 7, CompanyID: 2, Role: domain.RoleMember},
			{UserID: 8, CompanyID: 2, Role: domain.RoleAdmin},
			{UserID: 12, CompanyID: 3, Role: domain.RoleAdmin},
		},
		Quizzes: []domain.Quiz{
			{
				ID:          5,
				CompanyID:   2,
				Name:        "Arithmetic",
				Description: "Warm up",
				Questions: []domain.Question{
					{ID: 1, Text: "2 + 2?", Options: []domain.Option{{ID: 10, Text: "4", IsCorrect: true}, {ID: 11, Text: "3"}}},
					{ID: 2, Text: "3 * 3?", Options: []domain.Option{{ID: 30, Text: "9", IsCorrect: true}, {ID: 31, Text: "6"}}},
				},
			},
			{
				ID:        6,
				CompanyID: 3,
				Name:      "Geography",
				Questions: []domain.Question{
					{ID: 3, Text: "Capital of France?", Options: []domain.Option{{ID: 90, Text: "Paris", IsCorrect: true}, {ID: 91, Text: "Lyon"}}},
				},
			},
		},
	}
}

type env struct {
	dir         *memory.Directory
	store       *memory.ResultStore
	cache       *memory.ResultCache
	submissions *SubmissionService
	queries     *ResultQueryService
}

func newEnv() env {
	dir := memory.NewDirectory(testCatalog())
	store := memory.NewResultStore()
	cache := memory.NewResultCache(time.Hour)
	quizzes := memory.NewQuizRepository(dir, time.Minute)
	return env{
		dir:         dir,
		store:       store,
		cache:       cache,
		submissions: NewSubmissionServiceWithClock(quizzes, dir, store, cache, discardLogger(), func() time.Time { return fixedNow }),
		queries:     NewResultQueryService(dir, cache, discardLogger()),
	}
}

type failingCache struct {
	ResultCache
}

func (failingCache) Put(context.Context, domain.CacheEntry) error {
	return errors.New("cache unavailable")
}

// racingStore reports a uniqueness violation on the first Upsert, as if a
// concurrent submission inserted the row first.
type racingStore struct {
	ResultStore
	mu    sync.Mutex
	calls int
}

func (s *racingStore) Upsert(ctx context.Context, r domain.ScoredResult) (domain.ScoredResult, error) {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()
	if first {
		return domain.ScoredResult{}, domain.ErrDuplicateResult
	}
	return s.ResultStore.Upsert(ctx, r)
}
