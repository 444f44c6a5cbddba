package app

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"quiz-results-service/internal/cachekey"
	"quiz-results-service/internal/domain"
)

// ResultQueryService answers result queries from the cache. Every company
// scoped query is authorized through Authorize before the cache is scanned.
type ResultQueryService struct {
	access companyAccess
	cache  ResultCache
	log    *slog.Logger
}

func NewResultQueryService(dir Directory, cache ResultCache, logger *slog.Logger) *ResultQueryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultQueryService{
		access: companyAccess{dir: dir},
		cache:  cache,
		log:    logger,
	}
}

// MyResults returns every cached result of the requester. Self access needs
// no authorization.
func (s *ResultQueryService) MyResults(ctx context.Context, userID int64) ([]domain.CacheEntry, error) {
	return s.fetch(ctx, cachekey.UserPattern(userID), 0)
}

// UserQuizResult returns one user's cached result for one quiz, as seen by
// an owner or admin of companyName.
func (s *ResultQueryService) UserQuizResult(ctx context.Context, requesterID int64, companyName string, userID, quizID int64) ([]domain.CacheEntry, error) {
	company, err := s.access.byName(ctx, requesterID, companyName)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, cachekey.UserQuizPattern(quizID, userID), company.ID)
}

// CompanyResults returns every cached result recorded in companyName.
func (s *ResultQueryService) CompanyResults(ctx context.Context, requesterID int64, companyName string) ([]domain.CacheEntry, error) {
	company, err := s.access.byName(ctx, requesterID, companyName)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, cachekey.CompanyPattern(company.ID), company.ID)
}

// QuizResults returns every cached result of a quiz within companyName.
func (s *ResultQueryService) QuizResults(ctx context.Context, requesterID int64, companyName string, quizID int64) ([]domain.CacheEntry, error) {
	company, err := s.access.byName(ctx, requesterID, companyName)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, cachekey.QuizPattern(quizID), company.ID)
}

// ExportUserQuizCSV writes UserQuizResult as CSV.
func (s *ResultQueryService) ExportUserQuizCSV(ctx context.Context, w io.Writer, requesterID int64, companyName string, userID, quizID int64) error {
	entries, err := s.UserQuizResult(ctx, requesterID, companyName, userID, quizID)
	if err != nil {
		return err
	}
	return WriteCSV(w, entries)
}

// ExportQuizCSV writes QuizResults as CSV.
func (s *ResultQueryService) ExportQuizCSV(ctx context.Context, w io.Writer, requesterID int64, companyName string, quizID int64) error {
	entries, err := s.QuizResults(ctx, requesterID, companyName, quizID)
	if err != nil {
		return err
	}
	return WriteCSV(w, entries)
}

// RawEntry reads a cache key verbatim. Trusted callers only.
func (s *ResultQueryService) RawEntry(ctx context.Context, key string) (string, error) {
	if _, _, _, ok := cachekey.Parse(key); !ok {
		return "", domain.ErrMalformedKey
	}
	value, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrCacheNotFound
	}
	return value, nil
}

// DeleteKey removes a cache key and returns its previous value, if any.
// Trusted callers only.
func (s *ResultQueryService) DeleteKey(ctx context.Context, key string) (string, bool, error) {
	if _, _, _, ok := cachekey.Parse(key); !ok {
		return "", false, domain.ErrMalformedKey
	}
	prev, ok, err := s.cache.Delete(ctx, key)
	if err != nil {
		return "", false, err
	}
	if ok {
		s.log.Info("cache key deleted", slog.String("key", key))
	}
	return prev, ok, nil
}

// fetch scans pattern and, when companyID is non-zero, drops entries of
// other companies. Results are ordered by quiz, user, company.
func (s *ResultQueryService) fetch(ctx context.Context, pattern string, companyID int64) ([]domain.CacheEntry, error) {
	entries, err := s.cache.GetByPattern(ctx, pattern)
	if err != nil {
		return nil, err
	}
	if companyID != 0 {
		kept := entries[:0]
		for _, entry := range entries {
			if id, ok := entry.Int(domain.FieldCompanyID); ok && id == companyID {
				kept = append(kept, entry)
			}
		}
		entries = kept
	}
	if len(entries) == 0 {
		return nil, domain.ErrCacheNotFound
	}
	sortEntries(entries)
	return entries, nil
}

func sortEntries(entries []domain.CacheEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		qi, ui, ci, _ := entries[i].Identity()
		qj, uj, cj, _ := entries[j].Identity()
		if qi != qj {
			return qi < qj
		}
		if ui != uj {
			return ui < uj
		}
		return ci < cj
	})
}
