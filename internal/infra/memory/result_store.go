package memory

import (
	"context"
	"sync"

	"quiz-results-service/internal/domain"
)

type resultPair struct {
	userID int64
	quizID int64
}

// ResultStore is an in-memory implementation of app.ResultStore. The single
// lock makes the (user, quiz) check and the insert atomic.
type ResultStore struct {
	mu     sync.RWMutex
	byID   map[int64]domain.ScoredResult
	byPair map[resultPair]int64
	nextID int64
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		byID:   make(map[int64]domain.ScoredResult),
		byPair: make(map[resultPair]int64),
	}
}

func (s *ResultStore) Upsert(_ context.Context, r domain.ScoredResult) (domain.ScoredResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair := resultPair{userID: r.UserID, quizID: r.QuizID}
	if id, ok := s.byPair[pair]; ok {
		existing := s.byID[id]
		existing.Score = r.Score
		existing.UpdatedAt = r.UpdatedAt
		s.byID[id] = existing
		return existing, nil
	}

	id := r.ID
	if id == 0 {
		id = s.allocateLocked()
	} else if _, taken := s.byID[id]; taken {
		return domain.ScoredResult{}, domain.ErrDuplicateResult
	}
	if id > s.nextID {
		s.nextID = id
	}
	r.ID = id
	if r.CreatedAt.IsZero() {
		r.CreatedAt = r.UpdatedAt
	}
	s.byID[id] = r
	s.byPair[pair] = id
	return r, nil
}

func (s *ResultStore) Get(_ context.Context, resultID int64) (*domain.ScoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[resultID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// Len reports the number of stored results.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// snapshot copies every stored result.
func (s *ResultStore) snapshot() []domain.ScoredResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScoredResult, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r)
	}
	return out
}

func (s *ResultStore) allocateLocked() int64 {
	for {
		s.nextID++
		if _, taken := s.byID[s.nextID]; !taken {
			return s.nextID
		}
	}
}
