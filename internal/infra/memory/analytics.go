package memory

import (
	"context"
	"sort"
	"time"

	"quiz-results-service/internal/domain"
)

// Analytics computes reports by walking a ResultStore. Quiz names and user
// emails come from the Directory.
type Analytics struct {
	results *ResultStore
	dir     *Directory
}

func NewAnalytics(results *ResultStore, dir *Directory) *Analytics {
	return &Analytics{results: results, dir: dir}
}

func (a *Analytics) UserAverage(_ context.Context, userID int64) (float64, bool, error) {
	var sum float64
	var n int
	for _, r := range a.results.snapshot() {
		if r.UserID == userID {
			sum += float64(r.Score)
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return sum / float64(n), true, nil
}

func (a *Analytics) CompanyUserAverages(_ context.Context, companyID int64) ([]domain.UserAverage, error) {
	type acc struct {
		sum float64
		n   int
	}
	byUser := make(map[int64]*acc)
	for _, r := range a.results.snapshot() {
		if r.CompanyID != companyID {
			continue
		}
		if byUser[r.UserID] == nil {
			byUser[r.UserID] = &acc{}
		}
		byUser[r.UserID].sum += float64(r.Score)
		byUser[r.UserID].n++
	}
	out := make([]domain.UserAverage, 0, len(byUser))
	for userID, agg := range byUser {
		out = append(out, domain.UserAverage{UserID: userID, Average: agg.sum / float64(agg.n)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (a *Analytics) UserQuizSummaries(_ context.Context, userID, companyID int64) ([]domain.QuizSummary, error) {
	out := make([]domain.QuizSummary, 0)
	for _, r := range a.results.snapshot() {
		if r.UserID != userID || r.CompanyID != companyID {
			continue
		}
		summary := domain.QuizSummary{
			UserID:          r.UserID,
			QuizID:          r.QuizID,
			Average:         float64(r.Score),
			FirstCompletion: r.CreatedAt,
			LastCompletion:  r.UpdatedAt,
		}
		if q, ok := a.dir.quizzes[r.QuizID]; ok {
			summary.QuizName = q.Name
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuizID < out[j].QuizID })
	return out, nil
}

func (a *Analytics) CompanyResultsSince(_ context.Context, companyID int64, since time.Time) ([]domain.ScoredResult, error) {
	out := make([]domain.ScoredResult, 0)
	for _, r := range a.results.snapshot() {
		if r.CompanyID == companyID && !r.UpdatedAt.Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (a *Analytics) UserQuizAveragesSince(_ context.Context, userID, companyID int64, since time.Time) ([]domain.QuizAverage, error) {
	type acc struct {
		sum float64
		n   int
	}
	byQuiz := make(map[int64]*acc)
	for _, r := range a.results.snapshot() {
		if r.UserID != userID || r.CompanyID != companyID || r.UpdatedAt.Before(since) {
			continue
		}
		if byQuiz[r.QuizID] == nil {
			byQuiz[r.QuizID] = &acc{}
		}
		byQuiz[r.QuizID].sum += float64(r.Score)
		byQuiz[r.QuizID].n++
	}
	out := make([]domain.QuizAverage, 0, len(byQuiz))
	for quizID, agg := range byQuiz {
		avg := domain.QuizAverage{UserID: userID, QuizID: quizID, Average: agg.sum / float64(agg.n)}
		if q, ok := a.dir.quizzes[quizID]; ok {
			avg.QuizName = q.Name
		}
		out = append(out, avg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuizID < out[j].QuizID })
	return out, nil
}

func (a *Analytics) CompanyLastAttempts(_ context.Context, companyID int64) ([]domain.LastAttempt, error) {
	last := make(map[int64]time.Time)
	for _, r := range a.results.snapshot() {
		if r.CompanyID != companyID {
			continue
		}
		if r.UpdatedAt.After(last[r.UserID]) {
			last[r.UserID] = r.UpdatedAt
		}
	}
	out := make([]domain.LastAttempt, 0, len(last))
	for userID, at := range last {
		attempt := domain.LastAttempt{UserID: userID, LastAttempt: at}
		if u, ok := a.dir.users[userID]; ok {
			attempt.Email = u.Email
		}
		out = append(out, attempt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
