package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"quiz-results-service/internal/domain"
)

// Analytics runs aggregate reports over quiz_results.
type Analytics struct {
	db *bun.DB
}

func NewAnalytics(db *bun.DB) *Analytics {
	return &Analytics{db: db}
}

func (a *Analytics) UserAverage(ctx context.Context, userID int64) (float64, bool, error) {
	var avg sql.NullFloat64
	err := a.db.NewSelect().
		TableExpr("quiz_results AS r").
		ColumnExpr("avg(r.score)").
		Where("r.user_id = ?", userID).
		Scan(ctx, &avg)
	if err != nil {
		return 0, false, fmt.Errorf("user average: %w", err)
	}
	return avg.Float64, avg.Valid, nil
}

func (a *Analytics) CompanyUserAverages(ctx context.Context, companyID int64) ([]domain.UserAverage, error) {
	var rows []struct {
		UserID  int64   `bun:"user_id"`
		Average float64 `bun:"average_score"`
	}
	err := a.db.NewSelect().
		TableExpr("quiz_results AS r").
		ColumnExpr("r.user_id").
		ColumnExpr("avg(r.score) AS average_score").
		Where("r.company_id = ?", companyID).
		Group("r.user_id").
		Order("r.user_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("company averages: %w", err)
	}
	out := make([]domain.UserAverage, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.UserAverage{UserID: row.UserID, Average: row.Average})
	}
	return out, nil
}

func (a *Analytics) UserQuizSummaries(ctx context.Context, userID, companyID int64) ([]domain.QuizSummary, error) {
	var rows []struct {
		UserID    int64     `bun:"user_id"`
		QuizID    int64     `bun:"quiz_id"`
		QuizName  string    `bun:"quiz_name"`
		Average   float64   `bun:"average_score"`
		StartTime time.Time `bun:"start_time"`
		EndTime   time.Time `bun:"end_time"`
	}
	err := a.db.NewSelect().
		TableExpr("quiz_results AS r").
		Join("JOIN quizzes AS q ON q.id = r.quiz_id").
		ColumnExpr("r.user_id, r.quiz_id, q.name AS quiz_name").
		ColumnExpr("avg(r.score) AS average_score").
		ColumnExpr("min(r.created_at) AS start_time, max(r.updated_at) AS end_time").
		Where("r.user_id = ? AND r.company_id = ?", userID, companyID).
		Group("r.user_id", "r.quiz_id", "q.name").
		Order("r.quiz_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("user quiz summaries: %w", err)
	}
	out := make([]domain.QuizSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.QuizSummary{
			UserID:          row.UserID,
			QuizID:          row.QuizID,
			QuizName:        row.QuizName,
			Average:         row.Average,
			FirstCompletion: row.StartTime,
			LastCompletion:  row.EndTime,
		})
	}
	return out, nil
}

func (a *Analytics) CompanyResultsSince(ctx context.Context, companyID int64, since time.Time) ([]domain.ScoredResult, error) {
	var rows []resultRow
	err := a.db.NewSelect().
		Model(&rows).
		Where("company_id = ? AND updated_at >= ?", companyID, since).
		Order("updated_at", "id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("company results since: %w", err)
	}
	out := make([]domain.ScoredResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, toScoredResult(row))
	}
	return out, nil
}

func (a *Analytics) UserQuizAveragesSince(ctx context.Context, userID, companyID int64, since time.Time) ([]domain.QuizAverage, error) {
	var rows []struct {
		UserID   int64   `bun:"user_id"`
		QuizID   int64   `bun:"quiz_id"`
		QuizName string  `bun:"quiz_name"`
		Average  float64 `bun:"average_score"`
	}
	err := a.db.NewSelect().
		TableExpr("quiz_results AS r").
		Join("JOIN quizzes AS q ON q.id = r.quiz_id").
		ColumnExpr("r.user_id, r.quiz_id, q.name AS quiz_name").
		ColumnExpr("avg(r.score) AS average_score").
		Where("r.user_id = ? AND r.company_id = ?", userID, companyID).
		Where("r.updated_at >= ?", since).
		Group("r.user_id", "r.quiz_id", "q.name").
		Order("r.quiz_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("user quiz averages since: %w", err)
	}
	out := make([]domain.QuizAverage, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.QuizAverage{
			UserID:   row.UserID,
			QuizID:   row.QuizID,
			QuizName: row.QuizName,
			Average:  row.Average,
		})
	}
	return out, nil
}

func (a *Analytics) CompanyLastAttempts(ctx context.Context, companyID int64) ([]domain.LastAttempt, error) {
	var rows []struct {
		UserID      int64     `bun:"user_id"`
		Email       string    `bun:"email"`
		LastAttempt time.Time `bun:"last_attempt"`
	}
	err := a.db.NewSelect().
		TableExpr("users AS u").
		Join("JOIN quiz_results AS r ON r.user_id = u.id").
		ColumnExpr("u.id AS user_id, u.email").
		ColumnExpr("max(r.updated_at) AS last_attempt").
		Where("r.company_id = ?", companyID).
		Group("u.id", "u.email").
		Order("u.id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("company last attempts: %w", err)
	}
	out := make([]domain.LastAttempt, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.LastAttempt{UserID: row.UserID, Email: row.Email, LastAttempt: row.LastAttempt})
	}
	return out, nil
}
