package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"quiz-results-service/internal/domain"
)

// ResultStore persists results in quiz_results. The (user_id, quiz_id)
// unique constraint backs the read-then-write upsert: a racing insert fails
// with a unique violation, reported as domain.ErrDuplicateResult.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) Upsert(ctx context.Context, r domain.ScoredResult) (domain.ScoredResult, error) {
	var saved resultRow
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing resultRow
		err := tx.NewSelect().
			Model(&existing).
			Where("user_id = ? AND quiz_id = ?", r.UserID, r.QuizID).
			For("UPDATE").
			Limit(1).
			Scan(ctx)
		switch {
		case err == nil:
			existing.Score = float64(r.Score)
			existing.UpdatedAt = r.UpdatedAt
			if _, err := tx.NewUpdate().Model(&existing).Column("score", "updated_at").WherePK().Exec(ctx); err != nil {
				return err
			}
			saved = existing
			return nil
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		row := resultRow{
			ID:        r.ID,
			UserID:    r.UserID,
			CompanyID: r.CompanyID,
			QuizID:    r.QuizID,
			Score:     float64(r.Score),
			CreatedAt: r.UpdatedAt,
			UpdatedAt: r.UpdatedAt,
		}
		if _, err := tx.NewInsert().Model(&row).Returning("*").Exec(ctx); err != nil {
			return err
		}
		if r.ID != 0 {
			// keep the serial ahead of client supplied ids
			if _, err := tx.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('quiz_results', 'id'), (SELECT max(id) FROM quiz_results))`); err != nil {
				return err
			}
		}
		saved = row
		return nil
	})
	if isUniqueViolation(err) {
		return domain.ScoredResult{}, domain.ErrDuplicateResult
	}
	if err != nil {
		return domain.ScoredResult{}, fmt.Errorf("upsert result: %w", err)
	}
	return toScoredResult(saved), nil
}

func (s *ResultStore) Get(ctx context.Context, resultID int64) (*domain.ScoredResult, error) {
	var row resultRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", resultID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	out := toScoredResult(row)
	return &out, nil
}

func toScoredResult(row resultRow) domain.ScoredResult {
	return domain.ScoredResult{
		ID:        row.ID,
		QuizID:    row.QuizID,
		UserID:    row.UserID,
		CompanyID: row.CompanyID,
		Score:     domain.Score(row.Score),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
