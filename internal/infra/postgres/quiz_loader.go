package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-results-service/internal/domain"
)

// QuizLoader loads a quiz with its ordered questions and options.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	quiz := domain.Quiz{ID: quizID}
	err := l.pool.QueryRow(ctx,
		`SELECT company_id, name, description FROM quizzes WHERE id=$1`, quizID,
	).Scan(&quiz.CompanyID, &quiz.Name, &quiz.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := l.pool.Query(ctx, `
		SELECT qs.id, qs.text, o.id, o.text, o.is_correct
		FROM questions qs
		LEFT JOIN options o ON o.question_id = qs.id
		WHERE qs.quiz_id=$1
		ORDER BY qs.position, qs.id, o.id`, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			questionID   int64
			questionText string
			optionID     *int64
			optionText   *string
			isCorrect    *bool
		)
		if err := rows.Scan(&questionID, &questionText, &optionID, &optionText, &isCorrect); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		n := len(quiz.Questions)
		if n == 0 || quiz.Questions[n-1].ID != questionID {
			quiz.Questions = append(quiz.Questions, domain.Question{ID: questionID, Text: questionText})
			n++
		}
		if optionID == nil {
			continue
		}
		quiz.Questions[n-1].Options = append(quiz.Questions[n-1].Options, domain.Option{
			ID:         *optionID,
			QuestionID: questionID,
			Text:       *optionText,
			IsCorrect:  *isCorrect,
		})
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	return quiz, nil
}
