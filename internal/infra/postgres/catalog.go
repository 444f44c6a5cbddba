package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"quiz-results-service/internal/domain"
)

var catalogTables = []string{"users", "companies", "members", "quizzes", "questions", "options"}

// ImportCatalog upserts directory entities with their given ids. Question
// order is stored as position.
func ImportCatalog(ctx context.Context, db *bun.DB, catalog domain.Catalog) error {
	users := make([]userRow, 0, len(catalog.Users))
	for _, u := range catalog.Users {
		users = append(users, userRow{ID: u.ID, Email: u.Email})
	}
	companies := make([]companyRow, 0, len(catalog.Companies))
	for _, c := range catalog.Companies {
		companies = append(companies, companyRow{ID: c.ID, Name: c.Name, Description: c.Description, OwnerID: c.OwnerID})
	}
	members := make([]memberRow, 0, len(catalog.Memberships))
	for _, m := range catalog.Memberships {
		members = append(members, memberRow{UserID: m.UserID, CompanyID: m.CompanyID, Role: string(m.Role)})
	}
	var (
		quizzes   []quizRow
		questions []questionRow
		options   []optionRow
	)
	for _, q := range catalog.Quizzes {
		quizzes = append(quizzes, quizRow{ID: q.ID, CompanyID: q.CompanyID, Name: q.Name, Description: q.Description})
		for pos, question := range q.Questions {
			questions = append(questions, questionRow{ID: question.ID, QuizID: q.ID, Position: pos, Text: question.Text})
			for _, opt := range question.Options {
				options = append(options, optionRow{ID: opt.ID, QuestionID: question.ID, Text: opt.Text, IsCorrect: opt.IsCorrect})
			}
		}
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		steps := []func() error{
			func() error { return upsertRows(ctx, tx, users, "CONFLICT (id) DO UPDATE", "email = EXCLUDED.email") },
			func() error {
				return upsertRows(ctx, tx, companies, "CONFLICT (id) DO UPDATE",
					"name = EXCLUDED.name, description = EXCLUDED.description, owner_id = EXCLUDED.owner_id")
			},
			func() error {
				return upsertRows(ctx, tx, members, "CONFLICT (user_id) DO UPDATE",
					"company_id = EXCLUDED.company_id, role = EXCLUDED.role")
			},
			func() error {
				return upsertRows(ctx, tx, quizzes, "CONFLICT (id) DO UPDATE",
					"company_id = EXCLUDED.company_id, name = EXCLUDED.name, description = EXCLUDED.description")
			},
			func() error {
				return upsertRows(ctx, tx, questions, "CONFLICT (id) DO UPDATE",
					"quiz_id = EXCLUDED.quiz_id, position = EXCLUDED.position, text = EXCLUDED.text")
			},
			func() error {
				return upsertRows(ctx, tx, options, "CONFLICT (id) DO UPDATE",
					"question_id = EXCLUDED.question_id, text = EXCLUDED.text, is_correct = EXCLUDED.is_correct")
			},
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		for _, table := range catalogTables {
			stmt := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT max(id) FROM %[1]s), 0) + 1, false)`, table)
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("reset %s sequence: %w", table, err)
			}
		}
		return nil
	})
}

func upsertRows[T any](ctx context.Context, tx bun.Tx, rows []T, conflict, set string) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := tx.NewInsert().Model(&rows).On(conflict).Set(set).Exec(ctx); err != nil {
		return fmt.Errorf("import %T: %w", rows, err)
	}
	return nil
}
