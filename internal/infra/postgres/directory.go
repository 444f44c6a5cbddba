package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"quiz-results-service/internal/domain"
)

// Directory implements app.Directory over the relational tables.
type Directory struct {
	db *bun.DB
}

func NewDirectory(db *bun.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) Membership(ctx context.Context, userID int64) (*domain.Membership, error) {
	var row memberRow
	if found, err := d.one(ctx, &row, "user_id = ?", userID); !found {
		return nil, err
	}
	return &domain.Membership{UserID: row.UserID, CompanyID: row.CompanyID, Role: domain.Role(row.Role)}, nil
}

func (d *Directory) Company(ctx context.Context, companyID int64) (*domain.Company, error) {
	var row companyRow
	if found, err := d.one(ctx, &row, "id = ?", companyID); !found {
		return nil, err
	}
	return toCompany(row), nil
}

func (d *Directory) CompanyByName(ctx context.Context, name string) (*domain.Company, error) {
	var row companyRow
	if found, err := d.one(ctx, &row, "name = ?", name); !found {
		return nil, err
	}
	return toCompany(row), nil
}

func (d *Directory) User(ctx context.Context, userID int64) (*domain.User, error) {
	var row userRow
	if found, err := d.one(ctx, &row, "id = ?", userID); !found {
		return nil, err
	}
	return &domain.User{ID: row.ID, Email: row.Email}, nil
}

func (d *Directory) Option(ctx context.Context, optionID int64) (*domain.Option, error) {
	var row optionRow
	if found, err := d.one(ctx, &row, "id = ?", optionID); !found {
		return nil, err
	}
	return &domain.Option{ID: row.ID, QuestionID: row.QuestionID, Text: row.Text, IsCorrect: row.IsCorrect}, nil
}

// one scans a single row into model. found is false on no rows or error.
func (d *Directory) one(ctx context.Context, model any, where string, arg any) (bool, error) {
	err := d.db.NewSelect().Model(model).Where(where, arg).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %T: %w", model, err)
	}
	return true, nil
}

func toCompany(row companyRow) *domain.Company {
	return &domain.Company{ID: row.ID, Name: row.Name, Description: row.Description, OwnerID: row.OwnerID}
}
