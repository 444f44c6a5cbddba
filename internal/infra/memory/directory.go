package memory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"quiz-results-service/internal/domain"
)

// LoadCatalog reads a YAML fixture file.
func LoadCatalog(path string) (domain.Catalog, error) {
	var catalog domain.Catalog
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog, err
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return catalog, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return catalog, nil
}

// Directory is a read-only, map backed implementation of app.Directory. It
// also loads quizzes for QuizRepository.
type Directory struct {
	users       map[int64]domain.User
	companies   map[int64]domain.Company
	byName      map[string]int64
	memberships map[int64]domain.Membership
	quizzes     map[int64]domain.Quiz
	options     map[int64]domain.Option
}

func NewDirectory(seed domain.Catalog) *Directory {
	d := &Directory{
		users:       make(map[int64]domain.User),
		companies:   make(map[int64]domain.Company),
		byName:      make(map[string]int64),
		memberships: make(map[int64]domain.Membership),
		quizzes:     make(map[int64]domain.Quiz),
		options:     make(map[int64]domain.Option),
	}
	for _, u := range seed.Users {
		d.users[u.ID] = u
	}
	for _, c := range seed.Companies {
		d.companies[c.ID] = c
		d.byName[c.Name] = c.ID
	}
	for _, m := range seed.Memberships {
		d.memberships[m.UserID] = m
	}
	for _, q := range seed.Quizzes {
		for i := range q.Questions {
			for j := range q.Questions[i].Options {
				q.Questions[i].Options[j].QuestionID = q.Questions[i].ID
			}
		}
		d.quizzes[q.ID] = q
		for id, opt := range q.Options() {
			d.options[id] = opt
		}
	}
	return d
}

func (d *Directory) Membership(_ context.Context, userID int64) (*domain.Membership, error) {
	m, ok := d.memberships[userID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (d *Directory) Company(_ context.Context, companyID int64) (*domain.Company, error) {
	c, ok := d.companies[companyID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (d *Directory) CompanyByName(ctx context.Context, name string) (*domain.Company, error) {
	id, ok := d.byName[name]
	if !ok {
		return nil, nil
	}
	return d.Company(ctx, id)
}

func (d *Directory) User(_ context.Context, userID int64) (*domain.User, error) {
	u, ok := d.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (d *Directory) Option(_ context.Context, optionID int64) (*domain.Option, error) {
	o, ok := d.options[optionID]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (d *Directory) LoadQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	q, ok := d.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return q, nil
}
