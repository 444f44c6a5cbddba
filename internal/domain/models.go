package domain

import (
	"strconv"
	"strings"
	"time"
)

// Role is a member's role inside its company.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User is the identifying subset of a user record.
type User struct {
	ID    int64  `json:"id" yaml:"id"`
	Email string `json:"email" yaml:"email"`
}

// Company is a tenant owning quizzes and memberships.
type Company struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	OwnerID     int64  `json:"owner_id" yaml:"owner_id"`
}

// Membership places a user inside exactly one company.
type Membership struct {
	UserID    int64 `json:"user_id" yaml:"user_id"`
	CompanyID int64 `json:"company_id" yaml:"company_id"`
	Role      Role  `json:"role" yaml:"role"`
}

// Option represents a possible answer for a question.
type Option struct {
	ID         int64  `json:"id" yaml:"id"`
	QuestionID int64  `json:"question_id" yaml:"question_id"`
	Text       string `json:"text" yaml:"text"`
	IsCorrect  bool   `json:"is_correct" yaml:"is_correct"`
}

// Question is an ordered set of options; at least two are expected.
type Question struct {
	ID      int64    `json:"id" yaml:"id"`
	Text    string   `json:"text" yaml:"text"`
	Options []Option `json:"options" yaml:"options"`
}

// Quiz is an ordered collection of questions owned by a company.
type Quiz struct {
	ID          int64      `json:"id" yaml:"id"`
	CompanyID   int64      `json:"company_id" yaml:"company_id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Options indexes every option of the quiz by id.
func (q Quiz) Options() map[int64]Option {
	idx := make(map[int64]Option)
	for _, question := range q.Questions {
		for _, opt := range question.Options {
			if opt.QuestionID == 0 {
				opt.QuestionID = question.ID
			}
			idx[opt.ID] = opt
		}
	}
	return idx
}

// Score is a fraction in [0,1] rounded to two decimals. It always encodes
// with a fractional part so cached documents read 1.0 rather than 1.
type Score float64

func (s Score) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Score) String() string {
	out := strconv.FormatFloat(float64(s), 'f', -1, 64)
	if strings.ContainsRune(out, '.') {
		return out
	}
	return out + ".0"
}

// ScoredResult is the durable, authoritative result of a user on a quiz.
type ScoredResult struct {
	ID        int64     `json:"id"`
	QuizID    int64     `json:"quiz_id"`
	UserID    int64     `json:"user_id"`
	CompanyID int64     `json:"company_id"`
	Score     Score     `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmissionRequest is a quiz attempt as sent by a client. OptionIDs align
// positionally with the quiz's question order.
type SubmissionRequest struct {
	ResultID  int64   `json:"id"`
	QuizID    int64   `json:"quiz_id"`
	OptionIDs []int64 `json:"options_ids"`
}

// AnswerBreakdown is the per-question outcome of scoring.
type AnswerBreakdown struct {
	QuestionID     int64  `json:"question_id"`
	QuestionText   string `json:"question_text"`
	ProvidedOption int64  `json:"provided_option"`
	IsCorrect      bool   `json:"is_correct"`
}

// ScoreResult is the output of the scoring engine.
type ScoreResult struct {
	Score   Score             `json:"score"`
	Correct int               `json:"correct"`
	Answers []AnswerBreakdown `json:"answers"`
}

// UserAverage is a user's mean score over a set of results.
type UserAverage struct {
	UserID  int64   `json:"user_id"`
	Average float64 `json:"average_score"`
}

// QuizSummary describes a user's standing on one quiz.
type QuizSummary struct {
	UserID          int64     `json:"user_id"`
	QuizID          int64     `json:"quiz_id"`
	QuizName        string    `json:"quiz_name"`
	Average         float64   `json:"average_score"`
	FirstCompletion time.Time `json:"start_time"`
	LastCompletion  time.Time `json:"end_time"`
}

// QuizAverage is a user's mean score on one quiz over a time window.
type QuizAverage struct {
	UserID   int64   `json:"user_id"`
	QuizID   int64   `json:"quiz_id"`
	QuizName string  `json:"quiz_name"`
	Average  float64 `json:"average_score"`
}

// LastAttempt is the most recent result time of a user within a company.
type LastAttempt struct {
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	LastAttempt time.Time `json:"last_attempt"`
}

// Catalog is a bundle of directory entities, used to seed stores.
type Catalog struct {
	Users       []User       `yaml:"users"`
	Companies   []Company    `yaml:"companies"`
	Memberships []Membership `yaml:"memberships"`
	Quizzes     []Quiz       `yaml:"quizzes"`
}
