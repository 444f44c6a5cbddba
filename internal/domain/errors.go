package domain

import "errors"

// Error kinds. Every domain failure unwraps to exactly one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// Error is a domain failure of a given kind with a short detail.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Kind }

func NotFound(detail string) *Error     { return &Error{Kind: ErrNotFound, Detail: detail} }
func Forbidden(detail string) *Error    { return &Error{Kind: ErrForbidden, Detail: detail} }
func Conflict(detail string) *Error     { return &Error{Kind: ErrConflict, Detail: detail} }
func InvalidInput(detail string) *Error { return &Error{Kind: ErrInvalidInput, Detail: detail} }

var (
	// ErrQuizNotFound indicates the quiz definition could not be loaded.
	ErrQuizNotFound = NotFound("quiz")
	// ErrCompanyNotFound is returned when a company lookup by id or name misses.
	ErrCompanyNotFound = NotFound("company")
	// ErrOptionNotFound indicates a submitted option ID is unknown.
	ErrOptionNotFound = NotFound("option")
	// ErrCacheNotFound is returned when a cache query matched nothing.
	ErrCacheNotFound = NotFound("cache")
	// ErrNoResults is returned by analytics queries with an empty answer.
	ErrNoResults = NotFound("results")

	ErrNotOwner         = Forbidden("not owner")
	ErrInsufficientRole = Forbidden("insufficient role")
	ErrWrongCompany     = Forbidden("wrong company")
	ErrNotMember        = Forbidden("not a member")
	ErrForeignResult    = Forbidden("result id belongs to another user")

	// ErrDuplicateResult is a uniqueness violation on (user, quiz) or result id.
	ErrDuplicateResult = Conflict("duplicate result")

	ErrOptionCountMismatch    = InvalidInput("option count mismatch")
	ErrOptionQuestionMismatch = InvalidInput("option/question mismatch")
	ErrMalformedEntry         = InvalidInput("malformed cache entry")
	ErrMalformedKey           = InvalidInput("malformed cache key")
)
