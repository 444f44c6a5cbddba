package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quiz-results-service/internal/domain"
)

// SubmissionService grades quiz submissions, persists the durable result and
// writes a snapshot to the result cache.
type SubmissionService struct {
	quizzes QuizRepository
	dir     Directory
	results ResultStore
	cache   ResultCache
	log     *slog.Logger
	now     func() time.Time
}

func NewSubmissionService(quizzes QuizRepository, dir Directory, results ResultStore, cache ResultCache, logger *slog.Logger) *SubmissionService {
	return NewSubmissionServiceWithClock(quizzes, dir, results, cache, logger, time.Now)
}

// NewSubmissionServiceWithClock is test-only for deterministic timestamps.
func NewSubmissionServiceWithClock(quizzes QuizRepository, dir Directory, results ResultStore, cache ResultCache, logger *slog.Logger, now func() time.Time) *SubmissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionService{
		quizzes: quizzes,
		dir:     dir,
		results: results,
		cache:   cache,
		log:     logger,
		now:     now,
	}
}

// Pass scores a submission by userID and records it. A resubmission for the
// same (user, quiz) updates the existing result in place.
func (s *SubmissionService) Pass(ctx context.Context, userID int64, req domain.SubmissionRequest) (domain.ScoredResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, req.QuizID)
	if err != nil {
		return domain.ScoredResult{}, err
	}

	company, err := s.dir.Company(ctx, quiz.CompanyID)
	if err != nil {
		return domain.ScoredResult{}, err
	}
	if company == nil {
		return domain.ScoredResult{}, domain.ErrCompanyNotFound
	}

	member, err := s.dir.Membership(ctx, userID)
	if err != nil {
		return domain.ScoredResult{}, err
	}
	if !canSubmit(userID, member, *company) {
		return domain.ScoredResult{}, domain.ErrNotMember
	}

	resultID, err := s.claimResultID(ctx, userID, req.ResultID)
	if err != nil {
		return domain.ScoredResult{}, err
	}

	resolve, err := s.optionResolver(ctx, quiz, req.OptionIDs)
	if err != nil {
		return domain.ScoredResult{}, err
	}
	scored, err := Score(quiz, req.OptionIDs, resolve)
	if err != nil {
		return domain.ScoredResult{}, err
	}

	row := domain.ScoredResult{
		ID:        resultID,
		QuizID:    quiz.ID,
		UserID:    userID,
		CompanyID: company.ID,
		Score:     scored.Score,
		UpdatedAt: s.now().UTC(),
	}
	saved, err := s.results.Upsert(ctx, row)
	if errors.Is(err, domain.ErrConflict) {
		// A concurrent submission inserted first; the retry takes the update path.
		saved, err = s.results.Upsert(ctx, row)
	}
	if err != nil {
		return domain.ScoredResult{}, err
	}

	s.writeSnapshot(ctx, quiz, *company, userID, scored)
	return saved, nil
}

// canSubmit admits members of the quiz's company and its owner. Members of
// other companies and outsiders are rejected.
func canSubmit(userID int64, member *domain.Membership, company domain.Company) bool {
	if member != nil && member.CompanyID == company.ID {
		return true
	}
	return userID == company.OwnerID
}

// claimResultID checks the client supplied id. An unused id is kept for the
// insert path; an id owned by the same user is ignored since the upsert is
// keyed by (user, quiz); an id owned by someone else is rejected.
func (s *SubmissionService) claimResultID(ctx context.Context, userID, resultID int64) (int64, error) {
	if resultID == 0 {
		return 0, nil
	}
	existing, err := s.results.Get(ctx, resultID)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return resultID, nil
	}
	if existing.UserID != userID {
		return 0, domain.ErrForeignResult
	}
	return 0, nil
}

// optionResolver indexes the quiz's options and looks up any submitted id
// the quiz does not contain, so that foreign options are reported as a
// question mismatch rather than a missing option.
func (s *SubmissionService) optionResolver(ctx context.Context, quiz domain.Quiz, submitted []int64) (OptionResolver, error) {
	options := quiz.Options()
	if len(submitted) != len(quiz.Questions) {
		return mapResolver(options), nil
	}
	for _, id := range submitted {
		if _, ok := options[id]; ok {
			continue
		}
		opt, err := s.dir.Option(ctx, id)
		if err != nil {
			return nil, err
		}
		if opt != nil {
			options[id] = *opt
		}
	}
	return mapResolver(options), nil
}

func (s *SubmissionService) writeSnapshot(ctx context.Context, quiz domain.Quiz, company domain.Company, userID int64, scored domain.ScoreResult) {
	attrs := []any{
		slog.Int64("quiz_id", quiz.ID),
		slog.Int64("user_id", userID),
		slog.Int64("company_id", company.ID),
	}

	user, err := s.dir.User(ctx, userID)
	if err != nil {
		s.log.Warn("result cache write skipped: user lookup failed", append(attrs, slog.Any("error", err))...)
		return
	}
	if user == nil {
		user = &domain.User{ID: userID}
	}

	entry, err := BuildSnapshot(quiz, company, *user, scored)
	if err != nil {
		s.log.Warn("result cache write skipped: encode failed", append(attrs, slog.Any("error", err))...)
		return
	}
	if err := s.cache.Put(ctx, entry); err != nil {
		s.log.Warn("result cache write failed", append(attrs, slog.Any("error", err))...)
	}
}
