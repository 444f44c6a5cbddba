package app

import "quiz-results-service/internal/domain"

// OptionResolver resolves an option id; ok is false when it does not exist.
type OptionResolver func(optionID int64) (opt domain.Option, ok bool)

// Score grades a submission. submitted is aligned positionally with the
// quiz's question order. A nil resolver only knows the quiz's own options.
func Score(quiz domain.Quiz, submitted []int64, resolve OptionResolver) (domain.ScoreResult, error) {
	if len(submitted) != len(quiz.Questions) || len(quiz.Questions) == 0 {
		return domain.ScoreResult{}, domain.ErrOptionCountMismatch
	}
	if resolve == nil {
		resolve = mapResolver(quiz.Options())
	}

	result := domain.ScoreResult{
		Answers: make([]domain.AnswerBreakdown, 0, len(quiz.Questions)),
	}
	for i, question := range quiz.Questions {
		option, ok := resolve(submitted[i])
		if !ok {
			return domain.ScoreResult{}, domain.ErrOptionNotFound
		}
		if option.QuestionID != question.ID {
			return domain.ScoreResult{}, domain.ErrOptionQuestionMismatch
		}
		if option.IsCorrect {
			result.Correct++
		}
		result.Answers = append(result.Answers, domain.AnswerBreakdown{
			QuestionID:     question.ID,
			QuestionText:   question.Text,
			ProvidedOption: option.ID,
			IsCorrect:      option.IsCorrect,
		})
	}
	result.Score = roundScore(result.Correct, len(quiz.Questions))
	return result, nil
}

// roundScore is correct/total rounded half-up to two decimals, computed on
// integers so that x.xx5 boundaries are exact.
func roundScore(correct, total int) domain.Score {
	hundredths := (200*correct + total) / (2 * total)
	return domain.Score(float64(hundredths) / 100)
}

func mapResolver(options map[int64]domain.Option) OptionResolver {
	return func(id int64) (domain.Option, bool) {
		opt, ok := options[id]
		return opt, ok
	}
}
