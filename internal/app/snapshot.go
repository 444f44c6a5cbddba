package app

import "quiz-results-service/internal/domain"

type snapshotField struct {
	key   string
	value any
}

// BuildSnapshot denormalizes a scored submission into the cache document.
// Field order: identifying fields, question texts, score, then the provided
// option and correctness flag of each question.
func BuildSnapshot(quiz domain.Quiz, company domain.Company, user domain.User, scored domain.ScoreResult) (domain.CacheEntry, error) {
	fields := []snapshotField{
		{domain.FieldQuizID, quiz.ID},
		{domain.FieldQuizName, quiz.Name},
		{domain.FieldQuizDescription, quiz.Description},
		{domain.FieldCompanyID, company.ID},
		{domain.FieldCompanyName, company.Name},
		{domain.FieldCompanyDescription, company.Description},
		{domain.FieldUserID, user.ID},
		{domain.FieldUserEmail, user.Email},
	}
	for _, answer := range scored.Answers {
		fields = append(fields, snapshotField{domain.QuestionTextField(answer.QuestionID), answer.QuestionText})
	}
	fields = append(fields, snapshotField{domain.FieldScore, scored.Score})
	for _, answer := range scored.Answers {
		fields = append(fields,
			snapshotField{domain.ProvidedOptionField(answer.QuestionID), answer.ProvidedOption},
			snapshotField{domain.IsCorrectField(answer.QuestionID), answer.IsCorrect},
		)
	}

	var entry domain.CacheEntry
	for _, f := range fields {
		if err := entry.Set(f.key, f.value); err != nil {
			return domain.CacheEntry{}, err
		}
	}
	return entry, nil
}
