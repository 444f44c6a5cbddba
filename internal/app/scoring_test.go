package app

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-results-service/internal/domain"
)

// generatedQuiz has n questions; question i has a correct option
// 100*(i+1)+1 and a wrong option 100*(i+1)+2.
func generatedQuiz(n int) domain.Quiz {
	quiz := domain.Quiz{ID: 1, CompanyID: 2}
	for i := 0; i < n; i++ {
		qid := int64(i + 1)
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID: qid,
			Options: []domain.Option{
				{ID: qid*100 + 1, QuestionID: qid, IsCorrect: true},
				{ID: qid*100 + 2, QuestionID: qid},
			},
		})
	}
	return quiz
}

func TestScoreCases(t *testing.T) {
	quiz := testCatalog().Quizzes[0]

	tests := []struct {
		name      string
		submitted []int64
		score     domain.Score
		correct   int
		err       error
	}{
		{name: "all correct", submitted: []int64{10, 30}, score: 1, correct: 2},
		{name: "half", submitted: []int64{11, 30}, score: 0.5, correct: 1},
		{name: "none", submitted: []int64{11, 31}, score: 0, correct: 0},
		{name: "too few", submitted: []int64{10}, err: domain.ErrOptionCountMismatch},
		{name: "too many", submitted: []int64{10, 30, 31}, err: domain.ErrOptionCountMismatch},
		{name: "unknown option", submitted: []int64{10, 99}, err: domain.ErrOptionNotFound},
		{name: "options swapped", submitted: []int64{30, 10}, err: domain.ErrOptionQuestionMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Score(quiz, tc.submitted, nil)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.score, got.Score)
			assert.Equal(t, tc.correct, got.Correct)
			require.Len(t, got.Answers, len(tc.submitted))
			for i, answer := range got.Answers {
				assert.Equal(t, quiz.Questions[i].ID, answer.QuestionID)
				assert.Equal(t, tc.submitted[i], answer.ProvidedOption)
			}
		})
	}
}

func TestScoreRejectsEmptyQuiz(t *testing.T) {
	_, err := Score(domain.Quiz{ID: 1}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrOptionCountMismatch)
}

func TestRoundScoreHalfUp(t *testing.T) {
	tests := []struct {
		correct, total int
		want           domain.Score
	}{
		{1, 3, 0.33},
		{2, 3, 0.67},
		{1, 8, 0.13},
		{3, 40, 0.08},
		{1, 200, 0.01},
		{0, 7, 0},
		{7, 7, 1},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, roundScore(tc.correct, tc.total), "%d/%d", tc.correct, tc.total)
	}
}

func TestScoreRandomPatterns(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for n := 2; n <= 50; n++ {
		quiz := generatedQuiz(n)
		for round := 0; round < 5; round++ {
			submitted := make([]int64, n)
			correct := 0
			for i := range submitted {
				qid := int64(i + 1)
				if rnd.Intn(2) == 0 {
					submitted[i] = qid*100 + 1
					correct++
				} else {
					submitted[i] = qid*100 + 2
				}
			}
			got, err := Score(quiz, submitted, nil)
			require.NoError(t, err)
			assert.Equal(t, correct, got.Correct)

			score := float64(got.Score)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
			assert.InDelta(t, float64(correct)/float64(n), score, 0.005+1e-9, "n=%d correct=%d", n, correct)
			assert.InDelta(t, math.Round(score*100), score*100, 1e-6)
		}
	}
}

func TestScoreExtremes(t *testing.T) {
	for n := 2; n <= 50; n++ {
		quiz := generatedQuiz(n)
		right := make([]int64, n)
		wrong := make([]int64, n)
		for i := range right {
			qid := int64(i + 1)
			right[i] = qid*100 + 1
			wrong[i] = qid*100 + 2
		}
		got, err := Score(quiz, right, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.Score(1), got.Score)

		got, err = Score(quiz, wrong, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.Score(0), got.Score)
	}
}

func TestScoreUsesResolverForForeignOptions(t *testing.T) {
	quiz := testCatalog().Quizzes[0]
	foreign := domain.Option{ID: 90, QuestionID: 3, IsCorrect: true}
	resolve := func(id int64) (domain.Option, bool) {
		if id == foreign.ID {
			return foreign, true
		}
		return mapResolver(quiz.Options())(id)
	}
	_, err := Score(quiz, []int64{10, 90}, resolve)
	assert.ErrorIs(t, err, domain.ErrOptionQuestionMismatch)
}
