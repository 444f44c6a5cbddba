// Package cachekey maps (quiz, user, company) triples to cache keys and
// builds the wildcard patterns used to query them.
//
// Keys have the form quiz_result:<quiz_id>:<user_id>:<company_id>. The
// scheme is one-way: company names are not part of the key, so callers
// resolve a company to its id before building a pattern.
package cachekey

import (
	"strconv"
	"strings"
)

const (
	Prefix   = "quiz_result"
	Wildcard = "*"
	sep      = ":"
	segments = 4
)

// ResultKey is the canonical key of one cached result.
func ResultKey(quizID, userID, companyID int64) string {
	return build(id(quizID), id(userID), id(companyID))
}

// UserQuizPattern matches one user's result for one quiz in any company.
func UserQuizPattern(quizID, userID int64) string {
	return build(id(quizID), id(userID), Wildcard)
}

// UserPattern matches every result of a user.
func UserPattern(userID int64) string {
	return build(Wildcard, id(userID), Wildcard)
}

// CompanyPattern matches every result recorded in a company.
func CompanyPattern(companyID int64) string {
	return build(Wildcard, Wildcard, id(companyID))
}

// QuizPattern matches every result of a quiz.
func QuizPattern(quizID int64) string {
	return build(id(quizID), Wildcard, Wildcard)
}

// Match reports whether key satisfies pattern. A wildcard segment matches
// any run of characters up to the next colon; it never spans a colon.
func Match(pattern, key string) bool {
	ps := strings.Split(pattern, sep)
	ks := strings.Split(key, sep)
	if len(ps) != len(ks) {
		return false
	}
	for i := range ps {
		if ps[i] == Wildcard {
			continue
		}
		if ps[i] != ks[i] {
			return false
		}
	}
	return true
}

// Parse splits a canonical key into its ids.
func Parse(key string) (quizID, userID, companyID int64, ok bool) {
	parts := strings.Split(key, sep)
	if len(parts) != segments || parts[0] != Prefix {
		return 0, 0, 0, false
	}
	var ids [3]int64
	for i, part := range parts[1:] {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, 0, 0, false
		}
		ids[i] = n
	}
	return ids[0], ids[1], ids[2], true
}

func build(quiz, user, company string) string {
	return Prefix + sep + quiz + sep + user + sep + company
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
