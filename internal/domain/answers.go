package domain

import "strings"

// NormalizeAnswer trims and case-folds an answer token for comparison.
func NormalizeAnswer(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// Accepts reports whether token matches any of the item's correct answers.
func (i Item) Accepts(token string) bool {
	guess := NormalizeAnswer(token)
	if guess == "" {
		return false
	}
	for _, answer := range i.CorrectAnswers {
		if NormalizeAnswer(answer) == guess {
			return true
		}
	}
	return false
}
