package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weapon-quiz-service/internal/domain"
)

func twoItemPool() []domain.Item {
	return []domain.Item{
		{ID: "a", Name: "Claymore", CorrectAnswers: []string{"Strength"}},
		{ID: "b", Name: "Moonveil", CorrectAnswers: []string{"Dexterity", "Intelligence"}},
	}
}

func TestSessionEndToEnd(t *testing.T) {
	s := NewSession("s1", twoItemPool())

	item, err := s.CurrentItem()
	require.NoError(t, err)
	assert.Equal(t, "a", item.ID)

	correct, err := s.SubmitGuess("Strength")
	require.NoError(t, err)
	assert.True(t, correct)
	assert.Equal(t, 1, s.Progress().Cursor)
	assert.False(t, s.IsFinished())

	correct, err = s.SubmitGuess("Faith")
	require.NoError(t, err)
	assert.False(t, correct)
	assert.Equal(t, 2, s.Progress().Cursor)
	assert.True(t, s.IsFinished())

	res, err := s.Results()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.CorrectCount)
	assert.Equal(t, 50.00, res.Percentage)
	assert.Equal(t, []string{"Claymore"}, res.Correct)
	assert.Equal(t, []string{"Moonveil"}, res.Incorrect)
}

func TestSessionBatchGuess(t *testing.T) {
	s := NewSession("s1", twoItemPool())

	results, err := s.SubmitGuesses([]string{"Strength", "Dexterity"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, results)
	assert.Equal(t, 1, s.Progress().Cursor)

	outcomes := s.Outcomes()
	require.Len(t, outcomes, 2)
	assert.Equal(t, "a", outcomes[0].ItemID)
	assert.Equal(t, "a", outcomes[1].ItemID)
}

func TestSessionEmptyBatchDoesNotAdvance(t *testing.T) {
	s := NewSession("s1", twoItemPool())

	_, err := s.SubmitGuesses(nil)

	assert.ErrorIs(t, err, domain.ErrEmptyGuess)
	assert.Equal(t, 0, s.Progress().Cursor)
	assert.Empty(t, s.Outcomes())
}

func TestSessionGuessIsCaseAndWhitespaceInsensitive(t *testing.T) {
	for _, guess := range []string{" Strength ", "strength", "STRENGTH\t"} {
		s := NewSession("s1", twoItemPool())
		correct, err := s.SubmitGuess(guess)
		require.NoError(t, err)
		assert.True(t, correct, "guess %q", guess)
	}

	s := NewSession("s1", twoItemPool())
	correct, err := s.SubmitGuess("   ")
	require.NoError(t, err)
	assert.False(t, correct)
}

func TestSessionEmptyPool(t *testing.T) {
	s := NewSession("empty", nil)

	assert.True(t, s.IsFinished())
	res, err := s.Results()
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0, res.CorrectCount)
	assert.Equal(t, 0.0, res.Percentage)

	_, err = s.CurrentItem()
	assert.True(t, errors.Is(err, domain.ErrSessionFinished))
}

func TestSessionMisuse(t *testing.T) {
	s := NewSession("s1", twoItemPool()[:1])

	_, err := s.Results()
	assert.ErrorIs(t, err, domain.ErrSessionNotFinished)

	_, err = s.SubmitGuess("Strength")
	require.NoError(t, err)

	_, err = s.SubmitGuess("Strength")
	assert.ErrorIs(t, err, domain.ErrSessionFinished)
	_, err = s.SubmitGuesses([]string{"Strength"})
	assert.ErrorIs(t, err, domain.ErrSessionFinished)
	assert.Len(t, s.Outcomes(), 1)
}

func TestSessionCursorIsMonotonic(t *testing.T) {
	pool := []domain.Item{
		{ID: "1", Name: "One", CorrectAnswers: []string{"Faith"}},
		{ID: "2", Name: "Two", CorrectAnswers: []string{"Faith"}},
		{ID: "3", Name: "Three", CorrectAnswers: []string{"Faith"}},
	}
	s := NewSession("s1", pool)

	guesses := 0
	for i := 0; i < len(pool); i++ {
		require.Equal(t, i, s.Progress().Cursor)
		if i == 1 {
			_, err := s.SubmitGuesses([]string{"Faith", "Arcane", "faith"})
			require.NoError(t, err)
			guesses += 3
		} else {
			_, err := s.SubmitGuess("Arcane")
			require.NoError(t, err)
			guesses++
		}
		assert.Len(t, s.Outcomes(), guesses)
	}
	assert.True(t, s.IsFinished())

	res, err := s.Results()
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 2, res.CorrectCount)
	assert.Equal(t, 40.0, res.Percentage)
}

func TestSessionPercentageRounding(t *testing.T) {
	pool := []domain.Item{
		{ID: "1", Name: "One", CorrectAnswers: []string{"Faith"}},
		{ID: "2", Name: "Two", CorrectAnswers: []string{"Faith"}},
		{ID: "3", Name: "Three", CorrectAnswers: []string{"Faith"}},
	}
	s := NewSession("s1", pool)
	for _, g := range []string{"Faith", "no", "no"} {
		_, err := s.SubmitGuess(g)
		require.NoError(t, err)
	}

	res, err := s.Results()
	require.NoError(t, err)
	assert.Equal(t, 33.33, res.Percentage)
}

func TestSessionSnapshot(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewSessionWithClock("s1", twoItemPool(), func() time.Time { return created })
	_, _ = s.SubmitGuess("strength")

	snap := s.Snapshot()

	assert.Equal(t, domain.SessionSnapshot{
		ID:           "s1",
		Cursor:       1,
		PoolSize:     2,
		CorrectCount: 1,
		Answered:     1,
		CreatedAt:    created,
	}, snap)
}
