package domain

import "errors"

var (
	// ErrSourceUnavailable is returned when the catalog transport fails or answers with a non-success status.
	ErrSourceUnavailable = errors.New("catalog source unavailable")
	// ErrMalformedRecord indicates the catalog response could not be decoded at all.
	ErrMalformedRecord = errors.New("malformed catalog response")
	// ErrSessionFinished is returned when an item is requested or answered after the last one.
	ErrSessionFinished = errors.New("quiz session finished")
	// ErrSessionNotFinished is returned when results are requested too early.
	ErrSessionNotFinished = errors.New("quiz session not finished")
	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrEmptyGuess indicates a batch guess without any answers.
	ErrEmptyGuess = errors.New("no answers submitted")
	// ErrGuessTooSoon is returned by the pacing gate while the cooldown is running.
	ErrGuessTooSoon = errors.New("guess submitted before cooldown elapsed")
	// ErrGuessPending is returned when a guess was already accepted for the current item.
	ErrGuessPending = errors.New("guess already accepted for this item")
)
