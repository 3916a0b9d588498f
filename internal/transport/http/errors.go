package http

import (
	"errors"
	"net/http"

	"weapon-quiz-service/internal/domain"
)

type errorPayload struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func errorBody(err error) errorPayload {
	return errorPayload{
		Message:   err.Error(),
		Retryable: errors.Is(err, domain.ErrSourceUnavailable) || errors.Is(err, domain.ErrGuessTooSoon),
	}
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionFinished), errors.Is(err, domain.ErrSessionNotFinished):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyGuess):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrGuessTooSoon), errors.Is(err, domain.ErrGuessPending):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrSourceUnavailable), errors.Is(err, domain.ErrMalformedRecord):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
