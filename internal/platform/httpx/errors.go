package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the transport layer. Domain-level conditions (entity
// not found, ambiguous request) never surface here: they travel inside the
// dispatch result union. These cover transport misuse only.
var (
	ErrValidation  = errors.New("validation failed")
	ErrBadPayload  = errors.New("malformed payload")
	ErrUnavailable = errors.New("service unavailable")
)

// RespondError maps transport errors to RFC7807 responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrBadPayload):
		Problem(w, http.StatusBadRequest, "Malformed Payload", err.Error())
	case errors.Is(err, ErrUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Service Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
