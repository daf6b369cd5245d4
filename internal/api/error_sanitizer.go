package api

import (
	"errors"
	"net/http"

	"github.com/pharmacycle/pharma-cycle/internal/pkg/httputil"
	"github.com/pharmacycle/pharma-cycle/internal/service/analytics"
	"github.com/pharmacycle/pharma-cycle/internal/service/partner"
)

// statusFor maps service-layer sentinel errors to HTTP status codes.
// Anything unrecognised is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, analytics.ErrInvalidRange),
		errors.Is(err, partner.ErrCodeRequired):
		return http.StatusBadRequest
	case errors.Is(err, partner.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, partner.ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, analytics.ErrNarratorUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with its mapped status. Client errors
// carry their message; 500s are logged and answered generically so store
// and model details never reach the caller.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		httputil.InternalError(w, r, err)
		return
	}
	httputil.Error(w, code, err.Error())
}
