package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/zmarolt/knjiznica/internal/issuance"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			zap.L().Error("encoding response", zap.Error(err))
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// issuanceError maps workflow errors onto HTTP responses. Validation
// failures carry their reason to the client; anything unexpected is logged
// and reported as an internal error.
func issuanceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, issuance.ErrBookNotFound),
		errors.Is(err, issuance.ErrUserNotFound),
		errors.Is(err, issuance.ErrRequestNotFound),
		errors.Is(err, issuance.ErrLoanNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, issuance.ErrDuplicateRequest),
		errors.Is(err, issuance.ErrIssuanceBlocked),
		errors.Is(err, issuance.ErrInvalidTransition):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, issuance.ErrInvariantViolation):
		logger.Error("availability invariant violated", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, err.Error())
	default:
		logger.Error("issuance operation failed", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
