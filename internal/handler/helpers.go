package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"dharmabot/internal/domain"
	"dharmabot/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var (
		conflictErr   *domain.ConflictError
		upstreamErr   *domain.UpstreamError
		validationErr *domain.ValidationError
		authErr       *domain.UnauthorizedError
		maxBytesErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validationErr):
		httputil.RespondError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &authErr):
		httputil.RespondError(w, http.StatusUnauthorized, authErr.Message)
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondProblem(w, http.StatusConflict, conflictCode(conflictErr), conflictErr.Error())
	case errors.As(err, &upstreamErr):
		httputil.RespondError(w, http.StatusBadGateway, upstreamErr.Message)
	case errors.Is(err, domain.ErrQuotaExceeded):
		httputil.RespondProblem(w, http.StatusInsufficientStorage, httputil.CodeStorageFull,
			"Storage is full. Delete old chats, drafts or notes and try again.")
	case errors.As(err, &maxBytesErr):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
	default:
		slog.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// conflictCode separates duplicate accounts from busy inference calls.
func conflictCode(err *domain.ConflictError) string {
	if err.ResourceType == "user" {
		return httputil.CodeAlreadyExists
	}
	return httputil.CodeRequestInProgress
}

// handleParseError reports a body that could not be decoded. Oversized
// bodies get a 413.
func handleParseError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
}

// requirePathID reads a path parameter and writes a 400 when it is empty.
func requirePathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return id, true
}
