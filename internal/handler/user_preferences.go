package handler

import (
	"log/slog"
	"net/http"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
	"dharmabot/internal/httputil"
)

// UserPreferencesHandler handles user preferences HTTP requests
type UserPreferencesHandler struct {
	service services.UserPreferencesService
	logger  *slog.Logger
}

// NewUserPreferencesHandler creates a new user preferences handler
func NewUserPreferencesHandler(service services.UserPreferencesService, logger *slog.Logger) *UserPreferencesHandler {
	return &UserPreferencesHandler{
		service: service,
		logger:  logger,
	}
}

// preferencesPatch is the PATCH body. A JSON null model resets the model
// choice to the server default.
type preferencesPatch struct {
	Theme            *string                   `json:"theme"`
	WebSearchDefault *bool                     `json:"webSearchDefault"`
	OptimizeQueries  *bool                     `json:"optimizeQueries"`
	Model            httputil.Optional[string] `json:"model"`
}

func (p *preferencesPatch) toRequest() *models.UpdatePreferencesRequest {
	req := &models.UpdatePreferencesRequest{
		Theme:            p.Theme,
		WebSearchDefault: p.WebSearchDefault,
		OptimizeQueries:  p.OptimizeQueries,
	}
	if model, ok := p.Model.Get(); ok {
		req.Model = &model
	}
	return req
}

// GetPreferences retrieves user preferences
// GET /api/users/me/preferences
func (h *UserPreferencesHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.service.GetPreferences(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences updates user preferences
// PATCH /api/users/me/preferences
func (h *UserPreferencesHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch preferencesPatch
	if err := httputil.ParseJSON(w, r, &patch); err != nil {
		handleParseError(w, err)
		return
	}

	prefs, err := h.service.UpdatePreferences(r.Context(), httputil.GetUserID(r), patch.toRequest())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prefs)
}
