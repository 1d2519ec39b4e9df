package handler

import (
	"log/slog"
	"net/http"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
	"dharmabot/internal/httputil"
)

// AuthHandler handles registration, login and the current session.
type AuthHandler struct {
	auth       services.AuthService
	workspaces services.WorkspaceRegistry
	logger     *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth services.AuthService, workspaces services.WorkspaceRegistry, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:       auth,
		workspaces: workspaces,
		logger:     logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MeResponse is the current user with the features their profile unlocks.
type MeResponse struct {
	User     *models.SessionUser `json:"user"`
	Features []models.Feature    `json:"features"`
	Welcome  string              `json:"welcome"`
}

func newMeResponse(user *models.SessionUser) *MeResponse {
	return &MeResponse{
		User:     user,
		Features: user.ProfileType.Features(),
		Welcome:  user.ProfileType.Welcome(),
	}
}

// Register creates an account and logs it in
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	result, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// Login starts a session
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Logout ends the session behind the token and drops the cached workspace
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), httputil.GetSessionID(r)); err != nil {
		handleError(w, err)
		return
	}
	h.workspaces.Evict(httputil.GetUserID(r))

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the logged-in user
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := httputil.GetUser(r)
	if user == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newMeResponse(user))
}
