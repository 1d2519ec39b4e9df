package handler

import (
	"net/http"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
	"dharmabot/internal/httputil"
)

type sessionsResponse struct {
	Sessions        []*models.ChatSession `json:"sessions"`
	ActiveSessionID string                `json:"activeSessionId,omitempty"`
}

type sessionResponse struct {
	Session *models.ChatSession `json:"session"`
}

// messageRequest is a chat turn. Omitted webSearch and model fall back to the
// user's preferences.
type messageRequest struct {
	Text        string                `json:"text"`
	Attachments []services.Attachment `json:"attachments"`
	WebSearch   *bool                 `json:"webSearch"`
	Model       string                `json:"model"`
}

type renameRequest struct {
	Title string `json:"title"`
}

// ListSessions returns chat sessions, newest first
// GET /api/chat/sessions
func (h *WorkspaceHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	resp := sessionsResponse{Sessions: ws.Sessions()}
	if active := ws.ActiveSession(); active != nil {
		resp.ActiveSessionID = active.ID
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// ActiveSession returns the open conversation, or null
// GET /api/chat/active
func (h *WorkspaceHandler) ActiveSession(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, sessionResponse{Session: ws.ActiveSession()})
}

// NewSession clears the active conversation
// POST /api/chat/sessions/new
func (h *WorkspaceHandler) NewSession(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.StartNewSession()
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage runs one chat turn and returns the updated session
// POST /api/chat/messages
func (h *WorkspaceHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	prefs := h.userPreferences(r)
	submit := &services.SubmitMessageRequest{
		Text:        req.Text,
		Attachments: req.Attachments,
		WebSearch:   prefs.WebSearchDefault,
		Model:       req.Model,
	}
	if req.WebSearch != nil {
		submit.WebSearch = *req.WebSearch
	}
	if submit.Model == "" {
		submit.Model = prefs.Model
	}

	session, err := ws.SubmitUserMessage(r.Context(), submit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sessionResponse{Session: session})
}

// LoadSession makes a stored session the active one
// POST /api/chat/sessions/{id}/load
func (h *WorkspaceHandler) LoadSession(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "id")
	if !ok {
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	session, err := ws.LoadSession(id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, sessionResponse{Session: session})
}

// RenameSession sets a session title
// PATCH /api/chat/sessions/{id}
func (h *WorkspaceHandler) RenameSession(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "id")
	if !ok {
		return
	}
	var req renameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	session, err := ws.RenameSession(r.Context(), id, req.Title)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, sessionResponse{Session: session})
}

// DeleteSession removes a session
// DELETE /api/chat/sessions/{id}
func (h *WorkspaceHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "id")
	if !ok {
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	if err := ws.DeleteSession(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
