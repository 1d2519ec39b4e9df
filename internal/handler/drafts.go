package handler

import (
	"net/http"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
	"dharmabot/internal/httputil"
	"dharmabot/internal/service/export"
)

type draftResponse struct {
	Draft *models.DocumentDraft `json:"draft"`
}

type generateDraftRequest struct {
	Instructions string `json:"instructions"`
}

// ListDrafts returns saved drafts, newest first
// GET /api/drafts
func (h *WorkspaceHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"drafts": ws.Drafts()})
}

// CurrentDraft returns the open document
// GET /api/drafts/current
func (h *WorkspaceHandler) CurrentDraft(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, draftResponse{Draft: ws.CurrentDraft()})
}

// NewDraft opens a blank document
// POST /api/drafts/new
func (h *WorkspaceHandler) NewDraft(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, draftResponse{Draft: ws.NewDraft()})
}

// GenerateDraft writes the document from instructions
// POST /api/drafts/generate
func (h *WorkspaceHandler) GenerateDraft(w http.ResponseWriter, r *http.Request) {
	var req generateDraftRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	draft, err := ws.GenerateDraft(r.Context(), req.Instructions)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, draftResponse{Draft: draft})
}

// DictateDraft transcribes spoken instructions into the open document
// POST /api/drafts/dictate
func (h *WorkspaceHandler) DictateDraft(w http.ResponseWriter, r *http.Request) {
	audio, mimeType, _, err := readAudio(w, r)
	if err != nil {
		handleError(w, err)
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	draft, err := ws.DictateInstructions(r.Context(), audio, mimeType)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, draftResponse{Draft: draft})
}

// UpdateDraft applies manual edits to the open document
// PATCH /api/drafts/current
func (h *WorkspaceHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var update services.DraftUpdate
	if err := httputil.ParseJSON(w, r, &update); err != nil {
		handleParseError(w, err)
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, draftResponse{Draft: ws.UpdateDraft(&update)})
}

// SaveDraft stores the open document
// POST /api/drafts/save
func (h *WorkspaceHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	saved, err := ws.SaveDraft(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, saved)
}

// LoadDraft opens a saved draft
// POST /api/drafts/{id}/load
func (h *WorkspaceHandler) LoadDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "id")
	if !ok {
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	draft, err := ws.LoadDraft(id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, draftResponse{Draft: draft})
}

// DeleteDraft removes a saved draft
// DELETE /api/drafts/{id}
func (h *WorkspaceHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "id")
	if !ok {
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	if err := ws.DeleteDraft(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportDraft downloads the open document
// GET /api/drafts/current/export?format=docx|txt
func (h *WorkspaceHandler) ExportDraft(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	draft := ws.CurrentDraft()
	if draft.Content == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Nothing to export yet.")
		return
	}
	h.respondExport(w, r, &export.Document{Title: draft.Title, Markdown: draft.Content}, "document")
}
