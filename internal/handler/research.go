package handler

import (
	"net/http"
	"strings"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/httputil"
	"dharmabot/internal/service/export"
)

type researchResponse struct {
	Research *models.ResearchDraft `json:"research"`
}

// runResearchRequest starts a research run. A missing optimize flag uses the
// user's preference.
type runResearchRequest struct {
	Query    string `json:"query"`
	Optimize *bool  `json:"optimize"`
}

// ListResearch returns saved research, newest first
// GET /api/research
func (h *WorkspaceHandler) ListResearch(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"research": ws.ResearchRecords()})
}

// CurrentResearch returns the latest unsaved or loaded result
// GET /api/research/current
func (h *WorkspaceHandler) CurrentResearch(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, researchResponse{Research: ws.CurrentResearch()})
}

// NewResearch clears the research view
// POST /api/research/new
func (h *WorkspaceHandler) NewResearch(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, researchResponse{Research: ws.NewResearch()})
}

// RunResearch performs deep research on a query
// POST /api/research/run
func (h *WorkspaceHandler) RunResearch(w http.ResponseWriter, r *http.Request) {
	var req runResearchRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	optimize := h.userPreferences(r).OptimizeQueries
	if req.Optimize != nil {
		optimize = *req.Optimize
	}

	result, err := ws.PerformResearch(r.Context(), req.Query, optimize)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, researchResponse{Research: result})
}

// RenameResearch sets the title of the current result
// PATCH /api/research/current
func (h *WorkspaceHandler) RenameResearch(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, researchResponse{Research: ws.SetResearchTitle(req.Title)})
}

// SaveResearch stores the current result
// POST /api/research/save
func (h *WorkspaceHandler) SaveResearch(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	saved, err := ws.SaveResearch(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, saved)
}

// LoadResearch opens a saved result
// POST /api/research/{id}/load
func (h *WorkspaceHandler) LoadResearch(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "id")
	if !ok {
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	result, err := ws.LoadResearch(id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, researchResponse{Research: result})
}

// DeleteResearch removes a saved result
// DELETE /api/research/{id}
func (h *WorkspaceHandler) DeleteResearch(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "id")
	if !ok {
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	if err := ws.DeleteResearch(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportResearch downloads the current result with its citations
// GET /api/research/current/export?format=docx|txt
func (h *WorkspaceHandler) ExportResearch(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	result := ws.CurrentResearch()
	if strings.TrimSpace(result.Results) == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Nothing to export yet.")
		return
	}
	h.respondExport(w, r, &export.Document{
		Title:     result.Title,
		Query:     result.Query,
		Markdown:  result.Results,
		Citations: result.Citations,
	}, "research")
}
