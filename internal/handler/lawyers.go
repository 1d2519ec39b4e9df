package handler

import (
	"net/http"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
	"dharmabot/internal/httputil"
)

// LawyerHandler serves the lawyer directory
type LawyerHandler struct {
	directory services.LawyerDirectory
}

// NewLawyerHandler creates a new lawyer handler
func NewLawyerHandler(directory services.LawyerDirectory) *LawyerHandler {
	return &LawyerHandler{directory: directory}
}

type lawyersResponse struct {
	Lawyers []models.LawyerProfile `json:"lawyers"`
}

// Search filters lawyers by a free-text problem description and city
// GET /api/lawyers?q=&city=
func (h *LawyerHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lawyers := h.directory.Search(q.Get("q"), q.Get("city"))
	httputil.RespondJSON(w, http.StatusOK, lawyersResponse{Lawyers: lawyers})
}

// Cities lists the cities with at least one lawyer
// GET /api/lawyers/cities
func (h *LawyerHandler) Cities(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string][]string{"cities": h.directory.Cities()})
}

// PracticeAreas lists the practice areas represented in the directory
// GET /api/lawyers/practice-areas
func (h *LawyerHandler) PracticeAreas(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string][]models.ServiceArea{"practiceAreas": h.directory.PracticeAreas()})
}
