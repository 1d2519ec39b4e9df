package workspace

import (
	"context"
	"strings"

	"dharmabot/internal/config"
	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"
)

const defaultResearchTitle = "Untitled Research"

// ResearchRecords returns saved research, newest first.
func (w *Workspace) ResearchRecords() []*models.SavedResearch {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]*models.SavedResearch, len(w.research))
	for i, r := range w.research {
		out[i] = copyOf(r)
	}
	return out
}

func (w *Workspace) CurrentResearch() *models.ResearchDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyOf(w.currentResearch)
}

// NewResearch clears the research view.
func (w *Workspace) NewResearch() *models.ResearchDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.currentResearch = &models.ResearchDraft{Citations: []models.Source{}}
	return copyOf(w.currentResearch)
}

// PerformResearch runs deep research on query, optionally rephrasing it
// first. The title is derived from the query as typed.
func (w *Workspace) PerformResearch(ctx context.Context, query string, optimize bool) (*models.ResearchDraft, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &domain.ValidationError{Message: "Please enter a research query"}
	}

	w.mu.Lock()
	if w.researchBusy {
		w.mu.Unlock()
		return nil, busyError("research", "", "Research")
	}
	w.researchBusy = true
	w.mu.Unlock()

	finalQuery := query
	if optimize {
		finalQuery = w.gateway.RephraseQuery(ctx, query)
		w.logger.Debug("research query optimized", "original", query, "optimized", finalQuery)
	}

	result := w.gateway.DeepResearch(ctx, finalQuery)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.researchBusy = false

	if result.IsError() {
		w.currentResearch = &models.ResearchDraft{Query: query, Citations: []models.Source{}}
		return copyOf(w.currentResearch), &domain.UpstreamError{Message: result.Text}
	}

	citations := result.Sources
	if citations == nil {
		citations = []models.Source{}
	}
	draft := &models.ResearchDraft{
		Title:     preview(query, config.ResearchTitlePreviewLength),
		Query:     query,
		Results:   result.Text,
		Citations: citations,
	}
	if finalQuery != query {
		draft.OptimizedQuery = finalQuery
	}
	w.currentResearch = draft
	return copyOf(draft), nil
}

// SetResearchTitle renames the current research before it is saved.
func (w *Workspace) SetResearchTitle(title string) *models.ResearchDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.currentResearch.Title = title
	return copyOf(w.currentResearch)
}

// SaveResearch persists the current research. It needs both a query and
// results. Saving again updates the same record.
func (w *Workspace) SaveResearch(ctx context.Context) (*models.SavedResearch, error) {
	w.persistMu.Lock()
	defer w.persistMu.Unlock()

	w.mu.Lock()
	current := w.currentResearch
	if current.Results == "" || current.Query == "" {
		w.mu.Unlock()
		return nil, &domain.ValidationError{Message: "Run a research query before saving."}
	}
	if current.ID == "" {
		current.ID = w.newID()
	}
	title := strings.TrimSpace(current.Title)
	if title == "" {
		title = defaultResearchTitle
	}

	saved := &models.SavedResearch{
		ID:        current.ID,
		Title:     title,
		Query:     current.Query,
		Results:   current.Results,
		Citations: current.Citations,
		Timestamp: w.millis(),
	}
	w.research = upsert(w.research, saved)
	sortByRecency(w.research)
	w.mu.Unlock()

	if err := w.repos.Research.Save(detached(ctx), w.ownerID, copyOf(saved)); err != nil {
		return nil, err
	}
	w.logger.Info("research saved", "research_id", saved.ID)
	return copyOf(saved), nil
}

// LoadResearch shows a saved research record.
func (w *Workspace) LoadResearch(id string) (*models.ResearchDraft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	saved, ok := find(w.research, id)
	if !ok {
		return nil, &domain.NotFoundError{Message: "research not found"}
	}
	w.currentResearch = &models.ResearchDraft{
		ID:        saved.ID,
		Title:     saved.Title,
		Query:     saved.Query,
		Results:   saved.Results,
		Citations: saved.Citations,
	}
	return copyOf(w.currentResearch), nil
}

// DeleteResearch removes a saved record. The view keeps showing it as unsaved.
func (w *Workspace) DeleteResearch(ctx context.Context, id string) error {
	w.persistMu.Lock()
	defer w.persistMu.Unlock()

	w.mu.Lock()
	w.research = remove(w.research, id)
	if w.currentResearch.ID == id {
		w.currentResearch.ID = ""
	}
	w.mu.Unlock()

	return w.repos.Research.Delete(detached(ctx), w.ownerID, id)
}
