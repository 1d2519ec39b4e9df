package workspace

import (
	"context"
	"strings"

	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
)

const defaultDraftTitle = "Untitled Document"

func newDocumentDraft() *models.DocumentDraft {
	return &models.DocumentDraft{Title: defaultDraftTitle}
}

// Drafts returns saved documents, most recently updated first.
func (w *Workspace) Drafts() []*models.SavedDraft {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]*models.SavedDraft, len(w.drafts))
	for i, d := range w.drafts {
		out[i] = copyOf(d)
	}
	return out
}

func (w *Workspace) CurrentDraft() *models.DocumentDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyOf(w.currentDraft)
}

// NewDraft discards the open document and starts a blank one.
func (w *Workspace) NewDraft() *models.DocumentDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.currentDraft = newDocumentDraft()
	return copyOf(w.currentDraft)
}

// GenerateDraft asks the gateway for a document and replaces the open
// document's content with it. On failure the content is left untouched.
func (w *Workspace) GenerateDraft(ctx context.Context, instructions string) (*models.DocumentDraft, error) {
	if strings.TrimSpace(instructions) == "" {
		return nil, &domain.ValidationError{Message: "Please provide instructions for the document."}
	}

	w.mu.Lock()
	if w.draftBusy {
		w.mu.Unlock()
		return nil, busyError("draft", w.currentDraft.ID, "Document generation")
	}
	w.draftBusy = true
	w.currentDraft.Instructions = instructions
	w.mu.Unlock()

	result := w.gateway.DraftDocument(ctx, instructions)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.draftBusy = false

	if result.IsError() {
		w.logger.Warn("document generation failed", "error", result.Text)
		return copyOf(w.currentDraft), &domain.UpstreamError{Message: result.Text}
	}

	w.currentDraft.Content = result.Text
	return copyOf(w.currentDraft), nil
}

// DictateInstructions transcribes audio and appends it to the open
// document's instructions.
func (w *Workspace) DictateInstructions(ctx context.Context, audio []byte, mimeType string) (*models.DocumentDraft, error) {
	w.mu.Lock()
	if w.dictationBusy {
		w.mu.Unlock()
		return nil, busyError("draft", w.currentDraft.ID, "Dictation")
	}
	w.dictationBusy = true
	w.mu.Unlock()

	result := w.gateway.TranscribeAudio(ctx, audio, mimeType)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.dictationBusy = false

	if result.IsError() {
		return copyOf(w.currentDraft), &domain.UpstreamError{Message: result.Text}
	}

	text := strings.TrimSpace(result.Text)
	if existing := strings.TrimSpace(w.currentDraft.Instructions); existing != "" {
		text = existing + " " + text
	}
	w.currentDraft.Instructions = text
	return copyOf(w.currentDraft), nil
}

// UpdateDraft applies user edits to the open document.
func (w *Workspace) UpdateDraft(update *services.DraftUpdate) *models.DocumentDraft {
	w.mu.Lock()
	defer w.mu.Unlock()

	if update.Title != nil {
		w.currentDraft.Title = *update.Title
	}
	if update.Instructions != nil {
		w.currentDraft.Instructions = *update.Instructions
	}
	if update.Content != nil {
		w.currentDraft.Content = *update.Content
	}
	return copyOf(w.currentDraft)
}

// SaveDraft persists the open document. The first save assigns its ID and
// creation time; later saves update the same record.
func (w *Workspace) SaveDraft(ctx context.Context) (*models.SavedDraft, error) {
	w.persistMu.Lock()
	defer w.persistMu.Unlock()

	w.mu.Lock()
	draft := w.currentDraft
	if strings.TrimSpace(draft.Content) == "" {
		w.mu.Unlock()
		return nil, &domain.ValidationError{Message: "Cannot save an empty document."}
	}

	now := w.millis()
	if draft.ID == "" {
		draft.ID = w.newID()
		draft.CreatedAt = now
	}
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		title = defaultDraftTitle
	}

	saved := &models.SavedDraft{
		ID:           draft.ID,
		Title:        title,
		Instructions: draft.Instructions,
		Content:      draft.Content,
		CreatedAt:    draft.CreatedAt,
		UpdatedAt:    now,
	}
	w.drafts = upsert(w.drafts, saved)
	sortByRecency(w.drafts)
	w.mu.Unlock()

	if err := w.repos.Drafts.Save(detached(ctx), w.ownerID, copyOf(saved)); err != nil {
		return nil, err
	}
	w.logger.Info("draft saved", "draft_id", saved.ID)
	return copyOf(saved), nil
}

// LoadDraft opens a saved document for editing.
func (w *Workspace) LoadDraft(id string) (*models.DocumentDraft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	saved, ok := find(w.drafts, id)
	if !ok {
		return nil, &domain.NotFoundError{Message: "draft not found"}
	}
	w.currentDraft = &models.DocumentDraft{
		ID:           saved.ID,
		Title:        saved.Title,
		Instructions: saved.Instructions,
		Content:      saved.Content,
		CreatedAt:    saved.CreatedAt,
	}
	return copyOf(w.currentDraft), nil
}

// DeleteDraft removes a saved document. If it is open, the editor keeps its
// content but forgets the ID so the next save creates a new record.
func (w *Workspace) DeleteDraft(ctx context.Context, id string) error {
	w.persistMu.Lock()
	defer w.persistMu.Unlock()

	w.mu.Lock()
	w.drafts = remove(w.drafts, id)
	if w.currentDraft.ID == id {
		w.currentDraft.ID = ""
		w.currentDraft.CreatedAt = 0
	}
	w.mu.Unlock()

	return w.repos.Drafts.Delete(detached(ctx), w.ownerID, id)
}
