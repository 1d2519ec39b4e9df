package services

import (
	"context"

	"dharmabot/internal/domain/models"
)

// Attachment is a file sent with a chat message. Content is extracted text
// or a data URL.
type Attachment struct {
	Name              string   `json:"name"`
	MIMEType          string   `json:"mimeType"`
	Size              int64    `json:"size"`
	Content           string   `json:"content,omitempty"`
	ImagePageDataURLs []string `json:"imagePageDataUrls,omitempty"`
}

// SubmitMessageRequest is one chat turn from the user.
type SubmitMessageRequest struct {
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
	WebSearch   bool         `json:"webSearch"`
	// Model overrides the configured default for this turn.
	Model string `json:"model,omitempty"`
}

// DraftUpdate edits the open document. Nil fields are left alone.
type DraftUpdate struct {
	Title        *string `json:"title"`
	Instructions *string `json:"instructions"`
	Content      *string `json:"content"`
}

// VoicenoteUpdate edits the open voice note. Nil fields are left alone.
type VoicenoteUpdate struct {
	Title                *string `json:"title"`
	RawTranscript        *string `json:"rawTranscript"`
	PolishedNoteMarkdown *string `json:"polishedNoteMarkdown"`
}

// RecordingResult is the voice note after the processing pipeline. Errors
// holds the "Error: ..." text of each stage that failed.
type RecordingResult struct {
	Draft  *models.VoicenoteDraft `json:"draft"`
	Errors []string               `json:"errors,omitempty"`
}

// Workspace holds one user's collections and in-progress work. Every
// mutation persists the affected collection before returning.
type Workspace interface {
	// Chat
	Sessions() []*models.ChatSession
	ActiveSession() *models.ChatSession
	StartNewSession()
	SubmitUserMessage(ctx context.Context, req *SubmitMessageRequest) (*models.ChatSession, error)
	LoadSession(id string) (*models.ChatSession, error)
	RenameSession(ctx context.Context, id, title string) (*models.ChatSession, error)
	DeleteSession(ctx context.Context, id string) error

	// Document drafting
	Drafts() []*models.SavedDraft
	CurrentDraft() *models.DocumentDraft
	NewDraft() *models.DocumentDraft
	GenerateDraft(ctx context.Context, instructions string) (*models.DocumentDraft, error)
	DictateInstructions(ctx context.Context, audio []byte, mimeType string) (*models.DocumentDraft, error)
	UpdateDraft(update *DraftUpdate) *models.DocumentDraft
	SaveDraft(ctx context.Context) (*models.SavedDraft, error)
	LoadDraft(id string) (*models.DocumentDraft, error)
	DeleteDraft(ctx context.Context, id string) error

	// Voice notes
	Voicenotes() []*models.Voicenote
	CurrentVoicenote() *models.VoicenoteDraft
	NewVoicenote() *models.VoicenoteDraft
	ProcessRecording(ctx context.Context, audio []byte, mimeType string, durationSeconds float64) (*RecordingResult, error)
	UpdateVoicenote(update *VoicenoteUpdate) *models.VoicenoteDraft
	SaveVoicenote(ctx context.Context) (*models.Voicenote, error)
	LoadVoicenote(id string) (*models.VoicenoteDraft, error)
	DeleteVoicenote(ctx context.Context, id string) error
	Recording(ctx context.Context, ref string) ([]byte, string, error)

	// Research
	ResearchRecords() []*models.SavedResearch
	CurrentResearch() *models.ResearchDraft
	NewResearch() *models.ResearchDraft
	PerformResearch(ctx context.Context, query string, optimize bool) (*models.ResearchDraft, error)
	SetResearchTitle(title string) *models.ResearchDraft
	SaveResearch(ctx context.Context) (*models.SavedResearch, error)
	LoadResearch(id string) (*models.ResearchDraft, error)
	DeleteResearch(ctx context.Context, id string) error
}

// WorkspaceRegistry hands out one Workspace per user, loading it from
// storage on first use.
type WorkspaceRegistry interface {
	Get(ctx context.Context, userID string) (Workspace, error)
	// Evict drops the in-memory workspace, e.g. on logout.
	Evict(userID string)
}
