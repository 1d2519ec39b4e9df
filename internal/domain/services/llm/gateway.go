package llm

import (
	"context"
	"strings"

	"dharmabot/internal/domain/models"
)

// Result is the uniform answer of every gateway task.
type Result struct {
	Text           string          `json:"text"`
	Sources        []models.Source `json:"sources,omitempty"`
	SuggestedTitle string          `json:"suggestedTitle,omitempty"`
}

// IsError reports whether the result records a failure. Failed tasks return
// text starting with "Error:" instead of a Go error.
func (r *Result) IsError() bool {
	return r == nil || strings.HasPrefix(r.Text, "Error:")
}

// Document is an uploaded file prepared for the model. TextContent may be a
// data URL, in which case it is sent as inline data.
type Document struct {
	Name              string   `json:"name"`
	MIMEType          string   `json:"mimeType"`
	TextContent       string   `json:"textContent,omitempty"`
	ImagePageDataURLs []string `json:"imagePageDataUrls,omitempty"`
}

// ChatRequest is a chat turn with its prior history.
type ChatRequest struct {
	Query     string
	History   []models.ChatMessage
	Documents []Document
	WebSearch bool
	// Model overrides the gateway default when set.
	Model string
}

// Gateway runs the assistant's inference tasks. Each task has its own
// instruction and sampling profile. The gateway keeps no state.
type Gateway interface {
	// Chat returns an error for transport failures; blocked or empty answers
	// come back as explanatory text.
	Chat(ctx context.Context, req *ChatRequest) (*Result, error)

	DraftDocument(ctx context.Context, instructions string) *Result
	TranscribeAudio(ctx context.Context, audio []byte, mimeType string) *Result

	// PolishNote moves a leading "TITLE: ..." line into SuggestedTitle.
	PolishNote(ctx context.Context, rawTranscript string) *Result
	DeepResearch(ctx context.Context, query string) *Result
	AnalyzeConsultation(ctx context.Context, transcript string) *Result

	// RephraseQuery never fails: any problem returns the original query.
	RephraseQuery(ctx context.Context, query string) string
}
