package llm

import (
	"context"

	"dharmabot/internal/domain/models"
)

// Conversation roles understood by every provider.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Normalized finish reasons. Providers map their own stop reasons onto these.
const (
	FinishStop      = "STOP"
	FinishMaxTokens = "MAX_TOKENS"
	FinishSafety    = "SAFETY"
	FinishOther     = "OTHER"
)

// LLMProvider defines the interface that all LLM providers must implement.
type LLMProvider interface {
	// GenerateResponse sends one request and waits for the complete answer.
	GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider name (e.g., "gemini", "anthropic")
	Name() string

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// SamplingParams are optional sampling settings. Nil means provider default.
type SamplingParams struct {
	Temperature     *float64
	TopP            *float64
	TopK            *int
	MaxOutputTokens int
}

// GenerateRequest contains the parameters for an LLM generation request.
type GenerateRequest struct {
	Model string

	// SystemInstruction is omitted from the request when empty.
	SystemInstruction string

	Messages []Message
	Params   SamplingParams

	// WebSearch enables the provider's built-in search tool.
	WebSearch bool
}

// Message represents a single message in the conversation.
type Message struct {
	// Role is either RoleUser or RoleAssistant
	Role  string
	Parts []Part
}

// Part is text or inline binary data (image, audio, PDF).
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

// IsInline reports whether the part carries binary data.
func (p Part) IsInline() bool { return len(p.Data) > 0 }

// TextMessage builds a single-part text message.
func TextMessage(role, text string) Message {
	return Message{Role: role, Parts: []Part{{Text: text}}}
}

// GenerateResponse contains the LLM provider's response.
type GenerateResponse struct {
	Text    string
	Sources []models.Source

	// Model is the model that was used (may differ from request if aliased)
	Model string

	InputTokens  int
	OutputTokens int

	// FinishReason is one of the Finish* constants, or the raw provider value
	// when nothing maps. Empty when the provider returned no candidate at all.
	FinishReason string

	// BlockReason is set when the prompt itself was refused.
	BlockReason string
}
