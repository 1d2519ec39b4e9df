package llm

import "dharmabot/internal/domain/models"

// MessageBuilder builds provider messages from a stored conversation.
type MessageBuilder interface {
	// BuildMessages returns the history (oldest first) followed by one user
	// message for query with the documents attached.
	BuildMessages(history []models.ChatMessage, query string, documents []Document) ([]Message, error)
}
