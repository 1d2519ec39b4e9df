package conversation

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"dharmabot/internal/domain/models"
	domainllm "dharmabot/internal/domain/services/llm"
)

// MessageBuilderService converts stored chat history plus the current query
// and its uploaded documents into provider messages.
// This is a pure conversion service - data loading happens in the caller.
type MessageBuilderService struct {
	logger *slog.Logger
}

var _ domainllm.MessageBuilder = (*MessageBuilderService)(nil)

// NewMessageBuilderService creates a new MessageBuilderService
func NewMessageBuilderService(logger *slog.Logger) *MessageBuilderService {
	return &MessageBuilderService{logger: logger}
}

// BuildMessages returns the prior history followed by one user message for
// the current query. The history should be ordered from oldest to newest.
func (mb *MessageBuilderService) BuildMessages(
	history []models.ChatMessage,
	query string,
	documents []domainllm.Document,
) ([]domainllm.Message, error) {
	messages := mb.BuildHistory(history)

	current, err := mb.BuildUserTurn(query, documents)
	if err != nil {
		return nil, err
	}
	messages = append(messages, current)

	mb.logger.Debug("built chat messages",
		"history", len(history),
		"documents", len(documents),
		"messages", len(messages),
	)

	return messages, nil
}

// BuildHistory renders each stored message as plain text. AI answers carry
// the sources they cited; system notices are replayed on the model side.
func (mb *MessageBuilderService) BuildHistory(history []models.ChatMessage) []domainllm.Message {
	messages := make([]domainllm.Message, 0, len(history))

	for _, msg := range history {
		switch m := msg.(type) {
		case *models.UserQueryMessage:
			text := "Query: " + m.QueryText
			if len(m.FilesInfo) > 0 {
				names := make([]string, len(m.FilesInfo))
				for i, f := range m.FilesInfo {
					names[i] = f.Name
				}
				text += fmt.Sprintf("\n(User had attached files: %s)", strings.Join(names, ", "))
			}
			messages = append(messages, domainllm.TextMessage(domainllm.RoleUser, text))

		case *models.AIResponseMessage:
			text := m.Text
			if len(m.Sources) > 0 {
				lines := make([]string, len(m.Sources))
				for i, s := range m.Sources {
					label := s.Title
					if label == "" {
						label = s.URI
					}
					lines[i] = fmt.Sprintf("%d. %s (%s)", i+1, label, s.URI)
				}
				text += "\n\nWeb Search Sources Provided in Previous Turn:\n" + strings.Join(lines, "\n")
			}
			messages = append(messages, domainllm.TextMessage(domainllm.RoleAssistant, text))

		case *models.SystemMessage:
			messages = append(messages, domainllm.TextMessage(domainllm.RoleAssistant, "System Note: "+m.Text))

		default:
			mb.logger.Warn("skipping history message with unexpected type", "type", fmt.Sprintf("%T", msg))
		}
	}

	return messages
}

// BuildUserTurn builds the current user message. Without documents it is the
// bare query. With documents the query is followed by analysis guidance and
// each document framed by start/end markers.
func (mb *MessageBuilderService) BuildUserTurn(query string, documents []domainllm.Document) (domainllm.Message, error) {
	if len(documents) == 0 {
		return domainllm.TextMessage(domainllm.RoleUser, query), nil
	}

	parts := []domainllm.Part{{Text: query + fileAnalysisInstruction(query, documents)}}

	for _, doc := range documents {
		parts = append(parts, domainllm.Part{
			Text: fmt.Sprintf("\n--- Start of Uploaded Document (%s - %s) ---", doc.Name, doc.MIMEType),
		})

		if doc.TextContent != "" {
			if strings.HasPrefix(doc.TextContent, "data:") && doc.MIMEType != "" {
				data, err := decodeDataURL(doc.TextContent)
				if err != nil {
					return domainllm.Message{}, fmt.Errorf("document %q: %w", doc.Name, err)
				}
				parts = append(parts, domainllm.Part{Data: data, MIMEType: doc.MIMEType})
			} else {
				parts = append(parts, domainllm.Part{Text: doc.TextContent})
			}
		}

		isImageFile := strings.HasPrefix(doc.MIMEType, "image/") && len(doc.ImagePageDataURLs) > 0
		pageMIME := "image/png"
		if strings.HasPrefix(doc.MIMEType, "image/") {
			pageMIME = doc.MIMEType
		}
		for i, page := range doc.ImagePageDataURLs {
			data, err := decodeDataURL(page)
			if err != nil {
				return domainllm.Message{}, fmt.Errorf("document %q page %d: %w", doc.Name, i+1, err)
			}
			label := fmt.Sprintf("Image Page %d Content:", i+1)
			if isImageFile {
				label = "Uploaded Image Content:"
			}
			parts = append(parts,
				domainllm.Part{Text: label},
				domainllm.Part{Data: data, MIMEType: pageMIME},
			)
		}

		parts = append(parts, domainllm.Part{
			Text: fmt.Sprintf("\n--- End of Uploaded Document (%s) ---", doc.Name),
		})
	}

	return domainllm.Message{Role: domainllm.RoleUser, Parts: parts}, nil
}

// fileAnalysisInstruction asks for a per-document overview. A comparison item
// is added for several documents, and a judgment breakdown when the query
// mentions judgments or case law.
func fileAnalysisInstruction(query string, documents []domainllm.Document) string {
	names := make([]string, len(documents))
	for i, doc := range documents {
		names[i] = doc.Name
	}

	multi := len(documents) > 1
	lowered := strings.ToLower(query)

	var comparison, judgment string
	if multi {
		comparison = "4. If my query suggests comparison, please compare and contrast the relevant aspects of these documents.\n"
	}
	if strings.Contains(lowered, "judgment") || strings.Contains(lowered, "case law") {
		num := "4."
		if multi {
			num = "5."
		}
		judgment = num + " If any document is a judgment or case law: Factual Matrix, Issues, Reasoning, Ratio Decidendi, Final Order."
	}

	return fmt.Sprintf("\nPlease analyze the attached file(s) named \"%s\". Focus on:\n"+
		"1. Overview of each document/image.\n"+
		"2. Relevance of each document to my query and the inferred legal context.\n"+
		"3. Key findings or insights from each.\n"+
		"%s\n%s\n---\n", strings.Join(names, ", "), comparison, judgment)
}

// decodeDataURL returns the payload after the first comma, base64-decoded.
func decodeDataURL(s string) ([]byte, error) {
	payload := s
	if i := strings.Index(s, ","); i >= 0 {
		payload = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 data: %w", err)
	}
	return data, nil
}
