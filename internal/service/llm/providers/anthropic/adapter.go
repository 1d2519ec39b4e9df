package anthropic

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"dharmabot/internal/domain/models"
	domainllm "dharmabot/internal/domain/services/llm"
)

// convertToAnthropicMessages converts domain messages to Anthropic SDK format.
// Claude takes images and PDFs inline; other binary parts are rejected.
func convertToAnthropicMessages(messages []domainllm.Message) ([]anthropic.MessageParam, error) {
	result := make([]anthropic.MessageParam, 0, len(messages))

	for i, msg := range messages {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Parts))

		for _, part := range msg.Parts {
			switch {
			case !part.IsInline():
				if part.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(part.Text))
				}
			case strings.HasPrefix(part.MIMEType, "image/"):
				encoded := base64.StdEncoding.EncodeToString(part.Data)
				blocks = append(blocks, anthropic.NewImageBlockBase64(part.MIMEType, encoded))
			case part.MIMEType == "application/pdf":
				encoded := base64.StdEncoding.EncodeToString(part.Data)
				blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: encoded}))
			default:
				return nil, fmt.Errorf("message %d: unsupported inline data type '%s'", i, part.MIMEType)
			}
		}
		if len(blocks) == 0 {
			continue
		}

		var message anthropic.MessageParam
		switch msg.Role {
		case domainllm.RoleUser:
			message = anthropic.NewUserMessage(blocks...)
		case domainllm.RoleAssistant:
			message = anthropic.NewAssistantMessage(blocks...)
		default:
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, msg.Role)
		}

		result = append(result, message)
	}

	return result, nil
}

// convertFromAnthropicResponse converts an Anthropic response to domain format.
func convertFromAnthropicResponse(msg *anthropic.Message) *domainllm.GenerateResponse {
	var text strings.Builder
	var sources []models.Source
	seen := make(map[string]bool)

	for _, content := range msg.Content {
		switch content.Type {
		case "text":
			text.WriteString(content.Text)

		case "web_search_tool_result":
			for _, r := range content.Content.OfWebSearchResultBlockArray {
				if r.URL == "" || seen[r.URL] {
					continue
				}
				seen[r.URL] = true
				sources = append(sources, models.Source{URI: r.URL, Title: r.Title})
			}
		}
	}

	return &domainllm.GenerateResponse{
		Text:         text.String(),
		Sources:      sources,
		Model:        string(msg.Model),
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
		FinishReason: mapStopReason(msg.StopReason),
	}
}

func mapStopReason(reason anthropic.StopReason) string {
	switch reason {
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence, anthropic.StopReasonToolUse, anthropic.StopReasonPauseTurn:
		return domainllm.FinishStop
	case anthropic.StopReasonMaxTokens:
		return domainllm.FinishMaxTokens
	case anthropic.StopReasonRefusal:
		return domainllm.FinishSafety
	default:
		return string(reason)
	}
}
