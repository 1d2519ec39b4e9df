package openai

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"

	"dharmabot/internal/domain/models"
	domainllm "dharmabot/internal/domain/services/llm"
)

func convertToResponseInput(messages []domainllm.Message) (responses.ResponseInputParam, error) {
	input := make(responses.ResponseInputParam, 0, len(messages))

	for i, msg := range messages {
		var role responses.EasyInputMessageRole
		switch msg.Role {
		case domainllm.RoleUser:
			role = responses.EasyInputMessageRoleUser
		case domainllm.RoleAssistant:
			role = responses.EasyInputMessageRoleAssistant
		default:
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, msg.Role)
		}

		// Assistant turns are plain text; input_image and input_file are user-only.
		if role == responses.EasyInputMessageRoleAssistant {
			var text strings.Builder
			for _, part := range msg.Parts {
				text.WriteString(part.Text)
			}
			if text.Len() > 0 {
				input = append(input, responses.ResponseInputItemParamOfMessage(text.String(), role))
			}
			continue
		}

		content := make(responses.ResponseInputMessageContentListParam, 0, len(msg.Parts))
		for j, part := range msg.Parts {
			switch {
			case !part.IsInline():
				if part.Text != "" {
					content = append(content, responses.ResponseInputContentUnionParam{
						OfInputText: &responses.ResponseInputTextParam{Text: part.Text},
					})
				}
			case strings.HasPrefix(part.MIMEType, "image/"):
				content = append(content, responses.ResponseInputContentUnionParam{
					OfInputImage: &responses.ResponseInputImageParam{
						ImageURL: openai.String(dataURL(part)),
						Detail:   responses.ResponseInputImageDetailAuto,
					},
				})
			case part.MIMEType == "application/pdf":
				content = append(content, responses.ResponseInputContentUnionParam{
					OfInputFile: &responses.ResponseInputFileParam{
						FileData: openai.String(dataURL(part)),
						Filename: openai.String(fmt.Sprintf("document-%d-%d.pdf", i, j)),
					},
				})
			default:
				return nil, fmt.Errorf("message %d: unsupported inline data type '%s'", i, part.MIMEType)
			}
		}
		if len(content) == 0 {
			continue
		}

		input = append(input, responses.ResponseInputItemParamOfMessage(content, role))
	}

	return input, nil
}

func dataURL(part domainllm.Part) string {
	return "data:" + part.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(part.Data)
}

func convertFromResponse(resp *responses.Response) *domainllm.GenerateResponse {
	out := &domainllm.GenerateResponse{
		Text:         resp.OutputText(),
		Model:        resp.Model,
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}

	seen := make(map[string]bool)
	refused := false
	for _, item := range resp.Output {
		for _, content := range item.Content {
			if content.Type == "refusal" {
				refused = true
			}
			for _, ann := range content.Annotations {
				if ann.Type != "url_citation" || ann.URL == "" || seen[ann.URL] {
					continue
				}
				seen[ann.URL] = true
				out.Sources = append(out.Sources, models.Source{URI: ann.URL, Title: ann.Title})
			}
		}
	}

	switch {
	case refused:
		out.FinishReason = domainllm.FinishSafety
	case resp.Status == responses.ResponseStatusIncomplete:
		switch resp.IncompleteDetails.Reason {
		case "max_output_tokens":
			out.FinishReason = domainllm.FinishMaxTokens
		case "content_filter":
			out.FinishReason = domainllm.FinishSafety
		default:
			out.FinishReason = domainllm.FinishOther
		}
	case len(resp.Output) == 0:
		out.FinishReason = ""
	default:
		out.FinishReason = domainllm.FinishStop
	}

	return out
}
