package gemini

import (
	"fmt"

	"google.golang.org/genai"

	"dharmabot/internal/domain/models"
	domainllm "dharmabot/internal/domain/services/llm"
)

func buildConfig(req *domainllm.GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	params := req.Params
	if params.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*params.Temperature))
	}
	if params.TopP != nil {
		cfg.TopP = genai.Ptr(float32(*params.TopP))
	}
	if params.TopK != nil {
		cfg.TopK = genai.Ptr(float32(*params.TopK))
	}
	if params.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(params.MaxOutputTokens)
	}

	if req.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	return cfg
}

func convertToGeminiContents(messages []domainllm.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		var role genai.Role
		switch msg.Role {
		case domainllm.RoleUser:
			role = genai.RoleUser
		case domainllm.RoleAssistant:
			role = genai.RoleModel
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}

		parts := make([]*genai.Part, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			if part.IsInline() {
				parts = append(parts, genai.NewPartFromBytes(part.Data, part.MIMEType))
				continue
			}
			if part.Text != "" {
				parts = append(parts, genai.NewPartFromText(part.Text))
			}
		}
		if len(parts) == 0 {
			continue
		}

		contents = append(contents, genai.NewContentFromParts(parts, role))
	}

	return contents, nil
}

func convertFromGeminiResponse(model string, resp *genai.GenerateContentResponse) *domainllm.GenerateResponse {
	out := &domainllm.GenerateResponse{Model: model}
	if resp == nil {
		return out
	}

	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		out.BlockReason = string(resp.PromptFeedback.BlockReason)
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return out
	}

	candidate := resp.Candidates[0]
	out.FinishReason = mapFinishReason(candidate.FinishReason)
	out.Text = resp.Text()
	out.Sources = extractSources(candidate.GroundingMetadata)

	return out
}

func mapFinishReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonStop, "":
		return domainllm.FinishStop
	case genai.FinishReasonMaxTokens:
		return domainllm.FinishMaxTokens
	case genai.FinishReasonSafety:
		return domainllm.FinishSafety
	default:
		return string(reason)
	}
}

func extractSources(meta *genai.GroundingMetadata) []models.Source {
	if meta == nil {
		return nil
	}

	var sources []models.Source
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, models.Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return sources
}
