package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	domainllm "dharmabot/internal/domain/services/llm"
)

// Provider implements the LLMProvider interface for OpenAI models via the
// Responses API.
type Provider struct {
	client *openai.Client
}

// NewProvider creates a new OpenAI provider with the given API key.
func NewProvider(apiKey string, opts ...option.RequestOption) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)

	return &Provider{client: &client}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// SupportsModel returns true for GPT and o-series model IDs.
func (p *Provider) SupportsModel(model string) bool {
	for _, prefix := range []string{"gpt-", "o1", "o3", "o4"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// GenerateResponse generates a response from an OpenAI model.
func (p *Provider) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by OpenAI provider", req.Model)
	}

	input, err := convertToResponseInput(req.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	resp, err := p.client.Responses.New(ctx, buildParams(req, input))
	if err != nil {
		return nil, fmt.Errorf("openai API call failed: %w", err)
	}

	return convertFromResponse(resp), nil
}

func buildParams(req *domainllm.GenerateRequest, input responses.ResponseInputParam) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model: req.Model,
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: input},
	}

	if req.SystemInstruction != "" {
		params.Instructions = openai.String(req.SystemInstruction)
	}
	if req.Params.Temperature != nil {
		params.Temperature = openai.Float(*req.Params.Temperature)
	}
	if req.Params.TopP != nil {
		params.TopP = openai.Float(*req.Params.TopP)
	}
	// The Responses API has no top_k.
	if req.Params.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.Params.MaxOutputTokens))
	}

	if req.WebSearch {
		params.Tools = []responses.ToolUnionParam{{
			OfWebSearchPreview: &responses.WebSearchToolParam{
				Type: responses.WebSearchToolTypeWebSearchPreview,
			},
		}}
	}

	return params
}
