package llm

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"dharmabot/internal/capabilities"
	"dharmabot/internal/domain/models"
	domainllm "dharmabot/internal/domain/services/llm"
	"dharmabot/internal/service/llm/prompts"
	"dharmabot/internal/service/llm/tools"
)

// searchTriggerKeywords force web search on for a chat query regardless of
// the user's toggle.
var searchTriggerKeywords = []string{
	"new criminal law", "new criminal laws",
	"latest legal news",
	"recent legal update", "recent legal updates",
	"new law", "new laws",
	"recent law", "recent laws",
	"current law", "current laws",
	"latest update on",
	"recent changes to",
	"breaking legal news",
	"latest supreme court ruling on",
	"new legislation concerning",
}

var (
	reframedQueryRe = regexp.MustCompile(`\*\*Reframed Query:\*\*\s*([\s\S]*?)(?:\*\*|$)`)
	boldSpanRe      = regexp.MustCompile(`\*\*[^*]+\*\*`)
	bracketSpanRe   = regexp.MustCompile(`\[.*?\]`)
	titleLineRe     = regexp.MustCompile(`^TITLE:\s*(.*)\n`)
)

// maxSearchQueryRunes caps what is sent to the external search API; analysis
// tasks would otherwise send a whole transcript.
const maxSearchQueryRunes = 400

// GatewayConfig holds gateway-wide settings.
type GatewayConfig struct {
	// DefaultModel is used when a request names no model.
	DefaultModel string
	// Timeout bounds each provider call. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// GatewayService implements domainllm.Gateway on top of the provider
// registry. It holds no per-user state and is safe for concurrent use.
type GatewayService struct {
	registry     *ProviderRegistry
	capabilities *capabilities.Registry
	prompts      *prompts.Registry
	messages     domainllm.MessageBuilder
	webSearch    *tools.WebSearchTool
	config       GatewayConfig
	logger       *slog.Logger
}

var _ domainllm.Gateway = (*GatewayService)(nil)

// NewGatewayService creates the gateway. webSearch may be nil, in which case
// models without built-in search answer ungrounded.
func NewGatewayService(
	registry *ProviderRegistry,
	capabilityRegistry *capabilities.Registry,
	promptRegistry *prompts.Registry,
	messageBuilder domainllm.MessageBuilder,
	webSearch *tools.WebSearchTool,
	cfg GatewayConfig,
	logger *slog.Logger,
) *GatewayService {
	return &GatewayService{
		registry:     registry,
		capabilities: capabilityRegistry,
		prompts:      promptRegistry,
		messages:     messageBuilder,
		webSearch:    webSearch,
		config:       cfg,
		logger:       logger,
	}
}

// Chat answers a conversational query. With web search on (by toggle or
// trigger keyword) only the search tool is sent; otherwise the assistant
// instruction and chat sampling apply.
func (g *GatewayService) Chat(ctx context.Context, req *domainllm.ChatRequest) (*domainllm.Result, error) {
	webSearch := req.WebSearch
	if keyword, ok := searchTrigger(req.Query); ok && !webSearch {
		g.logger.Debug("search trigger keyword forces web search", "keyword", keyword)
		webSearch = true
	}

	messages, err := g.messages.BuildMessages(req.History, req.Query, req.Documents)
	if err != nil {
		return nil, fmt.Errorf("failed to build chat messages: %w", err)
	}

	task := prompts.TaskChat
	if webSearch {
		task = prompts.TaskChatSearch
	}

	resp, err := g.generate(ctx, inferenceCall{
		task:        task,
		model:       req.Model,
		messages:    messages,
		webSearch:   webSearch,
		searchQuery: req.Query,
	})
	if err != nil {
		return nil, err
	}

	return mapResponse(resp, chatTexts), nil
}

// DraftDocument generates a Markdown legal document from instructions.
func (g *GatewayService) DraftDocument(ctx context.Context, instructions string) *domainllm.Result {
	resp, err := g.generate(ctx, g.singleTurn(prompts.TaskDraft, instructions))
	if err != nil {
		return errorResult("Document generation failed: %s", err)
	}
	return mapResponse(resp, draftTexts)
}

// TranscribeAudio returns a verbatim transcript of the audio.
func (g *GatewayService) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) *domainllm.Result {
	if len(audio) == 0 || mimeType == "" {
		return &domainllm.Result{Text: "Error: Audio data or MIME type missing for transcription."}
	}

	resp, err := g.generate(ctx, inferenceCall{
		task: prompts.TaskTranscribe,
		messages: []domainllm.Message{{
			Role:  domainllm.RoleUser,
			Parts: []domainllm.Part{{Data: audio, MIMEType: mimeType}},
		}},
		needsAudio: true,
	})
	if err != nil {
		return errorResult("Audio transcription failed: %s", err)
	}
	return mapResponse(resp, transcribeTexts)
}

// PolishNote rewrites a raw transcript as a structured note. A leading
// "TITLE: ..." line becomes SuggestedTitle and is removed from the text.
func (g *GatewayService) PolishNote(ctx context.Context, rawTranscript string) *domainllm.Result {
	if strings.TrimSpace(rawTranscript) == "" {
		return &domainllm.Result{Text: "Error: Raw transcript is empty, cannot polish."}
	}

	resp, err := g.generate(ctx, g.singleTurn(prompts.TaskPolish, rawTranscript))
	if err != nil {
		return errorResult("Note polishing failed: %s", err)
	}

	result := mapResponse(resp, polishTexts)
	if result.IsError() {
		return result
	}

	if m := titleLineRe.FindStringSubmatch(result.Text); m != nil && m[1] != "" {
		result.SuggestedTitle = strings.TrimSpace(m[1])
		result.Text = result.Text[len(m[0]):]
	}
	return result
}

// DeepResearch runs a grounded research query.
func (g *GatewayService) DeepResearch(ctx context.Context, query string) *domainllm.Result {
	resp, err := g.generate(ctx, g.singleTurn(prompts.TaskResearch, query))
	if err != nil {
		return errorResult("Research failed: %s", err)
	}
	return mapResponse(resp, researchTexts)
}

// AnalyzeConsultation produces a structured legal analysis of a transcript.
func (g *GatewayService) AnalyzeConsultation(ctx context.Context, transcript string) *domainllm.Result {
	if strings.TrimSpace(transcript) == "" {
		return &domainllm.Result{Text: "Error: No transcript provided for analysis."}
	}

	prompt, err := g.prompts.Get(prompts.TaskAnalyze).RenderPrompt(transcript)
	if err != nil {
		return errorResult("Failed to analyze consultation transcript. %s", err)
	}

	call := g.singleTurn(prompts.TaskAnalyze, prompt)
	call.searchQuery = transcript
	resp, err := g.generate(ctx, call)
	if err != nil {
		return errorResult("Failed to analyze consultation transcript. %s", err)
	}
	return mapResponse(resp, analyzeTexts)
}

// RephraseQuery asks the model for a sharper version of the query. Short or
// already-formatted queries are returned unchanged, as is the original on
// any failure.
func (g *GatewayService) RephraseQuery(ctx context.Context, query string) string {
	if utf8.RuneCountInString(query) < 20 || strings.Contains(query, "**") || strings.Contains(query, "###") {
		return query
	}

	resp, err := g.generate(ctx, g.singleTurn(prompts.TaskRephrase, query))
	if err != nil {
		g.logger.Warn("query rephrasing failed, using original query", "error", err)
		return query
	}

	if resp.BlockReason != "" {
		g.logger.Warn("query rephrasing was blocked, using original query", "reason", resp.BlockReason)
		return query
	}
	switch resp.FinishReason {
	case domainllm.FinishStop, domainllm.FinishMaxTokens, "":
	default:
		g.logger.Warn("query rephrasing finished early, using original query", "reason", resp.FinishReason)
		return query
	}

	return extractRephrasedQuery(query, resp.Text)
}

// extractRephrasedQuery prefers the text after "**Reframed Query:**", then
// falls back to the answer with bold spans and bracketed notes removed.
func extractRephrasedQuery(original, answer string) string {
	if strings.TrimSpace(answer) == "" {
		return original
	}

	if m := reframedQueryRe.FindStringSubmatch(answer); m != nil {
		if extracted := strings.TrimSpace(m[1]); extracted != "" {
			return extracted
		}
	}

	cleaned := bracketSpanRe.ReplaceAllString(boldSpanRe.ReplaceAllString(answer, ""), "")
	cleaned = strings.TrimSpace(cleaned)
	if utf8.RuneCountInString(cleaned) > 10 {
		return cleaned
	}
	return original
}

func searchTrigger(query string) (string, bool) {
	lowered := strings.ToLower(query)
	for _, keyword := range searchTriggerKeywords {
		if strings.Contains(lowered, keyword) {
			return keyword, true
		}
	}
	return "", false
}

// inferenceCall is one provider request before model resolution.
type inferenceCall struct {
	task     prompts.Task
	model    string
	messages []domainllm.Message

	webSearch bool
	// searchQuery is sent to the external search client when the model has
	// no built-in search.
	searchQuery string

	needsAudio bool
}

// singleTurn builds a one-message call that searches when the task says so.
func (g *GatewayService) singleTurn(task prompts.Task, text string) inferenceCall {
	return inferenceCall{
		task:        task,
		messages:    []domainllm.Message{domainllm.TextMessage(domainllm.RoleUser, text)},
		webSearch:   g.prompts.Get(task).WebSearch,
		searchQuery: text,
	}
}

// generate resolves the model, applies the task profile, grounds the request
// through the external search client when needed, and calls the provider.
func (g *GatewayService) generate(ctx context.Context, call inferenceCall) (*domainllm.GenerateResponse, error) {
	modelStr := call.model
	if modelStr == "" {
		modelStr = g.config.DefaultModel
	}

	provider, info, err := g.registry.ResolveModel(modelStr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve model '%s': %w", modelStr, err)
	}

	caps, err := g.capabilities.GetModelCapabilities(info.Provider, info.Model)
	if err != nil {
		g.logger.Warn("no capability entry for model", "model", info.String(), "error", err)
		caps = nil
	}

	if call.needsAudio && caps != nil && !caps.SupportsAudio {
		return nil, fmt.Errorf("model '%s' does not accept audio input", info.String())
	}

	profile := g.prompts.Get(call.task)
	req := &domainllm.GenerateRequest{
		Model:             info.Model,
		SystemInstruction: profile.Instruction,
		Messages:          call.messages,
		Params:            profile.Sampling(),
		WebSearch:         call.webSearch,
	}

	var fallbackSources []models.Source
	if req.WebSearch && (caps == nil || !caps.NativeWebSearch) {
		req.WebSearch = false
		req.Messages, fallbackSources = g.groundExternally(ctx, call.searchQuery, req.Messages)
	}

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := provider.GenerateResponse(ctx, req)
	if err != nil {
		g.logger.Error("inference failed",
			"task", call.task,
			"model", info.String(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	if len(resp.Sources) == 0 && len(fallbackSources) > 0 {
		resp.Sources = fallbackSources
	}

	g.logger.Info("inference completed",
		"task", call.task,
		"model", info.String(),
		"web_search", call.webSearch,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"finish_reason", resp.FinishReason,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp, nil
}

// groundExternally appends search results to the last user message. Search
// failures are logged and the request proceeds ungrounded.
func (g *GatewayService) groundExternally(ctx context.Context, query string, messages []domainllm.Message) ([]domainllm.Message, []models.Source) {
	if g.webSearch == nil {
		g.logger.Warn("web search requested but no search client is configured")
		return messages, nil
	}

	if utf8.RuneCountInString(query) > maxSearchQueryRunes {
		query = string([]rune(query)[:maxSearchQueryRunes])
	}

	grounding, err := g.webSearch.Ground(ctx, query, 0)
	if err != nil {
		g.logger.Warn("external web search failed", "error", err)
		return messages, nil
	}
	if grounding.Context == "" || len(messages) == 0 {
		return messages, grounding.Sources
	}

	out := make([]domainllm.Message, len(messages))
	copy(out, messages)
	last := out[len(out)-1]
	parts := make([]domainllm.Part, len(last.Parts), len(last.Parts)+1)
	copy(parts, last.Parts)
	last.Parts = append(parts, domainllm.Part{Text: grounding.Context})
	out[len(out)-1] = last

	return out, grounding.Sources
}

func errorResult(format string, err error) *domainllm.Result {
	return &domainllm.Result{Text: "Error: " + fmt.Sprintf(format, err.Error())}
}
