package lorem

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	loremgen "github.com/bozaro/golorem"

	"dharmabot/internal/domain/models"
	domainllm "dharmabot/internal/domain/services/llm"
)

// Provider is a mock LLM provider that generates lorem ipsum text.
// Used for testing and development without requiring real API keys.
//
// The model name selects the behaviour:
//   - lorem-slow: answers after two seconds
//   - lorem-cutoff: stops with MAX_TOKENS
//   - lorem-blocked: the prompt is refused with reason SAFETY
//   - lorem-empty: a candidate with no text
//   - anything else: answers after a short delay
type Provider struct {
	mu        sync.Mutex // golorem's generator is not safe for concurrent use
	generator *loremgen.Lorem
	delay     func(model string) time.Duration
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
		delay:     getDelay,
	}
}

// NewInstantProvider returns a provider that never sleeps.
func NewInstantProvider() *Provider {
	p := NewProvider()
	p.delay = func(string) time.Duration { return 0 }
	return p
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if the model name starts with "lorem-".
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// GenerateResponse generates a complete lorem ipsum response after a
// model-dependent delay, simulating a blocking API call.
func (p *Provider) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", req.Model)
	}

	if d := p.delay(req.Model); d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	resp := &domainllm.GenerateResponse{
		Model:       req.Model,
		InputTokens: estimateTokens(req.Messages),
	}

	switch {
	case strings.Contains(req.Model, "blocked"):
		resp.BlockReason = domainllm.FinishSafety
		return resp, nil
	case strings.Contains(req.Model, "empty"):
		resp.FinishReason = domainllm.FinishStop
		return resp, nil
	}

	maxWords := req.Params.MaxOutputTokens
	if maxWords <= 0 {
		maxWords = 400
	}

	text, cutoff := p.generateText(maxWords, strings.Contains(req.Model, "cutoff"))
	resp.Text = text
	resp.OutputTokens = len(strings.Fields(text))
	resp.FinishReason = domainllm.FinishStop
	if cutoff {
		resp.FinishReason = domainllm.FinishMaxTokens
	}

	if req.WebSearch {
		resp.Sources = []models.Source{
			{URI: "https://example.com/lorem/1", Title: "Lorem Ipsum Reporter"},
			{URI: "https://example.com/lorem/2", Title: "Dolor Sit Amet Journal"},
		}
	}

	return resp, nil
}

// getDelay returns the simulated latency for a model.
func getDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 2 * time.Second
	}
	return 200 * time.Millisecond
}

// generateText produces at most maxWords words. Cutoff mode overshoots the
// limit and reports the truncation.
func (p *Provider) generateText(maxWords int, cutoff bool) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	target := maxWords / 2
	if cutoff {
		target = maxWords + maxWords/2
	}
	if target < 1 {
		target = 1
	}

	var sentences []string
	count := 0
	for count < target {
		sentence := p.generator.Sentence(5, 12)
		sentences = append(sentences, sentence)
		count += len(strings.Fields(sentence))
	}

	if count > maxWords {
		words := strings.Fields(strings.Join(sentences, " "))
		return strings.Join(words[:maxWords], " "), cutoff
	}

	var sb strings.Builder
	for i, sentence := range sentences {
		if i > 0 {
			if i%4 == 0 {
				sb.WriteString("\n\n")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(sentence)
	}
	return sb.String(), false
}

// estimateTokens estimates the token count for a list of messages.
// Uses word count as a rough approximation.
func estimateTokens(messages []domainllm.Message) int {
	total := 0
	for _, msg := range messages {
		for _, part := range msg.Parts {
			total += len(strings.Fields(part.Text))
		}
	}
	return total
}
