package llm

import (
	"context"
	"fmt"
	"sort"

	"dharmabot/internal/config"
	domainllm "dharmabot/internal/domain/services/llm"
	"dharmabot/internal/service/llm/providers/anthropic"
	"dharmabot/internal/service/llm/providers/gemini"
	"dharmabot/internal/service/llm/providers/lorem"
	"dharmabot/internal/service/llm/providers/openai"
)

// ProviderCreatorFunc builds a provider instance.
type ProviderCreatorFunc func() (domainllm.LLMProvider, error)

// ProviderFactory creates LLM provider instances by name.
type ProviderFactory struct {
	config   *config.Config
	creators map[string]ProviderCreatorFunc
}

// NewProviderFactory creates a new provider factory with the standard
// providers registered.
//
// Supported providers:
//   - "gemini" - Google Gemini models
//   - "anthropic" - Claude models via Anthropic API
//   - "openai" - GPT models via the Responses API
//   - "lorem" - Mock provider for testing (no API key required)
func NewProviderFactory(cfg *config.Config) *ProviderFactory {
	f := &ProviderFactory{
		config:   cfg,
		creators: make(map[string]ProviderCreatorFunc),
	}

	f.Register("gemini", f.createGeminiProvider)
	f.Register("anthropic", f.createAnthropicProvider)
	f.Register("openai", f.createOpenAIProvider)
	f.Register("lorem", f.createLoremProvider)

	return f
}

// Register adds or replaces the creator for a provider.
func (f *ProviderFactory) Register(providerName string, creator ProviderCreatorFunc) {
	f.creators[providerName] = creator
}

// GetProvider returns a new provider instance for the given provider name.
func (f *ProviderFactory) GetProvider(providerName string) (domainllm.LLMProvider, error) {
	creator, exists := f.creators[providerName]
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s (supported: %v)", providerName, f.Supported())
	}
	return creator()
}

// Supported lists registered provider names in sorted order.
func (f *ProviderFactory) Supported() []string {
	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// createGeminiProvider creates a Gemini provider instance
func (f *ProviderFactory) createGeminiProvider() (domainllm.LLMProvider, error) {
	if f.config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	provider, err := gemini.NewProvider(context.Background(), f.config.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
	}
	return provider, nil
}

// createAnthropicProvider creates an Anthropic provider instance
func (f *ProviderFactory) createAnthropicProvider() (domainllm.LLMProvider, error) {
	if f.config.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	provider, err := anthropic.NewProvider(f.config.AnthropicAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
	}
	return provider, nil
}

// createOpenAIProvider creates an OpenAI provider instance
func (f *ProviderFactory) createOpenAIProvider() (domainllm.LLMProvider, error) {
	if f.config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	provider, err := openai.NewProvider(f.config.OpenAIAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI provider: %w", err)
	}
	return provider, nil
}

// createLoremProvider creates a Lorem mock provider instance
// Lorem requires no API key - it's a testing provider that generates lorem ipsum text
func (f *ProviderFactory) createLoremProvider() (domainllm.LLMProvider, error) {
	return lorem.NewProvider(), nil
}
