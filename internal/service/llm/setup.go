package llm

import (
	"fmt"
	"log/slog"

	"dharmabot/internal/capabilities"
	"dharmabot/internal/config"
	"dharmabot/internal/service/llm/conversation"
	"dharmabot/internal/service/llm/prompts"
	"dharmabot/internal/service/llm/tools"
	"dharmabot/internal/service/llm/tools/external"
)

// SetupProviders initializes the provider factory and registry for routing.
// Returns a configured ProviderRegistry or an error if setup fails.
func SetupProviders(cfg *config.Config, logger *slog.Logger) (*ProviderRegistry, error) {
	registry := NewProviderRegistry(NewProviderFactory(cfg))

	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("provider registry validation failed: %w", err)
	}

	keys := []struct {
		name   string
		models string
		key    string
		env    string
	}{
		{"gemini", "gemini-*", cfg.GeminiAPIKey, "GEMINI_API_KEY"},
		{"anthropic", "claude-*", cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY"},
		{"openai", "gpt-*, o1-*, o3-*, o4-*", cfg.OpenAIAPIKey, "OPENAI_API_KEY"},
	}
	for _, k := range keys {
		if k.key != "" {
			logger.Info("provider available", "name", k.name, "models", k.models)
		} else {
			logger.Warn(k.env+" not set - provider not available", "name", k.name)
		}
	}
	logger.Info("provider available", "name", "lorem", "models", "lorem-*")

	return registry, nil
}

// SetupGateway wires the inference gateway: task profiles, capability
// lookup, message assembly and, when TAVILY_API_KEY is set, external search
// for models without built-in grounding.
func SetupGateway(
	cfg *config.Config,
	registry *ProviderRegistry,
	capabilityRegistry *capabilities.Registry,
	logger *slog.Logger,
) (*GatewayService, error) {
	promptRegistry, err := prompts.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load task profiles: %w", err)
	}

	var webSearch *tools.WebSearchTool
	if cfg.TavilyAPIKey != "" {
		webSearch = tools.NewWebSearchTool(external.NewTavilyClient(cfg.TavilyAPIKey), tools.DefaultToolConfig())
		logger.Info("external web search enabled", "provider", "tavily")
	} else {
		logger.Warn("TAVILY_API_KEY not set - models without built-in search answer ungrounded")
	}

	return NewGatewayService(
		registry,
		capabilityRegistry,
		promptRegistry,
		conversation.NewMessageBuilderService(logger),
		webSearch,
		GatewayConfig{
			DefaultModel: cfg.DefaultModel,
			Timeout:      cfg.LLMTimeout,
		},
		logger,
	), nil
}
