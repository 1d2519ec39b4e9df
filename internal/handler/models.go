package handler

import (
	"log/slog"
	"net/http"

	"dharmabot/internal/capabilities"
	"dharmabot/internal/config"
	"dharmabot/internal/httputil"
)

// ModelsHandler lists the models a user can pick in preferences
type ModelsHandler struct {
	config   *config.Config
	logger   *slog.Logger
	registry *capabilities.Registry
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(cfg *config.Config, logger *slog.Logger, registry *capabilities.Registry) *ModelsHandler {
	return &ModelsHandler{
		config:   cfg,
		logger:   logger,
		registry: registry,
	}
}

// ProviderResponse represents a provider with its models
type ProviderResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Models []ModelResponse `json:"models"`
}

// ModelResponse represents a model's capabilities for the API response
type ModelResponse struct {
	ID            string           `json:"id"`
	DisplayName   string           `json:"display_name"`
	Description   string           `json:"description,omitempty"`
	ContextWindow int              `json:"context_window"`
	Capabilities  CapabilitiesInfo `json:"capabilities"`
}

// CapabilitiesInfo represents model capabilities
type CapabilitiesInfo struct {
	WebSearch  bool `json:"web_search"` // grounded natively or through the external search client
	ImageInput bool `json:"image_input"`
	AudioInput bool `json:"audio_input"`
	PDFInput   bool `json:"pdf_input"`
}

type modelsResponse struct {
	DefaultModel string             `json:"default_model"`
	Providers    []ProviderResponse `json:"providers"`
}

// GetCapabilities returns the models of every provider with credentials
// GET /api/models
func (h *ModelsHandler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	providers := []ProviderResponse{}

	for _, id := range h.registry.GetAllProviders() {
		if !h.providerConfigured(id) {
			continue
		}
		models, err := h.registry.ListProviderModels(id)
		if err != nil {
			h.logger.Warn("failed to list provider models", "provider", id, "error", err)
			continue
		}
		providers = append(providers, h.convertProvider(id, models))
	}

	httputil.RespondJSON(w, http.StatusOK, modelsResponse{
		DefaultModel: h.config.DefaultModel,
		Providers:    providers,
	})
}

// providerConfigured reports whether the provider can serve requests. The
// lorem provider is offline and only offered outside production.
func (h *ModelsHandler) providerConfigured(id string) bool {
	switch id {
	case "gemini":
		return h.config.GeminiAPIKey != ""
	case "anthropic":
		return h.config.AnthropicAPIKey != ""
	case "openai":
		return h.config.OpenAIAPIKey != ""
	case "lorem":
		return h.config.Environment != "prod"
	}
	return false
}

// convertProvider converts capability registry data to API response format
func (h *ModelsHandler) convertProvider(id string, models []capabilities.ModelCapabilities) ProviderResponse {
	searchAvailable := h.config.TavilyAPIKey != ""

	modelResponses := make([]ModelResponse, 0, len(models))
	for _, m := range models {
		modelResponses = append(modelResponses, ModelResponse{
			ID:            m.ID,
			DisplayName:   m.DisplayName,
			Description:   m.Description,
			ContextWindow: m.ContextWindow,
			Capabilities: CapabilitiesInfo{
				WebSearch:  m.NativeWebSearch || searchAvailable,
				ImageInput: m.SupportsVision,
				AudioInput: m.SupportsAudio,
				PDFInput:   m.SupportsPDF,
			},
		})
	}

	return ProviderResponse{
		ID:     id,
		Name:   h.registry.DisplayName(id),
		Models: modelResponses,
	}
}
