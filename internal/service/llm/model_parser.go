package llm

import (
	"fmt"
	"strings"
)

// ModelInfo is a model string split into provider and provider-local ID.
type ModelInfo struct {
	Provider string
	Model    string
}

// String returns the explicit "provider/model" form.
func (m *ModelInfo) String() string {
	return m.Provider + "/" + m.Model
}

// modelPrefixes maps bare model names to their provider. Checked in order.
var modelPrefixes = []struct {
	prefix   string
	provider string
}{
	{"gemini-", "gemini"},
	{"claude-", "anthropic"},
	{"gpt-", "openai"},
	{"o1-", "openai"},
	{"o3-", "openai"},
	{"o4-", "openai"},
	{"lorem-", "lorem"},
}

// ParseModel accepts "provider/model" or a bare model name whose prefix
// identifies the provider ("claude-haiku-4-5" → anthropic). Provider names
// are lowercased; model IDs are kept as given.
func ParseModel(s string) (*ModelInfo, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("model string cannot be empty")
	}

	if provider, model, ok := strings.Cut(s, "/"); ok {
		if provider == "" || model == "" {
			return nil, fmt.Errorf("invalid model %q: expected provider/model", s)
		}
		return &ModelInfo{Provider: strings.ToLower(provider), Model: model}, nil
	}

	provider := inferProvider(s)
	if provider == "" {
		return nil, fmt.Errorf("unable to infer provider from model %q", s)
	}
	return &ModelInfo{Provider: provider, Model: s}, nil
}

func inferProvider(model string) string {
	lower := strings.ToLower(model)
	for _, p := range modelPrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.provider
		}
	}
	return ""
}
