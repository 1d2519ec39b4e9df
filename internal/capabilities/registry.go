// Package capabilities describes the models each provider offers. The data
// is embedded YAML, one file per provider.
package capabilities

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Providers whose capability files are embedded, in display order.
var knownProviders = []string{"gemini", "anthropic", "openai", "lorem"}

// Registry is read-only after NewRegistry and safe for concurrent use.
type Registry struct {
	providers map[string]*ProviderCapabilities
}

// NewRegistry loads and checks every embedded provider file.
func NewRegistry() (*Registry, error) {
	r := &Registry{providers: make(map[string]*ProviderCapabilities, len(knownProviders))}
	for _, provider := range knownProviders {
		caps, err := loadProvider(provider)
		if err != nil {
			return nil, fmt.Errorf("load %s capabilities: %w", provider, err)
		}
		r.providers[provider] = caps
	}
	return r, nil
}

func loadProvider(provider string) (*ProviderCapabilities, error) {
	data, err := configFiles.ReadFile("config/" + provider + ".yaml")
	if err != nil {
		return nil, err
	}

	var caps ProviderCapabilities
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return nil, err
	}
	if caps.Provider != provider {
		return nil, fmt.Errorf("file declares provider %q", caps.Provider)
	}
	if len(caps.Models) == 0 {
		return nil, fmt.Errorf("no models listed")
	}
	return &caps, nil
}

// GetModelCapabilities returns the entry for model. Unlisted models fall
// back to the entry with the longest matching prefix, so dated model IDs
// resolve to their family ("claude-haiku-4-5-20251001" → "claude-haiku-4-5").
func (r *Registry) GetModelCapabilities(provider, model string) (*ModelCapabilities, error) {
	caps, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	var best *ModelCapabilities
	for i := range caps.Models {
		m := &caps.Models[i]
		if m.ID == model {
			return m, nil
		}
		if strings.HasPrefix(model, m.ID) && (best == nil || len(m.ID) > len(best.ID)) {
			best = m
		}
	}
	if best == nil {
		return nil, fmt.Errorf("unknown model %s for provider %s", model, provider)
	}
	return best, nil
}

// ListProviderModels returns a provider's models in file order.
func (r *Registry) ListProviderModels(provider string) ([]ModelCapabilities, error) {
	caps, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	return caps.Models, nil
}

// DisplayName returns the human readable provider name.
func (r *Registry) DisplayName(provider string) string {
	if caps, ok := r.providers[provider]; ok && caps.DisplayName != "" {
		return caps.DisplayName
	}
	return provider
}

// GetAllProviders returns the providers in display order.
func (r *Registry) GetAllProviders() []string {
	return append([]string(nil), knownProviders...)
}
