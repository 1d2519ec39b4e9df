package capabilities

import "gopkg.in/yaml.v3"

// ModelCapabilities describes what a model accepts and which built-in tools it has.
type ModelCapabilities struct {
	// Model identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"id"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	// NativeWebSearch means the provider grounds answers itself and returns citations.
	// Models without it get search results injected from the external search client.
	NativeWebSearch bool `yaml:"native_web_search" json:"native_web_search"`

	SupportsVision bool `yaml:"supports_vision" json:"supports_vision"`
	SupportsAudio  bool `yaml:"supports_audio" json:"supports_audio"`
	SupportsPDF    bool `yaml:"supports_pdf" json:"supports_pdf"`

	ContextWindow int `yaml:"context_window" json:"context_window"`
	MaxOutput     int `yaml:"max_output" json:"max_output"`
}

// ProviderCapabilities is one provider file. Models keep the file's order.
type ProviderCapabilities struct {
	Provider    string              `yaml:"provider" json:"provider"`
	DisplayName string              `yaml:"display_name" json:"display_name"`
	Models      []ModelCapabilities `yaml:"-" json:"models"`
}

// UnmarshalYAML keeps models in file order.
func (p *ProviderCapabilities) UnmarshalYAML(node *yaml.Node) error {
	type header struct {
		Provider    string                       `yaml:"provider"`
		DisplayName string                       `yaml:"display_name"`
		Models      map[string]ModelCapabilities `yaml:"models"`
	}
	var h header
	if err := node.Decode(&h); err != nil {
		return err
	}
	p.Provider = h.Provider
	p.DisplayName = h.DisplayName

	// A mapping node's Content alternates key, value
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "models" {
			continue
		}
		entries := node.Content[i+1].Content
		for j := 0; j+1 < len(entries); j += 2 {
			id := entries[j].Value
			model := h.Models[id]
			model.ID = id
			p.Models = append(p.Models, model)
		}
		return nil
	}
	return nil
}
