package tools

// ToolConfig tunes external web search grounding.
type ToolConfig struct {
	DefaultResults int
	MaxResults     int
	// MaxSnippetChars truncates each result before it enters the prompt
	MaxSnippetChars int

	// Country boosts results from the jurisdiction the assistant advises on
	Country string
	// PreferredDomains, when set, restricts results to these sites
	PreferredDomains []string
}

// DefaultToolConfig targets Indian legal sources without restricting domains.
func DefaultToolConfig() *ToolConfig {
	return &ToolConfig{
		DefaultResults:  5,
		MaxResults:      10,
		MaxSnippetChars: 600,
		Country:         "india",
	}
}
