package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/service/llm/tools/external"
)

// WebSearchTool grounds a request for models without built-in search: it
// runs the query against an external search API and renders the results as
// context text plus citations.
type WebSearchTool struct {
	client external.SearchClient
	config *ToolConfig
}

// NewWebSearchTool creates a new WebSearchTool instance.
func NewWebSearchTool(
	client external.SearchClient,
	config *ToolConfig,
) *WebSearchTool {
	if config == nil {
		config = DefaultToolConfig()
	}
	return &WebSearchTool{
		client: client,
		config: config,
	}
}

// Grounding is the outcome of one search.
type Grounding struct {
	// Context is appended to the user's message. Empty when nothing was found.
	Context string
	Sources []models.Source
}

// Ground searches for query. maxResults <= 0 uses the configured default.
func (t *WebSearchTool) Ground(ctx context.Context, query string, maxResults int) (*Grounding, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("missing required parameter: query")
	}

	if maxResults <= 0 {
		maxResults = t.config.DefaultResults
	}
	maxResults = min(maxResults, t.config.MaxResults)

	response, err := t.client.Search(ctx, query, external.SearchOptions{
		MaxResults:     maxResults,
		Depth:          "advanced",
		Topic:          "general",
		Country:        t.config.Country,
		IncludeDomains: t.config.PreferredDomains,
	})
	if err != nil {
		return nil, fmt.Errorf("web search failed: %w", err)
	}

	grounding := &Grounding{}
	if len(response.Results) == 0 {
		return grounding, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n\nWeb search results for %q:\n", query)
	for i, result := range response.Results {
		snippet := result.Snippet
		if len(snippet) > t.config.MaxSnippetChars {
			snippet = strings.ToValidUTF8(snippet[:t.config.MaxSnippetChars], "") + "..."
		}

		fmt.Fprintf(&sb, "\n[%d] %s (%s)", i+1, result.Title, result.URL)
		if result.PublishedAt != nil {
			fmt.Fprintf(&sb, " published %s", result.PublishedAt.Format("2006-01-02"))
		}
		sb.WriteString("\n")
		sb.WriteString(snippet)
		sb.WriteString("\n")

		grounding.Sources = append(grounding.Sources, models.Source{URI: result.URL, Title: result.Title})
	}
	sb.WriteString("\nUse these results where relevant and cite them by their URL.")

	grounding.Context = sb.String()
	return grounding, nil
}
