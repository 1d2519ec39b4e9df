// Package external holds clients for third-party web search APIs.
package external

import (
	"context"
	"fmt"
	"time"
)

// SearchClient runs one web search.
type SearchClient interface {
	Search(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error)
}

// SearchOptions narrows a search. Zero values leave the API default.
type SearchOptions struct {
	MaxResults int
	// Depth is "basic" or "advanced"
	Depth string
	Topic string
	// Country boosts results published in one country, e.g. "india"
	Country        string
	IncludeDomains []string
}

// SearchResponse is the normalized result list.
type SearchResponse struct {
	Query   string
	Results []SearchResult
}

// SearchResult is one hit. PublishedAt is nil when the API gives no date.
type SearchResult struct {
	Title       string
	URL         string
	Snippet     string
	PublishedAt *time.Time
	Score       float64
}

// APIError is a non-2xx answer from the search API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("search API returned status %d: %s", e.StatusCode, e.Body)
}
