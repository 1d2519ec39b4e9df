package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	tavilyURL         = "https://api.tavily.com/search"
	tavilyTimeout     = 30 * time.Second
	tavilyMaxResults  = 20
	maxResponseBytes  = 4 << 20
	maxErrorBodyBytes = 512
)

// TavilyClient implements SearchClient for the Tavily search API.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// TavilyOption configures a TavilyClient.
type TavilyOption func(*TavilyClient)

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(url string) TavilyOption {
	return func(c *TavilyClient) { c.baseURL = url }
}

// WithHTTPClient replaces the default client with a 30s timeout.
func WithHTTPClient(hc *http.Client) TavilyOption {
	return func(c *TavilyClient) { c.httpClient = hc }
}

// NewTavilyClient creates a Tavily client.
func NewTavilyClient(apiKey string, opts ...TavilyOption) *TavilyClient {
	c := &TavilyClient{
		apiKey:     apiKey,
		baseURL:    tavilyURL,
		httpClient: &http.Client{Timeout: tavilyTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tavilyRequest struct {
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	Topic          string   `json:"topic,omitempty"`
	Country        string   `json:"country,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

type tavilyResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date,omitempty"`
	} `json:"results"`
}

// Search implements SearchClient. Results without a URL are dropped since
// they cannot be cited.
func (c *TavilyClient) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	body := tavilyRequest{
		Query:          query,
		MaxResults:     min(max(opts.MaxResults, 1), tavilyMaxResults),
		SearchDepth:    opts.Depth,
		Topic:          opts.Topic,
		IncludeDomains: opts.IncludeDomains,
	}
	// Tavily only accepts country for general searches
	if opts.Topic == "" || opts.Topic == "general" {
		body.Country = opts.Country
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode tavily response: %w", err)
	}

	out := &SearchResponse{Query: query, Results: make([]SearchResult, 0, len(decoded.Results))}
	for _, r := range decoded.Results {
		if r.URL == "" {
			continue
		}
		result := SearchResult{Title: r.Title, URL: r.URL, Snippet: r.Content, Score: r.Score}
		if t, err := time.Parse(time.RFC3339, r.PublishedDate); err == nil {
			result.PublishedAt = &t
		}
		out.Results = append(out.Results, result)
	}
	return out, nil
}
