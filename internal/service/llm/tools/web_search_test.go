package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dharmabot/internal/service/llm/tools/external"
)

type fakeSearchClient struct {
	results []external.SearchResult
	err     error
	gotOpts external.SearchOptions
}

func (f *fakeSearchClient) Search(ctx context.Context, query string, opts external.SearchOptions) (*external.SearchResponse, error) {
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &external.SearchResponse{Results: f.results, Query: query}, nil
}

func TestWebSearchTool_Ground(t *testing.T) {
	published := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	client := &fakeSearchClient{results: []external.SearchResult{
		{Title: "BNS 2023 overview", URL: "https://example.com/bns", Snippet: strings.Repeat("x", 700), PublishedAt: &published},
		{Title: "BNSS commentary", URL: "https://example.com/bnss", Snippet: "procedure"},
	}}
	tool := NewWebSearchTool(client, nil)

	g, err := tool.Ground(context.Background(), "  new criminal laws  ", 50)
	if err != nil {
		t.Fatalf("Ground() error = %v", err)
	}

	if client.gotOpts.MaxResults != 10 {
		t.Errorf("MaxResults = %d, want clamp to 10", client.gotOpts.MaxResults)
	}
	if client.gotOpts.Country != "india" || client.gotOpts.IncludeDomains != nil {
		t.Errorf("unexpected jurisdiction options: %+v", client.gotOpts)
	}
	if len(g.Sources) != 2 || g.Sources[0].URI != "https://example.com/bns" || g.Sources[1].Title != "BNSS commentary" {
		t.Errorf("unexpected sources: %+v", g.Sources)
	}
	if !strings.Contains(g.Context, `Web search results for "new criminal laws"`) {
		t.Errorf("context missing header: %q", g.Context)
	}
	if !strings.Contains(g.Context, "published 2024-07-01") {
		t.Error("context missing publish date")
	}
	if strings.Contains(g.Context, strings.Repeat("x", 601)) {
		t.Error("snippet was not truncated")
	}
}

func TestWebSearchTool_Errors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeSearchClient
		query  string
	}{
		{name: "empty query", client: &fakeSearchClient{}, query: "   "},
		{name: "client failure", client: &fakeSearchClient{err: errors.New("boom")}, query: "bail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWebSearchTool(tt.client, nil).Ground(context.Background(), tt.query, 0); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestWebSearchTool_NoResults(t *testing.T) {
	client := &fakeSearchClient{}
	g, err := NewWebSearchTool(client, nil).Ground(context.Background(), "obscure", 0)
	if err != nil {
		t.Fatalf("Ground() error = %v", err)
	}
	if g.Context != "" || len(g.Sources) != 0 {
		t.Errorf("expected empty grounding, got %+v", g)
	}
	if client.gotOpts.MaxResults != 5 {
		t.Errorf("MaxResults = %d, want default 5", client.gotOpts.MaxResults)
	}
}
