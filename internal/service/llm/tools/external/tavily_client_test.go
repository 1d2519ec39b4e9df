package external

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTavilyClient_Search(t *testing.T) {
	var got tavilyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": "bail",
			"results": [
				{"title": "Bail law", "url": "https://example.com/bail", "content": "snippet", "score": 0.9, "published_date": "2024-01-02T00:00:00Z"},
				{"title": "No url", "url": "", "content": "dropped"}
			]
		}`))
	}))
	defer server.Close()

	client := NewTavilyClient("test-key", WithBaseURL(server.URL))
	resp, err := client.Search(context.Background(), "bail", SearchOptions{
		MaxResults:     50,
		Depth:          "advanced",
		Country:        "india",
		IncludeDomains: []string{"indiankanoon.org"},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if got.Query != "bail" || got.MaxResults != 20 || got.SearchDepth != "advanced" {
		t.Errorf("unexpected request body: %+v", got)
	}
	if got.Country != "india" || len(got.IncludeDomains) != 1 {
		t.Errorf("country/domains not forwarded: %+v", got)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	r := resp.Results[0]
	if r.URL != "https://example.com/bail" || r.Snippet != "snippet" || r.PublishedAt == nil {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestTavilyClient_CountryOnlyForGeneralTopic(t *testing.T) {
	var got tavilyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewTavilyClient("k", WithBaseURL(server.URL))
	if _, err := client.Search(context.Background(), "q", SearchOptions{Topic: "news", Country: "india"}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got.Country != "" {
		t.Errorf("country sent with news topic: %q", got.Country)
	}
	if got.MaxResults != 1 {
		t.Errorf("MaxResults = %d, want floor of 1", got.MaxResults)
	}
}

func TestTavilyClient_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exhausted", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewTavilyClient("k", WithBaseURL(server.URL))
	_, err := client.Search(context.Background(), "q", SearchOptions{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Body != "quota exhausted" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}
