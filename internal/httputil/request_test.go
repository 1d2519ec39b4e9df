package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		wantOK  bool
	}{
		{name: "single object", body: `{"title": "Lease"}`, wantOK: true},
		{name: "trailing whitespace", body: "{\"title\": \"Lease\"}\n", wantOK: true},
		{name: "empty", body: "", wantErr: ErrEmptyBody},
		{name: "malformed", body: `{"title":`},
		{name: "two values", body: `{"title": "a"} {"title": "b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dest struct {
				Title string `json:"title"`
			}
			err := ParseJSON(httptest.NewRecorder(), r, &dest)
			if tt.wantOK {
				if err != nil || dest.Title != "Lease" {
					t.Fatalf("ParseJSON() = %v, title %q", err, dest.Title)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	tests := []struct {
		body     string
		wantSent bool
		want     string
	}{
		{`{}`, false, ""},
		{`{"model": null}`, true, ""},
		{`{"model": "lorem-fast"}`, true, "lorem-fast"},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var patch struct {
				Model Optional[string] `json:"model"`
			}
			if err := json.Unmarshal([]byte(tt.body), &patch); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, sent := patch.Model.Get()
			if sent != tt.wantSent || got != tt.want {
				t.Errorf("Get() = %q, %v; want %q, %v", got, sent, tt.want, tt.wantSent)
			}
		})
	}
}
