package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
	"dharmabot/internal/httputil"
)

type tokenTable map[string]*services.Principal

func (t tokenTable) Authenticate(ctx context.Context, token string) (*services.Principal, error) {
	if p, ok := t[token]; ok {
		return p, nil
	}
	return nil, errors.New("unknown token")
}

var noContent = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRequireFeature(t *testing.T) {
	tests := []struct {
		name     string
		user     *models.SessionUser
		feature  models.Feature
		wantCode int
	}{
		{"anonymous", nil, models.FeatureChat, http.StatusUnauthorized},
		{"citizen chat", &models.SessionUser{ID: "u1", ProfileType: models.ProfileCitizen}, models.FeatureChat, http.StatusNoContent},
		{"citizen drafting", &models.SessionUser{ID: "u1", ProfileType: models.ProfileCitizen}, models.FeatureDrafting, http.StatusForbidden},
		{"judge drafting", &models.SessionUser{ID: "u2", ProfileType: models.ProfileJudge}, models.FeatureDrafting, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				r = httputil.WithSession(r, tt.user, "s1")
			}
			rec := httptest.NewRecorder()
			RequireFeature(tt.feature, noContent).ServeHTTP(rec, r)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusForbidden {
				var problem httputil.ProblemDetail
				if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if problem.Code != httputil.CodeFeatureLocked {
					t.Errorf("code = %q", problem.Code)
				}
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recovery(logger)(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drafts", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRecovery_ReraisesAbort(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	aborting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
		}
	}()
	Recovery(logger)(aborting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Error("expected the abort panic to propagate")
}

func TestAuth(t *testing.T) {
	lawyer := &models.SessionUser{ID: "u1", ProfileType: models.ProfileLawyer, Email: "l@example.com"}
	tokens := tokenTable{"good": {User: lawyer, SessionID: "s1"}}

	var seenUser, seenSession string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, seenSession = httputil.GetUserID(r), httputil.GetSessionID(r)
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Auth(tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))(next)

	tests := []struct {
		name     string
		method   string
		path     string
		header   string
		wantCode int
		wantUser string
	}{
		{"public health", http.MethodGet, "/health", "", http.StatusNoContent, ""},
		{"public login", http.MethodPost, "/api/auth/login", "", http.StatusNoContent, ""},
		{"preflight", http.MethodOptions, "/api/drafts", "", http.StatusNoContent, ""},
		{"missing token", http.MethodGet, "/api/drafts", "", http.StatusUnauthorized, ""},
		{"wrong scheme", http.MethodGet, "/api/drafts", "Basic good", http.StatusUnauthorized, ""},
		{"unknown token", http.MethodGet, "/api/drafts", "Bearer bad", http.StatusUnauthorized, ""},
		{"valid token", http.MethodGet, "/api/drafts", "bearer good", http.StatusNoContent, "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenUser, seenSession = "", ""
			r := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, r)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if seenUser != tt.wantUser {
				t.Errorf("user = %q, want %q", seenUser, tt.wantUser)
			}
			if tt.wantUser != "" && seenSession != "s1" {
				t.Errorf("session = %q, want s1", seenSession)
			}
		})
	}
}
