package handler

import (
	"net/http"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/middleware"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	Preferences *UserPreferencesHandler
	Models      *ModelsHandler
	Workspace   *WorkspaceHandler
	Attachments *AttachmentHandler
	Lawyers     *LawyerHandler
}

// RegisterRoutes mounts the API on mux. Feature routes check the caller's
// profile type; authentication itself is applied around the whole mux.
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	gated := func(feature models.Feature) func(pattern string, fn http.HandlerFunc) {
		return func(pattern string, fn http.HandlerFunc) {
			mux.Handle(pattern, middleware.RequireFeature(feature, fn))
		}
	}

	// Health check
	mux.HandleFunc("GET /health", h.Health.HealthCheck)

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/auth/me", h.Auth.Me)

	// Model list and user preferences
	mux.HandleFunc("GET /api/models", h.Models.GetCapabilities)
	mux.HandleFunc("GET /api/users/me/preferences", h.Preferences.GetPreferences)
	mux.HandleFunc("PATCH /api/users/me/preferences", h.Preferences.UpdatePreferences)

	// Chat routes
	chat := gated(models.FeatureChat)
	chat("GET /api/chat/sessions", h.Workspace.ListSessions)
	chat("POST /api/chat/sessions/new", h.Workspace.NewSession)
	chat("POST /api/chat/sessions/{id}/load", h.Workspace.LoadSession)
	chat("PATCH /api/chat/sessions/{id}", h.Workspace.RenameSession)
	chat("DELETE /api/chat/sessions/{id}", h.Workspace.DeleteSession)
	chat("GET /api/chat/active", h.Workspace.ActiveSession)
	chat("POST /api/chat/messages", h.Workspace.SendMessage)
	chat("POST /api/chat/attachments", h.Attachments.Upload)

	// Drafting routes
	drafting := gated(models.FeatureDrafting)
	drafting("GET /api/drafts", h.Workspace.ListDrafts)
	drafting("GET /api/drafts/current", h.Workspace.CurrentDraft)
	drafting("PATCH /api/drafts/current", h.Workspace.UpdateDraft)
	drafting("GET /api/drafts/current/export", h.Workspace.ExportDraft)
	drafting("POST /api/drafts/new", h.Workspace.NewDraft)
	drafting("POST /api/drafts/generate", h.Workspace.GenerateDraft)
	drafting("POST /api/drafts/dictate", h.Workspace.DictateDraft)
	drafting("POST /api/drafts/save", h.Workspace.SaveDraft)
	drafting("POST /api/drafts/{id}/load", h.Workspace.LoadDraft)
	drafting("DELETE /api/drafts/{id}", h.Workspace.DeleteDraft)

	// Voice note routes
	voicenote := gated(models.FeatureVoicenote)
	voicenote("GET /api/voicenotes", h.Workspace.ListVoicenotes)
	voicenote("GET /api/voicenotes/current", h.Workspace.CurrentVoicenote)
	voicenote("PATCH /api/voicenotes/current", h.Workspace.UpdateVoicenote)
	voicenote("GET /api/voicenotes/current/export", h.Workspace.ExportVoicenote)
	voicenote("POST /api/voicenotes/new", h.Workspace.NewVoicenote)
	voicenote("POST /api/voicenotes/recordings", h.Workspace.UploadRecording)
	voicenote("POST /api/voicenotes/save", h.Workspace.SaveVoicenote)
	voicenote("GET /api/voicenotes/audio/{ref}", h.Workspace.GetRecording)
	voicenote("POST /api/voicenotes/{id}/load", h.Workspace.LoadVoicenote)
	voicenote("DELETE /api/voicenotes/{id}", h.Workspace.DeleteVoicenote)

	// Research routes
	research := gated(models.FeatureResearch)
	research("GET /api/research", h.Workspace.ListResearch)
	research("GET /api/research/current", h.Workspace.CurrentResearch)
	research("PATCH /api/research/current", h.Workspace.RenameResearch)
	research("GET /api/research/current/export", h.Workspace.ExportResearch)
	research("POST /api/research/new", h.Workspace.NewResearch)
	research("POST /api/research/run", h.Workspace.RunResearch)
	research("POST /api/research/save", h.Workspace.SaveResearch)
	research("POST /api/research/{id}/load", h.Workspace.LoadResearch)
	research("DELETE /api/research/{id}", h.Workspace.DeleteResearch)

	// Lawyer directory
	findLawyer := gated(models.FeatureFindLawyer)
	findLawyer("GET /api/lawyers", h.Lawyers.Search)
	findLawyer("GET /api/lawyers/cities", h.Lawyers.Cities)
	findLawyer("GET /api/lawyers/practice-areas", h.Lawyers.PracticeAreas)
}
