package handler

import (
	"net/http"
	"strings"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
	"dharmabot/internal/httputil"
	"dharmabot/internal/service/export"
)

type voicenoteResponse struct {
	Voicenote *models.VoicenoteDraft `json:"voicenote"`
}

// ListVoicenotes returns saved notes, newest first
// GET /api/voicenotes
func (h *WorkspaceHandler) ListVoicenotes(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"voicenotes": ws.Voicenotes()})
}

// CurrentVoicenote returns the open note
// GET /api/voicenotes/current
func (h *WorkspaceHandler) CurrentVoicenote(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, voicenoteResponse{Voicenote: ws.CurrentVoicenote()})
}

// NewVoicenote opens a blank note
// POST /api/voicenotes/new
func (h *WorkspaceHandler) NewVoicenote(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, voicenoteResponse{Voicenote: ws.NewVoicenote()})
}

// UploadRecording transcribes, polishes and analyzes a recording into the
// open note. Failed stages are listed in "errors" with a 200.
// POST /api/voicenotes/recordings
func (h *WorkspaceHandler) UploadRecording(w http.ResponseWriter, r *http.Request) {
	audio, mimeType, duration, err := readAudio(w, r)
	if err != nil {
		handleError(w, err)
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	result, err := ws.ProcessRecording(r.Context(), audio, mimeType, duration)
	if err != nil {
		handleError(w, err)
		return
	}
	if len(result.Errors) > 0 {
		h.logger.Warn("recording processed with errors",
			"user_id", httputil.GetUserID(r),
			"errors", len(result.Errors),
		)
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// UpdateVoicenote applies manual edits to the open note
// PATCH /api/voicenotes/current
func (h *WorkspaceHandler) UpdateVoicenote(w http.ResponseWriter, r *http.Request) {
	var update services.VoicenoteUpdate
	if err := httputil.ParseJSON(w, r, &update); err != nil {
		handleParseError(w, err)
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, voicenoteResponse{Voicenote: ws.UpdateVoicenote(&update)})
}

// SaveVoicenote stores the open note
// POST /api/voicenotes/save
func (h *WorkspaceHandler) SaveVoicenote(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	saved, err := ws.SaveVoicenote(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, saved)
}

// LoadVoicenote opens a saved note
// POST /api/voicenotes/{id}/load
func (h *WorkspaceHandler) LoadVoicenote(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "id")
	if !ok {
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	note, err := ws.LoadVoicenote(id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, voicenoteResponse{Voicenote: note})
}

// DeleteVoicenote removes a saved note and its recording
// DELETE /api/voicenotes/{id}
func (h *WorkspaceHandler) DeleteVoicenote(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathID(w, r, "id")
	if !ok {
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	if err := ws.DeleteVoicenote(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRecording streams a stored recording for playback
// GET /api/voicenotes/audio/{ref}
func (h *WorkspaceHandler) GetRecording(w http.ResponseWriter, r *http.Request) {
	ref, ok := requirePathID(w, r, "ref")
	if !ok {
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	audio, mimeType, err := ws.Recording(r.Context(), ref)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondFile(w, mimeType, "", audio)
}

// ExportVoicenote downloads the open note with its summary and transcript
// GET /api/voicenotes/current/export?format=docx|txt
func (h *WorkspaceHandler) ExportVoicenote(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	note := ws.CurrentVoicenote()
	if note.PolishedNoteMarkdown == "" && note.RawTranscript == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Nothing to export yet.")
		return
	}
	h.respondExport(w, r, voicenoteDocument(note), "voicenote")
}

// voicenoteDocument lays out a note as the polished text, the legal summary
// sections and the raw transcript.
func voicenoteDocument(note *models.VoicenoteDraft) *export.Document {
	var sb strings.Builder
	sb.WriteString(note.PolishedNoteMarkdown)

	doc := &export.Document{Title: note.Title}
	if s := note.LegalSummary; s != nil {
		if s.BriefSummary != "" {
			sb.WriteString("\n\n## Brief Summary\n\n" + s.BriefSummary)
		}
		writeBulletSection(&sb, "Key Legal Issues", s.KeyLegalIssues)
		writeBulletSection(&sb, "Legal Remedies", s.LegalRemedies)
		writeBulletSection(&sb, "Follow-up Actions", s.FollowUpActions)
		doc.Citations = s.ReferencedSources
	}
	if note.RawTranscript != "" {
		sb.WriteString("\n\n## Transcript\n\n" + note.RawTranscript)
	}

	doc.Markdown = strings.TrimSpace(sb.String())
	return doc
}

func writeBulletSection(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n\n## " + heading + "\n\n")
	for _, item := range items {
		sb.WriteString("- " + item + "\n")
	}
}
