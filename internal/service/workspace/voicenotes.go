package workspace

import (
	"context"
	"strings"

	"dharmabot/internal/config"
	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
	"dharmabot/internal/service/markdown"
)

const (
	defaultVoicenoteTitle = "Untitled Note"
	recordingTitle        = "New Recording"
	fallbackNoteTitle     = "Polished Note"
)

func newVoicenoteDraft() *models.VoicenoteDraft {
	return &models.VoicenoteDraft{Title: defaultVoicenoteTitle}
}

// Voicenotes returns saved notes, most recently updated first.
func (w *Workspace) Voicenotes() []*models.Voicenote {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]*models.Voicenote, len(w.voicenotes))
	for i, v := range w.voicenotes {
		out[i] = copyOf(v)
	}
	return out
}

func (w *Workspace) CurrentVoicenote() *models.VoicenoteDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyOf(w.currentVoicenote)
}

// NewVoicenote starts a blank note.
func (w *Workspace) NewVoicenote() *models.VoicenoteDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.currentVoicenote = newVoicenoteDraft()
	return copyOf(w.currentVoicenote)
}

// ProcessRecording stores the audio and runs transcribe, polish and analyze
// on it. The open note keeps its ID and title but its text is replaced.
// Stage failures are reported in the result, not as an error.
func (w *Workspace) ProcessRecording(ctx context.Context, audio []byte, mimeType string, durationSeconds float64) (*services.RecordingResult, error) {
	if len(audio) == 0 {
		return nil, &domain.ValidationError{Message: "No audio recorded."}
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	w.mu.Lock()
	if w.recordingBusy {
		w.mu.Unlock()
		return nil, busyError("voicenote", w.currentVoicenote.ID, "Recording processing")
	}
	w.recordingBusy = true

	note := w.currentVoicenote
	title := note.Title
	if title == "" {
		title = recordingTitle
	}
	previousRef := note.AudioRef
	note.Title = title
	note.RawTranscript = ""
	note.PolishedNoteMarkdown = ""
	note.LegalSummary = nil
	note.AudioRef = w.newID()
	note.AudioMimeType = mimeType
	note.DurationSeconds = durationSeconds
	ref := note.AudioRef
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.recordingBusy = false
		w.mu.Unlock()
	}()

	if err := w.repos.Audio.Put(detached(ctx), w.ownerID, ref, audio, mimeType); err != nil {
		w.logger.Warn("failed to store recording", "error", err)
		ref = ""
	}

	var stageErrors []string

	transcript := ""
	transcription := w.gateway.TranscribeAudio(ctx, audio, mimeType)
	if transcription.IsError() {
		stageErrors = append(stageErrors, transcription.Text)
	} else {
		transcript = transcription.Text
	}

	polished := ""
	polishing := w.gateway.PolishNote(ctx, transcript)
	switch {
	case polishing.SuggestedTitle != "":
		title = polishing.SuggestedTitle
	case title == "" || title == recordingTitle || title == defaultVoicenoteTitle:
		title = preview(transcript, config.VoicenoteTitlePreviewLength)
		if title == "" {
			title = fallbackNoteTitle
		}
	}
	if polishing.IsError() {
		stageErrors = append(stageErrors, polishing.Text)
	} else {
		polished = polishing.Text
	}

	var summary *models.LegalSummary
	if strings.TrimSpace(transcript) != "" {
		analysis := w.gateway.AnalyzeConsultation(ctx, transcript)
		if analysis.IsError() {
			w.logger.Warn("consultation analysis failed", "error", analysis.Text)
		} else {
			summary = markdown.ParseLegalSummary(analysis.Text, analysis.Sources)
		}
	}

	w.mu.Lock()
	note.Title = title
	note.RawTranscript = transcript
	note.PolishedNoteMarkdown = polished
	note.LegalSummary = summary
	note.AudioRef = ref
	result := &services.RecordingResult{Draft: copyOf(note), Errors: stageErrors}
	w.mu.Unlock()

	// The old recording is dropped unless a saved note still points at it.
	if previousRef != "" && !w.audioInUse(previousRef) {
		if err := w.repos.Audio.Delete(detached(ctx), w.ownerID, previousRef); err != nil {
			w.logger.Warn("failed to delete replaced recording", "error", err)
		}
	}

	w.logger.Info("recording processed",
		"duration_seconds", durationSeconds,
		"transcript_chars", len(transcript),
		"has_summary", summary != nil,
		"stage_errors", len(stageErrors),
	)
	return result, nil
}

func (w *Workspace) audioInUse(ref string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.savedNoteHasAudio(ref)
}

// savedNoteHasAudio reports whether a saved note points at ref. Caller holds mu.
func (w *Workspace) savedNoteHasAudio(ref string) bool {
	for _, v := range w.voicenotes {
		if v.AudioRef == ref {
			return true
		}
	}
	return false
}

// UpdateVoicenote applies user edits to the open note.
func (w *Workspace) UpdateVoicenote(update *services.VoicenoteUpdate) *models.VoicenoteDraft {
	w.mu.Lock()
	defer w.mu.Unlock()

	if update.Title != nil {
		w.currentVoicenote.Title = *update.Title
	}
	if update.RawTranscript != nil {
		w.currentVoicenote.RawTranscript = *update.RawTranscript
	}
	if update.PolishedNoteMarkdown != nil {
		w.currentVoicenote.PolishedNoteMarkdown = *update.PolishedNoteMarkdown
	}
	return copyOf(w.currentVoicenote)
}

// SaveVoicenote persists the open note, keeping the creation time of an
// earlier save.
func (w *Workspace) SaveVoicenote(ctx context.Context) (*models.Voicenote, error) {
	w.persistMu.Lock()
	defer w.persistMu.Unlock()

	w.mu.Lock()
	note := w.currentVoicenote
	now := w.millis()
	if note.ID == "" {
		note.ID = w.newID()
	}

	createdAt := now
	if existing, ok := find(w.voicenotes, note.ID); ok {
		createdAt = existing.CreatedAt
	}
	title := strings.TrimSpace(note.Title)
	if title == "" {
		title = defaultVoicenoteTitle
	}

	saved := &models.Voicenote{
		ID:                   note.ID,
		Title:                title,
		CreatedAt:            createdAt,
		UpdatedAt:            now,
		AudioRef:             note.AudioRef,
		AudioMimeType:        note.AudioMimeType,
		RawTranscript:        note.RawTranscript,
		PolishedNoteMarkdown: note.PolishedNoteMarkdown,
		LegalSummary:         note.LegalSummary,
		DurationSeconds:      note.DurationSeconds,
	}
	w.voicenotes = upsert(w.voicenotes, saved)
	sortByRecency(w.voicenotes)
	w.mu.Unlock()

	if err := w.repos.Voicenotes.Save(detached(ctx), w.ownerID, copyOf(saved)); err != nil {
		return nil, err
	}
	w.logger.Info("voicenote saved", "voicenote_id", saved.ID)
	return copyOf(saved), nil
}

// LoadVoicenote opens a saved note for editing.
func (w *Workspace) LoadVoicenote(id string) (*models.VoicenoteDraft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	saved, ok := find(w.voicenotes, id)
	if !ok {
		return nil, &domain.NotFoundError{Message: "voicenote not found"}
	}
	w.currentVoicenote = models.DraftFromVoicenote(saved)
	return copyOf(w.currentVoicenote), nil
}

// DeleteVoicenote removes a saved note and its recording. Deleting the open
// note starts a blank one.
func (w *Workspace) DeleteVoicenote(ctx context.Context, id string) error {
	w.persistMu.Lock()
	defer w.persistMu.Unlock()

	w.mu.Lock()
	var audioRef string
	if saved, ok := find(w.voicenotes, id); ok {
		audioRef = saved.AudioRef
	}
	w.voicenotes = remove(w.voicenotes, id)
	if w.currentVoicenote.ID == id {
		w.currentVoicenote = newVoicenoteDraft()
	}
	w.mu.Unlock()

	if err := w.repos.Voicenotes.Delete(detached(ctx), w.ownerID, id); err != nil {
		return err
	}
	if audioRef != "" {
		if err := w.repos.Audio.Delete(detached(ctx), w.ownerID, audioRef); err != nil {
			w.logger.Warn("failed to delete recording", "voicenote_id", id, "error", err)
		}
	}
	return nil
}

// Recording returns the stored audio for a reference held by the open note
// or a saved note.
func (w *Workspace) Recording(ctx context.Context, ref string) ([]byte, string, error) {
	w.mu.Lock()
	known := ref != "" && (w.currentVoicenote.AudioRef == ref || w.savedNoteHasAudio(ref))
	w.mu.Unlock()

	if !known {
		return nil, "", &domain.NotFoundError{Message: "recording not found"}
	}
	return w.repos.Audio.Get(ctx, w.ownerID, ref)
}
