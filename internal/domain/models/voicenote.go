package models

// LegalSummary is the structured analysis of a consultation transcript.
type LegalSummary struct {
	BriefSummary      string   `json:"briefSummary"`
	KeyLegalIssues    []string `json:"keyLegalIssues"`
	LegalRemedies     []string `json:"legalRemedies"`
	FollowUpActions   []string `json:"followUpActions"`
	ReferencedSources []Source `json:"referencedSources"`
}

// Voicenote is a persisted recording with its transcript and notes.
// ID and CreatedAt are always set.
type Voicenote struct {
	ID                   string        `json:"id"`
	Title                string        `json:"title"`
	CreatedAt            int64         `json:"createdAt"`
	UpdatedAt            int64         `json:"updatedAt"`
	AudioRef             string        `json:"audioRef,omitempty"`
	AudioMimeType        string        `json:"audioMimeType,omitempty"`
	RawTranscript        string        `json:"rawTranscript"`
	PolishedNoteMarkdown string        `json:"polishedNoteMarkdown"`
	LegalSummary         *LegalSummary `json:"legalSummary,omitempty"`
	DurationSeconds      float64       `json:"durationSeconds"`
}

func (v *Voicenote) RecordID() string     { return v.ID }
func (v *Voicenote) RecencyMillis() int64 { return v.UpdatedAt }

// VoicenoteDraft is the editable in-progress form of a voice note.
// An empty ID means it has never been saved.
type VoicenoteDraft struct {
	ID                   string        `json:"id,omitempty"`
	Title                string        `json:"title"`
	RawTranscript        string        `json:"rawTranscript"`
	PolishedNoteMarkdown string        `json:"polishedNoteMarkdown"`
	LegalSummary         *LegalSummary `json:"legalSummary,omitempty"`
	AudioRef             string        `json:"audioRef,omitempty"`
	AudioMimeType        string        `json:"audioMimeType,omitempty"`
	DurationSeconds      float64       `json:"durationSeconds"`
}

// Persisted reports whether the draft has been saved at least once.
func (d *VoicenoteDraft) Persisted() bool { return d.ID != "" }

// DraftFromVoicenote returns an editable copy of a saved note.
func DraftFromVoicenote(v *Voicenote) *VoicenoteDraft {
	return &VoicenoteDraft{
		ID:                   v.ID,
		Title:                v.Title,
		RawTranscript:        v.RawTranscript,
		PolishedNoteMarkdown: v.PolishedNoteMarkdown,
		LegalSummary:         v.LegalSummary,
		AudioRef:             v.AudioRef,
		AudioMimeType:        v.AudioMimeType,
		DurationSeconds:      v.DurationSeconds,
	}
}
