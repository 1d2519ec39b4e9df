// Package workspace keeps a user's chat sessions, drafts, voice notes and
// research in memory, mirrors every change to storage, and runs the
// inference tasks behind each view.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/repositories"
	"dharmabot/internal/domain/services"
	domainllm "dharmabot/internal/domain/services/llm"
)

// Repositories are the collections a workspace reads and writes.
type Repositories struct {
	Sessions   repositories.ChatSessionRepository
	Drafts     repositories.DraftRepository
	Voicenotes repositories.VoicenoteRepository
	Research   repositories.ResearchRepository
	Audio      repositories.AudioRepository
}

// Workspace implements services.Workspace for one user.
//
// mu guards in-memory state only. Inference calls run with it released; the
// busy flags reject a second call of the same kind while one is in flight.
//
// persistMu is held from a mutation through its storage write so writes land
// in mutation order. Lock order is persistMu, then mu.
type Workspace struct {
	ownerID string
	gateway domainllm.Gateway
	repos   Repositories
	logger  *slog.Logger

	now   func() time.Time
	newID func() string

	persistMu sync.Mutex
	mu        sync.Mutex

	sessions        []*models.ChatSession
	activeSessionID string
	pendingSessions map[string]bool

	drafts        []*models.SavedDraft
	currentDraft  *models.DocumentDraft
	draftBusy     bool
	dictationBusy bool

	voicenotes       []*models.Voicenote
	currentVoicenote *models.VoicenoteDraft
	recordingBusy    bool

	research        []*models.SavedResearch
	currentResearch *models.ResearchDraft
	researchBusy    bool
}

var _ services.Workspace = (*Workspace)(nil)

// Option customizes a Workspace.
type Option func(*Workspace)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(newID func() string) Option {
	return func(w *Workspace) { w.newID = newID }
}

// New creates an empty workspace. Call Load to read persisted collections.
func New(ownerID string, gateway domainllm.Gateway, repos Repositories, logger *slog.Logger, opts ...Option) *Workspace {
	w := &Workspace{
		ownerID:          ownerID,
		gateway:          gateway,
		repos:            repos,
		logger:           logger.With("user_id", ownerID),
		now:              time.Now,
		newID:            uuid.NewString,
		pendingSessions:  make(map[string]bool),
		currentDraft:     newDocumentDraft(),
		currentVoicenote: newVoicenoteDraft(),
		currentResearch:  &models.ResearchDraft{Citations: []models.Source{}},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Load reads every collection from storage, replacing in-memory state.
func (w *Workspace) Load(ctx context.Context) error {
	sessions, err := w.repos.Sessions.GetAll(ctx, w.ownerID)
	if err != nil {
		return fmt.Errorf("load chat sessions: %w", err)
	}
	drafts, err := w.repos.Drafts.GetAll(ctx, w.ownerID)
	if err != nil {
		return fmt.Errorf("load drafts: %w", err)
	}
	voicenotes, err := w.repos.Voicenotes.GetAll(ctx, w.ownerID)
	if err != nil {
		return fmt.Errorf("load voicenotes: %w", err)
	}
	research, err := w.repos.Research.GetAll(ctx, w.ownerID)
	if err != nil {
		return fmt.Errorf("load research: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessions = sessions
	w.drafts = drafts
	w.voicenotes = voicenotes
	w.research = research

	w.logger.Debug("workspace loaded",
		"sessions", len(sessions),
		"drafts", len(drafts),
		"voicenotes", len(voicenotes),
		"research", len(research),
	)
	return nil
}

// detached keeps storage writes running after the caller goes away, so a
// mutation already applied in memory always reaches storage.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (w *Workspace) millis() int64 {
	return w.now().UnixMilli()
}

// busyError reports that an inference call of the same kind is running.
func busyError(resourceType, id, what string) error {
	return &domain.ConflictError{
		Message:      what + " is already in progress",
		ResourceType: resourceType,
		ResourceID:   id,
	}
}

// sortByRecency orders records most recent first, keeping ties stable.
func sortByRecency[T repositories.Record](records []T) {
	slices.SortStableFunc(records, func(a, b T) int {
		switch {
		case a.RecencyMillis() > b.RecencyMillis():
			return -1
		case a.RecencyMillis() < b.RecencyMillis():
			return 1
		}
		return 0
	})
}

// upsert replaces the record with the same id or prepends it.
func upsert[T repositories.Record](records []T, record T) []T {
	for i, r := range records {
		if r.RecordID() == record.RecordID() {
			records[i] = record
			return records
		}
	}
	return append([]T{record}, records...)
}

func find[T repositories.Record](records []T, id string) (T, bool) {
	for _, r := range records {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

func remove[T repositories.Record](records []T, id string) []T {
	return slices.DeleteFunc(records, func(r T) bool { return r.RecordID() == id })
}

// preview returns the first n runes of s, with "..." appended when s is longer.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// Snapshot copies are returned to callers so they can be encoded while the
// workspace keeps changing.

func copySession(s *models.ChatSession) *models.ChatSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = slices.Clone(s.Messages)
	return &c
}

func copyOf[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
