package repositories

import (
	"context"

	"dharmabot/internal/domain/models"
)

// Record is an element of a persisted collection.
type Record interface {
	RecordID() string
	RecencyMillis() int64
}

// CollectionRepository is the read-all / upsert / delete contract shared by
// every per-user collection. GetAll returns records most recent first.
type CollectionRepository[T Record] interface {
	GetAll(ctx context.Context, ownerID string) ([]T, error)

	// GetOne returns domain.ErrNotFound when no record has the id.
	GetOne(ctx context.Context, ownerID, id string) (T, error)

	// Save replaces the record with the same id or appends it.
	Save(ctx context.Context, ownerID string, record T) error

	// Delete removes the record. Deleting a missing id is a no-op.
	Delete(ctx context.Context, ownerID, id string) error
}

type (
	ChatSessionRepository = CollectionRepository[*models.ChatSession]
	DraftRepository       = CollectionRepository[*models.SavedDraft]
	VoicenoteRepository   = CollectionRepository[*models.Voicenote]
	ResearchRepository    = CollectionRepository[*models.SavedResearch]
)

// UserRepository stores registered accounts in a single global collection.
type UserRepository interface {
	List(ctx context.Context) ([]*models.User, error)

	// FindByEmail matches case-insensitively. Returns domain.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)

	// Create appends the user unless the email is taken, in which case it
	// returns a *domain.ConflictError and leaves the collection untouched.
	Create(ctx context.Context, user *models.User) error
}

// AuthSessionRepository stores the logged-in session blob per session ID.
type AuthSessionRepository interface {
	// Get returns domain.ErrNotFound when there is no session.
	Get(ctx context.Context, sessionID string) (*models.SessionUser, error)
	Put(ctx context.Context, sessionID string, user *models.SessionUser) error
	Delete(ctx context.Context, sessionID string) error
}

// AudioRepository keeps voice note recordings under an opaque reference.
type AudioRepository interface {
	Put(ctx context.Context, ownerID, ref string, data []byte, mimeType string) error
	// Get returns domain.ErrNotFound for an unknown reference.
	Get(ctx context.Context, ownerID, ref string) ([]byte, string, error)
	Delete(ctx context.Context, ownerID, ref string) error
}
