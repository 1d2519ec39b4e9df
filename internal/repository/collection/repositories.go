package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/repositories"
)

func NewChatSessionRepository(kv repositories.KVStore) repositories.ChatSessionRepository {
	return NewStore[*models.ChatSession](kv, KeyChatSessions)
}

func NewDraftRepository(kv repositories.KVStore) repositories.DraftRepository {
	return NewStore[*models.SavedDraft](kv, KeyDrafts)
}

func NewVoicenoteRepository(kv repositories.KVStore) repositories.VoicenoteRepository {
	return NewStore[*models.Voicenote](kv, KeyVoicenotes)
}

func NewResearchRepository(kv repositories.KVStore) repositories.ResearchRepository {
	return NewStore[*models.SavedResearch](kv, KeyResearch)
}

// UserStore is the global user collection.
type UserStore struct {
	users *Store[*models.User]
}

func NewUserRepository(kv repositories.KVStore) repositories.UserRepository {
	return &UserStore{users: &Store[*models.User]{kv: kv, key: KeyUsers}}
}

func (s *UserStore) List(ctx context.Context) ([]*models.User, error) {
	return s.users.GetAll(ctx, "")
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "user not found"}
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetOne(ctx, "", id)
}

// Create checks email uniqueness and appends inside one atomic rewrite.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return s.users.rewrite(ctx, "", func(users []*models.User) ([]*models.User, error) {
		for _, u := range users {
			if strings.EqualFold(u.Email, user.Email) {
				return nil, &domain.ConflictError{
					Message:      "User with this email already exists.",
					ResourceType: "user",
					ResourceID:   u.ID,
				}
			}
		}
		return append(users, user), nil
	})
}

// AuthSessionStore keeps one session blob per login under its own key.
type AuthSessionStore struct {
	kv repositories.KVStore
}

func NewAuthSessionRepository(kv repositories.KVStore) repositories.AuthSessionRepository {
	return &AuthSessionStore{kv: kv}
}

func sessionKey(sessionID string) string {
	return KeyUserSession + ":" + sessionID
}

func (s *AuthSessionStore) Get(ctx context.Context, sessionID string) (*models.SessionUser, error) {
	data, ok, err := s.kv.Get(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, &domain.NotFoundError{Message: "session not found"}
	}

	var user models.SessionUser
	if err := json.Unmarshal(data, &user); err != nil {
		// A blob that does not decode is treated like a missing one
		return nil, &domain.NotFoundError{Message: "session not found"}
	}
	return &user, nil
}

func (s *AuthSessionStore) Put(ctx context.Context, sessionID string, user *models.SessionUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, sessionKey(sessionID), data)
}

func (s *AuthSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.kv.Delete(ctx, sessionKey(sessionID))
}

// PreferencesStore keeps preferences as a single object per user.
type PreferencesStore struct {
	kv repositories.KVStore
}

func NewUserPreferencesRepository(kv repositories.KVStore) repositories.UserPreferencesRepository {
	return &PreferencesStore{kv: kv}
}

func (s *PreferencesStore) GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error) {
	data, ok, err := s.kv.Get(ctx, OwnerKey(userID, KeyPreferences))
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if !ok {
		return nil, nil
	}
	prefs := models.DefaultPreferences(userID)
	if err := json.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}

func (s *PreferencesStore) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, OwnerKey(prefs.UserID, KeyPreferences), data)
}
