// Package service holds account-level services that are not tied to a
// workspace.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/repositories"
	"dharmabot/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const maxModelNameLength = 100

// UserPreferencesService implements the UserPreferencesService interface
type UserPreferencesService struct {
	prefsRepo  repositories.UserPreferencesRepository
	modelCheck func(model string) error
	now        func() time.Time
	logger     *slog.Logger
}

// PreferencesOption customizes a UserPreferencesService.
type PreferencesOption func(*UserPreferencesService)

// WithModelCheck rejects default models that check does not resolve.
func WithModelCheck(check func(model string) error) PreferencesOption {
	return func(s *UserPreferencesService) { s.modelCheck = check }
}

// NewUserPreferencesService creates a new user preferences service
func NewUserPreferencesService(
	prefsRepo repositories.UserPreferencesRepository,
	logger *slog.Logger,
	opts ...PreferencesOption,
) services.UserPreferencesService {
	s := &UserPreferencesService{
		prefsRepo: prefsRepo,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPreferences retrieves preferences for a user
func (s *UserPreferencesService) GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	prefs, err := s.prefsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	if prefs == nil {
		s.logger.Debug("no preferences found, returning defaults", "user_id", userID)
		prefs = models.DefaultPreferences(userID)
	}

	return prefs, nil
}

// UpdatePreferences updates user preferences (partial or full update)
func (s *UserPreferencesService) UpdatePreferences(ctx context.Context, userID string, req *models.UpdatePreferencesRequest) (*models.UserPreferences, error) {
	if err := s.validateUpdate(req); err != nil {
		return nil, err
	}

	existing, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Theme != nil {
		existing.Theme = *req.Theme
	}
	if req.WebSearchDefault != nil {
		existing.WebSearchDefault = *req.WebSearchDefault
	}
	if req.OptimizeQueries != nil {
		existing.OptimizeQueries = *req.OptimizeQueries
	}
	if req.Model != nil {
		existing.Model = *req.Model
	}
	existing.UpdatedAt = s.now().UnixMilli()

	if err := s.prefsRepo.Upsert(ctx, existing); err != nil {
		return nil, fmt.Errorf("upsert preferences: %w", err)
	}

	s.logger.Info("user preferences updated",
		"user_id", userID,
		"has_theme", req.Theme != nil,
		"has_web_search_default", req.WebSearchDefault != nil,
		"has_optimize_queries", req.OptimizeQueries != nil,
		"has_model", req.Model != nil,
	)

	return existing, nil
}

func (s *UserPreferencesService) validateUpdate(req *models.UpdatePreferencesRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Theme, validation.NilOrNotEmpty, validation.In(models.ThemeLight, models.ThemeDark)),
		validation.Field(&req.Model, validation.Length(0, maxModelNameLength), s.knownModel()),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// knownModel passes empty values; clearing the model falls back to the
// server default.
func (s *UserPreferencesService) knownModel() validation.Rule {
	return validation.By(func(value any) error {
		v, isNil := validation.Indirect(value)
		model, _ := v.(string)
		if isNil || model == "" || s.modelCheck == nil {
			return nil
		}
		if err := s.modelCheck(model); err != nil {
			return errors.New("is not an available model")
		}
		return nil
	})
}
