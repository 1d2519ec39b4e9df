package models

// Theme values accepted in preferences.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// UserPreferences are per-user settings for the assistant views.
type UserPreferences struct {
	UserID           string `json:"userId"`
	Theme            string `json:"theme"`
	WebSearchDefault bool   `json:"webSearchDefault"`
	OptimizeQueries  bool   `json:"optimizeQueries"`
	Model            string `json:"model,omitempty"`
	UpdatedAt        int64  `json:"updatedAt"`
}

// DefaultPreferences returns the settings a user starts with.
func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:          userID,
		Theme:           ThemeLight,
		OptimizeQueries: true,
	}
}

// UpdatePreferencesRequest is a partial update; nil fields are left alone.
type UpdatePreferencesRequest struct {
	Theme            *string `json:"theme"`
	WebSearchDefault *bool   `json:"webSearchDefault"`
	OptimizeQueries  *bool   `json:"optimizeQueries"`
	Model            *string `json:"model"`
}
