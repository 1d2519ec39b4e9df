package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dharmabot/internal/config"
	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
	"dharmabot/internal/httputil"
	"dharmabot/internal/service/export"
)

// WorkspaceHandler serves the chat, drafting, voice note and research views
// of the caller's workspace.
type WorkspaceHandler struct {
	workspaces  services.WorkspaceRegistry
	preferences services.UserPreferencesService
	now         func() time.Time
	logger      *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(
	workspaces services.WorkspaceRegistry,
	preferences services.UserPreferencesService,
	logger *slog.Logger,
) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaces:  workspaces,
		preferences: preferences,
		now:         time.Now,
		logger:      logger,
	}
}

// workspace loads the caller's workspace, writing the error response on failure.
func (h *WorkspaceHandler) workspace(w http.ResponseWriter, r *http.Request) (services.Workspace, bool) {
	ws, err := h.workspaces.Get(r.Context(), httputil.GetUserID(r))
	if err != nil {
		h.logger.Error("failed to load workspace", "user_id", httputil.GetUserID(r), "error", err)
		handleError(w, err)
		return nil, false
	}
	return ws, true
}

// userPreferences returns the caller's preferences, falling back to the
// defaults when they cannot be read.
func (h *WorkspaceHandler) userPreferences(r *http.Request) *models.UserPreferences {
	userID := httputil.GetUserID(r)
	prefs, err := h.preferences.GetPreferences(r.Context(), userID)
	if err != nil {
		h.logger.Warn("failed to load preferences, using defaults", "user_id", userID, "error", err)
		return models.DefaultPreferences(userID)
	}
	return prefs
}

// respondExport renders doc in the format named by the "format" query parameter.
func (h *WorkspaceHandler) respondExport(w http.ResponseWriter, r *http.Request, doc *export.Document, fallbackName string) {
	format, ok := export.ParseFormat(r.URL.Query().Get("format"))
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest, "format must be docx or txt")
		return
	}
	doc.GeneratedAt = h.now()

	data, err := export.Render(doc, format)
	if err != nil {
		h.logger.Error("export failed", "format", format, "error", err)
		handleError(w, err)
		return
	}
	httputil.RespondFile(w, format.ContentType(), export.FileName(doc.Title, fallbackName, format), data)
}

// audioUpload is the JSON form of a recording upload.
type audioUpload struct {
	Audio           string  `json:"audio"` // base64 or data URL
	MIMEType        string  `json:"mimeType"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// readAudio accepts either a multipart form with an "audio" file part or a
// JSON body with base64 audio.
func readAudio(w http.ResponseWriter, r *http.Request) ([]byte, string, float64, error) {
	// Base64 inflates the payload by a third
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes*4/3+4096)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readMultipartAudio(r)
	}

	var upload audioUpload
	if err := json.NewDecoder(r.Body).Decode(&upload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", 0, err
		}
		return nil, "", 0, &domain.ValidationError{Message: "Invalid request body"}
	}

	encoded := upload.Audio
	mimeType := upload.MIMEType
	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", 0, &domain.ValidationError{Message: "Invalid audio data URL"}
		}
		if mimeType == "" {
			mimeType, _, _ = strings.Cut(header, ";")
		}
		encoded = payload
	}

	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", 0, &domain.ValidationError{Message: "Audio must be base64 encoded"}
	}
	return audio, mimeType, upload.DurationSeconds, nil
}

func readMultipartAudio(r *http.Request) ([]byte, string, float64, error) {
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", 0, err
		}
		return nil, "", 0, &domain.ValidationError{Message: "Invalid multipart form"}
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		return nil, "", 0, &domain.ValidationError{Message: "An audio file is required"}
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return nil, "", 0, err
	}

	mimeType := r.FormValue("mimeType")
	if mimeType == "" {
		mimeType = header.Header.Get("Content-Type")
	}

	var duration float64
	if v := r.FormValue("durationSeconds"); v != "" {
		duration, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, "", 0, &domain.ValidationError{Message: "durationSeconds must be a number"}
		}
	}
	return audio, mimeType, duration, nil
}
