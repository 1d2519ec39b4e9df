package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"dharmabot/internal/config"
	"dharmabot/internal/domain/services"
	"dharmabot/internal/httputil"
)

// AttachmentHandler prepares files for chat messages
type AttachmentHandler struct {
	processor services.AttachmentProcessor
	logger    *slog.Logger
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(processor services.AttachmentProcessor, logger *slog.Logger) *AttachmentHandler {
	return &AttachmentHandler{processor: processor, logger: logger}
}

// Upload converts one multipart "file" part into an attachment the client
// sends back with its next message.
// POST /api/chat/attachments
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave headroom over the per-file limit so oversized files get the
	// friendly validation message instead of a 413
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxAttachmentBytes+(1<<20))
	if err := r.ParseMultipartForm(config.MaxAttachmentBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			handleError(w, err)
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "A file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handleError(w, err)
		return
	}

	att, err := h.processor.Process(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, att)
}
