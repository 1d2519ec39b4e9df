// Package attachments prepares uploaded files for a chat message.
package attachments

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"dharmabot/internal/config"
	"dharmabot/internal/domain"
	"dharmabot/internal/domain/services"
)

// imageMIMETypes are sent to the model as images.
var imageMIMETypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/heic", "image/heif"}

// Processor implements services.AttachmentProcessor.
type Processor struct {
	converters *converterRegistry
	maxBytes   int64
	logger     *slog.Logger
}

var _ services.AttachmentProcessor = (*Processor)(nil)

// NewProcessor creates a processor with the text and HTML converters.
func NewProcessor(logger *slog.Logger) *Processor {
	return &Processor{
		converters: newConverterRegistry(newTextConverter(), newHTMLConverter()),
		maxBytes:   config.MaxAttachmentBytes,
		logger:     logger,
	}
}

// Process converts text formats to markdown Content. Images go to
// ImagePageDataURLs. PDFs, Word documents and anything else are passed as a
// data URL in Content for the model to read inline.
func (p *Processor) Process(ctx context.Context, name, mimeType string, data []byte) (*services.Attachment, error) {
	if int64(len(data)) > p.maxBytes {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("File too large (max %dMB)", p.maxBytes>>20),
		}
	}
	if len(data) == 0 {
		return nil, &domain.ValidationError{Message: "File is empty."}
	}

	mimeType = baseMIME(mimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = baseMIME(http.DetectContentType(data))
	}

	att := &services.Attachment{
		Name:     name,
		MIMEType: mimeType,
		Size:     int64(len(data)),
	}

	if c := p.converters.lookup(name, mimeType); c != nil {
		content, err := c.Convert(ctx, data)
		if err != nil {
			p.logger.Warn("attachment conversion failed", "name", name, "converter", c.Name(), "error", err)
			return nil, err
		}
		att.Content = content
		p.logger.Debug("attachment converted", "name", name, "converter", c.Name(), "chars", len(content))
		return att, nil
	}

	url := dataURL(mimeType, data)
	if slices.Contains(imageMIMETypes, mimeType) {
		att.ImagePageDataURLs = []string{url}
	} else {
		att.Content = url
	}
	p.logger.Debug("attachment inlined", "name", name, "mime_type", mimeType, "bytes", len(data))
	return att, nil
}

func dataURL(mimeType string, data []byte) string {
	var sb strings.Builder
	sb.WriteString("data:" + mimeType + ";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(data))
	return sb.String()
}
