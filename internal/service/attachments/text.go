package attachments

import (
	"context"
	"strings"
	"unicode/utf8"

	"dharmabot/internal/domain"
)

// textConverter passes plain text and markdown through. Plain text is
// valid markdown.
type textConverter struct{}

func newTextConverter() Converter {
	return textConverter{}
}

func (textConverter) Convert(ctx context.Context, input []byte) (string, error) {
	if !utf8.Valid(input) {
		return "", &domain.ValidationError{Message: "Text file is not valid UTF-8."}
	}
	// Strip a UTF-8 byte order mark
	return strings.TrimPrefix(string(input), "\uFEFF"), nil
}

func (textConverter) MIMETypes() []string  { return []string{"text/plain", "text/markdown", "text/x-markdown"} }
func (textConverter) Extensions() []string { return []string{".txt", ".text", ".md", ".markdown"} }
func (textConverter) Name() string         { return "plaintext" }
