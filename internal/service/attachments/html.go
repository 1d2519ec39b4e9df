package attachments

import (
	"context"
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
)

// htmlConverter sanitizes HTML and converts what is left to markdown. Saved
// judgments and statutes are often pasted in as web pages.
type htmlConverter struct {
	policy    *bluemonday.Policy
	converter *md.Converter
}

func newHTMLConverter() Converter {
	return &htmlConverter{
		// UGC keeps formatting, links and tables but strips scripts, event
		// handlers and javascript: URLs
		policy:    bluemonday.UGCPolicy(),
		converter: md.NewConverter("", true, nil),
	}
}

func (c *htmlConverter) Convert(ctx context.Context, input []byte) (string, error) {
	sanitized := c.policy.SanitizeBytes(input)

	markdown, err := c.converter.ConvertBytes(sanitized)
	if err != nil {
		return "", fmt.Errorf("convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(string(markdown)), nil
}

func (c *htmlConverter) MIMETypes() []string  { return []string{"text/html", "application/xhtml+xml"} }
func (c *htmlConverter) Extensions() []string { return []string{".html", ".htm", ".xhtml"} }
func (c *htmlConverter) Name() string         { return "html" }
