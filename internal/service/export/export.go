// Package export renders drafts, voice notes and research results as Word
// documents or plain text for download.
package export

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"dharmabot/internal/domain/models"
	"dharmabot/internal/service/markdown"
)

// Format is a download format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatText Format = "txt"
)

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ParseFormat accepts "docx" and "txt". Empty means docx.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(s)) {
	case "", FormatDOCX:
		return FormatDOCX, true
	case FormatText:
		return FormatText, true
	}
	return "", false
}

// Document is the content of an export.
type Document struct {
	Title string
	// Query is printed under the title as "Research Query: ..." when set
	Query       string
	Markdown    string
	Citations   []models.Source
	GeneratedAt time.Time
}

const dateLayout = "2 January 2006"

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName turns a title into a download name, e.g. "Bail plea" -> "Bail_plea.docx".
func FileName(title, fallback string, f Format) string {
	if strings.TrimSpace(title) == "" {
		title = fallback
	}
	return unsafeFileChars.ReplaceAllString(title, "_") + "." + string(f)
}

// Render produces the document in the given format.
func Render(doc *Document, f Format) ([]byte, error) {
	if f == FormatText {
		return []byte(PlainText(doc)), nil
	}
	return DOCX(doc)
}

// PlainText renders the header, the flattened markdown and the citations.
func PlainText(doc *Document) string {
	var sb strings.Builder
	sb.WriteString(doc.Title + "\n\n")
	if doc.Query != "" {
		sb.WriteString("Research Query: " + doc.Query + "\n")
	}
	sb.WriteString("Generated on: " + doc.GeneratedAt.Format(dateLayout) + "\n\n")

	sb.WriteString(markdown.PlainText(doc.Markdown))

	if len(doc.Citations) > 0 {
		sb.WriteString("\n\nSources & Citations:\n")
		for i, c := range doc.Citations {
			sb.WriteString(strconv.Itoa(i+1) + ". " + citationLabel(c))
			if c.Title != "" && c.URI != "" {
				sb.WriteString(" (" + c.URI + ")")
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func citationLabel(c models.Source) string {
	if c.Title != "" {
		return c.Title
	}
	return c.URI
}
