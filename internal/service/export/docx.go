package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"dharmabot/internal/service/markdown"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

const (
	codeColor    = "C7254E"
	maxHeading   = 3
	ruleText     = "* * *"
	cellDivider  = " | "
	styleQuote   = "Quote"
	styleContent = "List Continue"
)

// DOCX builds a Word document from the export. The markdown body is walked
// as a goldmark AST and emitted through godocx.
func DOCX(doc *Document) ([]byte, error) {
	root, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("new docx: %w", err)
	}
	w := &docxWriter{root: root}

	if err := w.heading(doc.Title, 1); err != nil {
		return nil, err
	}
	if doc.Query != "" {
		w.paragraph("", func() { w.text("Research Query: "+doc.Query, runStyle{bold: true}) })
	}
	w.paragraph("", func() { w.text("Generated on: "+doc.GeneratedAt.Format(dateLayout), runStyle{italic: true}) })

	if err := w.markdown(doc.Markdown); err != nil {
		return nil, err
	}

	if len(doc.Citations) > 0 {
		if err := w.heading("Sources & Citations:", 2); err != nil {
			return nil, err
		}
		for i, c := range doc.Citations {
			w.paragraph("", func() {
				w.text(strconv.Itoa(i+1)+". ", runStyle{})
				if c.URI == "" {
					w.text(citationLabel(c), runStyle{})
					return
				}
				w.link(citationLabel(c), c.URI)
			})
		}
	}

	var buf bytes.Buffer
	if err := root.Write(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

type runStyle struct {
	bold, italic, strike, code bool
}

// docxWriter buffers inline text so adjacent text with the same style
// lands in a single run.
type docxWriter struct {
	root *docx.RootDoc
	src  []byte

	para    *docx.Paragraph
	pending strings.Builder
	style   runStyle
}

func (w *docxWriter) heading(text string, level int) error {
	if _, err := w.root.AddHeading(text, uint(min(level, maxHeading))); err != nil {
		return fmt.Errorf("add heading: %w", err)
	}
	return nil
}

func (w *docxWriter) paragraph(style string, fill func()) {
	w.para = w.root.AddParagraph("")
	if style != "" {
		w.para.Style(style)
	}
	fill()
	w.flush()
	w.para = nil
}

func (w *docxWriter) text(s string, st runStyle) {
	if s == "" {
		return
	}
	if w.pending.Len() > 0 && st != w.style {
		w.flush()
	}
	w.style = st
	w.pending.WriteString(s)
}

func (w *docxWriter) flush() {
	if w.pending.Len() == 0 {
		return
	}
	run := w.para.AddText(w.pending.String())
	w.pending.Reset()

	if w.style.bold {
		run.Bold(true)
	}
	if w.style.italic {
		run.Italic(true)
	}
	if w.style.strike {
		run.Strike(true)
	}
	if w.style.code {
		run.Color(codeColor)
	}
}

func (w *docxWriter) link(text, target string) {
	w.flush()
	if text == "" {
		text = target
	}
	w.para.AddLink(text, target)
}

func (w *docxWriter) markdown(md string) error {
	w.src = []byte(md)
	return w.blocks(markdown.Parse(w.src), listContext{})
}

// listContext describes the list item a block sits in. depth is 0 outside
// lists.
type listContext struct {
	depth   int
	ordered bool
}

func (l listContext) style(first bool) string {
	if l.depth == 0 {
		return ""
	}
	if !first {
		return styleContent
	}
	style := "List Bullet"
	if l.ordered {
		style = "List Number"
	}
	if l.depth > 1 {
		style += " " + strconv.Itoa(min(l.depth, 3))
	}
	return style
}

func (w *docxWriter) blocks(n ast.Node, list listContext) error {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if err := w.block(c, list); err != nil {
			return err
		}
	}
	return nil
}

func (w *docxWriter) block(n ast.Node, list listContext) error {
	switch v := n.(type) {
	case *ast.Heading:
		return w.heading(markdown.InlineText(v, w.src), v.Level)

	case *ast.Paragraph, *ast.TextBlock:
		// Only the first paragraph of a list item carries the marker
		w.paragraph(list.style(v.PreviousSibling() == nil), func() { w.inlines(v, runStyle{}) })

	case *ast.List:
		inner := listContext{depth: list.depth + 1, ordered: v.IsOrdered()}
		for item := v.FirstChild(); item != nil; item = item.NextSibling() {
			if err := w.blocks(item, inner); err != nil {
				return err
			}
		}

	case *ast.Blockquote:
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			if p, ok := c.(*ast.Paragraph); ok {
				w.paragraph(styleQuote, func() { w.inlines(p, runStyle{italic: true}) })
				continue
			}
			if err := w.block(c, listContext{}); err != nil {
				return err
			}
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := v.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimRight(string(seg.Value(w.src)), "\r\n")
			w.paragraph("", func() { w.text(line, runStyle{code: true}) })
		}

	case *extast.Table:
		for row := v.FirstChild(); row != nil; row = row.NextSibling() {
			_, header := row.(*extast.TableHeader)
			w.paragraph("", func() {
				for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
					if cell != row.FirstChild() {
						w.text(cellDivider, runStyle{})
					}
					w.inlines(cell, runStyle{bold: header})
				}
			})
		}

	case *ast.ThematicBreak:
		w.paragraph("", func() { w.text(ruleText, runStyle{}) })

	case *ast.HTMLBlock:
		// Raw HTML is dropped

	default:
		return w.blocks(v, list)
	}
	return nil
}

func (w *docxWriter) inlines(n ast.Node, st runStyle) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			text := string(v.Segment.Value(w.src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				text += " "
			}
			w.text(text, st)
		case *ast.String:
			w.text(string(v.Value), st)
		case *ast.Emphasis:
			inner := st
			if v.Level >= 2 {
				inner.bold = true
			} else {
				inner.italic = true
			}
			w.inlines(v, inner)
		case *extast.Strikethrough:
			inner := st
			inner.strike = true
			w.inlines(v, inner)
		case *ast.CodeSpan:
			inner := st
			inner.code = true
			w.text(markdown.InlineText(v, w.src), inner)
		case *ast.Link:
			w.link(markdown.InlineText(v, w.src), string(v.Destination))
		case *ast.AutoLink:
			url := string(v.URL(w.src))
			w.link(url, url)
		case *ast.Image:
			w.text(markdown.InlineText(v, w.src), st)
		case *ast.RawHTML:
		default:
			w.inlines(v, st)
		}
	}
}
