// Package markdown parses model output with goldmark and extracts the pieces
// the workspace and export code need.
package markdown

import (
	"strconv"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	parserInstance goldmark.Markdown
	parserOnce     sync.Once
)

func getParser() goldmark.Markdown {
	parserOnce.Do(func() {
		parserInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return parserInstance
}

// Parse returns the document AST for src. Segments in the tree refer to src.
func Parse(src []byte) ast.Node {
	return getParser().Parser().Parse(text.NewReader(src))
}

// RawText joins the source lines of a block node with single spaces, keeping
// any inline markup as written.
func RawText(n ast.Node, src []byte) string {
	lines := n.Lines()
	if lines == nil {
		return ""
	}
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if line := strings.TrimSpace(string(seg.Value(src))); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// InlineText returns the visible text of a node's inline content with markup
// removed. Soft line breaks become spaces.
func InlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(src))
			if v.HardLineBreak() {
				sb.WriteString("\n")
			} else if v.SoftLineBreak() {
				sb.WriteString(" ")
			}
		case *ast.String:
			sb.Write(v.Value)
		case *ast.AutoLink:
			sb.Write(v.URL(src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// PlainText flattens markdown to readable text: headings and paragraphs
// separated by blank lines, list items prefixed with "- " or "N. ", links
// followed by their target in parentheses.
func PlainText(md string) string {
	src := []byte(md)
	doc := Parse(src)

	var out strings.Builder
	var listStack []int // next number per open list; 0 for bullets

	var inline func(n ast.Node) string
	inline = func(n ast.Node) string {
		var sb strings.Builder
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.Link:
				label := inline(v)
				sb.WriteString(label)
				if dest := string(v.Destination); dest != "" && dest != label {
					sb.WriteString(" (" + dest + ")")
				}
			case *ast.Text, *ast.String, *ast.AutoLink:
				sb.WriteString(InlineText(v, src))
			default:
				sb.WriteString(inline(v))
			}
		}
		return sb.String()
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch v := n.(type) {
		case *ast.List:
			if entering {
				start := 0
				if v.IsOrdered() {
					start = v.Start
					if start == 0 {
						start = 1
					}
				}
				listStack = append(listStack, start)
			} else {
				listStack = listStack[:len(listStack)-1]
				if len(listStack) == 0 {
					out.WriteString("\n")
				}
			}
			return ast.WalkContinue, nil

		case *ast.ListItem:
			if entering {
				depth := len(listStack) - 1
				out.WriteString(strings.Repeat("  ", depth))
				if n := listStack[depth]; n > 0 {
					out.WriteString(strconv.Itoa(n) + ". ")
					listStack[depth]++
				} else {
					out.WriteString("- ")
				}
			}
			return ast.WalkContinue, nil

		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			if !entering {
				return ast.WalkContinue, nil
			}
			out.WriteString(strings.TrimSpace(inline(v)))
			if _, inItem := v.Parent().(*ast.ListItem); inItem {
				out.WriteString("\n")
			} else {
				out.WriteString("\n\n")
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				for i := 0; i < v.Lines().Len(); i++ {
					seg := v.Lines().At(i)
					out.Write(seg.Value(src))
				}
				out.WriteString("\n")
			}
			return ast.WalkSkipChildren, nil

		case *extast.TableHeader, *extast.TableRow:
			if entering {
				var cells []string
				for c := v.FirstChild(); c != nil; c = c.NextSibling() {
					cells = append(cells, strings.TrimSpace(inline(c)))
				}
				out.WriteString(strings.Join(cells, " | ") + "\n")
			}
			return ast.WalkSkipChildren, nil

		case *extast.Table:
			if !entering {
				out.WriteString("\n")
			}

		case *ast.ThematicBreak:
			if entering {
				out.WriteString("----------\n\n")
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(out.String())
}
