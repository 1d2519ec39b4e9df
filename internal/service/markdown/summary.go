package markdown

import (
	"strings"

	"github.com/yuin/goldmark/ast"

	"dharmabot/internal/domain/models"
)

// DefaultBriefSummary is used when the analysis has no summary section.
const DefaultBriefSummary = "No summary available"

type summarySection int

const (
	sectionNone summarySection = iota
	sectionSummary
	sectionIssues
	sectionRemedies
	sectionActions
)

// sectionFor maps a level-2 or deeper heading to the section it opens.
// Other headings leave the current section unchanged.
func sectionFor(heading string) (summarySection, bool) {
	switch {
	case strings.Contains(heading, "Brief Summary"):
		return sectionSummary, true
	case strings.Contains(heading, "Key Legal Issues"):
		return sectionIssues, true
	case strings.Contains(heading, "Possible Legal Remedies"):
		return sectionRemedies, true
	case strings.Contains(heading, "Suggested Follow-up Actions"):
		return sectionActions, true
	}
	return sectionNone, false
}

// ParseLegalSummary extracts the structured consultation summary from an
// analysis in the "## Brief Summary / ## Key Legal Issues / ## Possible Legal
// Remedies / ## Suggested Follow-up Actions" layout. List items keep their
// inline markup. An analysis wrapped in a fenced code block is unwrapped.
func ParseLegalSummary(analysis string, sources []models.Source) *models.LegalSummary {
	p := &summaryParser{
		summary: &models.LegalSummary{
			KeyLegalIssues:    []string{},
			LegalRemedies:     []string{},
			FollowUpActions:   []string{},
			ReferencedSources: sources,
		},
	}
	if p.summary.ReferencedSources == nil {
		p.summary.ReferencedSources = []models.Source{}
	}

	p.parse([]byte(analysis))

	p.summary.BriefSummary = strings.Join(p.brief, " ")
	if p.summary.BriefSummary == "" {
		p.summary.BriefSummary = DefaultBriefSummary
	}
	return p.summary
}

type summaryParser struct {
	section summarySection
	brief   []string
	summary *models.LegalSummary
}

func (p *summaryParser) parse(src []byte) {
	doc := Parse(src)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		p.block(n, src)
	}
}

func (p *summaryParser) block(n ast.Node, src []byte) {
	switch v := n.(type) {
	case *ast.Heading:
		if v.Level < 2 {
			return
		}
		if section, ok := sectionFor(RawText(v, src)); ok {
			p.section = section
		}

	case *ast.Paragraph:
		if p.section == sectionSummary {
			if line := RawText(v, src); line != "" {
				p.brief = append(p.brief, line)
			}
		}

	case *ast.List:
		p.list(v, src)

	case *ast.FencedCodeBlock:
		var inner strings.Builder
		for i := 0; i < v.Lines().Len(); i++ {
			seg := v.Lines().At(i)
			inner.Write(seg.Value(src))
		}
		p.parse([]byte(inner.String()))

	case *ast.Blockquote:
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			p.block(c, src)
		}
	}
}

// list records every item, nested ones included, under the current section.
func (p *summaryParser) list(list *ast.List, src []byte) {
	var target *[]string
	switch p.section {
	case sectionIssues:
		target = &p.summary.KeyLegalIssues
	case sectionRemedies:
		target = &p.summary.LegalRemedies
	case sectionActions:
		target = &p.summary.FollowUpActions
	default:
		return
	}

	_ = ast.Walk(list, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			if _, inItem := n.Parent().(*ast.ListItem); inItem && n.PreviousSibling() == nil {
				if item := RawText(n, src); item != "" {
					*target = append(*target, item)
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
}
