package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"dharmabot/internal/domain/models"
)

func sampleDocument() *Document {
	return &Document{
		Title: "Bail & Anticipatory Bail",
		Query: "When is anticipatory bail granted?",
		Markdown: "# Overview\n\nSection 438 allows **anticipatory bail** in *non-bailable* cases.\n\n" +
			"## Factors\n\n- Nature of accusation\n- Antecedents\n  - Prior arrests\n\n" +
			"1. File the application\n2. Attend the hearing\n\n" +
			"See [the judgment](https://example.com/judgment?a=1&b=2) and ~~old law~~.\n",
		Citations: []models.Source{
			{URI: "https://example.com/one", Title: "Case One"},
			{URI: "https://example.com/two"},
		},
		GeneratedAt: time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC),
	}
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	parts := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		parts[f.Name] = string(body)
	}
	return parts
}

type docxRun struct {
	text                 string
	bold, italic, strike bool
}

// paragraphs decodes document.xml into paragraphs of runs.
func paragraphs(t *testing.T, body string) [][]docxRun {
	t.Helper()
	var (
		out    [][]docxRun
		runs   []docxRun
		run    *docxRun
		inText bool
	)
	dec := xml.NewDecoder(strings.NewReader(body))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("document.xml is not well-formed XML: %v", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				runs = nil
			case "r":
				run = &docxRun{}
			case "b":
				if run != nil {
					run.bold = true
				}
			case "i":
				if run != nil {
					run.italic = true
				}
			case "strike":
				if run != nil {
					run.strike = true
				}
			case "t":
				inText = true
			}
		case xml.CharData:
			if inText && run != nil {
				run.text += string(el)
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "r":
				if run != nil && run.text != "" {
					runs = append(runs, *run)
				}
				run = nil
			case "p":
				out = append(out, runs)
			}
		}
	}
}

func paragraphText(runs []docxRun) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.text)
	}
	return sb.String()
}

func TestDOCX_Content(t *testing.T) {
	data, err := DOCX(sampleDocument())
	if err != nil {
		t.Fatalf("DOCX: %v", err)
	}
	parts := readZip(t, data)
	body, ok := parts["word/document.xml"]
	if !ok {
		t.Fatal("missing word/document.xml")
	}

	paras := paragraphs(t, body)
	var texts []string
	var allRuns []docxRun
	for _, p := range paras {
		texts = append(texts, paragraphText(p))
		allRuns = append(allRuns, p...)
	}
	joined := strings.Join(texts, "\n")

	for _, want := range []string{
		"Bail & Anticipatory Bail",
		"Research Query: When is anticipatory bail granted?",
		"Generated on: 16 October 2026",
		"Overview",
		"Section 438 allows anticipatory bail in non-bailable cases.",
		"Nature of accusation",
		"Prior arrests",
		"File the application",
		"Sources & Citations:",
		"1. Case One",
		"2. https://example.com/two",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("document text missing %q in:\n%s", want, joined)
		}
	}

	styled := []struct {
		text  string
		check func(docxRun) bool
	}{
		{"anticipatory bail", func(r docxRun) bool { return r.bold }},
		{"non-bailable", func(r docxRun) bool { return r.italic }},
		{"old law", func(r docxRun) bool { return r.strike }},
	}
	for _, s := range styled {
		found := false
		for _, r := range allRuns {
			if r.text == s.text && s.check(r) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no styled run for %q", s.text)
		}
	}

	rels := parts["word/_rels/document.xml.rels"]
	for _, target := range []string{"https://example.com/judgment", "https://example.com/one", "https://example.com/two"} {
		if !strings.Contains(rels, target) {
			t.Errorf("missing hyperlink relationship for %s", target)
		}
	}
}

func TestDOCX_NoQueryNoCitations(t *testing.T) {
	doc := &Document{Title: "Lease", Markdown: "Plain body.", GeneratedAt: time.Now()}
	data, err := DOCX(doc)
	if err != nil {
		t.Fatalf("DOCX: %v", err)
	}
	body := readZip(t, data)["word/document.xml"]

	var bodyRuns []docxRun
	for _, p := range paragraphs(t, body) {
		text := paragraphText(p)
		if strings.Contains(text, "Research Query") || strings.Contains(text, "Sources & Citations") {
			t.Errorf("unexpected optional section %q", text)
		}
		if text == "Plain body." {
			bodyRuns = p
		}
	}
	if bodyRuns == nil {
		t.Fatal("body text missing")
	}
	if len(bodyRuns) != 1 {
		t.Errorf("plain text split into %d runs, want 1", len(bodyRuns))
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText(sampleDocument())

	wantFragments := []string{
		"Bail & Anticipatory Bail\n\n",
		"Research Query: When is anticipatory bail granted?\n",
		"Generated on: 16 October 2026\n",
		"Section 438 allows anticipatory bail in non-bailable cases.",
		"- Nature of accusation",
		"1. File the application",
		"the judgment (https://example.com/judgment?a=1&b=2)",
		"Sources & Citations:\n1. Case One (https://example.com/one)\n2. https://example.com/two\n",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(got, frag) {
			t.Errorf("PlainText missing %q in:\n%s", frag, got)
		}
	}
	if strings.Contains(got, "**") {
		t.Errorf("markdown markers left in output:\n%s", got)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		title    string
		fallback string
		format   Format
		want     string
	}{
		{"Bail plea: Sec 438", "draft", FormatDOCX, "Bail_plea__Sec_438.docx"},
		{"", "research", FormatDOCX, "research.docx"},
		{"   ", "note", FormatText, "note.txt"},
		{"Über", "x", FormatText, "_ber.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FileName(tt.title, tt.fallback, tt.format); got != tt.want {
				t.Errorf("FileName(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in     string
		want   Format
		wantOK bool
	}{
		{"", FormatDOCX, true},
		{"DOCX", FormatDOCX, true},
		{"txt", FormatText, true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFormat(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, ok)
		}
	}
}
