package conversation

import (
	"encoding/base64"
	"io"
	"log/slog"
	"strings"
	"testing"

	"dharmabot/internal/domain/models"
	domainllm "dharmabot/internal/domain/services/llm"
)

func newTestBuilder() *MessageBuilderService {
	return NewMessageBuilderService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBuildHistory(t *testing.T) {
	mb := newTestBuilder()

	history := []models.ChatMessage{
		&models.UserQueryMessage{ID: "u1", QueryText: "What is bail?", FilesInfo: []models.FileInfo{{Name: "fir.pdf"}, {Name: "order.png"}}},
		&models.AIResponseMessage{ID: "a1", Text: "Bail is...", Sources: []models.Source{
			{URI: "https://example.com/a", Title: "Bail basics"},
			{URI: "https://example.com/b"},
		}},
		&models.SystemMessage{ID: "s1", Text: "Web search enabled"},
	}

	messages := mb.BuildHistory(history)
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}

	tests := []struct {
		name     string
		index    int
		wantRole string
		wantText string
	}{
		{
			name:     "user query with files",
			index:    0,
			wantRole: domainllm.RoleUser,
			wantText: "Query: What is bail?\n(User had attached files: fir.pdf, order.png)",
		},
		{
			name:     "ai response with sources",
			index:    1,
			wantRole: domainllm.RoleAssistant,
			wantText: "Bail is...\n\nWeb Search Sources Provided in Previous Turn:\n1. Bail basics (https://example.com/a)\n2. https://example.com/b (https://example.com/b)",
		},
		{
			name:     "system note",
			index:    2,
			wantRole: domainllm.RoleAssistant,
			wantText: "System Note: Web search enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := messages[tt.index]
			if msg.Role != tt.wantRole {
				t.Errorf("role = %q, want %q", msg.Role, tt.wantRole)
			}
			if len(msg.Parts) != 1 || msg.Parts[0].Text != tt.wantText {
				t.Errorf("text = %q, want %q", msg.Parts[0].Text, tt.wantText)
			}
		})
	}
}

func TestBuildUserTurn_NoDocuments(t *testing.T) {
	mb := newTestBuilder()

	msg, err := mb.BuildUserTurn("Explain Section 420 IPC", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Role != domainllm.RoleUser || len(msg.Parts) != 1 || msg.Parts[0].Text != "Explain Section 420 IPC" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestBuildUserTurn_Documents(t *testing.T) {
	mb := newTestBuilder()

	pdfBytes := []byte("%PDF-1.4 fake")
	pngBytes := []byte{0x89, 'P', 'N', 'G'}
	docs := []domainllm.Document{
		{
			Name:        "contract.pdf",
			MIMEType:    "application/pdf",
			TextContent: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdfBytes),
		},
		{
			Name:              "scan.jpg",
			MIMEType:          "image/jpeg",
			ImagePageDataURLs: []string{"data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(pngBytes)},
		},
		{
			Name:              "notes.docx",
			MIMEType:          "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			TextContent:       "plain extracted text",
			ImagePageDataURLs: []string{"data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)},
		},
	}

	msg, err := mb.BuildUserTurn("Compare this judgment with the contract", docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := msg.Parts[0].Text
	if !strings.HasPrefix(first, "Compare this judgment with the contract\nPlease analyze the attached file(s) named \"contract.pdf, scan.jpg, notes.docx\".") {
		t.Errorf("unexpected instruction prefix: %q", first)
	}
	if !strings.Contains(first, "4. If my query suggests comparison") {
		t.Error("expected comparison item for multiple documents")
	}
	if !strings.Contains(first, "5. If any document is a judgment or case law") {
		t.Error("expected judgment item numbered 5")
	}
	if !strings.HasSuffix(first, "\n---\n") {
		t.Errorf("instruction should end with separator: %q", first)
	}

	var texts []string
	var inline []domainllm.Part
	for _, p := range msg.Parts[1:] {
		if p.IsInline() {
			inline = append(inline, p)
			continue
		}
		texts = append(texts, p.Text)
	}

	wantTexts := []string{
		"\n--- Start of Uploaded Document (contract.pdf - application/pdf) ---",
		"\n--- End of Uploaded Document (contract.pdf) ---",
		"\n--- Start of Uploaded Document (scan.jpg - image/jpeg) ---",
		"Uploaded Image Content:",
		"\n--- End of Uploaded Document (scan.jpg) ---",
		"\n--- Start of Uploaded Document (notes.docx - application/vnd.openxmlformats-officedocument.wordprocessingml.document) ---",
		"plain extracted text",
		"Image Page 1 Content:",
		"\n--- End of Uploaded Document (notes.docx) ---",
	}
	if strings.Join(texts, "|") != strings.Join(wantTexts, "|") {
		t.Errorf("text parts mismatch:\n got %q\nwant %q", texts, wantTexts)
	}

	if len(inline) != 3 {
		t.Fatalf("expected 3 inline parts, got %d", len(inline))
	}
	if string(inline[0].Data) != string(pdfBytes) || inline[0].MIMEType != "application/pdf" {
		t.Errorf("pdf part = %+v", inline[0])
	}
	if inline[1].MIMEType != "image/jpeg" {
		t.Errorf("image file page mime = %q, want image/jpeg", inline[1].MIMEType)
	}
	if inline[2].MIMEType != "image/png" {
		t.Errorf("rendered page mime = %q, want image/png", inline[2].MIMEType)
	}
}

func TestFileAnalysisInstruction_SingleDocument(t *testing.T) {
	docs := []domainllm.Document{{Name: "a.txt"}}

	tests := []struct {
		name         string
		query        string
		wantJudgment bool
	}{
		{name: "plain query", query: "summarise", wantJudgment: false},
		{name: "case law query", query: "Is this CASE LAW binding?", wantJudgment: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fileAnalysisInstruction(tt.query, docs)
			if strings.Contains(got, "compare and contrast") {
				t.Error("single document should not get comparison item")
			}
			if strings.Contains(got, "4. If any document is a judgment") != tt.wantJudgment {
				t.Errorf("judgment item presence mismatch: %q", got)
			}
		})
	}
}

func TestBuildUserTurn_InvalidDataURL(t *testing.T) {
	mb := newTestBuilder()
	_, err := mb.BuildUserTurn("q", []domainllm.Document{{
		Name:        "bad.pdf",
		MIMEType:    "application/pdf",
		TextContent: "data:application/pdf;base64,!!!not-base64",
	}})
	if err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestBuildMessages_AppendsCurrentTurn(t *testing.T) {
	mb := newTestBuilder()
	history := []models.ChatMessage{&models.UserQueryMessage{QueryText: "hi"}, &models.AIResponseMessage{Text: "hello"}}

	messages, err := mb.BuildMessages(history, "next", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	last := messages[2]
	if last.Role != domainllm.RoleUser || last.Parts[0].Text != "next" {
		t.Errorf("unexpected last message: %+v", last)
	}
}
