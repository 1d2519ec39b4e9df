package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/repositories"
	"dharmabot/internal/domain/services"
	domainllm "dharmabot/internal/domain/services/llm"
	"dharmabot/internal/repository/collection"
	"dharmabot/internal/repository/memory"
)

// fakeGateway returns canned results and records what it was asked.
type fakeGateway struct {
	mu sync.Mutex

	chat     *domainllm.Result
	chatErr  error
	chatReqs []*domainllm.ChatRequest
	// chatGate, when set, blocks Chat until it is closed.
	chatGate chan struct{}

	draft      *domainllm.Result
	transcript *domainllm.Result
	polished   *domainllm.Result
	analysis   *domainllm.Result
	research   *domainllm.Result
	rephrased  string

	polishInputs  []string
	analyzeCalls  int
	researchQuery string
}

func (f *fakeGateway) Chat(ctx context.Context, req *domainllm.ChatRequest) (*domainllm.Result, error) {
	f.mu.Lock()
	f.chatReqs = append(f.chatReqs, req)
	gate := f.chatGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.chat, nil
}

func (f *fakeGateway) DraftDocument(ctx context.Context, instructions string) *domainllm.Result {
	return f.draft
}

func (f *fakeGateway) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) *domainllm.Result {
	return f.transcript
}

func (f *fakeGateway) PolishNote(ctx context.Context, raw string) *domainllm.Result {
	f.mu.Lock()
	f.polishInputs = append(f.polishInputs, raw)
	f.mu.Unlock()
	return f.polished
}

func (f *fakeGateway) DeepResearch(ctx context.Context, query string) *domainllm.Result {
	f.researchQuery = query
	return f.research
}

func (f *fakeGateway) AnalyzeConsultation(ctx context.Context, transcript string) *domainllm.Result {
	f.analyzeCalls++
	return f.analysis
}

func (f *fakeGateway) RephraseQuery(ctx context.Context, query string) string {
	if f.rephrased == "" {
		return query
	}
	return f.rephrased
}

type testEnv struct {
	ws    *Workspace
	gw    *fakeGateway
	kv    *memory.KVStore
	repos Repositories
}

func newTestEnv(t *testing.T, gw *fakeGateway) *testEnv {
	t.Helper()
	return newTestEnvWithKV(t, gw, memory.NewKVStore(0))
}

func newTestEnvWithKV(t *testing.T, gw *fakeGateway, kv *memory.KVStore) *testEnv {
	t.Helper()

	repos := Repositories{
		Sessions:   collection.NewChatSessionRepository(kv),
		Drafts:     collection.NewDraftRepository(kv),
		Voicenotes: collection.NewVoicenoteRepository(kv),
		Research:   collection.NewResearchRepository(kv),
		Audio:      collection.NewAudioRepository(kv),
	}

	var clock int64 = 1_700_000_000_000
	var ids int
	ws := New("u1", gw, repos, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithClock(func() time.Time {
			clock += 1000
			return time.UnixMilli(clock)
		}),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		}),
	)
	return &testEnv{ws: ws, gw: gw, kv: kv, repos: repos}
}

func TestSubmitUserMessage_CreatesSessionAndPersists(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{chat: &domainllm.Result{
		Text:    "You may approach the Rent Controller.",
		Sources: []models.Source{{URI: "https://example.com/rent", Title: "Rent Act"}},
	}}
	env := newTestEnv(t, gw)

	query := "My landlord is refusing to return my security deposit, what can I do?"
	session, err := env.ws.SubmitUserMessage(ctx, &services.SubmitMessageRequest{
		Text: query,
		Attachments: []services.Attachment{
			{Name: "lease.pdf", MIMEType: "application/pdf", Size: 2048, Content: "data:application/pdf;base64,JVBERi0="},
			{Name: "receipt.png", MIMEType: "image/png", Size: 512},
		},
		WebSearch: true,
	})
	if err != nil {
		t.Fatalf("SubmitUserMessage() error = %v", err)
	}

	if want := query[:40] + "..."; session.Title != want {
		t.Errorf("Title = %q, want %q", session.Title, want)
	}
	if len(session.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(session.Messages))
	}

	user, ok := session.Messages[0].(*models.UserQueryMessage)
	if !ok || user.QueryText != query || len(user.FilesInfo) != 2 || user.FilesInfo[0].Size != 2048 {
		t.Errorf("unexpected user message %+v", session.Messages[0])
	}
	reply, ok := session.Messages[1].(*models.AIResponseMessage)
	if !ok {
		t.Fatalf("second message is %T", session.Messages[1])
	}
	if reply.FileName != "lease.pdf, receipt.png" {
		t.Errorf("FileName = %q", reply.FileName)
	}
	if len(reply.Sources) != 1 {
		t.Errorf("Sources = %+v", reply.Sources)
	}
	if session.UpdatedAt != reply.Timestamp {
		t.Errorf("UpdatedAt = %d, want reply timestamp %d", session.UpdatedAt, reply.Timestamp)
	}

	req := gw.chatReqs[0]
	if len(req.History) != 0 || !req.WebSearch || len(req.Documents) != 2 {
		t.Errorf("unexpected chat request %+v", req)
	}

	stored, err := env.repos.Sessions.GetOne(ctx, "u1", session.ID)
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if len(stored.Messages) != 2 {
		t.Errorf("persisted %d messages, want 2", len(stored.Messages))
	}
	if active := env.ws.ActiveSession(); active == nil || active.ID != session.ID {
		t.Errorf("ActiveSession() = %+v", active)
	}
}

func TestSubmitUserMessage_PassesPriorHistory(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{chat: &domainllm.Result{Text: "answer"}}
	env := newTestEnv(t, gw)

	first, err := env.ws.SubmitUserMessage(ctx, &services.SubmitMessageRequest{Text: "short title"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Title != "short title" {
		t.Errorf("Title = %q, want untruncated", first.Title)
	}

	second, err := env.ws.SubmitUserMessage(ctx, &services.SubmitMessageRequest{Text: "follow up"})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatal("follow-up created a new session")
	}
	if got := len(gw.chatReqs[1].History); got != 2 {
		t.Errorf("history length = %d, want 2", got)
	}
	if len(second.Messages) != 4 {
		t.Errorf("got %d messages, want 4", len(second.Messages))
	}
}

func TestSubmitUserMessage_GatewayErrorBecomesMessage(t *testing.T) {
	gw := &fakeGateway{chatErr: errors.New("deadline exceeded")}
	env := newTestEnv(t, gw)

	session, err := env.ws.SubmitUserMessage(context.Background(), &services.SubmitMessageRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("SubmitUserMessage() error = %v", err)
	}
	reply := session.Messages[1].(*models.AIResponseMessage)
	if reply.Text != "Error: Failed to get AI response: deadline exceeded" {
		t.Errorf("Text = %q", reply.Text)
	}
	if !reply.IsError() || len(reply.Sources) != 0 {
		t.Errorf("error reply should carry no sources: %+v", reply)
	}
}

func TestSubmitUserMessage_RejectsEmpty(t *testing.T) {
	env := newTestEnv(t, &fakeGateway{})
	_, err := env.ws.SubmitUserMessage(context.Background(), &services.SubmitMessageRequest{Text: "  "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestSubmitUserMessage_ConflictWhileInFlight(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{chat: &domainllm.Result{Text: "ok"}}
	env := newTestEnv(t, gw)

	if _, err := env.ws.SubmitUserMessage(ctx, &services.SubmitMessageRequest{Text: "first"}); err != nil {
		t.Fatal(err)
	}

	gate := make(chan struct{})
	gw.mu.Lock()
	gw.chatGate = gate
	gw.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := env.ws.SubmitUserMessage(ctx, &services.SubmitMessageRequest{Text: "second"})
		done <- err
	}()

	// Wait until the first call is parked in the gateway.
	for {
		gw.mu.Lock()
		n := len(gw.chatReqs)
		gw.mu.Unlock()
		if n == 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	_, err := env.ws.SubmitUserMessage(ctx, &services.SubmitMessageRequest{Text: "third"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("concurrent submit error = %v, want conflict", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("in-flight submit error = %v", err)
	}
	if got := len(env.ws.ActiveSession().Messages); got != 4 {
		t.Errorf("got %d messages, want 4", got)
	}
}

// gatedSessions parks the blockOn-th Save until release is closed.
type gatedSessions struct {
	repositories.ChatSessionRepository

	mu      sync.Mutex
	saves   int
	blockOn int
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSessions) Save(ctx context.Context, ownerID string, s *models.ChatSession) error {
	g.mu.Lock()
	g.saves++
	block := g.saves == g.blockOn
	g.mu.Unlock()
	if block {
		close(g.entered)
		<-g.release
	}
	return g.ChatSessionRepository.Save(ctx, ownerID, s)
}

func TestSubmitUserMessage_StorageFollowsMutationOrder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		blockOn   int
		during    func(ws *Workspace) error
		wantCount int
		wantTitle string
	}{
		{
			name:    "delete while the user message is being written",
			blockOn: 1,
			during: func(ws *Workspace) error {
				return ws.DeleteSession(ctx, "id-1")
			},
			wantCount: 0,
		},
		{
			name:    "rename while the reply is being written",
			blockOn: 2,
			during: func(ws *Workspace) error {
				_, err := ws.RenameSession(ctx, "id-1", "Renamed")
				return err
			},
			wantCount: 1,
			wantTitle: "Renamed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &fakeGateway{chat: &domainllm.Result{Text: "ok"}})
			gated := &gatedSessions{
				ChatSessionRepository: env.repos.Sessions,
				blockOn:               tt.blockOn,
				entered:               make(chan struct{}),
				release:               make(chan struct{}),
			}
			env.ws.repos.Sessions = gated

			submitted := make(chan error, 1)
			go func() {
				_, err := env.ws.SubmitUserMessage(ctx, &services.SubmitMessageRequest{Text: "hello"})
				submitted <- err
			}()
			<-gated.entered

			concurrent := make(chan error, 1)
			go func() { concurrent <- tt.during(env.ws) }()
			// Give the concurrent call time to reach the workspace.
			time.Sleep(20 * time.Millisecond)
			close(gated.release)

			if err := <-submitted; err != nil && !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("SubmitUserMessage() error = %v", err)
			}
			if err := <-concurrent; err != nil {
				t.Fatalf("concurrent call error = %v", err)
			}

			inMemory := env.ws.Sessions()
			stored, err := env.repos.Sessions.GetAll(ctx, "u1")
			if err != nil {
				t.Fatal(err)
			}
			if len(inMemory) != tt.wantCount || len(stored) != tt.wantCount {
				t.Fatalf("memory has %d sessions, storage has %d, want %d", len(inMemory), len(stored), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if inMemory[0].Title != tt.wantTitle || stored[0].Title != tt.wantTitle {
				t.Errorf("memory title = %q, stored title = %q, want %q", inMemory[0].Title, stored[0].Title, tt.wantTitle)
			}
			if len(stored[0].Messages) != len(inMemory[0].Messages) {
				t.Errorf("stored %d messages, memory holds %d", len(stored[0].Messages), len(inMemory[0].Messages))
			}
		})
	}
}

func TestSubmitUserMessage_CanceledContextStillPersists(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := newTestEnv(t, &fakeGateway{chatErr: context.Canceled})
	session, err := env.ws.SubmitUserMessage(ctx, &services.SubmitMessageRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("SubmitUserMessage() error = %v", err)
	}
	if len(session.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(session.Messages))
	}

	stored, err := env.repos.Sessions.GetOne(context.Background(), "u1", session.ID)
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if len(stored.Messages) != 2 {
		t.Errorf("persisted %d messages, want 2", len(stored.Messages))
	}
	if reply := stored.Messages[1].(*models.AIResponseMessage); !reply.IsError() {
		t.Errorf("persisted reply = %q, want an error reply", reply.Text)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"longer than limit", strings.Repeat("a", 61), 40, strings.Repeat("a", 40) + "..."},
		{"exactly at limit", strings.Repeat("a", 40), 40, strings.Repeat("a", 40)},
		{"shorter", "rent", 40, "rent"},
		{"counts runes", "धर्म न्याय", 4, "धर्म..."},
		{"empty", "", 40, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preview(tt.in, tt.n); got != tt.want {
				t.Errorf("preview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessions_SortedAfterEveryCall(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &fakeGateway{chat: &domainllm.Result{Text: "ok"}})

	submit := func(text string) error {
		_, err := env.ws.SubmitUserMessage(ctx, &services.SubmitMessageRequest{Text: text})
		return err
	}

	steps := []struct {
		name      string
		run       func() error
		wantFirst string
		wantCount int
	}{
		{"first session", func() error { return submit("a") }, "id-1", 1},
		{"second session", func() error { env.ws.StartNewSession(); return submit("b") }, "id-4", 2},
		{"third session", func() error { env.ws.StartNewSession(); return submit("c") }, "id-7", 3},
		{"reply in oldest", func() error {
			if _, err := env.ws.LoadSession("id-1"); err != nil {
				return err
			}
			return submit("again")
		}, "id-1", 3},
		{"rename middle", func() error { _, err := env.ws.RenameSession(ctx, "id-4", "B"); return err }, "id-4", 3},
		{"delete top", func() error { return env.ws.DeleteSession(ctx, "id-4") }, "id-1", 2},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		sessions := env.ws.Sessions()
		if len(sessions) != step.wantCount {
			t.Fatalf("%s: got %d sessions, want %d", step.name, len(sessions), step.wantCount)
		}
		if sessions[0].ID != step.wantFirst {
			t.Errorf("%s: first session = %s, want %s", step.name, sessions[0].ID, step.wantFirst)
		}
		for i := 1; i < len(sessions); i++ {
			if sessions[i-1].UpdatedAt < sessions[i].UpdatedAt {
				t.Errorf("%s: sessions not sorted by UpdatedAt: %d before %d", step.name, sessions[i-1].UpdatedAt, sessions[i].UpdatedAt)
			}
		}
	}
}

func TestSessions_RenameLoadDelete(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{chat: &domainllm.Result{Text: "ok"}}
	env := newTestEnv(t, gw)

	a, _ := env.ws.SubmitUserMessage(ctx, &services.SubmitMessageRequest{Text: "session a"})
	env.ws.StartNewSession()
	if env.ws.ActiveSession() != nil {
		t.Fatal("StartNewSession should clear the active session")
	}
	b, _ := env.ws.SubmitUserMessage(ctx, &services.SubmitMessageRequest{Text: "session b"})

	if got := env.ws.Sessions(); got[0].ID != b.ID {
		t.Errorf("most recent session should be first, got %s", got[0].ID)
	}

	renamed, err := env.ws.RenameSession(ctx, a.ID, "Deposit dispute")
	if err != nil {
		t.Fatalf("RenameSession() error = %v", err)
	}
	if renamed.Title != "Deposit dispute" || renamed.UpdatedAt <= b.UpdatedAt {
		t.Errorf("rename did not bump session: %+v", renamed)
	}
	if got := env.ws.Sessions(); got[0].ID != a.ID {
		t.Errorf("renamed session should move to the top")
	}

	if _, err := env.ws.LoadSession(a.ID); err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if err := env.ws.DeleteSession(ctx, a.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if env.ws.ActiveSession() != nil {
		t.Error("deleting the active session should clear it")
	}
	if _, err := env.ws.LoadSession(a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("LoadSession(deleted) error = %v", err)
	}

	stored, _ := env.repos.Sessions.GetAll(ctx, "u1")
	if len(stored) != 1 || stored[0].ID != b.ID {
		t.Errorf("stored sessions = %+v", stored)
	}
}

func TestDrafts_GenerateSaveLoad(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{draft: &domainllm.Result{Text: "# Rental Agreement\n\nThis agreement..."}}
	env := newTestEnv(t, gw)

	if d := env.ws.NewDraft(); d.Title != "Untitled Document" {
		t.Errorf("new draft title = %q", d.Title)
	}

	draft, err := env.ws.GenerateDraft(ctx, "Draft a rental agreement for Pune")
	if err != nil {
		t.Fatalf("GenerateDraft() error = %v", err)
	}
	if !strings.HasPrefix(draft.Content, "# Rental Agreement") {
		t.Errorf("Content = %q", draft.Content)
	}

	title := "Pune Lease"
	env.ws.UpdateDraft(&services.DraftUpdate{Title: &title})

	saved, err := env.ws.SaveDraft(ctx)
	if err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}
	if saved.ID == "" || saved.CreatedAt == 0 || saved.Title != "Pune Lease" {
		t.Errorf("unexpected saved draft %+v", saved)
	}

	edited := "# Rental Agreement\n\nRevised."
	env.ws.UpdateDraft(&services.DraftUpdate{Content: &edited})
	again, err := env.ws.SaveDraft(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != saved.ID || again.CreatedAt != saved.CreatedAt || again.UpdatedAt <= saved.UpdatedAt {
		t.Errorf("second save should update the same record: %+v", again)
	}
	if got := env.ws.Drafts(); len(got) != 1 {
		t.Fatalf("got %d drafts, want 1", len(got))
	}

	env.ws.NewDraft()
	loaded, err := env.ws.LoadDraft(saved.ID)
	if err != nil || loaded.Content != edited {
		t.Fatalf("LoadDraft() = %+v, %v", loaded, err)
	}

	if err := env.ws.DeleteDraft(ctx, saved.ID); err != nil {
		t.Fatal(err)
	}
	if env.ws.CurrentDraft().ID != "" {
		t.Error("open draft should forget its deleted ID")
	}
	stored, _ := env.repos.Drafts.GetAll(ctx, "u1")
	if len(stored) != 0 {
		t.Errorf("stored drafts = %d, want 0", len(stored))
	}
}

func TestDrafts_GenerateFailureKeepsContent(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{draft: &domainllm.Result{Text: "Error: Document generation failed: quota"}}
	env := newTestEnv(t, gw)

	content := "existing text"
	env.ws.UpdateDraft(&services.DraftUpdate{Content: &content})

	draft, err := env.ws.GenerateDraft(ctx, "Draft an NDA")
	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) || upstream.Message != "Error: Document generation failed: quota" {
		t.Fatalf("error = %v, want upstream error", err)
	}
	if draft.Content != content {
		t.Errorf("Content = %q, want unchanged", draft.Content)
	}
}

func TestDrafts_SaveRequiresContent(t *testing.T) {
	env := newTestEnv(t, &fakeGateway{})
	if _, err := env.ws.SaveDraft(context.Background()); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestDrafts_DictateAppendsInstructions(t *testing.T) {
	gw := &fakeGateway{transcript: &domainllm.Result{Text: "include a notice period of two months"}}
	env := newTestEnv(t, gw)

	existing := "Draft an employment contract."
	env.ws.UpdateDraft(&services.DraftUpdate{Instructions: &existing})

	draft, err := env.ws.DictateInstructions(context.Background(), []byte("audio"), "audio/webm")
	if err != nil {
		t.Fatal(err)
	}
	if draft.Instructions != "Draft an employment contract. include a notice period of two months" {
		t.Errorf("Instructions = %q", draft.Instructions)
	}
}

func TestProcessRecording_TitleRules(t *testing.T) {
	longTranscript := strings.Repeat("the tenant says the landlord ", 3)

	tests := []struct {
		name       string
		startTitle string
		transcript *domainllm.Result
		polished   *domainllm.Result
		wantTitle  string
		wantErrors int
		analyzed   bool
	}{
		{
			name:       "suggested title wins",
			startTitle: "My title",
			transcript: &domainllm.Result{Text: "raw words"},
			polished:   &domainllm.Result{Text: "## Note", SuggestedTitle: "Tenancy Consultation"},
			wantTitle:  "Tenancy Consultation",
			analyzed:   true,
		},
		{
			name:       "user title kept",
			startTitle: "Client A",
			transcript: &domainllm.Result{Text: "raw words"},
			polished:   &domainllm.Result{Text: "## Note"},
			wantTitle:  "Client A",
			analyzed:   true,
		},
		{
			name:       "default title replaced by transcript preview",
			startTitle: "Untitled Note",
			transcript: &domainllm.Result{Text: longTranscript},
			polished:   &domainllm.Result{Text: "## Note"},
			wantTitle:  longTranscript[:50] + "...",
			analyzed:   true,
		},
		{
			name:       "failed transcription falls back",
			startTitle: "",
			transcript: &domainllm.Result{Text: "Error: Audio transcription was blocked. Reason: SAFETY."},
			polished:   &domainllm.Result{Text: "Error: Raw transcript is empty, cannot polish."},
			wantTitle:  "Polished Note",
			wantErrors: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{
				transcript: tt.transcript,
				polished:   tt.polished,
				analysis:   &domainllm.Result{Text: "## Brief Summary\nDispute over deposit.\n\n## Key Legal Issues\n- Refund"},
			}
			env := newTestEnv(t, gw)
			env.ws.UpdateVoicenote(&services.VoicenoteUpdate{Title: &tt.startTitle})

			res, err := env.ws.ProcessRecording(context.Background(), []byte("OggS"), "audio/ogg", 42)
			if err != nil {
				t.Fatalf("ProcessRecording() error = %v", err)
			}
			if res.Draft.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", res.Draft.Title, tt.wantTitle)
			}
			if len(res.Errors) != tt.wantErrors {
				t.Errorf("Errors = %v, want %d", res.Errors, tt.wantErrors)
			}
			if (gw.analyzeCalls > 0) != tt.analyzed {
				t.Errorf("analyze called = %v, want %v", gw.analyzeCalls > 0, tt.analyzed)
			}
			if tt.analyzed {
				if res.Draft.LegalSummary == nil || res.Draft.LegalSummary.BriefSummary != "Dispute over deposit." {
					t.Errorf("LegalSummary = %+v", res.Draft.LegalSummary)
				}
			} else if res.Draft.LegalSummary != nil {
				t.Error("summary should be absent without a transcript")
			}
			if res.Draft.DurationSeconds != 42 || res.Draft.AudioMimeType != "audio/ogg" {
				t.Errorf("recording metadata = %+v", res.Draft)
			}
		})
	}
}

func TestVoicenotes_SaveKeepsCreatedAtAndAudio(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		transcript: &domainllm.Result{Text: "client statement"},
		polished:   &domainllm.Result{Text: "## Note", SuggestedTitle: "Statement"},
		analysis:   &domainllm.Result{Text: "Error: Consultation analysis was blocked. Reason: SAFETY."},
	}
	env := newTestEnv(t, gw)

	res, err := env.ws.ProcessRecording(ctx, []byte("RIFF"), "audio/wav", 3)
	if err != nil {
		t.Fatal(err)
	}
	if res.Draft.LegalSummary != nil {
		t.Error("failed analysis should leave the summary empty")
	}

	first, err := env.ws.SaveVoicenote(ctx)
	if err != nil {
		t.Fatalf("SaveVoicenote() error = %v", err)
	}
	second, err := env.ws.SaveVoicenote(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID || second.CreatedAt != first.CreatedAt || second.UpdatedAt <= first.UpdatedAt {
		t.Errorf("resave should keep identity: first %+v second %+v", first, second)
	}

	audio, mime, err := env.ws.Recording(ctx, first.AudioRef)
	if err != nil || string(audio) != "RIFF" || mime != "audio/wav" {
		t.Fatalf("Recording() = %q, %q, %v", audio, mime, err)
	}
	if _, _, err := env.ws.Recording(ctx, "someone-elses-ref"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown ref error = %v", err)
	}

	if err := env.ws.DeleteVoicenote(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if cur := env.ws.CurrentVoicenote(); cur.ID != "" || cur.Title != "Untitled Note" {
		t.Errorf("deleting the open note should reset it, got %+v", cur)
	}
	if _, _, err := env.repos.Audio.Get(ctx, "u1", first.AudioRef); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("recording should be deleted with its note, err = %v", err)
	}
}

func TestResearch_PerformAndSave(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{
		research:  &domainllm.Result{Text: "## Findings", Sources: []models.Source{{URI: "https://example.com/a", Title: "A"}}},
		rephrased: "Grounds for anticipatory bail under Section 482 BNSS",
	}
	env := newTestEnv(t, gw)

	query := "when can someone get anticipatory bail under the new criminal procedure code"
	draft, err := env.ws.PerformResearch(ctx, query, true)
	if err != nil {
		t.Fatalf("PerformResearch() error = %v", err)
	}
	if gw.researchQuery != gw.rephrased {
		t.Errorf("research ran on %q, want rephrased query", gw.researchQuery)
	}
	if draft.Title != query[:50]+"..." || draft.Query != query || draft.OptimizedQuery != gw.rephrased {
		t.Errorf("unexpected draft %+v", draft)
	}

	saved, err := env.ws.SaveResearch(ctx)
	if err != nil {
		t.Fatalf("SaveResearch() error = %v", err)
	}
	if len(saved.Citations) != 1 || saved.Timestamp == 0 {
		t.Errorf("unexpected saved research %+v", saved)
	}

	env.ws.SetResearchTitle("  ")
	resaved, err := env.ws.SaveResearch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if resaved.ID != saved.ID || resaved.Title != "Untitled Research" {
		t.Errorf("resave = %+v", resaved)
	}
	if len(env.ws.ResearchRecords()) != 1 {
		t.Errorf("expected a single research record")
	}
}

func TestResearch_Failures(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{research: &domainllm.Result{Text: "Error: Research was blocked. Reason: SAFETY."}}
	env := newTestEnv(t, gw)

	if _, err := env.ws.PerformResearch(ctx, " ", false); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty query error = %v", err)
	}
	if _, err := env.ws.PerformResearch(ctx, "bail", false); !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("blocked research error = %v", err)
	}
	if _, err := env.ws.SaveResearch(ctx); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("save without results error = %v", err)
	}
}

func TestQuotaErrorKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{draft: &domainllm.Result{Text: strings.Repeat("clause ", 100)}}
	env := newTestEnvWithKV(t, gw, memory.NewKVStore(64))

	if _, err := env.ws.GenerateDraft(ctx, "long document"); err != nil {
		t.Fatal(err)
	}
	_, err := env.ws.SaveDraft(ctx)
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("SaveDraft() error = %v, want quota error", err)
	}
	if len(env.ws.Drafts()) != 1 {
		t.Error("in-memory collection should keep the draft after a failed write")
	}
}

func TestRegistry_LoadsPersistedState(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore(0)
	gw := &fakeGateway{chat: &domainllm.Result{Text: "ok"}}
	env := newTestEnvWithKV(t, gw, kv)

	if _, err := env.ws.SubmitUserMessage(ctx, &services.SubmitMessageRequest{Text: "persist me"}); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry(gw, env.repos, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ws, err := reg.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := ws.Sessions(); len(got) != 1 || got[0].Title != "persist me" {
		t.Errorf("Sessions() = %+v", got)
	}
	if ws.ActiveSession() != nil {
		t.Error("a freshly loaded workspace has no active session")
	}

	again, _ := reg.Get(ctx, "u1")
	if again != ws {
		t.Error("Get() should return the cached workspace")
	}
	reg.Evict("u1")
	if fresh, _ := reg.Get(ctx, "u1"); fresh == ws {
		t.Error("Evict() should drop the cached workspace")
	}
}
