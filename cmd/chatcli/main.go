// Command chatcli talks to the inference gateway through a local workspace,
// without the HTTP server. Data is written to the configured storage under
// the -user owner ID.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"dharmabot/internal/capabilities"
	"dharmabot/internal/config"
	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
	"dharmabot/internal/repository"
	"dharmabot/internal/repository/collection"
	serviceLLM "dharmabot/internal/service/llm"
	"dharmabot/internal/service/workspace"

	"github.com/joho/godotenv"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

type CLI struct {
	ctx       context.Context
	ws        services.Workspace
	scanner   *bufio.Scanner
	userID    string
	model     string
	webSearch bool
	eof       bool
	logger    *slog.Logger
}

func main() {
	userID := flag.String("user", "cli-user", "Owner ID for the workspace collections")
	model := flag.String("model", "", "Model override (default: DEFAULT_MODEL)")
	webSearch := flag.Bool("web-search", false, "Ground chat answers with web search")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}

	// Logs go to a file so they don't interleave with the conversation
	logFile, err := config.SetupLogFile(cfg.LogDir, "chatcli", cfg.MaxLogFiles)
	if err != nil {
		fmt.Printf("%s❌ Failed to setup logger: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := context.Background()
	storage, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Printf("%s❌ Failed to open storage: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	defer storage.Close()

	providerRegistry, err := serviceLLM.SetupProviders(cfg, logger)
	if err != nil {
		fmt.Printf("%s❌ Failed to setup providers: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	capabilityRegistry, err := capabilities.NewRegistry()
	if err != nil {
		fmt.Printf("%s❌ Failed to load capabilities: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	gateway, err := serviceLLM.SetupGateway(cfg, providerRegistry, capabilityRegistry, logger)
	if err != nil {
		fmt.Printf("%s❌ Failed to setup gateway: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	registry := workspace.NewRegistry(gateway, workspace.Repositories{
		Sessions:   collection.NewChatSessionRepository(storage.KV),
		Drafts:     collection.NewDraftRepository(storage.KV),
		Voicenotes: collection.NewVoicenoteRepository(storage.KV),
		Research:   collection.NewResearchRepository(storage.KV),
		Audio:      collection.NewAudioRepository(storage.KV),
	}, logger)
	ws, err := registry.Get(ctx, *userID)
	if err != nil {
		fmt.Printf("%s❌ Failed to load workspace: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}

	cli := &CLI{
		ctx:       ctx,
		ws:        ws,
		scanner:   bufio.NewScanner(os.Stdin),
		userID:    *userID,
		model:     *model,
		webSearch: *webSearch,
		logger:    logger,
	}
	cli.run(logFile.Name())
}

func (cli *CLI) run(logPath string) {
	fmt.Printf("\n%s╔══════════════════════════════════════╗%s\n", colorCyan, colorReset)
	fmt.Printf("%s║        Dharmabot Test CLI            ║%s\n", colorCyan, colorReset)
	fmt.Printf("%s╚══════════════════════════════════════╝%s\n", colorCyan, colorReset)
	fmt.Printf("%sUser: %s | Log: %s%s\n", colorBlue, cli.userID, logPath, colorReset)

	for {
		fmt.Println("\n" + strings.Repeat("─", 40))
		fmt.Println("Main Menu:")
		fmt.Println("1. Chat (continue active session)")
		fmt.Println("2. Start a new chat")
		fmt.Println("3. List chat sessions")
		fmt.Println("4. Deep research")
		fmt.Println("5. Draft a document")
		fmt.Println("6. Exit")
		fmt.Print("\nSelect option (1-6): ")

		choice := cli.readLine()
		fmt.Println()
		if cli.eof {
			return
		}

		switch choice {
		case "1":
			cli.chatFlow()
		case "2":
			cli.ws.StartNewSession()
			fmt.Printf("%s✓ Next message starts a new session%s\n", colorGreen, colorReset)
		case "3":
			cli.listSessions()
		case "4":
			cli.researchFlow()
		case "5":
			cli.draftFlow()
		case "6":
			fmt.Printf("%s✓ Goodbye!%s\n", colorGreen, colorReset)
			return
		default:
			fmt.Printf("%s⚠ Invalid choice. Please enter 1-6.%s\n", colorYellow, colorReset)
		}
	}
}

func (cli *CLI) chatFlow() {
	fmt.Printf("%s=== Chat (empty line returns to menu) ===%s\n", colorCyan, colorReset)
	for {
		fmt.Print("\nYou: ")
		text := cli.readLine()
		if text == "" {
			return
		}

		fmt.Printf("%s⏳ Thinking...%s\n", colorBlue, colorReset)
		session, err := cli.ws.SubmitUserMessage(cli.ctx, &services.SubmitMessageRequest{
			Text:      text,
			WebSearch: cli.webSearch,
			Model:     cli.model,
		})
		if err != nil {
			cli.logger.Error("chat failed", "error", err)
			fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
			continue
		}

		last := session.Messages[len(session.Messages)-1]
		if reply, ok := last.(*models.AIResponseMessage); ok {
			color := colorGreen
			if reply.IsError() {
				color = colorRed
			}
			fmt.Printf("\n%sDharmabot:%s %s\n", color, colorReset, reply.Text)
			printSources(reply.Sources)
		}
	}
}

func (cli *CLI) listSessions() {
	sessions := cli.ws.Sessions()
	if len(sessions) == 0 {
		fmt.Println("No chat sessions yet.")
		return
	}
	for i, s := range sessions {
		fmt.Printf("%d. %s (%d messages)\n", i+1, s.Title, len(s.Messages))
	}

	fmt.Print("\nOpen session number (empty to skip): ")
	choice := cli.readLine()
	var n int
	if _, err := fmt.Sscanf(choice, "%d", &n); err != nil || n < 1 || n > len(sessions) {
		return
	}
	if _, err := cli.ws.LoadSession(sessions[n-1].ID); err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	fmt.Printf("%s✓ Loaded \"%s\"%s\n", colorGreen, sessions[n-1].Title, colorReset)
}

func (cli *CLI) researchFlow() {
	fmt.Print("Research query: ")
	query := cli.readLine()
	if query == "" {
		return
	}
	fmt.Print("Optimize query first? (y/n): ")
	optimize := strings.HasPrefix(strings.ToLower(cli.readLine()), "y")

	fmt.Printf("%s⏳ Researching...%s\n", colorBlue, colorReset)
	result, err := cli.ws.PerformResearch(cli.ctx, query, optimize)
	if err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	if result.OptimizedQuery != "" {
		fmt.Printf("%sOptimized query:%s %s\n", colorYellow, colorReset, result.OptimizedQuery)
	}
	fmt.Printf("\n%s\n", result.Results)
	printSources(result.Citations)

	fmt.Print("\nSave this research? (y/n): ")
	if strings.HasPrefix(strings.ToLower(cli.readLine()), "y") {
		if _, err := cli.ws.SaveResearch(cli.ctx); err != nil {
			fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
			return
		}
		fmt.Printf("%s✓ Saved%s\n", colorGreen, colorReset)
	}
}

func (cli *CLI) draftFlow() {
	fmt.Print("Describe the document: ")
	instructions := cli.readLine()
	if instructions == "" {
		return
	}

	cli.ws.NewDraft()
	fmt.Printf("%s⏳ Drafting...%s\n", colorBlue, colorReset)
	draft, err := cli.ws.GenerateDraft(cli.ctx, instructions)
	if err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	fmt.Printf("\n%s\n", draft.Content)

	fmt.Print("\nTitle to save under (empty to discard): ")
	title := cli.readLine()
	if title == "" {
		return
	}
	cli.ws.UpdateDraft(&services.DraftUpdate{Title: &title})
	if _, err := cli.ws.SaveDraft(cli.ctx); err != nil {
		fmt.Printf("%s❌ %v%s\n", colorRed, err, colorReset)
		return
	}
	fmt.Printf("%s✓ Saved%s\n", colorGreen, colorReset)
}

func printSources(sources []models.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Printf("\n%sSources:%s\n", colorCyan, colorReset)
	for i, s := range sources {
		label := s.Title
		if label == "" {
			label = s.URI
		}
		fmt.Printf("  %d. %s %s\n", i+1, label, s.URI)
	}
}

func (cli *CLI) readLine() string {
	if !cli.scanner.Scan() {
		cli.eof = true
		return ""
	}
	return strings.TrimSpace(cli.scanner.Text())
}
