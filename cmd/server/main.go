package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dharmabot/internal/auth"
	"dharmabot/internal/capabilities"
	"dharmabot/internal/config"
	"dharmabot/internal/handler"
	"dharmabot/internal/middleware"
	"dharmabot/internal/repository"
	"dharmabot/internal/repository/collection"
	"dharmabot/internal/service"
	"dharmabot/internal/service/attachments"
	serviceAuth "dharmabot/internal/service/auth"
	"dharmabot/internal/service/lawyers"
	serviceLLM "dharmabot/internal/service/llm"
	"dharmabot/internal/service/workspace"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logCloser, err := config.NewLogger(cfg, "server")
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage", cfg.StorageDriver,
	)

	if cfg.JWTSecret == "" {
		if cfg.Environment == "prod" {
			log.Fatalf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev-insecure-secret"
		logger.Warn("JWT_SECRET not set - using an insecure development secret")
	}

	ctx := context.Background()

	// Open storage
	storage, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer storage.Close()

	// Collections
	workspaceRepos := workspace.Repositories{
		Sessions:   collection.NewChatSessionRepository(storage.KV),
		Drafts:     collection.NewDraftRepository(storage.KV),
		Voicenotes: collection.NewVoicenoteRepository(storage.KV),
		Research:   collection.NewResearchRepository(storage.KV),
		Audio:      collection.NewAudioRepository(storage.KV),
	}
	userRepo := collection.NewUserRepository(storage.KV)
	sessionRepo := collection.NewAuthSessionRepository(storage.KV)

	// Setup LLM providers
	providerRegistry, err := serviceLLM.SetupProviders(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup LLM providers: %v", err)
	}

	// Initialize capability registry
	capabilityRegistry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize capability registry: %v", err)
	}

	gateway, err := serviceLLM.SetupGateway(cfg, providerRegistry, capabilityRegistry, logger)
	if err != nil {
		log.Fatalf("Failed to setup inference gateway: %v", err)
	}

	// Auth
	tokens, err := auth.NewSessionTokens(cfg.JWTSecret, cfg.TokenTTL, logger)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}
	var authOpts []serviceAuth.Option
	if cfg.AuthJWKSURL != "" {
		jwksVerifier, err := auth.NewJWKSVerifier(ctx, cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWKS verifier: %v", err)
		}
		defer jwksVerifier.Close()
		authOpts = append(authOpts, serviceAuth.WithIdentityVerifier(jwksVerifier))
		logger.Info("external identity provider enabled", "jwks_url", cfg.AuthJWKSURL)
	}
	authService := serviceAuth.NewService(userRepo, sessionRepo, tokens, logger, authOpts...)

	// Services
	workspaces := workspace.NewRegistry(gateway, workspaceRepos, logger)
	userPrefsService := service.NewUserPreferencesService(storage.Preferences, logger,
		service.WithModelCheck(func(model string) error {
			_, _, err := providerRegistry.ResolveModel(model)
			return err
		}),
	)
	directory, err := lawyers.NewDirectory()
	if err != nil {
		log.Fatalf("Failed to load lawyer directory: %v", err)
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, &handler.Handlers{
		Health:      handler.NewHealthHandler(storage.KV, logger),
		Auth:        handler.NewAuthHandler(authService, workspaces, logger),
		Preferences: handler.NewUserPreferencesHandler(userPrefsService, logger),
		Models:      handler.NewModelsHandler(cfg, logger, capabilityRegistry),
		Workspace:   handler.NewWorkspaceHandler(workspaces, userPrefsService, logger),
		Attachments: handler.NewAttachmentHandler(attachments.NewProcessor(logger), logger),
		Lawyers:     handler.NewLawyerHandler(directory),
	})

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	h = middleware.Auth(authService, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server. Inference calls can run for minutes, so writes get
	// the LLM timeout plus slack.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  time.Minute,
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
