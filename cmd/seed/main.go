package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"time"

	"dharmabot/internal/auth"
	"dharmabot/internal/config"
	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
	"dharmabot/internal/repository"
	"dharmabot/internal/repository/collection"
	"dharmabot/internal/repository/postgres"
	"dharmabot/internal/repository/sqlite"
	serviceAuth "dharmabot/internal/service/auth"

	"github.com/joho/godotenv"
)

const demoPassword = "demo123"

// demoUsers get one account per profile type.
var demoUsers = []struct {
	email   string
	profile models.ProfileType
}{
	{"citizen@example.com", models.ProfileCitizen},
	{"judge@example.com", models.ProfileJudge},
	{"lawyer@example.com", models.ProfileLawyer},
	{"student@example.com", models.ProfileLawStudent},
}

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (postgres only)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't create demo accounts")
	clearData := flag.Bool("clear-data", false, "Delete all stored data (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.StorageDriver == "memory" {
		log.Fatalf("Nothing to seed: the memory driver keeps no data between runs")
	}

	logger, logCloser, err := config.NewLogger(cfg, "seed")
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	ctx := context.Background()

	if *dropTables {
		if cfg.StorageDriver != "postgres" {
			log.Fatalf("--drop-tables only applies to the postgres driver")
		}
		log.Println("🗑️  Dropping all tables...")
		if err := dropPostgresTables(ctx, cfg, logger); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Opening storage creates any missing schema
	log.Printf("📋 Ensuring schema (driver: %s, prefix: %s)", cfg.StorageDriver, cfg.TablePrefix)
	storage, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer storage.Close()
	log.Println("✅ Schema ready")

	if *schemaOnly {
		return
	}

	if *clearData {
		log.Println("🧹 Clearing all stored data...")
		if err := clearAll(ctx, storage); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "seed-only-secret"
	}
	tokens, err := auth.NewSessionTokens(cfg.JWTSecret, time.Minute, logger)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}
	authService := serviceAuth.NewService(
		collection.NewUserRepository(storage.KV),
		collection.NewAuthSessionRepository(storage.KV),
		tokens,
		logger,
	)
	drafts := collection.NewDraftRepository(storage.KV)

	log.Println("👤 Creating demo accounts...")
	for _, u := range demoUsers {
		result, err := authService.Register(ctx, &services.RegisterRequest{
			ProfileType:     u.profile,
			Email:           u.email,
			Phone:           "9876543210",
			Password:        demoPassword,
			ConfirmPassword: demoPassword,
		})
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			log.Printf("↩️  %s already exists", u.email)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to create %s: %v", u.email, err)
		}
		// Registration logs the account in; the seed has no use for that session
		if claims, err := tokens.VerifyToken(result.Token); err == nil {
			_ = authService.Logout(ctx, claims.ID)
		}

		if u.profile.CanAccess(models.FeatureDrafting) {
			if err := drafts.Save(ctx, result.User.ID, sampleDraft()); err != nil {
				log.Fatalf("Failed to seed draft for %s: %v", u.email, err)
			}
		}
		log.Printf("✅ Created %s (%s)", u.email, u.profile)
	}

	log.Printf("🎉 Seeding complete! Log in with any demo account and password %q", demoPassword)
}

func sampleDraft() *models.SavedDraft {
	now := time.Now().UnixMilli()
	return &models.SavedDraft{
		ID:           "seed-rental-agreement",
		Title:        "Sample Rental Agreement",
		Instructions: "Draft a simple 11-month residential rental agreement for a flat in Kochi.",
		Content: "# Rental Agreement\n\n" +
			"This agreement is made between the **Owner** and the **Tenant** for a period of eleven months.\n\n" +
			"## Terms\n\n" +
			"1. Monthly rent is payable on or before the 5th of each month.\n" +
			"2. A security deposit of two months' rent is refundable at the end of the term.\n" +
			"3. Either party may terminate with one month's written notice.\n",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func dropPostgresTables(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	return postgres.DropTables(ctx, &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	})
}

func clearAll(ctx context.Context, storage *repository.Storage) error {
	if storage.Postgres != nil {
		return postgres.ClearData(ctx, storage.Postgres)
	}
	if kv, ok := storage.KV.(*sqlite.KVStore); ok {
		return kv.Clear(ctx)
	}
	return errors.New("storage driver does not support clearing")
}
