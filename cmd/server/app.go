package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/charforge-api/internal/config"
	"github.com/phrazzld/charforge-api/internal/generation"
	"github.com/phrazzld/charforge-api/internal/platform/gemini"
	"github.com/phrazzld/charforge-api/internal/platform/openai"
	"github.com/phrazzld/charforge-api/internal/platform/postgres"
	"github.com/phrazzld/charforge-api/internal/service"
	"github.com/phrazzld/charforge-api/internal/store"
)

// application holds the initialized dependencies for the server process.
type application struct {
	config          *config.Config
	logger          *slog.Logger
	db              *sql.DB
	creationService service.CreationService
}

// newApplication wires configuration into concrete dependencies: provider
// families, the generation driver, the optional creation cache, and the
// service layer. A missing credential disables that family; a missing
// database URL disables caching. At least one family must be usable.
func newApplication(cfg *config.Config, log *slog.Logger) (*application, error) {
	app := &application{config: cfg, logger: log}

	primary := buildFamily(log, "gemini", cfg.Providers.Gemini, cfg.Generation.RequestsPerMinute)
	fallback := buildFamily(log, "openai", cfg.Providers.OpenAI, cfg.Generation.RequestsPerMinute)

	orchestrator, err := generation.NewOrchestrator(log, primary, fallback, generation.OrchestratorConfig{
		RetryPolicy: generation.RetryPolicy{
			MaxAttempts: 2,
			Delay:       time.Duration(cfg.Generation.RetryDelaySeconds) * time.Second,
		},
		FallbackDelay: time.Duration(cfg.Generation.FallbackDelaySeconds) * time.Second,
		InvokeTimeout: time.Duration(cfg.Generation.InvokeTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build generation driver: %w", err)
	}

	creations, err := app.setupCreationStore()
	if err != nil {
		return nil, err
	}

	creationService, err := service.NewCreationService(orchestrator, creations, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build creation service: %w", err)
	}
	app.creationService = creationService

	return app, nil
}

// buildFamily constructs one provider family, returning nil when the
// credential is absent so the driver can treat the family as unusable.
func buildFamily(
	log *slog.Logger,
	name string,
	cfg config.ProviderConfig,
	requestsPerMinute int,
) generation.ProviderFamily {
	var (
		family generation.ProviderFamily
		err    error
	)
	switch name {
	case "gemini":
		family, err = gemini.New(log, cfg, requestsPerMinute)
	case "openai":
		family, err = openai.New(log, cfg, requestsPerMinute)
	}
	if err != nil {
		log.Warn("provider family disabled", "family", name, "reason", err.Error())
		return nil
	}
	return family
}

// setupCreationStore opens the database and wraps it in a creation store.
// An unset database URL is a supported mode: every request generates
// fresh and nothing is cached.
func (app *application) setupCreationStore() (store.CreationStore, error) {
	if app.config.Database.URL == "" {
		app.logger.Info("no database configured, creation caching disabled")
		return nil, nil
	}

	db, err := sql.Open("pgx", app.config.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	app.db = db
	app.logger.Info("database connection configured")
	return postgres.NewPostgresCreationStore(db, app.logger), nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
