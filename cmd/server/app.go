package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/davrell/mnemo-api/internal/config"
	"github.com/davrell/mnemo-api/internal/domain/srs"
	"github.com/davrell/mnemo-api/internal/platform/logger"
	"github.com/davrell/mnemo-api/internal/platform/postgres"
	"github.com/davrell/mnemo-api/internal/service/auth"
	"github.com/davrell/mnemo-api/internal/service/progress"
	"github.com/davrell/mnemo-api/internal/service/study"
	"github.com/davrell/mnemo-api/internal/store"
)

// application holds the wired dependencies of the server process.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	authService  *auth.Service
	tokenService auth.TokenService
	studyService *study.Service
	analytics    *progress.Analytics
}

// newApplication loads configuration, runs migrations and wires every layer
// bottom-up: stores, scheduler, services.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(db, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	userStore := postgres.NewUserStore(db, log)
	sessionStore := postgres.NewStudySessionStore(db, log)
	progressStore := postgres.NewCardProgressStore(db, log)
	deckCatalog := postgres.NewDeckCatalogStore(db, log)
	txRunner := &store.DBTxRunner{DB: db}

	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	authService := auth.NewService(
		userStore,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		tokenService,
		log,
	)

	selector := study.NewCardSelector(
		deckCatalog,
		progressStore,
		study.SelectorConfig{NewCardFallback: cfg.Study.NewCardFallback},
		nil,
		log,
	)
	studyService := study.NewService(
		sessionStore,
		progressStore,
		selector,
		srs.NewDefaultScheduler(),
		txRunner,
		study.Config{DefaultBreakIntervalMinutes: cfg.Study.DefaultBreakIntervalMinutes},
		log,
	)
	analytics := progress.NewAnalytics(
		sessionStore,
		progressStore,
		progress.Config{WindowDays: cfg.Study.AnalyticsWindowDays},
		log,
	)

	return &application{
		config:       cfg,
		logger:       log,
		db:           db,
		authService:  authService,
		tokenService: tokenService,
		studyService: studyService,
		analytics:    analytics,
	}, nil
}

// cleanup releases process-wide resources. Safe to call more than once.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
		app.db = nil
	}
}
