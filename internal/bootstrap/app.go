package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"screening-backend/internal/calendar"
	"screening-backend/internal/embedding"
	"screening-backend/internal/extract"
	"screening-backend/internal/ranking"
	"screening-backend/internal/scheduling"
	"screening-backend/internal/screenings"
	"screening-backend/internal/services/health"
	"screening-backend/internal/shared/auth"
	"screening-backend/internal/shared/config"
	"screening-backend/internal/shared/server"
	"screening-backend/internal/shared/storage/db"
	"screening-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Location         *time.Location
	ScreeningsRepo   screenings.Repo
	Embedder         embedding.Provider
	Ranker           *ranking.Ranker
	Calendar         *calendar.Client
	ScreeningService *screenings.Service
	ScreeningHandler *screenings.Handler
	Health           *health.Service
	Signer           *auth.Signer
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.SessionStore) == "" {
		cfg.SessionStore = "memory"
	}
	ctx := context.Background()

	loc, err := LoadLocation(cfg.InterviewTimezone)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Location: loc}

	if cfg.SessionStore == "postgres" {
		sqlDB, err := buildDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.DB = sqlDB
	}

	if app.DB != nil {
		app.ScreeningsRepo = &screenings.PGRepo{DB: app.DB}
		app.Config.SessionStore = "postgres"
	} else {
		app.ScreeningsRepo = screenings.NewMemoryRepo()
		app.Config.SessionStore = "memory"
	}

	app.Embedder, err = embedding.New(ctx, EmbeddingConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	app.Ranker = ranking.NewRanker(app.Embedder, ranking.Limits{
		ScoringChars: cfg.ScoringCharLimit,
		SummaryChars: cfg.SummaryCharLimit,
	})

	app.Calendar, err = buildCalendar(ctx, cfg, loc)
	if err != nil {
		return nil, err
	}

	app.Signer, err = auth.NewSigner(cfg.SessionSecret, cfg.Env, 0)
	if err != nil {
		return nil, err
	}

	app.ScreeningService = &screenings.Service{
		Repo:   app.ScreeningsRepo,
		Parser: extract.Parser{},
		Ranker: app.Ranker,
	}
	if app.Calendar != nil {
		app.ScreeningService.Scheduler = NewScheduler(app.Calendar, loc)
	}
	app.ScreeningHandler = screenings.NewHandler(app.ScreeningService, int64(cfg.MaxUploadMB)<<20)
	app.Health = health.NewService(app.DB, app.Config.SessionStore, embedding.Describe(app.Embedder), app.Calendar != nil)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		Signer:           app.Signer,
		Health:           app.Health,
		ScreeningHandler: app.ScreeningHandler,
		RateLimits:       server.DefaultRateLimits(),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":                 app.Config.Env,
		"session_store":       app.Config.SessionStore,
		"embedding_provider":  embedding.Describe(app.Embedder),
		"calendar_configured": app.Calendar != nil,
		"interview_timezone":  loc.String(),
	})
	return app, nil
}

// EmbeddingConfig maps application config onto the embedding provider config.
func EmbeddingConfig(cfg config.Config) embedding.Config {
	return embedding.Config{
		Provider:      cfg.EmbeddingProvider,
		Model:         cfg.EmbeddingModel,
		Dimension:     cfg.EmbeddingDim,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OllamaBaseURL: cfg.OllamaBaseURL,
	}
}

// LoadLocation resolves the interview time zone. Empty means the process's local zone.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid INTERVIEW_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// NewScheduler builds an orchestrator whose clock runs in loc, so interviews start at
// 09:00 in the interview time zone.
func NewScheduler(cal scheduling.Calendar, loc *time.Location) *scheduling.Orchestrator {
	return &scheduling.Orchestrator{
		Calendar: cal,
		Now:      func() time.Time { return time.Now().In(loc) },
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_missing", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_connect_failed", map[string]any{"fallback": "memory", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildCalendar(ctx context.Context, cfg config.Config, loc *time.Location) (*calendar.Client, error) {
	cal, err := calendar.NewFromFiles(ctx, cfg.CalendarCredentialsFile, cfg.CalendarTokenFile, calendar.Options{
		CalendarID: cfg.CalendarID,
		Location:   loc,
	})
	if err == nil {
		return cal, nil
	}
	if errors.Is(err, calendar.ErrNotConfigured) || isDevLike(cfg.Env) {
		telemetry.Warn("bootstrap.calendar_unavailable", map[string]any{"error": err})
		return nil, nil
	}
	return nil, err
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
