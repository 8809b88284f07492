// Package bootstrap wires configuration into a runnable application.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"nextstep-backend/internal/applications"
	"nextstep-backend/internal/auth"
	"nextstep-backend/internal/jobs"
	"nextstep-backend/internal/locations"
	"nextstep-backend/internal/mail"
	"nextstep-backend/internal/matching"
	"nextstep-backend/internal/notifications"
	"nextstep-backend/internal/shared/cache"
	"nextstep-backend/internal/shared/config"
	"nextstep-backend/internal/shared/server"
	"nextstep-backend/internal/shared/server/middleware"
	"nextstep-backend/internal/shared/storage/db"
	"nextstep-backend/internal/shared/storage/object"
	"nextstep-backend/internal/shared/storage/object/local"
	"nextstep-backend/internal/shared/storage/object/s3"
	"nextstep-backend/internal/shared/telemetry"
	"nextstep-backend/internal/users"
)

// App is the wired application.
type App struct {
	Router *gin.Engine
	DB     *sql.DB
	Cache  *cache.Cache
}

// Close releases held resources.
func (a *App) Close() {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

// Build assembles repositories, services and the router from config.
// Without DATABASE_URL it falls back to in-memory storage; without
// MATCHER_API_URL it runs the in-process parser and an empty scorer.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{}

	var (
		usersRepo users.Repo
		jobsRepo  jobs.Repo
		appsRepo  applications.Repo
		notesRepo notifications.Repo
	)
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		app.DB = database
		usersRepo = &users.PGRepo{DB: database}
		jobsRepo = &jobs.PGRepo{DB: database}
		appsRepo = &applications.PGRepo{DB: database}
		notesRepo = &notifications.PGRepo{DB: database}
	} else {
		telemetry.Warn("bootstrap.memory_storage", map[string]any{
			"reason": "DATABASE_URL not set, data will not survive restarts",
		})
		usersRepo = users.NewMemoryRepo()
		jobsRepo = jobs.NewMemoryRepo()
		appsRepo = applications.NewMemoryRepo()
		notesRepo = notifications.NewMemoryRepo()
	}

	store, staticDir, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	parser, scorer, err := buildMatcher(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	mailer, err := buildMailer(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Cache = cache.New(cfg.RedisAddr, cfg.RedisPassword)

	usersSvc := users.NewService(usersRepo)
	jobsSvc := jobs.NewService(jobsRepo, app.Cache)
	dispatcher := notifications.NewDispatcher(notesRepo)
	appsSvc := &applications.Service{
		Repo:          appsRepo,
		Jobs:          jobsRepo,
		Users:         usersRepo,
		Store:         store,
		Parser:        parser,
		Scorer:        scorer,
		Notifier:      dispatcher,
		Mailer:        mailer,
		PublicBaseURL: cfg.PublicBaseURL,
	}

	handlers := []server.RouteRegistrar{
		locations.NewHandler(locations.Default()),
		users.NewHandler(usersSvc),
		jobs.NewHandler(jobsSvc),
		applications.NewHandler(appsSvc),
		notifications.NewHandler(notesRepo),
	}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		handlers = append(handlers, auth.NewGoogleService(
			cfg.GoogleClientID, cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL, cfg.UIRedirectURL, usersSvc))
	} else {
		telemetry.Warn("bootstrap.google_auth_disabled", map[string]any{
			"reason": "GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set",
		})
	}

	app.Router = server.NewRouter(server.Deps{
		Env:            cfg.Env,
		CORSOrigins:    cfg.CORSAllowOrigin,
		RateLimiter:    middleware.NewRateLimiter(middleware.DefaultRules()),
		StaticFilesDir: staticDir,
		Handlers:       handlers,
	})
	return app, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ResumeStore, string, error) {
	if cfg.ResumeStoreType == "s3" {
		store, err := s3.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, "", fmt.Errorf("build s3 store: %w", err)
		}
		return store, "", nil
	}
	store := local.New(cfg.LocalStoreDir, cfg.PublicBaseURL)
	return store, store.BaseDir(), nil
}

func buildMatcher(cfg config.Config) (matching.Parser, matching.Scorer, error) {
	if cfg.MatcherURL == "" {
		telemetry.Warn("bootstrap.matcher_local", map[string]any{
			"reason": "MATCHER_API_URL not set, scores will be empty",
		})
		return matching.LocalParser{}, matching.NoopScorer{}, nil
	}
	client, err := matching.NewHTTPClient(cfg.MatcherURL, cfg.MatcherTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("build matcher client: %w", err)
	}
	return client, client, nil
}

func buildMailer(cfg config.Config) (mail.Mailer, error) {
	if cfg.SMTPAddr == "" {
		telemetry.Warn("bootstrap.mail_disabled", map[string]any{
			"reason": "SMTP_ADDR not set",
		})
		return mail.Noop{}, nil
	}
	return mail.NewSMTP(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword)
}
