package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/snapwatch/tiktok-monitor/internal/accounts"
	"github.com/snapwatch/tiktok-monitor/internal/accounts/sheetsimpl"
	"github.com/snapwatch/tiktok-monitor/internal/archiver"
	"github.com/snapwatch/tiktok-monitor/internal/archiver/driveimpl"
	"github.com/snapwatch/tiktok-monitor/internal/fetcher"
	"github.com/snapwatch/tiktok-monitor/internal/fetcher/apifyimpl"
	_ "github.com/snapwatch/tiktok-monitor/internal/migrations"
	"github.com/snapwatch/tiktok-monitor/internal/notifier"
	"github.com/snapwatch/tiktok-monitor/internal/notifier/slackimpl"
	"github.com/snapwatch/tiktok-monitor/internal/pipeline"
	"github.com/snapwatch/tiktok-monitor/internal/pipeline/pipelineimpl"
	"github.com/snapwatch/tiktok-monitor/internal/ratelimit"
	repositories "github.com/snapwatch/tiktok-monitor/internal/repositories/fx"
	"github.com/snapwatch/tiktok-monitor/pkg/config"
	"github.com/snapwatch/tiktok-monitor/pkg/logger"
	"github.com/snapwatch/tiktok-monitor/pkg/pgx"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
	),
	fx.Provide(
		fx.Annotate(
			apifyimpl.New,
			fx.As(new(fetcher.Client)),
		),
		fx.Annotate(
			pipelineimpl.New,
			fx.As(new(pipeline.Client)),
		),
		fx.Annotate(
			func() *ratelimit.InMemoryLimiter {
				return ratelimit.NewInMemoryLimiter(6, time.Minute, 2)
			},
			fx.As(new(ratelimit.Limiter)),
		),
		newAccountSource,
		newArchiver,
		newNotifier,
	),
	repositories.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

// The Sheets, Drive and Slack clients are optional: when their credentials
// are absent the provider returns a nil client and the pipeline skips the
// corresponding step.
func newAccountSource(cfg *config.Config, log logger.Logger) (accounts.Client, error) {
	if !cfg.SheetsConfigured() {
		log.Info("Google Sheets not configured, using static account list")
		return nil, nil
	}
	return sheetsimpl.New(context.Background(), cfg, log)
}

func newArchiver(cfg *config.Config, log logger.Logger) (archiver.Client, error) {
	if !cfg.DriveConfigured() {
		log.Info("Google Drive not configured, media archiving disabled")
		return nil, nil
	}
	return driveimpl.New(context.Background(), cfg, log)
}

func newNotifier(cfg *config.Config, log logger.Logger) notifier.Client {
	if !cfg.SlackConfigured() {
		log.Info("Slack not configured, notifications disabled")
		return nil
	}
	return slackimpl.New(slackimpl.Opts{Config: cfg, Logger: log})
}

func migrate(cfg *config.Config) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	// Migrations are compiled in, so the directory argument is unused.
	return goose.Up(db, ".")
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, log logger.Logger, cfg *config.Config, pipe pipeline.Client) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go startHttpServer(log, cfg)

			if cfg.Monitor.RunOnce {
				go func() {
					count := pipe.RunCycle(ctx)
					log.Info("Single monitoring run complete", "new_posts", count)
					if err := shutdowner.Shutdown(); err != nil {
						log.Error("Shutdown failed", "error", err)
					}
				}()
				return nil
			}

			return pipe.ScheduleCycles(ctx)
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func startHttpServer(log logger.Logger, cfg *config.Config) {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), nil); err != nil {
		log.Error("Server failed to start", "error", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, log logger.Logger) {
	log.Debug("Health check request received", "method", r.Method, "url", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		log.Error("Failed to write response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
