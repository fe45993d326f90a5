package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithComponent(name string) Logger
}

type Opts struct {
	Env       string
	SentryDSN string
}

type Impl struct {
	l *slog.Logger
}

var _ Logger = (*Impl)(nil)

func New(opts Opts) *Impl {
	level := slog.LevelInfo
	if opts.Env == "development" {
		level = slog.LevelDebug
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	handlers := []slog.Handler{
		slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler(),
	}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Env,
		})
		if err != nil {
			zl.Warn().Err(err).Msg("Sentry init failed, continuing without it")
		} else {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		}
	}

	return &Impl{l: slog.New(slogmulti.Fanout(handlers...))}
}

// NewNop returns a logger that discards everything. Tests use it.
func NewNop() *Impl {
	return &Impl{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (i *Impl) Debug(msg string, args ...any) { i.l.Debug(msg, args...) }
func (i *Impl) Info(msg string, args ...any)  { i.l.Info(msg, args...) }
func (i *Impl) Warn(msg string, args ...any)  { i.l.Warn(msg, args...) }
func (i *Impl) Error(msg string, args ...any) { i.l.Error(msg, args...) }

func (i *Impl) WithComponent(name string) Logger {
	return &Impl{l: i.l.With("component", name)}
}

// Printf satisfies fx.Printer so the DI container logs through us.
func (i *Impl) Printf(format string, args ...any) {
	i.l.Debug(fmt.Sprintf(format, args...))
}
