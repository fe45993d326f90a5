package pipelineimpl

import (
	"time"

	"github.com/snapwatch/tiktok-monitor/internal/accounts"
	"github.com/snapwatch/tiktok-monitor/internal/archiver"
	"github.com/snapwatch/tiktok-monitor/internal/fetcher"
	"github.com/snapwatch/tiktok-monitor/internal/notifier"
	"github.com/snapwatch/tiktok-monitor/internal/pipeline"
	"github.com/snapwatch/tiktok-monitor/internal/ratelimit"
	"github.com/snapwatch/tiktok-monitor/internal/repositories/post"
	"github.com/snapwatch/tiktok-monitor/pkg/config"
	"github.com/snapwatch/tiktok-monitor/pkg/logger"
	"go.uber.org/fx"
)

// Accounts, Archiver and Notifier are optional capabilities: a nil client
// means the corresponding step is skipped with a log line, never an abort.
type Opts struct {
	fx.In

	Fetcher  fetcher.Client
	PostRepo post.Repository
	Accounts accounts.Client `optional:"true"`
	Archiver archiver.Client `optional:"true"`
	Notifier notifier.Client `optional:"true"`
	Limiter  ratelimit.Limiter
	Logger   logger.Logger
	Config   *config.Config
}

type PipelineImpl struct {
	Fetcher  fetcher.Client
	PostRepo post.Repository
	Accounts accounts.Client
	Archiver archiver.Client
	Notifier notifier.Client
	Limiter  ratelimit.Limiter
	Logger   logger.Logger
	Config   *config.Config

	now func() time.Time
}

func New(opts Opts) *PipelineImpl {
	p := &PipelineImpl{
		Fetcher:  opts.Fetcher,
		PostRepo: opts.PostRepo,
		Accounts: opts.Accounts,
		Archiver: opts.Archiver,
		Notifier: opts.Notifier,
		Limiter:  opts.Limiter,
		Logger:   opts.Logger.WithComponent("Pipeline"),
		Config:   opts.Config,
		now:      time.Now,
	}

	p.Logger.Info("Pipeline initialized",
		"account_source_configured", opts.Accounts != nil,
		"archiver_configured", opts.Archiver != nil,
		"notifier_configured", opts.Notifier != nil,
	)

	return p
}

var _ pipeline.Client = (*PipelineImpl)(nil)
