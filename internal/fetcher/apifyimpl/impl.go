package apifyimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/snapwatch/tiktok-monitor/internal/domain"
	"github.com/snapwatch/tiktok-monitor/internal/fetcher"
	"github.com/snapwatch/tiktok-monitor/pkg/config"
	apperrors "github.com/snapwatch/tiktok-monitor/pkg/errors"
	"github.com/snapwatch/tiktok-monitor/pkg/logger"
	"github.com/snapwatch/tiktok-monitor/pkg/retry"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type ApifyImpl struct {
	http    *resty.Client
	actorID string
	token   string
	logger  logger.Logger
}

func New(opts Opts) *ApifyImpl {
	client := resty.New().
		SetBaseURL(opts.Config.Apify.BaseURL).
		SetTimeout(5 * time.Minute)

	return &ApifyImpl{
		http:    client,
		actorID: opts.Config.Apify.ActorID,
		token:   opts.Config.Apify.Token,
		logger:  opts.Logger.WithComponent("ApifyFetcher"),
	}
}

var _ fetcher.Client = (*ApifyImpl)(nil)

// FetchPosts runs the story-viewer actor synchronously and returns the
// dataset items. The actor call is the slow path of a cycle, so the long
// client timeout above is deliberate.
func (a *ApifyImpl) FetchPosts(ctx context.Context, username string) ([]domain.RawPost, error) {
	a.logger.Info("Fetching stories", "username", username)

	var items []domain.RawPost
	operation := func() error {
		items = nil
		resp, err := a.http.R().
			SetContext(ctx).
			SetQueryParam("token", a.token).
			SetBody(map[string]any{"usernames": []string{username}}).
			SetResult(&items).
			Post(fmt.Sprintf("/v2/acts/%s/run-sync-get-dataset-items", a.actorID))
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("actor run failed: %s: %s", resp.Status(), resp.String())
		}
		return nil
	}

	if err := retry.Do(ctx, a.logger, "apify.FetchPosts", operation, retry.DefaultConfig()); err != nil {
		return nil, apperrors.WrapClass(apperrors.ErrFetch, err, fmt.Sprintf("failed to fetch stories for %s", username))
	}

	a.logger.Info("Fetched stories", "username", username, "count", len(items))
	return items, nil
}
