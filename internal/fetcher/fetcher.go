package fetcher

import (
	"context"

	"github.com/snapwatch/tiktok-monitor/internal/domain"
)

// Client is the scraping backend. FetchPosts failures are recoverable per
// account; DownloadMedia returning an empty path means the post carries no
// downloadable media, which is not an error.
type Client interface {
	FetchPosts(ctx context.Context, username string) ([]domain.RawPost, error)
	DownloadMedia(ctx context.Context, raw domain.RawPost, dir string) (string, error)
}
