package apifyimpl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/snapwatch/tiktok-monitor/internal/domain"
	apperrors "github.com/snapwatch/tiktok-monitor/pkg/errors"
	"github.com/snapwatch/tiktok-monitor/pkg/retry"
)

// DownloadMedia streams the item's media to <dir>/<username>/<postID><ext>
// and returns the local path. Items without a media URL yield ("", nil).
func (a *ApifyImpl) DownloadMedia(ctx context.Context, raw domain.RawPost, dir string) (string, error) {
	mediaURL := raw.StringVal("video_url")
	if mediaURL == "" {
		a.logger.Info("No media URL on item", "post_id", postIDOf(raw))
		return "", nil
	}

	username := raw.StringVal("unique_id")
	if username == "" {
		username = "unknown"
	}

	userDir := filepath.Join(dir, username)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download dir: %w", err)
	}

	path := filepath.Join(userDir, postIDOf(raw)+extensionOf(mediaURL))

	operation := func() error {
		return a.downloadTo(ctx, mediaURL, path)
	}
	if err := retry.Do(ctx, a.logger, "apify.DownloadMedia", operation, retry.DefaultConfig()); err != nil {
		return "", apperrors.WrapClass(apperrors.ErrFetch, err, "failed to download media")
	}

	a.logger.Info("Downloaded media", "path", path)
	return path, nil
}

func (a *ApifyImpl) downloadTo(ctx context.Context, url, path string) error {
	resp, err := a.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return err
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return fmt.Errorf("media download failed: %s", resp.Status())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func postIDOf(raw domain.RawPost) string {
	if id := raw.StringVal("aweme_id"); id != "" {
		return id
	}
	if id := raw.StringVal("video_id"); id != "" {
		return id
	}
	return "unknown"
}

func extensionOf(mediaURL string) string {
	for _, marker := range []string{".jpg", ".jpeg", ".webp"} {
		if strings.Contains(mediaURL, marker) {
			return ".jpg"
		}
	}
	return ".mp4"
}
