package pipelineimpl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/snapwatch/tiktok-monitor/internal/accounts"
	"github.com/snapwatch/tiktok-monitor/internal/domain"
	"github.com/snapwatch/tiktok-monitor/internal/repositories/post"
)

// RunCycle performs one complete pass over the monitored accounts. Failures
// are isolated per account and per post; one bad item never aborts the run.
func (p *PipelineImpl) RunCycle(ctx context.Context) int {
	p.Logger.Info("Starting monitoring cycle")

	accts := p.resolveAccounts(ctx)
	p.Logger.Info("Resolved monitored accounts", "count", len(accts))

	total := 0
	for _, acct := range accts {
		if !acct.Enabled {
			p.Logger.Debug("Skipping disabled account", "username", acct.Username)
			continue
		}

		newPosts := p.processAccount(ctx, acct.Username)
		total += newPosts
		p.Logger.Info("Processed account", "username", acct.Username, "new_posts", newPosts)
	}

	p.Logger.Info("Monitoring cycle complete", "new_posts", total)
	return total
}

// resolveAccounts asks the live account source and falls back to the static
// list when the source is missing, failing or empty.
func (p *PipelineImpl) resolveAccounts(ctx context.Context) []domain.Account {
	if p.Accounts != nil {
		list, err := p.Accounts.ListAccounts(ctx)
		switch {
		case err != nil:
			p.Logger.Error("Account source failed, using fallback list", "error", err)
		case len(list) == 0:
			p.Logger.Warn("Account source returned no accounts, using fallback list")
		default:
			return list
		}
	}
	return accounts.Fallback(p.Config.Monitor.Accounts, p.Config.Monitor.DefaultAccount)
}

func (p *PipelineImpl) processAccount(ctx context.Context, username string) int {
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx, username); err != nil {
			p.Logger.Warn("Rate limiter interrupted, skipping account", "username", username, "error", err)
			return 0
		}
	}

	raws, err := p.Fetcher.FetchPosts(ctx, username)
	if err != nil {
		p.Logger.Error("Failed to fetch posts, skipping account", "username", username, "error", err)
		return 0
	}
	if len(raws) == 0 {
		p.Logger.Info("No posts found for account", "username", username)
		return 0
	}

	newPosts := 0
	for _, raw := range raws {
		if p.processPost(ctx, username, raw) {
			newPosts++
		}
	}
	return newPosts
}

// processPost handles one raw item end to end. It returns true only when a
// new record was persisted in this call. The side-effect order is fixed:
// archive (best effort), then persist, then notify, then mark-notified. A
// record is always persisted before the notifier sees it.
func (p *PipelineImpl) processPost(ctx context.Context, username string, raw domain.RawPost) bool {
	rec := normalizeMetadata(username, raw, p.now())

	if rec.PostID == UnknownPostID {
		p.Logger.Warn("Post has no usable ID, falling back to sentinel", "username", username)
	}

	exists, err := p.PostRepo.Exists(ctx, rec.PostID)
	if err != nil {
		p.Logger.Error("Record store check failed, skipping post", "post_id", rec.PostID, "error", err)
		return false
	}
	if exists {
		p.Logger.Debug("Skipping already processed post", "post_id", rec.PostID)
		return false
	}

	p.Logger.Info("Processing new post", "post_id", rec.PostID, "username", username)

	if p.Archiver != nil {
		rec.ArchiveURL = p.archivePost(ctx, username, raw, rec)
	} else {
		p.Logger.Debug("Archiver not configured, skipping media upload", "post_id", rec.PostID)
	}

	rec.IngestedAt = p.now()
	if err := p.PostRepo.Create(ctx, rec); err != nil {
		if errors.Is(err, post.ErrAlreadyExists) {
			// Lost the race since the optimistic check; not an error.
			p.Logger.Debug("Post was persisted concurrently, skipping notification", "post_id", rec.PostID)
			return false
		}
		p.Logger.Error("Failed to persist post, skipping", "post_id", rec.PostID, "error", err)
		return false
	}

	if p.Notifier != nil {
		if err := p.Notifier.Notify(ctx, rec); err != nil {
			p.Logger.Error("Failed to send notification, record stays unnotified", "post_id", rec.PostID, "error", err)
		} else if updated, err := p.PostRepo.MarkNotified(ctx, rec.PostID); err != nil {
			p.Logger.Error("Failed to mark post notified", "post_id", rec.PostID, "error", err)
		} else if !updated {
			p.Logger.Warn("Mark-notified updated no rows", "post_id", rec.PostID)
		}
	} else {
		p.Logger.Debug("Notifier not configured, skipping notification", "post_id", rec.PostID)
	}

	p.Logger.Info("Successfully processed post", "post_id", rec.PostID)
	return true
}

// archivePost downloads the item's media and uploads it to durable storage.
// Any failure is non-fatal to the post and yields an empty archive URL.
func (p *PipelineImpl) archivePost(ctx context.Context, username string, raw domain.RawPost, rec domain.Post) string {
	localPath, err := p.Fetcher.DownloadMedia(ctx, raw, p.Config.Monitor.DownloadDir)
	if err != nil {
		p.Logger.Warn("Media download failed, proceeding without archive", "post_id", rec.PostID, "error", err)
		return ""
	}
	if localPath == "" {
		p.Logger.Info("Post carries no media, proceeding without archive", "post_id", rec.PostID)
		return ""
	}

	displayName := fmt.Sprintf("tiktok_%s_%s%s", username, rec.PostID, filepath.Ext(localPath))
	description := fmt.Sprintf("TikTok video from @%s", username)
	if rec.Caption != "" {
		description += "\n\n" + rec.Caption
	}

	url, err := p.Archiver.Archive(ctx, localPath, displayName, description)
	if err != nil {
		p.Logger.Warn("Archive upload failed, proceeding without archive", "post_id", rec.PostID, "error", err)
		return ""
	}

	if err := os.Remove(localPath); err != nil {
		p.Logger.Warn("Failed to remove local media file", "path", localPath, "error", err)
	}

	return url
}
