package archiver

import "context"

// Client uploads a local media file to durable storage and returns a
// shareable URL. Failures are recoverable; the post proceeds without an
// archive URL.
type Client interface {
	Archive(ctx context.Context, localPath, displayName, description string) (string, error)
}
