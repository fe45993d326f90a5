package notifier

import (
	"context"

	"github.com/snapwatch/tiktok-monitor/internal/domain"
)

// Client delivers the new-video alert for a persisted record. A failure
// leaves the record with notified=false; there is no retry.
type Client interface {
	Notify(ctx context.Context, post domain.Post) error
}
