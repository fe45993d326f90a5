package post

import (
	"context"
	"errors"
	"fmt"

	"github.com/snapwatch/tiktok-monitor/internal/domain"
	apperrors "github.com/snapwatch/tiktok-monitor/pkg/errors"
)

var (
	// ErrAlreadyExists reports that a record with the same post ID is
	// already persisted. Callers treat it as "already present", never as a
	// failure.
	ErrAlreadyExists = errors.New("post already exists")
	ErrNotFound      = fmt.Errorf("post %w", apperrors.ErrNotFound)
)

type Repository interface {
	// Exists checks whether a record with the given post ID is persisted.
	// It is an optimization for callers; Create is the correctness
	// mechanism.
	Exists(ctx context.Context, postID string) (bool, error)

	// Create persists a new record. The post_id uniqueness constraint makes
	// this an atomic check-and-insert: a duplicate returns ErrAlreadyExists
	// and never overwrites the stored row.
	Create(ctx context.Context, p domain.Post) error

	// MarkNotified flips notified to true and reports whether a row was
	// actually updated. Unknown IDs return (false, nil).
	MarkNotified(ctx context.Context, postID string) (bool, error)

	// GetByPostID returns the record for the given post ID or ErrNotFound.
	GetByPostID(ctx context.Context, postID string) (*domain.Post, error)

	// ListRecent returns up to limit records ordered by published_at
	// descending, ties broken by insertion order. An empty author matches
	// all authors.
	ListRecent(ctx context.Context, author string, limit int) ([]*domain.Post, error)
}
