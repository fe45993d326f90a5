package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateProcessedPosts, downCreateProcessedPosts)
}

func upCreateProcessedPosts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	CREATE TABLE processed_posts (
		id BIGSERIAL PRIMARY KEY,
		post_id VARCHAR NOT NULL UNIQUE,
		author VARCHAR NOT NULL,
		published_at VARCHAR NOT NULL,
		source_url VARCHAR NOT NULL,
		caption TEXT NOT NULL DEFAULT '',
		transcript TEXT NOT NULL DEFAULT '',
		hashtags TEXT[] NOT NULL DEFAULT '{}',
		archive_url VARCHAR NOT NULL DEFAULT '',
		ingested_at TIMESTAMP WITH TIME ZONE NOT NULL,
		notified BOOLEAN NOT NULL DEFAULT FALSE
	);
	CREATE INDEX idx_processed_posts_author_published
		ON processed_posts (author, published_at DESC);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreateProcessedPosts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	DROP TABLE processed_posts;
	`)
	if err != nil {
		return err
	}
	return nil
}
