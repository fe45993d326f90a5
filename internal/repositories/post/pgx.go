package post

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/snapwatch/tiktok-monitor/internal/domain"
	"github.com/snapwatch/tiktok-monitor/internal/repositories"
	apperrors "github.com/snapwatch/tiktok-monitor/pkg/errors"
	"github.com/snapwatch/tiktok-monitor/pkg/logger"
)

const uniqueViolation = "23505"

var postColumns = []string{
	"id", "post_id", "author", "published_at", "source_url",
	"caption", "transcript", "hashtags", "archive_url", "ingested_at", "notified",
}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("PostRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Exists(ctx context.Context, postID string) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Select("1").
		From("processed_posts").
		Where(sq.Eq{"post_id": postID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	var one int
	err = p.pg.QueryRow(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, apperrors.WrapClass(apperrors.ErrStorage, err, "failed to check post existence")
	}

	return true, nil
}

func (p *Pgx) Create(ctx context.Context, post domain.Post) error {
	query, args, err := repositories.SqBuilder.
		Insert("processed_posts").
		Columns(
			"post_id", "author", "published_at", "source_url",
			"caption", "transcript", "hashtags", "archive_url", "ingested_at", "notified",
		).
		Values(
			post.PostID, post.Author, post.PublishedAt, post.SourceURL,
			post.Caption, post.Transcript, post.Hashtags, post.ArchiveURL, post.IngestedAt, post.Notified,
		).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return apperrors.WrapClass(apperrors.ErrStorage, err, "failed to persist post")
	}
	return nil
}

func (p *Pgx) MarkNotified(ctx context.Context, postID string) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Update("processed_posts").
		Set("notified", true).
		Where(sq.Eq{"post_id": postID}).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	tag, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return false, apperrors.WrapClass(apperrors.ErrStorage, err, "failed to mark post notified")
	}

	return tag.RowsAffected() > 0, nil
}

func (p *Pgx) GetByPostID(ctx context.Context, postID string) (*domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select(postColumns...).
		From("processed_posts").
		Where(sq.Eq{"post_id": postID}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var post domain.Post
	err = p.pg.QueryRow(ctx, query, args...).Scan(
		&post.ID, &post.PostID, &post.Author, &post.PublishedAt, &post.SourceURL,
		&post.Caption, &post.Transcript, &post.Hashtags, &post.ArchiveURL, &post.IngestedAt, &post.Notified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperrors.WrapClass(apperrors.ErrStorage, err, "failed to load post")
	}

	return &post, nil
}

func (p *Pgx) ListRecent(ctx context.Context, author string, limit int) ([]*domain.Post, error) {
	if limit <= 0 {
		return nil, nil
	}

	builder := repositories.SqBuilder.
		Select(postColumns...).
		From("processed_posts")

	if author != "" {
		builder = builder.Where(sq.Eq{"author": author})
	}

	query, args, err := builder.
		OrderBy("published_at DESC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.WrapClass(apperrors.ErrStorage, err, "failed to list posts")
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID, &post.PostID, &post.Author, &post.PublishedAt, &post.SourceURL,
			&post.Caption, &post.Transcript, &post.Hashtags, &post.ArchiveURL, &post.IngestedAt, &post.Notified,
		); err != nil {
			return nil, apperrors.WrapClass(apperrors.ErrStorage, err, "failed to scan post row")
		}
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.WrapClass(apperrors.ErrStorage, err, "failed to list posts")
	}

	return posts, nil
}
