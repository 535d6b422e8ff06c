package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sameezy667/ResQ-sub000/pkg/e"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ImageRepo stores incident image attachments as bytea rows and serves
// them back by key. Keys are opaque; the returned URL is the serving
// path of the HTTP surface.
type ImageRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewImageRepo(pool *pgxpool.Pool, logger *slog.Logger) *ImageRepo {
	return &ImageRepo{pool: pool, logger: logger}
}

func (r *ImageRepo) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	const op = "postgres.Image.Upload"

	if key == "" || len(data) == 0 {
		return "", fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	const query = `
		INSERT INTO images (key, data, content_type, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET data = $2, content_type = $3
	`

	_, err := r.pool.Exec(ctx, query, key, data, contentType, time.Now().UTC())
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return "", e.WrapError(ctx, op, err)
	}

	return "/api/v1/images/" + key, nil
}

func (r *ImageRepo) Get(ctx context.Context, key string) ([]byte, string, error) {
	const op = "postgres.Image.Get"

	var (
		data        []byte
		contentType string
	)
	err := r.pool.QueryRow(ctx, `SELECT data, content_type FROM images WHERE key = $1`, key).Scan(&data, &contentType)
	if err != nil {
		return nil, "", e.WrapError(ctx, op, err)
	}
	return data, contentType, nil
}

func (r *ImageRepo) Delete(ctx context.Context, key string) error {
	const op = "postgres.Image.Delete"

	tag, err := r.pool.Exec(ctx, `DELETE FROM images WHERE key = $1`, key)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}
