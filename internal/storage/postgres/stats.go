package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sameezy667/ResQ-sub000/pkg/e"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewStatsRepo(pool *pgxpool.Pool, logger *slog.Logger) *StatsRepo {
	return &StatsRepo{pool: pool, logger: logger}
}

// CountIncidents aggregates incidents created within the last N minutes,
// grouped by status and by category.
func (r *StatsRepo) CountIncidents(ctx context.Context, minutes int) (map[string]int64, map[string]int64, error) {
	const op = "postgres.Stats.CountIncidents"

	byStatus, err := r.countGrouped(ctx, op,
		`SELECT status, COUNT(*) FROM incidents
		 WHERE created_at >= NOW() - make_interval(mins => $1)
		 GROUP BY status`, minutes)
	if err != nil {
		return nil, nil, err
	}

	byCategory, err := r.countGrouped(ctx, op,
		`SELECT category, COUNT(*) FROM incidents
		 WHERE created_at >= NOW() - make_interval(mins => $1)
		 GROUP BY category`, minutes)
	if err != nil {
		return nil, nil, err
	}

	return byStatus, byCategory, nil
}

func (r *StatsRepo) CountUnits(ctx context.Context) (map[string]int64, error) {
	const op = "postgres.Stats.CountUnits"
	return r.countGrouped(ctx, op,
		`SELECT COALESCE(status, CASE WHEN is_available THEN 'available' ELSE 'busy' END), COUNT(*)
		 FROM units GROUP BY 1`)
}

func (r *StatsRepo) countGrouped(ctx context.Context, op, query string, args ...any) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			key   string
			count int64
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return out, nil
}
