package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
	"github.com/sameezy667/ResQ-sub000/pkg/e"

	"github.com/jackc/pgx/v5/pgxpool"
)

type IncidentRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewIncidentRepo(pool *pgxpool.Pool, logger *slog.Logger) *IncidentRepo {
	return &IncidentRepo{pool: pool, logger: logger}
}

// ListRows returns raw rows ordered by creation time, newest first.
// Coordinates stay as plain lat/lng columns; validation is the
// client-side mapper's job.
func (r *IncidentRepo) ListRows(ctx context.Context) ([]domain.Row, error) {
	const op = "postgres.Incident.ListRows"

	const query = `
		SELECT id, category, status, severity, description,
		       lat, lng, address, reporter_name, reporter_user_id,
		       created_at, verified, verify_count, assigned_unit_ids, image_key
		FROM incidents
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var out []domain.Row
	for rows.Next() {
		var (
			id, category, status, severity, description, reporterName string
			lat, lng                                                  float64
			address, reporterUserID, imageKey                         *string
			createdAt                                                 time.Time
			verified                                                  bool
			verifyCount                                               int
			assignedUnitIDs                                           []string
		)
		if err := rows.Scan(
			&id, &category, &status, &severity, &description,
			&lat, &lng, &address, &reporterName, &reporterUserID,
			&createdAt, &verified, &verifyCount, &assignedUnitIDs, &imageKey,
		); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}

		row := domain.Row{
			"id":            id,
			"category":      category,
			"status":        status,
			"severity":      severity,
			"description":   description,
			"lat":           lat,
			"lng":           lng,
			"reporter_name": reporterName,
			"created_at":    createdAt,
			"verified":      verified,
			"verify_count":  verifyCount,
		}
		if address != nil {
			row["address"] = *address
		}
		if reporterUserID != nil {
			row["reporter_user_id"] = *reporterUserID
		}
		if imageKey != nil {
			row["image_key"] = *imageKey
		}
		if assignedUnitIDs != nil {
			row["assigned_unit_ids"] = assignedUnitIDs
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return out, nil
}

// Insert stores a new report and allocates its INC-YYYYMMDD-NNNN
// identifier from the backend sequence. IDs are never client-generated.
func (r *IncidentRepo) Insert(ctx context.Context, inc *domain.Incident) (string, error) {
	const op = "postgres.Incident.Insert"

	if inc == nil {
		return "", fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if !inc.Location.InRange() {
		return "", fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}
	if inc.CreatedAt.IsZero() {
		inc.CreatedAt = time.Now().UTC()
	}
	if inc.Status == "" {
		inc.Status = domain.IncidentPending
	}

	var seq int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('incident_seq')`).Scan(&seq); err != nil {
		r.logger.Error("sequence failed", slog.String("op", op), slog.Any("error", err))
		return "", e.WrapError(ctx, op, err)
	}
	id := fmt.Sprintf("INC-%s-%04d", inc.CreatedAt.UTC().Format("20060102"), seq%10000)

	const query = `
		INSERT INTO incidents (
			id, category, status, severity, description,
			lat, lng, address, reporter_name, reporter_user_id,
			created_at, verified, verify_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, NULLIF($10, ''), $11, false, 0)
	`

	_, err := r.pool.Exec(ctx, query,
		id,
		string(inc.Category),
		string(inc.Status),
		string(inc.Severity),
		inc.Description,
		inc.Location.Lat,
		inc.Location.Lng,
		inc.Address,
		inc.ReporterName,
		inc.ReporterUserID,
		inc.CreatedAt,
	)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return "", e.WrapError(ctx, op, err)
	}

	return id, nil
}

// IncrementVerification bumps the dedup counter and flips the verified
// flag once the threshold is reached.
func (r *IncidentRepo) IncrementVerification(ctx context.Context, id string, threshold int) (bool, int, error) {
	const op = "postgres.Incident.IncrementVerification"

	const query = `
		UPDATE incidents
		SET verify_count = verify_count + 1,
		    verified = verify_count + 1 >= $2
		WHERE id = $1
		RETURNING verified, verify_count
	`

	var (
		verified bool
		count    int
	)
	if err := r.pool.QueryRow(ctx, query, id, threshold).Scan(&verified, &count); err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return false, 0, e.WrapError(ctx, op, err)
	}
	return verified, count, nil
}

func (r *IncidentRepo) UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus) error {
	const op = "postgres.Incident.UpdateStatus"

	tag, err := r.pool.Exec(ctx, `UPDATE incidents SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

func (r *IncidentRepo) SetImageKey(ctx context.Context, id, key string) error {
	const op = "postgres.Incident.SetImageKey"

	tag, err := r.pool.Exec(ctx, `UPDATE incidents SET image_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

// Delete is the explicit admin hard-delete.
func (r *IncidentRepo) Delete(ctx context.Context, id string) error {
	const op = "postgres.Incident.Delete"

	tag, err := r.pool.Exec(ctx, `DELETE FROM incidents WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}
