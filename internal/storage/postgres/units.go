package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
	"github.com/sameezy667/ResQ-sub000/internal/geo"
	"github.com/sameezy667/ResQ-sub000/pkg/e"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UnitRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewUnitRepo(pool *pgxpool.Pool, logger *slog.Logger) *UnitRepo {
	return &UnitRepo{pool: pool, logger: logger}
}

// ListRows returns unit rows with the location column passed through as
// its stored GeoJSON object. Older rows may also carry the legacy
// is_available flag; both go to the mapper untouched.
func (r *UnitRepo) ListRows(ctx context.Context) ([]domain.Row, error) {
	const op = "postgres.Unit.ListRows"

	const query = `
		SELECT id, name, type, status, is_available, location
		FROM units
		ORDER BY name ASC
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
			id, name, unitType string
			status             *string
			isAvailable        *bool
			location           map[string]any
		)
		if err := rows.Scan(&id, &name, &unitType, &status, &isAvailable, &location); err != nil {
			r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}

		row := domain.Row{
			"id":       id,
			"name":     name,
			"type":     unitType,
			"location": location,
		}
		if status != nil {
			row["status"] = *status
		}
		if isAvailable != nil {
			row["is_available"] = *isAvailable
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return out, nil
}

// Nearby ranks available units by haversine distance from the given
// point, optionally filtered by type, within radiusKM.
func (r *UnitRepo) Nearby(ctx context.Context, lat, lng float64, unitType string, radiusKM float64) ([]domain.NearbyUnit, error) {
	const op = "postgres.Unit.Nearby"

	origin := domain.LatLng{Lat: lat, Lng: lng}
	if !origin.InRange() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}
	if radiusKM <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	rows, err := r.ListRows(ctx)
	if err != nil {
		return nil, err
	}

	var ranked []domain.NearbyUnit
	for _, row := range rows {
		unit, ok := unitFromRow(row)
		if !ok {
			continue
		}
		if unit.Status != domain.UnitAvailable {
			continue
		}
		if unitType != "" && string(unit.Type) != unitType {
			continue
		}
		dist := geo.Haversine(origin, unit.Location)
		if dist > radiusKM {
			continue
		}
		ranked = append(ranked, domain.NearbyUnit{Unit: unit, DistanceKM: dist})
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].DistanceKM < ranked[j].DistanceKM })
	return ranked, nil
}

func (r *UnitRepo) UpdateStatus(ctx context.Context, id string, status domain.UnitStatus) error {
	const op = "postgres.Unit.UpdateStatus"

	tag, err := r.pool.Exec(ctx, `UPDATE units SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

// unitFromRow is the minimal row decoding needed inside the repo itself
// (nearby search and dispatch-create read unit coordinates).
func unitFromRow(row domain.Row) (domain.EmergencyUnit, bool) {
	loc, ok := row["location"].(map[string]any)
	if !ok {
		return domain.EmergencyUnit{}, false
	}
	coords, ok := loc["coordinates"].([]any)
	if !ok || len(coords) < 2 {
		return domain.EmergencyUnit{}, false
	}
	lng, ok1 := coords[0].(float64)
	lat, ok2 := coords[1].(float64)
	if !ok1 || !ok2 {
		return domain.EmergencyUnit{}, false
	}

	id, _ := row["id"].(string)
	name, _ := row["name"].(string)
	unitType, _ := row["type"].(string)
	status, _ := row["status"].(string)
	if status == "" {
		if avail, found := row["is_available"].(bool); found && avail {
			status = string(domain.UnitAvailable)
		} else if found {
			status = string(domain.UnitBusy)
		} else {
			status = string(domain.UnitAvailable)
		}
	}

	return domain.EmergencyUnit{
		ID:       id,
		Name:     name,
		Type:     domain.UnitType(unitType),
		Status:   domain.UnitStatus(status),
		Location: domain.LatLng{Lat: lat, Lng: lng},
	}, true
}
