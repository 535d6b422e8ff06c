package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
	"github.com/sameezy667/ResQ-sub000/internal/geo"
	"github.com/sameezy667/ResQ-sub000/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DispatchRepo struct {
	pool      *pgxpool.Pool
	logger    *slog.Logger
	waypoints int
}

func NewDispatchRepo(pool *pgxpool.Pool, logger *slog.Logger, waypoints int) *DispatchRepo {
	if waypoints < 2 {
		waypoints = 11
	}
	return &DispatchRepo{pool: pool, logger: logger, waypoints: waypoints}
}

func (r *DispatchRepo) ListRows(ctx context.Context) ([]domain.Row, error) {
	const op = "postgres.Dispatch.ListRows"

	const query = `
		SELECT id, incident_id, unit_id, route_geojson, eta_minutes, dispatcher, created_at
		FROM dispatches
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	out, err := scanDispatchRows(rows)
	if err != nil {
		r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return out, nil
}

// PreviewRoutes is the non-committing half of the workflow: it computes
// interpolated geometry for each candidate unit without writing anything.
func (r *DispatchRepo) PreviewRoutes(ctx context.Context, incidentID string, unitIDs []string) ([]domain.RouteGeometry, error) {
	const op = "postgres.Dispatch.PreviewRoutes"

	if incidentID == "" || len(unitIDs) == 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	var incLat, incLng float64
	err := r.pool.QueryRow(ctx, `SELECT lat, lng FROM incidents WHERE id = $1`, incidentID).Scan(&incLat, &incLng)
	if err != nil {
		r.logger.Error("incident lookup failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	target := domain.LatLng{Lat: incLat, Lng: incLng}

	rows, err := r.pool.Query(ctx, `SELECT id, location FROM units WHERE id = ANY($1)`, unitIDs)
	if err != nil {
		r.logger.Error("unit lookup failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	var geometries []domain.RouteGeometry
	for rows.Next() {
		var (
			id       string
			location map[string]any
		)
		if err := rows.Scan(&id, &location); err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		from, ok := geoJSONPoint(location)
		if !ok {
			r.logger.Warn("unit has malformed location, skipping preview",
				slog.String("op", op), slog.String("unit_id", id))
			continue
		}
		geometries = append(geometries, domain.RouteGeometry{
			UnitID:     id,
			Waypoints:  geo.Interpolate(from, target, r.waypoints),
			DistanceKM: geo.Haversine(from, target),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	return geometries, nil
}

// CreateDispatch is the transactional RPC behind commit. In one
// transaction it creates one dispatch row per unit, flips each unit to
// dispatched and the incident to responding. Any failure rolls the whole
// set back.
func (r *DispatchRepo) CreateDispatch(ctx context.Context, incidentID string, unitIDs []string, dispatcher string) ([]string, error) {
	const op = "postgres.Dispatch.CreateDispatch"

	if incidentID == "" || len(unitIDs) == 0 || dispatcher == "" {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		r.logger.Error("begin tx failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var incLat, incLng float64
	err = tx.QueryRow(ctx, `SELECT lat, lng FROM incidents WHERE id = $1 FOR UPDATE`, incidentID).Scan(&incLat, &incLng)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	target := domain.LatLng{Lat: incLat, Lng: incLng}

	now := time.Now().UTC()
	ids := make([]string, 0, len(unitIDs))

	for _, unitID := range unitIDs {
		var (
			status   string
			location map[string]any
		)
		err := tx.QueryRow(ctx, `SELECT status, location FROM units WHERE id = $1 FOR UPDATE`, unitID).Scan(&status, &location)
		if err != nil {
			return nil, e.WrapError(ctx, op, err)
		}
		if domain.UnitStatus(status) != domain.UnitAvailable {
			return nil, fmt.Errorf("%s: unit %s: %w", op, unitID, e.ErrUnitUnavailable)
		}
		from, ok := geoJSONPoint(location)
		if !ok {
			return nil, fmt.Errorf("%s: unit %s: %w", op, unitID, e.ErrInvalidCoordinates)
		}

		path := geo.Interpolate(from, target, r.waypoints)
		eta := int(math.Ceil(geo.Haversine(from, target) * 2))
		dispatchID := "DSP-" + uuid.NewString()

		_, err = tx.Exec(ctx, `
			INSERT INTO dispatches (id, incident_id, unit_id, route_geojson, eta_minutes, dispatcher, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, dispatchID, incidentID, unitID, lineString(path), eta, dispatcher, now)
		if err != nil {
			return nil, e.WrapError(ctx, op, err)
		}

		_, err = tx.Exec(ctx, `UPDATE units SET status = $2 WHERE id = $1`, unitID, string(domain.UnitDispatched))
		if err != nil {
			return nil, e.WrapError(ctx, op, err)
		}

		ids = append(ids, dispatchID)
	}

	_, err = tx.Exec(ctx, `
		UPDATE incidents
		SET status = $2,
		    assigned_unit_ids = ARRAY(
		        SELECT DISTINCT unnest(COALESCE(assigned_unit_ids, '{}') || $3::text[])
		    )
		WHERE id = $1
	`, incidentID, string(domain.IncidentResponding), unitIDs)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("commit failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return ids, nil
}

func (r *DispatchRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Row, error) {
	const op = "postgres.Dispatch.GetByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	const query = `
		SELECT id, incident_id, unit_id, route_geojson, eta_minutes, dispatcher, created_at
		FROM dispatches
		WHERE id = ANY($1)
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	out, err := scanDispatchRows(rows)
	if err != nil {
		r.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return out, nil
}

func (r *DispatchRepo) Delete(ctx context.Context, id string) error {
	const op = "postgres.Dispatch.Delete"

	tag, err := r.pool.Exec(ctx, `DELETE FROM dispatches WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

func scanDispatchRows(rows pgx.Rows) ([]domain.Row, error) {
	var out []domain.Row
	for rows.Next() {
		var (
			id, incidentID, unitID, dispatcher string
			routeGeoJSON                       map[string]any
			etaMinutes                         int
			createdAt                          time.Time
		)
		if err := rows.Scan(&id, &incidentID, &unitID, &routeGeoJSON, &etaMinutes, &dispatcher, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, domain.Row{
			"id":            id,
			"incident_id":   incidentID,
			"unit_id":       unitID,
			"route_geojson": routeGeoJSON,
			"eta_minutes":   etaMinutes,
			"dispatcher":    dispatcher,
			"created_at":    createdAt,
		})
	}
	return out, rows.Err()
}

// lineString encodes a path as GeoJSON, [lng, lat] per point.
func lineString(path []domain.LatLng) map[string]any {
	coords := make([]any, 0, len(path))
	for _, p := range path {
		coords = append(coords, []any{p.Lng, p.Lat})
	}
	return map[string]any{
		"type":        "LineString",
		"coordinates": coords,
	}
}

// geoJSONPoint reads a {coordinates: [lng, lat]} object.
func geoJSONPoint(loc map[string]any) (domain.LatLng, bool) {
	if loc == nil {
		return domain.LatLng{}, false
	}
	coords, ok := loc["coordinates"].([]any)
	if !ok || len(coords) < 2 {
		return domain.LatLng{}, false
	}
	lng, ok1 := coords[0].(float64)
	lat, ok2 := coords[1].(float64)
	if !ok1 || !ok2 {
		return domain.LatLng{}, false
	}
	return domain.LatLng{Lat: lat, Lng: lng}, true
}
