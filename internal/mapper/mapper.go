package mapper

import (
	"encoding/json"
	"log/slog"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
	"github.com/sameezy667/ResQ-sub000/internal/geo"
)

// Mapper turns raw backend rows into domain values. Rows with invalid
// geodata are dropped with a warning, never propagated as errors; the
// caller filters nils out of the resulting collection.
type Mapper struct {
	geo    *geo.Normalizer
	logger *slog.Logger
}

func New(logger *slog.Logger) *Mapper {
	return &Mapper{
		geo:    geo.NewNormalizer(logger),
		logger: logger,
	}
}

func (m *Mapper) Incident(row domain.Row) *domain.Incident {
	loc, ok := m.geo.Extract(row)
	if !ok || !loc.InRange() {
		m.logger.Warn("dropping incident with invalid coordinates",
			slog.String("id", stringField(row, "id")),
		)
		return nil
	}

	inc := &domain.Incident{
		ID:              stringField(row, "id"),
		Category:        domain.NormalizeCategory(stringField(row, "category")),
		Status:          domain.IncidentStatus(stringField(row, "status")),
		Severity:        domain.Severity(stringField(row, "severity")),
		Description:     stringField(row, "description"),
		Location:        loc,
		Address:         stringField(row, "address"),
		ReporterName:    stringField(row, "reporter_name"),
		ReporterUserID:  stringField(row, "reporter_user_id"),
		CreatedAt:       timeField(row, "created_at"),
		Verified:        boolField(row, "verified"),
		VerifyCount:     intField(row, "verify_count"),
		AssignedUnitIDs: stringSliceField(row, "assigned_unit_ids"),
		ImageKey:        stringField(row, "image_key"),
	}
	if inc.Status == "" {
		inc.Status = domain.IncidentPending
	}
	if inc.Severity == "" {
		inc.Severity = domain.SeverityMedium
	}
	return inc
}

func (m *Mapper) Unit(row domain.Row) *domain.EmergencyUnit {
	loc, ok := m.geo.Extract(row)
	if !ok || !loc.InRange() {
		m.logger.Warn("dropping unit with invalid coordinates",
			slog.String("id", stringField(row, "id")),
		)
		return nil
	}

	return &domain.EmergencyUnit{
		ID:       stringField(row, "id"),
		Name:     stringField(row, "name"),
		Type:     domain.UnitType(stringField(row, "type")),
		Status:   unitStatus(row),
		Location: loc,
	}
}

// unitStatus reconciles the enumerated status column with the legacy
// is_available boolean still present on older rows. The enum wins.
func unitStatus(row domain.Row) domain.UnitStatus {
	if s := stringField(row, "status"); s != "" {
		return domain.UnitStatus(s)
	}
	if avail, ok := row["is_available"].(bool); ok {
		if avail {
			return domain.UnitAvailable
		}
		return domain.UnitBusy
	}
	return domain.UnitAvailable
}

// Route maps a persisted dispatch row into a confirmed route. Waypoints
// come pre-validated from the RPC layer, so mapping cannot fail on
// coordinates; a missing or malformed route_geojson yields an empty
// waypoint list instead of an error.
func (m *Mapper) Route(row domain.Row) domain.DispatchRoute {
	return domain.DispatchRoute{
		ID:         stringField(row, "id"),
		IncidentID: stringField(row, "incident_id"),
		UnitID:     stringField(row, "unit_id"),
		Waypoints:  waypoints(row["route_geojson"]),
		ETAMinutes: intField(row, "eta_minutes"),
	}
}

// waypoints decodes a GeoJSON LineString payload, swapping the [lng, lat]
// pairs into the internal [lat, lng] order.
func waypoints(v any) []domain.LatLng {
	var obj map[string]any
	switch g := v.(type) {
	case map[string]any:
		obj = g
	case string:
		if err := json.Unmarshal([]byte(g), &obj); err != nil {
			return []domain.LatLng{}
		}
	case []byte:
		if err := json.Unmarshal(g, &obj); err != nil {
			return []domain.LatLng{}
		}
	default:
		return []domain.LatLng{}
	}

	coords, ok := obj["coordinates"].([]any)
	if !ok {
		return []domain.LatLng{}
	}
	points := make([]domain.LatLng, 0, len(coords))
	for _, c := range coords {
		pair, ok := c.([]any)
		if !ok || len(pair) < 2 {
			return []domain.LatLng{}
		}
		lng, ok1 := numField(pair[0])
		lat, ok2 := numField(pair[1])
		if !ok1 || !ok2 {
			return []domain.LatLng{}
		}
		points = append(points, domain.LatLng{Lat: lat, Lng: lng})
	}
	return points
}

func (m *Mapper) Incidents(rows []domain.Row) []domain.Incident {
	out := make([]domain.Incident, 0, len(rows))
	for _, row := range rows {
		if inc := m.Incident(row); inc != nil {
			out = append(out, *inc)
		}
	}
	return out
}

func (m *Mapper) Units(rows []domain.Row) []domain.EmergencyUnit {
	out := make([]domain.EmergencyUnit, 0, len(rows))
	for _, row := range rows {
		if u := m.Unit(row); u != nil {
			out = append(out, *u)
		}
	}
	return out
}

func (m *Mapper) Routes(rows []domain.Row) []domain.DispatchRoute {
	out := make([]domain.DispatchRoute, 0, len(rows))
	for _, row := range rows {
		out = append(out, m.Route(row))
	}
	return out
}
