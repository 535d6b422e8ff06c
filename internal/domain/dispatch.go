package domain

// DispatchRoute ties one unit to one incident with an interpolated path.
// Preview routes carry a synthesized ID and never reach the backing store;
// confirmed routes are created transactionally by dispatch commit.
type DispatchRoute struct {
	ID         string   `json:"id"`
	IncidentID string   `json:"incident_id"`
	UnitID     string   `json:"unit_id"`
	Waypoints  []LatLng `json:"waypoints"`
	ETAMinutes int      `json:"eta_minutes,omitempty"`
	Preview    bool     `json:"preview"`
}

// RouteGeometry is the raw payload of the route-preview RPC: an
// interpolated path plus the straight-line distance it was derived from.
type RouteGeometry struct {
	UnitID     string   `json:"unit_id"`
	Waypoints  []LatLng `json:"waypoints"`
	DistanceKM float64  `json:"distance_km"`
}

// DispatchPhase is the workflow engine's transient state, held in the store.
type DispatchPhase string

const (
	PhaseIdle       DispatchPhase = "idle"
	PhasePreviewing DispatchPhase = "previewing"
	PhasePreviewed  DispatchPhase = "previewed"
	PhaseCommitting DispatchPhase = "committing"
)
