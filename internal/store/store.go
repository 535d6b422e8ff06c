package store

import (
	"log/slog"
	"sync"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
)

// Store is the single source of truth for the dashboard: entity
// collections, confirmed and preview routes, filter/selection state and
// the dispatch workflow phase. Every mutation is one lock-guarded
// transition, so callers never observe intermediate state. No component
// keeps a private mutable copy of an entity; accessors hand out copies.
type Store struct {
	mu     sync.RWMutex
	logger *slog.Logger

	incidents []domain.Incident
	units     []domain.EmergencyUnit
	routes    []domain.DispatchRoute
	previews  []domain.DispatchRoute

	categoryFilter     domain.IncidentCategory
	selectedIncidentID string
	phase              domain.DispatchPhase

	loading Loading
}

type Loading struct {
	Incidents bool
	Units     bool
	Routes    bool
}

func New(logger *slog.Logger) *Store {
	return &Store{
		logger:         logger,
		categoryFilter: domain.CategoryAll,
		phase:          domain.PhaseIdle,
	}
}

// --- bulk replace ---

func (s *Store) SetIncidents(incidents []domain.Incident) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incidents = append([]domain.Incident(nil), incidents...)
}

func (s *Store) SetUnits(units []domain.EmergencyUnit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = append([]domain.EmergencyUnit(nil), units...)
}

func (s *Store) SetRoutes(routes []domain.DispatchRoute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append([]domain.DispatchRoute(nil), routes...)
}

// --- incidents ---

// UpsertIncident prepends new incidents so the freshest report leads the
// collection; an existing ID is replaced in place.
func (s *Store) UpsertIncident(inc domain.Incident) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.incidents {
		if s.incidents[i].ID == inc.ID {
			s.incidents[i] = inc
			return
		}
	}
	s.incidents = append([]domain.Incident{inc}, s.incidents...)
}

// PatchIncident merges non-nil patch fields into the incident; a missing
// ID is a no-op and reports false.
func (s *Store) PatchIncident(id string, patch domain.IncidentPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.incidents {
		if s.incidents[i].ID != id {
			continue
		}
		if patch.Status != nil {
			s.incidents[i].Status = *patch.Status
		}
		if patch.Severity != nil {
			s.incidents[i].Severity = *patch.Severity
		}
		if patch.Verified != nil {
			s.incidents[i].Verified = *patch.Verified
		}
		if patch.VerifyCount != nil {
			s.incidents[i].VerifyCount = *patch.VerifyCount
		}
		if patch.AssignedUnitIDs != nil {
			s.incidents[i].AssignedUnitIDs = append([]string(nil), (*patch.AssignedUnitIDs)...)
		}
		return true
	}
	return false
}

func (s *Store) RemoveIncident(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.incidents {
		if s.incidents[i].ID == id {
			s.incidents = append(s.incidents[:i], s.incidents[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Incident(id string) (domain.Incident, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.incidents {
		if s.incidents[i].ID == id {
			return s.incidents[i], true
		}
	}
	return domain.Incident{}, false
}

func (s *Store) Incidents() []domain.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Incident(nil), s.incidents...)
}

// FilteredIncidents is a derived view; it never mutates the stored
// collection. The crime filter also matches the legacy police tag.
func (s *Store) FilteredIncidents() []domain.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.categoryFilter == domain.CategoryAll || s.categoryFilter == "" {
		return append([]domain.Incident(nil), s.incidents...)
	}
	out := make([]domain.Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		if s.categoryFilter.Matches(string(inc.Category)) {
			out = append(out, inc)
		}
	}
	return out
}

// --- units ---

func (s *Store) UpsertUnit(u domain.EmergencyUnit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.units {
		if s.units[i].ID == u.ID {
			s.units[i] = u
			return
		}
	}
	s.units = append(s.units, u)
}

func (s *Store) PatchUnit(id string, patch domain.UnitPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.units {
		if s.units[i].ID != id {
			continue
		}
		if patch.Status != nil {
			s.units[i].Status = *patch.Status
		}
		if patch.Location != nil {
			s.units[i].Location = *patch.Location
		}
		return true
	}
	return false
}

func (s *Store) RemoveUnit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.units {
		if s.units[i].ID == id {
			s.units = append(s.units[:i], s.units[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Unit(id string) (domain.EmergencyUnit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.units {
		if s.units[i].ID == id {
			return s.units[i], true
		}
	}
	return domain.EmergencyUnit{}, false
}

func (s *Store) Units() []domain.EmergencyUnit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.EmergencyUnit(nil), s.units...)
}

// --- routes ---

func (s *Store) AppendRoute(r domain.DispatchRoute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.routes {
		if s.routes[i].ID == r.ID {
			s.routes[i] = r
			return
		}
	}
	s.routes = append(s.routes, r)
}

func (s *Store) RemoveRoute(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.routes {
		if s.routes[i].ID == id {
			s.routes = append(s.routes[:i], s.routes[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Routes() []domain.DispatchRoute {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DispatchRoute(nil), s.routes...)
}

// SetPreviewRoutes replaces the ephemeral preview set; previews and
// confirmed routes live in separate collections so one never disturbs
// the other's removal.
func (s *Store) SetPreviewRoutes(routes []domain.DispatchRoute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previews = append([]domain.DispatchRoute(nil), routes...)
}

func (s *Store) ClearPreviewRoutes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previews = nil
}

func (s *Store) PreviewRoutes() []domain.DispatchRoute {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DispatchRoute(nil), s.previews...)
}

// --- UI state ---

func (s *Store) SetCategoryFilter(c domain.IncidentCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoryFilter = c
}

func (s *Store) CategoryFilter() domain.IncidentCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categoryFilter
}

// SelectIncident switches the active incident and discards previews
// computed for the previous selection.
func (s *Store) SelectIncident(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedIncidentID != id {
		s.previews = nil
		s.phase = domain.PhaseIdle
	}
	s.selectedIncidentID = id
}

func (s *Store) SelectedIncidentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedIncidentID
}

func (s *Store) SetPhase(p domain.DispatchPhase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
}

func (s *Store) Phase() domain.DispatchPhase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Store) SetLoading(l Loading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = l
}

func (s *Store) Loading() Loading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Snapshot is the read model served to dashboard clients.
type Snapshot struct {
	Incidents      []domain.Incident      `json:"incidents"`
	Units          []domain.EmergencyUnit `json:"units"`
	Routes         []domain.DispatchRoute `json:"routes"`
	PreviewRoutes  []domain.DispatchRoute `json:"preview_routes"`
	CategoryFilter domain.IncidentCategory `json:"category_filter"`
	SelectedID     string                 `json:"selected_incident_id,omitempty"`
	Phase          domain.DispatchPhase   `json:"dispatch_phase"`
}

func (s *Store) Snapshot() Snapshot {
	filtered := s.FilteredIncidents()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Incidents:      filtered,
		Units:          append([]domain.EmergencyUnit(nil), s.units...),
		Routes:         append([]domain.DispatchRoute(nil), s.routes...),
		PreviewRoutes:  append([]domain.DispatchRoute(nil), s.previews...),
		CategoryFilter: s.categoryFilter,
		SelectedID:     s.selectedIncidentID,
		Phase:          s.phase,
	}
}
