package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
	"github.com/sameezy667/ResQ-sub000/internal/mapper"
	"github.com/sameezy667/ResQ-sub000/internal/store"
	"github.com/sameezy667/ResQ-sub000/pkg/e"

	"github.com/google/uuid"
)

// DefaultDispatcher is the acting identity when no user session exists.
// Anonymous dispatch must never fail on identity alone.
const DefaultDispatcher = "dispatcher"

// DispatchService drives the preview/commit workflow:
//
//	IDLE -> PREVIEWING -> PREVIEWED -> COMMITTING -> IDLE
//
// Preview is advisory and fails soft (empty result); commit is a
// user-facing write and fails loud. Any failure lands back in IDLE with
// no partial state retained.
type DispatchService struct {
	store          *store.Store
	mapper         *mapper.Mapper
	dispatches     DispatchRepository
	units          UnitRepository
	publisher      Publisher
	notify         NotifyQueue
	logger         *slog.Logger
	nearbyRadiusKM float64
}

func NewDispatchService(
	st *store.Store,
	m *mapper.Mapper,
	dispatches DispatchRepository,
	units UnitRepository,
	publisher Publisher,
	notify NotifyQueue,
	logger *slog.Logger,
	nearbyRadiusKM float64,
) *DispatchService {
	return &DispatchService{
		store:          st,
		mapper:         m,
		dispatches:     dispatches,
		units:          units,
		publisher:      publisher,
		notify:         notify,
		logger:         logger,
		nearbyRadiusKM: nearbyRadiusKM,
	}
}

// Preview asks the routing RPC for candidate geometry and stages one
// preview route per unit in the store. RPC failure is logged and yields
// an empty list; preview is advisory information only.
func (s *DispatchService) Preview(ctx context.Context, incidentID string, unitIDs []string) []domain.DispatchRoute {
	if incidentID == "" || len(unitIDs) == 0 {
		return []domain.DispatchRoute{}
	}

	s.store.SelectIncident(incidentID)
	s.store.SetPhase(domain.PhasePreviewing)

	geometries, err := s.dispatches.PreviewRoutes(ctx, incidentID, unitIDs)
	if err != nil {
		s.logger.Error("route preview failed",
			slog.String("incident_id", incidentID),
			slog.Any("error", err),
		)
		s.store.ClearPreviewRoutes()
		s.store.SetPhase(domain.PhaseIdle)
		return []domain.DispatchRoute{}
	}

	routes := make([]domain.DispatchRoute, 0, len(geometries))
	for _, g := range geometries {
		routes = append(routes, domain.DispatchRoute{
			ID:         "preview-" + uuid.NewString(),
			IncidentID: incidentID,
			UnitID:     g.UnitID,
			Waypoints:  g.Waypoints,
			ETAMinutes: etaMinutes(g.DistanceKM),
			Preview:    true,
		})
	}

	s.store.SetPreviewRoutes(routes)
	s.store.SetPhase(domain.PhasePreviewed)

	s.logger.Info("dispatch preview staged",
		slog.String("incident_id", incidentID),
		slog.Int("routes", len(routes)),
	)
	return routes
}

// Cancel discards the staged preview and returns the workflow to idle.
func (s *DispatchService) Cancel() {
	s.store.ClearPreviewRoutes()
	s.store.SetPhase(domain.PhaseIdle)
}

// Commit runs the transactional create-dispatch RPC, then fetches the
// persisted rows for server-computed geometry/ETA and reflects the
// outcome into the store: confirmed routes appended, incident flipped to
// responding, units to dispatched. A later realtime echo of these
// updates is expected and idempotent. On RPC failure nothing changes
// locally and a typed error surfaces.
func (s *DispatchService) Commit(ctx context.Context, incidentID string, unitIDs []string, dispatcher string) ([]domain.DispatchRoute, error) {
	if incidentID == "" || len(unitIDs) == 0 {
		return nil, e.Wrap("Failed to commit dispatch", e.ErrInvalidInput)
	}
	if dispatcher == "" {
		dispatcher = DefaultDispatcher
	}

	s.store.SetPhase(domain.PhaseCommitting)

	ids, err := s.dispatches.CreateDispatch(ctx, incidentID, unitIDs, dispatcher)
	if err != nil {
		s.logger.Error("dispatch commit failed",
			slog.String("incident_id", incidentID),
			slog.Any("unit_ids", unitIDs),
			slog.Any("error", err),
		)
		s.store.ClearPreviewRoutes()
		s.store.SetPhase(domain.PhaseIdle)
		return nil, e.Wrap("Failed to commit dispatch", err)
	}

	rows, err := s.dispatches.GetByIDs(ctx, ids)
	if err != nil {
		// the dispatch is committed; losing the read-back only costs
		// server-computed geometry until the realtime echo arrives
		s.logger.Error("dispatch read-back failed",
			slog.String("incident_id", incidentID),
			slog.Any("error", err),
		)
		rows = nil
	}

	routes := s.mapper.Routes(rows)
	for _, r := range routes {
		s.store.AppendRoute(r)
	}

	s.applyCommitEffects(ctx, incidentID, unitIDs, rows)
	s.store.ClearPreviewRoutes()
	s.store.SetPhase(domain.PhaseIdle)

	s.enqueueNotification(ctx, domain.NotificationPayload{
		ID:         uuid.NewString(),
		Event:      "dispatch.committed",
		IncidentID: incidentID,
		UnitIDs:    unitIDs,
		Dispatcher: dispatcher,
		OccurredAt: time.Now().UTC(),
	})

	s.logger.Info("dispatch committed",
		slog.String("incident_id", incidentID),
		slog.Int("units", len(unitIDs)),
		slog.String("dispatcher", dispatcher),
	)
	return routes, nil
}

// applyCommitEffects mirrors the backend transaction into local state and
// fans the changes out to the realtime feed.
func (s *DispatchService) applyCommitEffects(ctx context.Context, incidentID string, unitIDs []string, dispatchRows []domain.Row) {
	responding := domain.IncidentResponding
	assigned := s.mergeAssignedUnits(incidentID, unitIDs)
	s.store.PatchIncident(incidentID, domain.IncidentPatch{
		Status:          &responding,
		AssignedUnitIDs: &assigned,
	})

	dispatched := domain.UnitDispatched
	for _, unitID := range unitIDs {
		s.store.PatchUnit(unitID, domain.UnitPatch{Status: &dispatched})
	}

	if s.publisher == nil {
		return
	}
	if inc, ok := s.store.Incident(incidentID); ok {
		s.publish(ctx, domain.ChangeEvent{
			Type:  domain.EventUpdate,
			Table: domain.TableIncidents,
			New:   incidentRow(inc),
			Old:   domain.Row{"id": incidentID},
		})
	}
	for _, unitID := range unitIDs {
		if u, ok := s.store.Unit(unitID); ok {
			s.publish(ctx, domain.ChangeEvent{
				Type:  domain.EventUpdate,
				Table: domain.TableUnits,
				New:   unitRow(u),
				Old:   domain.Row{"id": unitID},
			})
		}
	}
	for _, row := range dispatchRows {
		s.publish(ctx, domain.ChangeEvent{
			Type:  domain.EventInsert,
			Table: domain.TableDispatches,
			New:   row,
		})
	}
}

func (s *DispatchService) mergeAssignedUnits(incidentID string, unitIDs []string) []string {
	seen := make(map[string]bool, len(unitIDs))
	var merged []string
	if inc, ok := s.store.Incident(incidentID); ok {
		for _, id := range inc.AssignedUnitIDs {
			if !seen[id] {
				seen[id] = true
				merged = append(merged, id)
			}
		}
	}
	for _, id := range unitIDs {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	return merged
}

// Nearby proxies the ranked nearby-unit search RPC. A request without
// a radius searches within the configured default. Read path: fails
// soft with an empty list.
func (s *DispatchService) Nearby(ctx context.Context, req domain.NearbyUnitsRequest) []domain.NearbyUnit {
	radius := req.RadiusKM
	if radius <= 0 {
		radius = s.nearbyRadiusKM
	}

	units, err := s.units.Nearby(ctx, req.Lat, req.Lng, req.UnitType, radius)
	if err != nil {
		s.logger.Error("nearby unit search failed", slog.Any("error", err))
		return []domain.NearbyUnit{}
	}
	return units
}

// UpdateUnitStatus handles independent unit-status changes (crew going
// busy/offline/available outside a dispatch). Write path: fails loud.
func (s *DispatchService) UpdateUnitStatus(ctx context.Context, unitID string, status domain.UnitStatus) error {
	if err := s.units.UpdateStatus(ctx, unitID, status); err != nil {
		s.logger.Error("unit status update failed",
			slog.String("unit_id", unitID),
			slog.Any("error", err),
		)
		return e.Wrap("Failed to update unit status", err)
	}

	s.store.PatchUnit(unitID, domain.UnitPatch{Status: &status})
	if s.publisher != nil {
		if u, ok := s.store.Unit(unitID); ok {
			s.publish(ctx, domain.ChangeEvent{
				Type:  domain.EventUpdate,
				Table: domain.TableUnits,
				New:   unitRow(u),
				Old:   domain.Row{"id": unitID},
			})
		}
	}
	return nil
}

// DeleteRoute removes a confirmed dispatch (cancelled or completed).
func (s *DispatchService) DeleteRoute(ctx context.Context, routeID string) error {
	if err := s.dispatches.Delete(ctx, routeID); err != nil {
		s.logger.Error("dispatch delete failed",
			slog.String("route_id", routeID),
			slog.Any("error", err),
		)
		return e.Wrap("Failed to delete dispatch", err)
	}

	s.store.RemoveRoute(routeID)
	if s.publisher != nil {
		s.publish(ctx, domain.ChangeEvent{
			Type:  domain.EventDelete,
			Table: domain.TableDispatches,
			Old:   domain.Row{"id": routeID},
		})
	}
	return nil
}

func (s *DispatchService) publish(ctx context.Context, ev domain.ChangeEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("change event publish failed",
			slog.String("table", ev.Table),
			slog.String("type", string(ev.Type)),
			slog.Any("error", err),
		)
	}
}

func (s *DispatchService) enqueueNotification(ctx context.Context, p domain.NotificationPayload) {
	if s.notify == nil {
		return
	}
	if err := s.notify.Enqueue(ctx, p); err != nil {
		s.logger.Error("enqueue notification failed", slog.Any("error", err))
	}
}

// etaMinutes approximates travel time as ceil(distance_km * 2) minutes,
// a deterministic placeholder pending real routing-time integration.
func etaMinutes(distanceKM float64) int {
	return int(math.Ceil(distanceKM * 2))
}
