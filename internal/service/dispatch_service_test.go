package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
	"github.com/sameezy667/ResQ-sub000/internal/mapper"
	"github.com/sameezy667/ResQ-sub000/internal/service"
	"github.com/sameezy667/ResQ-sub000/internal/store"

	mock_service "github.com/sameezy667/ResQ-sub000/internal/service/mocks"
)

const testNearbyRadiusKM = 50.0

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedIncident(st *store.Store, id string) {
	st.SetIncidents([]domain.Incident{{
		ID:       id,
		Category: domain.CategoryFire,
		Status:   domain.IncidentPending,
		Severity: domain.SeverityHigh,
		Location: domain.LatLng{Lat: 55.75, Lng: 37.61},
	}})
}

func seedUnits(st *store.Store, ids ...string) {
	units := make([]domain.EmergencyUnit, 0, len(ids))
	for _, id := range ids {
		units = append(units, domain.EmergencyUnit{
			ID:       id,
			Name:     "Unit " + id,
			Type:     domain.UnitFireTruck,
			Status:   domain.UnitAvailable,
			Location: domain.LatLng{Lat: 55.70, Lng: 37.50},
		})
	}
	st.SetUnits(units)
}

func newDispatchService(
	st *store.Store,
	dispatches service.DispatchRepository,
	units service.UnitRepository,
	publisher service.Publisher,
	notify service.NotifyQueue,
) *service.DispatchService {
	log := discardLogger()
	return service.NewDispatchService(st, mapper.New(log), dispatches, units, publisher, notify, log, testNearbyRadiusKM)
}

// --- Preview ---

func TestDispatchService_Preview_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatches := mock_service.NewMockDispatchRepository(ctrl)
	dispatches.EXPECT().
		PreviewRoutes(gomock.Any(), "INC-1", []string{"unit-1", "unit-2"}).
		Return([]domain.RouteGeometry{
			{UnitID: "unit-1", Waypoints: []domain.LatLng{{Lat: 55.70, Lng: 37.50}, {Lat: 55.75, Lng: 37.61}}, DistanceKM: 2.4},
			{UnitID: "unit-2", Waypoints: []domain.LatLng{{Lat: 55.71, Lng: 37.52}, {Lat: 55.75, Lng: 37.61}}, DistanceKM: 3.0},
		}, nil).
		Times(1)

	st := store.New(discardLogger())
	seedIncident(st, "INC-1")
	svc := newDispatchService(st, dispatches, nil, nil, nil)

	routes := svc.Preview(context.Background(), "INC-1", []string{"unit-1", "unit-2"})
	if len(routes) != 2 {
		t.Fatalf("expected 2 preview routes, got %d", len(routes))
	}
	for _, r := range routes {
		if !r.Preview {
			t.Fatalf("expected preview flag on route %q", r.ID)
		}
		if !strings.HasPrefix(r.ID, "preview-") {
			t.Fatalf("unexpected preview route id %q", r.ID)
		}
	}
	// eta is ceil(distance_km * 2)
	if routes[0].ETAMinutes != 5 {
		t.Fatalf("expected eta=5 for 2.4km, got %d", routes[0].ETAMinutes)
	}
	if routes[1].ETAMinutes != 6 {
		t.Fatalf("expected eta=6 for 3.0km, got %d", routes[1].ETAMinutes)
	}

	if got := st.PreviewRoutes(); len(got) != 2 {
		t.Fatalf("expected 2 staged previews, got %d", len(got))
	}
	if st.Phase() != domain.PhasePreviewed {
		t.Fatalf("expected phase=%q got=%q", domain.PhasePreviewed, st.Phase())
	}
	if st.SelectedIncidentID() != "INC-1" {
		t.Fatalf("expected selected incident INC-1, got %q", st.SelectedIncidentID())
	}
}

func TestDispatchService_Preview_RPCError_FailsSoft(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatches := mock_service.NewMockDispatchRepository(ctrl)
	dispatches.EXPECT().
		PreviewRoutes(gomock.Any(), "INC-1", []string{"unit-1"}).
		Return(nil, errors.New("rpc down")).
		Times(1)

	st := store.New(discardLogger())
	seedIncident(st, "INC-1")
	svc := newDispatchService(st, dispatches, nil, nil, nil)

	routes := svc.Preview(context.Background(), "INC-1", []string{"unit-1"})
	if routes == nil || len(routes) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", routes)
	}
	if len(st.PreviewRoutes()) != 0 {
		t.Fatalf("expected no staged previews after failure")
	}
	if st.Phase() != domain.PhaseIdle {
		t.Fatalf("expected phase=%q got=%q", domain.PhaseIdle, st.Phase())
	}
}

func TestDispatchService_Preview_EmptySelection(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no RPC expectations: empty selections never leave the client
	dispatches := mock_service.NewMockDispatchRepository(ctrl)

	st := store.New(discardLogger())
	svc := newDispatchService(st, dispatches, nil, nil, nil)

	if routes := svc.Preview(context.Background(), "INC-1", nil); len(routes) != 0 {
		t.Fatalf("expected empty result for empty unit selection")
	}
	if routes := svc.Preview(context.Background(), "", []string{"unit-1"}); len(routes) != 0 {
		t.Fatalf("expected empty result for empty incident id")
	}
}

func TestDispatchService_Cancel(t *testing.T) {
	t.Parallel()

	st := store.New(discardLogger())
	st.SetPreviewRoutes([]domain.DispatchRoute{{ID: "preview-1", Preview: true}})
	st.SetPhase(domain.PhasePreviewed)

	svc := newDispatchService(st, nil, nil, nil, nil)
	svc.Cancel()

	if len(st.PreviewRoutes()) != 0 {
		t.Fatalf("expected previews cleared")
	}
	if st.Phase() != domain.PhaseIdle {
		t.Fatalf("expected phase=%q got=%q", domain.PhaseIdle, st.Phase())
	}
}

// --- Commit ---

func TestDispatchService_Commit_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatchRow := domain.Row{
		"id":          "DSP-1",
		"incident_id": "INC-1",
		"unit_id":     "unit-1",
		"route_geojson": map[string]any{
			"type": "LineString",
			"coordinates": []any{
				[]any{37.50, 55.70},
				[]any{37.61, 55.75},
			},
		},
		"eta_minutes": float64(13),
	}

	dispatches := mock_service.NewMockDispatchRepository(ctrl)
	gomock.InOrder(
		dispatches.EXPECT().
			CreateDispatch(gomock.Any(), "INC-1", []string{"unit-1"}, "alice").
			Return([]string{"DSP-1"}, nil).
			Times(1),
		dispatches.EXPECT().
			GetByIDs(gomock.Any(), []string{"DSP-1"}).
			Return([]domain.Row{dispatchRow}, nil).
			Times(1),
	)

	var published []domain.ChangeEvent
	publisher := mock_service.NewMockPublisher(ctrl)
	publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ev domain.ChangeEvent) error {
			published = append(published, ev)
			return nil
		}).
		AnyTimes()

	notify := mock_service.NewMockNotifyQueue(ctrl)
	notify.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p domain.NotificationPayload) error {
			if p.Event != "dispatch.committed" {
				t.Fatalf("unexpected notification event %q", p.Event)
			}
			return nil
		}).
		Times(1)

	st := store.New(discardLogger())
	seedIncident(st, "INC-1")
	seedUnits(st, "unit-1")
	st.SetPreviewRoutes([]domain.DispatchRoute{{ID: "preview-1", Preview: true}})
	st.SetPhase(domain.PhasePreviewed)

	svc := newDispatchService(st, dispatches, nil, publisher, notify)

	routes, err := svc.Commit(context.Background(), "INC-1", []string{"unit-1"}, "alice")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(routes) != 1 || routes[0].ID != "DSP-1" {
		t.Fatalf("unexpected routes: %+v", routes)
	}
	if routes[0].ETAMinutes != 13 {
		t.Fatalf("expected server eta=13, got %d", routes[0].ETAMinutes)
	}
	if len(routes[0].Waypoints) != 2 || routes[0].Waypoints[0].Lat != 55.70 {
		t.Fatalf("expected [lat,lng] waypoint order, got %+v", routes[0].Waypoints)
	}

	inc, ok := st.Incident("INC-1")
	if !ok {
		t.Fatalf("incident missing from store")
	}
	if inc.Status != domain.IncidentResponding {
		t.Fatalf("expected status=%q got=%q", domain.IncidentResponding, inc.Status)
	}
	if len(inc.AssignedUnitIDs) != 1 || inc.AssignedUnitIDs[0] != "unit-1" {
		t.Fatalf("unexpected assigned units: %v", inc.AssignedUnitIDs)
	}

	u, ok := st.Unit("unit-1")
	if !ok {
		t.Fatalf("unit missing from store")
	}
	if u.Status != domain.UnitDispatched {
		t.Fatalf("expected unit status=%q got=%q", domain.UnitDispatched, u.Status)
	}

	if got := st.Routes(); len(got) != 1 {
		t.Fatalf("expected 1 confirmed route, got %d", len(got))
	}
	if len(st.PreviewRoutes()) != 0 {
		t.Fatalf("expected previews cleared after commit")
	}
	if st.Phase() != domain.PhaseIdle {
		t.Fatalf("expected phase=%q got=%q", domain.PhaseIdle, st.Phase())
	}

	// commit fans out the incident update, each unit update and the
	// new dispatch row
	tables := map[string]int{}
	for _, ev := range published {
		tables[ev.Table]++
	}
	if tables[domain.TableIncidents] != 1 || tables[domain.TableUnits] != 1 || tables[domain.TableDispatches] != 1 {
		t.Fatalf("unexpected fan-out: %v", tables)
	}
}

func TestDispatchService_Commit_RPCError_NoPartialState(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatches := mock_service.NewMockDispatchRepository(ctrl)
	dispatches.EXPECT().
		CreateDispatch(gomock.Any(), "INC-1", []string{"unit-1"}, "dispatcher").
		Return(nil, errors.New("unit already dispatched")).
		Times(1)

	st := store.New(discardLogger())
	seedIncident(st, "INC-1")
	seedUnits(st, "unit-1")
	st.SetPreviewRoutes([]domain.DispatchRoute{{
		ID: "preview-1", IncidentID: "INC-1", UnitID: "unit-1", Preview: true,
	}})

	svc := newDispatchService(st, dispatches, nil, nil, nil)

	_, err := svc.Commit(context.Background(), "INC-1", []string{"unit-1"}, "")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "Failed to commit dispatch") {
		t.Fatalf("unexpected error message: %v", err)
	}

	inc, _ := st.Incident("INC-1")
	if inc.Status != domain.IncidentPending {
		t.Fatalf("incident status must not change on failed commit, got %q", inc.Status)
	}
	u, _ := st.Unit("unit-1")
	if u.Status != domain.UnitAvailable {
		t.Fatalf("unit status must not change on failed commit, got %q", u.Status)
	}
	if len(st.Routes()) != 0 {
		t.Fatalf("no routes must be appended on failed commit")
	}
	if len(st.PreviewRoutes()) != 0 {
		t.Fatalf("staged previews must be discarded on failed commit")
	}
	if st.Phase() != domain.PhaseIdle {
		t.Fatalf("expected phase=%q got=%q", domain.PhaseIdle, st.Phase())
	}
}

func TestDispatchService_Commit_DefaultDispatcher(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatches := mock_service.NewMockDispatchRepository(ctrl)
	gomock.InOrder(
		dispatches.EXPECT().
			CreateDispatch(gomock.Any(), "INC-1", []string{"unit-1"}, service.DefaultDispatcher).
			Return([]string{"DSP-1"}, nil).
			Times(1),
		dispatches.EXPECT().
			GetByIDs(gomock.Any(), []string{"DSP-1"}).
			Return([]domain.Row{}, nil).
			Times(1),
	)

	st := store.New(discardLogger())
	seedIncident(st, "INC-1")
	seedUnits(st, "unit-1")

	svc := newDispatchService(st, dispatches, nil, nil, nil)

	if _, err := svc.Commit(context.Background(), "INC-1", []string{"unit-1"}, ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestDispatchService_Commit_ReadBackError_StillCommitted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatches := mock_service.NewMockDispatchRepository(ctrl)
	gomock.InOrder(
		dispatches.EXPECT().
			CreateDispatch(gomock.Any(), "INC-1", []string{"unit-1"}, "alice").
			Return([]string{"DSP-1"}, nil).
			Times(1),
		dispatches.EXPECT().
			GetByIDs(gomock.Any(), []string{"DSP-1"}).
			Return(nil, errors.New("read timeout")).
			Times(1),
	)

	st := store.New(discardLogger())
	seedIncident(st, "INC-1")
	seedUnits(st, "unit-1")

	svc := newDispatchService(st, dispatches, nil, nil, nil)

	routes, err := svc.Commit(context.Background(), "INC-1", []string{"unit-1"}, "alice")
	if err != nil {
		t.Fatalf("commit must succeed when only read-back fails: %v", err)
	}
	if len(routes) != 0 {
		t.Fatalf("expected no routes without read-back, got %d", len(routes))
	}

	// the state flips still apply; the realtime echo fills in geometry
	inc, _ := st.Incident("INC-1")
	if inc.Status != domain.IncidentResponding {
		t.Fatalf("expected status=%q got=%q", domain.IncidentResponding, inc.Status)
	}
}

func TestDispatchService_Commit_MergesAssignedUnits(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatches := mock_service.NewMockDispatchRepository(ctrl)
	gomock.InOrder(
		dispatches.EXPECT().
			CreateDispatch(gomock.Any(), "INC-1", []string{"unit-2", "unit-1"}, "alice").
			Return([]string{"DSP-2"}, nil).
			Times(1),
		dispatches.EXPECT().
			GetByIDs(gomock.Any(), []string{"DSP-2"}).
			Return([]domain.Row{}, nil).
			Times(1),
	)

	st := store.New(discardLogger())
	st.SetIncidents([]domain.Incident{{
		ID:              "INC-1",
		Category:        domain.CategoryFire,
		Status:          domain.IncidentResponding,
		Location:        domain.LatLng{Lat: 55.75, Lng: 37.61},
		AssignedUnitIDs: []string{"unit-1"},
	}})
	seedUnits(st, "unit-1", "unit-2")

	svc := newDispatchService(st, dispatches, nil, nil, nil)

	if _, err := svc.Commit(context.Background(), "INC-1", []string{"unit-2", "unit-1"}, "alice"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	inc, _ := st.Incident("INC-1")
	if len(inc.AssignedUnitIDs) != 2 {
		t.Fatalf("expected deduplicated union of units, got %v", inc.AssignedUnitIDs)
	}
}

// --- Nearby / unit status / route delete ---

func TestDispatchService_Nearby_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	units := mock_service.NewMockUnitRepository(ctrl)
	units.EXPECT().
		Nearby(gomock.Any(), 55.75, 37.61, "fire_truck", 10.0).
		Return([]domain.NearbyUnit{{Unit: domain.EmergencyUnit{ID: "unit-1"}, DistanceKM: 1.2}}, nil).
		Times(1)

	st := store.New(discardLogger())
	svc := newDispatchService(st, nil, units, nil, nil)

	got := svc.Nearby(context.Background(), domain.NearbyUnitsRequest{
		Lat: 55.75, Lng: 37.61, UnitType: "fire_truck", RadiusKM: 10,
	})
	if len(got) != 1 || got[0].Unit.ID != "unit-1" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestDispatchService_Nearby_OmittedRadius_UsesDefault(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	units := mock_service.NewMockUnitRepository(ctrl)
	units.EXPECT().
		Nearby(gomock.Any(), 55.75, 37.61, "", testNearbyRadiusKM).
		Return([]domain.NearbyUnit{{Unit: domain.EmergencyUnit{ID: "unit-2"}, DistanceKM: 14.8}}, nil).
		Times(1)

	st := store.New(discardLogger())
	svc := newDispatchService(st, nil, units, nil, nil)

	got := svc.Nearby(context.Background(), domain.NearbyUnitsRequest{Lat: 55.75, Lng: 37.61})
	if len(got) != 1 || got[0].Unit.ID != "unit-2" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestDispatchService_Nearby_RPCError_FailsSoft(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	units := mock_service.NewMockUnitRepository(ctrl)
	units.EXPECT().
		Nearby(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("rpc down")).
		Times(1)

	st := store.New(discardLogger())
	svc := newDispatchService(st, nil, units, nil, nil)

	got := svc.Nearby(context.Background(), domain.NearbyUnitsRequest{Lat: 1, Lng: 1})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestDispatchService_UpdateUnitStatus_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	units := mock_service.NewMockUnitRepository(ctrl)
	units.EXPECT().
		UpdateStatus(gomock.Any(), "unit-1", domain.UnitOffline).
		Return(nil).
		Times(1)

	st := store.New(discardLogger())
	seedUnits(st, "unit-1")
	svc := newDispatchService(st, nil, units, nil, nil)

	if err := svc.UpdateUnitStatus(context.Background(), "unit-1", domain.UnitOffline); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	u, _ := st.Unit("unit-1")
	if u.Status != domain.UnitOffline {
		t.Fatalf("expected status=%q got=%q", domain.UnitOffline, u.Status)
	}
}

func TestDispatchService_UpdateUnitStatus_RPCError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	units := mock_service.NewMockUnitRepository(ctrl)
	units.EXPECT().
		UpdateStatus(gomock.Any(), "unit-1", domain.UnitBusy).
		Return(errors.New("db error")).
		Times(1)

	st := store.New(discardLogger())
	seedUnits(st, "unit-1")
	svc := newDispatchService(st, nil, units, nil, nil)

	if err := svc.UpdateUnitStatus(context.Background(), "unit-1", domain.UnitBusy); err == nil {
		t.Fatalf("expected error, got nil")
	}
	u, _ := st.Unit("unit-1")
	if u.Status != domain.UnitAvailable {
		t.Fatalf("status must not change on failure, got %q", u.Status)
	}
}

func TestDispatchService_DeleteRoute_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatches := mock_service.NewMockDispatchRepository(ctrl)
	dispatches.EXPECT().
		Delete(gomock.Any(), "DSP-1").
		Return(nil).
		Times(1)

	st := store.New(discardLogger())
	st.SetRoutes([]domain.DispatchRoute{{ID: "DSP-1", IncidentID: "INC-1", UnitID: "unit-1"}})

	svc := newDispatchService(st, dispatches, nil, nil, nil)

	if err := svc.DeleteRoute(context.Background(), "DSP-1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(st.Routes()) != 0 {
		t.Fatalf("expected route removed from store")
	}
}

func TestDispatchService_DeleteRoute_RPCError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatches := mock_service.NewMockDispatchRepository(ctrl)
	dispatches.EXPECT().
		Delete(gomock.Any(), "DSP-1").
		Return(errors.New("db error")).
		Times(1)

	st := store.New(discardLogger())
	st.SetRoutes([]domain.DispatchRoute{{ID: "DSP-1"}})

	svc := newDispatchService(st, dispatches, nil, nil, nil)

	if err := svc.DeleteRoute(context.Background(), "DSP-1"); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if len(st.Routes()) != 1 {
		t.Fatalf("route must stay on failed delete")
	}
}
