package store

import (
	"log/slog"
	"os"
	"testing"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
)

func newTestStore() *Store {
	return New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func inc(id string, cat domain.IncidentCategory) domain.Incident {
	return domain.Incident{
		ID:       id,
		Category: cat,
		Status:   domain.IncidentPending,
		Severity: domain.SeverityMedium,
		Location: domain.LatLng{Lat: 1, Lng: 2},
	}
}

func statusPtr(s domain.IncidentStatus) *domain.IncidentStatus { return &s }

func TestStore_UpsertIncident_PrependsAndReplaces(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	s.UpsertIncident(inc("INC-20250101-0001", domain.CategoryFire))
	s.UpsertIncident(inc("INC-20250101-0002", domain.CategoryMedical))

	got := s.Incidents()
	if len(got) != 2 || got[0].ID != "INC-20250101-0002" {
		t.Fatalf("new incident must lead the collection: %+v", got)
	}

	replacement := inc("INC-20250101-0001", domain.CategoryFire)
	replacement.Severity = domain.SeverityCritical
	s.UpsertIncident(replacement)

	got = s.Incidents()
	if len(got) != 2 {
		t.Fatalf("replace must not grow the collection: %d", len(got))
	}
	if got[1].Severity != domain.SeverityCritical {
		t.Fatalf("replace did not take: %+v", got[1])
	}
}

func TestStore_PatchIncident_IdentityAndUntouchedFields(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	original := inc("INC-20250101-0001", domain.CategoryFire)
	original.Description = "warehouse fire"
	s.UpsertIncident(original)

	ok := s.PatchIncident("INC-20250101-0001", domain.IncidentPatch{
		Status: statusPtr(domain.IncidentResponding),
	})
	if !ok {
		t.Fatalf("patch reported failure")
	}

	got, found := s.Incident("INC-20250101-0001")
	if !found {
		t.Fatalf("incident vanished")
	}
	if got.ID != original.ID {
		t.Fatalf("patch must never change identity")
	}
	if got.Status != domain.IncidentResponding {
		t.Fatalf("status not applied: %q", got.Status)
	}
	if got.Description != "warehouse fire" || got.Severity != original.Severity || got.Location != original.Location {
		t.Fatalf("unspecified fields changed: %+v", got)
	}
}

func TestStore_PatchIncident_MissingIDIsNoop(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	s.UpsertIncident(inc("INC-20250101-0001", domain.CategoryFire))

	if s.PatchIncident("INC-20250101-9999", domain.IncidentPatch{Status: statusPtr(domain.IncidentResolved)}) {
		t.Fatalf("patch of missing ID must report false")
	}
	got := s.Incidents()
	if len(got) != 1 || got[0].Status != domain.IncidentPending {
		t.Fatalf("no-op patch mutated state: %+v", got)
	}
}

func TestStore_RemoveIncident_Completeness(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	s.SetIncidents([]domain.Incident{
		inc("INC-20250101-0001", domain.CategoryFire),
		inc("INC-20250101-0002", domain.CategoryMedical),
		inc("INC-20250101-0003", domain.CategoryCrime),
	})

	if !s.RemoveIncident("INC-20250101-0002") {
		t.Fatalf("remove reported failure")
	}

	got := s.Incidents()
	if len(got) != 2 {
		t.Fatalf("expected 2 left, got %d", len(got))
	}
	for _, i := range got {
		if i.ID == "INC-20250101-0002" {
			t.Fatalf("removed incident still present")
		}
	}
	if got[0].ID != "INC-20250101-0001" || got[1].ID != "INC-20250101-0003" {
		t.Fatalf("other entries disturbed: %+v", got)
	}

	if s.RemoveIncident("INC-20250101-0002") {
		t.Fatalf("double remove must report false")
	}
}

func TestStore_FilterPurity(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	s.SetIncidents([]domain.Incident{
		inc("INC-20250101-0001", domain.CategoryFire),
		inc("INC-20250101-0002", domain.CategoryCrime),
		inc("INC-20250101-0003", domain.CategoryMedical),
	})

	s.SetCategoryFilter(domain.CategoryFire)
	filtered := s.FilteredIncidents()
	if len(filtered) != 1 || filtered[0].ID != "INC-20250101-0001" {
		t.Fatalf("unexpected filter result: %+v", filtered)
	}

	// the underlying collection is untouched
	if got := s.Incidents(); len(got) != 3 {
		t.Fatalf("filtering mutated the collection: %d", len(got))
	}

	s.SetCategoryFilter(domain.CategoryAll)
	if got := s.FilteredIncidents(); len(got) != 3 {
		t.Fatalf("filter all must return everything: %d", len(got))
	}
}

func TestStore_FilterCrimeMatchesLegacyPolice(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	legacy := inc("INC-20250101-0001", domain.IncidentCategory("police"))
	s.SetIncidents([]domain.Incident{legacy, inc("INC-20250101-0002", domain.CategoryCrime)})

	s.SetCategoryFilter(domain.CategoryCrime)
	if got := s.FilteredIncidents(); len(got) != 2 {
		t.Fatalf("crime filter must include the legacy police tag: %+v", got)
	}
}

func TestStore_PreviewAndConfirmedCoexist(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	confirmed := domain.DispatchRoute{ID: "DSP-1", IncidentID: "INC-20250101-0001", UnitID: "UNIT-1", Waypoints: []domain.LatLng{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}}}
	preview := confirmed
	preview.ID = "preview-abc"
	preview.Preview = true

	s.AppendRoute(confirmed)
	s.SetPreviewRoutes([]domain.DispatchRoute{preview})

	if len(s.Routes()) != 1 || len(s.PreviewRoutes()) != 1 {
		t.Fatalf("both flavors must coexist")
	}

	s.ClearPreviewRoutes()
	if len(s.Routes()) != 1 {
		t.Fatalf("clearing previews must not touch confirmed routes")
	}

	if !s.RemoveRoute("DSP-1") || len(s.Routes()) != 0 {
		t.Fatalf("confirmed route removal failed")
	}
}

func TestStore_SelectIncident_DiscardsPreview(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	s.SetPreviewRoutes([]domain.DispatchRoute{{ID: "preview-1", IncidentID: "INC-20250101-0001"}})
	s.SetPhase(domain.PhasePreviewed)
	s.SelectIncident("INC-20250101-0001")

	if len(s.PreviewRoutes()) != 0 {
		t.Fatalf("selection change must clear previews")
	}
	if s.Phase() != domain.PhaseIdle {
		t.Fatalf("selection change must reset the workflow phase")
	}

	// re-selecting the same incident keeps state
	s.SetPreviewRoutes([]domain.DispatchRoute{{ID: "preview-2", IncidentID: "INC-20250101-0001"}})
	s.SelectIncident("INC-20250101-0001")
	if len(s.PreviewRoutes()) != 1 {
		t.Fatalf("same selection must not clear previews")
	}
}

func TestStore_PatchUnit(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	s.SetUnits([]domain.EmergencyUnit{{
		ID: "UNIT-1", Name: "Ambulance 1", Type: domain.UnitAmbulance,
		Status: domain.UnitAvailable, Location: domain.LatLng{Lat: 1, Lng: 2},
	}})

	status := domain.UnitDispatched
	loc := domain.LatLng{Lat: 5, Lng: 6}
	if !s.PatchUnit("UNIT-1", domain.UnitPatch{Status: &status, Location: &loc}) {
		t.Fatalf("patch failed")
	}

	u, ok := s.Unit("UNIT-1")
	if !ok || u.Status != domain.UnitDispatched || u.Location != loc {
		t.Fatalf("patch not applied: %+v", u)
	}
	if u.Name != "Ambulance 1" || u.Type != domain.UnitAmbulance {
		t.Fatalf("untouched fields changed: %+v", u)
	}
}

func TestStore_AccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	s := newTestStore()
	s.SetIncidents([]domain.Incident{inc("INC-20250101-0001", domain.CategoryFire)})

	got := s.Incidents()
	got[0].Status = domain.IncidentResolved

	fresh, _ := s.Incident("INC-20250101-0001")
	if fresh.Status != domain.IncidentPending {
		t.Fatalf("accessor leaked internal state")
	}
}
