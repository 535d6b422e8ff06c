package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
	"github.com/sameezy667/ResQ-sub000/internal/store"
	"github.com/sameezy667/ResQ-sub000/pkg/validator"

	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Workflow interface {
	Preview(ctx context.Context, incidentID string, unitIDs []string) []domain.DispatchRoute
	Cancel()
	Commit(ctx context.Context, incidentID string, unitIDs []string, dispatcher string) ([]domain.DispatchRoute, error)
	Nearby(ctx context.Context, req domain.NearbyUnitsRequest) []domain.NearbyUnit
	UpdateUnitStatus(ctx context.Context, unitID string, status domain.UnitStatus) error
	DeleteRoute(ctx context.Context, routeID string) error
}

type IncidentAdmin interface {
	UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus) error
	Delete(ctx context.Context, id string) error
}

type StatsGetter interface {
	GetStats(ctx context.Context, req domain.StatsRequest) (*domain.DispatchStats, error)
}

type Handler struct {
	logger   *slog.Logger
	Workflow Workflow
	Admin    IncidentAdmin
	Stats    StatsGetter
	store    *store.Store
}

func NewHandler(logger *slog.Logger, workflow Workflow, admin IncidentAdmin, stats StatsGetter, st *store.Store) *Handler {
	return &Handler{
		logger:   logger,
		Workflow: workflow,
		Admin:    admin,
		Stats:    stats,
		store:    st,
	}
}

func (h *Handler) DispatchPreview(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	var req domain.PreviewDispatchRequest
	if !h.bind(w, r, &req) {
		return
	}

	routes := h.Workflow.Preview(r.Context(), req.IncidentID, req.UnitIDs)

	l.Info("preview served",
		slog.String("incident_id", req.IncidentID),
		slog.Int("routes", len(routes)),
	)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"routes": routes,
		"phase":  h.store.Phase(),
	})
}

func (h *Handler) DispatchCommit(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	var req domain.CommitDispatchRequest
	if !h.bind(w, r, &req) {
		return
	}

	routes, err := h.Workflow.Commit(r.Context(), req.IncidentID, req.UnitIDs, req.Dispatcher)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("dispatch committed",
		slog.String("incident_id", req.IncidentID),
		slog.Int("units", len(req.UnitIDs)),
	)
	h.writeJSON(w, http.StatusCreated, map[string]any{"routes": routes})
}

func (h *Handler) DispatchCancel(w http.ResponseWriter, r *http.Request) {
	h.Workflow.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DispatchNearby(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	q := r.URL.Query()
	lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(q.Get("lng"), 64)
	if err1 != nil || err2 != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lng required"})
		return
	}

	req := domain.NearbyUnitsRequest{
		Lat:      lat,
		Lng:      lng,
		UnitType: q.Get("unit_type"),
	}
	if radius := q.Get("radius_km"); radius != "" {
		if f, err := strconv.ParseFloat(radius, 64); err == nil {
			req.RadiusKM = f
		}
	}
	if err := validator.ValidateStruct(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	units := h.Workflow.Nearby(r.Context(), req)

	l.Debug("nearby search", slog.Int("count", len(units)))
	h.writeJSON(w, http.StatusOK, map[string]any{"units": units})
}

func (h *Handler) DispatchRouteDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.Workflow.DeleteRoute(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type unitStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available dispatched busy offline"`
}

func (h *Handler) DispatchUnitStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req unitStatusRequest
	if !h.bind(w, r, &req) {
		return
	}

	if err := h.Workflow.UpdateUnitStatus(r.Context(), id, domain.UnitStatus(req.Status)); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type incidentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending responding resolved duplicate unverified"`
}

func (h *Handler) DispatchIncidentStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req incidentStatusRequest
	if !h.bind(w, r, &req) {
		return
	}

	if err := h.Admin.UpdateStatus(r.Context(), id, domain.IncidentStatus(req.Status)); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DispatchIncidentDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.Admin.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type filterRequest struct {
	Category string `json:"category" validate:"omitempty,category"`
}

// DispatchFilter sets the category filter applied to the state snapshot.
// An empty category clears the filter.
func (h *Handler) DispatchFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if !h.bind(w, r, &req) {
		return
	}

	filter := domain.CategoryAll
	if req.Category != "" {
		filter = domain.NormalizeCategory(req.Category)
	}
	h.store.SetCategoryFilter(filter)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DispatchStats(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	minutesStr := r.URL.Query().Get("minutes")
	if minutesStr == "" {
		minutesStr = "60"
	}

	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes <= 0 || minutes > 1440 {
		l.Warn("invalid minutes", slog.String("minutes", minutesStr))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "minutes must be 1-1440"})
		return
	}

	stats, err := h.Stats.GetStats(r.Context(), domain.StatsRequest{Minutes: minutes})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

// StateSnapshot serves the full dashboard read model.
func (h *Handler) StateSnapshot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// bind decodes and validates a JSON body, writing the error response
// itself; the caller bails out on false.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, target any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(target); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	if err := validator.ValidateStruct(target); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}
