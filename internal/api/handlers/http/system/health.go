package system

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/sameezy667/ResQ-sub000/internal/store"
)

type Handler struct {
	logger *slog.Logger
	store  *store.Store
}

func NewHandler(logger *slog.Logger, st *store.Store) *Handler {
	return &Handler{logger: logger, store: st}
}

type healthResponse struct {
	Status    string `json:"status"`
	Incidents int    `json:"incidents"`
	Units     int    `json:"units"`
	Routes    int    `json:"routes"`
	Loading   bool   `json:"loading"`
	Phase     string `json:"dispatch_phase"`
}

// SystemHealth reports liveness plus a shallow view of the state store:
// collection sizes, whether a bulk load is in flight, and the current
// workflow phase.
func (h *Handler) SystemHealth(w http.ResponseWriter, r *http.Request) {
	loading := h.store.Loading()

	resp := healthResponse{
		Status:    "ok",
		Incidents: len(h.store.Incidents()),
		Units:     len(h.store.Units()),
		Routes:    len(h.store.Routes()),
		Loading:   loading.Incidents || loading.Units || loading.Routes,
		Phase:     string(h.store.Phase()),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("health response encode failed", slog.Any("error", err))
	}
}
