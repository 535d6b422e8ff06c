package public

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"log/slog"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
	"github.com/sameezy667/ResQ-sub000/pkg/validator"

	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type IncidentReporter interface {
	Report(ctx context.Context, req domain.ReportIncidentRequest) (string, error)
	Verify(ctx context.Context, id string) error
	UploadImage(ctx context.Context, incidentID string, data []byte, contentType string) (string, error)
}

type ImageGetter interface {
	Get(ctx context.Context, key string) ([]byte, string, error)
}

type Handler struct {
	logger   *slog.Logger
	Reporter IncidentReporter
	Images   ImageGetter
	maxBytes int64
}

func NewHandler(logger *slog.Logger, reporter IncidentReporter, images ImageGetter, maxImageBytes int64) *Handler {
	return &Handler{
		logger:   logger,
		Reporter: reporter,
		Images:   images,
		maxBytes: maxImageBytes,
	}
}

func (h *Handler) PublicIncidentReport(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	var req domain.ReportIncidentRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		l.Warn("invalid report payload", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id, err := h.Reporter.Report(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("incident reported", slog.String("id", id))
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) PublicIncidentVerify(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.Reporter.Verify(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("incident verified", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PublicIncidentImageUpload(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "body too large"})
		return
	}

	url, err := h.Reporter.UploadImage(r.Context(), id, data, r.Header.Get("Content-Type"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("image uploaded", slog.String("incident_id", id))
	h.writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (h *Handler) PublicImageGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid key"})
		return
	}

	data, contentType, err := h.Images.Get(r.Context(), key)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
