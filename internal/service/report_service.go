package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
	"github.com/sameezy667/ResQ-sub000/internal/store"
	"github.com/sameezy667/ResQ-sub000/pkg/e"

	"github.com/google/uuid"
)

// MaxImageBytes caps incident image attachments at 10 MiB.
const MaxImageBytes = 10 << 20

// ReportService handles the citizen-facing write paths: new reports,
// verification votes, status transitions and image attachments. All of
// these are fail-loud: a user-initiated action expects a definite
// outcome.
type ReportService struct {
	store           *store.Store
	incidents       IncidentRepository
	images          ImageStore
	publisher       Publisher
	notify          NotifyQueue
	logger          *slog.Logger
	verifyThreshold int
}

func NewReportService(
	st *store.Store,
	incidents IncidentRepository,
	images ImageStore,
	publisher Publisher,
	notify NotifyQueue,
	logger *slog.Logger,
	verifyThreshold int,
) *ReportService {
	if verifyThreshold < 1 {
		verifyThreshold = 3
	}
	return &ReportService{
		store:           st,
		incidents:       incidents,
		images:          images,
		publisher:       publisher,
		notify:          notify,
		logger:          logger,
		verifyThreshold: verifyThreshold,
	}
}

// Report stores a new incident and returns its backend-assigned ID.
func (s *ReportService) Report(ctx context.Context, req domain.ReportIncidentRequest) (string, error) {
	loc := domain.LatLng{Lat: req.Lat, Lng: req.Lng}
	if !loc.InRange() {
		return "", e.Wrap("Failed to report incident", e.ErrInvalidCoordinates)
	}

	severity := domain.Severity(req.Severity)
	if severity == "" {
		severity = domain.SeverityMedium
	}

	inc := &domain.Incident{
		Category:       domain.NormalizeCategory(req.Category),
		Status:         domain.IncidentPending,
		Severity:       severity,
		Description:    req.Description,
		Location:       loc,
		Address:        req.Address,
		ReporterName:   req.ReporterName,
		ReporterUserID: req.ReporterUserID,
		CreatedAt:      time.Now().UTC(),
	}

	id, err := s.incidents.Insert(ctx, inc)
	if err != nil {
		s.logger.Error("incident insert failed", slog.Any("error", err))
		return "", e.Wrap("Failed to report incident", err)
	}
	inc.ID = id

	// optimistic local add; the realtime echo is idempotent against it
	s.store.UpsertIncident(*inc)
	s.publishEvent(ctx, domain.ChangeEvent{
		Type:  domain.EventInsert,
		Table: domain.TableIncidents,
		New:   incidentRow(*inc),
	})
	s.enqueue(ctx, domain.NotificationPayload{
		ID:         uuid.NewString(),
		Event:      "incident.reported",
		IncidentID: id,
		OccurredAt: time.Now().UTC(),
	})

	s.logger.Info("incident reported",
		slog.String("id", id),
		slog.String("category", string(inc.Category)),
		slog.String("severity", string(inc.Severity)),
	)
	return id, nil
}

// Verify counts an independent confirmation of the incident; at the
// threshold the verified flag flips. Used as a deduplication signal.
func (s *ReportService) Verify(ctx context.Context, id string) error {
	verified, count, err := s.incidents.IncrementVerification(ctx, id, s.verifyThreshold)
	if err != nil {
		s.logger.Error("verification failed", slog.String("id", id), slog.Any("error", err))
		return e.Wrap("Failed to verify incident", err)
	}

	s.store.PatchIncident(id, domain.IncidentPatch{
		Verified:    &verified,
		VerifyCount: &count,
	})
	if inc, ok := s.store.Incident(id); ok {
		s.publishEvent(ctx, domain.ChangeEvent{
			Type:  domain.EventUpdate,
			Table: domain.TableIncidents,
			New:   incidentRow(inc),
			Old:   domain.Row{"id": id},
		})
	}
	return nil
}

// UpdateStatus is the responder-side lifecycle transition
// (resolved/duplicate/unverified and the like).
func (s *ReportService) UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus) error {
	if err := s.incidents.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error("incident status update failed",
			slog.String("id", id),
			slog.String("status", string(status)),
			slog.Any("error", err),
		)
		return e.Wrap("Failed to update incident status", err)
	}

	s.store.PatchIncident(id, domain.IncidentPatch{Status: &status})
	if inc, ok := s.store.Incident(id); ok {
		s.publishEvent(ctx, domain.ChangeEvent{
			Type:  domain.EventUpdate,
			Table: domain.TableIncidents,
			New:   incidentRow(inc),
			Old:   domain.Row{"id": id},
		})
	}
	return nil
}

// Delete is the explicit admin hard-delete, the only way an incident
// leaves the collection.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.incidents.Delete(ctx, id); err != nil {
		s.logger.Error("incident delete failed", slog.String("id", id), slog.Any("error", err))
		return e.Wrap("Failed to delete incident", err)
	}

	s.store.RemoveIncident(id)
	s.publishEvent(ctx, domain.ChangeEvent{
		Type:  domain.EventDelete,
		Table: domain.TableIncidents,
		Old:   domain.Row{"id": id},
	})
	return nil
}

// UploadImage validates and stores an incident image attachment.
func (s *ReportService) UploadImage(ctx context.Context, incidentID string, data []byte, contentType string) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", e.Wrap("Failed to upload image", e.ErrNotAnImage)
	}
	if len(data) > MaxImageBytes {
		return "", e.Wrap("Failed to upload image", e.ErrImageTooLarge)
	}
	if _, ok := s.store.Incident(incidentID); !ok {
		return "", e.Wrap("Failed to upload image", e.ErrNotFound)
	}

	key := incidentID + "/" + uuid.NewString()
	url, err := s.images.Upload(ctx, key, data, contentType)
	if err != nil {
		s.logger.Error("image upload failed",
			slog.String("incident_id", incidentID),
			slog.Any("error", err),
		)
		return "", e.Wrap("Failed to upload image", err)
	}

	if err := s.incidents.SetImageKey(ctx, incidentID, key); err != nil {
		// storage succeeded; roll the orphan back best-effort
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphan image cleanup failed", slog.String("key", key), slog.Any("error", delErr))
		}
		return "", e.Wrap("Failed to upload image", err)
	}

	if inc, ok := s.store.Incident(incidentID); ok {
		inc.ImageKey = key
		s.store.UpsertIncident(inc)
	}
	return url, nil
}

// DeleteImage removes a stored attachment.
func (s *ReportService) DeleteImage(ctx context.Context, key string) error {
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Error("image delete failed", slog.String("key", key), slog.Any("error", err))
		return e.Wrap("Failed to delete image", err)
	}
	return nil
}

func (s *ReportService) publishEvent(ctx context.Context, ev domain.ChangeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("change event publish failed",
			slog.String("table", ev.Table),
			slog.String("type", string(ev.Type)),
			slog.Any("error", err),
		)
	}
}

func (s *ReportService) enqueue(ctx context.Context, p domain.NotificationPayload) {
	if s.notify == nil {
		return
	}
	if err := s.notify.Enqueue(ctx, p); err != nil {
		s.logger.Error("enqueue notification failed", slog.Any("error", err))
	}
}
