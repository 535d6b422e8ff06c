package service

import (
	"context"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

// IncidentRepository is the row-query/write surface for incidents.
// ListRows returns raw backend rows; mapping and geodata validation
// happen client-side in the mapper.
type IncidentRepository interface {
	ListRows(ctx context.Context) ([]domain.Row, error)
	Insert(ctx context.Context, inc *domain.Incident) (string, error)
	IncrementVerification(ctx context.Context, id string, threshold int) (verified bool, count int, err error)
	UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus) error
	SetImageKey(ctx context.Context, id, key string) error
	Delete(ctx context.Context, id string) error
}

type UnitRepository interface {
	ListRows(ctx context.Context) ([]domain.Row, error)
	Nearby(ctx context.Context, lat, lng float64, unitType string, radiusKM float64) ([]domain.NearbyUnit, error)
	UpdateStatus(ctx context.Context, id string, status domain.UnitStatus) error
}

// DispatchRepository is the RPC surface of the dispatch workflow.
// CreateDispatch is transactional on the backend: dispatch rows, unit
// statuses and the incident status all flip atomically or not at all.
type DispatchRepository interface {
	ListRows(ctx context.Context) ([]domain.Row, error)
	PreviewRoutes(ctx context.Context, incidentID string, unitIDs []string) ([]domain.RouteGeometry, error)
	CreateDispatch(ctx context.Context, incidentID string, unitIDs []string, dispatcher string) ([]string, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Row, error)
	Delete(ctx context.Context, id string) error
}

type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Publisher fans a committed change out to the realtime feed.
type Publisher interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
}

type NotifyQueue interface {
	Enqueue(ctx context.Context, payload domain.NotificationPayload) error
}

type StatsRepository interface {
	CountIncidents(ctx context.Context, minutes int) (byStatus, byCategory map[string]int64, err error)
	CountUnits(ctx context.Context) (map[string]int64, error)
}

type Service struct {
	Dispatch *DispatchService
	Report   *ReportService
	Loader   *Loader
	Stats    *StatsService
}

func NewService(dispatch *DispatchService, report *ReportService, loader *Loader, stats *StatsService) *Service {
	return &Service{
		Dispatch: dispatch,
		Report:   report,
		Loader:   loader,
		Stats:    stats,
	}
}
