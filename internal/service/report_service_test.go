package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
	"github.com/sameezy667/ResQ-sub000/internal/service"
	"github.com/sameezy667/ResQ-sub000/internal/store"
	"github.com/sameezy667/ResQ-sub000/pkg/e"

	mock_service "github.com/sameezy667/ResQ-sub000/internal/service/mocks"
)

func newReportService(
	st *store.Store,
	incidents service.IncidentRepository,
	images service.ImageStore,
	publisher service.Publisher,
	notify service.NotifyQueue,
) *service.ReportService {
	return service.NewReportService(st, incidents, images, publisher, notify, discardLogger(), 3)
}

// --- Report ---

func TestReportService_Report_OK_Defaults(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var got *domain.Incident
	incidents := mock_service.NewMockIncidentRepository(ctrl)
	incidents.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *domain.Incident) (string, error) {
			got = inc
			return "INC-20260831-0001", nil
		}).
		Times(1)

	publisher := mock_service.NewMockPublisher(ctrl)
	publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ev domain.ChangeEvent) error {
			if ev.Type != domain.EventInsert || ev.Table != domain.TableIncidents {
				t.Fatalf("unexpected event %s on %s", ev.Type, ev.Table)
			}
			return nil
		}).
		Times(1)

	notify := mock_service.NewMockNotifyQueue(ctrl)
	notify.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p domain.NotificationPayload) error {
			if p.Event != "incident.reported" {
				t.Fatalf("unexpected notification event %q", p.Event)
			}
			return nil
		}).
		Times(1)

	st := store.New(discardLogger())
	svc := newReportService(st, incidents, nil, publisher, notify)

	id, err := svc.Report(context.Background(), domain.ReportIncidentRequest{
		Category:    "police",
		Description: "street fight",
		Lat:         55.75,
		Lng:         37.61,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if id != "INC-20260831-0001" {
		t.Fatalf("unexpected id %q", id)
	}

	if got.Category != domain.CategoryCrime {
		t.Fatalf("expected legacy police to normalize to crime, got %q", got.Category)
	}
	if got.Status != domain.IncidentPending {
		t.Fatalf("expected default status pending, got %q", got.Status)
	}
	if got.Severity != domain.SeverityMedium {
		t.Fatalf("expected default severity medium, got %q", got.Severity)
	}

	// optimistic local add
	if _, ok := st.Incident(id); !ok {
		t.Fatalf("expected incident in store after report")
	}
}

func TestReportService_Report_InvalidCoordinates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no Insert expectation: out-of-range coordinates never reach the backend
	incidents := mock_service.NewMockIncidentRepository(ctrl)

	st := store.New(discardLogger())
	svc := newReportService(st, incidents, nil, nil, nil)

	_, err := svc.Report(context.Background(), domain.ReportIncidentRequest{
		Category: "fire",
		Lat:      91,
		Lng:      37.61,
	})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !errors.Is(err, e.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestReportService_Report_InsertError_FailsLoud(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	incidents := mock_service.NewMockIncidentRepository(ctrl)
	incidents.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return("", errors.New("db down")).
		Times(1)

	st := store.New(discardLogger())
	svc := newReportService(st, incidents, nil, nil, nil)

	_, err := svc.Report(context.Background(), domain.ReportIncidentRequest{
		Category: "fire", Lat: 55.75, Lng: 37.61,
	})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "Failed to report incident") {
		t.Fatalf("unexpected error message: %v", err)
	}
	if len(st.Incidents()) != 0 {
		t.Fatalf("nothing must land in the store on failed report")
	}
}

// --- Verify ---

func TestReportService_Verify_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	incidents := mock_service.NewMockIncidentRepository(ctrl)
	incidents.EXPECT().
		IncrementVerification(gomock.Any(), "INC-1", 3).
		Return(true, 3, nil).
		Times(1)

	publisher := mock_service.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	st := store.New(discardLogger())
	seedIncident(st, "INC-1")
	svc := newReportService(st, incidents, nil, publisher, nil)

	if err := svc.Verify(context.Background(), "INC-1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	inc, _ := st.Incident("INC-1")
	if !inc.Verified || inc.VerifyCount != 3 {
		t.Fatalf("expected verified=true count=3, got verified=%v count=%d", inc.Verified, inc.VerifyCount)
	}
}

func TestReportService_Verify_RPCError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	incidents := mock_service.NewMockIncidentRepository(ctrl)
	incidents.EXPECT().
		IncrementVerification(gomock.Any(), "INC-1", 3).
		Return(false, 0, errors.New("not found")).
		Times(1)

	st := store.New(discardLogger())
	svc := newReportService(st, incidents, nil, nil, nil)

	if err := svc.Verify(context.Background(), "INC-1"); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

// --- UpdateStatus / Delete ---

func TestReportService_UpdateStatus_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	incidents := mock_service.NewMockIncidentRepository(ctrl)
	incidents.EXPECT().
		UpdateStatus(gomock.Any(), "INC-1", domain.IncidentResolved).
		Return(nil).
		Times(1)

	st := store.New(discardLogger())
	seedIncident(st, "INC-1")
	svc := newReportService(st, incidents, nil, nil, nil)

	if err := svc.UpdateStatus(context.Background(), "INC-1", domain.IncidentResolved); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	inc, _ := st.Incident("INC-1")
	if inc.Status != domain.IncidentResolved {
		t.Fatalf("expected status=%q got=%q", domain.IncidentResolved, inc.Status)
	}
}

func TestReportService_Delete_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	incidents := mock_service.NewMockIncidentRepository(ctrl)
	incidents.EXPECT().
		Delete(gomock.Any(), "INC-1").
		Return(nil).
		Times(1)

	st := store.New(discardLogger())
	seedIncident(st, "INC-1")
	svc := newReportService(st, incidents, nil, nil, nil)

	if err := svc.Delete(context.Background(), "INC-1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := st.Incident("INC-1"); ok {
		t.Fatalf("expected incident removed from store")
	}
}

func TestReportService_Delete_RPCError_KeepsLocal(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	incidents := mock_service.NewMockIncidentRepository(ctrl)
	incidents.EXPECT().
		Delete(gomock.Any(), "INC-1").
		Return(errors.New("db error")).
		Times(1)

	st := store.New(discardLogger())
	seedIncident(st, "INC-1")
	svc := newReportService(st, incidents, nil, nil, nil)

	if err := svc.Delete(context.Background(), "INC-1"); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if _, ok := st.Incident("INC-1"); !ok {
		t.Fatalf("incident must stay on failed delete")
	}
}

// --- UploadImage ---

func TestReportService_UploadImage_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var uploadedKey string
	images := mock_service.NewMockImageStore(ctrl)
	images.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any(), "image/png").
		DoAndReturn(func(_ context.Context, key string, _ []byte, _ string) (string, error) {
			uploadedKey = key
			return "/api/v1/images/" + key, nil
		}).
		Times(1)

	incidents := mock_service.NewMockIncidentRepository(ctrl)
	incidents.EXPECT().
		SetImageKey(gomock.Any(), "INC-1", gomock.Any()).
		Return(nil).
		Times(1)

	st := store.New(discardLogger())
	seedIncident(st, "INC-1")
	svc := newReportService(st, incidents, images, nil, nil)

	url, err := svc.UploadImage(context.Background(), "INC-1", []byte{0x89, 0x50, 0x4e, 0x47}, "image/png")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.HasPrefix(uploadedKey, "INC-1/") {
		t.Fatalf("expected key scoped to incident, got %q", uploadedKey)
	}
	if url != "/api/v1/images/"+uploadedKey {
		t.Fatalf("unexpected url %q", url)
	}

	inc, _ := st.Incident("INC-1")
	if inc.ImageKey != uploadedKey {
		t.Fatalf("expected image key on incident, got %q", inc.ImageKey)
	}
}

func TestReportService_UploadImage_Rejections(t *testing.T) {
	t.Parallel()

	type tc struct {
		name        string
		incidentID  string
		data        []byte
		contentType string
		wantErr     error
	}

	cases := []tc{
		{"not_an_image", "INC-1", []byte("hello"), "text/plain", e.ErrNotAnImage},
		{"too_large", "INC-1", bytes.Repeat([]byte{0xff}, service.MaxImageBytes+1), "image/jpeg", e.ErrImageTooLarge},
		{"unknown_incident", "INC-404", []byte{0xff}, "image/jpeg", e.ErrNotFound},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// validation rejects before any backend call
			incidents := mock_service.NewMockIncidentRepository(ctrl)
			images := mock_service.NewMockImageStore(ctrl)

			st := store.New(discardLogger())
			seedIncident(st, "INC-1")
			svc := newReportService(st, incidents, images, nil, nil)

			_, err := svc.UploadImage(context.Background(), c.incidentID, c.data, c.contentType)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("expected %v, got %v", c.wantErr, err)
			}
		})
	}
}

func TestReportService_UploadImage_SetKeyError_RollsBack(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	images := mock_service.NewMockImageStore(ctrl)
	incidents := mock_service.NewMockIncidentRepository(ctrl)

	gomock.InOrder(
		images.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Any(), "image/jpeg").
			Return("/api/v1/images/x", nil).
			Times(1),
		incidents.EXPECT().
			SetImageKey(gomock.Any(), "INC-1", gomock.Any()).
			Return(errors.New("db error")).
			Times(1),
		images.EXPECT().
			Delete(gomock.Any(), gomock.Any()).
			Return(nil).
			Times(1),
	)

	st := store.New(discardLogger())
	seedIncident(st, "INC-1")
	svc := newReportService(st, incidents, images, nil, nil)

	if _, err := svc.UploadImage(context.Background(), "INC-1", []byte{0xff}, "image/jpeg"); err == nil {
		t.Fatalf("expected error, got nil")
	}

	inc, _ := st.Incident("INC-1")
	if inc.ImageKey != "" {
		t.Fatalf("image key must not be set on failure, got %q", inc.ImageKey)
	}
}
