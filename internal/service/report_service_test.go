package service

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/field-report-service/internal/domain"
	"github.com/spec-kit/field-report-service/internal/stream"
	apperrors "github.com/spec-kit/field-report-service/pkg/util"
)

type memReportRepo struct {
	mu   sync.Mutex
	rows map[string]domain.Report
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{rows: make(map[string]domain.Report)}
}

func (r *memReportRepo) List(ctx context.Context) ([]domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Report, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	return out, nil
}

func (r *memReportRepo) Insert(ctx context.Context, report *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now
	r.rows[report.ID] = *report
	return nil
}

func (r *memReportRepo) UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	row.Status = status
	row.UpdatedAt = time.Now()
	r.rows[id] = row
	return &row, nil
}

func receiveEvent(t *testing.T, sub *stream.Subscriber) stream.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscriber channel closed")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return stream.Event{}
}

func assertNoEvent(t *testing.T, sub *stream.Subscriber) {
	t.Helper()
	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event: %+v", ev)
	default:
	}
}

func testSession() *domain.Session {
	return &domain.Session{
		SubjectID: "uuid-1",
		Email:     "a@x.com",
		Role:      domain.RoleUser,
		ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
	}
}

func TestSubmitStampsIdentityAndBroadcasts(t *testing.T) {
	repo := newMemReportRepo()
	hub := stream.NewHub(zap.NewNop())
	svc := NewReportService(repo, hub)
	sub := hub.Subscribe()

	report, err := svc.Submit(context.Background(), testSession(), map[string]any{"pool": "12"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if report.ID == "" || report.Status != domain.ReportStatusReceived {
		t.Fatalf("bad inserted row: %+v", report)
	}

	createdBy, ok := report.Payload["created_by"].(map[string]any)
	if !ok {
		t.Fatalf("created_by not stamped: %+v", report.Payload)
	}
	if createdBy["uuid"] != "uuid-1" || createdBy["email"] != "a@x.com" || createdBy["role"] != "user" {
		t.Fatalf("bad created_by: %+v", createdBy)
	}
	if report.Payload["pool"] != "12" {
		t.Fatalf("submitted fields lost: %+v", report.Payload)
	}

	ev := receiveEvent(t, sub)
	if ev.Name != stream.EventReportCreated {
		t.Fatalf("got event %s, want report.created", ev.Name)
	}
	// the broadcast payload exactly reproduces the inserted row
	if !reflect.DeepEqual(ev.Data, *report) {
		t.Fatalf("broadcast row differs from inserted row:\n%+v\n%+v", ev.Data, *report)
	}
}

func TestUpdateStatusBroadcastsToAllFeeds(t *testing.T) {
	repo := newMemReportRepo()
	hub := stream.NewHub(zap.NewNop())
	svc := NewReportService(repo, hub)

	inserted, err := svc.Submit(context.Background(), testSession(), nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	subA := hub.Subscribe()
	subB := hub.Subscribe()

	updated, err := svc.UpdateStatus(context.Background(), inserted.ID, domain.ReportStatusApproved)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != domain.ReportStatusApproved {
		t.Fatalf("got status %s, want approved", updated.Status)
	}

	evA := receiveEvent(t, subA)
	evB := receiveEvent(t, subB)
	if evA.Name != stream.EventReportUpdated || evB.Name != stream.EventReportUpdated {
		t.Fatalf("got events %s / %s, want report.updated", evA.Name, evB.Name)
	}
	if !reflect.DeepEqual(evA.Data, evB.Data) {
		t.Fatalf("feeds received different payloads:\n%+v\n%+v", evA.Data, evB.Data)
	}
	// exactly one event each
	assertNoEvent(t, subA)
	assertNoEvent(t, subB)
}

func TestUpdateStatusUnknownIDIsNotFoundWithoutBroadcast(t *testing.T) {
	repo := newMemReportRepo()
	hub := stream.NewHub(zap.NewNop())
	svc := NewReportService(repo, hub)
	sub := hub.Subscribe()

	_, err := svc.UpdateStatus(context.Background(), "missing-id", domain.ReportStatusApproved)
	de := apperrors.ToDomainError(err)
	if de == nil || de.HTTPStatus != 404 {
		t.Fatalf("got %v, want 404", err)
	}
	assertNoEvent(t, sub)
}

func TestUpdateStatusValidatesInput(t *testing.T) {
	svc := NewReportService(newMemReportRepo(), stream.NewHub(zap.NewNop()))

	cases := []struct {
		id     string
		status domain.ReportStatus
	}{
		{"", domain.ReportStatusApproved},
		{"some-id", "escalated"},
		{"some-id", ""},
	}
	for _, tc := range cases {
		_, err := svc.UpdateStatus(context.Background(), tc.id, tc.status)
		de := apperrors.ToDomainError(err)
		if de == nil || de.Code != "VALIDATION_FAILED" {
			t.Fatalf("id=%q status=%q: got %v, want VALIDATION_FAILED", tc.id, tc.status, err)
		}
	}
}
