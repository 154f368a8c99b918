package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/field-report-service/internal/domain"
	"github.com/spec-kit/field-report-service/internal/repository"
	"github.com/spec-kit/field-report-service/internal/stream"
	apperrors "github.com/spec-kit/field-report-service/pkg/util"
)

// ReportService coordinates report persistence and live-feed fan-out. Every
// mutation broadcasts its event before the method returns, so a caller that
// sees a successful response knows already-subscribed feeds have been handed
// the event.
type ReportService struct {
	reports repository.ReportRepository
	hub     *stream.Hub
}

// NewReportService builds the service.
func NewReportService(reports repository.ReportRepository, hub *stream.Hub) *ReportService {
	return &ReportService{reports: reports, hub: hub}
}

// List returns the current listing, newest first.
func (s *ReportService) List(ctx context.Context) ([]domain.Report, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, apperrors.NewUpstreamFailure(err)
	}
	return reports, nil
}

// Snapshot is the live feed's init source. Unlike List it returns the raw
// store error so the stream session can surface it in-band.
func (s *ReportService) Snapshot(ctx context.Context) ([]domain.Report, error) {
	return s.reports.List(ctx)
}

// Submit inserts a new report with the submitter's identity stamped into the
// payload, then broadcasts report.created.
func (s *ReportService) Submit(ctx context.Context, session *domain.Session, payload map[string]any) (*domain.Report, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["created_by"] = map[string]any{
		"uuid":  session.SubjectID,
		"email": session.Email,
		"role":  string(session.Role),
	}

	report := &domain.Report{
		ID:      uuid.NewString(),
		Status:  domain.ReportStatusReceived,
		Payload: payload,
	}
	if err := s.reports.Insert(ctx, report); err != nil {
		return nil, apperrors.NewUpstreamFailure(err)
	}

	s.hub.Broadcast(stream.ReportCreated(*report))
	return report, nil
}

// UpdateStatus transitions a report and broadcasts report.updated. An
// unknown id is a not-found error and triggers no broadcast.
func (s *ReportService) UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) (*domain.Report, error) {
	if id == "" || !status.Valid() {
		return nil, apperrors.NewValidationError("id and status (received|approved|rejected) required", nil)
	}

	report, err := s.reports.UpdateStatus(ctx, id, status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("report", map[string]any{"id": id})
		}
		return nil, apperrors.NewUpstreamFailure(err)
	}

	s.hub.Broadcast(stream.ReportUpdated(*report))
	return report, nil
}
