package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/field-report-service/internal/domain"
)

// snapshotLimit caps the listing used both by GET /api/admin/reports and by
// the live-feed init snapshot.
const snapshotLimit = 500

// ReportRepository encapsulates report persistence. Every call returns either
// a full row or an error; UpdateStatus returns pgx.ErrNoRows for unknown ids.
type ReportRepository interface {
	List(ctx context.Context) ([]domain.Report, error)
	Insert(ctx context.Context, report *domain.Report) error
	UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) (*domain.Report, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) List(ctx context.Context) ([]domain.Report, error) {
	const query = `
        SELECT id, status, payload, created_at, updated_at
        FROM reports
        ORDER BY created_at DESC
        LIMIT $1`

	rows, err := r.pool.Query(ctx, query, snapshotLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]domain.Report, 0)
	for rows.Next() {
		var report domain.Report
		if err := rows.Scan(
			&report.ID,
			&report.Status,
			&report.Payload,
			&report.CreatedAt,
			&report.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (r *reportRepository) Insert(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (id, status, payload)
        VALUES ($1, $2, $3)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		report.ID,
		report.Status,
		report.Payload,
	).Scan(&report.CreatedAt, &report.UpdatedAt)
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) (*domain.Report, error) {
	const query = `
        UPDATE reports SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING id, status, payload, created_at, updated_at`

	var report domain.Report
	if err := r.pool.QueryRow(ctx, query, status, id).Scan(
		&report.ID,
		&report.Status,
		&report.Payload,
		&report.CreatedAt,
		&report.UpdatedAt,
	); err != nil {
		// pgx.ErrNoRows here means the id does not exist
		return nil, err
	}
	return &report, nil
}
