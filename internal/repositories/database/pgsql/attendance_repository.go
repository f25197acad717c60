package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	"github.com/Vinay1727/labour-backend/internal/core/domain"
	portsrepo "github.com/Vinay1727/labour-backend/internal/core/ports/repositories"
)

type PgxAttendanceRepository struct {
	BaseRepository
}

// newPgxAttendanceRepository creates a new repository for attendance records.
func newPgxAttendanceRepository(pool *pgxpool.Pool) portsrepo.AttendanceRepository {
	return &PgxAttendanceRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxAttendanceRepository implements portsrepo.AttendanceRepository
var _ portsrepo.AttendanceRepository = (*PgxAttendanceRepository)(nil)

const attendanceColumns = `
	attendance_id, deal_id, work_day, submitted_at,
	latitude, longitude, address, image_url,
	status, resolved_by, resolved_at
`

func scanAttendance(row pgx.Row) (*domain.AttendanceRecord, error) {
	var rec domain.AttendanceRecord
	err := row.Scan(
		&rec.AttendanceID,
		&rec.DealID,
		&rec.Date,
		&rec.Timestamp,
		&rec.Location.Latitude,
		&rec.Location.Longitude,
		&rec.Location.Address,
		&rec.ImageURL,
		&rec.Status,
		&rec.ResolvedBy,
		&rec.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveAttendance appends a new pending attendance record.
func (r *PgxAttendanceRepository) SaveAttendance(ctx context.Context, record domain.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (attendance_id, deal_id, work_day, submitted_at,
			latitude, longitude, address, image_url, status, resolved_by, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		record.AttendanceID,
		record.DealID,
		record.Date,
		record.Timestamp,
		record.Location.Latitude,
		record.Location.Longitude,
		record.Location.Address,
		record.ImageURL,
		record.Status,
		record.ResolvedBy,
		record.ResolvedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // FK violation
			return fmt.Errorf("%w: deal %s does not exist", apperrors.ErrValidation, record.DealID)
		}
		return fmt.Errorf("failed to save attendance %s: %w", record.AttendanceID, err)
	}
	return nil
}

// FindAttendanceByID retrieves a single attendance record.
func (r *PgxAttendanceRepository) FindAttendanceByID(ctx context.Context, attendanceID string) (*domain.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE attendance_id = $1;`

	rec, err := scanAttendance(r.Pool.QueryRow(ctx, query, attendanceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find attendance %s: %w", attendanceID, err)
	}
	return rec, nil
}

// ListAttendanceByDeal retrieves a deal's records in submission order.
func (r *PgxAttendanceRepository) ListAttendanceByDeal(ctx context.Context, dealID string) ([]domain.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE deal_id = $1 ORDER BY submitted_at ASC;`

	rows, err := r.Pool.Query(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance for deal %s: %w", dealID, err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading attendance rows: %w", err)
	}
	return records, nil
}

// ResolveAttendance marks a pending record approved or rejected. The update
// is conditional on the record still being pending, so a concurrent
// resolution leaves the first decision in place.
func (r *PgxAttendanceRepository) ResolveAttendance(ctx context.Context, attendanceID string, decision domain.AttendanceStatus, resolvedBy string, resolvedAt time.Time) error {
	query := `
		UPDATE attendance_records
		SET status = $1, resolved_by = $2, resolved_at = $3
		WHERE attendance_id = $4 AND status = $5;
	`
	result, err := r.Pool.Exec(ctx, query, decision, resolvedBy, resolvedAt, attendanceID, domain.AttendancePending)
	if err != nil {
		return fmt.Errorf("failed to resolve attendance %s: %w", attendanceID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: attendance %s is no longer pending", apperrors.ErrConflict, attendanceID)
	}
	return nil
}
