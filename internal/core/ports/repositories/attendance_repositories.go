package repositories

import (
	"context"
	"time"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
)

// AttendanceRepository defines persistence operations for attendance records.
// Records are append-only; resolution is the only permitted update and is
// guarded to apply exactly once.
type AttendanceRepository interface {
	// SaveAttendance appends a new pending attendance record to a deal.
	SaveAttendance(ctx context.Context, record domain.AttendanceRecord) error

	// FindAttendanceByID retrieves a single attendance record.
	FindAttendanceByID(ctx context.Context, attendanceID string) (*domain.AttendanceRecord, error)

	// ListAttendanceByDeal retrieves a deal's attendance records in
	// chronological submission order.
	ListAttendanceByDeal(ctx context.Context, dealID string) ([]domain.AttendanceRecord, error)

	// ResolveAttendance marks a pending record approved or rejected. The
	// update is conditional on the record still being pending; zero rows
	// affected means a concurrent resolution won.
	ResolveAttendance(ctx context.Context, attendanceID string, decision domain.AttendanceStatus, resolvedBy string, resolvedAt time.Time) error
}
