package pgsql

import (
	portsrepo "github.com/Vinay1727/labour-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	jobRepo := newPgxJobRepository(dbPool)
	dealRepo := newPgxDealRepository(dbPool)
	attendanceRepo := newPgxAttendanceRepository(dbPool)
	reviewRepo := newPgxReviewRepository(dbPool)
	messageRepo := newPgxMessageRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:       userRepo,
		JobRepo:        jobRepo,
		DealRepo:       dealRepo,
		AttendanceRepo: attendanceRepo,
		ReviewRepo:     reviewRepo,
		MessageRepo:    messageRepo,
	}
}
