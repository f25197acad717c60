package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	"github.com/Vinay1727/labour-backend/internal/core/domain"
	portsrepo "github.com/Vinay1727/labour-backend/internal/core/ports/repositories"
)

type PgxDealRepository struct {
	BaseRepository
}

// newPgxDealRepository creates a new repository for deal data.
func newPgxDealRepository(pool *pgxpool.Pool) portsrepo.DealRepository {
	return &PgxDealRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxDealRepository implements portsrepo.DealRepository
var _ portsrepo.DealRepository = (*PgxDealRepository)(nil)

const dealColumns = `
	deal_id, job_id, status, contractor_id, labour_id,
	work_type, location, work_date, payment, applied_skill,
	labour_finish_requested, completion_status, is_reviewed, completed_at, version,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanDeal(row pgx.Row) (*domain.Deal, error) {
	var d domain.Deal
	err := row.Scan(
		&d.DealID,
		&d.JobID,
		&d.Status,
		&d.ContractorID,
		&d.LabourID,
		&d.WorkType,
		&d.Location,
		&d.WorkDate,
		&d.Payment,
		&d.AppliedSkill,
		&d.LabourFinishRequested,
		&d.CompletionStatus,
		&d.IsReviewed,
		&d.CompletedAt,
		&d.Version,
		&d.CreatedAt,
		&d.CreatedBy,
		&d.LastUpdatedAt,
		&d.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindDealByID retrieves a deal together with its rejection history.
func (r *PgxDealRepository) FindDealByID(ctx context.Context, dealID string) (*domain.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE deal_id = $1;`

	deal, err := scanDeal(r.Pool.QueryRow(ctx, query, dealID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}

	history, err := r.listRejections(ctx, dealID)
	if err != nil {
		return nil, err
	}
	deal.RejectionHistory = history

	return deal, nil
}

func (r *PgxDealRepository) listRejections(ctx context.Context, dealID string) ([]domain.RejectionEvent, error) {
	query := `
		SELECT rejection_id, deal_id, reason_codes, note, rejected_by, rejected_at
		FROM deal_rejections
		WHERE deal_id = $1
		ORDER BY rejected_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rejections for deal %s: %w", dealID, err)
	}

	events, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.RejectionEvent])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rejections for deal %s: %w", dealID, err)
	}
	return events, nil
}

// ListDealsByParticipant retrieves deals where the user holds the given role,
// newest first, optionally filtered by status. Rejection histories are not
// loaded for list views.
func (r *PgxDealRepository) ListDealsByParticipant(ctx context.Context, userID string, role domain.UserRole, status *domain.DealStatus) ([]domain.Deal, error) {
	participantColumn := "labour_id"
	if role == domain.RoleContractor {
		participantColumn = "contractor_id"
	}

	query := `SELECT ` + dealColumns + ` FROM deals WHERE ` + participantColumn + ` = $1`
	args := []interface{}{userID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals for user %s: %w", userID, err)
	}
	defer rows.Close()

	var deals []domain.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal row: %w", err)
		}
		deals = append(deals, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading deal rows: %w", err)
	}
	return deals, nil
}

// FindDealByJobAndLabour retrieves the deal a labourer holds on a job, if any.
func (r *PgxDealRepository) FindDealByJobAndLabour(ctx context.Context, jobID, labourID string) (*domain.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE job_id = $1 AND labour_id = $2;`

	deal, err := scanDeal(r.Pool.QueryRow(ctx, query, jobID, labourID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find deal for job %s: %w", jobID, err)
	}
	return deal, nil
}

// SaveDeal inserts a new deal.
func (r *PgxDealRepository) SaveDeal(ctx context.Context, deal domain.Deal) error {
	query := `
		INSERT INTO deals (deal_id, job_id, status, contractor_id, labour_id,
			work_type, location, work_date, payment, applied_skill,
			labour_finish_requested, completion_status, is_reviewed, completed_at, version,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := r.Pool.Exec(ctx, query,
		deal.DealID,
		deal.JobID,
		deal.Status,
		deal.ContractorID,
		deal.LabourID,
		deal.WorkType,
		deal.Location,
		deal.WorkDate,
		deal.Payment,
		deal.AppliedSkill,
		deal.LabourFinishRequested,
		deal.CompletionStatus,
		deal.IsReviewed,
		deal.CompletedAt,
		deal.Version,
		deal.CreatedAt,
		deal.CreatedBy,
		deal.LastUpdatedAt,
		deal.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: deal for job %s by this labourer already exists", apperrors.ErrDuplicate, deal.JobID)
			}
			if pgErr.Code == "23503" { // FK violation
				return fmt.Errorf("%w: job %s does not exist", apperrors.ErrValidation, deal.JobID)
			}
		}
		return fmt.Errorf("failed to save deal %s: %w", deal.DealID, err)
	}
	return nil
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// updateDealStatusTx runs the version-checked status update inside the given
// executor. Zero rows affected means the caller's copy of the deal is stale.
func updateDealStatusTx(ctx context.Context, tx execer, deal domain.Deal) error {
	query := `
		UPDATE deals
		SET status = $1, labour_finish_requested = $2, completion_status = $3,
			completed_at = $4, last_updated_at = $5, last_updated_by = $6,
			version = version + 1
		WHERE deal_id = $7 AND version = $8;
	`
	result, err := tx.Exec(ctx, query,
		deal.Status,
		deal.LabourFinishRequested,
		deal.CompletionStatus,
		deal.CompletedAt,
		deal.LastUpdatedAt,
		deal.LastUpdatedBy,
		deal.DealID,
		deal.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal %s: %w", deal.DealID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: deal %s was modified concurrently", apperrors.ErrConflict, deal.DealID)
	}
	return nil
}

// UpdateDealStatus persists a status change against the expected version.
func (r *PgxDealRepository) UpdateDealStatus(ctx context.Context, deal domain.Deal) error {
	return updateDealStatusTx(ctx, r.Pool, deal)
}

// ApproveApplication moves the deal to active and fills the selected skill
// slot on the job in one transaction. The slot update is guarded by the
// required count, so a race on the last opening rolls the whole approval back.
func (r *PgxDealRepository) ApproveApplication(ctx context.Context, deal domain.Deal, skillName string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if err := updateDealStatusTx(ctx, tx, deal); err != nil {
		return err
	}

	slotQuery := `
		UPDATE job_skills
		SET filled_count = filled_count + 1
		WHERE job_id = $1 AND skill_name = $2 AND filled_count < required_count;
	`
	result, err := tx.Exec(ctx, slotQuery, deal.JobID, skillName)
	if err != nil {
		return fmt.Errorf("failed to fill skill slot %q on job %s: %w", skillName, deal.JobID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: skill slot %q on job %s has no capacity", apperrors.ErrConflict, skillName, deal.JobID)
	}

	return r.Commit(ctx, tx)
}

// RejectCompletion returns the deal to active and appends one rejection event
// in one transaction.
func (r *PgxDealRepository) RejectCompletion(ctx context.Context, deal domain.Deal, event domain.RejectionEvent) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if err := updateDealStatusTx(ctx, tx, deal); err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO deal_rejections (rejection_id, deal_id, reason_codes, note, rejected_by, rejected_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = tx.Exec(ctx, insertQuery,
		event.RejectionID,
		event.DealID,
		event.ReasonCodes,
		event.Note,
		event.RejectedBy,
		event.RejectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rejection for deal %s: %w", deal.DealID, err)
	}

	return r.Commit(ctx, tx)
}

// MarkDealReviewed flips the reviewed flag once a review lands.
func (r *PgxDealRepository) MarkDealReviewed(ctx context.Context, dealID string) error {
	query := `UPDATE deals SET is_reviewed = TRUE WHERE deal_id = $1;`
	result, err := r.Pool.Exec(ctx, query, dealID)
	if err != nil {
		return fmt.Errorf("failed to mark deal %s reviewed: %w", dealID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
