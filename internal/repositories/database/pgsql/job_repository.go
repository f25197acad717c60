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

type PgxJobRepository struct {
	BaseRepository
}

// newPgxJobRepository creates a new repository for job postings.
func newPgxJobRepository(pool *pgxpool.Pool) portsrepo.JobRepository {
	return &PgxJobRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxJobRepository implements portsrepo.JobRepository
var _ portsrepo.JobRepository = (*PgxJobRepository)(nil)

const jobColumns = `
	job_id, contractor_id, work_type, description, location,
	work_date, daily_wage, is_active,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanJob(row pgx.Row) (*domain.Job, error) {
	var j domain.Job
	err := row.Scan(
		&j.JobID,
		&j.ContractorID,
		&j.WorkType,
		&j.Description,
		&j.Location,
		&j.WorkDate,
		&j.DailyWage,
		&j.IsActive,
		&j.CreatedAt,
		&j.CreatedBy,
		&j.LastUpdatedAt,
		&j.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// SaveJob persists a posting with its skill slots in one transaction.
func (r *PgxJobRepository) SaveJob(ctx context.Context, job domain.Job) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	jobQuery := `
		INSERT INTO jobs (job_id, contractor_id, work_type, description, location,
			work_date, daily_wage, is_active,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, jobQuery,
		job.JobID,
		job.ContractorID,
		job.WorkType,
		job.Description,
		job.Location,
		job.WorkDate,
		job.DailyWage,
		job.IsActive,
		job.CreatedAt,
		job.CreatedBy,
		job.LastUpdatedAt,
		job.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: job %s already exists", apperrors.ErrDuplicate, job.JobID)
		}
		return fmt.Errorf("failed to save job %s: %w", job.JobID, err)
	}

	skillQuery := `
		INSERT INTO job_skills (job_id, skill_name, required_count, filled_count)
		VALUES ($1, $2, $3, $4);
	`
	for _, slot := range job.Skills {
		if _, err := tx.Exec(ctx, skillQuery, job.JobID, slot.SkillName, slot.RequiredCount, slot.FilledCount); err != nil {
			return fmt.Errorf("failed to save skill slot %q on job %s: %w", slot.SkillName, job.JobID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// FindJobByID retrieves a job with its skill slots.
func (r *PgxJobRepository) FindJobByID(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1;`

	job, err := scanJob(r.Pool.QueryRow(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job %s: %w", jobID, err)
	}

	skills, err := r.listSkills(ctx, jobID)
	if err != nil {
		return nil, err
	}
	job.Skills = skills

	return job, nil
}

func (r *PgxJobRepository) listSkills(ctx context.Context, jobID string) ([]domain.SkillSlot, error) {
	query := `
		SELECT skill_name, required_count, filled_count
		FROM job_skills
		WHERE job_id = $1
		ORDER BY skill_name ASC;
	`
	rows, err := r.Pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query skills for job %s: %w", jobID, err)
	}

	skills, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.SkillSlot])
	if err != nil {
		return nil, fmt.Errorf("failed to collect skills for job %s: %w", jobID, err)
	}
	return skills, nil
}

// ListActiveJobs retrieves active postings, newest first.
func (r *PgxJobRepository) ListActiveJobs(ctx context.Context, workType, location *string, limit, offset int) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE is_active = TRUE`
	args := []interface{}{}
	argN := 1
	if workType != nil {
		query += fmt.Sprintf(` AND work_type = $%d`, argN)
		args = append(args, *workType)
		argN++
	}
	if location != nil {
		query += fmt.Sprintf(` AND location ILIKE $%d`, argN)
		args = append(args, "%"+*location+"%")
		argN++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`, argN, argN+1)
	args = append(args, limit, offset)

	return r.queryJobs(ctx, query, args...)
}

// ListJobsByContractor retrieves a contractor's own postings, newest first.
func (r *PgxJobRepository) ListJobsByContractor(ctx context.Context, contractorID string) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE contractor_id = $1 ORDER BY created_at DESC;`
	return r.queryJobs(ctx, query, contractorID)
}

func (r *PgxJobRepository) queryJobs(ctx context.Context, query string, args ...interface{}) ([]domain.Job, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading job rows: %w", err)
	}

	for i := range jobs {
		skills, err := r.listSkills(ctx, jobs[i].JobID)
		if err != nil {
			return nil, err
		}
		jobs[i].Skills = skills
	}
	return jobs, nil
}

// DeactivateJob closes a posting to new applications.
func (r *PgxJobRepository) DeactivateJob(ctx context.Context, jobID string, userID string) error {
	query := `
		UPDATE jobs
		SET is_active = FALSE, last_updated_at = NOW(), last_updated_by = $1
		WHERE job_id = $2;
	`
	result, err := r.Pool.Exec(ctx, query, userID, jobID)
	if err != nil {
		return fmt.Errorf("failed to deactivate job %s: %w", jobID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
