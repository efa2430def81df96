package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"squish/internal/domain"
	"squish/internal/port"
)

const jobColumns = "id, uuid, source_path, status, input_size, output_size, error_message, created_at, started_at, completed_at"

// Enqueue inserts job as waiting and fills in its database identifier.
func (s *Store) Enqueue(ctx context.Context, job *domain.Job) error {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (uuid, source_path, status, input_size, error_message, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		job.UUID,
		job.SourcePath,
		string(job.Status),
		job.InputSize,
		job.ErrorMessage,
		job.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	job.ID = id
	return nil
}

// ClaimNext atomically promotes the oldest waiting job to processing.
// The NOT EXISTS guard makes the single-job invariant hold at the
// database level even if two claimers race: the second UPDATE matches
// no row and returns nil.
func (s *Store) ClaimNext(ctx context.Context) (*domain.Job, error) {
	row := s.db.QueryRowContext(
		ctx,
		`UPDATE jobs
         SET status = ?, started_at = ?
         WHERE id = (SELECT id FROM jobs WHERE status = ? ORDER BY id LIMIT 1)
           AND NOT EXISTS (SELECT 1 FROM jobs WHERE status = ?)
         RETURNING `+jobColumns,
		string(domain.JobStatusProcessing),
		time.Now().UTC().Format(time.RFC3339Nano),
		string(domain.JobStatusWaiting),
		string(domain.JobStatusProcessing),
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim next job: %w", err)
	}
	return job, nil
}

// MarkDone finalizes a processing job as done. The output size stays
// NULL when the encoder produced no file.
func (s *Store) MarkDone(ctx context.Context, id int64, outputSize sql.NullInt64) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET status = ?, output_size = ?, completed_at = ? WHERE id = ?`,
		string(domain.JobStatusDone),
		outputSize,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark job done: %w", err)
	}
	return requireAffected(res)
}

// MarkFailed finalizes a processing job as failed with a diagnostic.
func (s *Store) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET status = ?, error_message = ?, completed_at = ? WHERE id = ?`,
		string(domain.JobStatusFailed),
		errMsg,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return requireAffected(res)
}

// Get fetches one job by its public UUID.
func (s *Store) Get(ctx context.Context, uuid string) (*domain.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE uuid = ?`, uuid)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns all jobs in enqueue order.
func (s *Store) List(ctx context.Context) ([]*domain.Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ResetStalled returns jobs left processing by a previous run to
// waiting so they are claimed again instead of staying stuck forever.
func (s *Store) ResetStalled(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE jobs SET status = ?, started_at = NULL WHERE status = ?`,
		string(domain.JobStatusWaiting),
		string(domain.JobStatusProcessing),
	)
	if err != nil {
		return 0, fmt.Errorf("reset stalled jobs: %w", err)
	}
	return res.RowsAffected()
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*domain.Job, error) {
	var (
		job          domain.Job
		statusStr    string
		createdRaw   string
		startedRaw   sql.NullString
		completedRaw sql.NullString
	)

	if err := scanner.Scan(
		&job.ID,
		&job.UUID,
		&job.SourcePath,
		&statusStr,
		&job.InputSize,
		&job.OutputSize,
		&job.ErrorMessage,
		&createdRaw,
		&startedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	job.Status = domain.JobStatus(statusStr)
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		job.CreatedAt = created
	}
	job.StartedAt = parseNullTime(startedRaw)
	job.CompletedAt = parseNullTime(completedRaw)
	return &job, nil
}

func parseNullTime(raw sql.NullString) sql.NullTime {
	if !raw.Valid || raw.String == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

var _ port.JobQueue = (*Store)(nil)
