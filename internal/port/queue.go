package port

import (
	"context"
	"database/sql"

	"squish/internal/domain"
)

// JobQueue persists queue items and owns their status transitions.
// Transitions never go backward: waiting -> processing -> done|failed.
type JobQueue interface {
	Enqueue(ctx context.Context, job *domain.Job) error
	// ClaimNext marks the oldest waiting job as processing and returns
	// it. Returns nil (no error) when nothing is waiting or another job
	// is already processing.
	ClaimNext(ctx context.Context) (*domain.Job, error)
	MarkDone(ctx context.Context, id int64, outputSize sql.NullInt64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
	Get(ctx context.Context, uuid string) (*domain.Job, error)
	List(ctx context.Context) ([]*domain.Job, error)
	// ResetStalled returns processing jobs left over from a previous
	// run back to waiting.
	ResetStalled(ctx context.Context) (int64, error)
}
