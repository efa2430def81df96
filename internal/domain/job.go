package domain

import (
	"database/sql"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusWaiting    JobStatus = "waiting"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one source file's end-to-end encode attempt. Identity for API
// consumers is the UUID; the same source path may be enqueued more than
// once and each enqueue is an independent job.
type Job struct {
	ID           int64
	UUID         string
	SourcePath   string
	Status       JobStatus
	InputSize    int64
	OutputSize   sql.NullInt64
	ErrorMessage string
	CreatedAt    time.Time
	StartedAt    sql.NullTime
	CompletedAt  sql.NullTime
}

func NewJob(sourcePath string, inputSize int64) *Job {
	return &Job{
		UUID:       uuid.NewString(),
		SourcePath: sourcePath,
		Status:     JobStatusWaiting,
		InputSize:  inputSize,
		CreatedAt:  time.Now().UTC(),
	}
}

// IsTerminal reports whether the job has finished, successfully or not.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusFailed
}

// Filename returns the base name of the source file for display.
func (j *Job) Filename() string {
	return filepath.Base(j.SourcePath)
}

// ParseJobStatus converts a string into a known JobStatus.
func ParseJobStatus(value string) (JobStatus, bool) {
	switch JobStatus(value) {
	case JobStatusWaiting, JobStatusProcessing, JobStatusDone, JobStatusFailed:
		return JobStatus(value), true
	}
	return "", false
}
