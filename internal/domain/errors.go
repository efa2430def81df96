package domain

import "errors"

var (
	ErrNotFound = errors.New("job not found")

	// Probe failures abort the current job only, never the queue.
	ErrProbeUnavailable = errors.New("probe tool could not be started")
	ErrProbeFailed      = errors.New("probe failed")
	ErrProbeParse       = errors.New("probe output not parsable")

	ErrInvalidDuration = errors.New("source duration must be positive")
	ErrSpawnFailed     = errors.New("encoder could not be started")
)
