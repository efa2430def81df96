package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"squish/internal/domain"
	"squish/internal/infrastructure/logger"
	"squish/internal/port"
)

// JobRunner executes one claimed job and streams its signals back.
type JobRunner interface {
	Run(ctx context.Context, job *domain.Job, settings domain.EncodeSettings) <-chan domain.Signal
}

// SettingsSource returns a fresh encode configuration snapshot. Read
// once per job at claim time, so edits never affect an in-flight job.
type SettingsSource func() domain.EncodeSettings

type completion struct {
	job        *domain.Job
	outputSize sql.NullInt64
	err        error
}

// Supervisor owns the queue lifecycle: it is the only component that
// claims jobs, marks them finished and decides when the next one
// starts. At most one job runs at any time; the busy flag is
// checked-and-set under the supervisor mutex before anything spawns.
type Supervisor struct {
	queue    port.JobQueue
	runner   JobRunner
	settings SettingsSource
	sink     *LogSink

	mu      sync.Mutex
	busy    bool
	advance bool
	baseCtx context.Context

	wake        chan struct{}
	completions chan completion
}

func NewSupervisor(queue port.JobQueue, runner JobRunner, settings SettingsSource, sink *LogSink) *Supervisor {
	return &Supervisor{
		queue:       queue,
		runner:      runner,
		settings:    settings,
		sink:        sink,
		baseCtx:     context.Background(),
		wake:        make(chan struct{}, 1),
		completions: make(chan completion, 1),
	}
}

// Enqueue appends a waiting job for path and wakes the supervisor loop.
// Duplicate paths are accepted as independent jobs.
func (s *Supervisor) Enqueue(ctx context.Context, path string) (*domain.Job, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("inspect source: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", abs)
	}

	job := domain.NewJob(abs, info.Size())
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue: %w", err)
	}
	logger.Info.Printf("queued %s (%d bytes) as job %s", logger.SanitizeForLog(job.Filename()), job.InputSize, job.UUID)
	s.notify()
	return job, nil
}

// StartNext claims the oldest waiting job and launches it. Idempotent
// and safe to call speculatively: a no-op when a job is already running
// or nothing is waiting.
func (s *Supervisor) StartNext(ctx context.Context) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil
	}
	job, err := s.queue.ClaimNext(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("claim next: %w", err)
	}
	if job == nil {
		s.mu.Unlock()
		return nil
	}
	s.busy = true
	runCtx := s.baseCtx
	s.mu.Unlock()

	settings := s.settings()
	logger.Info.Printf("starting job %s (%s)", job.UUID, logger.SanitizeForLog(job.Filename()))
	go s.consume(job, s.runner.Run(runCtx, job, settings))
	return nil
}

// consume is the relay activity: it drains one job's signal stream into
// the log sink and reports the completion to the supervisor loop. It
// terminates when the stream closes, i.e. after the final Done signal.
func (s *Supervisor) consume(job *domain.Job, signals <-chan domain.Signal) {
	var outputSize sql.NullInt64
	var doneErr error
	for sig := range signals {
		switch sig.Kind {
		case domain.SignalLine:
			s.sink.Append(sig.Line)
		case domain.SignalOutputSize:
			outputSize = sql.NullInt64{Int64: sig.OutputSize, Valid: true}
		case domain.SignalDone:
			doneErr = sig.Err
		}
	}
	s.completions <- completion{job: job, outputSize: outputSize, err: doneErr}
}

// Run is the supervisor loop. It reacts to enqueue wakes and job
// completions; auto-advance is an event here, not a flag polled on a
// redraw tick. Blocks until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	if n, err := s.queue.ResetStalled(ctx); err != nil {
		logger.Error.Printf("reset stalled jobs: %v", err)
	} else if n > 0 {
		logger.Info.Printf("reset %d stalled job(s) back to waiting", n)
	}

	// Pick up work persisted before this run.
	if err := s.StartNext(ctx); err != nil {
		logger.Error.Printf("start next: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			if err := s.StartNext(ctx); err != nil {
				logger.Error.Printf("start next: %v", err)
			}
		case c := <-s.completions:
			s.finish(ctx, c)
		}
	}
}

func (s *Supervisor) finish(ctx context.Context, c completion) {
	if c.err != nil {
		if err := s.queue.MarkFailed(ctx, c.job.ID, c.err.Error()); err != nil {
			logger.Error.Printf("mark job %s failed: %v", c.job.UUID, err)
		}
		logger.Warn.Printf("job %s failed: %v", c.job.UUID, c.err)
	} else {
		if err := s.queue.MarkDone(ctx, c.job.ID, c.outputSize); err != nil {
			logger.Error.Printf("mark job %s done: %v", c.job.UUID, err)
		}
		if c.outputSize.Valid {
			logger.Info.Printf("job %s done, output %d bytes", c.job.UUID, c.outputSize.Int64)
		} else {
			logger.Info.Printf("job %s done, output size unavailable", c.job.UUID)
		}
	}

	s.mu.Lock()
	s.busy = false
	s.advance = true
	s.mu.Unlock()

	if s.consumeAdvance() {
		if err := s.StartNext(ctx); err != nil {
			logger.Error.Printf("auto-advance: %v", err)
		}
	}
}

// consumeAdvance resets the auto-advance flag and reports whether it
// was armed. At most one caller observes true per completed job.
func (s *Supervisor) consumeAdvance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.advance {
		return false
	}
	s.advance = false
	return true
}

func (s *Supervisor) IsBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Supervisor) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// QueueStatus summarizes the queue for the API and CLI.
type QueueStatus struct {
	Busy       bool `json:"busy"`
	Waiting    int  `json:"waiting"`
	Processing int  `json:"processing"`
	Done       int  `json:"done"`
	Failed     int  `json:"failed"`
}

func (s *Supervisor) Status(ctx context.Context) (QueueStatus, error) {
	jobs, err := s.queue.List(ctx)
	if err != nil {
		return QueueStatus{}, err
	}
	status := QueueStatus{Busy: s.IsBusy()}
	for _, job := range jobs {
		switch job.Status {
		case domain.JobStatusWaiting:
			status.Waiting++
		case domain.JobStatusProcessing:
			status.Processing++
		case domain.JobStatusDone:
			status.Done++
		case domain.JobStatusFailed:
			status.Failed++
		}
	}
	return status, nil
}

func (s *Supervisor) Jobs(ctx context.Context) ([]*domain.Job, error) {
	return s.queue.List(ctx)
}

func (s *Supervisor) Job(ctx context.Context, uuid string) (*domain.Job, error) {
	return s.queue.Get(ctx, uuid)
}
