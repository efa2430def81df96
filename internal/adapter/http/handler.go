package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"squish/internal/domain"
	"squish/internal/infrastructure/logger"
	"squish/internal/service"
)

// SupervisorService is the queue surface the API exposes.
type SupervisorService interface {
	Enqueue(ctx context.Context, path string) (*domain.Job, error)
	StartNext(ctx context.Context) error
	Status(ctx context.Context) (service.QueueStatus, error)
	Jobs(ctx context.Context) ([]*domain.Job, error)
	Job(ctx context.Context, uuid string) (*domain.Job, error)
}

type Handlers struct {
	supervisor SupervisorService
	sink       *service.LogSink
	version    string
}

func NewHandlers(supervisor SupervisorService, sink *service.LogSink, version string) *Handlers {
	return &Handlers{
		supervisor: supervisor,
		sink:       sink,
		version:    version,
	}
}

// jobView is the wire shape of a job. Nullable columns surface as
// optional fields instead of sql.Null* wrappers.
type jobView struct {
	UUID        string     `json:"uuid"`
	SourcePath  string     `json:"source_path"`
	Filename    string     `json:"filename"`
	Status      string     `json:"status"`
	InputSize   int64      `json:"input_size"`
	OutputSize  *int64     `json:"output_size,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func viewOf(job *domain.Job) jobView {
	view := jobView{
		UUID:       job.UUID,
		SourcePath: job.SourcePath,
		Filename:   job.Filename(),
		Status:     string(job.Status),
		InputSize:  job.InputSize,
		Error:      job.ErrorMessage,
		CreatedAt:  job.CreatedAt,
	}
	if job.OutputSize.Valid {
		size := job.OutputSize.Int64
		view.OutputSize = &size
	}
	if job.StartedAt.Valid {
		t := job.StartedAt.Time
		view.StartedAt = &t
	}
	if job.CompletedAt.Valid {
		t := job.CompletedAt.Time
		view.CompletedAt = &t
	}
	return view
}

func viewsOf(jobs []*domain.Job) []jobView {
	views := make([]jobView, len(jobs))
	for i, job := range jobs {
		views[i] = viewOf(job)
	}
	return views
}

func (h *Handlers) CreateJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Path == "" {
			writeError(w, http.StatusBadRequest, "path is required")
			return
		}

		job, err := h.supervisor.Enqueue(r.Context(), req.Path)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, viewOf(job))
	}
}

// statusView wraps the queue counters with the daemon version.
type statusView struct {
	service.QueueStatus
	Version string `json:"version"`
}

func (h *Handlers) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.supervisor.StartNext(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		status, err := h.supervisor.Status(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, statusView{QueueStatus: status, Version: h.version})
	}
}

func (h *Handlers) ListJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := h.supervisor.Jobs(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, viewsOf(jobs))
	}
}

func (h *Handlers) GetJob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := h.supervisor.Job(r.Context(), r.PathValue("uuid"))
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, viewOf(job))
	}
}

func (h *Handlers) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := h.supervisor.Status(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, statusView{QueueStatus: status, Version: h.version})
	}
}

// Logs returns the buffered encoder lines newer than the since cursor.
func (h *Handlers) Logs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var since int64
		if raw := r.URL.Query().Get("since"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed < 0 {
				writeError(w, http.StatusBadRequest, "since must be a non-negative integer")
				return
			}
			since = parsed
		}
		lines := h.sink.Since(since)
		if lines == nil {
			lines = []service.LogLine{}
		}
		writeJSON(w, http.StatusOK, lines)
	}
}

func (h *Handlers) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": h.version,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
