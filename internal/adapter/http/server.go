package http

import (
	"net/http"

	"squish/internal/service"
)

type Server struct {
	mux        *http.ServeMux
	handlers   *Handlers
	sseHandler *SSEHandler
	tokenHash  string
}

func NewServer(supervisor SupervisorService, sink *service.LogSink, tokenHash, version string) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		handlers:   NewHandlers(supervisor, sink, version),
		sseHandler: NewSSEHandler(sink),
		tokenHash:  tokenHash,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return AuthMiddleware(s.tokenHash, next)
	}

	s.mux.HandleFunc("POST /api/jobs", auth(s.handlers.CreateJob()))
	s.mux.HandleFunc("POST /api/start", auth(s.handlers.Start()))
	s.mux.HandleFunc("GET /api/jobs", auth(s.handlers.ListJobs()))
	s.mux.HandleFunc("GET /api/jobs/{uuid}", auth(s.handlers.GetJob()))
	s.mux.HandleFunc("GET /api/status", auth(s.handlers.Status()))
	s.mux.HandleFunc("GET /api/logs", auth(s.handlers.Logs()))
	s.mux.HandleFunc("GET /api/logs/stream", auth(s.sseHandler.Stream()))

	s.mux.HandleFunc("GET /healthz", s.handlers.Healthz())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
