// Package web is the JSON HTTP API of the portal.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"task_portal/internal/core"
	"task_portal/internal/session"
)

// DefaultTimeout bounds the store work of a single request.
const DefaultTimeout = 5 * time.Second

type Server struct {
	log      *slog.Logger
	svc      *core.Service
	sessions *session.Manager
	timeout  time.Duration
	validate *payloadValidator
}

func NewServer(log *slog.Logger, svc *core.Service, sessions *session.Manager, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Server{
		log:      log,
		svc:      svc,
		sessions: sessions,
		timeout:  timeout,
		validate: newValidator(),
	}
}

// Handler returns the router wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	// Auth
	r.HandleFunc("/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.logout).Methods(http.MethodPost)
	r.HandleFunc("/me", s.me).Methods(http.MethodGet)

	// Staff
	r.HandleFunc("/staff", s.listStaff).Methods(http.MethodGet)
	r.HandleFunc("/staff", s.createStaff).Methods(http.MethodPost)
	r.HandleFunc("/staff/{id}", s.updateStaff).Methods(http.MethodPut)
	r.HandleFunc("/staff/{id}", s.deleteStaff).Methods(http.MethodDelete)

	// Tasks
	r.HandleFunc("/tasks", s.listTasks).Methods(http.MethodGet)
	r.HandleFunc("/tasks", s.createTask).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}", s.updateTask).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id}", s.deleteTask).Methods(http.MethodDelete)

	// Reports
	r.HandleFunc("/reports", s.listReports).Methods(http.MethodGet)
	r.HandleFunc("/reports", s.submitReport).Methods(http.MethodPost)
	r.HandleFunc("/reports", s.withdrawReport).Methods(http.MethodDelete)
	r.HandleFunc("/reports/pending", s.pendingReports).Methods(http.MethodGet)
	r.HandleFunc("/reports/export", s.exportReports).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return requestID(s.loadSession(s.accessLog(s.recoverer(r))))
}

func (s *Server) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()

	if err := s.svc.Ping(ctx); err != nil {
		s.log.Error("store ping failed", "error", err)
		writeError(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{"status": "ok"}, http.StatusOK)
}
