package web

import (
	"net/http"
	"time"

	"task_portal/internal/auth"
	"task_portal/internal/models"
)

// authorize runs the access check before a handler reads its input, so
// callers without access learn nothing about validation rules.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, action auth.Action) bool {
	if err := auth.Authorize(sessionFrom(r.Context()), action, auth.Resource{}); err != nil {
		writeErr(s.log, w, r, err)
		return false
	}
	return true
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in loginIn
	if err := s.decode(w, r, &in); err != nil {
		writeErr(s.log, w, r, err)
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	u, err := s.svc.Login(ctx, in.Username, in.Password)
	if err != nil {
		s.log.Info("login failed", "username", in.Username, "request_id", requestIDFrom(r.Context()))
		writeErr(s.log, w, r, err)
		return
	}

	if err := s.sessions.Create(w, r, u.ID, u.Username, u.Role); err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeJSON(w, u, http.StatusOK)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(w, r); err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeOK(w)
}

type meOut struct {
	models.User
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	ctx, cancel := s.ctx(r)
	defer cancel()

	u, err := s.svc.CurrentUser(ctx, sess)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeJSON(w, meOut{User: u, ExpiresAt: sess.ExpiresAt}, http.StatusOK)
}
