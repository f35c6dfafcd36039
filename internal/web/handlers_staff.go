package web

import (
	"net/http"

	"task_portal/internal/auth"
	"task_portal/internal/core"
	"task_portal/internal/models"
)

func (s *Server) listStaff(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.ManageStaff) {
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	users, err := s.svc.ListStaff(ctx, sessionFrom(r.Context()))
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeJSON(w, users, http.StatusOK)
}

func (s *Server) createStaff(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.ManageStaff) {
		return
	}

	var in createStaffIn
	if err := s.decode(w, r, &in); err != nil {
		writeErr(s.log, w, r, err)
		return
	}

	nu := core.NewUser{Username: in.Username, Password: in.Password}
	if in.Position != nil && *in.Position != "" {
		p := models.Position(*in.Position)
		nu.Position = &p
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	u, err := s.svc.CreateStaff(ctx, sessionFrom(r.Context()), nu)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeJSON(w, u, http.StatusCreated)
}

func (s *Server) updateStaff(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.ManageStaff) {
		return
	}

	var in updateStaffIn
	if err := s.decode(w, r, &in); err != nil {
		writeErr(s.log, w, r, err)
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	u, err := s.svc.UpdateStaff(ctx, sessionFrom(r.Context()), pathID(r), core.StaffPatch{
		Username: in.Username,
		Password: in.Password,
		Position: in.Position,
	})
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeJSON(w, u, http.StatusOK)
}

func (s *Server) deleteStaff(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.ManageStaff) {
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	if err := s.svc.DeleteStaff(ctx, sessionFrom(r.Context()), pathID(r)); err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeOK(w)
}
