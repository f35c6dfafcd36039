package web

import (
	"net/http"

	"task_portal/internal/auth"
	"task_portal/internal/core"
)

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.ReadTasks) {
		return
	}

	date, err := s.queryDate(r)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	userID, err := queryUserID(r)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	tasks, err := s.svc.ListTasks(ctx, sessionFrom(r.Context()), core.TaskQuery{Date: date, UserID: userID})
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeJSON(w, tasks, http.StatusOK)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.WriteTask) {
		return
	}

	var in createTaskIn
	if err := s.decode(w, r, &in); err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	date, err := s.optionalDate(in.Date)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	t, err := s.svc.CreateTask(ctx, sessionFrom(r.Context()), core.NewTask{
		Date:     date,
		TaskName: in.TaskName,
		Plan:     in.Plan,
		Result:   in.Result,
	})
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeJSON(w, t, http.StatusCreated)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.WriteTask) {
		return
	}

	var in updateTaskIn
	if err := s.decode(w, r, &in); err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	date, err := s.optionalDate(in.Date)
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	t, err := s.svc.UpdateTask(ctx, sessionFrom(r.Context()), pathID(r), core.TaskPatch{
		Date:     date,
		TaskName: in.TaskName,
		Plan:     in.Plan,
		Result:   in.Result,
	})
	if err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeJSON(w, t, http.StatusOK)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, auth.WriteTask) {
		return
	}

	ctx, cancel := s.ctx(r)
	defer cancel()

	if err := s.svc.DeleteTask(ctx, sessionFrom(r.Context()), pathID(r)); err != nil {
		writeErr(s.log, w, r, err)
		return
	}
	writeOK(w)
}
