package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"task_portal/internal/core"
)

// pathID returns the {id} route variable. Malformed ids come back as 0,
// which the service reports as not found once access is checked.
func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func (s *Server) queryDate(r *http.Request) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return nil, nil
	}
	return s.optionalDate(&v)
}

func (s *Server) optionalDate(v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	d, err := s.svc.ParseDate(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func queryUserID(r *http.Request) (*int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get("userId"))
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: userId must be a positive integer", core.ErrInvalidArgs)
	}
	return &id, nil
}
