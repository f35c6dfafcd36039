// Package coretest provides an in-memory core.Store for tests.
package coretest

import (
	"context"
	"sort"
	"sync"
	"time"

	"task_portal/internal/core"
	"task_portal/internal/models"
)

// MemoryStore keeps everything in maps and enforces the same
// uniqueness rules as the SQL stores.
type MemoryStore struct {
	mu sync.Mutex

	nextID  int64
	users   map[int64]models.User
	tasks   map[int64]models.Task
	reports map[int64]models.DailyReport
}

var _ core.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[int64]models.User),
		tasks:   make(map[int64]models.Task),
		reports: make(map[int64]models.DailyReport),
	}
}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// Users

func (m *MemoryStore) CreateUser(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return models.User{}, core.ErrUsernameTaken
		}
	}
	u.ID = m.id()
	m.users[u.ID] = copyUser(u)
	return copyUser(u), nil
}

func (m *MemoryStore) GetUser(_ context.Context, id int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, core.ErrNotFound
	}
	return copyUser(u), nil
}

func (m *MemoryStore) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return models.User{}, core.ErrNotFound
}

func (m *MemoryStore) ListUsers(_ context.Context, role models.Role) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		if role == "" || u.Role == role {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *MemoryStore) UpdateUser(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.ID]; !ok {
		return models.User{}, core.ErrNotFound
	}
	for id, existing := range m.users {
		if id != u.ID && existing.Username == u.Username {
			return models.User{}, core.ErrUsernameTaken
		}
	}
	m.users[u.ID] = copyUser(u)
	return copyUser(u), nil
}

func (m *MemoryStore) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.users, id)
	for tid, t := range m.tasks {
		if t.UserID == id {
			delete(m.tasks, tid)
		}
	}
	for rid, r := range m.reports {
		if r.UserID == id {
			delete(m.reports, rid)
		}
	}
	return nil
}

// Tasks

func (m *MemoryStore) CreateTask(_ context.Context, t models.Task) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[t.UserID]; !ok {
		return models.Task{}, core.ErrNotFound
	}
	t.ID = m.id()
	m.tasks[t.ID] = t
	return t, nil
}

func (m *MemoryStore) GetTask(_ context.Context, id int64) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return models.Task{}, core.ErrNotFound
	}
	return t, nil
}

func (m *MemoryStore) ListTasks(_ context.Context, f core.TaskFilter) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Task, 0)
	for _, t := range m.tasks {
		if f.UserID != nil && t.UserID != *f.UserID {
			continue
		}
		if f.Day != nil && !f.Day.Contains(t.Date) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) CountTasks(_ context.Context, userID int64, day core.DayRange) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tasks {
		if t.UserID == userID && day.Contains(t.Date) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, t models.Task) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[t.ID]; !ok {
		return models.Task{}, core.ErrNotFound
	}
	m.tasks[t.ID] = t
	return t, nil
}

func (m *MemoryStore) DeleteTask(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

// Reports

func (m *MemoryStore) FindReport(_ context.Context, userID int64, day core.DayRange) (models.DailyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.reports {
		if r.UserID == userID && day.Contains(r.Date) {
			return copyReport(r), nil
		}
	}
	return models.DailyReport{}, core.ErrNotFound
}

func (m *MemoryStore) CreateReport(_ context.Context, r models.DailyReport) (models.DailyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.reports {
		if existing.UserID == r.UserID && existing.Date.Equal(r.Date) {
			return models.DailyReport{}, core.ErrReportConflict
		}
	}
	r.ID = m.id()
	m.reports[r.ID] = copyReport(r)
	return copyReport(r), nil
}

func (m *MemoryStore) MarkReportSubmitted(_ context.Context, id int64, at time.Time) (models.DailyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reports[id]
	if !ok {
		return models.DailyReport{}, core.ErrNotFound
	}
	r.Submitted = true
	r.SubmittedAt = &at
	m.reports[id] = r
	return copyReport(r), nil
}

func (m *MemoryStore) DeleteReport(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reports[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}

func (m *MemoryStore) ListReports(_ context.Context, f core.ReportFilter) ([]models.ReportEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.ReportEntry, 0)
	for _, r := range m.reports {
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		if f.Day != nil && !f.Day.Contains(r.Date) {
			continue
		}
		entry := models.ReportEntry{DailyReport: copyReport(r)}
		if u, ok := m.users[r.UserID]; ok {
			summary := copyUser(u).Summary()
			entry.User = &summary
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if f.Order == core.OrderByDate {
			if !a.Date.Equal(b.Date) {
				return a.Date.After(b.Date)
			}
			return a.ID > b.ID
		}
		at, bt := submittedAt(a.DailyReport), submittedAt(b.DailyReport)
		if !at.Equal(bt) {
			return at.After(bt)
		}
		return a.ID > b.ID
	})
	return out, nil
}

// Count reports how many rows each table holds.
func (m *MemoryStore) Count() (users, tasks, reports int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), len(m.tasks), len(m.reports)
}

func submittedAt(r models.DailyReport) time.Time {
	if r.SubmittedAt == nil {
		return time.Time{}
	}
	return *r.SubmittedAt
}

func copyUser(u models.User) models.User {
	if u.Position != nil {
		p := *u.Position
		u.Position = &p
	}
	return u
}

func copyReport(r models.DailyReport) models.DailyReport {
	if r.SubmittedAt != nil {
		at := *r.SubmittedAt
		r.SubmittedAt = &at
	}
	return r
}
