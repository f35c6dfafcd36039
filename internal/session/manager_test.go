package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task_portal/internal/auth"
	"task_portal/internal/clock"
	"task_portal/internal/models"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newManager(t *testing.T, secure bool) (*Manager, *clock.FakeClock) {
	t.Helper()
	clk := clock.Fake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	return NewManager(auth.NewTokenCodec(testSecret, clk), clk, Options{Secure: secure}), clk
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no %q cookie in response", name)
	return nil
}

func login(t *testing.T, m *Manager) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := m.Create(rec, req, 42, "alice", models.RoleStaff); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return sessionCookie(t, rec, m.CookieName())
}

func requestWith(c *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if c != nil {
		req.AddCookie(c)
	}
	return req
}

func TestCreateSetsCookieAttributes(t *testing.T) {
	for _, secure := range []bool{false, true} {
		m, _ := newManager(t, secure)
		c := login(t, m)

		if c.Name != DefaultCookieName {
			t.Fatalf("cookie name = %q", c.Name)
		}
		if !c.HttpOnly {
			t.Fatal("cookie is not HttpOnly")
		}
		if c.SameSite != http.SameSiteLaxMode {
			t.Fatalf("SameSite = %v, want Lax", c.SameSite)
		}
		if c.Path != "/" {
			t.Fatalf("Path = %q, want /", c.Path)
		}
		if c.MaxAge != 86400 {
			t.Fatalf("MaxAge = %d, want 86400", c.MaxAge)
		}
		if c.Secure != secure {
			t.Fatalf("Secure = %v, want %v", c.Secure, secure)
		}
		if c.Value == "" {
			t.Fatal("empty cookie value")
		}
	}
}

func TestGetReadsSession(t *testing.T) {
	m, clk := newManager(t, false)
	c := login(t, m)

	s := m.Get(requestWith(c))
	if s == nil {
		t.Fatal("Get returned nil for a fresh session")
	}
	if s.UserID != 42 || s.Username != "alice" || s.Role != models.RoleStaff {
		t.Fatalf("Get = %+v", *s)
	}
	if want := clk.Now().Add(auth.SessionTTL); !s.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", s.ExpiresAt, want)
	}
}

func TestGetWithoutOrWithBadCookie(t *testing.T) {
	m, _ := newManager(t, false)

	if s := m.Get(requestWith(nil)); s != nil {
		t.Fatalf("Get without cookie = %+v", *s)
	}

	c := login(t, m)
	c.Value = "x" + c.Value[1:]
	if s := m.Get(requestWith(c)); s != nil {
		t.Fatalf("Get with tampered cookie = %+v", *s)
	}

	other, _ := newManager(t, false)
	foreign := login(t, other)
	foreign.Value = "garbage"
	if s := m.Get(requestWith(foreign)); s != nil {
		t.Fatalf("Get with garbage cookie = %+v", *s)
	}
}

func TestSessionExpires(t *testing.T) {
	m, clk := newManager(t, false)
	c := login(t, m)

	clk.Advance(auth.SessionTTL)
	if s := m.Get(requestWith(c)); s != nil {
		t.Fatalf("expired session still readable: %+v", *s)
	}
}

func TestDeleteExpiresCookie(t *testing.T) {
	m, _ := newManager(t, false)
	c := login(t, m)

	rec := httptest.NewRecorder()
	if err := m.Delete(rec, requestWith(c)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	cleared := sessionCookie(t, rec, m.CookieName())
	if cleared.MaxAge >= 0 {
		t.Fatalf("deleted cookie MaxAge = %d, want negative", cleared.MaxAge)
	}
	if cleared.Value != "" {
		t.Fatalf("deleted cookie value = %q, want empty", cleared.Value)
	}

	// deleting without any session is fine too
	rec = httptest.NewRecorder()
	if err := m.Delete(rec, requestWith(nil)); err != nil {
		t.Fatalf("Delete without session: %v", err)
	}
}

func TestCreateOverwritesPreviousSession(t *testing.T) {
	m, _ := newManager(t, false)
	first := login(t, m)

	rec := httptest.NewRecorder()
	if err := m.Create(rec, requestWith(first), 1, "root", models.RoleAdmin); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second := sessionCookie(t, rec, m.CookieName())

	s := m.Get(requestWith(second))
	if s == nil || s.UserID != 1 || s.Role != models.RoleAdmin {
		t.Fatalf("Get after overwrite = %+v", s)
	}
}
