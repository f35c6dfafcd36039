// Package session binds auth sessions to a browser cookie. Nothing is
// kept server-side: the cookie value is the signed token itself, so a
// session can only be revoked early by rotating the signing secret.
package session

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"task_portal/internal/auth"
	"task_portal/internal/clock"
	"task_portal/internal/models"
)

const DefaultCookieName = "session"

type Options struct {
	CookieName string
	// Secure marks the cookie HTTPS-only. Off in local development.
	Secure bool
}

type Manager struct {
	store *sessions.CookieStore
	name  string
	clock clock.Clock
}

func NewManager(tokens *auth.TokenCodec, clk clock.Clock, opts Options) *Manager {
	name := opts.CookieName
	if name == "" {
		name = DefaultCookieName
	}

	store := &sessions.CookieStore{
		Codecs: []securecookie.Codec{tokenCookieCodec{tokens: tokens}},
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   int(auth.SessionTTL / time.Second),
			HttpOnly: true,
			Secure:   opts.Secure,
			SameSite: http.SameSiteLaxMode,
		},
	}

	return &Manager{store: store, name: name, clock: clk}
}

func (m *Manager) CookieName() string { return m.name }

// Create issues a fresh session for the user and writes it as the
// session cookie, replacing whatever cookie the browser held.
func (m *Manager) Create(w http.ResponseWriter, r *http.Request, userID int64, username string, role models.Role) error {
	// a cookie that fails to decode is simply overwritten
	sess, _ := m.store.Get(r, m.name)

	sess.Values = valuesFromSession(auth.Session{
		UserID:    userID,
		Username:  username,
		Role:      role,
		ExpiresAt: m.clock.Now().Add(auth.SessionTTL).Truncate(time.Second),
	})
	sess.Options.MaxAge = int(auth.SessionTTL / time.Second)

	return sess.Save(r, w)
}

// Get returns the request's session, or nil when there is no valid one.
func (m *Manager) Get(r *http.Request) *auth.Session {
	sess, err := m.store.Get(r, m.name)
	if err != nil || sess.IsNew {
		return nil
	}
	return sessionFromValues(sess.Values)
}

// Delete expires the session cookie. Deleting an absent session is not
// an error.
func (m *Manager) Delete(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)

	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1

	return sess.Save(r, w)
}
