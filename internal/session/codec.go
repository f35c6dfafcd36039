package session

import (
	"errors"
	"time"

	"task_portal/internal/auth"
	"task_portal/internal/models"
)

var (
	errInvalidToken     = errors.New("session: invalid token")
	errUnsupportedValue = errors.New("session: unsupported value type")
)

const (
	userIDKey    = "userId"
	usernameKey  = "username"
	roleKey      = "role"
	expiresAtKey = "expiresAt"
)

// tokenCookieCodec adapts auth.TokenCodec to securecookie.Codec so the
// sessions cookie store writes our signed token as the cookie value.
type tokenCookieCodec struct {
	tokens *auth.TokenCodec
}

func (c tokenCookieCodec) Encode(_ string, value interface{}) (string, error) {
	values, ok := value.(map[interface{}]interface{})
	if !ok {
		return "", errUnsupportedValue
	}
	s := sessionFromValues(values)
	if s == nil {
		// cleared session, the cookie is being deleted
		return "", nil
	}
	return c.tokens.Encode(*s)
}

func (c tokenCookieCodec) Decode(_ string, value string, dst interface{}) error {
	s := c.tokens.Decode(value)
	if s == nil {
		return errInvalidToken
	}
	values, ok := dst.(*map[interface{}]interface{})
	if !ok {
		return errUnsupportedValue
	}
	*values = valuesFromSession(*s)
	return nil
}

func valuesFromSession(s auth.Session) map[interface{}]interface{} {
	return map[interface{}]interface{}{
		userIDKey:    s.UserID,
		usernameKey:  s.Username,
		roleKey:      s.Role,
		expiresAtKey: s.ExpiresAt,
	}
}

func sessionFromValues(values map[interface{}]interface{}) *auth.Session {
	userID, ok := values[userIDKey].(int64)
	if !ok {
		return nil
	}
	username, ok := values[usernameKey].(string)
	if !ok {
		return nil
	}
	role, ok := values[roleKey].(models.Role)
	if !ok {
		return nil
	}
	expiresAt, ok := values[expiresAtKey].(time.Time)
	if !ok {
		return nil
	}
	return &auth.Session{UserID: userID, Username: username, Role: role, ExpiresAt: expiresAt}
}
