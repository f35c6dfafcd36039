package auth

import (
	"crypto/subtle"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"task_portal/internal/clock"
	"task_portal/internal/models"
)

// SessionTTL is how long an issued session stays valid.
const SessionTTL = 24 * time.Hour

// Session is the identity carried by a session token.
type Session struct {
	UserID    int64       `json:"userId"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

type claims struct {
	UserID   int64       `json:"userId"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec turns sessions into HS256-signed JWTs and back.
type TokenCodec struct {
	secret []byte
	clock  clock.Clock
	parser *jwt.Parser
}

func NewTokenCodec(secret []byte, clk clock.Clock) *TokenCodec {
	return &TokenCodec{
		secret: secret,
		clock:  clk,
		// expiry is checked against the injected clock in Decode
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// Encode signs s. The token expires at s.ExpiresAt, truncated to the
// second.
func (c *TokenCodec) Encode(s Session) (string, error) {
	cl := claims{
		UserID:   s.UserID,
		Username: s.Username,
		Role:     s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(s.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(c.clock.Now()),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
}

// Decode returns the session carried by token, or nil when the token
// is missing, malformed, badly signed or expired. The cause is not
// reported.
func (c *TokenCodec) Decode(token string) *Session {
	if token == "" {
		return nil
	}

	var cl claims
	parsed, err := c.parser.ParseWithClaims(token, &cl, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil
	}

	// base64url tolerates non-zero trailing bits, so a signature can be
	// altered without changing its decoded bytes. Only the canonical
	// encoding is accepted.
	parts := strings.Split(token, ".")
	want, err := jwt.SigningMethodHS256.Sign(parts[0]+"."+parts[1], c.secret)
	if err != nil || subtle.ConstantTimeCompare([]byte(want), []byte(parts[2])) != 1 {
		return nil
	}

	if cl.ExpiresAt == nil || !c.clock.Now().Before(cl.ExpiresAt.Time) {
		return nil
	}
	if cl.UserID <= 0 || !cl.Role.Valid() {
		return nil
	}

	return &Session{
		UserID:    cl.UserID,
		Username:  cl.Username,
		Role:      cl.Role,
		ExpiresAt: cl.ExpiresAt.Time,
	}
}
