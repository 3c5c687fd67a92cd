package auth

import (
	"context"
	"time"

	"tendercrm/models"
)

// Session: проверенный пользователь текущего запроса.
type Session struct {
	UserID    int
	Email     string
	Role      models.Role
	TokenID   string
	ExpiresAt time.Time
}

func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

func SessionFromClaims(c *Claims) Session {
	s := Session{
		UserID:  c.UserID,
		Email:   c.Email,
		Role:    c.Role,
		TokenID: c.ID,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
