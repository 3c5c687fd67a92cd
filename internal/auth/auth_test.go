package auth

import (
	"context"
	"testing"
	"time"

	"tendercrm/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *TokenManager {
	m, err := NewTokenManager("test-secret", time.Hour, nil)
	require.NoError(t, err)
	return m
}

func TestIssueVerify_SameIdentity(t *testing.T) {
	m := newManager(t)
	user := models.User{ID: 7, Email: "admin@example.com", Role: models.RoleAdmin}

	token, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, 7, claims.UserID)
	require.Equal(t, "admin@example.com", claims.Email)
	require.Equal(t, models.RoleAdmin, claims.Role)
	require.Equal(t, "7", claims.Subject)
	require.NotEmpty(t, claims.ID)

	s := SessionFromClaims(claims)
	require.True(t, s.IsAdmin())
	require.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 5*time.Second)
}

func TestVerify_Rejects(t *testing.T) {
	m := newManager(t)
	user := models.User{ID: 1, Email: "u@example.com", Role: models.RoleUser}

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify(context.Background(), "not-a-token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokenManager("another-secret", time.Hour, nil)
		require.NoError(t, err)
		token, err := other.Issue(user)
		require.NoError(t, err)
		_, err = m.Verify(context.Background(), token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old := newManager(t)
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := old.Issue(user)
		require.NoError(t, err)
		_, err = m.Verify(context.Background(), token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		claims := &Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = m.Verify(context.Background(), token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRevoke(t *testing.T) {
	m := newManager(t)
	token, err := m.Issue(models.User{ID: 3, Email: "x@example.com", Role: models.RoleUser})
	require.NoError(t, err)

	claims, err := m.Verify(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(context.Background(), SessionFromClaims(claims)))
	_, err = m.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryRevoker_Expiry(t *testing.T) {
	r := NewMemoryRevoker()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "a", now.Add(time.Minute)))
	revoked, err := r.IsRevoked(ctx, "a")
	require.NoError(t, err)
	require.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "a")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "b", now.Add(time.Minute)))
	require.NotContains(t, r.revoked, "a")
}

func TestNewTokenManager_NoSecret(t *testing.T) {
	_, err := NewTokenManager("  ", time.Hour, nil)
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	require.NoError(t, err)
	require.True(t, CheckPassword(hash, "secret1"))
	require.False(t, CheckPassword(hash, "secret2"))
	require.Equal(t, "$2a$10$", hash[:7])
}

func TestBearerToken(t *testing.T) {
	require.Equal(t, "abc", BearerToken("Bearer abc"))
	require.Equal(t, "abc", BearerToken("bearer abc"))
	require.Equal(t, "", BearerToken("abc"))
	require.Equal(t, "", BearerToken(""))
	require.Equal(t, "", BearerToken("Basic abc"))
}

func TestSessionContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)

	ctx := WithSession(context.Background(), Session{UserID: 5, Role: models.RoleUser})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, 5, s.UserID)
	require.False(t, s.IsAdmin())
}
