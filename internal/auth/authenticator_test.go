package auth

import (
	"context"
	"testing"
	"time"

	"github.com/NordCoder/Classbell/internal/domain/user"
	"github.com/NordCoder/Classbell/internal/repository/memory"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func newTestAuthenticator(now time.Time) *Authenticator {
	users := memory.NewUserRepo(
		user.User{ID: 1, Username: "alice", IsActive: true},
		user.User{ID: 2, Username: "bob", IsActive: false},
	)
	return NewAuthenticator(users, Config{Secret: testSecret, Now: func() time.Time { return now }}, nil)
}

func TestResolve_ValidToken(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	a := newTestAuthenticator(now)

	tok, err := Sign(testSecret, 1, now, time.Minute)
	require.NoError(t, err)

	id := a.Resolve(context.Background(), tok)
	require.False(t, id.IsAnonymous())
	require.Equal(t, int64(1), id.UserID)
}

func TestResolve_SubjectFallback(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	a := newTestAuthenticator(now)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	require.Equal(t, int64(1), a.Resolve(context.Background(), tok).UserID)
}

func TestResolve_Anonymous(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	a := newTestAuthenticator(now)

	expired, err := Sign(testSecret, 1, now.Add(-time.Hour), time.Minute)
	require.NoError(t, err)
	foreign, err := Sign([]byte("other-secret"), 1, now, time.Minute)
	require.NoError(t, err)
	inactive, err := Sign(testSecret, 2, now, time.Minute)
	require.NoError(t, err)
	missing, err := Sign(testSecret, 42, now, time.Minute)
	require.NoError(t, err)
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID:    1,
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}).SignedString(testSecret)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{UserID: 1}).SignedString(testSecret)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":     "",
		"garbage":   "not.a.token",
		"expired":   expired,
		"signature": foreign,
		"inactive":  inactive,
		"missing":   missing,
		"refresh":   refresh,
		"no expiry": noExpiry,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			require.True(t, a.Resolve(context.Background(), tok).IsAnonymous())
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	require.Equal(t, "abc", BearerToken("Bearer abc"))
	require.Equal(t, "abc", BearerToken("bearer   abc "))
	require.Empty(t, BearerToken("Basic abc"))
	require.Empty(t, BearerToken(""))
}
