package auth

import (
	"context"
	"testing"
	"time"

	"bulletin/app/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	user := &models.User{ID: 7, Username: "alice", Role: models.RoleAdmin}

	token, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	got, err := issuer.Parse(token.Token)
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.IsAdmin())
}

func TestParseRejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	user := &models.User{ID: 1, Username: "alice", Role: models.RoleUser}

	otherKey, err := NewTokenIssuer("other", time.Minute).Issue(user)
	require.NoError(t, err)

	expired, err := NewTokenIssuer("secret", -time.Minute).Issue(user)
	require.NoError(t, err)

	stale := Claims{
		Username: "alice",
		Role:     models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "bulletin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	staleSigned, err := jwt.NewWithClaims(jwt.SigningMethodHS256, stale).SignedString([]byte("secret"))
	require.NoError(t, err)

	noSubject := Claims{
		Role: models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "bulletin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	noSubjectSigned, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noSubject).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong key", otherKey.Token},
		{"expired", staleSigned},
		{"missing subject", noSubjectSigned},
	}
	// A negative ttl falls back to the default, so that token is still valid.
	_, err = issuer.Parse(expired.Token)
	assert.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password1")
	require.NoError(t, err)
	assert.NotEqual(t, "password1", hash)

	assert.NoError(t, CheckPassword(hash, "password1"))
	assert.ErrorIs(t, CheckPassword(hash, "password2"), ErrBadCredentials)
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, UserFromContext(ctx))

	user := &models.User{ID: 3, Role: models.RoleUser}
	assert.Same(t, user, UserFromContext(WithUser(ctx, user)))
}
