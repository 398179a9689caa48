package services

import (
	"context"
	"testing"
	"time"

	"bulletin/app/auth"
	"bulletin/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	users := NewUserService(f.store, issuer, "letmein")

	t.Run("signup", func(t *testing.T) {
		user, err := users.Signup(ctx, &models.SignupRequest{Username: "alice", Password: "password1"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.NotEqual(t, "password1", user.PasswordHash)
	})

	t.Run("signup as admin", func(t *testing.T) {
		user, err := users.Signup(ctx, &models.SignupRequest{Username: "root", Password: "password1", AdminToken: "letmein"})
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())

		_, err = users.Signup(ctx, &models.SignupRequest{Username: "mallory", Password: "password1", AdminToken: "guess"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("signup validation", func(t *testing.T) {
		tests := []struct {
			name string
			req  models.SignupRequest
		}{
			{"short username", models.SignupRequest{Username: "abc", Password: "password1"}},
			{"uppercase username", models.SignupRequest{Username: "Alice", Password: "password1"}},
			{"short password", models.SignupRequest{Username: "bobby", Password: "short"}},
			{"long password", models.SignupRequest{Username: "bobby", Password: "waytoolongpassword"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := users.Signup(ctx, &tt.req)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := users.Signup(ctx, &models.SignupRequest{Username: "alice", Password: "password2"})
		assert.ErrorIs(t, err, ErrDuplicateUser)
	})

	t.Run("login", func(t *testing.T) {
		token, err := users.Login(ctx, &models.LoginRequest{Username: "alice", Password: "password1"})
		require.NoError(t, err)

		user, err := issuer.Parse(token.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, models.RoleUser, user.Role)

		_, err = users.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wrongpass"})
		assert.ErrorIs(t, err, ErrUnauthorized)
		_, err = users.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "password1"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	users := NewUserService(f.store, auth.NewTokenIssuer("secret", time.Hour), "")
	leaver := f.user(t, "leaver", models.RoleUser)
	stayer := f.user(t, "stayer", models.RoleUser)

	own := f.post(t, "own", leaver)
	f.comment(t, own.ID, "stayer on leaver", nil, stayer)

	kept := f.post(t, "kept", stayer)
	top := f.comment(t, kept.ID, "leaver on stayer", nil, leaver)
	f.comment(t, kept.ID, "reply to leaver", &top.ID, stayer)
	f.comment(t, kept.ID, "stayer alone", nil, stayer)
	_, err := f.likes.ToggleLikeOnPost(ctx, kept.ID, leaver)
	require.NoError(t, err)

	_, err = users.DeleteAccount(ctx, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	ack, err := users.DeleteAccount(ctx, leaver)
	require.NoError(t, err)
	assert.Equal(t, 200, ack.Status)

	_, err = f.posts.GetPost(ctx, own.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	view, err := f.posts.GetPost(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.LikeCount)
	assert.Equal(t, []string{"stayer alone"}, bodies(view.Comments))

	_, err = f.posts.CreatePost(ctx, &models.PostRequest{Title: "t", Body: "b"}, leaver)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = users.DeleteAccount(ctx, leaver)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
