package services

import (
	"context"
	"testing"

	"bulletin/app/lock"
	"bulletin/app/models"
	"bulletin/app/repositories"
	"bulletin/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *mock.Store
	posts    *PostService
	comments *CommentService
	likes    *LikeService
}

func newFixture() *fixture {
	store := mock.NewStore()
	return &fixture{
		store:    store,
		posts:    NewPostService(store),
		comments: NewCommentService(store),
		likes:    NewLikeService(store, lock.NewLocalLocker()),
	}
}

// user registers an account directly in the store.
func (f *fixture) user(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Username: name, PasswordHash: "hash", Role: role}
	user.BeforeCreate()
	err := f.store.Update(context.Background(), func(tx repositories.Tx) error {
		return tx.Users().Create(user)
	})
	require.NoError(t, err)
	return user
}

// drop removes the account of user while callers may still hold its token.
func (f *fixture) drop(t *testing.T, user *models.User) {
	t.Helper()
	err := f.store.Update(context.Background(), func(tx repositories.Tx) error {
		return tx.Users().Delete(user.ID)
	})
	require.NoError(t, err)
}

func (f *fixture) post(t *testing.T, title string, actor *models.User) *models.PostView {
	t.Helper()
	view, err := f.posts.CreatePost(context.Background(), &models.PostRequest{Title: title, Body: "body"}, actor)
	require.NoError(t, err)
	return view
}

func (f *fixture) comment(t *testing.T, postID int, body string, parent *int, actor *models.User) *models.CommentView {
	t.Helper()
	view, err := f.comments.CreateComment(context.Background(), postID, &models.CommentRequest{Body: body, ParentCommentID: parent}, actor)
	require.NoError(t, err)
	return view
}

func bodies(views []*models.CommentView) []string {
	out := []string{}
	for _, v := range views {
		out = append(out, v.Body)
	}
	return out
}

func TestAuthorize(t *testing.T) {
	owner := &models.User{ID: 1, Role: models.RoleUser}
	other := &models.User{ID: 2, Role: models.RoleUser}
	admin := &models.User{ID: 3, Role: models.RoleAdmin}
	post := &models.Post{ID: 10, UserID: owner.ID}
	comment := &models.Comment{ID: 20, UserID: owner.ID}

	tests := []struct {
		name     string
		resource models.Owned
		actor    *models.User
		want     error
	}{
		{"owner may edit post", post, owner, nil},
		{"owner may edit comment", comment, owner, nil},
		{"stranger may not edit post", post, other, ErrForbidden},
		{"stranger may not edit comment", comment, other, ErrForbidden},
		{"admin may edit any post", post, admin, nil},
		{"admin may edit any comment", comment, admin, nil},
		{"anonymous is rejected", post, nil, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.resource, tt.actor)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

// TestBoardScenario walks one post through threading, likes and a rejected edit.
func TestBoardScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u1 := f.user(t, "userone", models.RoleUser)
	u2 := f.user(t, "usertwo", models.RoleUser)
	u3 := f.user(t, "userthree", models.RoleUser)

	post, err := f.posts.CreatePost(ctx, &models.PostRequest{Title: "A", Body: "b"}, u1)
	require.NoError(t, err)
	assert.Equal(t, 1, post.ID)

	c1 := f.comment(t, post.ID, "c1", nil, u2)
	assert.Nil(t, c1.ParentCommentID)

	c2 := f.comment(t, post.ID, "c2", &c1.ID, u3)
	require.NotNil(t, c2.ParentCommentID)
	assert.Equal(t, c1.ID, *c2.ParentCommentID)

	got, err := f.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, bodies(got.Comments))
	assert.Equal(t, []string{"c2"}, bodies(got.Comments[0].Children))

	liked, err := f.likes.ToggleLikeOnPost(ctx, post.ID, u2)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.LikeCount)

	unliked, err := f.likes.ToggleLikeOnPost(ctx, post.ID, u2)
	require.NoError(t, err)
	assert.Equal(t, 0, unliked.LikeCount)

	_, err = f.posts.UpdatePost(ctx, post.ID, &models.PostRequest{Title: "X", Body: "y"}, u3)
	assert.ErrorIs(t, err, ErrForbidden)
}
