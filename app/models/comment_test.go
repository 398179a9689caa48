package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommentValidation(t *testing.T) {
	self := 1
	tests := []struct {
		name    string
		comment *Comment
		wantErr bool
	}{
		{
			name: "valid comment",
			comment: &Comment{
				ID:        1,
				PostID:    1,
				UserID:    1,
				Body:      "This is a valid comment",
				CreatedAt: time.Now(),
			},
			wantErr: false,
		},
		{
			name: "missing post",
			comment: &Comment{
				ID:        1,
				UserID:    1,
				Body:      "This is a valid comment",
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "empty body",
			comment: &Comment{
				ID:        1,
				PostID:    1,
				UserID:    1,
				Body:      "",
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "own parent",
			comment: &Comment{
				ID:              1,
				PostID:          1,
				UserID:          1,
				ParentCommentID: &self,
				Body:            "loop",
				CreatedAt:       time.Now(),
			},
			wantErr: true,
		},
		{
			name: "zero creation time",
			comment: &Comment{
				ID:        1,
				PostID:    1,
				UserID:    1,
				Body:      "Valid body",
				CreatedAt: time.Time{},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.comment.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommentBeforeCreate(t *testing.T) {
	comment := &Comment{
		ID:     1,
		PostID: 1,
		Body:   "Test Comment",
	}

	assert.True(t, comment.CreatedAt.IsZero())
	comment.BeforeCreate()
	assert.False(t, comment.CreatedAt.IsZero())
	assert.True(t, comment.IsTopLevel())
}

func TestCommentSetPost(t *testing.T) {
	comment := &Comment{
		ID:   1,
		Body: "Test Comment",
	}

	t.Run("set valid post", func(t *testing.T) {
		post := &Post{
			ID:    1,
			Title: "Test Post",
			Body:  "Test Body",
		}

		err := comment.SetPost(post)
		assert.NoError(t, err)
		assert.Equal(t, post.ID, comment.PostID)
	})

	t.Run("set nil post", func(t *testing.T) {
		err := comment.SetPost(nil)
		assert.Error(t, err)
	})
}

func TestCommentSetParent(t *testing.T) {
	t.Run("same post", func(t *testing.T) {
		parent := &Comment{ID: 4, PostID: 1}
		child := &Comment{ID: 5, PostID: 1}

		err := child.SetParent(parent)
		assert.NoError(t, err)
		assert.False(t, child.IsTopLevel())
		assert.Equal(t, 4, *child.ParentCommentID)
	})

	t.Run("different post", func(t *testing.T) {
		parent := &Comment{ID: 4, PostID: 2}
		child := &Comment{ID: 5, PostID: 1}

		err := child.SetParent(parent)
		assert.ErrorIs(t, err, ErrCrossPostParent)
		assert.True(t, child.IsTopLevel())
	})

	t.Run("nil parent", func(t *testing.T) {
		child := &Comment{ID: 5, PostID: 1}
		assert.Error(t, child.SetParent(nil))
	})
}

func TestCommentApplyKeepsParent(t *testing.T) {
	parentID := 3
	comment := &Comment{ID: 4, PostID: 1, ParentCommentID: &parentID, Body: "old"}
	other := 9

	comment.Apply(&CommentRequest{Body: "new", ParentCommentID: &other}, time.Now())
	assert.Equal(t, "new", comment.Body)
	assert.Equal(t, 3, *comment.ParentCommentID)
}

func TestNewComment(t *testing.T) {
	user := &User{ID: 3, Username: "writer", Role: RoleUser}

	comment, err := NewComment(&CommentRequest{Body: "hello"}, &Post{ID: 9}, user)
	assert.NoError(t, err)
	assert.Equal(t, 9, comment.PostID)
	assert.Equal(t, 3, comment.Owner())
	assert.True(t, comment.IsTopLevel())
	assert.NoError(t, comment.Validate())

	_, err = NewComment(&CommentRequest{Body: "hello"}, nil, user)
	assert.Error(t, err)
}
