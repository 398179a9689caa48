package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLike(t *testing.T) {
	t.Run("post like", func(t *testing.T) {
		like := NewLike(PostTarget(3), 1)
		assert.NoError(t, like.Validate())
		assert.Nil(t, like.CommentID)
		assert.Equal(t, PostTarget(3), like.Target())
	})

	t.Run("comment like", func(t *testing.T) {
		like := NewLike(CommentTarget(8), 1)
		assert.NoError(t, like.Validate())
		assert.Nil(t, like.PostID)
		assert.Equal(t, CommentTarget(8), like.Target())
	})
}

func TestLikeValidation(t *testing.T) {
	id := 1
	tests := []struct {
		name    string
		like    *Like
		wantErr bool
	}{
		{name: "no target", like: &Like{UserID: 1}, wantErr: true},
		{name: "both targets", like: &Like{UserID: 1, PostID: &id, CommentID: &id}, wantErr: true},
		{name: "no owner", like: &Like{PostID: &id}, wantErr: true},
		{name: "post only", like: &Like{UserID: 1, PostID: &id}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.like.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "post:2", PostTarget(2).String())
	assert.Equal(t, "comment:5", CommentTarget(5).String())
}
