package models

import (
	"errors"
	"time"
)

// ErrCrossPostParent is returned when a reply names a parent that lives under another post.
var ErrCrossPostParent = errors.New("parent comment belongs to a different post")

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	if c.ParentCommentID != nil && *c.ParentCommentID == c.ID && c.ID != 0 {
		return errors.New("comment cannot be its own parent")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate() {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.ModifiedAt.IsZero() {
		c.ModifiedAt = c.CreatedAt
	}
}

// Owner returns the id of the user who wrote the comment.
func (c *Comment) Owner() int {
	return c.UserID
}

// IsTopLevel reports whether the comment hangs directly under its post.
func (c *Comment) IsTopLevel() bool {
	return c.ParentCommentID == nil
}

// SetPost sets the parent post and updates the PostID
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}

	c.PostID = post.ID
	return nil
}

// SetParent registers the comment as a reply to parent.
func (c *Comment) SetParent(parent *Comment) error {
	if parent == nil {
		return errors.New("parent comment cannot be nil")
	}
	if parent.PostID != c.PostID {
		return ErrCrossPostParent
	}

	id := parent.ID
	c.ParentCommentID = &id
	return nil
}

// Apply copies the editable body onto the comment and bumps ModifiedAt.
// The parent link is fixed at creation and is not touched here.
func (c *Comment) Apply(req *CommentRequest, now time.Time) {
	c.Body = req.Body
	c.ModifiedAt = advance(c.ModifiedAt, now)
}

// NewComment builds a top-level comment on post owned by user.
func NewComment(req *CommentRequest, post *Post, user *User) (*Comment, error) {
	comment := &Comment{
		Body:     req.Body,
		UserID:   user.ID,
		Username: user.Username,
	}
	if err := comment.SetPost(post); err != nil {
		return nil, err
	}
	comment.BeforeCreate()
	return comment, nil
}
