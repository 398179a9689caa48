package models

import (
	"errors"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.ModifiedAt.IsZero() {
		p.ModifiedAt = p.CreatedAt
	}
}

// Owner returns the id of the user who wrote the post.
func (p *Post) Owner() int {
	return p.UserID
}

// Apply copies the editable fields of req onto the post and bumps ModifiedAt.
func (p *Post) Apply(req *PostRequest, now time.Time) {
	p.Title = req.Title
	p.Body = req.Body
	p.ModifiedAt = advance(p.ModifiedAt, now)
}

// NewPost builds a post owned by user from req.
func NewPost(req *PostRequest, user *User) *Post {
	post := &Post{
		Title:    req.Title,
		Body:     req.Body,
		UserID:   user.ID,
		Username: user.Username,
	}
	post.BeforeCreate()
	return post
}

// advance returns now, or one nanosecond past prev when the clock has not moved forward.
func advance(prev, now time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}
