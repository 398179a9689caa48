package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs the struct tag rules on any model or request payload.
func Validate(v interface{}) error {
	return validate.Struct(v)
}

// Role is the privilege level carried by an authenticated user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Owned is implemented by every resource that has exactly one owning user.
type Owned interface {
	Owner() int
}

// User is an account that can own posts, comments and likes.
type User struct {
	ID           int       `json:"id" validate:"gte=0"`
	Username     string    `json:"username" validate:"required,min=4,max=10,alphanum,lowercase"`
	PasswordHash string    `json:"passwordHash" validate:"required"`
	Role         Role      `json:"role" validate:"required,oneof=USER ADMIN"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Post represents a board post. Comments are stored separately and keyed by PostID.
type Post struct {
	ID         int       `json:"id" validate:"gte=0"`
	Title      string    `json:"title" validate:"required,max=100"`
	Body       string    `json:"body" validate:"required,max=5000"`
	UserID     int       `json:"userId" validate:"required,gt=0"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Comment represents a comment on a post. A nil ParentCommentID marks a top-level comment.
type Comment struct {
	ID              int       `json:"id" validate:"gte=0"`
	PostID          int       `json:"postId" validate:"required,gt=0"`
	ParentCommentID *int      `json:"parentCommentId,omitempty" validate:"omitempty,gt=0"`
	Body            string    `json:"body" validate:"required,max=1000"`
	UserID          int       `json:"userId" validate:"required,gt=0"`
	Username        string    `json:"username"`
	CreatedAt       time.Time `json:"createdAt"`
	ModifiedAt      time.Time `json:"modifiedAt"`
}

// TargetKind names the kind of content a like points at.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Target identifies one likeable post or comment.
type Target struct {
	Kind TargetKind
	ID   int
}

// Like records that a user likes exactly one post or exactly one comment.
type Like struct {
	ID        int       `json:"id" validate:"gte=0"`
	PostID    *int      `json:"postId,omitempty"`
	CommentID *int      `json:"commentId,omitempty"`
	UserID    int       `json:"userId" validate:"required,gt=0"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostRequest is the client payload for creating or updating a post.
type PostRequest struct {
	Title string `json:"title" validate:"required,max=100"`
	Body  string `json:"body" validate:"required,max=5000"`
}

// CommentRequest is the client payload for creating or updating a comment.
type CommentRequest struct {
	Body            string `json:"body" validate:"required,max=1000"`
	ParentCommentID *int   `json:"parentCommentId" validate:"omitempty,gt=0"`
}

// SignupRequest is the client payload for creating an account.
type SignupRequest struct {
	Username   string `json:"username" validate:"required,min=4,max=10,alphanum,lowercase"`
	Password   string `json:"password" validate:"required,min=8,max=15,printascii"`
	AdminToken string `json:"adminToken"`
}

// LoginRequest is the client payload for obtaining a token.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
