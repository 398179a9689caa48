package repositories

import (
	"context"

	"bulletin/app/models"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	GetByIDAndOwner(id, userID int) (*models.Post, error)
	ListOrderByModifiedDesc() ([]*models.Post, error)
	ListByOwner(userID int) ([]*models.Post, error)
	Update(post *models.Post) error
	Delete(id int) error
	DeleteAllByOwner(userID int) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	GetByIDAndOwner(id, userID int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	ListChildren(parentID int) ([]*models.Comment, error)
	ListByOwner(userID int) ([]*models.Comment, error)
	Update(comment *models.Comment) error
	Delete(id int) error
	DeleteAllByOwner(userID int) error
}

// LikeRepository defines the interface for like data access. At most one like
// exists per (target, user); Create reports ErrDuplicate otherwise.
type LikeRepository interface {
	Create(like *models.Like) error
	GetByTargetAndOwner(target models.Target, userID int) (*models.Like, error)
	CountByTarget(target models.Target) (int, error)
	Delete(id int) error
	DeleteAllByTarget(target models.Target) error
	DeleteAllByOwner(userID int) error
}

// UserRepository defines the interface for account data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Delete(id int) error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Posts() PostRepository
	Comments() CommentRepository
	Likes() LikeRepository
	Users() UserRepository
}

// Store runs functions inside transactions. Update commits when fn returns nil
// and discards every write otherwise.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
