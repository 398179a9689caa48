package models

import (
	"errors"
	"fmt"
	"time"
)

// NewLike builds a like by user on target.
func NewLike(target Target, userID int) *Like {
	id := target.ID
	like := &Like{UserID: userID, CreatedAt: time.Now()}
	switch target.Kind {
	case TargetPost:
		like.PostID = &id
	case TargetComment:
		like.CommentID = &id
	}
	return like
}

// Validate checks that exactly one target is set.
func (l *Like) Validate() error {
	if err := validate.Struct(l); err != nil {
		return err
	}
	if (l.PostID == nil) == (l.CommentID == nil) {
		return errors.New("like must target exactly one post or comment")
	}
	return nil
}

// Owner returns the id of the user who placed the like.
func (l *Like) Owner() int {
	return l.UserID
}

// Target returns the post or comment the like points at.
func (l *Like) Target() Target {
	if l.PostID != nil {
		return Target{Kind: TargetPost, ID: *l.PostID}
	}
	if l.CommentID != nil {
		return Target{Kind: TargetComment, ID: *l.CommentID}
	}
	return Target{}
}

// PostTarget is shorthand for the target of a post.
func PostTarget(id int) Target {
	return Target{Kind: TargetPost, ID: id}
}

// CommentTarget is shorthand for the target of a comment.
func CommentTarget(id int) Target {
	return Target{Kind: TargetComment, ID: id}
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}
