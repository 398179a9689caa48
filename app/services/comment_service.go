package services

import (
	"context"
	"net/http"
	"time"

	"bulletin/app/models"
	"bulletin/app/repositories"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CommentService handles business logic for comments
type CommentService struct {
	store repositories.Store
	now   func() time.Time
}

// NewCommentService creates a new CommentService
func NewCommentService(store repositories.Store) *CommentService {
	return &CommentService{store: store, now: time.Now}
}

// CreateComment attaches a comment to a post, or to a reply chain when req names a parent
func (s *CommentService) CreateComment(ctx context.Context, postID int, req *models.CommentRequest, actor *models.User) (*models.CommentView, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalid(err)
	}

	var view *models.CommentView
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		user, err := resolveActor(tx, actor)
		if err != nil {
			return err
		}
		post, err := tx.Posts().GetByID(postID)
		if err != nil {
			return notFound(err, "post %d", postID)
		}

		comment, err := models.NewComment(req, post, user)
		if err != nil {
			return err
		}
		if req.ParentCommentID != nil {
			parent, err := tx.Comments().GetByID(*req.ParentCommentID)
			if err != nil {
				return notFound(err, "parent comment %d", *req.ParentCommentID)
			}
			if err := comment.SetParent(parent); err != nil {
				if errors.Is(err, models.ErrCrossPostParent) {
					return errors.Wrapf(ErrParentMismatch, "comment %d is on post %d", parent.ID, parent.PostID)
				}
				return err
			}
		}

		if err := tx.Comments().Create(comment); err != nil {
			return errors.Wrap(err, "failed to create comment")
		}
		view = models.NewCommentView(comment, 0)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"comment_id": view.ID,
		"post_id":    postID,
		"user_id":    actor.ID,
	}).Info("comment created")
	return view, nil
}

// UpdateComment replaces the body of a comment actor may write
func (s *CommentService) UpdateComment(ctx context.Context, id int, req *models.CommentRequest, actor *models.User) (*models.CommentView, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalid(err)
	}

	var view *models.CommentView
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		comment, err := tx.Comments().GetByID(id)
		if err != nil {
			return notFound(err, "comment %d", id)
		}
		if err := authorizeStored(tx, comment, actor); err != nil {
			return err
		}

		comment.Apply(req, s.now())
		if err := tx.Comments().Update(comment); err != nil {
			return errors.Wrapf(err, "failed to update comment %d", id)
		}
		view, err = commentView(tx, comment)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"comment_id": id, "user_id": actor.ID}).Info("comment updated")
	return view, nil
}

// DeleteComment deletes a comment, every reply below it and their likes
func (s *CommentService) DeleteComment(ctx context.Context, id int, actor *models.User) (*models.Ack, error) {
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		comment, err := tx.Comments().GetByID(id)
		if err != nil {
			return notFound(err, "comment %d", id)
		}
		if err := authorizeStored(tx, comment, actor); err != nil {
			return err
		}
		return purgeComment(tx, id)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"comment_id": id, "user_id": actor.ID}).Info("comment deleted")
	return &models.Ack{Status: http.StatusOK, Message: "comment deleted"}, nil
}
