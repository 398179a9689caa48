package services

import (
	"context"
	"fmt"

	"bulletin/app/lock"
	"bulletin/app/models"
	"bulletin/app/repositories"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LikeService toggles likes on posts and comments
type LikeService struct {
	store  repositories.Store
	locker lock.Locker
}

// NewLikeService creates a new LikeService. Toggles by one user on one target
// are serialized through locker.
func NewLikeService(store repositories.Store, locker lock.Locker) *LikeService {
	return &LikeService{store: store, locker: locker}
}

// ToggleLikeOnPost likes the post for actor, or removes the like actor already placed
func (s *LikeService) ToggleLikeOnPost(ctx context.Context, postID int, actor *models.User) (*models.PostView, error) {
	var view *models.PostView
	err := s.toggle(ctx, models.PostTarget(postID), actor, func(tx repositories.Tx) error {
		post, err := tx.Posts().GetByID(postID)
		if err != nil {
			return notFound(err, "post %d", postID)
		}
		view, err = postView(tx, post)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ToggleLikeOnComment likes the comment for actor, or removes the like actor already placed
func (s *LikeService) ToggleLikeOnComment(ctx context.Context, commentID int, actor *models.User) (*models.CommentView, error) {
	var view *models.CommentView
	err := s.toggle(ctx, models.CommentTarget(commentID), actor, func(tx repositories.Tx) error {
		comment, err := tx.Comments().GetByID(commentID)
		if err != nil {
			return notFound(err, "comment %d", commentID)
		}
		view, err = commentView(tx, comment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// toggle flips the like of actor on target inside one transaction. present
// builds the response from the new state; its error on a missing target rolls
// the flip back.
func (s *LikeService) toggle(ctx context.Context, target models.Target, actor *models.User, present func(tx repositories.Tx) error) error {
	if actor == nil {
		return ErrUnauthorized
	}

	unlock, err := s.locker.Lock(ctx, fmt.Sprintf("like:%s:user:%d", target, actor.ID))
	if err != nil {
		return errors.Wrapf(err, "failed to serialize like on %s", target)
	}
	defer unlock()

	var liked bool
	err = s.store.Update(ctx, func(tx repositories.Tx) error {
		if _, err := resolveActor(tx, actor); err != nil {
			return err
		}

		now, err := flip(tx, target, actor.ID)
		if err != nil {
			return err
		}
		liked = now
		return present(tx)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"target":  target.String(),
		"user_id": actor.ID,
		"liked":   liked,
	}).Info("like toggled")
	return nil
}

// flip creates the like when absent and deletes it when present. It reports
// whether the user likes the target afterwards.
func flip(tx repositories.Tx, target models.Target, userID int) (bool, error) {
	existing, err := tx.Likes().GetByTargetAndOwner(target, userID)
	switch {
	case err == nil:
		return false, unlike(tx, existing)
	case !errors.Is(err, repositories.ErrNotFound):
		return false, errors.Wrapf(err, "failed to look up like on %s", target)
	}

	err = tx.Likes().Create(models.NewLike(target, userID))
	if errors.Is(err, repositories.ErrDuplicate) {
		// Someone raced us to it: already liked, so this toggle unlikes.
		existing, err := tx.Likes().GetByTargetAndOwner(target, userID)
		if err != nil {
			return false, errors.Wrapf(err, "failed to look up like on %s", target)
		}
		return false, unlike(tx, existing)
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to like %s", target)
	}
	return true, nil
}

func unlike(tx repositories.Tx, like *models.Like) error {
	return errors.Wrapf(tx.Likes().Delete(like.ID), "failed to remove like %d", like.ID)
}
