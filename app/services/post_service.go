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

// PostService handles business logic for posts
type PostService struct {
	store repositories.Store
	now   func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(store repositories.Store) *PostService {
	return &PostService{store: store, now: time.Now}
}

// ListPosts returns every post, most recently modified first, each with its top-level comments
func (s *PostService) ListPosts(ctx context.Context) ([]*models.PostView, error) {
	views := []*models.PostView{}
	err := s.store.View(ctx, func(tx repositories.Tx) error {
		posts, err := tx.Posts().ListOrderByModifiedDesc()
		if err != nil {
			return errors.Wrap(err, "failed to list posts")
		}
		models.SortPostsByModifiedDesc(posts)

		for _, post := range posts {
			view, err := postView(tx, post)
			if err != nil {
				return err
			}
			views = append(views, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// CreatePost creates a post owned by actor
func (s *PostService) CreatePost(ctx context.Context, req *models.PostRequest, actor *models.User) (*models.PostView, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalid(err)
	}

	var view *models.PostView
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		user, err := resolveActor(tx, actor)
		if err != nil {
			return err
		}

		post := models.NewPost(req, user)
		if err := tx.Posts().Create(post); err != nil {
			return errors.Wrap(err, "failed to create post")
		}
		view = models.NewPostView(post, 0, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"post_id": view.ID, "user_id": actor.ID}).Info("post created")
	return view, nil
}

// GetPost retrieves a post by ID with its top-level comments
func (s *PostService) GetPost(ctx context.Context, id int) (*models.PostView, error) {
	var view *models.PostView
	err := s.store.View(ctx, func(tx repositories.Tx) error {
		post, err := tx.Posts().GetByID(id)
		if err != nil {
			return notFound(err, "post %d", id)
		}
		view, err = postView(tx, post)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdatePost replaces title and body of a post actor may write
func (s *PostService) UpdatePost(ctx context.Context, id int, req *models.PostRequest, actor *models.User) (*models.PostView, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalid(err)
	}

	var view *models.PostView
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		post, err := tx.Posts().GetByID(id)
		if err != nil {
			return notFound(err, "post %d", id)
		}
		if err := authorizeStored(tx, post, actor); err != nil {
			return err
		}

		post.Apply(req, s.now())
		if err := tx.Posts().Update(post); err != nil {
			return errors.Wrapf(err, "failed to update post %d", id)
		}
		view, err = postView(tx, post)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"post_id": id, "user_id": actor.ID}).Info("post updated")
	return view, nil
}

// DeletePost deletes a post together with its comments and likes
func (s *PostService) DeletePost(ctx context.Context, id int, actor *models.User) (*models.Ack, error) {
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		post, err := tx.Posts().GetByID(id)
		if err != nil {
			return notFound(err, "post %d", id)
		}
		if err := authorizeStored(tx, post, actor); err != nil {
			return err
		}
		return purgePost(tx, id)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"post_id": id, "user_id": actor.ID}).Info("post deleted")
	return &models.Ack{Status: http.StatusOK, Message: "post deleted"}, nil
}
