package services

import (
	"context"
	"crypto/subtle"
	"net/http"

	"bulletin/app/auth"
	"bulletin/app/models"
	"bulletin/app/repositories"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// UserService manages accounts and hands out tokens
type UserService struct {
	store      repositories.Store
	issuer     *auth.TokenIssuer
	adminToken string
}

// NewUserService creates a new UserService. Signups presenting adminToken get
// the admin role; an empty adminToken disables admin signup.
func NewUserService(store repositories.Store, issuer *auth.TokenIssuer, adminToken string) *UserService {
	return &UserService{store: store, issuer: issuer, adminToken: adminToken}
}

// Signup creates an account
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalid(err)
	}

	role := models.RoleUser
	if req.AdminToken != "" {
		if s.adminToken == "" || subtle.ConstantTimeCompare([]byte(req.AdminToken), []byte(s.adminToken)) != 1 {
			return nil, errors.Wrap(ErrForbidden, "admin token rejected")
		}
		role = models.RoleAdmin
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: req.Username, PasswordHash: hash, Role: role}
	user.BeforeCreate()

	err = s.store.Update(ctx, func(tx repositories.Tx) error {
		err := tx.Users().Create(user)
		if errors.Is(err, repositories.ErrDuplicate) {
			return errors.Wrapf(ErrDuplicateUser, "%s", req.Username)
		}
		return errors.Wrap(err, "failed to create user")
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user signed up")
	return user, nil
}

// Login checks credentials and issues a token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*auth.Token, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalid(err)
	}

	var user *models.User
	err := s.store.View(ctx, func(tx repositories.Tx) error {
		var err error
		user, err = tx.Users().GetByUsername(req.Username)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUnauthorized
		}
		return errors.Wrap(err, "failed to load user")
	})
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		logrus.WithField("user_id", user.ID).Warn("login with wrong password")
		return nil, ErrUnauthorized
	}

	return s.issuer.Issue(user)
}

// DeleteAccount removes actor's account with everything it owns: posts with
// their threads, comments with their replies, and likes
func (s *UserService) DeleteAccount(ctx context.Context, actor *models.User) (*models.Ack, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		if _, err := resolveActor(tx, actor); err != nil {
			return err
		}

		posts, err := tx.Posts().ListByOwner(actor.ID)
		if err != nil {
			return errors.Wrap(err, "failed to list posts")
		}
		for _, post := range posts {
			if err := purgePost(tx, post.ID); err != nil {
				return err
			}
		}

		comments, err := tx.Comments().ListByOwner(actor.ID)
		if err != nil {
			return errors.Wrap(err, "failed to list comments")
		}
		for _, comment := range comments {
			// Already gone with a purged post or an earlier subtree.
			if _, err := tx.Comments().GetByID(comment.ID); errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			if err := purgeComment(tx, comment.ID); err != nil {
				return err
			}
		}

		if err := tx.Likes().DeleteAllByOwner(actor.ID); err != nil {
			return errors.Wrap(err, "failed to delete likes")
		}
		if err := tx.Comments().DeleteAllByOwner(actor.ID); err != nil {
			return errors.Wrap(err, "failed to delete comments")
		}
		if err := tx.Posts().DeleteAllByOwner(actor.ID); err != nil {
			return errors.Wrap(err, "failed to delete posts")
		}
		return errors.Wrap(tx.Users().Delete(actor.ID), "failed to delete user")
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("user_id", actor.ID).Info("account deleted")
	return &models.Ack{Status: http.StatusOK, Message: "account deleted"}, nil
}
