package services

import (
	"bulletin/app/models"
	"bulletin/app/repositories"

	"github.com/pkg/errors"
)

// Failures surfaced to the transport layer. Callers match them with errors.Is.
var (
	ErrNotFound       = errors.New("writing not found")
	ErrForbidden      = errors.New("not the writer")
	ErrInvalidInput   = errors.New("invalid input")
	ErrParentMismatch = errors.New("parent comment belongs to a different post")
	ErrUnauthorized   = errors.New("authentication required")
	ErrDuplicateUser  = errors.New("username already taken")
)

// notFound turns a repository miss into ErrNotFound and wraps anything else.
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return errors.Wrapf(ErrNotFound, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}

func invalid(err error) error {
	return errors.WithMessage(ErrInvalidInput, err.Error())
}

// Authorize allows actor to mutate resource when actor owns it or is an admin.
func Authorize(resource models.Owned, actor *models.User) error {
	if actor == nil {
		return ErrUnauthorized
	}
	if actor.IsAdmin() || resource.Owner() == actor.ID {
		return nil
	}
	return ErrForbidden
}

// resolveActor confirms that the authenticated user still has an account.
func resolveActor(tx repositories.Tx, actor *models.User) (*models.User, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	user, err := tx.Users().GetByID(actor.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, errors.Wrapf(ErrUnauthorized, "user %d no longer exists", actor.ID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load acting user")
	}
	return user, nil
}

// authorizeStored checks resource against the stored account of actor, so a
// deleted account or a revoked role no longer passes on an old token.
func authorizeStored(tx repositories.Tx, resource models.Owned, actor *models.User) error {
	user, err := resolveActor(tx, actor)
	if err != nil {
		return err
	}
	return Authorize(resource, user)
}
