package repositories

import (
	"strconv"

	"bulletin/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// BadgerUserRepository implements UserRepository on top of one badger transaction
type BadgerUserRepository struct {
	txn *badger.Txn
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(txn *badger.Txn) *BadgerUserRepository {
	return &BadgerUserRepository{txn: txn}
}

func usernameKey(username string) []byte {
	return []byte(UsernameUniqueKeyPrefix + username)
}

// Create stores a user, failing with ErrDuplicate if the username is taken
func (r *BadgerUserRepository) Create(user *models.User) error {
	user.BeforeCreate()
	if err := CheckEntity(user); err != nil {
		return err
	}

	exists, err := keyExists(r.txn, usernameKey(user.Username))
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicate
	}

	id, err := getNextID(r.txn, UserSeqKey)
	if err != nil {
		return err
	}
	user.ID = id

	if err := setEntity(r.txn, entityKey(UserKeyPrefix, user.ID), user); err != nil {
		return err
	}
	return errors.Wrap(r.txn.Set(usernameKey(user.Username), []byte(strconv.Itoa(user.ID))), "failed to index username")
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var user models.User
	if err := getEntity(r.txn, entityKey(UserKeyPrefix, id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	id, err := getIntValue(r.txn, usernameKey(username))
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// Delete deletes a user row and its username index
func (r *BadgerUserRepository) Delete(id int) error {
	user, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if err := deleteKey(r.txn, entityKey(UserKeyPrefix, id)); err != nil {
		return err
	}
	return deleteKey(r.txn, usernameKey(user.Username))
}
