package repositories

import (
	"bulletin/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// BadgerPostRepository implements PostRepository on top of one badger transaction
type BadgerPostRepository struct {
	txn *badger.Txn
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(txn *badger.Txn) *BadgerPostRepository {
	return &BadgerPostRepository{txn: txn}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	post.BeforeCreate()
	if err := CheckEntity(post); err != nil {
		return err
	}

	id, err := getNextID(r.txn, PostSeqKey)
	if err != nil {
		return err
	}
	post.ID = id

	if err := setEntity(r.txn, entityKey(PostKeyPrefix, post.ID), post); err != nil {
		return err
	}
	return errors.Wrap(r.txn.Set(ownerKey(post.UserID, ownerKindPost, post.ID), nil), "failed to index post owner")
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	if err := getEntity(r.txn, entityKey(PostKeyPrefix, id), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByIDAndOwner retrieves a post by ID only if userID wrote it
func (r *BadgerPostRepository) GetByIDAndOwner(id, userID int) (*models.Post, error) {
	post, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrNotFound
	}
	return post, nil
}

// ListOrderByModifiedDesc retrieves every post, most recently modified first
func (r *BadgerPostRepository) ListOrderByModifiedDesc() ([]*models.Post, error) {
	var posts []*models.Post

	opts := badger.DefaultIteratorOptions
	it := r.txn.NewIterator(opts)
	defer it.Close()

	prefix := []byte(PostKeyPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		var post models.Post
		err := item.Value(func(val []byte) error {
			return unmarshalEntity(val, &post)
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal post")
		}
		posts = append(posts, &post)
	}

	models.SortPostsByModifiedDesc(posts)
	return posts, nil
}

// ListByOwner retrieves every post written by userID
func (r *BadgerPostRepository) ListByOwner(userID int) ([]*models.Post, error) {
	ids, err := scanIDs(r.txn, ownerPrefix(userID, ownerKindPost))
	if err != nil {
		return nil, err
	}
	posts := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		post, err := r.GetByID(id)
		if err != nil {
			return nil, errors.Wrapf(err, "owner index points at post %d", id)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(post *models.Post) error {
	key := entityKey(PostKeyPrefix, post.ID)

	// Verify post exists
	exists, err := keyExists(r.txn, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if err := CheckEntity(post); err != nil {
		return err
	}

	return setEntity(r.txn, key, post)
}

// Delete deletes a post by ID. Comments and likes are left to the caller.
func (r *BadgerPostRepository) Delete(id int) error {
	post, err := r.GetByID(id)
	if err != nil {
		return err
	}

	if err := deleteKey(r.txn, entityKey(PostKeyPrefix, id)); err != nil {
		return err
	}
	return deleteKey(r.txn, ownerKey(post.UserID, ownerKindPost, id))
}

// DeleteAllByOwner deletes every post row written by userID
func (r *BadgerPostRepository) DeleteAllByOwner(userID int) error {
	ids, err := scanIDs(r.txn, ownerPrefix(userID, ownerKindPost))
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.Delete(id); err != nil {
			return err
		}
	}
	return nil
}
