package repositories

import (
	"bulletin/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// BadgerCommentRepository implements CommentRepository on top of one badger transaction.
// Comments are stored by id; post and parent links are kept in key-only indexes.
type BadgerCommentRepository struct {
	txn *badger.Txn
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(txn *badger.Txn) *BadgerCommentRepository {
	return &BadgerCommentRepository{txn: txn}
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	comment.BeforeCreate()
	if err := CheckEntity(comment); err != nil {
		return err
	}

	id, err := getNextID(r.txn, CommentSeqKey)
	if err != nil {
		return err
	}
	comment.ID = id

	if err := setEntity(r.txn, entityKey(CommentKeyPrefix, comment.ID), comment); err != nil {
		return err
	}
	for _, key := range r.indexKeys(comment) {
		if err := r.txn.Set(key, nil); err != nil {
			return errors.Wrapf(err, "failed to index comment %d", comment.ID)
		}
	}
	return nil
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	if err := getEntity(r.txn, entityKey(CommentKeyPrefix, id), &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByIDAndOwner retrieves a comment by ID only if userID wrote it
func (r *BadgerCommentRepository) GetByIDAndOwner(id, userID int) (*models.Comment, error) {
	comment, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotFound
	}
	return comment, nil
}

// ListByPost retrieves all comments for a post, replies included
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	return r.listIndexed(pairPrefix(PostCommentIndexPrefix, postID))
}

// ListChildren retrieves the direct replies to a comment
func (r *BadgerCommentRepository) ListChildren(parentID int) ([]*models.Comment, error) {
	return r.listIndexed(pairPrefix(CommentChildIndexPrefix, parentID))
}

// ListByOwner retrieves every comment written by userID
func (r *BadgerCommentRepository) ListByOwner(userID int) ([]*models.Comment, error) {
	return r.listIndexed(ownerPrefix(userID, ownerKindComment))
}

// Update updates an existing comment. Post and parent links never change.
func (r *BadgerCommentRepository) Update(comment *models.Comment) error {
	key := entityKey(CommentKeyPrefix, comment.ID)

	exists, err := keyExists(r.txn, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if err := CheckEntity(comment); err != nil {
		return err
	}

	return setEntity(r.txn, key, comment)
}

// Delete deletes a single comment row and its index entries.
// Replies and likes are left to the caller.
func (r *BadgerCommentRepository) Delete(id int) error {
	comment, err := r.GetByID(id)
	if err != nil {
		return err
	}

	if err := deleteKey(r.txn, entityKey(CommentKeyPrefix, id)); err != nil {
		return err
	}
	for _, key := range r.indexKeys(comment) {
		if err := deleteKey(r.txn, key); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAllByOwner deletes every comment row written by userID
func (r *BadgerCommentRepository) DeleteAllByOwner(userID int) error {
	ids, err := scanIDs(r.txn, ownerPrefix(userID, ownerKindComment))
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

func (r *BadgerCommentRepository) indexKeys(comment *models.Comment) [][]byte {
	keys := [][]byte{
		pairKey(PostCommentIndexPrefix, comment.PostID, comment.ID),
		ownerKey(comment.UserID, ownerKindComment, comment.ID),
	}
	if comment.ParentCommentID != nil {
		keys = append(keys, pairKey(CommentChildIndexPrefix, *comment.ParentCommentID, comment.ID))
	}
	return keys
}

func (r *BadgerCommentRepository) listIndexed(prefix []byte) ([]*models.Comment, error) {
	ids, err := scanIDs(r.txn, prefix)
	if err != nil {
		return nil, err
	}
	comments := make([]*models.Comment, 0, len(ids))
	for _, id := range ids {
		comment, err := r.GetByID(id)
		if err != nil {
			return nil, errors.Wrapf(err, "index %s points at comment %d", prefix, id)
		}
		comments = append(comments, comment)
	}
	return comments, nil
}
