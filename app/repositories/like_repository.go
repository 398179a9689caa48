package repositories

import (
	"fmt"
	"strconv"

	"bulletin/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// BadgerLikeRepository implements LikeRepository on top of one badger transaction.
// uniq:like:{kind}:{target}:{user} holds the like id and enforces one like per user and target.
type BadgerLikeRepository struct {
	txn *badger.Txn
}

// NewBadgerLikeRepository creates a new BadgerLikeRepository
func NewBadgerLikeRepository(txn *badger.Txn) *BadgerLikeRepository {
	return &BadgerLikeRepository{txn: txn}
}

func likeUniqueKey(target models.Target, userID int) []byte {
	return []byte(fmt.Sprintf("%s%s:%d:%d", LikeUniqueKeyPrefix, target.Kind, target.ID, userID))
}

func likeTargetPrefix(target models.Target) []byte {
	return []byte(fmt.Sprintf("%s%s:%d:", LikeTargetIndexPrefix, target.Kind, target.ID))
}

func likeTargetKey(target models.Target, likeID int) []byte {
	return []byte(fmt.Sprintf("%s%s:%d:%d", LikeTargetIndexPrefix, target.Kind, target.ID, likeID))
}

// Create stores a like, failing with ErrDuplicate if the user already likes the target
func (r *BadgerLikeRepository) Create(like *models.Like) error {
	if err := CheckEntity(like); err != nil {
		return err
	}
	target := like.Target()
	uniq := likeUniqueKey(target, like.UserID)

	exists, err := keyExists(r.txn, uniq)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicate
	}

	id, err := getNextID(r.txn, LikeSeqKey)
	if err != nil {
		return err
	}
	like.ID = id

	if err := setEntity(r.txn, entityKey(LikeKeyPrefix, like.ID), like); err != nil {
		return err
	}
	if err := r.txn.Set(uniq, []byte(strconv.Itoa(like.ID))); err != nil {
		return errors.Wrap(err, "failed to write like unique key")
	}
	if err := r.txn.Set(likeTargetKey(target, like.ID), nil); err != nil {
		return errors.Wrap(err, "failed to index like target")
	}
	return errors.Wrap(r.txn.Set(ownerKey(like.UserID, ownerKindLike, like.ID), nil), "failed to index like owner")
}

// GetByTargetAndOwner retrieves the like userID placed on target
func (r *BadgerLikeRepository) GetByTargetAndOwner(target models.Target, userID int) (*models.Like, error) {
	id, err := getIntValue(r.txn, likeUniqueKey(target, userID))
	if err != nil {
		return nil, err
	}
	return r.getByID(id)
}

// CountByTarget counts the likes on target
func (r *BadgerLikeRepository) CountByTarget(target models.Target) (int, error) {
	return countKeys(r.txn, likeTargetPrefix(target)), nil
}

// Delete deletes a like and its index entries
func (r *BadgerLikeRepository) Delete(id int) error {
	like, err := r.getByID(id)
	if err != nil {
		return err
	}
	target := like.Target()

	keys := [][]byte{
		entityKey(LikeKeyPrefix, id),
		likeUniqueKey(target, like.UserID),
		likeTargetKey(target, id),
		ownerKey(like.UserID, ownerKindLike, id),
	}
	for _, key := range keys {
		if err := deleteKey(r.txn, key); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAllByTarget deletes every like on target
func (r *BadgerLikeRepository) DeleteAllByTarget(target models.Target) error {
	ids, err := scanIDs(r.txn, likeTargetPrefix(target))
	if err != nil {
		return err
	}
	return r.deleteAll(ids)
}

// DeleteAllByOwner deletes every like placed by userID
func (r *BadgerLikeRepository) DeleteAllByOwner(userID int) error {
	ids, err := scanIDs(r.txn, ownerPrefix(userID, ownerKindLike))
	if err != nil {
		return err
	}
	return r.deleteAll(ids)
}

func (r *BadgerLikeRepository) deleteAll(ids []int) error {
	for _, id := range ids {
		if err := r.Delete(id); err != nil {
			return err
		}
	}
	return nil
}

func (r *BadgerLikeRepository) getByID(id int) (*models.Like, error) {
	var like models.Like
	if err := getEntity(r.txn, entityKey(LikeKeyPrefix, id), &like); err != nil {
		return nil, err
	}
	return &like, nil
}
