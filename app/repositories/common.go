package repositories

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrConflict  = errors.New("transaction conflict")
	ErrInvalid   = errors.New("record failed validation")
)

// Entity is a record that can check its own fields before it is written.
type Entity interface {
	Validate() error
}

// CheckEntity fails with ErrInvalid when e does not validate.
func CheckEntity(e Entity) error {
	if err := e.Validate(); err != nil {
		return errors.WithMessage(ErrInvalid, err.Error())
	}
	return nil
}

const (
	// Key prefixes for different entity types
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"
	LikeKeyPrefix    = "like:"
	UserKeyPrefix    = "user:"

	// Secondary indexes; values are empty unless noted
	PostCommentIndexPrefix  = "idx:post-comment:"  // {postID}:{commentID}
	CommentChildIndexPrefix = "idx:comment-child:" // {parentID}:{childID}
	LikeTargetIndexPrefix   = "idx:like-target:"   // {kind}:{targetID}:{likeID}
	OwnerIndexPrefix        = "idx:owner:"         // {userID}:{kind}:{id}

	// Unique indexes; value is the owning record id
	LikeUniqueKeyPrefix     = "uniq:like:"     // {kind}:{targetID}:{userID}
	UsernameUniqueKeyPrefix = "uniq:username:" // {username}

	// Sequence keys for auto-incrementing IDs
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
	LikeSeqKey    = "seq:like"
	UserSeqKey    = "seq:user"
)

const (
	ownerKindPost    = "post"
	ownerKindComment = "comment"
	ownerKindLike    = "like"
)

func entityKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%d", prefix, id))
}

func pairKey(prefix string, parent, child int) []byte {
	return []byte(fmt.Sprintf("%s%d:%d", prefix, parent, child))
}

func pairPrefix(prefix string, parent int) []byte {
	return []byte(fmt.Sprintf("%s%d:", prefix, parent))
}

func ownerKey(userID int, kind string, id int) []byte {
	return []byte(fmt.Sprintf("%s%d:%s:%d", OwnerIndexPrefix, userID, kind, id))
}

func ownerPrefix(userID int, kind string) []byte {
	return []byte(fmt.Sprintf("%s%d:%s:", OwnerIndexPrefix, userID, kind))
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id int
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		id = 1
	} else if err != nil {
		return 0, errors.Wrap(err, "failed to get sequence")
	} else {
		err = item.Value(func(val []byte) error {
			id, err = strconv.Atoi(string(val))
			if err != nil {
				return errors.Wrap(err, "failed to parse sequence")
			}
			id++
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	// Update the sequence
	err = txn.Set([]byte(seqKey), []byte(strconv.Itoa(id)))
	if err != nil {
		return 0, errors.Wrap(err, "failed to update sequence")
	}

	return id, nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal entity")
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, "failed to unmarshal entity")
	}
	return nil
}

// getEntity loads the JSON record at key into v.
func getEntity(txn *badger.Txn, key []byte, v interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", key)
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, v)
	})
}

// setEntity stores v as JSON at key.
func setEntity(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := marshalEntity(v)
	if err != nil {
		return err
	}
	return errors.Wrapf(txn.Set(key, data), "failed to write %s", key)
}

// keyExists reports whether key is present.
func keyExists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", key)
	}
	return true, nil
}

// getIntValue reads a key whose value is a decimal id.
func getIntValue(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s", key)
	}
	var id int
	err = item.Value(func(val []byte) error {
		id, err = strconv.Atoi(string(val))
		return err
	})
	return id, errors.Wrapf(err, "failed to parse %s", key)
}

func deleteKey(txn *badger.Txn, key []byte) error {
	return errors.Wrapf(txn.Delete(key), "failed to delete %s", key)
}

// scanIDs returns the integer suffix of every key under prefix. Only keys are
// read; the iterator is closed before returning so callers may write freely.
func scanIDs(txn *badger.Txn, prefix []byte) ([]int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []int
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := string(it.Item().Key())
		suffix := key[strings.LastIndex(key, ":")+1:]
		id, err := strconv.Atoi(suffix)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed index key %s", key)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// countKeys counts the keys under prefix without loading values.
func countKeys(txn *badger.Txn, prefix []byte) int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	count := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		count++
	}
	return count
}
