package repositories

import (
	"context"
	"io"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options configures a BadgerStore.
type Options struct {
	Path            string
	InMemory        bool
	SyncWrites      bool
	ConflictRetries int
}

// BadgerStore implements Store. Every Update runs in one badger read-write
// transaction; badger's serializable snapshot isolation aborts a transaction
// whose reads were overwritten by a concurrent commit, in which case the whole
// function is run again against fresh state up to ConflictRetries times.
type BadgerStore struct {
	db       *badger.DB
	dbPath   string
	isTestDB bool
	retries  int
}

// NewBadgerStore opens a store. An empty path outside of in-memory mode
// creates a throwaway directory that is removed on Close.
func NewBadgerStore(opts Options) (*BadgerStore, error) {
	path := opts.Path
	isTest := false
	if !opts.InMemory && (path == "" || path == "test_db") {
		tempPath, err := os.MkdirTemp("", "bulletin_test_db_")
		if err != nil {
			return nil, errors.Wrap(err, "error creating temp dir")
		}
		path = tempPath
		isTest = true
	}

	badgerOpts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithSyncWrites(opts.SyncWrites).
		WithNumVersionsToKeep(1)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open badger at %q", path)
	}
	store := NewBadgerStoreFromDB(db, opts.ConflictRetries)
	store.dbPath = path
	store.isTestDB = isTest
	return store, nil
}

// NewBadgerStoreFromDB wraps an already open database.
func NewBadgerStoreFromDB(db *badger.DB, conflictRetries int) *BadgerStore {
	if conflictRetries < 0 {
		conflictRetries = 0
	}
	return &BadgerStore{db: db, retries: conflictRetries}
}

// DB exposes the underlying database for maintenance commands.
func (s *BadgerStore) DB() *badger.DB {
	return s.db
}

// View runs fn in a read-only transaction.
func (s *BadgerStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return fn(newBadgerTx(txn))
	})
}

// Update runs fn in a read-write transaction and commits it if fn succeeds.
func (s *BadgerStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(func(txn *badger.Txn) error {
			return fn(newBadgerTx(txn))
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if attempt >= s.retries {
			return errors.Wrapf(ErrConflict, "gave up after %d attempts", attempt+1)
		}
		logrus.WithField("attempt", attempt+1).Debug("badger transaction conflict, retrying")
	}
}

// Backup writes a full backup of the store to w.
func (s *BadgerStore) Backup(w io.Writer) error {
	_, err := s.db.Backup(w, 0)
	return errors.Wrap(err, "failed to backup database")
}

// Load restores a backup produced by Backup.
func (s *BadgerStore) Load(r io.Reader) error {
	return errors.Wrap(s.db.Load(r, 16), "failed to restore database")
}

// Clear drops every key.
func (s *BadgerStore) Clear() error {
	return s.db.DropAll()
}

// Close closes the database and removes throwaway directories.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}

	// Clean up test database
	if s.isTestDB {
		if err := os.RemoveAll(s.dbPath); err != nil {
			return errors.Wrap(err, "failed to cleanup test database")
		}
	}
	return nil
}

type badgerTx struct {
	txn *badger.Txn
}

func newBadgerTx(txn *badger.Txn) *badgerTx {
	return &badgerTx{txn: txn}
}

func (t *badgerTx) Posts() PostRepository       { return NewBadgerPostRepository(t.txn) }
func (t *badgerTx) Comments() CommentRepository { return NewBadgerCommentRepository(t.txn) }
func (t *badgerTx) Likes() LikeRepository       { return NewBadgerLikeRepository(t.txn) }
func (t *badgerTx) Users() UserRepository       { return NewBadgerUserRepository(t.txn) }
