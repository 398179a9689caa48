// Package lock serializes work on a shared key, either inside one process or
// across processes through Redis.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/pkg/errors"
	goredislib "github.com/redis/go-redis/v9"
)

// Locker hands out exclusive access to a key until the returned unlock is called.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// LocalLocker is a keyed mutex. Entries are dropped once no goroutine holds or waits on them.
type LocalLocker struct {
	mutex sync.Mutex
	keys  map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{keys: make(map[string]*entry)}
}

// Lock blocks until key is free or ctx is done. The returned unlock is safe to call more than once.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mutex.Lock()
	e, ok := l.keys[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.keys[key] = e
	}
	e.refs++
	l.mutex.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *LocalLocker) release(key string, e *entry) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.keys, key)
	}
}

// RedisLocker is a redsync mutex per key, shared by every process using the same Redis.
type RedisLocker struct {
	rs     *redsync.Redsync
	client goredislib.UniversalClient
	expiry time.Duration
	prefix string
}

// RedisOptions configures a RedisLocker.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Expiry   time.Duration
}

// NewRedisLocker connects to Redis and verifies it answers.
func NewRedisLocker(ctx context.Context, opts RedisOptions) (*RedisLocker, error) {
	client := goredislib.NewClient(&goredislib.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "redis at %s did not answer", opts.Addr)
	}
	return NewRedisLockerFromClient(client, opts.Expiry), nil
}

// NewRedisLockerFromClient builds a RedisLocker on an existing client.
func NewRedisLockerFromClient(client goredislib.UniversalClient, expiry time.Duration) *RedisLocker {
	if expiry <= 0 {
		expiry = 5 * time.Second
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		client: client,
		expiry: expiry,
		prefix: "bulletin:lock:",
	}
}

// Lock acquires the redsync mutex for key, retrying until it is granted or ctx
// is done. An unreleased lock expires after the configured expiry.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(l.prefix+key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(32),
		redsync.WithRetryDelay(25*time.Millisecond),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to lock %s", key)
	}
	return func() {
		// An expired lock is already free; nothing to undo.
		_, _ = mutex.UnlockContext(context.Background())
	}, nil
}

// Close releases the Redis connection.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
