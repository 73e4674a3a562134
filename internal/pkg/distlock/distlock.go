// Package distlock serializes work across processes, such as snapshot
// refreshes that must not run twice against the same upstream at once.
package distlock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockLost is returned by Extend when the lock expired or changed owner.
var ErrLockLost = errors.New("distlock: lock no longer held")

// DistLock is the interface for distributed locking. An instance may be shared
// by goroutines of one process: while it is held, further Acquire calls report
// false just like a holder in another process would.
type DistLock interface {
	// Acquire tries to acquire the lock without blocking. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// NewLock picks the best available backend: Redis when a client is given,
// otherwise a PostgreSQL advisory lock, otherwise an in-process mutex.
func NewLock(redisClient *redis.Client, db *sql.DB, key string, ttl time.Duration) DistLock {
	switch {
	case redisClient != nil:
		return NewRedisLock(redisClient, key, ttl)
	case db != nil:
		return NewPGAdvisoryLock(db, key)
	default:
		return NewLocalLock()
	}
}

// PGAdvisoryLock implements DistLock with pg_try_advisory_lock. Advisory locks
// are session scoped, so the lock pins one pooled connection until Release.
// If that connection drops the lock goes with it.
type PGAdvisoryLock struct {
	db     *sql.DB
	lockID int64

	mu   sync.Mutex
	conn *sql.Conn
}

// NewPGAdvisoryLock derives a stable lock ID from key.
func NewPGAdvisoryLock(db *sql.DB, key string) *PGAdvisoryLock {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &PGAdvisoryLock{
		db:     db,
		lockID: int64(h.Sum64()),
	}
}

// Acquire tries to take the advisory lock on a dedicated connection.
func (l *PGAdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		return false, nil
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("distlock: reserve connection: %w", err)
	}
	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.lockID).Scan(&acquired); err != nil {
		conn.Close()
		return false, fmt.Errorf("distlock: try advisory lock: %w", err)
	}
	if !acquired {
		conn.Close()
		return false, nil
	}
	l.conn = conn
	return true, nil
}

// Release unlocks and returns the pinned connection to the pool.
func (l *PGAdvisoryLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	_, err := l.conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockID)
	closeErr := l.conn.Close()
	l.conn = nil
	if err != nil {
		return fmt.Errorf("distlock: advisory unlock: %w", err)
	}
	return closeErr
}

// Renewable is implemented by locks that expire unless extended.
type Renewable interface {
	TTL() time.Duration
	Extend(ctx context.Context, ttl time.Duration) error
}

// KeepAlive extends a Renewable lock every half TTL until the returned stop
// func is called. Extension errors go to onErr; renewal ends once the lock is
// lost. Other locks get a no-op stop.
func KeepAlive(ctx context.Context, lock DistLock, onErr func(error)) (stop func()) {
	rl, ok := lock.(Renewable)
	if !ok || rl.TTL() <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(rl.TTL() / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := rl.Extend(ctx, rl.TTL())
				if err == nil || ctx.Err() != nil {
					continue
				}
				if onErr != nil {
					onErr(err)
				}
				if errors.Is(err, ErrLockLost) {
					return
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// LocalLock is a non-blocking in-process lock for single-instance deployments.
type LocalLock struct {
	ch chan struct{}
}

// NewLocalLock returns an unlocked LocalLock.
func NewLocalLock() *LocalLock {
	return &LocalLock{ch: make(chan struct{}, 1)}
}

// Acquire takes the lock if it is free.
func (l *LocalLock) Acquire(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	select {
	case l.ch <- struct{}{}:
		return true, nil
	default:
		return false, nil
	}
}

// Release frees the lock. Releasing a free lock is a no-op.
func (l *LocalLock) Release(context.Context) error {
	select {
	case <-l.ch:
	default:
	}
	return nil
}
