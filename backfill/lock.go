package backfill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

const (
	LockKey = "sync-backfill"
	lockTTL = 30 * time.Second
)

var ErrAlreadyRunning = errors.New("another backfill holds the lock")

// Locker keeps two backfills from running at once. Lock returns the
// function that releases it.
type Locker interface {
	Lock(ctx context.Context) (func(context.Context) error, error)
}

type NoopLocker struct{}

func (NoopLocker) Lock(context.Context) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

type RedisLocker struct {
	client *redislock.Client
	logger *logrus.Logger
	ttl    time.Duration
}

func NewRedisLocker(client *redislock.Client, logger *logrus.Logger) *RedisLocker {
	return &RedisLocker{client: client, logger: logger, ttl: lockTTL}
}

// Lock obtains the lock and refreshes it every half TTL until released.
func (l *RedisLocker) Lock(ctx context.Context) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, LockKey, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		return nil, fmt.Errorf("obtain %s: %w", LockKey, err)
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(l.ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := lock.Refresh(context.Background(), l.ttl, nil); err != nil {
					l.logger.WithFields(logrus.Fields{"field": "backfill", "key": LockKey}).
						WithError(err).Error("refresh backfill lock")
				}
			}
		}
	}()

	return func(ctx context.Context) error {
		close(done)
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}, nil
}
