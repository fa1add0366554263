package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"meal-subscriptions/internal/domain"
)

type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

var _ Locker = (*RedisLocker)(nil)

type RedisLocker struct {
	cli RedisClient
}

func NewLocker(c RedisClient) *RedisLocker {
	return &RedisLocker{cli: c}
}

// TryLock makes a single SETNX attempt and returns ErrRequestInProgress when key
// is already held. It does not wait for the holder to release.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := l.cli.SetNX(ctx, key, token, ttl)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("lock %s: %w", key, domain.ErrRequestInProgress)
	}
	return token, nil
}

// Unlock releases key only if token still owns it.
func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.cli.DelIfEquals(ctx, key, token)
	return err
}

func CallerWriteLockKey(caller, method, path string) string {
	return fmt.Sprintf("lock:write:%s:%s:%s", caller, method, path)
}
