package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farm-vet-appointments/internal/ports/locking"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL  = 5 * time.Second
	retryPeriod = 25 * time.Millisecond
)

// El token evita que un holder vencido libere el lock de otro.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker serializa reservas por veterinario entre instancias con SET NX PX.
type Locker struct {
	rdb    *redis.Client
	ttl    time.Duration
	wait   time.Duration
	prefix string
}

// NewLocker: ttl acota cuánto vive un lock huérfano; la espera máxima por turno es igual a ttl.
func NewLocker(rdb *redis.Client, ttl time.Duration, prefix string) *Locker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "booking-lock"
	}
	return &Locker{rdb: rdb, ttl: ttl, wait: ttl, prefix: prefix}
}

func (l *Locker) key(vetID string) string {
	return l.prefix + ":vet:" + vetID
}

func (l *Locker) Lock(ctx context.Context, vetID string) (func(), error) {
	key := l.key(vetID)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(retryPeriod)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Join(locking.ErrLockUnavailable, fmt.Errorf("redis setnx %s: %w", key, err))
		}
		if ok {
			return l.unlockFunc(key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(locking.ErrLockUnavailable, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Locker) unlockFunc(key, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		// Si falla, el TTL libera la clave.
		_ = releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
	}
}
