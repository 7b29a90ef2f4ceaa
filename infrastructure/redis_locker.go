package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// releaseScript deletes the key only while it still holds our token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker grants leases with SET NX PX
type RedisLocker struct {
	client   redis.Cmdable
	newToken func() string
}

// NewRedisLocker creates a lease locker on client
func NewRedisLocker(client redis.Cmdable) *RedisLocker {
	return &RedisLocker{
		client:   client,
		newToken: func() string { return uuid.New().String() },
	}
}

// TryAcquire takes the lease on key for ttl if nobody holds it
func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := l.newToken()

	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lease %s: %w", key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func() {
		// The caller's context may already be cancelled on shutdown
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		if err := l.client.Eval(releaseCtx, releaseScript, []string{key}, token).Err(); err != nil {
			log.WithError(err).WithField("key", key).Warn("Failed to release lease, it will expire")
		}
	}
	return release, true, nil
}

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.WithField("addr", addr).Info("Connected to redis")
	return client, nil
}
