package cache

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions describes the connection and keying parameters for the
// Redis-backed dedup cache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix namespaces identity keys; defaults to "dedup".
	KeyPrefix string
	// TTL bounds how long an identity stays marked as seen; defaults to 24h.
	TTL time.Duration

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

func (o *RedisOptions) normalize() {
	if o.KeyPrefix == "" {
		o.KeyPrefix = "dedup"
	}
	if o.TTL <= 0 {
		o.TTL = 24 * time.Hour
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 2 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 2 * time.Second
	}
	if o.PoolSize <= 0 {
		o.PoolSize = 10
	}
}

// Redis marks identities as seen with a TTL'd SET per identity.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedis(opts RedisOptions) *Redis {
	opts.normalize()
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})
	return &Redis{client: client, prefix: opts.KeyPrefix, ttl: opts.TTL}
}

// NewRedisWithClient wraps an existing client, e.g. a sentinel-backed one.
func NewRedisWithClient(client redis.Cmdable, keyPrefix string, ttl time.Duration) *Redis {
	if client == nil {
		panic("redis client is required")
	}
	if keyPrefix == "" {
		keyPrefix = "dedup"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Redis{client: client, prefix: keyPrefix, ttl: ttl}
}

func (r *Redis) Store(ctx context.Context, identity []byte) error {
	return r.client.Set(ctx, r.key(identity), 1, r.ttl).Err()
}

func (r *Redis) key(identity []byte) string {
	return r.prefix + ":" + hex.EncodeToString(identity)
}
