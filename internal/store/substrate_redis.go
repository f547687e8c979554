package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix      = "filmfolio:"
	defaultRedisDialTimeout = 5 * time.Second
)

// RedisConfig describes how to reach the redis substrate.
type RedisConfig struct {
	Address     string
	Password    string
	DB          int
	Prefix      string
	DialTimeout time.Duration
}

// RedisSubstrate persists each record as a plain redis string key.
type RedisSubstrate struct {
	client *goredis.Client
	prefix string
}

// NewRedisSubstrate connects to redis and verifies the connection.
func NewRedisSubstrate(ctx context.Context, cfg RedisConfig) (*RedisSubstrate, error) {
	address := strings.TrimSpace(cfg.Address)
	if address == "" {
		return nil, errors.New("store: redis address is required")
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultRedisDialTimeout
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:        address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: redis ping: %w", err)
	}

	return &RedisSubstrate{client: client, prefix: prefix}, nil
}

func (r *RedisSubstrate) Load(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (r *RedisSubstrate) Save(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

// Close releases the redis connection pool.
func (r *RedisSubstrate) Close() error {
	return r.client.Close()
}
