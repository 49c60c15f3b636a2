package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the session as two string keys in Redis so several
// processes on one profile can share a login.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisStore returns a store using rdb. prefix is prepended to the
// tf_token and tf_email key names.
func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// NewRedisStoreFromURL parses a redis:// URL and returns a store using a new
// client. The caller owns Close.
func NewRedisStoreFromURL(url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opts), prefix), nil
}

func (r *RedisStore) tokenKey() string { return r.prefix + TokenKey }
func (r *RedisStore) emailKey() string { return r.prefix + EmailKey }

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context) (Session, error) {
	vals, err := r.rdb.MGet(ctx, r.tokenKey(), r.emailKey()).Result()
	if err != nil {
		return Session{}, fmt.Errorf("redis get session: %w", err)
	}
	token, _ := vals[0].(string)
	email, _ := vals[1].(string)
	if token == "" || email == "" {
		return Session{}, nil
	}
	return Session{Token: token, Email: email}, nil
}

// Set implements Store.
func (r *RedisStore) Set(ctx context.Context, token, email string) error {
	if err := validate(token, email); err != nil {
		return err
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.tokenKey(), token, 0)
		pipe.Set(ctx, r.emailKey(), email, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Clear implements Store.
func (r *RedisStore) Clear(ctx context.Context) error {
	err := r.rdb.Del(ctx, r.tokenKey(), r.emailKey()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis clear session: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
