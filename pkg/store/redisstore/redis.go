// Package redisstore keeps field values in one Redis hash per owner.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-fieldblocks/pkg/store"
)

const defaultPrefix = "fieldblocks:values:"

// Config mirrors the connection settings accepted by New.
type Config struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// Store implements store.Store on top of a go-redis client.
type Store struct {
	client redis.UniversalClient
	prefix string
}

var (
	_ store.Store      = (*Store)(nil)
	_ store.BulkGetter = (*Store)(nil)
)

// New dials a client from cfg.
func New(cfg Config) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return NewWithClient(client, cfg.Prefix)
}

// NewWithClient wraps an existing client. An empty prefix uses the default.
func NewWithClient(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redisstore: ping: %w", err)
	}
	return nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, ownerID, key string) (any, bool, error) {
	raw, err := s.client.HGet(ctx, s.ownerKey(ownerID), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redisstore: hget %q: %w", key, err)
	}
	value, err := store.DecodeValue(raw)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// GetMany implements store.BulkGetter with a single HMGET.
func (s *Store) GetMany(ctx context.Context, ownerID string, keys []string) (map[string]any, error) {
	out := make(map[string]any, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	results, err := s.client.HMGet(ctx, s.ownerKey(ownerID), keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: hmget: %w", err)
	}
	for idx, result := range results {
		raw, ok := result.(string)
		if !ok {
			continue
		}
		value, err := store.DecodeValue([]byte(raw))
		if err != nil {
			return nil, err
		}
		out[keys[idx]] = value
	}
	return out, nil
}

// Save implements store.Store with a single HSET carrying every field.
func (s *Store) Save(ctx context.Context, ownerID string, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	args := make([]any, 0, len(values)*2)
	for key, value := range values {
		payload, err := store.EncodeValue(value)
		if err != nil {
			return err
		}
		args = append(args, key, string(payload))
	}
	if err := s.client.HSet(ctx, s.ownerKey(ownerID), args...).Err(); err != nil {
		return fmt.Errorf("redisstore: hset owner %q: %w", ownerID, err)
	}
	return nil
}

func (s *Store) ownerKey(ownerID string) string {
	return s.prefix + ownerID
}
