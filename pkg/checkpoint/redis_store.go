package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tellergo-dev/tellergo/agent"
)

// RedisStore implements Store on Redis. Snapshots are appended to a per-
// thread list; the list index is the version minus one, so earlier versions
// stay addressable after later saves.
type RedisStore struct {
	client *redis.Client
	prefix string
	mu     sync.RWMutex
	closed bool
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix is the key prefix (default "tellergo:checkpoint:").
	Prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisStoreFromClient(client, cfg.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client. Useful for testing with
// miniredis.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "tellergo:checkpoint:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) listKey(id agent.ThreadID) string {
	return s.prefix + "thread:" + id.Key()
}

func (s *RedisStore) guard() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (s *RedisStore) Save(ctx context.Context, state *State) (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}

	// The store's per-thread serialization guarantee makes LLen+RPush
	// version assignment safe: no two saves for the same thread overlap.
	key := s.listKey(state.Thread())
	length, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("checkpoint length: %w", err)
	}

	cp := cloneState(state)
	cp.Version = length + 1
	data, err := json.Marshal(cp)
	if err != nil {
		return 0, fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return 0, fmt.Errorf("append checkpoint: %w", err)
	}
	return cp.Version, nil
}

func (s *RedisStore) Latest(ctx context.Context, id agent.ThreadID) (*State, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	data, err := s.client.LIndex(ctx, s.listKey(id), -1).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("latest checkpoint: %w", err)
	}
	return decodeState(data)
}

func (s *RedisStore) Load(ctx context.Context, id agent.ThreadID, version int64) (*State, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if version < 1 {
		return nil, ErrNotFound
	}

	data, err := s.client.LIndex(ctx, s.listKey(id), version-1).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return decodeState(data)
}

func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

func decodeState(data []byte) (*State, error) {
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return &state, nil
}
