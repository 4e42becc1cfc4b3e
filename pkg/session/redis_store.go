package session

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

// RedisStore implements Store on Redis for multi-node deployments.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	mu     sync.RWMutex
	closed bool
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string
	// Password is optional.
	Password string
	// DB is the Redis database number.
	DB int
	// Prefix is the key prefix (default "tellergo:session:").
	Prefix string
	// TTL is the record expiry (0 = never expire).
	TTL time.Duration
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

	return NewRedisStoreFromClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisStoreFromClient wraps an existing client. Useful for testing with
// miniredis.
func NewRedisStoreFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "tellergo:session:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) recordKey(id agent.ThreadID) string {
	return s.prefix + "record:" + id.Key()
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "threads"
}

func (s *RedisStore) guard() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context, id agent.ThreadID) (*Record, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Write(ctx context.Context, rec *Record) error {
	if err := s.guard(); err != nil {
		return err
	}

	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	id := rec.Thread()
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.recordKey(id), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), id.Key())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func (s *RedisStore) PatchActiveAgent(ctx context.Context, id agent.ThreadID, active string) error {
	rec, err := s.Read(ctx, id)
	if err != nil {
		return err
	}
	rec.ActiveAgent = active
	return s.Write(ctx, rec)
}

func (s *RedisStore) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	keys, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	var out []*Record
	for _, key := range keys {
		data, err := s.client.Get(ctx, s.prefix+"record:"+key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Record expired; drop the dangling index entry.
				s.client.SRem(ctx, s.indexKey(), key)
				continue
			}
			return nil, fmt.Errorf("get record: %w", err)
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		if opts.TenantID != "" && rec.TenantID != opts.TenantID {
			continue
		}
		out = append(out, &rec)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id agent.ThreadID) error {
	if err := s.guard(); err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.recordKey(id))
	pipe.SRem(ctx, s.indexKey(), id.Key())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
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
