package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tellergo-dev/tellergo/agent"
)

// MemoryStore is an in-memory Store for ephemeral sessions and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Read(ctx context.Context, id agent.ThreadID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	rec, ok := s.records[id.Key()]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) Write(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	cp := cloneRecord(rec)
	cp.UpdatedAt = time.Now().UTC()
	s.records[rec.Thread().Key()] = cp
	return nil
}

func (s *MemoryStore) PatchActiveAgent(ctx context.Context, id agent.ThreadID, active string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	rec, ok := s.records[id.Key()]
	if !ok {
		return ErrNotFound
	}
	rec.ActiveAgent = active
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	var out []*Record
	for _, rec := range s.records {
		if opts.TenantID != "" && rec.TenantID != opts.TenantID {
			continue
		}
		out = append(out, cloneRecord(rec))
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id agent.ThreadID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	delete(s.records, id.Key())
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// cloneRecord deep-copies a record so callers cannot mutate stored state.
func cloneRecord(rec *Record) *Record {
	data, _ := json.Marshal(rec)
	var cp Record
	_ = json.Unmarshal(data, &cp)
	return &cp
}
