package checkpoint

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tellergo-dev/tellergo/agent"
)

// MemoryStore is an in-memory checkpoint store for tests and ephemeral runs.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string][]*State
	closed bool
}

// NewMemoryStore creates an empty in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string][]*State)}
}

func (s *MemoryStore) Save(ctx context.Context, state *State) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	key := state.Thread().Key()
	cp := cloneState(state)
	cp.Version = int64(len(s.states[key]) + 1)
	s.states[key] = append(s.states[key], cp)
	return cp.Version, nil
}

func (s *MemoryStore) Latest(ctx context.Context, id agent.ThreadID) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	versions := s.states[id.Key()]
	if len(versions) == 0 {
		return nil, ErrNotFound
	}
	return cloneState(versions[len(versions)-1]), nil
}

func (s *MemoryStore) Load(ctx context.Context, id agent.ThreadID, version int64) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	versions := s.states[id.Key()]
	if version < 1 || version > int64(len(versions)) {
		return nil, ErrNotFound
	}
	return cloneState(versions[version-1]), nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func cloneState(state *State) *State {
	data, _ := json.Marshal(state)
	var cp State
	_ = json.Unmarshal(data, &cp)
	return &cp
}
