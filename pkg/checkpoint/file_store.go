package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/tellergo-dev/tellergo/agent"
)

var safeComponent = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

func validateThread(id agent.ThreadID) error {
	for _, part := range []string{id.Tenant, id.User, id.Thread} {
		if part == "" || len(part) > 256 || !safeComponent.MatchString(part) {
			return fmt.Errorf("invalid thread identity component: %q", part)
		}
	}
	return nil
}

// FileStore persists checkpoints as one directory per thread with one JSON
// file per version.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
	closed  bool
}

// NewFileStore creates the base directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) threadDir(id agent.ThreadID) string {
	name := strings.Join([]string{id.Tenant, id.User, id.Thread}, "__")
	return filepath.Join(s.baseDir, name)
}

func (s *FileStore) versionPath(id agent.ThreadID, version int64) string {
	return filepath.Join(s.threadDir(id), fmt.Sprintf("%08d.json", version))
}

// nextVersion counts existing version files. Saves hold the store lock, so
// the count is stable for the duration of a save.
func (s *FileStore) nextVersion(id agent.ThreadID) (int64, error) {
	entries, err := os.ReadDir(s.threadDir(id))
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("read thread directory: %w", err)
	}
	var n int64
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			n++
		}
	}
	return n + 1, nil
}

func (s *FileStore) Save(ctx context.Context, state *State) (int64, error) {
	id := state.Thread()
	if err := validateThread(id); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStoreClosed
	}

	if err := os.MkdirAll(s.threadDir(id), 0o700); err != nil {
		return 0, fmt.Errorf("create thread directory: %w", err)
	}

	version, err := s.nextVersion(id)
	if err != nil {
		return 0, err
	}

	cp := cloneState(state)
	cp.Version = version
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := os.WriteFile(s.versionPath(id, version), data, 0o600); err != nil {
		return 0, fmt.Errorf("write checkpoint file: %w", err)
	}
	return version, nil
}

func (s *FileStore) Latest(ctx context.Context, id agent.ThreadID) (*State, error) {
	if err := validateThread(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	version, err := s.nextVersion(id)
	if err != nil {
		return nil, err
	}
	if version == 1 {
		return nil, ErrNotFound
	}
	return s.load(id, version-1)
}

func (s *FileStore) Load(ctx context.Context, id agent.ThreadID, version int64) (*State, error) {
	if err := validateThread(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.load(id, version)
}

func (s *FileStore) load(id agent.ThreadID, version int64) (*State, error) {
	data, err := os.ReadFile(s.versionPath(id, version)) //nolint:gosec // path built from validated components
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read checkpoint file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return &state, nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
