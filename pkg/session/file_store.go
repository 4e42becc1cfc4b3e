package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/tellergo-dev/tellergo/agent"
)

// safeComponent restricts thread-identity components to characters that are
// safe to embed in a file name. Rejecting anything else closes the path
// traversal hole without an escaping scheme.
var safeComponent = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

func validateThread(id agent.ThreadID) error {
	for _, part := range []string{id.Tenant, id.User, id.Thread} {
		if part == "" {
			return fmt.Errorf("thread identity component is empty")
		}
		if len(part) > 256 {
			return fmt.Errorf("thread identity component too long")
		}
		if !safeComponent.MatchString(part) {
			return fmt.Errorf("thread identity component contains invalid characters: %q", part)
		}
	}
	return nil
}

// FileStore persists session records as one JSON file per thread. It is the
// default store for single-node deployments.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
	closed  bool
}

// NewFileStore creates the base directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(id agent.ThreadID) string {
	name := strings.Join([]string{id.Tenant, id.User, id.Thread}, "__")
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) Read(ctx context.Context, id agent.ThreadID) (*Record, error) {
	if err := validateThread(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	data, err := os.ReadFile(s.path(id)) //nolint:gosec // path built from validated components
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

func (s *FileStore) Write(ctx context.Context, rec *Record) error {
	id := rec.Thread()
	if err := validateThread(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	rec.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := os.WriteFile(s.path(id), data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (s *FileStore) PatchActiveAgent(ctx context.Context, id agent.ThreadID, active string) error {
	rec, err := s.Read(ctx, id)
	if err != nil {
		return err
	}
	rec.ActiveAgent = active
	return s.Write(ctx, rec)
}

func (s *FileStore) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read session directory: %w", err)
	}

	var out []*Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name())) //nolint:gosec
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
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

func (s *FileStore) Delete(ctx context.Context, id agent.ThreadID) error {
	if err := validateThread(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
