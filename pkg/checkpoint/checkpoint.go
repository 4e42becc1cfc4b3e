// Package checkpoint persists versioned snapshots of routing-graph execution
// state. A snapshot is written after every node transition; snapshots are
// immutable and superseded, never overwritten, so a thread can be resumed at
// its exact suspension point after a process restart, and audited at any
// earlier version.
package checkpoint

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tellergo-dev/tellergo/agent"
)

// Common errors for checkpoint operations.
var (
	// ErrNotFound is returned when no checkpoint exists for a thread or
	// version.
	ErrNotFound = errors.New("checkpoint not found")
	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("checkpoint store is closed")
)

// State is one snapshot of a thread's execution state.
type State struct {
	// ID is the unique checkpoint identifier.
	ID string `json:"id"`

	// TenantID, UserID and ThreadID identify the thread.
	TenantID string `json:"tenantId"`
	UserID   string `json:"userId"`
	ThreadID string `json:"threadId"`

	// Position is the graph node the thread was at when the snapshot was
	// taken (an agent name, or the human-wait node).
	Position string `json:"position"`

	// Messages is the full message sequence at snapshot time.
	Messages []agent.Message `json:"messages"`

	// Version is assigned by the store on save, strictly increasing per
	// thread starting at 1.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewState builds an unversioned snapshot for a thread.
func NewState(id agent.ThreadID, position string, msgs []agent.Message) *State {
	return &State{
		ID:        uuid.New().String(),
		TenantID:  id.Tenant,
		UserID:    id.User,
		ThreadID:  id.Thread,
		Position:  position,
		Messages:  msgs,
		CreatedAt: time.Now().UTC(),
	}
}

// Thread returns the snapshot's thread identity.
func (s *State) Thread() agent.ThreadID {
	return agent.ThreadID{Tenant: s.TenantID, User: s.UserID, Thread: s.ThreadID}
}

// Store abstracts checkpoint persistence. Implementations must be safe for
// concurrent use and must serialize saves per thread identity.
type Store interface {
	// Save appends a snapshot, assigns it the next version for its thread
	// and returns that version.
	Save(ctx context.Context, state *State) (int64, error)

	// Latest returns the newest snapshot for a thread.
	// Returns ErrNotFound if the thread has no checkpoints.
	Latest(ctx context.Context, id agent.ThreadID) (*State, error)

	// Load returns a specific version for point-in-time resume and audit.
	// Returns ErrNotFound if the version does not exist.
	Load(ctx context.Context, id agent.ThreadID, version int64) (*State, error)

	// Close releases any resources held by the store.
	Close() error
}
