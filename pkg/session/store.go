package session

import (
	"context"
	"errors"

	"github.com/tellergo-dev/tellergo/agent"
)

// Common errors for storage operations.
var (
	// ErrNotFound is returned when no record exists for a thread.
	// Callers treat it as a normal value, not a failure.
	ErrNotFound = errors.New("session record not found")
	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("session store is closed")
)

// Store abstracts session persistence. Implementations must be safe for
// concurrent use and must serialize writes per thread identity.
type Store interface {
	// Read retrieves the record for a thread.
	// Returns ErrNotFound if no record exists.
	Read(ctx context.Context, id agent.ThreadID) (*Record, error)

	// Write upserts a record keyed by (tenant, user, thread).
	Write(ctx context.Context, rec *Record) error

	// PatchActiveAgent updates only the active-agent field of an existing
	// record. Returns ErrNotFound if the record does not exist.
	PatchActiveAgent(ctx context.Context, id agent.ThreadID, active string) error

	// List returns records matching the filter options.
	List(ctx context.Context, opts ListOptions) ([]*Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id agent.ThreadID) error

	// Close releases any resources held by the store.
	Close() error
}

// ListOptions filters List results.
type ListOptions struct {
	// TenantID restricts results to one tenant. Empty matches all.
	TenantID string
	// Limit caps the number of results. Zero means no cap.
	Limit int
}
