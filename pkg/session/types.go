// Package session provides durable per-thread conversation state: the
// active-agent pointer and message history keyed by (tenant, user, thread).
// The router reads the active agent at the start of every turn and writes it
// through on every transfer.
package session

import (
	"time"

	"github.com/tellergo-dev/tellergo/agent"
)

// ActiveAgentUnknown is the active-agent value for a thread that has not yet
// been locked to a specialist. The router treats it as "route through the
// coordinator".
const ActiveAgentUnknown = "unknown"

// Record is the persisted row for one conversation thread.
type Record struct {
	// TenantID, UserID and ThreadID form the partition key.
	TenantID string `json:"tenantId"`
	UserID   string `json:"userId"`
	ThreadID string `json:"threadId"`

	// ActiveAgent is the single agent currently owning the thread.
	// Mutated only via Write/PatchActiveAgent.
	ActiveAgent string `json:"activeAgent"`

	// Messages is the durable, append-only conversation history.
	Messages []agent.Message `json:"messages"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewRecord initializes a default record for a thread that has no session
// row yet.
func NewRecord(id agent.ThreadID) *Record {
	now := time.Now().UTC()
	return &Record{
		TenantID:    id.Tenant,
		UserID:      id.User,
		ThreadID:    id.Thread,
		ActiveAgent: ActiveAgentUnknown,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Thread returns the record's thread identity.
func (r *Record) Thread() agent.ThreadID {
	return agent.ThreadID{Tenant: r.TenantID, User: r.UserID, Thread: r.ThreadID}
}
