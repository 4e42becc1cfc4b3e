package session

import (
	"context"
	"errors"
	"testing"

	"github.com/tellergo-dev/tellergo/agent"
)

var testThread = agent.ThreadID{Tenant: "contoso", User: "mark", Thread: "t-100"}

// storeUnderTest exercises the Store contract against any backend.
func storeUnderTest(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	// Missing record reads as ErrNotFound.
	if _, err := store.Read(ctx, testThread); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read() on empty store error = %v, want ErrNotFound", err)
	}

	// Patch on a missing record is ErrNotFound too.
	if err := store.PatchActiveAgent(ctx, testThread, "sales_agent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("PatchActiveAgent() on empty store error = %v, want ErrNotFound", err)
	}

	// Write then read round-trips.
	rec := NewRecord(testThread)
	rec.Messages = append(rec.Messages, agent.NewMessage(agent.RoleUser, "hello"))
	if err := store.Write(ctx, rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := store.Read(ctx, testThread)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.ActiveAgent != ActiveAgentUnknown {
		t.Errorf("ActiveAgent = %q, want %q", got.ActiveAgent, ActiveAgentUnknown)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Errorf("Messages = %+v, want the written user message", got.Messages)
	}

	// Patch mutates only the active agent.
	if err := store.PatchActiveAgent(ctx, testThread, "transactions_agent"); err != nil {
		t.Fatalf("PatchActiveAgent() error = %v", err)
	}
	got, err = store.Read(ctx, testThread)
	if err != nil {
		t.Fatalf("Read() after patch error = %v", err)
	}
	if got.ActiveAgent != "transactions_agent" {
		t.Errorf("ActiveAgent after patch = %q, want transactions_agent", got.ActiveAgent)
	}
	if len(got.Messages) != 1 {
		t.Errorf("patch must not touch history, len(Messages) = %d", len(got.Messages))
	}

	// List sees the record; tenant filter applies.
	recs, err := store.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("List() returned %d records, want 1", len(recs))
	}
	recs, err = store.List(ctx, ListOptions{TenantID: "other-tenant"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("List(other-tenant) returned %d records, want 0", len(recs))
	}

	// Delete is idempotent.
	if err := store.Delete(ctx, testThread); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, testThread); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if _, err := store.Read(ctx, testThread); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read() after delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer func() { _ = store.Close() }()
	storeUnderTest(t, store)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer func() { _ = store.Close() }()
	storeUnderTest(t, store)
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	rec := NewRecord(testThread)
	if err := store.Write(ctx, rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// Mutating what Read returned must not leak into the store.
	got, err := store.Read(ctx, testThread)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	got.ActiveAgent = "sales_agent"

	again, err := store.Read(ctx, testThread)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if again.ActiveAgent != ActiveAgentUnknown {
		t.Errorf("stored record was mutated externally, ActiveAgent = %q", again.ActiveAgent)
	}
}

func TestFileStoreRejectsUnsafeIdentity(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer func() { _ = store.Close() }()

	bad := agent.ThreadID{Tenant: "../escape", User: "mark", Thread: "t-1"}
	if _, err := store.Read(context.Background(), bad); err == nil {
		t.Error("Read() accepted a path-traversal tenant component")
	}
	if err := store.Write(context.Background(), NewRecord(bad)); err == nil {
		t.Error("Write() accepted a path-traversal tenant component")
	}
}
