package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/tellergo-dev/tellergo/agent"
	"github.com/tellergo-dev/tellergo/pkg/session"
)

func TestSweepOnce_RemovesOnlyStaleRecords(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	stale := session.NewRecord(agent.ThreadID{Tenant: "contoso", User: "mark", Thread: "old"})
	if err := store.Write(ctx, stale); err != nil {
		t.Fatal(err)
	}

	sweeper, err := NewSweeper(store, "@hourly", 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(80 * time.Millisecond)

	fresh := session.NewRecord(agent.ThreadID{Tenant: "contoso", User: "mark", Thread: "new"})
	if err := store.Write(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	swept, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("SweepOnce() error = %v", err)
	}
	if swept != 1 {
		t.Errorf("swept = %d, want 1", swept)
	}

	if _, err := store.Read(ctx, stale.Thread()); err != session.ErrNotFound {
		t.Errorf("stale record still present, err = %v", err)
	}
	if _, err := store.Read(ctx, fresh.Thread()); err != nil {
		t.Errorf("fresh record removed: %v", err)
	}
}

func TestSweepOnce_EmptyStore(t *testing.T) {
	sweeper, err := NewSweeper(session.NewMemoryStore(), "@hourly", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	swept, err := sweeper.SweepOnce(context.Background())
	if err != nil || swept != 0 {
		t.Errorf("SweepOnce() = %d, %v", swept, err)
	}
}

func TestNewSweeper_RejectsBadSchedule(t *testing.T) {
	if _, err := NewSweeper(session.NewMemoryStore(), "every now and then", time.Hour); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestSweeper_StartStop(t *testing.T) {
	sweeper, err := NewSweeper(session.NewMemoryStore(), "@hourly", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	sweeper.Start()
	sweeper.Stop()
}
