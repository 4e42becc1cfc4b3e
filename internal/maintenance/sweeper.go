// Package maintenance runs background housekeeping over the session
// store. Checkpoints are append-only audit state and are deliberately
// left alone.
package maintenance

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tellergo-dev/tellergo/pkg/observability"
	"github.com/tellergo-dev/tellergo/pkg/session"
)

// Sweeper deletes session records that have been idle longer than the
// configured maximum age.
type Sweeper struct {
	sessions session.Store
	maxAge   time.Duration
	cron     *cron.Cron
}

// NewSweeper creates a sweeper firing on the given cron schedule
// (robfig/cron syntax, descriptors like "@hourly" included).
func NewSweeper(sessions session.Store, schedule string, maxAge time.Duration) (*Sweeper, error) {
	s := &Sweeper{
		sessions: sessions,
		maxAge:   maxAge,
		cron:     cron.New(),
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		swept, err := s.SweepOnce(context.Background())
		if err != nil {
			log.Printf("maintenance: sweep failed: %v", err)
			return
		}
		if swept > 0 {
			log.Printf("maintenance: swept %d stale sessions", swept)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start begins scheduled sweeping.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// SweepOnce deletes every record idle past the maximum age and returns
// how many were removed. Individual delete failures are logged and
// skipped so one bad record cannot wedge the sweep.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	recs, err := s.sessions.List(ctx, session.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}

	cutoff := time.Now().UTC().Add(-s.maxAge)
	swept := 0
	for _, rec := range recs {
		if !rec.UpdatedAt.Before(cutoff) {
			continue
		}
		if err := s.sessions.Delete(ctx, rec.Thread()); err != nil {
			log.Printf("maintenance: delete %s failed: %v", rec.Thread().Key(), err)
			continue
		}
		swept++
	}

	observability.SetActiveSessions(len(recs) - swept)
	observability.RecordSessionsSwept(swept)
	return swept, nil
}
