package security

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// TurnLimiter throttles conversation turns. A global bucket caps overall
// throughput and per-thread buckets keep one chat from starving the rest.
type TurnLimiter struct {
	global  *rate.Limiter
	threads map[string]*rate.Limiter
	mu      sync.RWMutex

	turnsPerSecond float64
	burst          int
}

// NewTurnLimiter creates a limiter allowing turnsPerSecond sustained with
// the given burst, applied both globally and per thread key.
func NewTurnLimiter(turnsPerSecond float64, burst int) *TurnLimiter {
	return &TurnLimiter{
		global:         rate.NewLimiter(rate.Limit(turnsPerSecond), burst),
		threads:        make(map[string]*rate.Limiter),
		turnsPerSecond: turnsPerSecond,
		burst:          burst,
	}
}

// Allow reports whether a turn for the thread may proceed right now.
func (tl *TurnLimiter) Allow(threadKey string) bool {
	if !tl.global.Allow() {
		return false
	}
	return tl.threadLimiter(threadKey).Allow()
}

// Wait blocks until a turn for the thread may proceed or ctx is done.
func (tl *TurnLimiter) Wait(ctx context.Context, threadKey string) error {
	if err := tl.global.Wait(ctx); err != nil {
		return fmt.Errorf("global turn limit: %w", err)
	}
	if err := tl.threadLimiter(threadKey).Wait(ctx); err != nil {
		return fmt.Errorf("thread turn limit: %w", err)
	}
	return nil
}

func (tl *TurnLimiter) threadLimiter(threadKey string) *rate.Limiter {
	tl.mu.RLock()
	limiter, exists := tl.threads[threadKey]
	tl.mu.RUnlock()

	if exists {
		return limiter
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := tl.threads[threadKey]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(tl.turnsPerSecond), tl.burst)
	tl.threads[threadKey] = limiter
	return limiter
}

// ToolLimiter throttles individual tool executions. Tools without an
// explicit limit are never throttled.
type ToolLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// NewToolLimiter creates an empty tool limiter.
func NewToolLimiter() *ToolLimiter {
	return &ToolLimiter{limiters: make(map[string]*rate.Limiter)}
}

// SetLimit configures the rate limit for a specific tool.
func (tl *ToolLimiter) SetLimit(toolName string, callsPerSecond float64, burst int) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.limiters[toolName] = rate.NewLimiter(rate.Limit(callsPerSecond), burst)
}

// Allow reports whether a call to the tool may proceed right now.
func (tl *ToolLimiter) Allow(toolName string) bool {
	tl.mu.RLock()
	limiter, exists := tl.limiters[toolName]
	tl.mu.RUnlock()

	if !exists {
		return true
	}
	return limiter.Allow()
}

// Wait blocks until a call to the tool may proceed or ctx is done.
func (tl *ToolLimiter) Wait(ctx context.Context, toolName string) error {
	tl.mu.RLock()
	limiter, exists := tl.limiters[toolName]
	tl.mu.RUnlock()

	if !exists {
		return nil
	}
	return limiter.Wait(ctx)
}
