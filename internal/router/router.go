package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tellergo-dev/tellergo/agent"
	"github.com/tellergo-dev/tellergo/internal/observability"
	"github.com/tellergo-dev/tellergo/pkg/checkpoint"
	metrics "github.com/tellergo-dev/tellergo/pkg/observability"
	"github.com/tellergo-dev/tellergo/pkg/security"
	"github.com/tellergo-dev/tellergo/pkg/session"
)

// PositionHumanWait is the graph position recorded when a turn has
// handed control back to the human.
const PositionHumanWait = "human_wait"

// Config wires the router's collaborators.
type Config struct {
	Sessions    session.Store
	Checkpoints checkpoint.Store
	Agents      map[string]agent.Invoker

	// Limiter, when set, throttles turns per thread.
	Limiter *security.TurnLimiter

	// Interactive marks locally driven sessions: missing session records
	// are seeded eagerly so specialists can patch them.
	Interactive bool
}

// Router is the per-turn routing state machine. A Router is safe for
// concurrent use across distinct threads; turns for one thread must be
// driven sequentially by the caller.
type Router struct {
	sessions    session.Store
	checkpoints checkpoint.Store
	agents      map[string]agent.Invoker
	limiter     *security.TurnLimiter
	interactive bool
}

// TurnResult is what a completed turn hands back to the human boundary.
type TurnResult struct {
	// Agent is the agent that produced the reply.
	Agent string

	// Reply is the newest assistant message content, empty if the agent
	// produced none.
	Reply string

	// Messages is the full persisted history after the turn.
	Messages []agent.Message
}

// New validates the wiring and builds a Router.
func New(cfg Config) (*Router, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("router: session store is required")
	}
	if cfg.Checkpoints == nil {
		return nil, errors.New("router: checkpoint store is required")
	}
	if _, ok := cfg.Agents[agent.Coordinator]; !ok {
		return nil, fmt.Errorf("router: agent set is missing %s", agent.Coordinator)
	}

	return &Router{
		sessions:    cfg.Sessions,
		checkpoints: cfg.Checkpoints,
		agents:      cfg.Agents,
		limiter:     cfg.Limiter,
		interactive: cfg.Interactive,
	}, nil
}

// Turn runs one conversation turn: it appends the user input, resolves
// which agent handles it, executes that agent and suspends at the human
// boundary. Every turn ends waiting for the human; no agent chains into
// another agent's execution.
func (r *Router) Turn(ctx context.Context, thread agent.ThreadID, input string) (*TurnResult, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "router.turn", map[string]any{"thread": thread.Key()})
	defer span.End()

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, thread.Key()); err != nil {
			return nil, fmt.Errorf("turn throttled: %w", err)
		}
	}

	rec := r.loadOrInit(ctx, thread)

	history := make([]agent.Message, 0, len(rec.Messages)+1)
	history = append(history, rec.Messages...)
	history = append(history, agent.NewMessage(agent.RoleUser, input))

	tc := agent.TurnContext{Thread: thread, Interactive: r.interactive}

	// Skip-routing: a thread locked to a specialist goes straight there,
	// with no coordinator call.
	if active := rec.ActiveAgent; agent.IsSpecialist(active) {
		if _, ok := r.agents[active]; ok {
			span.SetAttribute("route", "skip")
			metrics.RecordSkipRouting()
			return r.runSpecialist(ctx, rec, active, history, tc, start)
		}
		log.Printf("router: active agent %s has no invoker, re-routing via coordinator", active)
	}

	span.SetAttribute("route", "coordinator")
	produced, err := r.agents[agent.Coordinator].Invoke(ctx, history, tc)
	if err != nil {
		span.SetError(err)
		metrics.RecordTurn(agent.Coordinator, "error", time.Since(start))
		return nil, fmt.Errorf("coordinator invocation: %w", err)
	}
	history = append(history, produced...)
	r.saveCheckpoint(ctx, thread, agent.Coordinator, history)

	if d := ExtractDirective(produced); d.Kind != DirectiveNone {
		if agent.IsSpecialist(d.Target) && r.agents[d.Target] != nil {
			span.SetAttribute("transfer", d.Target)
			metrics.RecordTransfer(d.Target, kindLabel(d.Kind))
			rec.ActiveAgent = d.Target
			return r.runSpecialist(ctx, rec, d.Target, history, tc, start)
		}
		// A malformed target is a parse failure, not a turn failure.
		log.Printf("router: directive names unknown agent %q, ignoring", d.Target)
	}

	// No transfer requested: the coordinator answered directly.
	rec.Messages = history
	if err := r.sessions.Write(ctx, rec); err != nil {
		log.Printf("router: session write for %s failed: %v", thread.Key(), err)
	}
	r.saveCheckpoint(ctx, thread, PositionHumanWait, history)
	metrics.RecordTurn(agent.Coordinator, "ok", time.Since(start))
	return result(agent.Coordinator, history), nil
}

// runSpecialist persists the active-agent decision, executes the
// specialist, and suspends at the human boundary.
func (r *Router) runSpecialist(ctx context.Context, rec *session.Record, name string, history []agent.Message, tc agent.TurnContext, start time.Time) (*TurnResult, error) {
	// Write-through: the routing decision is durable before the
	// specialist's own side effects count.
	rec.ActiveAgent = name
	rec.Messages = history
	if err := r.sessions.Write(ctx, rec); err != nil {
		metrics.RecordTurn(name, "error", time.Since(start))
		return nil, fmt.Errorf("active-agent write-through: %w", err)
	}

	produced, err := r.agents[name].Invoke(ctx, history, tc)
	if err != nil {
		metrics.RecordTurn(name, "error", time.Since(start))
		return nil, fmt.Errorf("%s invocation: %w", name, err)
	}

	// Single-turn system context must never outlive the invocation.
	history = append(history, agent.StripSystem(produced)...)

	rec.Messages = history
	if err := r.sessions.Write(ctx, rec); err != nil {
		log.Printf("router: session write for %s failed: %v", rec.Thread().Key(), err)
	}
	r.saveCheckpoint(ctx, rec.Thread(), PositionHumanWait, history)
	metrics.RecordTurn(name, "ok", time.Since(start))
	return result(name, history), nil
}

// loadOrInit resolves the session record for a thread. Missing records
// and store failures both fall back to a fresh record so routing
// defaults to the coordinator; a surviving checkpoint still restores the
// message history.
func (r *Router) loadOrInit(ctx context.Context, thread agent.ThreadID) *session.Record {
	rec, err := r.sessions.Read(ctx, thread)
	if err == nil {
		return rec
	}
	if !errors.Is(err, session.ErrNotFound) {
		log.Printf("router: session read for %s failed: %v", thread.Key(), err)
	}

	rec = session.NewRecord(thread)
	if cp, cperr := r.checkpoints.Latest(ctx, thread); cperr == nil {
		rec.Messages = cp.Messages
	}

	if r.interactive {
		// Seed the record so specialists have something to patch.
		if werr := r.sessions.Write(ctx, rec); werr != nil {
			log.Printf("router: seeding session for %s failed: %v", thread.Key(), werr)
		}
	}
	return rec
}

func (r *Router) saveCheckpoint(ctx context.Context, thread agent.ThreadID, position string, history []agent.Message) {
	if _, err := r.checkpoints.Save(ctx, checkpoint.NewState(thread, position, history)); err != nil {
		metrics.RecordCheckpoint("error")
		log.Printf("router: checkpoint save at %s for %s failed: %v", position, thread.Key(), err)
		return
	}
	metrics.RecordCheckpoint("ok")
}

func result(name string, history []agent.Message) *TurnResult {
	res := &TurnResult{Agent: name, Messages: history}
	if last, ok := agent.LastAssistant(history); ok {
		res.Reply = last.Content
	}
	return res
}

func kindLabel(kind DirectiveKind) string {
	if kind == DirectiveLegacy {
		return "legacy"
	}
	return "structured"
}
