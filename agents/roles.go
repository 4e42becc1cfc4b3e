package agents

import (
	"context"
	"fmt"
	"log"

	"github.com/tellergo-dev/tellergo/agent"
	"github.com/tellergo-dev/tellergo/internal/prompts"
	"github.com/tellergo-dev/tellergo/pkg/mcp"
	"github.com/tellergo-dev/tellergo/pkg/session"
	"github.com/tellergo-dev/tellergo/pkg/tools"
)

// Deps bundles the collaborators shared by every agent.
type Deps struct {
	Client   OpenAIClient
	Caller   Caller
	Tools    []mcp.Tool // full capability catalog
	Prompts  *prompts.Library
	Sessions session.Store
	Model    ModelConfig
}

// NewCoordinator builds the routing agent. It only sees the
// agent-transfer tools.
func NewCoordinator(d Deps) agent.Invoker {
	return newRole(d, agent.Coordinator)
}

// NewCustomerSupport builds the service and branch-lookup agent.
func NewCustomerSupport(d Deps) agent.Invoker {
	return &specialist{inner: newRole(d, agent.CustomerSupport), sessions: d.Sessions}
}

// NewSales builds the accounts and offers agent.
func NewSales(d Deps) agent.Invoker {
	return &specialist{inner: newRole(d, agent.Sales), sessions: d.Sessions}
}

// NewTransactions builds the money-movement agent. Its invocations get
// the thread identity injected as a single-turn system message so the
// model can satisfy bank_transfer's audit arguments; that message never
// appears in its output.
func NewTransactions(d Deps) agent.Invoker {
	return &specialist{
		inner:    &transactions{inner: newRole(d, agent.Transactions)},
		sessions: d.Sessions,
	}
}

// All builds the full agent set keyed by name.
func All(d Deps) map[string]agent.Invoker {
	return map[string]agent.Invoker{
		agent.Coordinator:     NewCoordinator(d),
		agent.CustomerSupport: NewCustomerSupport(d),
		agent.Sales:           NewSales(d),
		agent.Transactions:    NewTransactions(d),
	}
}

func newRole(d Deps, name string) *ReactInvoker {
	subset := mcp.FilterByPrefix(d.Tools, tools.PrefixesForRole(name))
	return NewReactInvoker(name, d.Prompts.Load(name), d.Model, d.Client, d.Caller, subset)
}

// specialist records its agent as the thread's active agent before the
// model runs, so an interrupted turn still resumes with the same agent.
type specialist struct {
	inner    agent.Invoker
	sessions session.Store
}

func (s *specialist) Name() string { return s.inner.Name() }

func (s *specialist) Invoke(ctx context.Context, history []agent.Message, tc agent.TurnContext) ([]agent.Message, error) {
	if err := s.sessions.PatchActiveAgent(ctx, tc.Thread, s.inner.Name()); err != nil {
		// The turn still runs; the router's write-through will converge
		// the record afterwards.
		log.Printf("%s: could not patch active agent for %s: %v", s.inner.Name(), tc.Thread.Key(), err)
	}
	return s.inner.Invoke(ctx, history, tc)
}

// transactions injects the thread identity for one invocation and strips
// every system message from the result.
type transactions struct {
	inner agent.Invoker
}

func (t *transactions) Name() string { return t.inner.Name() }

func (t *transactions) Invoke(ctx context.Context, history []agent.Message, tc agent.TurnContext) ([]agent.Message, error) {
	ident := agent.NewMessage(agent.RoleSystem, fmt.Sprintf(
		"When calling the bank_transfer tool, be sure to pass tenantId=%q, userId=%q and threadId=%q.",
		tc.Thread.Tenant, tc.Thread.User, tc.Thread.Thread))

	withIdent := make([]agent.Message, 0, len(history)+1)
	withIdent = append(withIdent, history...)
	withIdent = append(withIdent, ident)

	out, err := t.inner.Invoke(ctx, withIdent, tc)
	if err != nil {
		return nil, err
	}
	return agent.StripSystem(out), nil
}
