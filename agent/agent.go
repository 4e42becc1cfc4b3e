package agent

import "context"

// TurnContext carries per-turn configuration into an invocation.
type TurnContext struct {
	// Thread identifies the conversation.
	Thread ThreadID

	// Interactive marks an ephemeral local session (CLI testing). Some
	// persistence side effects are keyed off this flag.
	Interactive bool
}

// Invoker is the agent role invocation contract. An Invoker binds a role's
// instruction prompt and capability subset to a single entry point.
//
// Invoke receives the current message sequence and returns the assistant
// and tool messages produced during the invocation; the caller appends
// them to the history. A routing directive, if any, is embedded in a
// tool-result message of the returned batch; it is never returned out of
// band.
type Invoker interface {
	// Name returns the agent identifier (e.g. "sales_agent"). Names must
	// be unique within a Router.
	Name() string

	// Invoke runs one synchronous agent execution.
	Invoke(ctx context.Context, msgs []Message, tc TurnContext) ([]Message, error)
}
