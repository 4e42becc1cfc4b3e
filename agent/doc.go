// Package agent defines the core conversation types shared across Tellergo:
// the tagged Message variant, thread identity, and the Invoker contract that
// role implementations satisfy.
package agent
