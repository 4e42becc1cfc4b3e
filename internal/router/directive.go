// Package router implements the per-turn routing state machine: it
// resolves the active agent for a thread, dispatches the turn, applies
// transfer directives, and persists session and checkpoint state.
package router

import (
	"encoding/json"
	"strings"

	"github.com/tellergo-dev/tellergo/agent"
)

// DirectiveKind tags how a transfer directive was expressed.
type DirectiveKind int

const (
	// DirectiveNone means no transfer was requested.
	DirectiveNone DirectiveKind = iota
	// DirectiveStructured is a {"goto": target} tool payload.
	DirectiveStructured
	// DirectiveLegacy is the old "TRANSFER_REQUEST:target" string marker.
	DirectiveLegacy
)

// legacyPrefix is the backward-compatible string marker some tool
// backends still emit.
const legacyPrefix = "TRANSFER_REQUEST:"

// Directive is a resolved transfer request.
type Directive struct {
	Kind   DirectiveKind
	Target string
}

// ExtractDirective scans msgs newest-first for a transfer directive in
// tool-result messages. Structured directives win over legacy markers
// anywhere in the batch; within a kind, the newest match wins. A batch
// with no parseable directive yields DirectiveNone, never an error.
func ExtractDirective(msgs []agent.Message) Directive {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != agent.RoleTool {
			continue
		}
		if target, ok := parseStructured(msgs[i]); ok {
			return Directive{Kind: DirectiveStructured, Target: target}
		}
	}

	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != agent.RoleTool {
			continue
		}
		if target, ok := parseLegacy(msgs[i]); ok {
			return Directive{Kind: DirectiveLegacy, Target: target}
		}
	}

	return Directive{Kind: DirectiveNone}
}

func parseStructured(m agent.Message) (string, bool) {
	if target, ok := m.Payload["goto"].(string); ok && target != "" {
		return target, true
	}

	// Tool results from older producers carry bare JSON in Content.
	var obj map[string]any
	if err := json.Unmarshal([]byte(m.Content), &obj); err != nil {
		return "", false
	}
	if target, ok := obj["goto"].(string); ok && target != "" {
		return target, true
	}
	return "", false
}

func parseLegacy(m agent.Message) (string, bool) {
	rest, ok := strings.CutPrefix(m.Content, legacyPrefix)
	if !ok {
		return "", false
	}
	target := strings.TrimSpace(rest)
	return target, target != ""
}
