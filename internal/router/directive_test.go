package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tellergo-dev/tellergo/agent"
)

func toolMsg(content string, payload map[string]any) agent.Message {
	m := agent.NewMessage(agent.RoleTool, content)
	m.ToolName = "transfer_to_sales_agent"
	m.Payload = payload
	return m
}

func TestExtractDirective(t *testing.T) {
	tests := []struct {
		name       string
		msgs       []agent.Message
		wantKind   DirectiveKind
		wantTarget string
	}{
		{
			name:     "empty batch",
			msgs:     nil,
			wantKind: DirectiveNone,
		},
		{
			name: "structured payload",
			msgs: []agent.Message{
				toolMsg(`{"goto":"sales_agent"}`, map[string]any{"goto": "sales_agent"}),
			},
			wantKind:   DirectiveStructured,
			wantTarget: "sales_agent",
		},
		{
			name: "structured content without payload",
			msgs: []agent.Message{
				toolMsg(`{"goto":"transactions_agent"}`, nil),
			},
			wantKind:   DirectiveStructured,
			wantTarget: "transactions_agent",
		},
		{
			name: "legacy marker",
			msgs: []agent.Message{
				toolMsg("TRANSFER_REQUEST:sales_agent", nil),
			},
			wantKind:   DirectiveLegacy,
			wantTarget: "sales_agent",
		},
		{
			name: "structured wins over newer legacy",
			msgs: []agent.Message{
				toolMsg(`{"goto":"transactions_agent"}`, map[string]any{"goto": "transactions_agent"}),
				toolMsg("TRANSFER_REQUEST:sales_agent", nil),
			},
			wantKind:   DirectiveStructured,
			wantTarget: "transactions_agent",
		},
		{
			name: "newest structured wins",
			msgs: []agent.Message{
				toolMsg(`{"goto":"sales_agent"}`, map[string]any{"goto": "sales_agent"}),
				toolMsg(`{"goto":"transactions_agent"}`, map[string]any{"goto": "transactions_agent"}),
			},
			wantKind:   DirectiveStructured,
			wantTarget: "transactions_agent",
		},
		{
			name: "non-tool messages are ignored",
			msgs: []agent.Message{
				agent.NewMessage(agent.RoleAssistant, `{"goto":"sales_agent"}`),
				agent.NewMessage(agent.RoleUser, "TRANSFER_REQUEST:sales_agent"),
			},
			wantKind: DirectiveNone,
		},
		{
			name: "malformed payloads fall through",
			msgs: []agent.Message{
				toolMsg("not json at all", nil),
				toolMsg(`{"status":"completed"}`, map[string]any{"status": "completed"}),
			},
			wantKind: DirectiveNone,
		},
		{
			name: "empty legacy target is no directive",
			msgs: []agent.Message{
				toolMsg("TRANSFER_REQUEST:", nil),
			},
			wantKind: DirectiveNone,
		},
		{
			name: "empty goto is no directive",
			msgs: []agent.Message{
				toolMsg(`{"goto":""}`, map[string]any{"goto": ""}),
			},
			wantKind: DirectiveNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractDirective(tt.msgs)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantTarget, got.Target)
		})
	}
}
