package agent

import (
	"testing"
)

func TestNewToolResultStructured(t *testing.T) {
	m := NewToolResult("transfer_to_sales_agent", "call-1", map[string]any{"goto": "sales_agent"})

	if m.Role != RoleTool {
		t.Errorf("Role = %v, want %v", m.Role, RoleTool)
	}
	if m.ToolName != "transfer_to_sales_agent" {
		t.Errorf("ToolName = %v", m.ToolName)
	}
	if m.Payload["goto"] != "sales_agent" {
		t.Errorf("Payload[goto] = %v, want sales_agent", m.Payload["goto"])
	}
	if m.Content == "" {
		t.Error("Content should carry the JSON form of the payload")
	}
}

func TestNewToolResultStringJSON(t *testing.T) {
	m := NewToolResult("bank_balance", "call-2", `{"balance": 120.5}`)
	if m.Payload == nil {
		t.Fatal("JSON string result should populate Payload")
	}
	if m.Payload["balance"] != 120.5 {
		t.Errorf("Payload[balance] = %v", m.Payload["balance"])
	}
}

func TestNewToolResultPlainString(t *testing.T) {
	m := NewToolResult("get_branch_location", "call-3", "12 Main St")
	if m.Payload != nil {
		t.Errorf("plain string should not populate Payload, got %v", m.Payload)
	}
	if m.Content != "12 Main St" {
		t.Errorf("Content = %q", m.Content)
	}
}

func TestStripSystem(t *testing.T) {
	msgs := []Message{
		NewMessage(RoleUser, "hi"),
		NewMessage(RoleSystem, "ephemeral context"),
		NewMessage(RoleAssistant, "hello"),
		NewMessage(RoleSystem, "more context"),
	}

	out := StripSystem(msgs)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	for _, m := range out {
		if m.Role == RoleSystem {
			t.Errorf("system message survived strip: %v", m)
		}
	}
}

func TestLastAssistant(t *testing.T) {
	msgs := []Message{
		NewMessage(RoleAssistant, "first"),
		NewMessage(RoleUser, "question"),
		NewMessage(RoleAssistant, "second"),
		NewMessage(RoleTool, "result"),
	}

	m, ok := LastAssistant(msgs)
	if !ok {
		t.Fatal("expected an assistant message")
	}
	if m.Content != "second" {
		t.Errorf("Content = %q, want second", m.Content)
	}

	if _, ok := LastAssistant(nil); ok {
		t.Error("empty sequence should report no assistant message")
	}
}

func TestThreadIDKey(t *testing.T) {
	id := ThreadID{Tenant: "contoso", User: "mark", Thread: "t-1"}
	if id.Key() != "contoso:mark:t-1" {
		t.Errorf("Key() = %q", id.Key())
	}
}
