package mcp

import (
	"context"
	"testing"
)

func echoTool(name string, required ...string) Tool {
	schema := Schema{}
	for _, field := range required {
		schema[field] = SchemaField{Type: "string", Required: true}
	}
	return Tool{
		Name:        name,
		Description: "test tool",
		Schema:      schema,
		Handler: func(ctx context.Context, args Args) (any, error) {
			return map[string]any{"tool": name}, nil
		},
	}
}

func TestServerRegisterAndList(t *testing.T) {
	srv := NewServer("test")

	for _, name := range []string{"zeta_tool", "alpha_tool"} {
		if err := srv.RegisterTool(echoTool(name)); err != nil {
			t.Fatalf("RegisterTool(%s) error = %v", name, err)
		}
	}

	if err := srv.RegisterTool(echoTool("alpha_tool")); err == nil {
		t.Error("duplicate registration should fail")
	}

	tools, err := srv.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("ListTools() = %d tools, want 2", len(tools))
	}
	// Sorted for deterministic partitioning.
	if tools[0].Name != "alpha_tool" || tools[1].Name != "zeta_tool" {
		t.Errorf("ListTools() order = %s, %s", tools[0].Name, tools[1].Name)
	}
}

func TestServerCallTool(t *testing.T) {
	srv := NewServer("test")
	if err := srv.RegisterTool(echoTool("bank_balance", "accountId")); err != nil {
		t.Fatalf("RegisterTool() error = %v", err)
	}

	ctx := context.Background()

	// Missing required arg fails schema validation.
	if _, err := srv.CallTool(ctx, "bank_balance", Args{}); err == nil {
		t.Error("CallTool() without required arg should fail")
	}

	// Wrong type fails too.
	if _, err := srv.CallTool(ctx, "bank_balance", Args{"accountId": 42}); err == nil {
		t.Error("CallTool() with wrong arg type should fail")
	}

	result, err := srv.CallTool(ctx, "bank_balance", Args{"accountId": "a-1"})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if m, ok := result.(map[string]any); !ok || m["tool"] != "bank_balance" {
		t.Errorf("CallTool() result = %v", result)
	}

	if _, err := srv.CallTool(ctx, "no_such_tool", Args{}); err == nil {
		t.Error("CallTool() on unknown tool should fail")
	}
}

func TestFilterByPrefix(t *testing.T) {
	tools := []Tool{
		echoTool("transfer_to_sales_agent"),
		echoTool("transfer_to_transactions_agent"),
		echoTool("bank_balance"),
		echoTool("bank_transfer"),
		echoTool("service_request"),
	}

	tests := []struct {
		name     string
		prefixes []string
		want     int
	}{
		{"transfer family", []string{"transfer_to_"}, 2},
		{"exact names", []string{"bank_balance", "service_request"}, 2},
		{"prefix overlaps exact", []string{"bank_"}, 2},
		{"no match", []string{"get_offer"}, 0},
		{"mixed", []string{"transfer_to_sales_agent", "bank_transfer"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByPrefix(tools, tt.prefixes)
			if len(got) != tt.want {
				t.Errorf("FilterByPrefix(%v) = %d tools, want %d", tt.prefixes, len(got), tt.want)
			}
		})
	}
}

func TestSchemaJSONSchema(t *testing.T) {
	schema := Schema{
		"amount":    {Type: "number", Description: "transfer amount", Required: true},
		"reference": {Type: "string"},
	}

	js := schema.JSONSchema()
	if js["type"] != "object" {
		t.Errorf("type = %v, want object", js["type"])
	}
	props := js["properties"].(map[string]any)
	if len(props) != 2 {
		t.Errorf("properties = %d, want 2", len(props))
	}
	required := js["required"].([]string)
	if len(required) != 1 || required[0] != "amount" {
		t.Errorf("required = %v, want [amount]", required)
	}
}
