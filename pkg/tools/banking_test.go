package tools

import (
	"context"
	"math"
	"testing"

	"github.com/tellergo-dev/tellergo/agent"
	"github.com/tellergo-dev/tellergo/pkg/mcp"
)

func newTestServer(t *testing.T) *mcp.Server {
	t.Helper()
	srv, err := NewBankingServer(NewLedger())
	if err != nil {
		t.Fatalf("NewBankingServer() error = %v", err)
	}
	return srv
}

func TestRoleSubsets(t *testing.T) {
	srv := newTestServer(t)
	all, err := srv.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}

	tests := []struct {
		role string
		want []string
	}{
		{agent.Coordinator, []string{
			"transfer_to_customer_support_agent",
			"transfer_to_sales_agent",
			"transfer_to_transactions_agent",
		}},
		{agent.CustomerSupport, []string{
			"get_branch_location",
			"service_request",
			"transfer_to_sales_agent",
			"transfer_to_transactions_agent",
		}},
		{agent.Sales, []string{
			"calculate_monthly_payment",
			"create_account",
			"get_offer_information",
			"transfer_to_customer_support_agent",
			"transfer_to_transactions_agent",
		}},
		{agent.Transactions, []string{
			"bank_balance",
			"bank_transfer",
			"get_transaction_history",
			"transfer_to_customer_support_agent",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			subset := mcp.FilterByPrefix(all, PrefixesForRole(tt.role))
			if len(subset) != len(tt.want) {
				t.Fatalf("subset = %d tools, want %d", len(subset), len(tt.want))
			}
			for i, tool := range subset {
				if tool.Name != tt.want[i] {
					t.Errorf("subset[%d] = %s, want %s", i, tool.Name, tt.want[i])
				}
			}
		})
	}
}

func TestTransferToolCarriesDirective(t *testing.T) {
	srv := newTestServer(t)

	result, err := srv.CallTool(context.Background(), "transfer_to_sales_agent", mcp.Args{})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	m, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("result type = %T", result)
	}
	if m["goto"] != agent.Sales {
		t.Errorf("goto = %v, want %s", m["goto"], agent.Sales)
	}
}

func TestBankTransfer(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	args := mcp.Args{
		"tenantId":    "contoso",
		"userId":      "mark",
		"threadId":    "t-1",
		"fromAccount": "checking",
		"toAccount":   "savings",
		"amount":      250.0,
	}
	result, err := srv.CallTool(ctx, "bank_transfer", args)
	if err != nil {
		t.Fatalf("CallTool(bank_transfer) error = %v", err)
	}
	if result.(map[string]any)["status"] != "completed" {
		t.Errorf("status = %v", result)
	}

	balance, err := srv.CallTool(ctx, "bank_balance", mcp.Args{"accountId": "checking"})
	if err != nil {
		t.Fatalf("CallTool(bank_balance) error = %v", err)
	}
	if got := balance.(map[string]any)["balance"].(float64); got != 5000.75 {
		t.Errorf("balance after transfer = %v, want 5000.75", got)
	}

	// Missing identity args are rejected by the schema.
	if _, err := srv.CallTool(ctx, "bank_transfer", mcp.Args{
		"fromAccount": "checking", "toAccount": "savings", "amount": 10.0,
	}); err == nil {
		t.Error("bank_transfer without identity args should fail")
	}

	// Overdrafts are refused.
	args["amount"] = 1e9
	if _, err := srv.CallTool(ctx, "bank_transfer", args); err == nil {
		t.Error("overdraft transfer should fail")
	}
}

func TestMonthlyPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     float64
		want      float64
		wantErr   bool
	}{
		{"standard loan", 200000, 6, 30, 1199.10, false},
		{"zero rate", 12000, 0, 10, 100, false},
		{"zero principal", 0, 5, 10, 0, true},
		{"negative rate", 1000, -1, 10, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthlyPayment(tt.principal, tt.rate, tt.years)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("MonthlyPayment() error = %v", err)
			}
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("MonthlyPayment() = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestLiteServerDegrades(t *testing.T) {
	srv, err := NewLiteBankingServer()
	if err != nil {
		t.Fatalf("NewLiteBankingServer() error = %v", err)
	}
	ctx := context.Background()

	// Same catalog shape as the primary.
	lite, _ := srv.ListTools(ctx)
	primaryTools, _ := newTestServer(t).ListTools(ctx)
	if len(lite) != len(primaryTools) {
		t.Errorf("lite catalog = %d tools, primary = %d", len(lite), len(primaryTools))
	}

	// Money movement is refused.
	if _, err := srv.CallTool(ctx, "bank_transfer", mcp.Args{
		"tenantId": "t", "userId": "u", "threadId": "th",
		"fromAccount": "checking", "toAccount": "savings", "amount": 1.0,
	}); err == nil {
		t.Error("lite bank_transfer should fail")
	}

	// Transfers between agents still work: routing must survive degraded mode.
	result, err := srv.CallTool(ctx, "transfer_to_transactions_agent", mcp.Args{})
	if err != nil {
		t.Fatalf("CallTool(transfer) error = %v", err)
	}
	if result.(map[string]any)["goto"] != agent.Transactions {
		t.Errorf("goto = %v", result)
	}
}
