package tools

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tellergo-dev/tellergo/agent"
	"github.com/tellergo-dev/tellergo/pkg/mcp"
)

// Ledger is the in-memory account state behind the primary banking server.
// A real deployment would put a core-banking client here; the capability
// contract is the same either way.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]float64
	history  map[string][]Transaction
}

// Transaction is one ledger movement.
type Transaction struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Amount    float64   `json:"amount"`
	Direction string    `json:"direction"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedger seeds a ledger with a demo account per user.
func NewLedger() *Ledger {
	return &Ledger{
		balances: map[string]float64{"checking": 5250.75, "savings": 12000.00},
		history:  make(map[string][]Transaction),
	}
}

func (l *Ledger) balance(accountID string) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.balances[accountID]
	return b, ok
}

func (l *Ledger) transfer(from, to string, amount float64) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount <= 0 {
		return Transaction{}, fmt.Errorf("transfer amount must be positive")
	}
	balance, ok := l.balances[from]
	if !ok {
		return Transaction{}, fmt.Errorf("unknown account: %s", from)
	}
	if balance < amount {
		return Transaction{}, fmt.Errorf("insufficient funds in %s", from)
	}

	l.balances[from] -= amount
	l.balances[to] += amount

	tx := Transaction{
		ID:        uuid.New().String(),
		AccountID: from,
		Amount:    amount,
		Direction: "debit",
		Timestamp: time.Now().UTC(),
	}
	l.history[from] = append(l.history[from], tx)
	l.history[to] = append(l.history[to], Transaction{
		ID:        tx.ID,
		AccountID: to,
		Amount:    amount,
		Direction: "credit",
		Timestamp: tx.Timestamp,
	})
	return tx, nil
}

func (l *Ledger) transactions(accountID string) []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Transaction(nil), l.history[accountID]...)
}

// NewBankingServer builds the primary capability server over a ledger.
func NewBankingServer(ledger *Ledger) (*mcp.Server, error) {
	srv := mcp.NewServer("banking")

	catalog := []mcp.Tool{
		{
			Name:        "bank_balance",
			Description: "Get the current balance of a bank account",
			Schema: mcp.Schema{
				"accountId": {Type: "string", Description: "Account identifier", Required: true},
			},
			Handler: func(ctx context.Context, args mcp.Args) (any, error) {
				accountID := args.String("accountId")
				balance, ok := ledger.balance(accountID)
				if !ok {
					return nil, fmt.Errorf("unknown account: %s", accountID)
				}
				return map[string]any{"accountId": accountID, "balance": balance}, nil
			},
		},
		{
			Name:        "bank_transfer",
			Description: "Transfer funds between accounts. Requires tenantId, userId and threadId for audit.",
			Schema: mcp.Schema{
				"tenantId":    {Type: "string", Description: "Tenant identity", Required: true},
				"userId":      {Type: "string", Description: "User identity", Required: true},
				"threadId":    {Type: "string", Description: "Conversation thread identity", Required: true},
				"fromAccount": {Type: "string", Description: "Source account", Required: true},
				"toAccount":   {Type: "string", Description: "Destination account", Required: true},
				"amount":      {Type: "number", Description: "Amount to transfer", Required: true},
			},
			Handler: func(ctx context.Context, args mcp.Args) (any, error) {
				tx, err := ledger.transfer(args.String("fromAccount"), args.String("toAccount"), args.Float("amount"))
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"status":        "completed",
					"transactionId": tx.ID,
					"tenantId":      args.String("tenantId"),
					"userId":        args.String("userId"),
					"threadId":      args.String("threadId"),
				}, nil
			},
		},
		{
			Name:        "get_transaction_history",
			Description: "List recent transactions for an account",
			Schema: mcp.Schema{
				"accountId": {Type: "string", Description: "Account identifier", Required: true},
			},
			Handler: func(ctx context.Context, args mcp.Args) (any, error) {
				return map[string]any{"transactions": ledger.transactions(args.String("accountId"))}, nil
			},
		},
		{
			Name:        "service_request",
			Description: "File a customer service request",
			Schema: mcp.Schema{
				"requestType": {Type: "string", Description: "Kind of request", Required: true},
				"description": {Type: "string", Description: "Free-form details"},
			},
			Handler: func(ctx context.Context, args mcp.Args) (any, error) {
				return map[string]any{
					"requestId": uuid.New().String(),
					"status":    "open",
					"type":      args.String("requestType"),
				}, nil
			},
		},
		{
			Name:        "get_branch_location",
			Description: "Find the nearest branch for a city",
			Schema: mcp.Schema{
				"city": {Type: "string", Description: "City name", Required: true},
			},
			Handler: func(ctx context.Context, args mcp.Args) (any, error) {
				return map[string]any{
					"city":    args.String("city"),
					"address": fmt.Sprintf("1 Financial Plaza, %s", args.String("city")),
					"hours":   "Mon-Fri 9:00-17:00",
				}, nil
			},
		},
		{
			Name:        "get_offer_information",
			Description: "Describe a current product offer",
			Schema: mcp.Schema{
				"product": {Type: "string", Description: "Product name", Required: true},
			},
			Handler: func(ctx context.Context, args mcp.Args) (any, error) {
				return map[string]any{
					"product": args.String("product"),
					"offer":   "0.5% APY bonus for the first 12 months",
				}, nil
			},
		},
		{
			Name:        "create_account",
			Description: "Open a new bank account",
			Schema: mcp.Schema{
				"holderName":  {Type: "string", Description: "Account holder", Required: true},
				"accountType": {Type: "string", Description: "checking or savings", Required: true},
			},
			Handler: func(ctx context.Context, args mcp.Args) (any, error) {
				return map[string]any{
					"accountId": uuid.New().String(),
					"type":      args.String("accountType"),
					"status":    "active",
				}, nil
			},
		},
		{
			Name:        "calculate_monthly_payment",
			Description: "Compute the monthly payment for a fixed-rate loan",
			Schema: mcp.Schema{
				"principal":  {Type: "number", Description: "Loan principal", Required: true},
				"annualRate": {Type: "number", Description: "Annual interest rate, percent", Required: true},
				"years":      {Type: "number", Description: "Loan term in years", Required: true},
			},
			Handler: func(ctx context.Context, args mcp.Args) (any, error) {
				payment, err := MonthlyPayment(args.Float("principal"), args.Float("annualRate"), args.Float("years"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"monthlyPayment": payment}, nil
			},
		},
	}
	catalog = append(catalog, transferTools()...)

	for _, tool := range catalog {
		if err := srv.RegisterTool(tool); err != nil {
			return nil, err
		}
	}
	return srv, nil
}

// transferTools builds the hand-off capabilities. Each result carries a
// structured routing directive the router extracts during dispatch.
func transferTools() []mcp.Tool {
	targets := map[string]string{
		"transfer_to_customer_support_agent": agent.CustomerSupport,
		"transfer_to_sales_agent":            agent.Sales,
		"transfer_to_transactions_agent":     agent.Transactions,
	}

	var out []mcp.Tool
	for name, target := range targets {
		out = append(out, mcp.Tool{
			Name:        name,
			Description: fmt.Sprintf("Hand the conversation to %s", target),
			Schema:      mcp.Schema{},
			Handler: func(ctx context.Context, args mcp.Args) (any, error) {
				return map[string]any{"goto": target}, nil
			},
		})
	}
	return out
}

// MonthlyPayment computes the standard amortized payment.
func MonthlyPayment(principal, annualRate, years float64) (float64, error) {
	if principal <= 0 || years <= 0 {
		return 0, fmt.Errorf("principal and term must be positive")
	}
	if annualRate < 0 {
		return 0, fmt.Errorf("rate must not be negative")
	}

	months := years * 12
	if annualRate == 0 {
		return principal / months, nil
	}
	monthlyRate := annualRate / 100 / 12
	factor := math.Pow(1+monthlyRate, months)
	return principal * monthlyRate * factor / (factor - 1), nil
}
