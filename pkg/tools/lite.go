package tools

import (
	"context"
	"fmt"

	"github.com/tellergo-dev/tellergo/pkg/mcp"
)

// NewLiteBankingServer builds the fallback capability server. It exposes the
// same catalog names as the primary so every role subset stays constructible,
// but read operations return canned data and money movement is refused. Used
// when the primary provider is unreachable at startup.
func NewLiteBankingServer() (*mcp.Server, error) {
	primary, err := NewBankingServer(NewLedger())
	if err != nil {
		return nil, err
	}
	full, err := primary.ListTools(context.Background())
	if err != nil {
		return nil, err
	}

	srv := mcp.NewServer("banking-lite")
	for _, tool := range full {
		lite := tool
		switch tool.Name {
		case "bank_transfer":
			lite.Handler = func(ctx context.Context, args mcp.Args) (any, error) {
				return nil, fmt.Errorf("transfers are unavailable in degraded mode")
			}
		case "bank_balance":
			lite.Handler = func(ctx context.Context, args mcp.Args) (any, error) {
				return map[string]any{
					"accountId": args.String("accountId"),
					"balance":   0.0,
					"degraded":  true,
				}, nil
			}
		case "get_transaction_history":
			lite.Handler = func(ctx context.Context, args mcp.Args) (any, error) {
				return map[string]any{"transactions": []any{}, "degraded": true}, nil
			}
		}
		if err := srv.RegisterTool(lite); err != nil {
			return nil, err
		}
	}
	return srv, nil
}
