// Package tools implements the banking capability catalog: account and
// transaction operations, service requests, sales helpers, and the
// transfer_to_* hand-off tools whose results carry routing directives.
package tools

import "github.com/tellergo-dev/tellergo/agent"

// Role tool subsets, matched by name prefix. The subsets are non-exclusive:
// every role also receives the transfer tools for the roles it may hand off
// to.
var (
	// CoordinatorPrefixes: the coordinator only dispatches, so it sees
	// nothing but hand-off tools.
	CoordinatorPrefixes = []string{"transfer_to_"}

	// SupportPrefixes covers service operations plus hand-offs to sales
	// and transactions.
	SupportPrefixes = []string{
		"service_request",
		"get_branch_location",
		"transfer_to_sales_agent",
		"transfer_to_transactions_agent",
	}

	// SalesPrefixes covers product operations plus hand-offs to support
	// and transactions.
	SalesPrefixes = []string{
		"get_offer_information",
		"create_account",
		"calculate_monthly_payment",
		"transfer_to_customer_support_agent",
		"transfer_to_transactions_agent",
	}

	// TransactionsPrefixes covers money movement plus a hand-back to
	// support.
	TransactionsPrefixes = []string{
		"bank_transfer",
		"get_transaction_history",
		"bank_balance",
		"transfer_to_customer_support_agent",
	}
)

// PrefixesForRole returns the tool subset prefixes for an agent role.
func PrefixesForRole(role string) []string {
	switch role {
	case agent.Coordinator:
		return CoordinatorPrefixes
	case agent.CustomerSupport:
		return SupportPrefixes
	case agent.Sales:
		return SalesPrefixes
	case agent.Transactions:
		return TransactionsPrefixes
	default:
		return nil
	}
}
