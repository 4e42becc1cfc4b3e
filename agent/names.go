package agent

// Fixed agent roles. The coordinator is a transient dispatcher: it is never
// a valid long-term active agent for a thread.
const (
	Coordinator     = "coordinator_agent"
	CustomerSupport = "customer_support_agent"
	Sales           = "sales_agent"
	Transactions    = "transactions_agent"
)

// Specialists lists the roles a thread may be locked to.
var Specialists = []string{CustomerSupport, Sales, Transactions}

// IsSpecialist reports whether name is a known non-coordinator role.
func IsSpecialist(name string) bool {
	for _, s := range Specialists {
		if name == s {
			return true
		}
	}
	return false
}
