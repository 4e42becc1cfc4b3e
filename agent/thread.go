package agent

import "fmt"

// ThreadID identifies a conversation thread. The session and checkpoint
// stores partition on the full (tenant, user, thread) triple.
type ThreadID struct {
	Tenant string
	User   string
	Thread string
}

// Key returns the canonical storage key for the thread.
func (t ThreadID) Key() string {
	return fmt.Sprintf("%s:%s:%s", t.Tenant, t.User, t.Thread)
}

func (t ThreadID) String() string {
	return t.Key()
}
