package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellergo-dev/tellergo/agent"
)

func TestLoad_EmbeddedDefaults(t *testing.T) {
	lib := NewLibrary("")

	for _, name := range []string{agent.Coordinator, agent.CustomerSupport, agent.Sales, agent.Transactions} {
		prompt := lib.Load(name)
		assert.NotEqual(t, Placeholder, prompt, "Load(%s) fell back to placeholder", name)
		assert.Equal(t, strings.TrimSpace(prompt), prompt, "Load(%s) not trimmed", name)
	}
}

func TestLoad_OverrideDirectoryWins(t *testing.T) {
	dir := t.TempDir()
	custom := "You are the night-shift coordinator."
	path := filepath.Join(dir, agent.Coordinator+".md")
	require.NoError(t, os.WriteFile(path, []byte(custom+"\n"), 0600))

	lib := NewLibrary(dir)
	assert.Equal(t, custom, lib.Load(agent.Coordinator))

	// Agents without an override still get the embedded default.
	assert.NotEqual(t, Placeholder, lib.Load(agent.Sales))
}

func TestLoad_UnknownAgentGetsPlaceholder(t *testing.T) {
	lib := NewLibrary("")
	assert.Equal(t, Placeholder, lib.Load("fraud_agent"))
}
