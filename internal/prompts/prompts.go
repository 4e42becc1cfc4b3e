// Package prompts resolves system prompts for the banking agents.
// Prompts ship embedded in the binary and can be overridden by files in
// an operator-supplied directory.
package prompts

import (
	"embed"
	"log"
	"os"
	"path/filepath"
	"strings"
)

//go:embed defaults/*.md
var defaults embed.FS

// Placeholder is used when no prompt can be found for an agent.
const Placeholder = "You are an AI banking assistant."

// Library loads agent prompts, preferring files under dir over the
// embedded defaults.
type Library struct {
	dir string
}

// NewLibrary creates a prompt library. dir may be empty, in which case
// only the embedded defaults are consulted.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Load returns the system prompt for the named agent. Missing prompts
// fall back to Placeholder rather than failing the turn.
func (l *Library) Load(agentName string) string {
	if l.dir != "" {
		path := filepath.Join(l.dir, agentName+".md")
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	if data, err := defaults.ReadFile("defaults/" + agentName + ".md"); err == nil {
		return strings.TrimSpace(string(data))
	}

	log.Printf("prompt not found for %s, using default placeholder", agentName)
	return Placeholder
}
