package security

import (
	"strings"
	"testing"
)

func TestSafeYAMLParser_ValidInput(t *testing.T) {
	parser := NewSafeYAMLParser(DefaultYAMLLimits())

	var out map[string]any
	err := parser.Unmarshal([]byte("model: gpt-4o\nlimits:\n  turns: 5\n"), &out)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out["model"] != "gpt-4o" {
		t.Errorf("model = %v", out["model"])
	}
}

func TestSafeYAMLParser_RejectsOversizedInput(t *testing.T) {
	parser := NewSafeYAMLParser(YAMLLimits{MaxFileSize: 64, MaxDepth: 20, MaxNodes: 10000})

	var out map[string]any
	err := parser.Unmarshal([]byte(strings.Repeat("x: value\n", 100)), &out)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}
}

func TestSafeYAMLParser_RejectsDeepNesting(t *testing.T) {
	parser := NewSafeYAMLParser(YAMLLimits{MaxFileSize: 1 << 20, MaxDepth: 5, MaxNodes: 10000})

	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString(strings.Repeat("  ", i))
		sb.WriteString("a:\n")
	}
	sb.WriteString(strings.Repeat("  ", 10))
	sb.WriteString("leaf: 1\n")

	var out map[string]any
	if err := parser.Unmarshal([]byte(sb.String()), &out); err == nil {
		t.Error("expected nesting depth error")
	}
}

func TestSafeYAMLParser_RejectsNodeFlood(t *testing.T) {
	parser := NewSafeYAMLParser(YAMLLimits{MaxFileSize: 1 << 20, MaxDepth: 20, MaxNodes: 10})

	var sb strings.Builder
	sb.WriteString("items:\n")
	for i := 0; i < 50; i++ {
		sb.WriteString("  - x\n")
	}

	var out map[string]any
	if err := parser.Unmarshal([]byte(sb.String()), &out); err == nil {
		t.Error("expected node count error")
	}
}

func TestSafeYAMLParser_InvalidYAML(t *testing.T) {
	parser := NewSafeYAMLParser(DefaultYAMLLimits())

	var out map[string]any
	if err := parser.Unmarshal([]byte("bad: [[[\n"), &out); err == nil {
		t.Error("expected parse error")
	}
}
