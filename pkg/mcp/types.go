// Package mcp exposes the capability (tool) surface agents call: tool
// definitions with JSON-schema input validation, an in-process provider, and
// a process-wide catalog with guarded lazy bootstrap.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool represents a callable capability.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Handler     ToolHandler `json:"-"`
	Schema      Schema      `json:"input_schema"`
}

// ToolHandler is the function signature for tool handlers.
type ToolHandler func(context.Context, Args) (any, error)

// Schema represents a JSON Schema for tool input validation.
type Schema map[string]SchemaField

// SchemaField represents a single field in the schema.
type SchemaField struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// JSONSchema renders the schema as a standard JSON-schema object, the shape
// model providers expect for function definitions.
func (s Schema) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s))
	var required []string
	for name, field := range s {
		properties[name] = map[string]any{
			"type":        field.Type,
			"description": field.Description,
		}
		if field.Required {
			required = append(required, name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ValidateArgs checks args against the schema: required fields must be
// present and every present field must match its declared type.
func (s Schema) ValidateArgs(args Args) error {
	for name, field := range s {
		val, ok := args[name]
		if !ok {
			if field.Required {
				return fmt.Errorf("%s: required argument missing", name)
			}
			continue
		}

		valid := true
		switch field.Type {
		case "string":
			_, valid = val.(string)
		case "number", "integer":
			switch val.(type) {
			case float64, int, int64, json.Number:
			default:
				valid = false
			}
		case "boolean":
			_, valid = val.(bool)
		case "object":
			_, valid = val.(map[string]any)
		}
		if !valid {
			return fmt.Errorf("%s: want %s, got %T", name, field.Type, val)
		}
	}
	return nil
}

// Args provides type-safe access to tool arguments.
type Args map[string]any

// String returns the named argument as a string, or "" when absent or
// mistyped.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Float returns the named argument as a float64. JSON numbers arrive as
// float64 or json.Number depending on the decoder.
func (a Args) Float(key string) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

// Int returns the named argument as an int.
func (a Args) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case json.Number:
		i, _ := v.Int64()
		return int(i)
	default:
		return 0
	}
}

// Provider is the capability-providing collaborator contract.
type Provider interface {
	// ListTools returns the full capability catalog.
	ListTools(ctx context.Context) ([]Tool, error)

	// CallTool executes a capability by name.
	CallTool(ctx context.Context, name string, args Args) (any, error)

	// Close shuts the provider down.
	Close() error
}
