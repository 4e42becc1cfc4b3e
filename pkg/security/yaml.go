package security

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLLimits bounds resource use while parsing untrusted YAML.
type YAMLLimits struct {
	MaxFileSize int64 // bytes
	MaxDepth    int
	MaxNodes    int
}

// DefaultYAMLLimits returns limits generous enough for any sane config file.
func DefaultYAMLLimits() YAMLLimits {
	return YAMLLimits{
		MaxFileSize: 1 * 1024 * 1024,
		MaxDepth:    20,
		MaxNodes:    10000,
	}
}

// SafeYAMLParser unmarshals YAML after validating it against YAMLLimits.
type SafeYAMLParser struct {
	limits YAMLLimits
}

// NewSafeYAMLParser creates a parser enforcing the given limits.
func NewSafeYAMLParser(limits YAMLLimits) *SafeYAMLParser {
	return &SafeYAMLParser{limits: limits}
}

// Unmarshal parses data into v, rejecting input that exceeds the limits.
func (p *SafeYAMLParser) Unmarshal(data []byte, v any) error {
	if int64(len(data)) > p.limits.MaxFileSize {
		return fmt.Errorf("YAML input %d bytes is too large (limit %d)", len(data), p.limits.MaxFileSize)
	}

	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		return fmt.Errorf("YAML parse error: %w", err)
	}

	count := 0
	if err := p.validate(&root, 0, &count); err != nil {
		return err
	}

	return yaml.Unmarshal(data, v)
}

func (p *SafeYAMLParser) validate(node *yaml.Node, depth int, count *int) error {
	if depth > p.limits.MaxDepth {
		return fmt.Errorf("YAML nesting depth %d exceeds maximum %d", depth, p.limits.MaxDepth)
	}
	*count++
	if *count > p.limits.MaxNodes {
		return fmt.Errorf("YAML node count exceeds maximum %d", p.limits.MaxNodes)
	}

	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			if err := p.validate(child, depth, count); err != nil {
				return err
			}
		}
	case yaml.MappingNode, yaml.SequenceNode:
		for _, child := range node.Content {
			if err := p.validate(child, depth+1, count); err != nil {
				return err
			}
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			if err := p.validate(node.Alias, depth+1, count); err != nil {
				return err
			}
		}
	}

	return nil
}
