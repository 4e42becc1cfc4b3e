package mcp

import "strings"

// FilterByPrefix returns the tools whose name starts with any of the given
// prefixes. An exact tool name is a valid prefix, so role subsets can be
// declared as a mix of families ("transfer_to_") and single tools
// ("bank_balance").
func FilterByPrefix(tools []Tool, prefixes []string) []Tool {
	var filtered []Tool
	for _, tool := range tools {
		for _, prefix := range prefixes {
			if strings.HasPrefix(tool.Name, prefix) {
				filtered = append(filtered, tool)
				break
			}
		}
	}
	return filtered
}
