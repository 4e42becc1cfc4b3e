package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Server is an in-process Provider backed by registered tool handlers.
type Server struct {
	name  string
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewServer creates an empty in-process tool server.
func NewServer(name string) *Server {
	return &Server{
		name:  name,
		tools: make(map[string]Tool),
	}
}

// Name returns the server name.
func (s *Server) Name() string {
	return s.name
}

// RegisterTool adds a tool. Registering the same name twice is an error;
// catalogs are assembled once at startup.
func (s *Server) RegisterTool(tool Tool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := s.tools[tool.Name]; exists {
		return fmt.Errorf("tool already registered: %s", tool.Name)
	}
	s.tools[tool.Name] = tool
	return nil
}

// ListTools returns the catalog sorted by name for deterministic partitioning.
func (s *Server) ListTools(ctx context.Context) ([]Tool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]Tool, 0, len(s.tools))
	for _, tool := range s.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools, nil
}

// CallTool validates arguments against the tool's schema and invokes its
// handler.
func (s *Server) CallTool(ctx context.Context, name string, args Args) (any, error) {
	s.mu.RLock()
	tool, exists := s.tools[name]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if err := tool.Schema.ValidateArgs(args); err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}
	return tool.Handler(ctx, args)
}

// Close is a no-op for in-process servers.
func (s *Server) Close() error {
	return nil
}
