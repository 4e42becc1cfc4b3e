// Package agents implements the banking agents as tool-calling chat
// loops over the OpenAI completion API.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/sashabaranov/go-openai"

	"github.com/tellergo-dev/tellergo/agent"
	"github.com/tellergo-dev/tellergo/internal/observability"
	"github.com/tellergo-dev/tellergo/pkg/mcp"
)

// OpenAIClient interface for testability
type OpenAIClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Caller executes tools by name. *mcp.Catalog and *mcp.Server both
// satisfy it.
type Caller interface {
	CallTool(ctx context.Context, name string, args mcp.Args) (any, error)
}

// ModelConfig carries the completion parameters shared by all agents.
type ModelConfig struct {
	Model         string
	MaxTokens     int
	Temperature   float32
	MaxToolRounds int
}

// ReactInvoker runs one agent turn: it calls the model with the agent's
// system prompt and tool subset, executes requested tools, and loops
// until the model produces a plain reply or the round budget runs out.
type ReactInvoker struct {
	name    string
	prompt  string
	cfg     ModelConfig
	client  OpenAIClient
	caller  Caller
	tools   []openai.Tool
	allowed map[string]bool
}

// NewReactInvoker creates an invoker for one agent. tools is the subset
// of the catalog this agent may call; calls outside it are rejected.
func NewReactInvoker(name, prompt string, cfg ModelConfig, client OpenAIClient, caller Caller, tools []mcp.Tool) *ReactInvoker {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 8
	}

	allowed := make(map[string]bool, len(tools))
	oaiTools := make([]openai.Tool, len(tools))
	for i, t := range tools {
		allowed[t.Name] = true
		oaiTools[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  json.RawMessage(mustMarshal(t.Schema.JSONSchema())),
			},
		}
	}

	return &ReactInvoker{
		name:    name,
		prompt:  prompt,
		cfg:     cfg,
		client:  client,
		caller:  caller,
		tools:   oaiTools,
		allowed: allowed,
	}
}

// Name implements agent.Invoker.
func (r *ReactInvoker) Name() string { return r.name }

// Invoke implements agent.Invoker. It returns only the messages produced
// during this invocation, in order.
func (r *ReactInvoker) Invoke(ctx context.Context, history []agent.Message, tc agent.TurnContext) ([]agent.Message, error) {
	ctx, span := observability.StartSpan(ctx, "agent.invoke", map[string]any{
		"agent":  r.name,
		"thread": tc.Thread.Key(),
	})
	defer span.End()

	chat := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	chat = append(chat, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: r.prompt})
	for _, m := range history {
		chat = append(chat, toChatMessage(m))
	}

	var produced []agent.Message
	for round := 0; round < r.cfg.MaxToolRounds; round++ {
		resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       r.cfg.Model,
			Messages:    chat,
			Tools:       r.tools,
			MaxTokens:   r.cfg.MaxTokens,
			Temperature: r.cfg.Temperature,
		})
		if err != nil {
			span.SetError(err)
			return nil, fmt.Errorf("%s: chat completion: %w", r.name, err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("%s: no choices in response", r.name)
		}

		choice := resp.Choices[0].Message
		if len(choice.ToolCalls) == 0 {
			produced = append(produced, agent.NewMessage(agent.RoleAssistant, choice.Content))
			span.SetAttribute("rounds", round+1)
			return produced, nil
		}

		asst := agent.NewMessage(agent.RoleAssistant, choice.Content)
		for _, call := range choice.ToolCalls {
			asst.ToolCalls = append(asst.ToolCalls, agent.ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
		produced = append(produced, asst)
		chat = append(chat, choice)

		for _, call := range choice.ToolCalls {
			result, err := r.callTool(ctx, call)
			if err != nil {
				// Feed the failure back so the model can recover.
				log.Printf("%s: tool %s failed: %v", r.name, call.Function.Name, err)
				result = map[string]any{"error": err.Error()}
			}
			toolMsg := agent.NewToolResult(call.Function.Name, call.ID, result)
			produced = append(produced, toolMsg)
			chat = append(chat, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    toolMsg.Content,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}

	// Round budget exhausted. Return what we have so tool results, and
	// any routing they carry, still reach the caller.
	span.SetAttribute("rounds", r.cfg.MaxToolRounds)
	return produced, nil
}

func (r *ReactInvoker) callTool(ctx context.Context, call openai.ToolCall) (any, error) {
	if !r.allowed[call.Function.Name] {
		return nil, fmt.Errorf("tool %s is not available to %s", call.Function.Name, r.name)
	}

	args := mcp.Args{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("bad arguments for %s: %w", call.Function.Name, err)
		}
	}
	return r.caller.CallTool(ctx, call.Function.Name, args)
}

func toChatMessage(m agent.Message) openai.ChatCompletionMessage {
	out := openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	switch m.Role {
	case agent.RoleTool:
		out.Name = m.ToolName
		out.ToolCallID = m.ToolCallID
	case agent.RoleAssistant:
		for _, c := range m.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
				ID:   c.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      c.Name,
					Arguments: c.Arguments,
				},
			})
		}
	}
	return out
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("Warning: failed to marshal value: %v", err)
		return []byte("{}")
	}
	return b
}
