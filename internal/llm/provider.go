package llm

import (
	"context"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by the model. Arguments is the raw
// JSON argument string; ID correlates the eventual result back into the
// conversation history.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is a single turn in a conversation, including tool requests
// (assistant messages) and tool results (tool messages).
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolDef describes a tool the model may call.
type ToolDef struct {
	Name        string
	Description string
	Parameters  jsonschema.Definition
}

// ChatRequest contains the parameters for one model invocation.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Tools       []ToolDef
	Temperature float32
	MaxTokens   int
}

// ChatResponse is the model's complete reply for one invocation. Content
// holds the aggregated text; ToolCalls the tool invocations, in the order
// the model emitted them.
type ChatResponse struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
}

// StreamHandler receives incremental text fragments during generation.
type StreamHandler func(delta string)

// Provider is a hosted reasoning engine. ChatStream invokes the model once,
// forwarding text deltas to onDelta as they arrive, and returns the
// aggregated response. Implementations retry transient failures internally.
type Provider interface {
	ChatStream(ctx context.Context, req ChatRequest, onDelta StreamHandler) (*ChatResponse, error)
	Name() string
}
