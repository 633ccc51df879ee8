// Package provider defines the boundary to the language-model service. The
// loosely structured service reply is resolved here, once, into an explicit
// tagged response; nothing downstream inspects raw wire shapes.
package provider

import (
	"context"
	"fmt"
)

// Client names the supported LLM backends.
type Client string

const (
	OpenAI Client = "openai"
)

// Roles of conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Schema is a recursive description of a tool's input: a primitive, an
// object with named fields, or an array of a single element type. It
// marshals to standard JSON Schema, which is what the model services accept.
type Schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]Schema `json:"properties,omitempty"`
	Items       *Schema           `json:"items,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

// ToolDeclaration describes one capability the model may invoke. Immutable;
// supplied by the caller of the engine.
type ToolDeclaration struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Input       Schema `json:"input_schema"`
}

// ToolCall is a tool invocation the model requested mid-conversation.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult carries the outcome of one tool invocation back to the model.
// Content is a serialized value on success, or a serialized error marker
// when IsError is set.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Turn is one entry in a single call's conversation history. A user turn
// carries either plain text or a batch of tool results; an assistant turn
// carries the model's text and any tool calls it made. Turns live for the
// duration of one engine call and are discarded afterwards.
type Turn struct {
	Role        string       `json:"role"`
	Content     string       `json:"content,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// UserTurn builds a plain-text user turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// ToolResultTurn batches the results for one assistant response into a
// single user turn.
func ToolResultTurn(results []ToolResult) Turn {
	return Turn{Role: RoleUser, ToolResults: results}
}

// StopReason tags why the model stopped.
type StopReason string

const (
	// StopFinal means the response text is the model's final answer.
	StopFinal StopReason = "final"
	// StopToolUse means the model is waiting for tool results.
	StopToolUse StopReason = "tool_use"
)

// Usage reports token consumption for one completion.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Response is the tagged union a completion resolves to: either a final text
// answer or a batch of tool calls to satisfy.
type Response struct {
	Stop      StopReason
	Text      string
	ToolCalls []ToolCall
	Usage     Usage
}

// CompletionRequest carries everything for one request to the model service:
// role instructions, the full turn history, sampling parameters, and tool
// declarations when the caller binds tools.
type CompletionRequest struct {
	System      string
	Turns       []Turn
	MaxTokens   int
	Temperature float64
	Tools       []ToolDeclaration
}

// Provider is the interface all LLM implementations must satisfy.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (Response, error)
}

// ServiceError wraps a transport or API failure from the model service so
// callers can tell it apart from parsing and domain failures.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service error: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
