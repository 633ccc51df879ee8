package core

import (
	"context"
	"fmt"
	"log"

	"github.com/orbiterhq/deepdive/internal/agent/telemetry"
	"github.com/orbiterhq/deepdive/provider"
)

// ToolDispatcher executes one tool call on behalf of the model. A dispatch
// error means the tool itself failed; the engine reports that back to the
// model as a failed tool result and continues the conversation.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, call provider.ToolCall) (string, error)
	Declarations() []provider.ToolDeclaration
}

// Engine drives the model-call protocol shared by every agent: send the
// conversation, and while the model stops for tool use, dispatch each
// requested tool, append the results, and go again. The loop ends when the
// model produces a final answer or the round cap is hit.
type Engine struct {
	provider  provider.Provider
	tools     ToolDispatcher
	telemetry *telemetry.Telemetry
	log       *log.Logger
	maxRounds int
}

// NewEngine builds an engine. tools may be nil for agents that never use
// tools; a model requesting tool use then fails with ErrNoToolDispatcher.
func NewEngine(p provider.Provider, tools ToolDispatcher, tel *telemetry.Telemetry, logger *log.Logger, maxToolRounds int) *Engine {
	if logger == nil {
		logger = log.New(log.Writer(), "[ENGINE] ", log.LstdFlags)
	}
	if maxToolRounds <= 0 {
		maxToolRounds = 8
	}
	return &Engine{provider: p, tools: tools, telemetry: tel, log: logger, maxRounds: maxToolRounds}
}

// CallParams describes one agent invocation.
type CallParams struct {
	Agent       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	WithTools   bool
}

// Call runs the tool loop and returns the model's final text.
func (e *Engine) Call(ctx context.Context, params CallParams) (string, error) {
	var tools []provider.ToolDeclaration
	if params.WithTools && e.tools != nil {
		tools = e.tools.Declarations()
	}

	turns := []provider.Turn{provider.UserTurn(params.Prompt)}

	for round := 0; ; round++ {
		if round >= e.maxRounds {
			return "", fmt.Errorf("%s: %w", params.Agent, ErrToolRoundsExceeded)
		}

		resp, err := e.provider.Complete(ctx, provider.CompletionRequest{
			System:      params.System,
			Turns:       turns,
			MaxTokens:   params.MaxTokens,
			Temperature: params.Temperature,
			Tools:       tools,
		})
		if err != nil {
			return "", fmt.Errorf("%s: model call: %w", params.Agent, err)
		}
		e.telemetry.RecordLLMCall(params.Agent, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

		if resp.Stop != provider.StopToolUse {
			return resp.Text, nil
		}
		if e.tools == nil || !params.WithTools {
			return "", fmt.Errorf("%s: %w", params.Agent, ErrNoToolDispatcher)
		}

		turns = append(turns, provider.Turn{
			Role:      provider.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		results := make([]provider.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			out, err := e.tools.Dispatch(ctx, call)
			if err != nil {
				e.log.Printf("tool %s failed: %v", call.Name, err)
				e.telemetry.RecordToolInvocation(call.Name, true)
				results = append(results, provider.ToolResult{
					CallID:  call.ID,
					Content: fmt.Sprintf("tool error: %v", err),
					IsError: true,
				})
				continue
			}
			e.telemetry.RecordToolInvocation(call.Name, false)
			results = append(results, provider.ToolResult{CallID: call.ID, Content: out})
		}
		turns = append(turns, provider.ToolResultTurn(results))
	}
}
