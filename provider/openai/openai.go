// Package openai_provider implements the provider interface over the OpenAI
// chat-completions API, including function calling for tool use.
package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/orbiterhq/deepdive/provider"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client calls the OpenAI chat-completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Options configures the client.
type Options struct {
	APIKey  string
	BaseURL string // override for tests and proxies
	Model   string
	Timeout time.Duration
}

// New creates an OpenAI-backed provider.
func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		model:      opts.Model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// wire types for the chat-completions API

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireToolSpec `json:"function"`
}

type wireToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  provider.Schema `json:"parameters"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Tools       []wireTool    `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string         `json:"content"`
			ToolCalls []wireToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends one request to the chat-completions endpoint and resolves
// the reply into the tagged response union. Transport and API failures are
// returned as *provider.ServiceError.
func (c *Client) Complete(ctx context.Context, req provider.CompletionRequest) (provider.Response, error) {
	messages := make([]chatMessage, 0, len(req.Turns)+1)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, turn := range req.Turns {
		messages = append(messages, expandTurn(turn)...)
	}

	var tools []wireTool
	for _, decl := range req.Tools {
		tools = append(tools, wireTool{
			Type: "function",
			Function: wireToolSpec{
				Name:        decl.Name,
				Description: decl.Description,
				Parameters:  decl.Input,
			},
		})
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Tools:       tools,
	})
	if err != nil {
		return provider.Response{}, &provider.ServiceError{Provider: "openai", Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return provider.Response{}, &provider.ServiceError{Provider: "openai", Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return provider.Response{}, &provider.ServiceError{Provider: "openai", Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return provider.Response{}, &provider.ServiceError{
			Provider: "openai",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)),
		}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return provider.Response{}, &provider.ServiceError{Provider: "openai", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Choices) == 0 {
		return provider.Response{}, &provider.ServiceError{Provider: "openai", Err: fmt.Errorf("no choices in response")}
	}

	choice := out.Choices[0]
	result := provider.Response{
		Stop: provider.StopFinal,
		Text: choice.Message.Content,
		Usage: provider.Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
		},
	}

	if len(choice.Message.ToolCalls) > 0 {
		result.Stop = provider.StopToolUse
		for _, tc := range choice.Message.ToolCalls {
			args := map[string]any{}
			if tc.Function.Arguments != "" {
				// Malformed arguments become an empty map; the tool layer
				// reports the missing argument back to the model.
				_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
			}
			result.ToolCalls = append(result.ToolCalls, provider.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: args,
			})
		}
	}
	return result, nil
}

// expandTurn maps one conversation turn to its wire messages. Tool results
// are batched into a single turn upstream but the chat API wants one "tool"
// message per result, keyed by the original call id.
func expandTurn(turn provider.Turn) []chatMessage {
	if len(turn.ToolResults) > 0 {
		msgs := make([]chatMessage, 0, len(turn.ToolResults))
		for _, tr := range turn.ToolResults {
			msgs = append(msgs, chatMessage{
				Role:       "tool",
				Content:    tr.Content,
				ToolCallID: tr.CallID,
			})
		}
		return msgs
	}
	if turn.Role == provider.RoleAssistant && len(turn.ToolCalls) > 0 {
		msg := chatMessage{Role: "assistant", Content: turn.Content}
		for _, tc := range turn.ToolCalls {
			argsJSON, _ := json.Marshal(tc.Arguments)
			msg.ToolCalls = append(msg.ToolCalls, wireToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: wireFunction{
					Name:      tc.Name,
					Arguments: string(argsJSON),
				},
			})
		}
		return []chatMessage{msg}
	}
	return []chatMessage{{Role: turn.Role, Content: turn.Content}}
}
