package openai_provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orbiterhq/deepdive/provider"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-test", Timeout: 5 * time.Second})
}

func TestCompleteFinalAnswer(t *testing.T) {
	var captured chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]any{"content": "final text"},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5},
		})
	})

	resp, err := client.Complete(context.Background(), provider.CompletionRequest{
		System:      "be helpful",
		Turns:       []provider.Turn{provider.UserTurn("hello")},
		MaxTokens:   128,
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Stop != provider.StopFinal || resp.Text != "final text" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Usage.PromptTokens != 10 || resp.Usage.CompletionTokens != 5 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("unexpected wire messages: %+v", captured.Messages)
	}
}

func TestCompleteToolUse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "web_search" {
			t.Errorf("tool declarations not forwarded: %+v", req.Tools)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"content": "",
					"tool_calls": []map[string]any{{
						"id":   "call_1",
						"type": "function",
						"function": map[string]any{
							"name":      "web_search",
							"arguments": `{"query": "golang generics"}`,
						},
					}},
				},
				"finish_reason": "tool_calls",
			}},
		})
	})

	resp, err := client.Complete(context.Background(), provider.CompletionRequest{
		Turns: []provider.Turn{provider.UserTurn("search something")},
		Tools: []provider.ToolDeclaration{{
			Name:        "web_search",
			Description: "search the web",
			Input: provider.Schema{
				Type: "object",
				Properties: map[string]provider.Schema{
					"query": {Type: "string", Description: "the search query"},
				},
				Required: []string{"query"},
			},
		}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Stop != provider.StopToolUse {
		t.Fatalf("expected tool_use stop, got %q", resp.Stop)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].ID != "call_1" {
		t.Fatalf("unexpected tool calls: %+v", resp.ToolCalls)
	}
	if q, _ := resp.ToolCalls[0].Arguments["query"].(string); q != "golang generics" {
		t.Fatalf("arguments not decoded: %+v", resp.ToolCalls[0].Arguments)
	}
}

func TestCompleteToolResultExpansion(t *testing.T) {
	var captured chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]any{"content": "done"},
				"finish_reason": "stop",
			}},
		})
	})

	turns := []provider.Turn{
		provider.UserTurn("question"),
		{
			Role:      provider.RoleAssistant,
			ToolCalls: []provider.ToolCall{{ID: "call_9", Name: "web_search", Arguments: map[string]any{"query": "x"}}},
		},
		provider.ToolResultTurn([]provider.ToolResult{
			{CallID: "call_9", Content: `[{"title":"t"}]`},
		}),
	}
	if _, err := client.Complete(context.Background(), provider.CompletionRequest{Turns: turns}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	// user, assistant-with-tool-calls, tool
	if len(captured.Messages) != 3 {
		t.Fatalf("expected 3 wire messages, got %d: %+v", len(captured.Messages), captured.Messages)
	}
	toolMsg := captured.Messages[2]
	if toolMsg.Role != "tool" || toolMsg.ToolCallID != "call_9" {
		t.Fatalf("tool result not keyed by call id: %+v", toolMsg)
	}
}

func TestCompleteAPIFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), provider.CompletionRequest{
		Turns: []provider.Turn{provider.UserTurn("hi")},
	})
	var se *provider.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if se.Provider != "openai" {
		t.Fatalf("unexpected provider tag: %s", se.Provider)
	}
}
