package core

import (
	"context"
	"testing"

	"github.com/orbiterhq/deepdive/config"
	"github.com/orbiterhq/deepdive/provider"
)

func newTestCoordinator(p provider.Provider) *Coordinator {
	engine := NewEngine(p, nil, nil, nil, 8)
	return NewCoordinator(engine, "plan the research", config.AgentConfig{Temperature: 1.0, MaxTokens: 2048})
}

func TestCoordinatorPlansFromJSONArray(t *testing.T) {
	p := &scriptedProvider{responses: []provider.Response{
		{Stop: provider.StopFinal, Text: `["history of Go", "Go adoption", "Go tooling"]`},
	}}
	subtasks, err := newTestCoordinator(p).Plan(context.Background(), "tell me about Go")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(subtasks) != 3 || subtasks[0] != "history of Go" {
		t.Fatalf("unexpected subtasks: %v", subtasks)
	}
}

func TestCoordinatorHandlesFencedAndWrapped(t *testing.T) {
	p := &scriptedProvider{responses: []provider.Response{
		{Stop: provider.StopFinal, Text: "Here is the plan:\n```json\n{\"subtasks\": [\"a task\", \"b task\"]}\n```"},
	}}
	subtasks, err := newTestCoordinator(p).Plan(context.Background(), "query")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(subtasks) != 2 || subtasks[1] != "b task" {
		t.Fatalf("unexpected subtasks: %v", subtasks)
	}
}

func TestCoordinatorLineFallback(t *testing.T) {
	// No JSON at all: the coordinator falls back to one subtask per line,
	// stripping numbering, and never exceeds the cap.
	p := &scriptedProvider{responses: []provider.Response{
		{Stop: provider.StopFinal, Text: "1. First area to research\n2) Second area\n- Third area\n* Fourth area\nFifth area"},
	}}
	subtasks, err := newTestCoordinator(p).Plan(context.Background(), "query")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(subtasks) != 4 {
		t.Fatalf("expected the cap of 4 subtasks, got %d: %v", len(subtasks), subtasks)
	}
	if subtasks[0] != "First area to research" || subtasks[1] != "Second area" {
		t.Fatalf("list markers not stripped: %v", subtasks)
	}
}

func TestCoordinatorRejectsTooFewSubtasks(t *testing.T) {
	p := &scriptedProvider{responses: []provider.Response{
		{Stop: provider.StopFinal, Text: `["only one"]`},
	}}
	if _, err := newTestCoordinator(p).Plan(context.Background(), "query"); err == nil {
		t.Fatal("a single-subtask plan must be rejected")
	}
}

func TestCoordinatorRejectsFencedPlansOutOfBounds(t *testing.T) {
	// A well-formed fenced list outside the 2-4 bound must fail outright:
	// the line fallback may not resurrect fence markers or JSON fragments
	// as subtasks.
	cases := []struct {
		name string
		text string
	}{
		{"one subtask", "```json\n[\"only one\"]\n```"},
		{"five subtasks", "```json\n[\"Task 1\", \"Task 2\", \"Task 3\", \"Task 4\", \"Task 5\"]\n```"},
		{"five subtasks multiline", "```json\n[\n  \"Task 1\",\n  \"Task 2\",\n  \"Task 3\",\n  \"Task 4\",\n  \"Task 5\"\n]\n```"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &scriptedProvider{responses: []provider.Response{
				{Stop: provider.StopFinal, Text: tc.text},
			}}
			subtasks, err := newTestCoordinator(p).Plan(context.Background(), "query")
			if err == nil {
				t.Fatalf("expected a domain failure, got subtasks %v", subtasks)
			}
		})
	}
}
