package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/orbiterhq/deepdive/config"
	"github.com/orbiterhq/deepdive/internal/llmjson"
)

// Coordinator breaks a research query into independently researchable
// subtasks.
type Coordinator struct {
	engine *Engine
	prompt string
	cfg    config.AgentConfig
}

func NewCoordinator(engine *Engine, prompt string, cfg config.AgentConfig) *Coordinator {
	return &Coordinator{engine: engine, prompt: prompt, cfg: cfg}
}

// Plan asks the model for a subtask decomposition of the query.
func (c *Coordinator) Plan(ctx context.Context, query string) (SubtaskList, error) {
	text, err := c.engine.Call(ctx, CallParams{
		Agent:       "coordinator",
		System:      c.prompt,
		Prompt:      fmt.Sprintf("Break down this research query into subtasks: %s", query),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("coordination failed: %w", err)
	}

	subtasks, err := llmjson.Decode[SubtaskList](text, extractSubtaskLines)
	if err != nil {
		return nil, fmt.Errorf("coordination failed: %w", err)
	}
	return subtasks.Trimmed(), nil
}

// extractSubtaskLines is the coordinator's last-resort parse: treat each
// non-empty prose line of the reply as one subtask, stripping list markers.
// It returns at most the subtask cap so a chatty reply does not overflow it.
// Fence markers and JSON fragments are skipped, so a plan that was valid
// JSON but failed validation is not resurrected line by line.
func extractSubtaskLines(raw string) (any, error) {
	var tasks []string
	for _, line := range strings.Split(raw, "\n") {
		line = stripListMarker(strings.TrimSpace(line))
		if line == "" || looksLikeJSONLine(line) {
			continue
		}
		tasks = append(tasks, line)
		if len(tasks) == maxSubtasks {
			break
		}
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no subtask lines found")
	}
	return tasks, nil
}

// looksLikeJSONLine reports whether a line is a fence marker or a JSON
// syntax fragment rather than prose.
func looksLikeJSONLine(line string) bool {
	if strings.HasPrefix(line, "```") {
		return true
	}
	switch line[0] {
	case '{', '}', '[', ']', '"', ',':
		return true
	}
	return false
}

// stripListMarker removes a leading bullet or "1." / "1)" numbering.
func stripListMarker(line string) string {
	line = strings.TrimLeft(line, "-*• \t")
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		line = line[i+1:]
	}
	return strings.TrimSpace(line)
}
