package core

import (
	"context"
	"fmt"
	"time"

	"github.com/orbiterhq/deepdive/config"
	"github.com/orbiterhq/deepdive/internal/llmjson"
)

// Researcher investigates one subtask with the model plus the tool set and
// returns sourced findings.
type Researcher struct {
	engine *Engine
	prompt string
	cfg    config.AgentConfig
	now    func() time.Time
}

func NewResearcher(engine *Engine, prompt string, cfg config.AgentConfig) *Researcher {
	return &Researcher{engine: engine, prompt: prompt, cfg: cfg, now: time.Now}
}

// Research runs the tool loop for one subtask and decodes the findings.
func (r *Researcher) Research(ctx context.Context, subtask string) (ResearchResult, error) {
	text, err := r.engine.Call(ctx, CallParams{
		Agent:       "researcher",
		System:      config.WithDate(r.prompt, r.now()),
		Prompt:      fmt.Sprintf("Research this subtask thoroughly: %s", subtask),
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
		WithTools:   true,
	})
	if err != nil {
		return ResearchResult{}, fmt.Errorf("research failed for %q: %w", subtask, err)
	}

	result, err := llmjson.Decode[ResearchResult](text, nil)
	if err != nil {
		return ResearchResult{}, fmt.Errorf("research failed for %q: %w", subtask, err)
	}
	// The model sometimes echoes a paraphrased subtask; keep the original so
	// downstream consumers can match results to the plan.
	result.Subtask = subtask
	return result, nil
}
