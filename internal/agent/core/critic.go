package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/orbiterhq/deepdive/config"
	"github.com/orbiterhq/deepdive/internal/llmjson"
)

// Critic reviews a synthesized report for unsupported claims, gaps and
// inconsistencies.
type Critic struct {
	engine *Engine
	prompt string
	cfg    config.AgentConfig
}

func NewCritic(engine *Engine, prompt string, cfg config.AgentConfig) *Critic {
	return &Critic{engine: engine, prompt: prompt, cfg: cfg}
}

// Review assesses the report's quality against the original query.
func (c *Critic) Review(ctx context.Context, query string, report SynthesizedReport) (CriticReview, error) {
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return CriticReview{}, fmt.Errorf("critic review failed: encode report: %w", err)
	}

	text, err := c.engine.Call(ctx, CallParams{
		Agent:  "critic",
		System: c.prompt,
		Prompt: fmt.Sprintf("Original query: %s\n\nReport to review:\n%s\n\nReview this report for quality, accuracy and completeness.",
			query, encoded),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return CriticReview{}, fmt.Errorf("critic review failed: %w", err)
	}

	review, err := llmjson.Decode[CriticReview](text, nil)
	if err != nil {
		return CriticReview{}, fmt.Errorf("critic review failed: %w", err)
	}
	return review, nil
}
