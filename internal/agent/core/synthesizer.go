package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/orbiterhq/deepdive/config"
	"github.com/orbiterhq/deepdive/internal/llmjson"
)

// Synthesizer combines per-subtask findings into one organized report.
type Synthesizer struct {
	engine *Engine
	prompt string
	cfg    config.AgentConfig
}

func NewSynthesizer(engine *Engine, prompt string, cfg config.AgentConfig) *Synthesizer {
	return &Synthesizer{engine: engine, prompt: prompt, cfg: cfg}
}

// Synthesize produces a report from all research results for the query.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []ResearchResult) (SynthesizedReport, error) {
	findings, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return SynthesizedReport{}, fmt.Errorf("synthesis failed: encode findings: %w", err)
	}

	text, err := s.engine.Call(ctx, CallParams{
		Agent:  "synthesizer",
		System: s.prompt,
		Prompt: fmt.Sprintf("Original query: %s\n\nResearch findings:\n%s\n\nSynthesize these findings into a coherent report.",
			query, findings),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return SynthesizedReport{}, fmt.Errorf("synthesis failed: %w", err)
	}

	report, err := llmjson.Decode[SynthesizedReport](text, nil)
	if err != nil {
		return SynthesizedReport{}, fmt.Errorf("synthesis failed: %w", err)
	}
	return report, nil
}
