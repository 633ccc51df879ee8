package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Prompts holds the fixed role instructions for the four agents. The
// researcher prompt may contain {current_date} and {current_year}
// placeholders, substituted per run.
type Prompts struct {
	Coordinator string `yaml:"coordinator"`
	Researcher  string `yaml:"researcher"`
	Synthesizer string `yaml:"synthesizer"`
	Critic      string `yaml:"critic"`
}

// LoadPrompts reads role instructions from path, or the embedded defaults
// when path is empty. A file may override a subset; missing roles keep their
// defaults.
func LoadPrompts(path string) (Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(defaultPrompts, &p); err != nil {
		return Prompts{}, fmt.Errorf("parse embedded prompts: %w", err)
	}
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("read prompts %s: %w", path, err)
	}
	var override Prompts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Prompts{}, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	if override.Coordinator != "" {
		p.Coordinator = override.Coordinator
	}
	if override.Researcher != "" {
		p.Researcher = override.Researcher
	}
	if override.Synthesizer != "" {
		p.Synthesizer = override.Synthesizer
	}
	if override.Critic != "" {
		p.Critic = override.Critic
	}
	return p, nil
}

// WithDate substitutes the date placeholders in a prompt for the given time.
func WithDate(prompt string, now time.Time) string {
	return strings.NewReplacer(
		"{current_date}", now.Format("2006-01-02"),
		"{current_year}", now.Format("2006"),
	).Replace(prompt)
}
