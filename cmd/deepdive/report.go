package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/orbiterhq/deepdive/internal/agent/core"
)

// printResult renders a finished run as a plain-text report.
func printResult(w io.Writer, r *core.WorkflowResult) {
	line := strings.Repeat("=", 72)

	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "RESEARCH REPORT: %s\n", r.Query)
	fmt.Fprintf(w, "run %s, %s\n", r.RunID, r.CompletedAt.Sub(r.StartedAt).Round(10*time.Millisecond))
	fmt.Fprintln(w, line)

	fmt.Fprintf(w, "\nSubtasks (%d):\n", len(r.Subtasks))
	for i, s := range r.Subtasks {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}

	fmt.Fprintf(w, "\nSUMMARY\n%s\n", r.Synthesis.Summary)

	for _, section := range r.Synthesis.Sections {
		fmt.Fprintf(w, "\n## %s\n%s\n", section.Title, section.Content)
		if len(section.Sources) > 0 {
			fmt.Fprintf(w, "Sources: %s\n", strings.Join(section.Sources, ", "))
		}
	}

	if len(r.Synthesis.KeyInsights) > 0 {
		fmt.Fprintln(w, "\nKEY INSIGHTS")
		for _, insight := range r.Synthesis.KeyInsights {
			fmt.Fprintf(w, "  - %s\n", insight)
		}
	}

	fmt.Fprintf(w, "\nREVIEW: %s\n", r.Critique.OverallQuality)
	for _, issue := range r.Critique.Issues {
		loc := issue.Location
		if loc == "" {
			loc = "report"
		}
		fmt.Fprintf(w, "  [%s] %s (%s, %s)\n", issue.Severity, issue.Description, issue.Type, loc)
	}
	for _, s := range r.Critique.Suggestions {
		fmt.Fprintf(w, "  suggestion: %s\n", s)
	}
	if r.Critique.NeedsMoreResearch {
		fmt.Fprintln(w, "  note: the reviewer recommends additional research")
	}
}
