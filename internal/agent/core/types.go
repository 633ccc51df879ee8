package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SubtaskList is the coordinator's payload: 2-4 independently researchable
// subtasks. The model sometimes emits a bare JSON array and sometimes wraps
// it in {"subtasks": [...]}; both shapes decode.
type SubtaskList []string

const (
	minSubtasks = 2
	maxSubtasks = 4
)

func (s *SubtaskList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*s = items
		return nil
	}
	var wrapped struct {
		Subtasks []string `json:"subtasks"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.Subtasks == nil {
		return errors.New("expected a JSON array of subtasks")
	}
	*s = wrapped.Subtasks
	return nil
}

func (s SubtaskList) Validate() error {
	if len(s) < minSubtasks || len(s) > maxSubtasks {
		return fmt.Errorf("expected %d-%d subtasks, got %d", minSubtasks, maxSubtasks, len(s))
	}
	for i, task := range s {
		if strings.TrimSpace(task) == "" {
			return fmt.Errorf("subtask %d is empty", i)
		}
	}
	return nil
}

// Trimmed returns the subtasks with surrounding whitespace removed.
func (s SubtaskList) Trimmed() SubtaskList {
	out := make(SubtaskList, len(s))
	for i, task := range s {
		out[i] = strings.TrimSpace(task)
	}
	return out
}

// Finding is one atomic claim with its supporting source and detail text.
type Finding struct {
	Claim   string `json:"claim"`
	Source  string `json:"source"`
	Details string `json:"details"`
}

func (f Finding) Validate() error {
	if strings.TrimSpace(f.Claim) == "" {
		return errors.New("finding claim is empty")
	}
	if strings.TrimSpace(f.Source) == "" {
		return errors.New("finding source is empty")
	}
	if strings.TrimSpace(f.Details) == "" {
		return errors.New("finding details are empty")
	}
	return nil
}

// ResearchResult is the researcher's payload for one subtask.
type ResearchResult struct {
	Subtask  string    `json:"subtask"`
	Findings []Finding `json:"findings"`
}

func (r ResearchResult) Validate() error {
	if strings.TrimSpace(r.Subtask) == "" {
		return errors.New("research result subtask is empty")
	}
	if len(r.Findings) == 0 {
		return errors.New("research result must have at least one finding")
	}
	for i, f := range r.Findings {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("finding %d: %w", i, err)
		}
	}
	return nil
}

// SynthesisSection is one themed section of the synthesized report.
type SynthesisSection struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Sources []string `json:"sources"`
}

// SynthesizedReport combines all findings into an organized report.
type SynthesizedReport struct {
	Summary     string             `json:"summary"`
	Sections    []SynthesisSection `json:"sections"`
	KeyInsights []string           `json:"key_insights"`
}

func (r SynthesizedReport) Validate() error {
	if strings.TrimSpace(r.Summary) == "" {
		return errors.New("report summary is empty")
	}
	if len(r.Sections) == 0 {
		return errors.New("report must have at least one section")
	}
	for i, s := range r.Sections {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("section %d title is empty", i)
		}
		if strings.TrimSpace(s.Content) == "" {
			return fmt.Errorf("section %d content is empty", i)
		}
	}
	return nil
}

// CriticIssue is one problem the critic found in the report.
type CriticIssue struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Severity    string `json:"severity"`
}

// CriticReview is the critic's quality assessment of a report.
type CriticReview struct {
	OverallQuality    string        `json:"overall_quality"`
	Issues            []CriticIssue `json:"issues"`
	Suggestions       []string      `json:"suggestions"`
	NeedsMoreResearch bool          `json:"needs_more_research"`
}

func (r CriticReview) Validate() error {
	if strings.TrimSpace(r.OverallQuality) == "" {
		return errors.New("review overall_quality is empty")
	}
	for i, issue := range r.Issues {
		if strings.TrimSpace(issue.Type) == "" {
			return fmt.Errorf("issue %d type is empty", i)
		}
		if strings.TrimSpace(issue.Description) == "" {
			return fmt.Errorf("issue %d description is empty", i)
		}
	}
	return nil
}

// WorkflowResult is the immutable composite returned to the caller, built
// once when every phase has completed. No partial result escapes on failure.
type WorkflowResult struct {
	RunID           string            `json:"run_id"`
	Query           string            `json:"query"`
	Subtasks        SubtaskList       `json:"subtasks"`
	ResearchResults []ResearchResult  `json:"research_results"`
	Synthesis       SynthesizedReport `json:"synthesis"`
	Critique        CriticReview      `json:"critique"`
	StartedAt       time.Time         `json:"started_at"`
	CompletedAt     time.Time         `json:"completed_at"`
}
