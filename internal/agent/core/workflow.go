package core

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/orbiterhq/deepdive/config"
	"github.com/orbiterhq/deepdive/internal/agent/telemetry"
)

// Workflow runs the full research pipeline: plan, research each subtask,
// synthesize, critique. Phases run in order and each consumes the previous
// phase's output; any failure aborts the run with no partial result.
type Workflow struct {
	coordinator *Coordinator
	researcher  *Researcher
	synthesizer *Synthesizer
	critic      *Critic
	telemetry   *telemetry.Telemetry
	log         *log.Logger
	tracer      trace.Tracer
}

// NewWorkflow wires the four role agents from configuration. The researcher
// gets the tool set; the other agents run without tools.
func NewWorkflow(cfg *config.Config, prompts config.Prompts, tel *telemetry.Telemetry, logger *log.Logger) (*Workflow, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[WORKFLOW] ", log.LstdFlags)
	}

	llm, err := NewLLMProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}
	tools, err := NewToolSetFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	engine := NewEngine(llm, tools, tel, logger, cfg.Agents.MaxToolRounds)

	return &Workflow{
		coordinator: NewCoordinator(engine, prompts.Coordinator, cfg.Agents.Coordinator),
		researcher:  NewResearcher(engine, prompts.Researcher, cfg.Agents.Researcher),
		synthesizer: NewSynthesizer(engine, prompts.Synthesizer, cfg.Agents.Synthesizer),
		critic:      NewCritic(engine, prompts.Critic, cfg.Agents.Critic),
		telemetry:   tel,
		log:         logger,
		tracer:      otel.Tracer("deepdive/workflow"),
	}, nil
}

// WorkflowAgents carries pre-built role agents for callers that wire their
// own provider and tools instead of going through NewWorkflow.
type WorkflowAgents struct {
	Coordinator *Coordinator
	Researcher  *Researcher
	Synthesizer *Synthesizer
	Critic      *Critic
}

// AssembleWorkflow builds a workflow from pre-built agents.
func AssembleWorkflow(agents WorkflowAgents, tel *telemetry.Telemetry, logger *log.Logger) *Workflow {
	if logger == nil {
		logger = log.New(log.Writer(), "[WORKFLOW] ", log.LstdFlags)
	}
	return &Workflow{
		coordinator: agents.Coordinator,
		researcher:  agents.Researcher,
		synthesizer: agents.Synthesizer,
		critic:      agents.Critic,
		telemetry:   tel,
		log:         logger,
		tracer:      otel.Tracer("deepdive/workflow"),
	}
}

// Run executes the pipeline for one query.
func (w *Workflow) Run(ctx context.Context, query string) (*WorkflowResult, error) {
	runID := uuid.NewString()
	started := time.Now()

	ctx, span := w.tracer.Start(ctx, "workflow.run", trace.WithAttributes(
		attribute.String("run.id", runID),
	))
	defer span.End()

	result, err := w.run(ctx, runID, query, started)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		w.telemetry.RecordWorkflow("failed", time.Since(started))
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	w.telemetry.RecordWorkflow("completed", time.Since(started))
	return result, nil
}

func (w *Workflow) run(ctx context.Context, runID, query string, started time.Time) (*WorkflowResult, error) {
	w.log.Printf("run %s: planning %q", runID, query)
	ctx, planSpan := w.tracer.Start(ctx, "workflow.plan")
	subtasks, err := w.coordinator.Plan(ctx, query)
	planSpan.End()
	if err != nil {
		return nil, err
	}
	w.log.Printf("run %s: %d subtasks", runID, len(subtasks))

	results := make([]ResearchResult, 0, len(subtasks))
	for i, subtask := range subtasks {
		w.log.Printf("run %s: researching %d/%d: %s", runID, i+1, len(subtasks), subtask)
		rctx, span := w.tracer.Start(ctx, "workflow.research", trace.WithAttributes(
			attribute.Int("subtask.index", i),
		))
		res, err := w.researcher.Research(rctx, subtask)
		span.End()
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	w.log.Printf("run %s: synthesizing", runID)
	sctx, synthSpan := w.tracer.Start(ctx, "workflow.synthesize")
	report, err := w.synthesizer.Synthesize(sctx, query, results)
	synthSpan.End()
	if err != nil {
		return nil, err
	}

	w.log.Printf("run %s: reviewing", runID)
	cctx, critSpan := w.tracer.Start(ctx, "workflow.critique")
	review, err := w.critic.Review(cctx, query, report)
	critSpan.End()
	if err != nil {
		return nil, err
	}

	if review.NeedsMoreResearch {
		w.log.Printf("run %s: critic flagged gaps (%d issues)", runID, len(review.Issues))
	}

	return &WorkflowResult{
		RunID:           runID,
		Query:           query,
		Subtasks:        subtasks,
		ResearchResults: results,
		Synthesis:       report,
		Critique:        review,
		StartedAt:       started,
		CompletedAt:     time.Now(),
	}, nil
}
