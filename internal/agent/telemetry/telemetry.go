// Package telemetry tracks model, tool and workflow activity for the
// research pipeline and exposes it as prometheus metrics.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/orbiterhq/deepdive/config"
)

// Telemetry aggregates counters for LLM usage, tool dispatch and workflow
// outcomes. A disabled Telemetry records nothing but stays safe to call.
type Telemetry struct {
	enabled  bool
	registry *prometheus.Registry

	llmRequests      *prometheus.CounterVec
	llmTokens        *prometheus.CounterVec
	toolInvocations  *prometheus.CounterVec
	workflowRuns     *prometheus.CounterVec
	workflowDuration prometheus.Histogram
}

// NewTelemetry creates a telemetry instance with its own registry.
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	t := &Telemetry{
		enabled:  cfg.Enabled,
		registry: prometheus.NewRegistry(),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deepdive_llm_requests_total",
			Help: "Completion requests issued to the model service, by agent.",
		}, []string{"agent"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deepdive_llm_tokens_total",
			Help: "Tokens consumed by the model service, by agent and direction.",
		}, []string{"agent", "direction"}),
		toolInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deepdive_tool_invocations_total",
			Help: "Tool dispatches requested by the model, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		workflowRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deepdive_workflow_runs_total",
			Help: "Completed workflow runs, by status.",
		}, []string{"status"}),
		workflowDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "deepdive_workflow_duration_seconds",
			Help:    "Wall-clock duration of a full workflow run.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	if cfg.Enabled {
		t.registry.MustRegister(
			t.llmRequests,
			t.llmTokens,
			t.toolInvocations,
			t.workflowRuns,
			t.workflowDuration,
		)
	}
	return t
}

// Registry exposes the metric registry for the /metrics handler.
func (t *Telemetry) Registry() *prometheus.Registry { return t.registry }

// RecordLLMCall counts one completion request and its token usage.
func (t *Telemetry) RecordLLMCall(agent string, promptTokens, completionTokens int64) {
	if t == nil || !t.enabled {
		return
	}
	t.llmRequests.WithLabelValues(agent).Inc()
	t.llmTokens.WithLabelValues(agent, "prompt").Add(float64(promptTokens))
	t.llmTokens.WithLabelValues(agent, "completion").Add(float64(completionTokens))
}

// RecordToolInvocation counts one tool dispatch.
func (t *Telemetry) RecordToolInvocation(tool string, failed bool) {
	if t == nil || !t.enabled {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	t.toolInvocations.WithLabelValues(tool, outcome).Inc()
}

// RecordWorkflow counts one finished run and observes its duration.
func (t *Telemetry) RecordWorkflow(status string, d time.Duration) {
	if t == nil || !t.enabled {
		return
	}
	t.workflowRuns.WithLabelValues(status).Inc()
	t.workflowDuration.Observe(d.Seconds())
}
