package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ebarrios-ai/trivium/internal/application/agents"
	"github.com/ebarrios-ai/trivium/internal/application/planner"
	"github.com/ebarrios-ai/trivium/internal/application/progress"
	"github.com/ebarrios-ai/trivium/internal/application/scheduler"
	"github.com/ebarrios-ai/trivium/internal/application/synthesis"
	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runtime override keys in the shared store. Operators can repoint agent
// models and system prompts without a restart.
const (
	modelOverridesKey  = "agent_models"
	promptOverridesKey = "system_prompts"
)

// Manager owns the request lifecycle from analysis to persisted history.
type Manager struct {
	bus     ports.ProgressBus
	cache   ports.Cache
	history ports.HistoryStore
	metrics ports.MetricsCollector
	logger  *zap.Logger

	planner     *planner.Planner
	validator   *Validator
	scheduler   *scheduler.Scheduler
	synthesizer *synthesis.Synthesizer
	factory     *agents.Factory

	executionTimeout  time.Duration
	orchestratorModel string
}

// ManagerConfig holds manager construction parameters
type ManagerConfig struct {
	Bus     ports.ProgressBus
	Cache   ports.Cache
	History ports.HistoryStore
	Metrics ports.MetricsCollector
	Logger  *zap.Logger

	Factory *agents.Factory

	ExecutionTimeout  time.Duration
	StepTimeout       time.Duration
	OrchestratorModel string
}

// NewManager creates a new orchestration manager
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		bus:               cfg.Bus,
		cache:             cfg.Cache,
		history:           cfg.History,
		metrics:           cfg.Metrics,
		logger:            cfg.Logger,
		planner:           planner.New(),
		validator:         NewValidator(),
		scheduler:         scheduler.New(cfg.Metrics, cfg.Logger, cfg.StepTimeout),
		synthesizer:       synthesis.New(cfg.OrchestratorModel),
		factory:           cfg.Factory,
		executionTimeout:  cfg.ExecutionTimeout,
		orchestratorModel: cfg.OrchestratorModel,
	}
}

// Execute runs the full lifecycle for one request. Progress events are
// published to the client's activity channel throughout; an empty clientID
// runs silently. The returned outcome is terminal either way: on failure it
// carries the error and no partial step results.
func (m *Manager) Execute(ctx context.Context, req *domain.Request, clientID string) (*domain.ExecutionOutcome, error) {
	if m.executionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.executionTimeout)
		defer cancel()
	}

	start := time.Now()
	reporter := progress.NewReporter(m.bus, clientID, m.metrics, m.logger)

	reporter.Report(ctx, domain.OriginOrchestrator, "Analyzing request...", false)
	analysis := m.planner.Analyze(req)
	reporter.Report(ctx, domain.OriginOrchestrator,
		fmt.Sprintf("Request analysis complete: %s", analysis.Summary), false)

	reporter.Report(ctx, domain.OriginOrchestrator, "Creating execution plan...", false)
	plan := m.planner.BuildPlan(analysis)
	if err := m.validator.Validate(plan); err != nil {
		return m.fail(ctx, reporter, req, analysis, plan, start,
			fmt.Errorf("invalid execution plan: %w", err))
	}
	reporter.Report(ctx, domain.OriginOrchestrator,
		fmt.Sprintf("Execution plan created: %d steps, %s mode", len(plan.Steps), plan.Mode), false)

	executors := m.buildExecutors(ctx, reporter)

	reporter.Report(ctx, domain.OriginOrchestrator, "Executing plan...", false)
	results, err := m.scheduler.Run(ctx, plan, req, executors, reporter)
	if err != nil {
		return m.fail(ctx, reporter, req, analysis, plan, start, err)
	}
	reporter.Report(ctx, domain.OriginOrchestrator, "Plan execution complete.", false)

	reporter.Report(ctx, domain.OriginOrchestrator, "Synthesizing results from all agents...", false)
	report := m.synthesizer.Compose(results, plan, req)

	duration := time.Since(start)
	outcome := &domain.ExecutionOutcome{
		Request:  *req,
		Analysis: analysis,
		Plan:     plan,
		Results:  results,
		Report:   report,
		Duration: duration,
		Status:   domain.ExecutionStatusSuccess,
	}

	m.saveHistory(ctx, outcome)
	m.metrics.RecordRequestCompleted("success", duration)

	m.logger.Info("request completed",
		zap.String("client_id", clientID),
		zap.Int("steps", len(plan.Steps)),
		zap.Duration("duration", duration))

	return outcome, nil
}

// ExecuteTask runs one async submission and publishes the terminal result
// event on the client's results channel.
func (m *Manager) ExecuteTask(ctx context.Context, taskID string, req *domain.Request, clientID string) *domain.ExecutionOutcome {
	outcome, err := m.Execute(ctx, req, clientID)

	event := domain.ResultEvent{
		Type:      domain.EventTypeResult,
		TaskID:    taskID,
		Status:    domain.TaskStatusSuccess,
		Result:    outcome,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err != nil {
		event.Status = domain.TaskStatusFailure
		event.Error = err.Error()
	}

	m.publishResult(ctx, clientID, &event)

	return outcome
}

// fail reports the failure, records metrics, and builds the failure outcome.
// Partial step results are discarded: an outcome either carries a full result
// set and a report, or neither.
func (m *Manager) fail(
	ctx context.Context,
	reporter *progress.Reporter,
	req *domain.Request,
	analysis domain.Analysis,
	plan *domain.ExecutionPlan,
	start time.Time,
	err error,
) (*domain.ExecutionOutcome, error) {
	reporter.Report(ctx, domain.OriginOrchestrator,
		fmt.Sprintf("Execution failed: %v", err), true)

	duration := time.Since(start)
	m.metrics.RecordRequestCompleted("failure", duration)

	m.logger.Error("request failed",
		zap.String("client_id", reporter.ClientID()),
		zap.Duration("duration", duration),
		zap.Error(err))

	return &domain.ExecutionOutcome{
		Request:  *req,
		Analysis: analysis,
		Plan:     plan,
		Duration: duration,
		Status:   domain.ExecutionStatusFailure,
		Error:    err.Error(),
	}, err
}

// buildExecutors resolves runtime model and prompt overrides from the shared
// store and builds the per-request executor set. Override lookups are best
// effort: a storage failure falls back to configured defaults.
func (m *Manager) buildExecutors(ctx context.Context, reporter *progress.Reporter) map[domain.StepKind]ports.StepExecutor {
	models := m.factory.Models()
	prompts := m.factory.Prompts()

	var modelOverrides map[string]string
	if hit, err := m.cache.Get(ctx, modelOverridesKey, &modelOverrides); err != nil {
		m.logger.Warn("failed to load model overrides", zap.Error(err))
	} else if hit {
		applyModelOverride(&models.Document, modelOverrides["document"])
		applyModelOverride(&models.Lookup, modelOverrides["lookup"])
		applyModelOverride(&models.Retrieval, modelOverrides["retrieval"])
		applyModelOverride(&models.Embedding, modelOverrides["embedding"])
	}

	var promptOverrides map[string]promptOverride
	if hit, err := m.cache.Get(ctx, promptOverridesKey, &promptOverrides); err != nil {
		m.logger.Warn("failed to load prompt overrides", zap.Error(err))
	} else if hit {
		applyModelOverride(&prompts.Document, promptOverrides["document"].Current)
		applyModelOverride(&prompts.Lookup, promptOverrides["lookup"].Current)
		applyModelOverride(&prompts.Retrieval, promptOverrides["retrieval"].Current)
	}

	return m.factory.ExecutorsWith(reporter, models, prompts)
}

// promptOverride is the stored shape of one prompt entry
type promptOverride struct {
	Current string `json:"current"`
}

func applyModelOverride(target *string, value string) {
	if value != "" {
		*target = value
	}
}

// saveHistory persists the outcome as a session. Persistence failures are
// logged and never fail the execution.
func (m *Manager) saveHistory(ctx context.Context, outcome *domain.ExecutionOutcome) {
	session := &domain.Session{
		ID:        uuid.NewString(),
		Query:     outcome.Request.Query,
		Context:   outcome.Request.Context.Text,
		Report:    outcome.Report,
		Plan:      outcome.Plan,
		Status:    outcome.Status,
		Duration:  outcome.Duration,
		Timestamp: time.Now(),
		Model:     m.orchestratorModel,
	}

	if err := m.history.SaveSession(ctx, session); err != nil {
		m.logger.Error("failed to save session history",
			zap.String("session_id", session.ID),
			zap.Error(err))
	}
}

// publishResult pushes the terminal result event for an async task.
func (m *Manager) publishResult(ctx context.Context, clientID string, event *domain.ResultEvent) {
	if m.bus == nil || clientID == "" {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		m.logger.Error("failed to marshal result event",
			zap.String("task_id", event.TaskID),
			zap.Error(err))
		return
	}

	if err := m.bus.Publish(ctx, domain.ResultsChannel(clientID), payload); err != nil {
		m.logger.Error("failed to publish result event",
			zap.String("task_id", event.TaskID),
			zap.String("client_id", clientID),
			zap.Error(err))
		return
	}

	m.metrics.RecordEventPublished("results")
}
