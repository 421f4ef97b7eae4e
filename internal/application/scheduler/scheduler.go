package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebarrios-ai/trivium/internal/application/progress"
	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"go.uber.org/zap"
)

// Scheduler executes plans: independent steps concurrently, dependent steps
// after their prerequisites, with progress events throughout. Failure policy
// is fail-fast: the first step error aborts the whole run.
type Scheduler struct {
	metrics     ports.MetricsCollector
	logger      *zap.Logger
	stepTimeout time.Duration
}

// New creates a new scheduler
func New(metrics ports.MetricsCollector, logger *zap.Logger, stepTimeout time.Duration) *Scheduler {
	return &Scheduler{
		metrics:     metrics,
		logger:      logger,
		stepTimeout: stepTimeout,
	}
}

// stepOutcome pairs a finished step with its result or error
type stepOutcome struct {
	step   domain.PlanStep
	result *domain.StepResult
	err    error
}

// Run executes the plan against the given executors. The returned map is
// keyed by step kind: the fixed vocabulary puts at most one step of each
// kind in a plan, and downstream synthesis selects by kind, not id.
//
// The ready tier (steps without dependencies) runs first; when the plan mode
// is parallel and more than one step is ready, all of them are launched
// together and Run waits at the barrier for the whole tier before touching
// dependent steps. Dependent steps then run in plan order, each receiving a
// context augmented with its dependency's extracted text.
func (s *Scheduler) Run(
	ctx context.Context,
	plan *domain.ExecutionPlan,
	req *domain.Request,
	executors map[domain.StepKind]ports.StepExecutor,
	reporter *progress.Reporter,
) (map[domain.StepKind]domain.StepResult, error) {
	results := make(map[domain.StepKind]domain.StepResult)

	var ready, pending []domain.PlanStep
	for _, step := range plan.Steps {
		if len(step.DependsOn) == 0 {
			ready = append(ready, step)
		} else {
			pending = append(pending, step)
		}
	}

	// Ready tier
	if plan.Mode == domain.ExecutionModeParallel && len(ready) > 1 {
		outcomes := make(chan stepOutcome, len(ready))
		var wg sync.WaitGroup

		for _, step := range ready {
			reporter.Report(ctx, step.Kind.Label(),
				fmt.Sprintf("Starting parallel execution: %s", step.Description), false)

			wg.Add(1)
			go func(step domain.PlanStep) {
				defer wg.Done()
				result, err := s.runStep(ctx, step, req.Query, req.Context, executors)
				outcomes <- stepOutcome{step: step, result: result, err: err}
			}(step)
		}

		wg.Wait()
		close(outcomes)

		var firstErr error
		for outcome := range outcomes {
			if outcome.err != nil {
				reporter.Report(ctx, outcome.step.Kind.Label(), outcome.err.Error(), true)
				if firstErr == nil {
					firstErr = fmt.Errorf("step %d (%s) failed: %w", outcome.step.ID, outcome.step.Kind, outcome.err)
				}
				continue
			}
			results[outcome.step.Kind] = *outcome.result
			reporter.Report(ctx, outcome.step.Kind.Label(),
				fmt.Sprintf("Completed parallel execution for %s", outcome.step.Kind.Label()), false)
		}
		if firstErr != nil {
			return results, firstErr
		}
	} else {
		for _, step := range ready {
			reporter.Report(ctx, step.Kind.Label(),
				fmt.Sprintf("Starting sequential execution: %s", step.Description), false)

			result, err := s.runStep(ctx, step, req.Query, req.Context, executors)
			if err != nil {
				reporter.Report(ctx, step.Kind.Label(), err.Error(), true)
				return results, fmt.Errorf("step %d (%s) failed: %w", step.ID, step.Kind, err)
			}

			results[step.Kind] = *result
			reporter.Report(ctx, step.Kind.Label(),
				fmt.Sprintf("Completed sequential execution for %s", step.Kind.Label()), false)
		}
	}

	// Dependent tier. Dependencies are always in the ready tier for this
	// vocabulary, so their results are present by now.
	for _, step := range pending {
		stepCtx, err := s.augmentContext(plan, step, req.Context, results)
		if err != nil {
			reporter.Report(ctx, step.Kind.Label(), err.Error(), true)
			return results, err
		}

		reporter.Report(ctx, step.Kind.Label(),
			fmt.Sprintf("Starting dependent execution: %s", step.Description), false)

		result, err := s.runStep(ctx, step, req.Query, stepCtx, executors)
		if err != nil {
			reporter.Report(ctx, step.Kind.Label(), err.Error(), true)
			return results, fmt.Errorf("step %d (%s) failed: %w", step.ID, step.Kind, err)
		}

		results[step.Kind] = *result
		reporter.Report(ctx, step.Kind.Label(),
			fmt.Sprintf("Completed dependent execution for %s", step.Kind.Label()), false)
	}

	return results, nil
}

// runStep executes one step with its own timeout and records metrics
func (s *Scheduler) runStep(
	ctx context.Context,
	step domain.PlanStep,
	query string,
	stepCtx domain.RequestContext,
	executors map[domain.StepKind]ports.StepExecutor,
) (*domain.StepResult, error) {
	executor, ok := executors[step.Kind]
	if !ok {
		return nil, fmt.Errorf("no executor registered for kind %s", step.Kind)
	}

	if s.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.stepTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := executor.Execute(ctx, query, stepCtx)
	duration := time.Since(start)

	if err != nil {
		s.metrics.RecordStepExecuted(string(step.Kind), "failed", duration)
		s.logger.Error("step execution failed",
			zap.Int("step_id", step.ID),
			zap.String("kind", string(step.Kind)),
			zap.Duration("duration", duration),
			zap.Error(err))
		return nil, err
	}

	s.metrics.RecordStepExecuted(string(step.Kind), "completed", duration)
	s.logger.Info("step executed",
		zap.Int("step_id", step.ID),
		zap.String("kind", string(step.Kind)),
		zap.Duration("duration", duration))

	return result, nil
}

// augmentContext merges the original request context with fields contributed
// by the step's dependencies. For this vocabulary that is the document
// analysis text feeding knowledge retrieval.
func (s *Scheduler) augmentContext(
	plan *domain.ExecutionPlan,
	step domain.PlanStep,
	base domain.RequestContext,
	results map[domain.StepKind]domain.StepResult,
) (domain.RequestContext, error) {
	merged := base

	for _, depID := range step.DependsOn {
		dep := plan.Step(depID)
		if dep == nil {
			return merged, fmt.Errorf("step %d depends on unknown step %d", step.ID, depID)
		}

		depResult, ok := results[dep.Kind]
		if !ok {
			return merged, fmt.Errorf("step %d depends on step %d which has no result", step.ID, depID)
		}

		if depResult.Text != "" {
			merged.Text = depResult.Text
		}
	}

	return merged, nil
}
