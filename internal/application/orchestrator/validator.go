package orchestrator

import (
	"fmt"

	"github.com/ebarrios-ai/trivium/pkg/domain"
)

// Validator checks execution plans for structural soundness before they are
// handed to the scheduler.
type Validator struct{}

// NewValidator creates a new plan validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the plan: non-empty, positive unique step ids, known step
// kinds, dependencies referencing existing earlier steps, and no cycles.
func (v *Validator) Validate(plan *domain.ExecutionPlan) error {
	if plan == nil {
		return fmt.Errorf("plan is nil")
	}
	if len(plan.Steps) == 0 {
		return fmt.Errorf("plan has no steps")
	}

	known := make(map[domain.StepKind]bool, len(domain.KindOrder))
	for _, kind := range domain.KindOrder {
		known[kind] = true
	}

	position := make(map[int]int, len(plan.Steps))
	for i, step := range plan.Steps {
		if step.ID <= 0 {
			return fmt.Errorf("step %d has non-positive id %d", i, step.ID)
		}
		if _, dup := position[step.ID]; dup {
			return fmt.Errorf("duplicate step id %d", step.ID)
		}
		if !known[step.Kind] {
			return fmt.Errorf("step %d has unknown kind %q", step.ID, step.Kind)
		}
		position[step.ID] = i
	}

	for i, step := range plan.Steps {
		for _, depID := range step.DependsOn {
			depPos, ok := position[depID]
			if !ok {
				return fmt.Errorf("step %d depends on unknown step %d", step.ID, depID)
			}
			if depID == step.ID {
				return fmt.Errorf("step %d depends on itself", step.ID)
			}
			if depPos >= i {
				return fmt.Errorf("step %d depends on step %d which does not precede it", step.ID, depID)
			}
		}
	}

	if err := v.checkAcyclic(plan, position); err != nil {
		return err
	}

	return nil
}

// checkAcyclic runs a depth-first search over the dependency edges. The
// precedence check above already rules cycles out for well-ordered plans;
// this catches plans with consistent positions but cyclic edges.
func (v *Validator) checkAcyclic(plan *domain.ExecutionPlan, position map[int]int) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)

	state := make(map[int]int, len(plan.Steps))

	var visit func(id int) error
	visit = func(id int) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("plan contains a dependency cycle through step %d", id)
		case done:
			return nil
		}

		state[id] = visiting
		step := plan.Steps[position[id]]
		for _, depID := range step.DependsOn {
			if err := visit(depID); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for _, step := range plan.Steps {
		if err := visit(step.ID); err != nil {
			return err
		}
	}

	return nil
}
