package orchestrator

import (
	"testing"

	"github.com/ebarrios-ai/trivium/pkg/domain"
)

func TestValidateAcceptsWellFormedPlan(t *testing.T) {
	v := NewValidator()

	plan := &domain.ExecutionPlan{
		Steps: []domain.PlanStep{
			{ID: 1, Kind: domain.StepKindDocumentAnalysis},
			{ID: 2, Kind: domain.StepKindInformationLookup},
			{ID: 3, Kind: domain.StepKindKnowledgeRetrieval, DependsOn: []int{1}},
		},
	}

	if err := v.Validate(plan); err != nil {
		t.Fatalf("Validate rejected well-formed plan: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		plan *domain.ExecutionPlan
	}{
		{
			name: "nil plan",
			plan: nil,
		},
		{
			name: "empty plan",
			plan: &domain.ExecutionPlan{},
		},
		{
			name: "non-positive id",
			plan: &domain.ExecutionPlan{Steps: []domain.PlanStep{
				{ID: 0, Kind: domain.StepKindKnowledgeRetrieval},
			}},
		},
		{
			name: "duplicate id",
			plan: &domain.ExecutionPlan{Steps: []domain.PlanStep{
				{ID: 1, Kind: domain.StepKindDocumentAnalysis},
				{ID: 1, Kind: domain.StepKindKnowledgeRetrieval},
			}},
		},
		{
			name: "unknown kind",
			plan: &domain.ExecutionPlan{Steps: []domain.PlanStep{
				{ID: 1, Kind: domain.StepKind("translation")},
			}},
		},
		{
			name: "dependency on unknown step",
			plan: &domain.ExecutionPlan{Steps: []domain.PlanStep{
				{ID: 1, Kind: domain.StepKindKnowledgeRetrieval, DependsOn: []int{9}},
			}},
		},
		{
			name: "self dependency",
			plan: &domain.ExecutionPlan{Steps: []domain.PlanStep{
				{ID: 1, Kind: domain.StepKindKnowledgeRetrieval, DependsOn: []int{1}},
			}},
		},
		{
			name: "dependency on later step",
			plan: &domain.ExecutionPlan{Steps: []domain.PlanStep{
				{ID: 1, Kind: domain.StepKindKnowledgeRetrieval, DependsOn: []int{2}},
				{ID: 2, Kind: domain.StepKindDocumentAnalysis},
			}},
		},
		{
			name: "cycle",
			plan: &domain.ExecutionPlan{Steps: []domain.PlanStep{
				{ID: 1, Kind: domain.StepKindDocumentAnalysis, DependsOn: []int{2}},
				{ID: 2, Kind: domain.StepKindKnowledgeRetrieval, DependsOn: []int{1}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.Validate(tt.plan); err == nil {
				t.Error("Validate accepted invalid plan")
			}
		})
	}
}
