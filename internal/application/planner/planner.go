package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/ebarrios-ai/trivium/pkg/domain"
)

// unitCost is the estimated cost per plan step.
const unitCost = 1000 * time.Millisecond

// signalTable maps keyword signals in the query text to the step kind they
// call for. Kept as data so the planner stays a pure function over it.
var signalTable = map[domain.StepKind][]string{
	domain.StepKindDocumentAnalysis:  {"document", "text", "extract", "read", "scan"},
	domain.StepKindInformationLookup: {"search", "find", "information", "lookup", "research"},
}

// Planner derives execution plans from requests. Stateless; both methods are
// pure functions, so the same request always yields the same plan.
type Planner struct{}

// New creates a new planner
func New() *Planner {
	return &Planner{}
}

// Analyze scans the query and side-context for keyword signals and decides
// which step kinds the request needs. Knowledge retrieval is always needed:
// the system consults its knowledge store for every request, so complexity
// is at least 1. Analyze never fails.
func (p *Planner) Analyze(req *domain.Request) domain.Analysis {
	query := strings.ToLower(req.Query)
	contextText := strings.ToLower(req.Context.Text)

	analysis := domain.Analysis{
		NeedsDocumentAnalysis: matchesAny(query, signalTable[domain.StepKindDocumentAnalysis]) ||
			matchesAny(contextText, signalTable[domain.StepKindDocumentAnalysis]),
		NeedsInformationLookup:  matchesAny(query, signalTable[domain.StepKindInformationLookup]),
		NeedsKnowledgeRetrieval: true,
	}

	for _, kind := range domain.KindOrder {
		if analysis.Needs(kind) {
			analysis.Complexity++
		}
	}

	analysis.Summary = fmt.Sprintf(
		"Request requires %d agents. Document: %t, Lookup: %t, Retrieval: %t",
		analysis.Complexity,
		analysis.NeedsDocumentAnalysis,
		analysis.NeedsInformationLookup,
		analysis.NeedsKnowledgeRetrieval)

	return analysis
}

// BuildPlan turns an analysis into an execution plan. Step ids are assigned
// sequentially in fixed kind order; knowledge retrieval depends on document
// analysis only when document analysis is part of the plan, because it
// consumes the extracted text. Deterministic: equal analyses yield equal plans.
func (p *Planner) BuildPlan(analysis domain.Analysis) *domain.ExecutionPlan {
	plan := &domain.ExecutionPlan{}

	var documentStepID int

	for _, kind := range domain.KindOrder {
		if !analysis.Needs(kind) {
			continue
		}

		step := domain.PlanStep{
			ID:   len(plan.Steps) + 1,
			Kind: kind,
		}

		switch kind {
		case domain.StepKindDocumentAnalysis:
			step.Description = "Extract and analyze text from document"
			step.Rationale = "User request mentions document or text extraction"
			documentStepID = step.ID
		case domain.StepKindInformationLookup:
			step.Description = "Search for relevant information"
			step.Rationale = "User request requires external information lookup"
		case domain.StepKindKnowledgeRetrieval:
			step.Description = "Query knowledge base for context"
			step.Rationale = "Knowledge base consultation needed for comprehensive response"
			if documentStepID != 0 {
				step.DependsOn = []int{documentStepID}
			}
		}

		plan.Steps = append(plan.Steps, step)
		plan.Kinds = append(plan.Kinds, kind)
	}

	if analysis.Complexity > 1 {
		plan.Mode = domain.ExecutionModeParallel
	} else {
		plan.Mode = domain.ExecutionModeSequential
	}
	plan.EstimatedCost = time.Duration(len(plan.Steps)) * unitCost

	return plan
}

// matchesAny reports whether text contains any of the signal words
func matchesAny(text string, signals []string) bool {
	for _, signal := range signals {
		if strings.Contains(text, signal) {
			return true
		}
	}
	return false
}
