// Package synthesis composes per-step results into the final report.
package synthesis

import (
	"fmt"
	"strings"

	"github.com/ebarrios-ai/trivium/pkg/domain"
)

// Synthesizer merges step results into one human-readable report.
type Synthesizer struct {
	orchestratorModel string
}

// New creates a new synthesizer
func New(orchestratorModel string) *Synthesizer {
	return &Synthesizer{orchestratorModel: orchestratorModel}
}

// Compose renders the fixed-structure report: an execution summary, one
// labeled section per present result kind, then a closing statement.
// Sections always appear in the fixed kind order, never in map iteration
// order.
func (s *Synthesizer) Compose(
	results map[domain.StepKind]domain.StepResult,
	plan *domain.ExecutionPlan,
	req *domain.Request,
) string {
	var b strings.Builder

	b.WriteString("=== ORCHESTRATOR SYNTHESIS ===\n\n")
	b.WriteString("EXECUTION SUMMARY:\n")
	fmt.Fprintf(&b, "- Orchestrator Model: %s\n", s.orchestratorModel)
	fmt.Fprintf(&b, "- Total Steps: %d\n", len(plan.Steps))
	fmt.Fprintf(&b, "- Agents Used: %s\n", joinKinds(plan.Kinds))
	fmt.Fprintf(&b, "- Execution Mode: %s\n\n", plan.Mode)

	for _, kind := range domain.KindOrder {
		result, ok := results[kind]
		if !ok {
			continue
		}

		switch kind {
		case domain.StepKindDocumentAnalysis:
			b.WriteString("DOCUMENT AGENT RESULTS:\n")
			fmt.Fprintf(&b, "- Model: %s\n", result.Model)
			fmt.Fprintf(&b, "- Document Type: %s\n", result.DocumentType)
			fmt.Fprintf(&b, "- Confidence: %.0f%%\n", result.Confidence*100)
			fmt.Fprintf(&b, "- Analysis:\n%s\n\n", result.Analysis)

		case domain.StepKindInformationLookup:
			b.WriteString("LOOKUP AGENT RESULTS:\n")
			fmt.Fprintf(&b, "- Model: %s\n", result.Model)
			fmt.Fprintf(&b, "%s\n\n", result.Response)

		case domain.StepKindKnowledgeRetrieval:
			b.WriteString("RETRIEVAL AGENT RESULTS:\n")
			fmt.Fprintf(&b, "- Model: %s\n", result.Model)
			fmt.Fprintf(&b, "- Vector Search Results: %d\n", result.ResultCount)
			fmt.Fprintf(&b, "- Collections Searched: %s\n", strings.Join(result.Collections, ", "))
			fmt.Fprintf(&b, "\nResponse:\n%s\n\n", result.Response)
		}
	}

	b.WriteString("CONCLUSION:\n")
	fmt.Fprintf(&b, "All %d planned steps completed successfully.\n", len(plan.Steps))

	return b.String()
}

// joinKinds renders the participating kinds as their agent labels
func joinKinds(kinds []domain.StepKind) string {
	labels := make([]string, len(kinds))
	for i, kind := range kinds {
		labels[i] = kind.Label()
	}
	return strings.Join(labels, ", ")
}
