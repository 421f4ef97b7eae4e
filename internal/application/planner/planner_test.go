package planner

import (
	"reflect"
	"testing"

	"github.com/ebarrios-ai/trivium/pkg/domain"
)

func TestAnalyzeKeywordSignals(t *testing.T) {
	p := New()

	tests := []struct {
		name          string
		query         string
		contextText   string
		wantDocument  bool
		wantLookup    bool
		wantRetrieval bool
		wantComplexity int
	}{
		{
			name:           "plain question needs only retrieval",
			query:          "what is the capital of France?",
			wantRetrieval:  true,
			wantComplexity: 1,
		},
		{
			name:           "document keyword in query",
			query:          "analyze this document for me",
			wantDocument:   true,
			wantRetrieval:  true,
			wantComplexity: 2,
		},
		{
			name:           "lookup keyword in query",
			query:          "search for recent results",
			wantLookup:     true,
			wantRetrieval:  true,
			wantComplexity: 2,
		},
		{
			name:           "document signal in side context only",
			query:          "summarize this",
			contextText:    "attached text to process",
			wantDocument:   true,
			wantRetrieval:  true,
			wantComplexity: 2,
		},
		{
			name:           "all three kinds",
			query:          "extract the totals and find comparable information",
			wantDocument:   true,
			wantLookup:     true,
			wantRetrieval:  true,
			wantComplexity: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &domain.Request{
				Query:   tt.query,
				Context: domain.RequestContext{Text: tt.contextText},
			}
			analysis := p.Analyze(req)

			if analysis.NeedsDocumentAnalysis != tt.wantDocument {
				t.Errorf("NeedsDocumentAnalysis = %t, want %t", analysis.NeedsDocumentAnalysis, tt.wantDocument)
			}
			if analysis.NeedsInformationLookup != tt.wantLookup {
				t.Errorf("NeedsInformationLookup = %t, want %t", analysis.NeedsInformationLookup, tt.wantLookup)
			}
			if analysis.NeedsKnowledgeRetrieval != tt.wantRetrieval {
				t.Errorf("NeedsKnowledgeRetrieval = %t, want %t", analysis.NeedsKnowledgeRetrieval, tt.wantRetrieval)
			}
			if analysis.Complexity != tt.wantComplexity {
				t.Errorf("Complexity = %d, want %d", analysis.Complexity, tt.wantComplexity)
			}
		})
	}
}

func TestAnalyzeRetrievalAlwaysNeeded(t *testing.T) {
	p := New()

	for _, query := range []string{"", "hello", "tell me a joke", "weather tomorrow"} {
		analysis := p.Analyze(&domain.Request{Query: query})
		if !analysis.NeedsKnowledgeRetrieval {
			t.Errorf("query %q: NeedsKnowledgeRetrieval = false, want true", query)
		}
		if analysis.Complexity < 1 {
			t.Errorf("query %q: Complexity = %d, want at least 1", query, analysis.Complexity)
		}
	}
}

func TestBuildPlanDeterministic(t *testing.T) {
	p := New()
	req := &domain.Request{Query: "read the document and search for related information"}

	first := p.BuildPlan(p.Analyze(req))
	second := p.BuildPlan(p.Analyze(req))

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("plans differ for identical request:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestBuildPlanRetrievalDependsOnDocument(t *testing.T) {
	p := New()

	plan := p.BuildPlan(p.Analyze(&domain.Request{Query: "extract data from this document"}))

	var documentID int
	var retrieval *domain.PlanStep
	for i := range plan.Steps {
		switch plan.Steps[i].Kind {
		case domain.StepKindDocumentAnalysis:
			documentID = plan.Steps[i].ID
		case domain.StepKindKnowledgeRetrieval:
			retrieval = &plan.Steps[i]
		}
	}

	if retrieval == nil {
		t.Fatal("plan has no knowledge retrieval step")
	}
	if len(retrieval.DependsOn) != 1 || retrieval.DependsOn[0] != documentID {
		t.Errorf("retrieval DependsOn = %v, want [%d]", retrieval.DependsOn, documentID)
	}
}

func TestBuildPlanRetrievalIndependentWithoutDocument(t *testing.T) {
	p := New()

	plan := p.BuildPlan(p.Analyze(&domain.Request{Query: "search for today's headlines"}))

	for _, step := range plan.Steps {
		if step.Kind == domain.StepKindKnowledgeRetrieval && len(step.DependsOn) != 0 {
			t.Errorf("retrieval DependsOn = %v, want none", step.DependsOn)
		}
	}
}

func TestBuildPlanMode(t *testing.T) {
	p := New()

	single := p.BuildPlan(p.Analyze(&domain.Request{Query: "what time is it"}))
	if single.Mode != domain.ExecutionModeSequential {
		t.Errorf("single-step plan mode = %s, want %s", single.Mode, domain.ExecutionModeSequential)
	}

	multi := p.BuildPlan(p.Analyze(&domain.Request{Query: "search and research this topic and scan the document"}))
	if multi.Mode != domain.ExecutionModeParallel {
		t.Errorf("multi-step plan mode = %s, want %s", multi.Mode, domain.ExecutionModeParallel)
	}
}

func TestBuildPlanStepOrderAndIDs(t *testing.T) {
	p := New()

	plan := p.BuildPlan(p.Analyze(&domain.Request{
		Query: "read this document and search for more information",
	}))

	wantKinds := []domain.StepKind{
		domain.StepKindDocumentAnalysis,
		domain.StepKindInformationLookup,
		domain.StepKindKnowledgeRetrieval,
	}
	if !reflect.DeepEqual(plan.Kinds, wantKinds) {
		t.Fatalf("plan kinds = %v, want %v", plan.Kinds, wantKinds)
	}

	for i, step := range plan.Steps {
		if step.ID != i+1 {
			t.Errorf("step %d has id %d, want %d", i, step.ID, i+1)
		}
		if step.Kind != wantKinds[i] {
			t.Errorf("step %d has kind %s, want %s", i, step.Kind, wantKinds[i])
		}
	}
}
