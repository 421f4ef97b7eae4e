package domain

import "time"

// StepKind identifies one of the specialized agents that can appear in a plan.
type StepKind string

const (
	StepKindDocumentAnalysis   StepKind = "document_analysis"
	StepKindInformationLookup  StepKind = "information_lookup"
	StepKindKnowledgeRetrieval StepKind = "knowledge_retrieval"
)

// KindOrder is the fixed priority order in which step kinds are planned,
// executed (dependencies permitting) and reported.
var KindOrder = []StepKind{
	StepKindDocumentAnalysis,
	StepKindInformationLookup,
	StepKindKnowledgeRetrieval,
}

// Label returns the human-readable agent name used in progress events and reports.
func (k StepKind) Label() string {
	switch k {
	case StepKindDocumentAnalysis:
		return "Document Agent"
	case StepKindInformationLookup:
		return "Lookup Agent"
	case StepKindKnowledgeRetrieval:
		return "Retrieval Agent"
	}
	return string(k)
}

// ExecutionMode is a scheduling hint; the scheduler always re-derives true
// parallelism from step dependencies.
type ExecutionMode string

const (
	ExecutionModeSequential ExecutionMode = "sequential"
	ExecutionModeParallel   ExecutionMode = "parallel"
)

// RequestContext carries optional side-context supplied with a request.
type RequestContext struct {
	Text        string   `json:"text,omitempty"`
	Images      []string `json:"images,omitempty"` // base64-encoded payloads
	Collections []string `json:"collections,omitempty"`
	URLs        []string `json:"urls,omitempty"`
}

// Request is a user request. Immutable once submitted.
type Request struct {
	Query   string         `json:"query"`
	Context RequestContext `json:"context,omitempty"`
}

// Analysis is the planner's pure derivation of which step kinds a request needs.
type Analysis struct {
	NeedsDocumentAnalysis   bool   `json:"needs_document_analysis"`
	NeedsInformationLookup  bool   `json:"needs_information_lookup"`
	NeedsKnowledgeRetrieval bool   `json:"needs_knowledge_retrieval"`
	Complexity              int    `json:"complexity"`
	Summary                 string `json:"summary"`
}

// Needs reports whether the analysis marked the given kind as required.
func (a Analysis) Needs(kind StepKind) bool {
	switch kind {
	case StepKindDocumentAnalysis:
		return a.NeedsDocumentAnalysis
	case StepKindInformationLookup:
		return a.NeedsInformationLookup
	case StepKindKnowledgeRetrieval:
		return a.NeedsKnowledgeRetrieval
	}
	return false
}

// PlanStep is one unit of work in an execution plan.
type PlanStep struct {
	ID          int      `json:"id"`
	Kind        StepKind `json:"kind"`
	Description string   `json:"description"`
	DependsOn   []int    `json:"depends_on,omitempty"`
	Rationale   string   `json:"rationale"`
}

// ExecutionPlan is a small dependency graph of steps derived from a request.
type ExecutionPlan struct {
	Steps         []PlanStep    `json:"steps"`
	Kinds         []StepKind    `json:"kinds"`
	Mode          ExecutionMode `json:"mode"`
	EstimatedCost time.Duration `json:"estimated_cost"`
}

// Step returns the plan step with the given id, or nil.
func (p *ExecutionPlan) Step(id int) *PlanStep {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i]
		}
	}
	return nil
}

// StepResult is the structured output of one executed step. The populated
// fields depend on the kind; Model and Elapsed are always set.
type StepResult struct {
	Kind StepKind `json:"kind"`

	// DocumentAnalysis
	Text         string  `json:"text,omitempty"`
	Analysis     string  `json:"analysis,omitempty"`
	DocumentType string  `json:"document_type,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`

	// InformationLookup / KnowledgeRetrieval
	Response    string `json:"response,omitempty"`
	ResultCount int    `json:"result_count,omitempty"`

	// KnowledgeRetrieval
	Collections []string `json:"collections,omitempty"`

	Model   string        `json:"model"`
	Elapsed time.Duration `json:"elapsed"`
}

// ExecutionStatus is the terminal status of an execution.
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailure ExecutionStatus = "failure"
)

// ExecutionOutcome is the immutable record of one completed execution.
type ExecutionOutcome struct {
	Request  Request                 `json:"request"`
	Analysis Analysis                `json:"analysis"`
	Plan     *ExecutionPlan          `json:"plan"`
	Results  map[StepKind]StepResult `json:"results"`
	Report   string                  `json:"report"`
	Duration time.Duration           `json:"duration"`
	Status   ExecutionStatus         `json:"status"`
	Error    string                  `json:"error,omitempty"`
}

// Session is the persisted history record of an execution.
type Session struct {
	ID        string          `json:"id"`
	Query     string          `json:"query"`
	Context   string          `json:"context,omitempty"`
	Report    string          `json:"report"`
	Plan      *ExecutionPlan  `json:"plan"`
	Status    ExecutionStatus `json:"status"`
	Duration  time.Duration   `json:"duration"`
	Timestamp time.Time       `json:"timestamp"`
	Model     string          `json:"model"`
}
