package ports

import (
	"context"
	"errors"
	"time"

	"github.com/ebarrios-ai/trivium/pkg/domain"
)

// ErrNotFound is returned by storage adapters when a key has no value.
var ErrNotFound = errors.New("not found")

// MessageHandler consumes one raw message from a bus channel.
type MessageHandler func(ctx context.Context, channel string, payload []byte)

// ProgressBus moves progress and result events from execution context to
// delivery context. Publish is fire-and-forget: it never blocks on delivery
// and succeeds whether or not any subscriber exists.
type ProgressBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error

	// PSubscribe delivers every message on channels matching any of the
	// patterns to handler, in publish order, until ctx is cancelled. All
	// patterns share one subscription, so ordering holds across them.
	PSubscribe(ctx context.Context, handler MessageHandler, patterns ...string) error

	Close() error
}

// StepExecutor is the uniform contract implemented by the specialized agents.
type StepExecutor interface {
	Kind() domain.StepKind
	Execute(ctx context.Context, query string, stepCtx domain.RequestContext) (*domain.StepResult, error)
}

// GenerateRequest is one call to the inference backend.
type GenerateRequest struct {
	Prompt       string
	SystemPrompt string
	Model        string
	Images       []string // base64-encoded
}

// LLMClient is the inference backend boundary.
type LLMClient interface {
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
	Embed(ctx context.Context, text, model string) ([]float32, error)
}

// VectorHit is one ranked result from the knowledge store.
type VectorHit struct {
	Score      float64
	Payload    string
	Collection string
}

// VectorStore is the vector-similarity search boundary.
type VectorStore interface {
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]VectorHit, error)
}

// FetchedContent is one piece of content pulled from a source URL.
type FetchedContent struct {
	// Type is "text" or "image"
	Type string
	// Content holds the text, or the base64-encoded image payload
	Content string
}

// ContentFetcher pulls document content from source URLs.
type ContentFetcher interface {
	FetchURLs(ctx context.Context, urls []string) ([]FetchedContent, error)
}

// Cache memoizes executor results. Not part of the correctness contract.
type Cache interface {
	// Get unmarshals the cached value into dest and reports whether it existed.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// HistoryStore persists completed executions.
type HistoryStore interface {
	SaveSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	ListSessions(ctx context.Context) ([]*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// MetricsCollector records operational metrics.
type MetricsCollector interface {
	RecordRequestSubmitted(status string)
	RecordRequestCompleted(status string, duration time.Duration)
	RecordStepExecuted(kind, status string, duration time.Duration)
	RecordLLMCall(model string, duration time.Duration)
	RecordEventPublished(namespace string)
	RecordEventDelivered()
	RecordEventDropped()
	SetLiveConnections(count int)
	RecordWorkerPoolStatus(idle, busy, stopped int)
}
