package agents

import (
	"time"

	"github.com/ebarrios-ai/trivium/internal/application/progress"
	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"go.uber.org/zap"
)

// ModelSet assigns an inference model to each agent kind.
type ModelSet struct {
	Document  string
	Lookup    string
	Retrieval string
	Embedding string
}

// PromptSet assigns a system prompt to each agent kind.
type PromptSet struct {
	Document  string
	Lookup    string
	Retrieval string
}

// DefaultPrompts returns the built-in system prompts, used when no runtime
// overrides are stored.
func DefaultPrompts() PromptSet {
	return PromptSet{
		Document:  "You are a document analysis agent. Extract and structure information from documents accurately.",
		Lookup:    "You are an information gathering agent. Synthesize research results into clear, accurate summaries.",
		Retrieval: "You are a retrieval-augmented generation agent. Combine vector search results and knowledge base information to provide accurate, contextual responses.",
	}
}

// Factory builds per-request executor sets. The executors themselves are
// cheap, stateless wrappers around the shared adapters; what varies per
// request is the progress reporter carrying the caller's client id, plus
// any runtime model or prompt overrides.
type Factory struct {
	llm     ports.LLMClient
	cache   ports.Cache
	vector  ports.VectorStore
	fetcher ports.ContentFetcher
	metrics ports.MetricsCollector
	logger  *zap.Logger

	models            ModelSet
	prompts           PromptSet
	defaultCollection string
	searchLimit       int
	cacheTTL          time.Duration
}

// FactoryConfig holds factory construction parameters
type FactoryConfig struct {
	LLM     ports.LLMClient
	Cache   ports.Cache
	Vector  ports.VectorStore
	Fetcher ports.ContentFetcher
	Metrics ports.MetricsCollector
	Logger  *zap.Logger

	Models            ModelSet
	Prompts           PromptSet
	DefaultCollection string
	SearchLimit       int
	CacheTTL          time.Duration
}

// NewFactory creates a new executor factory
func NewFactory(cfg FactoryConfig) *Factory {
	searchLimit := cfg.SearchLimit
	if searchLimit <= 0 {
		searchLimit = 3
	}

	return &Factory{
		llm:               cfg.LLM,
		cache:             cfg.Cache,
		vector:            cfg.Vector,
		fetcher:           cfg.Fetcher,
		metrics:           cfg.Metrics,
		logger:            cfg.Logger,
		models:            cfg.Models,
		prompts:           cfg.Prompts,
		defaultCollection: cfg.DefaultCollection,
		searchLimit:       searchLimit,
		cacheTTL:          cfg.CacheTTL,
	}
}

// Models returns the configured default model set.
func (f *Factory) Models() ModelSet { return f.models }

// Prompts returns the configured default prompt set.
func (f *Factory) Prompts() PromptSet { return f.prompts }

// Executors builds the full executor set for one request with the default
// models and prompts.
func (f *Factory) Executors(reporter *progress.Reporter) map[domain.StepKind]ports.StepExecutor {
	return f.ExecutorsWith(reporter, f.models, f.prompts)
}

// ExecutorsWith builds the executor set with explicit models and prompts,
// used when runtime overrides are stored.
func (f *Factory) ExecutorsWith(reporter *progress.Reporter, models ModelSet, prompts PromptSet) map[domain.StepKind]ports.StepExecutor {
	return map[domain.StepKind]ports.StepExecutor{
		domain.StepKindDocumentAnalysis: &DocumentAgent{
			llm:      f.llm,
			fetcher:  f.fetcher,
			metrics:  f.metrics,
			reporter: reporter,
			logger:   f.logger,
			model:    models.Document,
			prompt:   prompts.Document,
		},
		domain.StepKindInformationLookup: &LookupAgent{
			llm:      f.llm,
			cache:    f.cache,
			metrics:  f.metrics,
			reporter: reporter,
			logger:   f.logger,
			model:    models.Lookup,
			prompt:   prompts.Lookup,
			cacheTTL: f.cacheTTL,
		},
		domain.StepKindKnowledgeRetrieval: &RetrievalAgent{
			llm:               f.llm,
			cache:             f.cache,
			vector:            f.vector,
			metrics:           f.metrics,
			reporter:          reporter,
			logger:            f.logger,
			model:             models.Retrieval,
			embeddingModel:    models.Embedding,
			prompt:            prompts.Retrieval,
			defaultCollection: f.defaultCollection,
			searchLimit:       f.searchLimit,
			cacheTTL:          f.cacheTTL,
		},
	}
}
