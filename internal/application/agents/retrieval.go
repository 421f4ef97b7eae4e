package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ebarrios-ai/trivium/internal/application/progress"
	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"go.uber.org/zap"
)

// maxRetrievalHits caps how many ranked hits feed the generation prompt.
const maxRetrievalHits = 5

// RetrievalAgent answers the query with retrieval-augmented generation over
// the configured knowledge collections.
type RetrievalAgent struct {
	llm      ports.LLMClient
	cache    ports.Cache
	vector   ports.VectorStore
	metrics  ports.MetricsCollector
	reporter *progress.Reporter
	logger   *zap.Logger

	model             string
	embeddingModel    string
	prompt            string
	defaultCollection string
	searchLimit       int
	cacheTTL          time.Duration
}

// Kind returns the step kind this executor handles
func (a *RetrievalAgent) Kind() domain.StepKind {
	return domain.StepKindKnowledgeRetrieval
}

// Execute embeds the query, searches the target collections, and generates a
// response grounded in the ranked hits plus any context text contributed by
// an earlier document analysis step.
func (a *RetrievalAgent) Execute(ctx context.Context, query string, stepCtx domain.RequestContext) (*domain.StepResult, error) {
	collections := stepCtx.Collections
	if len(collections) == 0 {
		collections = []string{a.defaultCollection}
	}

	cacheKey := "rag:" + query + ":" + strings.Join(collections, ":")

	var cached domain.StepResult
	if hit, err := a.cache.Get(ctx, cacheKey, &cached); err != nil {
		a.logger.Warn("retrieval cache read failed", zap.Error(err))
	} else if hit {
		a.reporter.Report(ctx, a.Kind().Label(), "Returning cached retrieval result.", false)
		return &cached, nil
	}

	embedding, err := a.llm.Embed(ctx, query, a.embeddingModel)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	var hits []ports.VectorHit
	for _, collection := range collections {
		collectionHits, err := a.vector.Search(ctx, collection, embedding, a.searchLimit)
		if err != nil {
			// A missing or unreadable collection degrades the answer, it
			// does not fail the step
			a.logger.Warn("vector search failed",
				zap.String("collection", collection),
				zap.Error(err))
			continue
		}
		hits = append(hits, collectionHits...)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > maxRetrievalHits {
		hits = hits[:maxRetrievalHits]
	}

	vectorContext := "No similar documents found in vector database."
	if len(hits) > 0 {
		sections := make([]string, len(hits))
		for i, hit := range hits {
			sections[i] = fmt.Sprintf("[Collection: %s, Score: %.3f]\n%s", hit.Collection, hit.Score, hit.Payload)
		}
		vectorContext = strings.Join(sections, "\n\n")
	}

	prompt := fmt.Sprintf(`Using the following information sources, provide a comprehensive response:

Vector Search Results (%d documents from %d collections):
%s

User Query: %s
Additional Context: %s

Provide a clear, helpful response that combines all available information.`,
		len(hits), len(collections), vectorContext, query, stepCtx.Text)

	start := time.Now()
	response, err := a.llm.Generate(ctx, &ports.GenerateRequest{
		Prompt:       prompt,
		SystemPrompt: a.prompt,
		Model:        a.model,
	})
	elapsed := time.Since(start)
	a.metrics.RecordLLMCall(a.model, elapsed)

	if err != nil {
		return nil, fmt.Errorf("knowledge retrieval failed: %w", err)
	}

	result := &domain.StepResult{
		Kind:        domain.StepKindKnowledgeRetrieval,
		Response:    response,
		ResultCount: len(hits),
		Collections: collections,
		Model:       a.model,
		Elapsed:     elapsed,
	}

	if err := a.cache.Set(ctx, cacheKey, result, a.cacheTTL); err != nil {
		a.logger.Warn("retrieval cache write failed", zap.Error(err))
	}

	return result, nil
}
