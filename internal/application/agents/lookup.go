package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/ebarrios-ai/trivium/internal/application/progress"
	"github.com/ebarrios-ai/trivium/pkg/domain"
	"github.com/ebarrios-ai/trivium/pkg/ports"
	"go.uber.org/zap"
)

// lookupResultCount is the fixed result count reported for lookups.
const lookupResultCount = 3

// LookupAgent researches the query against the inference backend. Identical
// queries are memoized in the cache.
type LookupAgent struct {
	llm      ports.LLMClient
	cache    ports.Cache
	metrics  ports.MetricsCollector
	reporter *progress.Reporter
	logger   *zap.Logger
	model    string
	prompt   string
	cacheTTL time.Duration
}

// Kind returns the step kind this executor handles
func (a *LookupAgent) Kind() domain.StepKind {
	return domain.StepKindInformationLookup
}

// Execute runs information gathering for the query
func (a *LookupAgent) Execute(ctx context.Context, query string, stepCtx domain.RequestContext) (*domain.StepResult, error) {
	cacheKey := "info:" + query

	var cached domain.StepResult
	if hit, err := a.cache.Get(ctx, cacheKey, &cached); err != nil {
		a.logger.Warn("lookup cache read failed", zap.Error(err))
	} else if hit {
		a.reporter.Report(ctx, a.Kind().Label(), "Returning cached lookup result.", false)
		return &cached, nil
	}

	prompt := fmt.Sprintf(`Research and provide comprehensive information about: %q

Provide:
1. A summary of the topic
2. Key insights and important points
3. Relevant context and background

Format your response clearly and concisely.`, query)

	start := time.Now()
	response, err := a.llm.Generate(ctx, &ports.GenerateRequest{
		Prompt:       prompt,
		SystemPrompt: a.prompt,
		Model:        a.model,
	})
	elapsed := time.Since(start)
	a.metrics.RecordLLMCall(a.model, elapsed)

	if err != nil {
		return nil, fmt.Errorf("information lookup failed: %w", err)
	}

	result := &domain.StepResult{
		Kind:        domain.StepKindInformationLookup,
		Response:    response,
		ResultCount: lookupResultCount,
		Model:       a.model,
		Elapsed:     elapsed,
	}

	if err := a.cache.Set(ctx, cacheKey, result, a.cacheTTL); err != nil {
		a.logger.Warn("lookup cache write failed", zap.Error(err))
	}

	return result, nil
}
