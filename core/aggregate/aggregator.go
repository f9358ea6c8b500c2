// Package aggregate fans a query out to the retrieval sources, ranks the
// merged candidates and assembles the final response. Sources fail
// independently; a search degrades before it dies.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/recall/core/ranking"
	"github.com/siherrmann/recall/core/retrieval"
	"github.com/siherrmann/recall/helper"
	"github.com/siherrmann/recall/metrics"
	"github.com/siherrmann/recall/model"
)

var (
	// ErrAggregationFailed means every source relevant to the strategy failed
	ErrAggregationFailed = errors.New("all retrieval sources failed")
	// ErrAggregationTimeout means the caller's deadline passed with nothing usable
	ErrAggregationTimeout = errors.New("aggregation timed out")
)

// RelatedFinder expands a result set through shared entities
type RelatedFinder interface {
	RelatedByEntities(ctx context.Context, entities []string, exclude map[string]bool, limit int, filters model.Filters) ([]*model.GraphCandidate, error)
}

// Aggregator coordinates the retrievers and the ranking engine
type Aggregator struct {
	vector    retrieval.Retriever
	graph     retrieval.Retriever
	related   RelatedFinder
	extractor retrieval.ExtractFunc
	engine    *ranking.Engine
	config    *model.EngineConfig
	logger    *slog.Logger
}

// NewAggregator creates an aggregator over the given retrievers. The related
// finder and extractor may be nil when the graph side is not wired; related
// expansion and the entity overlap factor then contribute nothing.
func NewAggregator(vector retrieval.Retriever, graph retrieval.Retriever, related RelatedFinder, extractor retrieval.ExtractFunc, engine *ranking.Engine, config *model.EngineConfig, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		vector:    vector,
		graph:     graph,
		related:   related,
		extractor: extractor,
		engine:    engine,
		config:    config,
		logger:    logger,
	}
}

// sourceResult is one retriever's contribution to a search
type sourceResult struct {
	source     model.SourceType
	candidates []model.Candidate
	err        error
}

// Search validates the query, dispatches it to every source the strategy
// needs, ranks whatever came back and optionally expands with related items.
// Individual source failures degrade the response and are recorded in the
// query metadata; only the loss of every relevant source is an error.
func (a *Aggregator) Search(ctx context.Context, query *model.Query) (*model.AggregatedContext, error) {
	started := time.Now()

	if query != nil && query.Strategy == "" {
		query.Strategy = a.config.DefaultStrategy
	}
	if err := query.Validate(a.config); err != nil {
		return nil, helper.NewError("search", fmt.Errorf("%w: %v", retrieval.ErrInvalidQuery, err))
	}

	retrievers := a.relevantRetrievers(query.Strategy)
	results := a.fanOut(ctx, query, retrievers)

	var candidates []model.Candidate
	var warnings []string
	failed := 0
	for _, result := range results {
		if result.err != nil {
			failed++
			reason := "unavailable"
			if errors.Is(result.err, retrieval.ErrTimeout) {
				reason = "timeout"
			}
			metrics.RetrieverFailures.WithLabelValues(string(result.source), reason).Inc()
			warnings = append(warnings, fmt.Sprintf("%s source %s: %v", result.source, reason, result.err))
			a.logger.Warn("retrieval source failed", "source", result.source, "reason", reason, "error", result.err)
			continue
		}
		candidates = append(candidates, result.candidates...)
	}

	if failed == len(results) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, helper.NewError("search", ErrAggregationTimeout)
		}
		return nil, helper.NewError("search", ErrAggregationFailed)
	}

	queryEntities := a.queryEntities(query, &warnings)

	ranked, err := a.engine.Rank(candidates, query, queryEntities)
	if err != nil {
		return nil, helper.NewError("search", err)
	}

	if query.IncludeRelated && a.related != nil {
		expanded, expandWarnings := a.expand(ctx, query, ranked)
		ranked = expanded
		warnings = append(warnings, expandWarnings...)
	}

	vectorWeight, graphWeight := a.config.ResolveHybridWeights(query)
	degraded := len(warnings) > 0

	elapsed := time.Since(started)
	metrics.SearchDuration.WithLabelValues(string(query.Strategy)).Observe(elapsed.Seconds())
	metrics.ResultsReturned.Observe(float64(len(ranked)))
	if degraded {
		metrics.DegradedResponses.Inc()
	}

	return &model.AggregatedContext{
		Results:      ranked,
		TotalResults: len(ranked),
		StrategyUsed: query.Strategy,
		QueryMetadata: model.QueryMetadata{
			RequestID:      uuid.New(),
			Text:           query.Text,
			Strategy:       query.Strategy,
			MaxResults:     query.MaxResults,
			VectorWeight:   vectorWeight,
			GraphWeight:    graphWeight,
			IncludeRelated: query.IncludeRelated,
			Degraded:       degraded,
			Warnings:       warnings,
		},
		ProcessingTimeMs: elapsed.Milliseconds(),
	}, nil
}

// relevantRetrievers selects the sources the strategy actually consults
func (a *Aggregator) relevantRetrievers(strategy model.Strategy) []retrieval.Retriever {
	var retrievers []retrieval.Retriever
	if strategy.UsesVector() && a.vector != nil {
		retrievers = append(retrievers, a.vector)
	}
	if strategy.UsesGraph() && a.graph != nil {
		retrievers = append(retrievers, a.graph)
	}
	return retrievers
}

// fanOut queries every retriever concurrently, each under its own timeout so
// one slow backend cannot stall the others
func (a *Aggregator) fanOut(ctx context.Context, query *model.Query, retrievers []retrieval.Retriever) []*sourceResult {
	resultChannel := make(chan *sourceResult, len(retrievers))

	for _, retriever := range retrievers {
		go func(r retrieval.Retriever) {
			sourceCtx, cancel := context.WithTimeout(ctx, a.config.RetrieverTimeout)
			defer cancel()

			candidates, err := r.Retrieve(sourceCtx, query)
			resultChannel <- &sourceResult{
				source:     r.Source(),
				candidates: candidates,
				err:        err,
			}
		}(retriever)
	}

	results := make([]*sourceResult, 0, len(retrievers))
	for range retrievers {
		results = append(results, <-resultChannel)
	}
	return results
}

// queryEntities extracts named entities from the query text for the entity
// overlap factor. Extraction failure is not worth failing the search over.
func (a *Aggregator) queryEntities(query *model.Query, warnings *[]string) []string {
	if query.Strategy != model.StrategyEnsemble || a.extractor == nil {
		return nil
	}

	entities, err := a.extractor(query.Text)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("entity extraction failed, entity overlap scored as zero: %v", err))
		a.logger.Warn("query entity extraction failed", "error", err)
		return nil
	}
	return model.EntityNames(entities)
}
