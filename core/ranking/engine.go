package ranking

import (
	"fmt"
	"sort"
	"time"

	"github.com/siherrmann/recall/helper"
	"github.com/siherrmann/recall/model"
)

// Engine scores candidate sets according to the selected strategy.
// Candidates are internally produced, so a malformed set (wrong source for
// the strategy) is a programmer error and surfaces as one.
type Engine struct {
	config     *model.EngineConfig
	now        func() time.Time
	strategies map[model.Strategy]rankFunc
}

type rankFunc func(request *rankRequest) []*model.RankedResult

// rankRequest carries one ranking call's inputs
type rankRequest struct {
	merged        []*mergedCandidate
	query         *model.Query
	queryEntities []string
}

// mergedCandidate pairs the per-source views of one content id
type mergedCandidate struct {
	id     string
	vector *model.VectorCandidate
	graph  *model.GraphCandidate
}

// NewEngine creates a ranking engine with the given configuration
func NewEngine(config *model.EngineConfig) *Engine {
	engine := &Engine{
		config: config,
		now:    time.Now,
	}
	engine.strategies = map[model.Strategy]rankFunc{
		model.StrategyVector:   engine.rankVector,
		model.StrategyGraph:    engine.rankGraph,
		model.StrategyHybrid:   engine.rankHybrid,
		model.StrategyEnsemble: engine.rankEnsemble,
	}
	return engine
}

// Rank merges candidates by id, scores them under the query's strategy and
// returns them ordered by descending unified score (ties broken by most
// recent timestamp, then lexicographic id), truncated to MaxResults.
func (e *Engine) Rank(candidates []model.Candidate, query *model.Query, queryEntities []string) ([]*model.RankedResult, error) {
	rank, ok := e.strategies[query.Strategy]
	if !ok {
		return nil, helper.NewError("rank", fmt.Errorf("unknown strategy %q", query.Strategy))
	}

	merged, err := mergeByID(candidates)
	if err != nil {
		return nil, helper.NewError("rank", err)
	}

	results := rank(&rankRequest{
		merged:        merged,
		query:         query,
		queryEntities: queryEntities,
	})

	e.sortResults(results)
	if len(results) > query.MaxResults {
		results = results[:query.MaxResults]
	}

	return results, nil
}

// mergeByID folds candidates into one merged entry per id, preserving first
// encounter order. The same id surfaced by both sources merges; distinct ids
// stay distinct even if their content happens to match.
func mergeByID(candidates []model.Candidate) ([]*mergedCandidate, error) {
	byID := make(map[string]*mergedCandidate)
	var order []*mergedCandidate

	for _, candidate := range candidates {
		id := candidate.CandidateID()
		if id == "" {
			return nil, fmt.Errorf("candidate with empty id from source %s", candidate.Source())
		}

		entry, exists := byID[id]
		if !exists {
			entry = &mergedCandidate{id: id}
			byID[id] = entry
			order = append(order, entry)
		}

		switch c := candidate.(type) {
		case *model.VectorCandidate:
			entry.vector = c
		case *model.GraphCandidate:
			entry.graph = c
		default:
			return nil, fmt.Errorf("unsupported candidate type %T", candidate)
		}
	}

	return order, nil
}

func (m *mergedCandidate) content() string {
	if m.vector != nil {
		return m.vector.Content
	}
	return m.graph.Content
}

func (m *mergedCandidate) metadata() model.Metadata {
	if m.vector != nil && m.vector.Metadata != nil {
		return m.vector.Metadata
	}
	if m.graph != nil {
		return m.graph.Metadata
	}
	return nil
}

func (m *mergedCandidate) matchedEntities() []string {
	if m.graph != nil {
		return m.graph.MatchedEntities()
	}
	return m.metadata().Entities()
}

// rankVector scores pure vector results: the cosine similarity is already in
// [0, 1] and becomes the unified score directly.
func (e *Engine) rankVector(request *rankRequest) []*model.RankedResult {
	results := make([]*model.RankedResult, 0, len(request.merged))
	for _, entry := range request.merged {
		if entry.vector == nil {
			continue
		}
		similarity := Clamp01(entry.vector.Similarity)
		factor := model.RankingFactor{
			Name:            model.FactorSemanticSimilarity,
			RawValue:        entry.vector.Similarity,
			NormalizedScore: similarity,
			Weight:          1,
			Explanation:     fmt.Sprintf("cosine similarity %.3f to the query embedding", entry.vector.Similarity),
		}
		results = append(results, &model.RankedResult{
			ID:             entry.id,
			Content:        entry.content(),
			Source:         model.SourceVector,
			UnifiedScore:   similarity,
			RankingFactors: []model.RankingFactor{factor},
			Metadata:       entry.metadata(),
		})
	}
	return results
}

// rankGraph scores pure graph results by squashing the unbounded raw score
func (e *Engine) rankGraph(request *rankRequest) []*model.RankedResult {
	results := make([]*model.RankedResult, 0, len(request.merged))
	for _, entry := range request.merged {
		if entry.graph == nil {
			continue
		}
		normalized := NormalizeGraphScore(entry.graph.Score)
		factor := model.RankingFactor{
			Name:            model.FactorStructuralRelevance,
			RawValue:        entry.graph.Score,
			NormalizedScore: normalized,
			Weight:          1,
			Explanation:     fmt.Sprintf("entity traversal score %.3f over %d matched entities", entry.graph.Score, len(entry.graph.MatchedEntities())),
		}
		results = append(results, &model.RankedResult{
			ID:             entry.id,
			Content:        entry.content(),
			Source:         model.SourceGraph,
			UnifiedScore:   normalized,
			RankingFactors: []model.RankingFactor{factor},
			Metadata:       entry.metadata(),
		})
	}
	return results
}

// rankHybrid combines both sources with the resolved weights. An id surfaced
// by both gets the sum of its weighted contributions, rewarding convergent
// evidence. Weights are clamped but not renormalized; the final score is
// clamped so the [0, 1] bound holds even for aggressive weight choices.
func (e *Engine) rankHybrid(request *rankRequest) []*model.RankedResult {
	vectorWeight, graphWeight := e.config.ResolveHybridWeights(request.query)

	results := make([]*model.RankedResult, 0, len(request.merged))
	for _, entry := range request.merged {
		var factors []model.RankingFactor
		score := 0.0

		if entry.vector != nil {
			similarity := Clamp01(entry.vector.Similarity)
			score += vectorWeight * similarity
			factors = append(factors, model.RankingFactor{
				Name:            model.FactorSemanticSimilarity,
				RawValue:        entry.vector.Similarity,
				NormalizedScore: similarity,
				Weight:          vectorWeight,
				Explanation:     fmt.Sprintf("cosine similarity %.3f weighted %.2f", entry.vector.Similarity, vectorWeight),
			})
		}
		if entry.graph != nil {
			normalized := NormalizeGraphScore(entry.graph.Score)
			score += graphWeight * normalized
			factors = append(factors, model.RankingFactor{
				Name:            model.FactorStructuralRelevance,
				RawValue:        entry.graph.Score,
				NormalizedScore: normalized,
				Weight:          graphWeight,
				Explanation:     fmt.Sprintf("entity traversal score %.3f weighted %.2f", entry.graph.Score, graphWeight),
			})
		}

		source := model.SourceVector
		if entry.vector != nil && entry.graph != nil {
			source = model.SourceHybrid
		} else if entry.graph != nil {
			source = model.SourceGraph
		}

		results = append(results, &model.RankedResult{
			ID:             entry.id,
			Content:        entry.content(),
			Source:         source,
			UnifiedScore:   Clamp01(score),
			RankingFactors: factors,
			Metadata:       entry.metadata(),
		})
	}
	return results
}

// rankEnsemble computes all four ranking factors per candidate. This is the
// most discriminating strategy and the recommended production default.
func (e *Engine) rankEnsemble(request *rankRequest) []*model.RankedResult {
	weights := e.config.Ensemble
	now := e.now()

	results := make([]*model.RankedResult, 0, len(request.merged))
	for _, entry := range request.merged {
		semantic := 0.0
		semanticRaw := 0.0
		if entry.vector != nil {
			semanticRaw = entry.vector.Similarity
			semantic = Clamp01(semanticRaw)
		}

		structural := 0.0
		structuralRaw := 0.0
		if entry.graph != nil {
			structuralRaw = entry.graph.Score
			structural = NormalizeGraphScore(structuralRaw)
		}

		recency := RecencyScore(entry.metadata(), now, e.config.RecencyHalfLife)
		overlap := EntityOverlap(request.queryEntities, entry.matchedEntities())

		factors := []model.RankingFactor{
			{
				Name:            model.FactorSemanticSimilarity,
				RawValue:        semanticRaw,
				NormalizedScore: semantic,
				Weight:          weights.Semantic,
				Explanation:     fmt.Sprintf("cosine similarity %.3f (0 when not surfaced by vector search)", semanticRaw),
			},
			{
				Name:            model.FactorGraphCentrality,
				RawValue:        structuralRaw,
				NormalizedScore: structural,
				Weight:          weights.Structural,
				Explanation:     fmt.Sprintf("entity traversal score %.3f (0 when not surfaced by the graph)", structuralRaw),
			},
			{
				Name:            model.FactorRecency,
				RawValue:        recency,
				NormalizedScore: recency,
				Weight:          weights.Recency,
				Explanation:     fmt.Sprintf("time decay with %s half-life (0.5 neutral without timestamp)", e.config.RecencyHalfLife),
			},
			{
				Name:            model.FactorEntityOverlap,
				RawValue:        overlap,
				NormalizedScore: overlap,
				Weight:          weights.EntityOverlap,
				Explanation:     fmt.Sprintf("%.0f%% of query entities appear in the candidate", overlap*100),
			},
		}

		score := 0.0
		for _, factor := range factors {
			score += factor.Weight * factor.NormalizedScore
		}

		source := model.SourceVector
		if entry.vector != nil && entry.graph != nil {
			source = model.SourceHybrid
		} else if entry.graph != nil {
			source = model.SourceGraph
		}

		results = append(results, &model.RankedResult{
			ID:             entry.id,
			Content:        entry.content(),
			Source:         source,
			UnifiedScore:   Clamp01(score),
			RankingFactors: factors,
			Metadata:       entry.metadata(),
		})
	}
	return results
}

// sortResults orders by unified score descending, most recent timestamp,
// then id ascending, so identical inputs always produce identical output
func (e *Engine) sortResults(results []*model.RankedResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].UnifiedScore != results[j].UnifiedScore {
			return results[i].UnifiedScore > results[j].UnifiedScore
		}
		tsI, okI := results[i].Metadata.Timestamp()
		tsJ, okJ := results[j].Metadata.Timestamp()
		if okI && okJ && !tsI.Equal(tsJ) {
			return tsI.After(tsJ)
		}
		if okI != okJ {
			return okI
		}
		return results[i].ID < results[j].ID
	})
}
