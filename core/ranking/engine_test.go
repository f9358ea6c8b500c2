package ranking

import (
	"testing"
	"time"

	"github.com/siherrmann/recall/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine := NewEngine(model.DefaultEngineConfig())
	engine.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return engine
}

func floatPointer(v float64) *float64 {
	return &v
}

func TestEngine_RankVector(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("Similarity becomes the unified score", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "c1", Content: "first", Similarity: 0.82},
			&model.VectorCandidate{ID: "c2", Content: "second", Similarity: 0.41},
		}
		query := &model.Query{Text: "query", Strategy: model.StrategyVector, MaxResults: 10}

		results, err := engine.Rank(candidates, query, nil)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "c1", results[0].ID)
		assert.InDelta(t, 0.82, results[0].UnifiedScore, 1e-9)
		assert.Equal(t, model.SourceVector, results[0].Source)
		require.Len(t, results[0].RankingFactors, 1)
		assert.Equal(t, model.FactorSemanticSimilarity, results[0].RankingFactors[0].Name)
	})

	t.Run("Out of range similarity clamps into bounds", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "c1", Similarity: 1.3},
			&model.VectorCandidate{ID: "c2", Similarity: -0.2},
		}
		query := &model.Query{Text: "query", Strategy: model.StrategyVector, MaxResults: 10}

		results, err := engine.Rank(candidates, query, nil)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, 1.0, results[0].UnifiedScore)
		assert.Equal(t, 0.0, results[1].UnifiedScore)
	})
}

func TestEngine_RankGraph(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("Raw traversal score is squashed into bounds", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.GraphCandidate{ID: "c1", Content: "two matches", Score: 2.0},
			&model.GraphCandidate{ID: "c2", Content: "one match", Score: 1.0},
		}
		query := &model.Query{Text: "query", Strategy: model.StrategyGraph, MaxResults: 10}

		results, err := engine.Rank(candidates, query, nil)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "c1", results[0].ID)
		assert.InDelta(t, 2.0/3.0, results[0].UnifiedScore, 1e-9)
		assert.InDelta(t, 0.5, results[1].UnifiedScore, 1e-9)
		assert.Equal(t, model.SourceGraph, results[0].Source)
	})
}

func TestEngine_RankHybrid(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("Convergent evidence outranks vector-only", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "c1", Content: "doc", Similarity: 0.8},
			&model.GraphCandidate{ID: "c1", Content: "doc", Score: 1.5},
			&model.VectorCandidate{ID: "c2", Content: "other", Similarity: 0.8},
		}
		query := &model.Query{
			Text:         "query",
			Strategy:     model.StrategyHybrid,
			MaxResults:   10,
			VectorWeight: floatPointer(0.7),
			GraphWeight:  floatPointer(0.3),
		}

		results, err := engine.Rank(candidates, query, nil)

		require.NoError(t, err)
		require.Len(t, results, 2)

		// c1: 0.7*0.8 + 0.3*(1.5/2.5) = 0.74, c2: 0.7*0.8 = 0.56
		assert.Equal(t, "c1", results[0].ID)
		assert.InDelta(t, 0.74, results[0].UnifiedScore, 1e-9)
		assert.Equal(t, model.SourceHybrid, results[0].Source)
		assert.Len(t, results[0].RankingFactors, 2)

		assert.Equal(t, "c2", results[1].ID)
		assert.InDelta(t, 0.56, results[1].UnifiedScore, 1e-9)
		assert.Equal(t, model.SourceVector, results[1].Source)
		assert.Greater(t, results[0].UnifiedScore, results[1].UnifiedScore, "Expected the doubly-surfaced id to rank strictly higher")
	})

	t.Run("Graph-only candidate keeps the graph source", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.GraphCandidate{ID: "c3", Content: "graph only", Score: 1.0},
		}
		query := &model.Query{Text: "query", Strategy: model.StrategyHybrid, MaxResults: 10}

		results, err := engine.Rank(candidates, query, nil)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, model.SourceGraph, results[0].Source)
		assert.InDelta(t, 0.3*0.5, results[0].UnifiedScore, 1e-9)
	})

	t.Run("Score stays bounded for aggressive weights", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "c1", Similarity: 1.0},
			&model.GraphCandidate{ID: "c1", Score: 100},
		}
		query := &model.Query{
			Text:         "query",
			Strategy:     model.StrategyHybrid,
			MaxResults:   10,
			VectorWeight: floatPointer(1.0),
			GraphWeight:  floatPointer(1.0),
		}

		results, err := engine.Rank(candidates, query, nil)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.LessOrEqual(t, results[0].UnifiedScore, 1.0)
	})

	t.Run("Documented ordering scenario", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "c1", Content: "c1", Similarity: 0.9},
			&model.VectorCandidate{ID: "c2", Content: "c2", Similarity: 0.7},
			&model.GraphCandidate{ID: "c1", Content: "c1", Score: 2.0},
			&model.GraphCandidate{ID: "c3", Content: "c3", Score: 1.0},
		}
		query := &model.Query{
			Text:         "query",
			Strategy:     model.StrategyHybrid,
			MaxResults:   5,
			VectorWeight: floatPointer(0.6),
			GraphWeight:  floatPointer(0.4),
		}

		results, err := engine.Rank(candidates, query, nil)

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "c1", results[0].ID)
		assert.Equal(t, model.SourceHybrid, results[0].Source)
		assert.Equal(t, "c2", results[1].ID)
		assert.Equal(t, "c3", results[2].ID)
	})
}

func TestEngine_RankEnsemble(t *testing.T) {
	engine := newTestEngine(t)
	now := engine.now()

	t.Run("All four factors are reported", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "c1", Content: "doc", Similarity: 0.8, Metadata: model.Metadata{"timestamp": now}},
			&model.GraphCandidate{
				ID: "c1", Content: "doc", Score: 1.0,
				Relationships: []model.GraphRelationship{{MatchedEntity: "Alice", Distance: 0}},
			},
		}
		query := &model.Query{Text: "query", Strategy: model.StrategyEnsemble, MaxResults: 10}

		results, err := engine.Rank(candidates, query, []string{"Alice"})

		require.NoError(t, err)
		require.Len(t, results, 1)
		require.Len(t, results[0].RankingFactors, 4)

		// 0.35*0.8 + 0.35*0.5 + 0.2*1.0 + 0.1*1.0 = 0.755
		assert.InDelta(t, 0.755, results[0].UnifiedScore, 1e-9)
		assert.Equal(t, model.SourceHybrid, results[0].Source)

		names := make([]string, 0, 4)
		for _, factor := range results[0].RankingFactors {
			names = append(names, factor.Name)
		}
		assert.ElementsMatch(t, []string{
			model.FactorSemanticSimilarity,
			model.FactorGraphCentrality,
			model.FactorRecency,
			model.FactorEntityOverlap,
		}, names)
	})

	t.Run("Missing timestamp scores neutral recency", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "c1", Similarity: 0.8},
		}
		query := &model.Query{Text: "query", Strategy: model.StrategyEnsemble, MaxResults: 10}

		results, err := engine.Rank(candidates, query, nil)

		require.NoError(t, err)
		require.Len(t, results, 1)
		for _, factor := range results[0].RankingFactors {
			if factor.Name == model.FactorRecency {
				assert.Equal(t, 0.5, factor.NormalizedScore, "Expected missing timestamp to score neutral, not zero")
			}
		}
	})

	t.Run("Recency separates otherwise equal candidates", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "old", Similarity: 0.8, Metadata: model.Metadata{"timestamp": now.Add(-30 * 24 * time.Hour)}},
			&model.VectorCandidate{ID: "new", Similarity: 0.8, Metadata: model.Metadata{"timestamp": now}},
		}
		query := &model.Query{Text: "query", Strategy: model.StrategyEnsemble, MaxResults: 10}

		results, err := engine.Rank(candidates, query, nil)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "new", results[0].ID)
		assert.Equal(t, "old", results[1].ID)
	})
}

func TestEngine_Rank(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("Repeated calls produce identical order", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "b", Similarity: 0.5},
			&model.VectorCandidate{ID: "a", Similarity: 0.5},
			&model.VectorCandidate{ID: "c", Similarity: 0.5},
		}
		query := &model.Query{Text: "query", Strategy: model.StrategyVector, MaxResults: 10}

		first, err := engine.Rank(candidates, query, nil)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			again, err := engine.Rank(candidates, query, nil)
			require.NoError(t, err)
			require.Equal(t, len(first), len(again))
			for j := range first {
				assert.Equal(t, first[j].ID, again[j].ID)
			}
		}

		// equal scores without timestamps fall back to id order
		assert.Equal(t, "a", first[0].ID)
		assert.Equal(t, "b", first[1].ID)
		assert.Equal(t, "c", first[2].ID)
	})

	t.Run("Equal scores prefer the more recent timestamp", func(t *testing.T) {
		now := engine.now()
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "older", Similarity: 0.5, Metadata: model.Metadata{"timestamp": now.Add(-time.Hour)}},
			&model.VectorCandidate{ID: "newer", Similarity: 0.5, Metadata: model.Metadata{"timestamp": now}},
			&model.VectorCandidate{ID: "undated", Similarity: 0.5},
		}
		query := &model.Query{Text: "query", Strategy: model.StrategyVector, MaxResults: 10}

		results, err := engine.Rank(candidates, query, nil)

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "newer", results[0].ID)
		assert.Equal(t, "older", results[1].ID)
		assert.Equal(t, "undated", results[2].ID, "Expected timestamped results to sort before undated ones")
	})

	t.Run("Truncates to max results after sorting", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "c1", Similarity: 0.3},
			&model.VectorCandidate{ID: "c2", Similarity: 0.9},
			&model.VectorCandidate{ID: "c3", Similarity: 0.6},
		}
		query := &model.Query{Text: "query", Strategy: model.StrategyVector, MaxResults: 2}

		results, err := engine.Rank(candidates, query, nil)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "c2", results[0].ID)
		assert.Equal(t, "c3", results[1].ID)
	})

	t.Run("Empty candidate id is rejected", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "", Similarity: 0.5},
		}
		query := &model.Query{Text: "query", Strategy: model.StrategyVector, MaxResults: 10}

		_, err := engine.Rank(candidates, query, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty id")
	})

	t.Run("Unknown strategy is rejected", func(t *testing.T) {
		query := &model.Query{Text: "query", Strategy: model.Strategy("guesswork"), MaxResults: 10}

		_, err := engine.Rank(nil, query, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown strategy")
	})

	t.Run("Scores stay within bounds across strategies", func(t *testing.T) {
		candidates := []model.Candidate{
			&model.VectorCandidate{ID: "c1", Similarity: 0.95},
			&model.GraphCandidate{ID: "c1", Score: 7.0},
			&model.GraphCandidate{ID: "c2", Score: 3.0},
		}
		for _, strategy := range []model.Strategy{model.StrategyVector, model.StrategyGraph, model.StrategyHybrid, model.StrategyEnsemble} {
			query := &model.Query{Text: "query", Strategy: strategy, MaxResults: 10}

			results, err := engine.Rank(candidates, query, []string{"Alice"})

			require.NoError(t, err)
			for _, result := range results {
				assert.GreaterOrEqual(t, result.UnifiedScore, 0.0)
				assert.LessOrEqual(t, result.UnifiedScore, 1.0)
			}
		}
	})
}
