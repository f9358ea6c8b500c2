package aggregate

import "github.com/siherrmann/recall/model"

// DescribeStrategies returns the supported strategies with their default
// weight vectors, for API discoverability
func (a *Aggregator) DescribeStrategies() []model.StrategyInfo {
	return []model.StrategyInfo{
		{
			Strategy:    model.StrategyVector,
			Description: "Pure semantic similarity search over embeddings. Fast, works without a knowledge graph, blind to entity structure.",
		},
		{
			Strategy:    model.StrategyGraph,
			Description: "Entity-based traversal of the knowledge graph. Surfaces structurally connected content the embedding space misses; needs extractable entities in the query.",
		},
		{
			Strategy:    model.StrategyHybrid,
			Description: "Weighted combination of vector and graph scores. Content surfaced by both sources gets a convergence boost.",
			Weights: map[string]float64{
				"vector": a.config.VectorWeight,
				"graph":  a.config.GraphWeight,
			},
		},
		{
			Strategy:    model.StrategyEnsemble,
			Description: "Multi-factor ranking over semantic similarity, graph centrality, recency and entity overlap. The most discriminating strategy and the recommended default.",
			Weights: map[string]float64{
				model.FactorSemanticSimilarity: a.config.Ensemble.Semantic,
				model.FactorGraphCentrality:    a.config.Ensemble.Structural,
				model.FactorRecency:            a.config.Ensemble.Recency,
				model.FactorEntityOverlap:      a.config.Ensemble.EntityOverlap,
			},
		},
	}
}
