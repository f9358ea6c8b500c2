package model

import "time"

// EnsembleWeights holds the per-factor weights for the ensemble strategy
type EnsembleWeights struct {
	Semantic      float64 `json:"semantic" koanf:"semantic"`
	Structural    float64 `json:"structural" koanf:"structural"`
	Recency       float64 `json:"recency" koanf:"recency"`
	EntityOverlap float64 `json:"entity_overlap" koanf:"entity_overlap"`
}

// EngineConfig represents construction-time configuration for the retrieval core
type EngineConfig struct {
	// Query bounds
	DefaultStrategy   Strategy `json:"default_strategy" koanf:"default_strategy"`
	DefaultMaxResults int      `json:"default_max_results" koanf:"default_max_results"`
	MaxResultsCap     int      `json:"max_results_cap" koanf:"max_results_cap"`

	// Vector search parameters
	SimilarityThreshold float64 `json:"similarity_threshold" koanf:"similarity_threshold"`

	// Graph traversal parameters
	TraversalDepth    int `json:"traversal_depth" koanf:"traversal_depth"`
	MaxTraversalDepth int `json:"max_traversal_depth" koanf:"max_traversal_depth"`

	// Related-item expansion
	ExpansionSeeds int `json:"expansion_seeds" koanf:"expansion_seeds"`
	ExpansionLimit int `json:"expansion_limit" koanf:"expansion_limit"`

	// Timeouts. RetrieverTimeout bounds each backend call and must stay
	// below any overall deadline the caller supplies.
	RetrieverTimeout time.Duration `json:"retriever_timeout" koanf:"retriever_timeout"`

	// Ranking weights
	VectorWeight    float64         `json:"vector_weight" koanf:"vector_weight"`
	GraphWeight     float64         `json:"graph_weight" koanf:"graph_weight"`
	Ensemble        EnsembleWeights `json:"ensemble" koanf:"ensemble"`
	RecencyHalfLife time.Duration   `json:"recency_half_life" koanf:"recency_half_life"`
}

// DefaultEngineConfig returns a sensible default configuration
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		DefaultStrategy:     StrategyEnsemble,
		DefaultMaxResults:   10,
		MaxResultsCap:       100,
		SimilarityThreshold: 0.05,
		TraversalDepth:      2,
		MaxTraversalDepth:   5,
		ExpansionSeeds:      5,
		ExpansionLimit:      10,
		RetrieverTimeout:    5 * time.Second,
		VectorWeight:        0.7,
		GraphWeight:         0.3,
		Ensemble: EnsembleWeights{
			Semantic:      0.35,
			Structural:    0.35,
			Recency:       0.2,
			EntityOverlap: 0.1,
		},
		RecencyHalfLife: 7 * 24 * time.Hour,
	}
}

// ClampWeight limits a weight to [0, 1]
func ClampWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// ResolveHybridWeights returns the effective vector and graph weights for a
// query, falling back to the configured defaults. Weights are clamped to
// [0, 1] but deliberately not renormalized to sum to 1; callers own the
// combination they ask for.
func (c *EngineConfig) ResolveHybridWeights(query *Query) (float64, float64) {
	vectorWeight := c.VectorWeight
	graphWeight := c.GraphWeight
	if query.VectorWeight != nil {
		vectorWeight = *query.VectorWeight
	}
	if query.GraphWeight != nil {
		graphWeight = *query.GraphWeight
	}
	return ClampWeight(vectorWeight), ClampWeight(graphWeight)
}

// ResolveTraversalDepth bounds the configured depth by the hard maximum
func (c *EngineConfig) ResolveTraversalDepth() int {
	depth := c.TraversalDepth
	if depth <= 0 {
		depth = 2
	}
	if c.MaxTraversalDepth > 0 && depth > c.MaxTraversalDepth {
		depth = c.MaxTraversalDepth
	}
	return depth
}
