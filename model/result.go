package model

import "github.com/google/uuid"

// Ranking factor names
const (
	FactorSemanticSimilarity  = "semantic_similarity"
	FactorStructuralRelevance = "structural_relevance"
	FactorGraphCentrality     = "graph_centrality"
	FactorRecency             = "recency"
	FactorEntityOverlap       = "entity_overlap"
	FactorRelatedEntity       = "related_entity"
)

// RankingFactor is one named, weighted scoring contribution
type RankingFactor struct {
	Name            string  `json:"name"`
	RawValue        float64 `json:"raw_value"`
	NormalizedScore float64 `json:"normalized_score"` // In [0, 1]
	Weight          float64 `json:"weight"`           // In [0, 1]
	Explanation     string  `json:"explanation"`
}

// RankedResult is one scored output item. UnifiedScore is the weighted sum of
// the ranking factors, clamped to [0, 1].
type RankedResult struct {
	ID             string          `json:"id"`
	Content        string          `json:"content"`
	Source         SourceType      `json:"source_type"`
	UnifiedScore   float64         `json:"unified_score"`
	RankingFactors []RankingFactor `json:"ranking_factors"`
	Metadata       Metadata        `json:"metadata,omitempty"`
}

// QueryMetadata echoes the query inputs with resolved weights and records
// every degradation that happened while serving it
type QueryMetadata struct {
	RequestID      uuid.UUID `json:"request_id"`
	Text           string    `json:"text"`
	Strategy       Strategy  `json:"strategy"`
	MaxResults     int       `json:"max_results"`
	VectorWeight   float64   `json:"vector_weight"`
	GraphWeight    float64   `json:"graph_weight"`
	IncludeRelated bool      `json:"include_related"`
	Degraded       bool      `json:"degraded"`
	Warnings       []string  `json:"warnings,omitempty"`
}

// AggregatedContext is the final response: results ordered by descending
// unified score, ties broken by most recent timestamp, then lexicographic id
type AggregatedContext struct {
	Results          []*RankedResult `json:"results"`
	TotalResults     int             `json:"total_results"`
	StrategyUsed     Strategy        `json:"strategy_used"`
	QueryMetadata    QueryMetadata   `json:"query_metadata"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
}

// StrategyInfo describes one supported strategy for API discoverability
type StrategyInfo struct {
	Strategy    Strategy           `json:"strategy"`
	Description string             `json:"description"`
	Weights     map[string]float64 `json:"weights,omitempty"`
}
