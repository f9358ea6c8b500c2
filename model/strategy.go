package model

import "fmt"

// Strategy selects which retrievers run and how their scores combine
type Strategy string

const (
	StrategyVector   Strategy = "vector"
	StrategyGraph    Strategy = "graph"
	StrategyHybrid   Strategy = "hybrid"
	StrategyEnsemble Strategy = "ensemble"
)

// ParseStrategy converts a string to a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyVector, StrategyGraph, StrategyHybrid, StrategyEnsemble:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown strategy %q", s)
	}
}

// Valid reports whether the strategy is one of the supported values
func (s Strategy) Valid() bool {
	switch s {
	case StrategyVector, StrategyGraph, StrategyHybrid, StrategyEnsemble:
		return true
	}
	return false
}

// UsesVector reports whether the strategy dispatches the vector retriever
func (s Strategy) UsesVector() bool {
	return s != StrategyGraph
}

// UsesGraph reports whether the strategy dispatches the graph retriever
func (s Strategy) UsesGraph() bool {
	return s != StrategyVector
}

// SourceType identifies where a candidate or result came from
type SourceType string

const (
	SourceVector  SourceType = "vector"
	SourceGraph   SourceType = "graph"
	SourceHybrid  SourceType = "hybrid"
	SourceRelated SourceType = "related"
)
