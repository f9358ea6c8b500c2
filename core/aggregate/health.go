package aggregate

import (
	"context"

	"github.com/siherrmann/recall/model"
)

// SourceHealth reports one backend's reachability
type SourceHealth struct {
	Source  model.SourceType `json:"source"`
	Healthy bool             `json:"healthy"`
	Error   string           `json:"error,omitempty"`
}

// HealthCheck pings every wired backend and runs a trivial vector search to
// verify the full path. It never returns an error; unhealthy sources are
// reported, not raised.
func (a *Aggregator) HealthCheck(ctx context.Context) []SourceHealth {
	var health []SourceHealth

	for _, retriever := range a.relevantRetrievers(model.StrategyEnsemble) {
		status := SourceHealth{Source: retriever.Source(), Healthy: true}
		if err := retriever.Ping(ctx); err != nil {
			status.Healthy = false
			status.Error = err.Error()
		}
		health = append(health, status)
	}

	if a.vector != nil {
		probe := &model.Query{
			Text:       "health check",
			Strategy:   model.StrategyVector,
			MaxResults: 1,
		}
		if _, err := a.Search(ctx, probe); err != nil {
			health = append(health, SourceHealth{
				Source:  model.SourceVector,
				Healthy: false,
				Error:   "probe search: " + err.Error(),
			})
		}
	}

	return health
}
