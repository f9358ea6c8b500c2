package retrieval

import (
	"context"
	"sort"

	"github.com/siherrmann/recall/core/graph"
	"github.com/siherrmann/recall/model"
)

// GraphRetriever finds content through named entities: it extracts entities
// from the query text and traverses MENTIONS edges in the knowledge graph
type GraphRetriever struct {
	extractor ExtractFunc
	store     graph.Store
	config    *model.EngineConfig
}

// NewGraphRetriever creates a graph retriever from an entity extractor and store
func NewGraphRetriever(extractor ExtractFunc, store graph.Store, config *model.EngineConfig) *GraphRetriever {
	return &GraphRetriever{
		extractor: extractor,
		store:     store,
		config:    config,
	}
}

// Source identifies this retriever's candidates
func (r *GraphRetriever) Source() model.SourceType {
	return model.SourceGraph
}

// Ping verifies the graph store is reachable
func (r *GraphRetriever) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// Retrieve extracts entities from the query and traverses the graph around
// them. A query with no extractable entities returns an empty list, the graph
// simply contributes nothing.
func (r *GraphRetriever) Retrieve(ctx context.Context, query *model.Query) ([]model.Candidate, error) {
	entities, err := r.extractor(query.Text)
	if err != nil {
		return nil, wrapBackendError("extract entities", err)
	}

	seeds := model.EntityNames(entities)
	if len(seeds) == 0 {
		return nil, nil
	}

	visits, err := graph.BFS(ctx, r.store, seeds, r.config.ResolveTraversalDepth(), query.Filters, query.MaxResults)
	if err != nil {
		return nil, wrapBackendError("graph traversal", err)
	}

	candidates := r.aggregate(visits)

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].RawScore() != candidates[j].RawScore() {
			return candidates[i].RawScore() > candidates[j].RawScore()
		}
		return candidates[i].CandidateID() < candidates[j].CandidateID()
	})

	if len(candidates) > query.MaxResults {
		candidates = candidates[:query.MaxResults]
	}

	return candidates, nil
}

// RelatedByEntities returns chunks sharing at least one of the given entities,
// excluding ids already known. Used by the related-item expansion after
// primary ranking.
func (r *GraphRetriever) RelatedByEntities(ctx context.Context, entities []string, exclude map[string]bool, limit int, filters model.Filters) ([]*model.GraphCandidate, error) {
	visits, err := graph.BFS(ctx, r.store, entities, 0, filters, limit)
	if err != nil {
		return nil, wrapBackendError("related entity query", err)
	}

	candidates := r.aggregate(visits)

	filtered := make([]*model.GraphCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		graphCandidate := candidate.(*model.GraphCandidate)
		if exclude[graphCandidate.ID] {
			continue
		}
		filtered = append(filtered, graphCandidate)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Score != filtered[j].Score {
			return filtered[i].Score > filtered[j].Score
		}
		return filtered[i].ID < filtered[j].ID
	})

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	return filtered, nil
}

// aggregate folds traversal visits into one candidate per chunk. Each visit
// adds 1/(1+distance) to the raw score, so chunks matching several entities
// close to the query outrank distant single matches.
func (r *GraphRetriever) aggregate(visits []*graph.Visit) []model.Candidate {
	byID := make(map[string]*model.GraphCandidate)
	var order []string

	for _, visit := range visits {
		mention := visit.Mention
		candidate, exists := byID[mention.ChunkID]
		if !exists {
			candidate = &model.GraphCandidate{
				ID:       mention.ChunkID,
				Content:  mention.Content,
				Metadata: mention.Metadata,
			}
			byID[mention.ChunkID] = candidate
			order = append(order, mention.ChunkID)
		}

		candidate.Score += 1.0 / float64(1+visit.Distance)
		candidate.Relationships = append(candidate.Relationships, model.GraphRelationship{
			MatchedEntity: mention.Entity,
			Distance:      visit.Distance,
		})
	}

	// Record co-matched entities as each relationship's neighborhood
	for _, candidate := range byID {
		matched := candidate.MatchedEntities()
		if len(matched) < 2 {
			continue
		}
		for i := range candidate.Relationships {
			for _, entity := range matched {
				if entity != candidate.Relationships[i].MatchedEntity {
					candidate.Relationships[i].RelatedEntities = append(candidate.Relationships[i].RelatedEntities, entity)
				}
			}
		}
	}

	candidates := make([]model.Candidate, 0, len(order))
	for _, id := range order {
		candidates = append(candidates, byID[id])
	}
	return candidates
}
