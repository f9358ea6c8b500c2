package graph

import (
	"context"

	"github.com/siherrmann/recall/model"
)

// Mention is one content chunk that mentions an entity
type Mention struct {
	ChunkID  string
	Content  string
	Metadata model.Metadata
	Entity   string // The entity the chunk was reached through
}

// Store defines the narrow graph-store surface traversal needs.
// Implementations hold long-lived connections safe for concurrent use.
type Store interface {
	// ChunksMentioning returns chunks with a direct MENTIONS edge to the entity
	ChunksMentioning(ctx context.Context, entity string, filters model.Filters, limit int) ([]*Mention, error)
	// RelatedEntities returns entities co-mentioned with the given entity
	RelatedEntities(ctx context.Context, entity string, limit int) ([]string, error)
	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error
}

// Visit is one chunk reached during traversal, with its distance from the
// seed entity set (0 for a direct mention of a seed)
type Visit struct {
	Mention  *Mention
	Distance int
}

// BFS performs breadth-first traversal over the entity neighborhood: starting
// from the seed entities it collects directly mentioning chunks, then expands
// to co-mentioned entities up to maxDepth hops away. Entities are visited at
// most once; the same chunk may appear in several visits when reached through
// different entities, callers aggregate.
func BFS(ctx context.Context, store Store, seeds []string, maxDepth int, filters model.Filters, chunkLimit int) ([]*Visit, error) {
	type queued struct {
		entity   string
		distance int
	}

	visited := make(map[string]bool)
	var queue []queued
	for _, seed := range seeds {
		if seed == "" || visited[seed] {
			continue
		}
		visited[seed] = true
		queue = append(queue, queued{entity: seed})
	}

	var visits []*Visit
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := queue[0]
		queue = queue[1:]

		mentions, err := store.ChunksMentioning(ctx, current.entity, filters, chunkLimit)
		if err != nil {
			return nil, err
		}
		for _, mention := range mentions {
			visits = append(visits, &Visit{
				Mention:  mention,
				Distance: current.distance,
			})
		}

		// Stop expanding once we've reached max depth
		if current.distance >= maxDepth {
			continue
		}

		related, err := store.RelatedEntities(ctx, current.entity, chunkLimit)
		if err != nil {
			return nil, err
		}
		for _, entity := range related {
			if entity == "" || visited[entity] {
				continue
			}
			visited[entity] = true
			queue = append(queue, queued{entity: entity, distance: current.distance + 1})
		}
	}

	return visits, nil
}
