package database

import (
	"context"
	"fmt"

	"github.com/siherrmann/recall/core/graph"
	"github.com/siherrmann/recall/helper"
	"github.com/siherrmann/recall/model"
)

// GraphDBHandlerFunctions defines the interface for entity graph operations
type GraphDBHandlerFunctions interface {
	ChunksMentioning(ctx context.Context, entity string, filters model.Filters, limit int) ([]*graph.Mention, error)
	RelatedEntities(ctx context.Context, entity string, limit int) ([]string, error)
	Ping(ctx context.Context) error
}

// GraphDBHandler answers entity-mention queries against the knowledge graph
// tables. Edges are undirected for traversal purposes; a row in either
// direction connects both entities.
type GraphDBHandler struct {
	db *helper.Database
}

// NewGraphDBHandler creates a new entity graph handler.
// It verifies the expected schema exists.
func NewGraphDBHandler(db *helper.Database) (*GraphDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	err := LoadSchema(db.Instance)
	if err != nil {
		return nil, helper.NewError("load schema", err)
	}

	db.Logger.Info("Initialized GraphDBHandler")

	return &GraphDBHandler{db: db}, nil
}

// ChunksMentioning returns chunks linked to the named entity, most recent
// first. A user_id filter restricts results to that tenant.
func (h *GraphDBHandler) ChunksMentioning(ctx context.Context, entity string, filters model.Filters, limit int) ([]*graph.Mention, error) {
	var userID interface{}
	if id := filters.UserID(); id != "" {
		userID = id
	}

	rows, err := h.db.Instance.QueryContext(ctx,
		`SELECT c.id, c.content, c.metadata
		 FROM chunks c
		 JOIN chunk_entities ce ON ce.chunk_id = c.id
		 JOIN entities e ON e.id = ce.entity_id
		 WHERE e.name = $1
		   AND ($2::text IS NULL OR c.user_id = $2)
		 ORDER BY c.created_at DESC, c.id
		 LIMIT $3`,
		entity,
		userID,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query chunks mentioning entity", err)
	}
	defer rows.Close()

	var mentions []*graph.Mention
	for rows.Next() {
		mention := &graph.Mention{Entity: entity}
		err := rows.Scan(
			&mention.ChunkID,
			&mention.Content,
			&mention.Metadata,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		mentions = append(mentions, mention)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("iterate rows", err)
	}

	return mentions, nil
}

// RelatedEntities returns the names of entities sharing an edge with the
// named entity, in either direction
func (h *GraphDBHandler) RelatedEntities(ctx context.Context, entity string, limit int) ([]string, error) {
	rows, err := h.db.Instance.QueryContext(ctx,
		`SELECT DISTINCT other.name
		 FROM entities e
		 JOIN entity_edges edge ON edge.source_id = e.id OR edge.target_id = e.id
		 JOIN entities other ON other.id = CASE WHEN edge.source_id = e.id THEN edge.target_id ELSE edge.source_id END
		 WHERE e.name = $1
		 ORDER BY other.name
		 LIMIT $2`,
		entity,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query related entities", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, helper.NewError("scan", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("iterate rows", err)
	}

	return names, nil
}

// Ping verifies the database is reachable
func (h *GraphDBHandler) Ping(ctx context.Context) error {
	err := h.db.Instance.PingContext(ctx)
	if err != nil {
		return helper.NewError("ping", err)
	}
	return nil
}
