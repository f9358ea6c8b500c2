package database

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/recall/helper"
	"github.com/siherrmann/recall/model"
)

// VectorDBHandlerFunctions defines the interface for vector search operations
type VectorDBHandlerFunctions interface {
	QuerySimilar(ctx context.Context, embedding []float32, limit int, threshold float64, filters model.Filters) ([]*model.VectorCandidate, error)
	Ping(ctx context.Context) error
}

// VectorDBHandler runs cosine similarity queries against the chunks table
type VectorDBHandler struct {
	db *helper.Database
}

// NewVectorDBHandler creates a new vector search handler.
// It verifies the expected schema exists.
func NewVectorDBHandler(db *helper.Database) (*VectorDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	err := LoadSchema(db.Instance)
	if err != nil {
		return nil, helper.NewError("load schema", err)
	}

	db.Logger.Info("Initialized VectorDBHandler")

	return &VectorDBHandler{db: db}, nil
}

// QuerySimilar returns the chunks most similar to the embedding, ordered by
// descending cosine similarity. Rows below the threshold are excluded in the
// query; a user_id filter restricts results to that tenant.
func (h *VectorDBHandler) QuerySimilar(ctx context.Context, embedding []float32, limit int, threshold float64, filters model.Filters) ([]*model.VectorCandidate, error) {
	var userID interface{}
	if id := filters.UserID(); id != "" {
		userID = id
	}

	rows, err := h.db.Instance.QueryContext(ctx,
		`SELECT id, content, metadata, 1 - (embedding <=> $1) AS similarity
		 FROM chunks
		 WHERE embedding IS NOT NULL
		   AND ($2::text IS NULL OR user_id = $2)
		   AND 1 - (embedding <=> $1) >= $3
		 ORDER BY embedding <=> $1
		 LIMIT $4`,
		pgvector.NewVector(embedding),
		userID,
		threshold,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query similar chunks", err)
	}
	defer rows.Close()

	var candidates []*model.VectorCandidate
	for rows.Next() {
		candidate := &model.VectorCandidate{}
		err := rows.Scan(
			&candidate.ID,
			&candidate.Content,
			&candidate.Metadata,
			&candidate.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		candidates = append(candidates, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("iterate rows", err)
	}

	return candidates, nil
}

// Ping verifies the database is reachable
func (h *VectorDBHandler) Ping(ctx context.Context) error {
	err := h.db.Instance.PingContext(ctx)
	if err != nil {
		return helper.NewError("ping", err)
	}
	return nil
}
