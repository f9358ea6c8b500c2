package retrieval

import (
	"context"

	"github.com/siherrmann/recall/model"
)

// VectorIndex is the narrow surface of the vector store the retriever needs
type VectorIndex interface {
	// QuerySimilar returns up to limit chunks above the similarity threshold,
	// restricted by the given filters, ordered by descending similarity
	QuerySimilar(ctx context.Context, embedding []float32, limit int, threshold float64, filters model.Filters) ([]*model.VectorCandidate, error)
	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error
}

// VectorRetriever performs nearest-neighbor search over embedded content
type VectorRetriever struct {
	embedder EmbedFunc
	index    VectorIndex
	config   *model.EngineConfig
}

// NewVectorRetriever creates a vector retriever from an embedder and index
func NewVectorRetriever(embedder EmbedFunc, index VectorIndex, config *model.EngineConfig) *VectorRetriever {
	return &VectorRetriever{
		embedder: embedder,
		index:    index,
		config:   config,
	}
}

// Source identifies this retriever's candidates
func (r *VectorRetriever) Source() model.SourceType {
	return model.SourceVector
}

// Ping verifies the vector index is reachable
func (r *VectorRetriever) Ping(ctx context.Context) error {
	return r.index.Ping(ctx)
}

// Retrieve embeds the query text and searches the index. Items below the
// configured similarity threshold are discarded as noise.
func (r *VectorRetriever) Retrieve(ctx context.Context, query *model.Query) ([]model.Candidate, error) {
	embedding, err := r.embedder(query.Text)
	if err != nil {
		return nil, wrapBackendError("generate embedding", err)
	}

	chunks, err := r.index.QuerySimilar(ctx, embedding, query.MaxResults, r.config.SimilarityThreshold, query.Filters)
	if err != nil {
		return nil, wrapBackendError("vector similarity query", err)
	}

	candidates := make([]model.Candidate, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Similarity < r.config.SimilarityThreshold {
			continue
		}
		candidates = append(candidates, chunk)
		if len(candidates) >= query.MaxResults {
			break
		}
	}

	return candidates, nil
}
