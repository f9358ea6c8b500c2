package recall

import (
	"context"
	"log"
	"strings"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/recall/core/retrieval"
	"github.com/siherrmann/recall/helper"
	"github.com/siherrmann/recall/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("error tearing down postgres container: %v", err)
	}
}

// testEmbedder maps texts about the same topic onto the same axis so
// similarity is deterministic
func testEmbedder() retrieval.EmbedFunc {
	return func(text string) ([]float32, error) {
		embedding := make([]float32, 384)
		axis := 1
		if strings.Contains(strings.ToLower(text), "budget") {
			axis = 0
		}
		embedding[axis] = 1.0
		return embedding, nil
	}
}

// testExtractor recognizes a fixed set of entity names
func testExtractor() retrieval.ExtractFunc {
	known := []string{"Alice", "Acme Corp", "Berlin"}
	return func(text string) ([]*model.Entity, error) {
		var entities []*model.Entity
		for _, name := range known {
			if strings.Contains(text, name) {
				entities = append(entities, &model.Entity{Name: name, Type: "MISC"})
			}
		}
		return entities, nil
	}
}

func initRecall(t *testing.T) *Recall {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")

	r, err := NewRecall(dbConfig, nil, testEmbedder(), testExtractor())
	require.NoError(t, err, "failed to create recall instance")
	require.NotNil(t, r, "expected recall instance to be non-nil")

	t.Cleanup(func() {
		r.Close()
	})

	return r
}

func seedSearchData(t *testing.T, r *Recall) {
	t.Helper()
	embedder := testEmbedder()
	budgetEmbedding, err := embedder("budget")
	require.NoError(t, err)

	_, err = r.DB.Instance.Exec(
		`INSERT INTO chunks (id, content, embedding, metadata) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		"budget-1", "Alice presented the Q3 budget.", pgvector.NewVector(budgetEmbedding),
		`{"entities": ["Alice"], "timestamp": "2024-05-01T00:00:00Z"}`,
	)
	require.NoError(t, err)

	_, err = r.DB.Instance.Exec(
		`INSERT INTO entities (name) VALUES ('Alice') ON CONFLICT (name) DO NOTHING`)
	require.NoError(t, err)
	_, err = r.DB.Instance.Exec(
		`INSERT INTO chunk_entities (chunk_id, entity_id)
		 SELECT 'budget-1', id FROM entities WHERE name = 'Alice'
		 ON CONFLICT DO NOTHING`)
	require.NoError(t, err)
}

func TestNewRecall(t *testing.T) {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err)

	t.Run("Valid call NewRecall", func(t *testing.T) {
		r, err := NewRecall(dbConfig, nil, testEmbedder(), testExtractor())
		require.NoError(t, err, "Expected NewRecall to not return an error")
		require.NotNil(t, r, "Expected NewRecall to return a non-nil instance")
		assert.NotNil(t, r.DB, "Expected recall to have a database instance")
		assert.NotNil(t, r.Vectors, "Expected recall to have a vector handler")
		assert.NotNil(t, r.Graph, "Expected recall to have a graph handler")
		assert.NotNil(t, r.Aggregator, "Expected recall to have an aggregator")

		err = r.Close()
		assert.NoError(t, err, "Expected Close to not return an error")
	})

	t.Run("Invalid call NewRecall with nil embedder", func(t *testing.T) {
		_, err := NewRecall(dbConfig, nil, nil, testExtractor())
		assert.Error(t, err, "Expected error when creating Recall with nil embedder")
	})

	t.Run("Invalid call NewRecall with nil extractor", func(t *testing.T) {
		_, err := NewRecall(dbConfig, nil, testEmbedder(), nil)
		assert.Error(t, err, "Expected error when creating Recall with nil extractor")
	})

	t.Run("Recall with nil database handles Close gracefully", func(t *testing.T) {
		r := &Recall{}

		err := r.Close()
		assert.NoError(t, err, "Expected Close to handle nil DB gracefully")
	})
}

func TestRecallSearch(t *testing.T) {
	ctx := context.Background()
	r := initRecall(t)
	seedSearchData(t, r)

	t.Run("Vector search finds similar content", func(t *testing.T) {
		response, err := r.Search(ctx, &model.Query{
			Text:     "budget planning",
			Strategy: model.StrategyVector,
		})

		require.NoError(t, err)
		require.NotEmpty(t, response.Results)
		assert.Equal(t, "budget-1", response.Results[0].ID)
		assert.Equal(t, model.SourceVector, response.Results[0].Source)
		assert.False(t, response.QueryMetadata.Degraded)
	})

	t.Run("Graph search finds entity mentions", func(t *testing.T) {
		response, err := r.Search(ctx, &model.Query{
			Text:     "what did Alice do",
			Strategy: model.StrategyGraph,
		})

		require.NoError(t, err)
		require.NotEmpty(t, response.Results)
		assert.Equal(t, "budget-1", response.Results[0].ID)
		assert.Equal(t, model.SourceGraph, response.Results[0].Source)
	})

	t.Run("Hybrid search merges both sources", func(t *testing.T) {
		response, err := r.Search(ctx, &model.Query{
			Text:     "Alice budget",
			Strategy: model.StrategyHybrid,
		})

		require.NoError(t, err)
		require.NotEmpty(t, response.Results)
		assert.Equal(t, "budget-1", response.Results[0].ID)
		assert.Equal(t, model.SourceHybrid, response.Results[0].Source, "Expected content surfaced by both sources to be marked hybrid")
	})

	t.Run("Ensemble search reports all factors", func(t *testing.T) {
		response, err := r.Search(ctx, &model.Query{
			Text: "Alice budget",
		})

		require.NoError(t, err)
		require.NotEmpty(t, response.Results)
		assert.Equal(t, model.StrategyEnsemble, response.StrategyUsed, "Expected the default strategy")
		assert.Len(t, response.Results[0].RankingFactors, 4)
	})

	t.Run("Empty query is rejected", func(t *testing.T) {
		_, err := r.Search(ctx, &model.Query{Text: ""})

		require.Error(t, err)
		assert.ErrorIs(t, err, retrieval.ErrInvalidQuery)
	})
}

func TestRecallDescribeStrategies(t *testing.T) {
	r := initRecall(t)

	infos := r.DescribeStrategies()

	assert.Len(t, infos, 4)
}

func TestRecallHealthCheck(t *testing.T) {
	ctx := context.Background()
	r := initRecall(t)

	health := r.HealthCheck(ctx)

	require.NotEmpty(t, health)
	for _, status := range health {
		assert.True(t, status.Healthy, "Expected all backends healthy, got %+v", status)
	}
}
