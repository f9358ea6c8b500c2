package database

import (
	"context"
	"log"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/recall/helper"
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

func initDB(t *testing.T) *helper.Database {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")
	database := helper.NewTestDatabase(dbConfig)

	err = LoadSchema(database.Instance)
	require.NoError(t, err)

	return database
}

// seedChunk inserts a chunk row directly; ingestion is not part of the
// adapters, so tests seed with plain SQL
func seedChunk(t *testing.T, db *helper.Database, id string, content string, embedding []float32, userID string) {
	t.Helper()
	var user interface{}
	if userID != "" {
		user = userID
	}
	if embedding != nil {
		_, err := db.Instance.Exec(
			`INSERT INTO chunks (id, content, embedding, metadata, user_id) VALUES ($1, $2, $3, '{}', $4)
			 ON CONFLICT (id) DO NOTHING`,
			id, content, pgvector.NewVector(embedding), user,
		)
		require.NoError(t, err)
		return
	}
	_, err := db.Instance.Exec(
		`INSERT INTO chunks (id, content, metadata, user_id) VALUES ($1, $2, '{}', $3)
		 ON CONFLICT (id) DO NOTHING`,
		id, content, user,
	)
	require.NoError(t, err)
}

// seedMention links a chunk to an entity, creating the entity if needed
func seedMention(t *testing.T, db *helper.Database, chunkID string, entity string) {
	t.Helper()
	_, err := db.Instance.Exec(
		`INSERT INTO entities (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
		entity,
	)
	require.NoError(t, err)
	_, err = db.Instance.Exec(
		`INSERT INTO chunk_entities (chunk_id, entity_id)
		 SELECT $1, id FROM entities WHERE name = $2
		 ON CONFLICT DO NOTHING`,
		chunkID, entity,
	)
	require.NoError(t, err)
}

// seedEdge connects two entities, creating them if needed
func seedEdge(t *testing.T, db *helper.Database, source string, target string) {
	t.Helper()
	for _, name := range []string{source, target} {
		_, err := db.Instance.Exec(
			`INSERT INTO entities (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			name,
		)
		require.NoError(t, err)
	}
	_, err := db.Instance.Exec(
		`INSERT INTO entity_edges (source_id, target_id)
		 SELECT s.id, t.id FROM entities s, entities t WHERE s.name = $1 AND t.name = $2
		 ON CONFLICT DO NOTHING`,
		source, target,
	)
	require.NoError(t, err)
}
