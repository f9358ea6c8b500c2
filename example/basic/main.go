package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/recall"
	"github.com/siherrmann/recall/core/retrieval"
	"github.com/siherrmann/recall/helper"
	"github.com/siherrmann/recall/model"
)

// The example runs on deterministic toy collaborators instead of the bundled
// ONNX models, so it works without downloading anything. Swap in
// recall.NewDefaultRecall for real embeddings and NER.

var sampleChunks = []struct {
	ID       string
	Content  string
	Topic    string
	Entities []string
}{
	{"chunk-1", "Alice presented the Q3 budget to the board.", "budget", []string{"Alice"}},
	{"chunk-2", "The Q3 budget allocates more to infrastructure.", "budget", []string{}},
	{"chunk-3", "Alice is relocating to the Berlin office.", "office", []string{"Alice", "Berlin"}},
}

func toyEmbedder() retrieval.EmbedFunc {
	topics := []string{"budget", "office"}
	return func(text string) ([]float32, error) {
		embedding := make([]float32, 384)
		for axis, topic := range topics {
			if strings.Contains(strings.ToLower(text), topic) {
				embedding[axis] = 1.0
			}
		}
		if embedding[0] == 0 && embedding[1] == 0 {
			embedding[2] = 1.0
		}
		return embedding, nil
	}
}

func toyExtractor() retrieval.ExtractFunc {
	known := []string{"Alice", "Berlin"}
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

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	r, err := recall.NewRecall(dbConfig, nil, toyEmbedder(), toyExtractor())
	if err != nil {
		log.Fatalf("Failed to create recall: %v", err)
	}
	defer r.Close()

	// Seed the store. Ingestion is not part of the retrieval core, so the
	// example writes rows directly.
	fmt.Println("Seeding chunks...")
	if err := seed(r); err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	queryText := "Who worked on the budget?"
	fmt.Printf("\nQuerying: %s\n", queryText)

	response, err := r.Search(context.Background(), &model.Query{
		Text:           queryText,
		Strategy:       model.StrategyHybrid,
		IncludeRelated: true,
	})
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Printf("\nFound %d results in %d ms (strategy %s):\n",
		response.TotalResults, response.ProcessingTimeMs, response.StrategyUsed)
	for i, result := range response.Results {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Score: %.4f\n", result.UnifiedScore)
		fmt.Printf("Content: %s\n", result.Content)
		fmt.Printf("Source: %s\n", result.Source)
		for _, factor := range result.RankingFactors {
			fmt.Printf("  %s: %.3f (weight %.2f) %s\n",
				factor.Name, factor.NormalizedScore, factor.Weight, factor.Explanation)
		}
	}

	fmt.Println("\nStrategies:")
	for _, info := range r.DescribeStrategies() {
		fmt.Printf("  %s: %s\n", info.Strategy, info.Description)
	}

	fmt.Println("\nBasic example completed successfully!")
}

func seed(r *recall.Recall) error {
	embedder := toyEmbedder()
	for _, chunk := range sampleChunks {
		embedding, err := embedder(chunk.Content)
		if err != nil {
			return err
		}

		entities := make([]interface{}, len(chunk.Entities))
		for i, entity := range chunk.Entities {
			entities[i] = entity
		}
		metadata := model.Metadata{"entities": entities, "topic": chunk.Topic}
		metadataJSON, err := metadata.Marshal()
		if err != nil {
			return err
		}

		_, err = r.DB.Instance.Exec(
			`INSERT INTO chunks (id, content, embedding, metadata) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`,
			chunk.ID, chunk.Content, pgvector.NewVector(embedding), metadataJSON,
		)
		if err != nil {
			return err
		}

		for _, entity := range chunk.Entities {
			_, err = r.DB.Instance.Exec(
				`INSERT INTO entities (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, entity)
			if err != nil {
				return err
			}
			_, err = r.DB.Instance.Exec(
				`INSERT INTO chunk_entities (chunk_id, entity_id)
				 SELECT $1, id FROM entities WHERE name = $2
				 ON CONFLICT DO NOTHING`,
				chunk.ID, entity)
			if err != nil {
				return err
			}
		}
	}

	_, err := r.DB.Instance.Exec(
		`INSERT INTO entity_edges (source_id, target_id)
		 SELECT s.id, t.id FROM entities s, entities t WHERE s.name = 'Alice' AND t.name = 'Berlin'
		 ON CONFLICT DO NOTHING`)
	return err
}
