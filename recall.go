package recall

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/siherrmann/recall/core/aggregate"
	"github.com/siherrmann/recall/core/nlp"
	"github.com/siherrmann/recall/core/ranking"
	"github.com/siherrmann/recall/core/retrieval"
	"github.com/siherrmann/recall/database"
	"github.com/siherrmann/recall/helper"
	"github.com/siherrmann/recall/model"
)

// Recall wires the retrieval core to its PostgreSQL backends and exposes the
// search surface
type Recall struct {
	DB         *helper.Database
	Vectors    *database.VectorDBHandler
	Graph      *database.GraphDBHandler
	Aggregator *aggregate.Aggregator
	// Logging
	log *slog.Logger
}

// NewRecall creates a Recall instance with all handlers initialized. The
// embedder and extractor are the model-backed collaborators; use
// NewDefaultRecall to run on the bundled ONNX models. A nil engine
// configuration falls back to the defaults.
func NewRecall(dbConfig *helper.DatabaseConfiguration, engineConfig *model.EngineConfig, embedder retrieval.EmbedFunc, extractor retrieval.ExtractFunc) (*Recall, error) {
	if embedder == nil {
		return nil, helper.NewError("validate collaborators", fmt.Errorf("embedder is nil"))
	}
	if extractor == nil {
		return nil, helper.NewError("validate collaborators", fmt.Errorf("extractor is nil"))
	}
	if engineConfig == nil {
		engineConfig = model.DefaultEngineConfig()
	}

	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database and adapters
	db := helper.NewDatabase("recall", dbConfig, logger)

	vectors, err := database.NewVectorDBHandler(db)
	if err != nil {
		return nil, helper.NewError("create vector handler", err)
	}

	graph, err := database.NewGraphDBHandler(db)
	if err != nil {
		return nil, helper.NewError("create graph handler", err)
	}

	// Retrieval and ranking
	vectorRetriever := retrieval.NewVectorRetriever(embedder, vectors, engineConfig)
	graphRetriever := retrieval.NewGraphRetriever(extractor, graph, engineConfig)
	engine := ranking.NewEngine(engineConfig)

	aggregator := aggregate.NewAggregator(vectorRetriever, graphRetriever, graphRetriever, extractor, engine, engineConfig, logger)

	logger.Info("Initialized Recall", slog.String("default_strategy", string(engineConfig.DefaultStrategy)))

	return &Recall{
		DB:         db,
		Vectors:    vectors,
		Graph:      graph,
		Aggregator: aggregator,
		log:        logger,
	}, nil
}

// NewDefaultRecall creates a Recall instance backed by the default ONNX
// models, all-MiniLM-L6-v2 for embeddings and distilbert-NER for entity
// extraction. Models are downloaded on first use.
func NewDefaultRecall(dbConfig *helper.DatabaseConfiguration, engineConfig *model.EngineConfig) (*Recall, error) {
	embedder, err := nlp.DefaultEmbedder()
	if err != nil {
		return nil, helper.NewError("create default embedder", err)
	}

	extractor, err := nlp.DefaultEntityExtractor()
	if err != nil {
		return nil, helper.NewError("create default entity extractor", err)
	}

	return NewRecall(dbConfig, engineConfig, embedder, extractor)
}

// Search runs a query through the full pipeline: fan-out to the relevant
// sources, ranking under the query's strategy and optional related-item
// expansion
func (r *Recall) Search(ctx context.Context, query *model.Query) (*model.AggregatedContext, error) {
	return r.Aggregator.Search(ctx, query)
}

// DescribeStrategies returns the supported strategies and their default
// weights
func (r *Recall) DescribeStrategies() []model.StrategyInfo {
	return r.Aggregator.DescribeStrategies()
}

// HealthCheck reports the reachability of every wired backend
func (r *Recall) HealthCheck(ctx context.Context) []aggregate.SourceHealth {
	return r.Aggregator.HealthCheck(ctx)
}

// Close closes the database connection
func (r *Recall) Close() error {
	if r.DB != nil && r.DB.Instance != nil {
		return r.DB.Instance.Close()
	}
	return nil
}
