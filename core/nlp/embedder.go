// Package nlp provides the default model-backed collaborators for the
// retrievers: a sentence embedder and a named entity extractor, both running
// on local ONNX models through hugot.
package nlp

import (
	"fmt"

	"github.com/knights-analytics/hugot"
	"github.com/siherrmann/recall/core/retrieval"
	"github.com/siherrmann/recall/helper"
)

// DefaultEmbedder returns an embedder backed by all-MiniLM-L6-v2, producing
// 384-dimensional embeddings. The model is downloaded on first use.
func DefaultEmbedder() (retrieval.EmbedFunc, error) {
	modelPath, err := helper.PrepareModel("sentence-transformers/all-MiniLM-L6-v2", "onnx/model.onnx")
	if err != nil {
		return nil, helper.NewError("prepare embedding model", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, helper.NewError("create hugot session", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	embeddingPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, helper.NewError("create embedding pipeline", fmt.Errorf("%w (cleanup error: %v)", err, destroyErr))
		}
		return nil, helper.NewError("create embedding pipeline", err)
	}

	return func(text string) ([]float32, error) {
		result, err := embeddingPipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, helper.NewError("generate embedding", err)
		}
		if len(result.Embeddings) == 0 {
			return nil, helper.NewError("generate embedding", fmt.Errorf("no embedding generated"))
		}
		return result.Embeddings[0], nil
	}, nil
}
