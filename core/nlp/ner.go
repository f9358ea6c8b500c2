package nlp

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/recall/core/retrieval"
	"github.com/siherrmann/recall/helper"
	"github.com/siherrmann/recall/model"
)

// DefaultEntityExtractor returns a named entity extractor backed by
// distilbert-NER. It detects PER, ORG, LOC and MISC entities; the model is
// downloaded on first use.
func DefaultEntityExtractor() (retrieval.ExtractFunc, error) {
	modelPath, err := helper.PrepareModel("KnightsAnalytics/distilbert-NER", "model.onnx")
	if err != nil {
		return nil, helper.NewError("prepare ner model", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, helper.NewError("create hugot session", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, helper.NewError("create ner pipeline", fmt.Errorf("%w (cleanup error: %v)", err, destroyErr))
		}
		return nil, helper.NewError("create ner pipeline", err)
	}

	return func(text string) ([]*model.Entity, error) {
		result, err := nerPipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, helper.NewError("run ner", err)
		}
		if len(result.Entities) == 0 {
			return nil, nil
		}

		var entities []*model.Entity
		for _, entity := range result.Entities[0] {
			entities = append(entities, &model.Entity{
				ID:   uuid.New(),
				Name: strings.TrimSpace(entity.Word),
				Type: normalizeEntityType(entity.Entity),
				Metadata: map[string]interface{}{
					"confidence": entity.Score,
					"start":      entity.Start,
					"end":        entity.End,
				},
			})
		}
		return entities, nil
	}, nil
}

// normalizeEntityType strips the BIO tagging prefixes from NER labels
func normalizeEntityType(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}
