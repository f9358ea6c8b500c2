// Package config loads the engine configuration from defaults, an optional
// YAML file and environment variables, in increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/siherrmann/recall/helper"
	"github.com/siherrmann/recall/model"
)

// envPrefix guards against unrelated environment variables leaking into the
// configuration. Nested keys use a double underscore, e.g.
// RECALL_ENSEMBLE__SEMANTIC maps to ensemble.semantic.
const envPrefix = "RECALL_"

// Load builds an engine configuration. A missing file path means defaults
// plus environment only.
func Load(configFilePath string) (*model.EngineConfig, error) {
	k := koanf.New(".")

	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, helper.NewError("load config file", err)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key string, value string) (string, any) {
			key = strings.TrimPrefix(key, envPrefix)
			return strings.ToLower(strings.ReplaceAll(key, "__", ".")), value
		},
	}), nil)
	if err != nil {
		return nil, helper.NewError("load environment", err)
	}

	config := model.DefaultEngineConfig()
	if err := k.Unmarshal("", config); err != nil {
		return nil, helper.NewError("unmarshal config", err)
	}

	if err := Validate(config); err != nil {
		return nil, helper.NewError("validate config", err)
	}

	return config, nil
}

// Validate rejects configurations the engine cannot run with
func Validate(config *model.EngineConfig) error {
	if !config.DefaultStrategy.Valid() {
		return fmt.Errorf("unknown default strategy %q", config.DefaultStrategy)
	}
	if config.DefaultMaxResults <= 0 {
		return fmt.Errorf("default max results %d must be positive", config.DefaultMaxResults)
	}
	if config.MaxResultsCap < config.DefaultMaxResults {
		return fmt.Errorf("max results cap %d is below the default %d", config.MaxResultsCap, config.DefaultMaxResults)
	}
	if config.SimilarityThreshold < 0 || config.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold %.2f must be in [0, 1]", config.SimilarityThreshold)
	}
	if config.RetrieverTimeout <= 0 {
		return fmt.Errorf("retriever timeout must be positive")
	}
	for name, weight := range map[string]float64{
		"vector_weight":           config.VectorWeight,
		"graph_weight":            config.GraphWeight,
		"ensemble.semantic":       config.Ensemble.Semantic,
		"ensemble.structural":     config.Ensemble.Structural,
		"ensemble.recency":        config.Ensemble.Recency,
		"ensemble.entity_overlap": config.Ensemble.EntityOverlap,
	} {
		if weight < 0 || weight > 1 {
			return fmt.Errorf("%s %.2f must be in [0, 1]", name, weight)
		}
	}
	return nil
}
