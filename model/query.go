package model

import "fmt"

// Filters is an opaque key to value map restricting retrieval.
// The "user_id" filter is expected by convention for tenant isolation
// but is the caller's responsibility, not enforced here.
type Filters map[string]interface{}

// UserID returns the tenant filter if set
func (f Filters) UserID() string {
	if f == nil {
		return ""
	}
	if id, ok := f["user_id"].(string); ok {
		return id
	}
	return ""
}

// Tags returns the tag filter if set
func (f Filters) Tags() []string {
	if f == nil {
		return nil
	}
	switch v := f["tags"].(type) {
	case []string:
		return v
	case []interface{}:
		tags := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
		return tags
	}
	return nil
}

// Query is the immutable input to a search.
// VectorWeight and GraphWeight are only meaningful for the hybrid strategy;
// nil means "use the configured default".
type Query struct {
	Text           string   `json:"text"`
	Strategy       Strategy `json:"strategy"`
	MaxResults     int      `json:"max_results"`
	VectorWeight   *float64 `json:"vector_weight,omitempty"`
	GraphWeight    *float64 `json:"graph_weight,omitempty"`
	IncludeRelated bool     `json:"include_related"`
	Filters        Filters  `json:"filters,omitempty"`
}

// Validate checks the query against the engine configuration.
// A zero MaxResults is replaced with the configured default.
func (q *Query) Validate(config *EngineConfig) error {
	if q == nil {
		return fmt.Errorf("query is nil")
	}
	if q.Text == "" {
		return fmt.Errorf("query text is empty")
	}
	if !q.Strategy.Valid() {
		return fmt.Errorf("unknown strategy %q", q.Strategy)
	}
	if q.MaxResults < 0 {
		return fmt.Errorf("max results %d is negative", q.MaxResults)
	}
	if q.MaxResults > config.MaxResultsCap {
		return fmt.Errorf("max results %d exceeds cap %d", q.MaxResults, config.MaxResultsCap)
	}
	if q.MaxResults == 0 {
		q.MaxResults = config.DefaultMaxResults
	}
	return nil
}
