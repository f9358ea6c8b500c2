package model

// Candidate is a retrieved item before ranking. The two concrete types keep
// their source-specific fields to themselves; the ranking engine type-switches
// where it needs more than the shared accessors.
type Candidate interface {
	CandidateID() string
	Body() string
	Source() SourceType
	RawScore() float64
	Meta() Metadata
}

// VectorCandidate is a chunk surfaced by nearest-neighbor search.
// Similarity is cosine similarity in [0, 1], higher is better.
type VectorCandidate struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	Similarity float64  `json:"similarity"`
	Metadata   Metadata `json:"metadata,omitempty"`
}

func (c *VectorCandidate) CandidateID() string { return c.ID }
func (c *VectorCandidate) Body() string        { return c.Content }
func (c *VectorCandidate) Source() SourceType  { return SourceVector }
func (c *VectorCandidate) RawScore() float64   { return c.Similarity }
func (c *VectorCandidate) Meta() Metadata      { return c.Metadata }

// GraphRelationship describes one entity match behind a graph candidate
type GraphRelationship struct {
	MatchedEntity   string   `json:"matched_entity"`
	RelatedEntities []string `json:"related_entities,omitempty"`
	Distance        int      `json:"distance"`
}

// GraphCandidate is a chunk surfaced by entity traversal. Score is an
// unbounded accumulation of matched entities damped by traversal distance.
type GraphCandidate struct {
	ID            string              `json:"id"`
	Content       string              `json:"content"`
	Score         float64             `json:"score"`
	Metadata      Metadata            `json:"metadata,omitempty"`
	Relationships []GraphRelationship `json:"graph_relationships,omitempty"`
}

func (c *GraphCandidate) CandidateID() string { return c.ID }
func (c *GraphCandidate) Body() string        { return c.Content }
func (c *GraphCandidate) Source() SourceType  { return SourceGraph }
func (c *GraphCandidate) RawScore() float64   { return c.Score }
func (c *GraphCandidate) Meta() Metadata      { return c.Metadata }

// MatchedEntities returns the distinct entities that matched this candidate
func (c *GraphCandidate) MatchedEntities() []string {
	seen := make(map[string]bool)
	var entities []string
	for _, rel := range c.Relationships {
		if rel.MatchedEntity == "" || seen[rel.MatchedEntity] {
			continue
		}
		seen[rel.MatchedEntity] = true
		entities = append(entities, rel.MatchedEntity)
	}
	return entities
}
