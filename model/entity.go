package model

import (
	"github.com/google/uuid"
)

// Entity represents a named entity (person, organization, location, concept)
// extracted from query or candidate text
type Entity struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"entity_type"`
	Metadata Metadata  `json:"metadata,omitempty"`
}

// EntityNames returns the distinct names in a list of entities
func EntityNames(entities []*Entity) []string {
	seen := make(map[string]bool)
	var names []string
	for _, entity := range entities {
		if entity == nil || entity.Name == "" || seen[entity.Name] {
			continue
		}
		seen[entity.Name] = true
		names = append(names, entity.Name)
	}
	return names
}
