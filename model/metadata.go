package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/siherrmann/recall/helper"
)

// Metadata represents JSONB metadata carried by candidates and results
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (m Metadata) Value() (driver.Value, error) {
	return m.Marshal()
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	return m.Unmarshal(value)
}

// Marshal converts Metadata to JSON bytes
func (m Metadata) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal converts JSON bytes or Metadata to Metadata
func (m *Metadata) Unmarshal(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}

	if s, ok := value.(Metadata); ok {
		*m = Metadata(s)
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, m)
}

// Timestamp returns the "timestamp" entry if present. Accepts time.Time,
// RFC 3339 strings and Unix seconds, the three shapes the stores produce.
func (m Metadata) Timestamp() (time.Time, bool) {
	if m == nil {
		return time.Time{}, false
	}
	switch v := m["timestamp"].(type) {
	case time.Time:
		return v, true
	case string:
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return ts, true
		}
	case float64:
		return time.Unix(int64(v), 0).UTC(), true
	case int64:
		return time.Unix(v, 0).UTC(), true
	}
	return time.Time{}, false
}

// Entities returns the "entities" entry if present, the entity mentions
// recorded for a chunk at ingestion time
func (m Metadata) Entities() []string {
	if m == nil {
		return nil
	}
	switch v := m["entities"].(type) {
	case []string:
		return v
	case []interface{}:
		entities := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				entities = append(entities, s)
			}
		}
		return entities
	}
	return nil
}
