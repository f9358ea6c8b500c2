// Package database provides read-only PostgreSQL adapters feeding the
// retrievers: a pgvector similarity index and an entity-mention graph store.
// Ingestion and schema ownership live outside this module; LoadSchema only
// ensures the expected tables exist so adapters and tests can run against a
// fresh database.
package database

import (
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/siherrmann/recall/helper"
)

//go:embed schema.sql
var schemaSQL string

// Tables the adapters query
var requiredTables = []string{
	"chunks",
	"entities",
	"chunk_entities",
	"entity_edges",
}

// LoadSchema creates the expected tables, indexes and the vector extension
// if they do not exist yet
func LoadSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	if err != nil {
		return helper.NewError("execute schema sql", err)
	}

	exist, err := checkTables(db, requiredTables)
	if err != nil {
		return helper.NewError("check tables", err)
	}
	if !exist {
		return helper.NewError("check tables", fmt.Errorf("not all required tables were created"))
	}

	return nil
}

// checkTables verifies that all required tables exist in the database
func checkTables(db *sql.DB, tables []string) (bool, error) {
	var allExist bool
	for _, table := range tables {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = $1);`,
			table,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of table %s: %w", table, err)
		}
		if !allExist {
			break
		}
	}
	return allExist, nil
}
