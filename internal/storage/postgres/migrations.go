package postgres

import (
	_ "embed"
	"fmt"
)

//go:embed migrations/01_create_schema.up.sql
var createSchemaUp string

// Migrate creates the portal tables if they do not exist yet.
func (db *DB) Migrate() error {
	db.log.Debug("running portal migrations")

	if _, err := db.conn.Exec(createSchemaUp); err != nil {
		return fmt.Errorf("apply schema migration: %w", err)
	}

	db.log.Debug("portal migrations finished")
	return nil
}
