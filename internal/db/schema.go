package db

import (
	"database/sql"
	"fmt"
)

// Migrations are applied after Schema; errors are ignored (column already exists).
var Migrations = []string{
	`ALTER TABLE summaries ADD COLUMN IF NOT EXISTS deep_analysis BOOLEAN DEFAULT FALSE`,
}

// Schema defines the DuckDB table schema
const Schema = `
-- Generated work day summaries
CREATE TABLE IF NOT EXISTS summaries (
    id VARCHAR NOT NULL,
    work_date VARCHAR NOT NULL,
    signature VARCHAR NOT NULL,
    provider_id VARCHAR,
    provider_name VARCHAR,
    verbosity VARCHAR,
    commit_count INTEGER,
    summary VARCHAR NOT NULL,
    deep_analysis BOOLEAN DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (work_date, signature)
);

`

// CreateSchema creates the tables and applies migrations.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	for _, m := range Migrations {
		_, _ = db.Exec(m)
	}
	return nil
}
