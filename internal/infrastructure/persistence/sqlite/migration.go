package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

// Migrator manages database schema migrations
type Migrator struct {
	db *sql.DB
}

// NewMigrator creates a new database migrator
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Migrate applies the schema if it has not been applied yet
func (m *Migrator) Migrate() error {
	if err := m.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("create migrations table failed: %w", err)
	}

	applied, err := m.isSchemaApplied()
	if err != nil {
		return fmt.Errorf("check schema version failed: %w", err)
	}
	if applied {
		return nil
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range splitSQLStatements(schemaSQL) {
		if strings.Contains(stmt, "schema_migrations") {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("execute statement %d failed: %w", i, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
		1, "initial observational records schema",
	); err != nil {
		return fmt.Errorf("record migration failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction failed: %w", err)
	}
	return nil
}

// ensureMigrationsTable creates the schema_migrations table if needed
func (m *Migrator) ensureMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			description TEXT
		);
	`
	_, err := m.db.Exec(query)
	return err
}

// isSchemaApplied checks if the initial schema has been applied
func (m *Migrator) isSchemaApplied() (bool, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", 1).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// splitSQLStatements splits a SQL document into individual statements,
// dropping comment lines
func splitSQLStatements(doc string) []string {
	var clean []string
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		clean = append(clean, line)
	}

	var result []string
	for _, stmt := range strings.Split(strings.Join(clean, "\n"), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}
