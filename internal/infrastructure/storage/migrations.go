package storage

import (
	"database/sql"
	"fmt"
)

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up:      migration001InitialSchema,
	},
	{
		Version: 2,
		Name:    "add_recon_runs_table",
		Up:      migration002AddReconRunsTable,
	},
	{
		Version: 3,
		Name:    "add_document_status_index",
		Up:      migration003AddDocumentStatusIndex,
	},
}

// runMigrations executes all pending migrations in order.
func (s *Storage) runMigrations() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("reading applied migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range allMigrations {
		if applied[m.Version] {
			continue
		}
		if err := s.applyMigration(m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func (s *Storage) applyMigration(m Migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := m.Up(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`,
		m.Version, m.Name,
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func migration001InitialSchema(tx *sql.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE match_state (
			fingerprint TEXT PRIMARY KEY,
			matched INTEGER NOT NULL,
			matched_at TEXT
		)`); err != nil {
		return err
	}

	_, err := tx.Exec(`
		CREATE TABLE documents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			tax_id TEXT,
			doc_type TEXT,
			due_date TEXT,
			settlement_date TEXT,
			amount TEXT NOT NULL,
			status TEXT NOT NULL
		)`)
	return err
}

func migration002AddReconRunsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE recon_runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			statement_file TEXT,
			benner_file TEXT,
			dry_run INTEGER NOT NULL DEFAULT 0,
			line_count INTEGER NOT NULL,
			document_count INTEGER NOT NULL,
			matched_count INTEGER NOT NULL,
			residual_line_count INTEGER NOT NULL,
			residual_document_count INTEGER NOT NULL,
			records_json TEXT,
			skipped_json TEXT,
			diagnostics_json TEXT,
			residual_lines_json TEXT,
			residual_documents_json TEXT
		)`)
	return err
}

func migration003AddDocumentStatusIndex(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE INDEX idx_documents_status ON documents(status)`)
	return err
}
