// Package storage persists reconciliation state in SQLite: the
// fingerprint-keyed match state, the Benner document store and the run
// history. Writes are last-write-wins; no cross-process locking is
// attempted.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/statement"
)

// Storage provides SQLite-backed persistence. It implements Repository.
type Storage struct {
	db *sql.DB
}

var _ Repository = (*Storage)(nil)

// NewStorage opens (or creates) the database at dbPath and applies
// pending migrations. Use ":memory:" for tests.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Storage{db: db}
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// LoadMatchState reads the full persisted match state into memory.
// Full-scan by design: batches are thousands of rows, not millions.
func (s *Storage) LoadMatchState() (map[string]MatchState, error) {
	rows, err := s.db.Query(`SELECT fingerprint, matched, matched_at FROM match_state`)
	if err != nil {
		return nil, fmt.Errorf("loading match state: %w", err)
	}
	defer rows.Close()

	state := make(map[string]MatchState)
	for rows.Next() {
		var fp string
		var matched bool
		var matchedAt sql.NullString
		if err := rows.Scan(&fp, &matched, &matchedAt); err != nil {
			return nil, err
		}
		st := MatchState{Matched: matched}
		if matchedAt.Valid {
			if t, err := time.Parse(time.RFC3339, matchedAt.String); err == nil {
				st.MatchedAt = t
			}
		}
		state[fp] = st
	}
	return state, rows.Err()
}

// SaveMatchState upserts every currently matched line, replacing any
// prior entry with the same fingerprint. Entries for fingerprints not in
// the given batch are left untouched, so history from older months
// survives across batches covering different date ranges.
func (s *Storage) SaveMatchState(lines []*statement.Line) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO match_state (fingerprint, matched, matched_at)
		VALUES (?, 1, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, l := range lines {
		if !l.Matched || l.MatchedAt == nil {
			continue
		}
		if _, err := stmt.Exec(l.Fingerprint, l.MatchedAt.Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("saving match state for %s: %w", l.Fingerprint, err)
		}
	}
	return tx.Commit()
}

// GetDocument retrieves a document by id. Returns sql.ErrNoRows when
// absent.
func (s *Storage) GetDocument(id string) (*benner.Document, error) {
	row := s.db.QueryRow(`
		SELECT id, name, tax_id, doc_type, due_date, settlement_date, amount, status
		FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// UpsertDocuments applies an imported batch over the stored documents.
// Later imports with the same id overwrite prior field values; the
// status transition follows the downgrade policy.
func (s *Storage) UpsertDocuments(docs []*benner.Document, policy benner.DowngradePolicy) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	for _, doc := range docs {
		prior, err := getDocumentTx(tx, doc.ID)
		if err != nil && err != sql.ErrNoRows {
			_ = tx.Rollback()
			return err
		}

		merged := benner.ResolveUpsert(prior, doc, policy)

		var due, settled interface{}
		if !merged.DueDate.IsZero() {
			due = merged.DueDate.Format("2006-01-02")
		}
		if merged.SettlementDate != nil {
			settled = merged.SettlementDate.Format("2006-01-02")
		}

		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO documents
			(id, name, tax_id, doc_type, due_date, settlement_date, amount, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			merged.ID, merged.Name, merged.TaxID, merged.DocType,
			due, settled, merged.Amount.StringFixed(2), string(merged.Status),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upserting document %s: %w", doc.ID, err)
		}
	}
	return tx.Commit()
}

// ListDocuments returns documents, optionally filtered by status
// (empty status means all), ordered by id.
func (s *Storage) ListDocuments(status benner.Status) ([]*benner.Document, error) {
	query := `
		SELECT id, name, tax_id, doc_type, due_date, settlement_date, amount, status
		FROM documents`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*benner.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func getDocumentTx(tx *sql.Tx, id string) (*benner.Document, error) {
	row := tx.QueryRow(`
		SELECT id, name, tax_id, doc_type, due_date, settlement_date, amount, status
		FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

func scanDocument(row rowScanner) (*benner.Document, error) {
	var doc benner.Document
	var taxID, docType, due, settled sql.NullString
	var amount, status string

	if err := row.Scan(&doc.ID, &doc.Name, &taxID, &docType, &due, &settled, &amount, &status); err != nil {
		return nil, err
	}

	doc.TaxID = taxID.String
	doc.DocType = docType.String
	doc.Status = benner.Status(status)

	var err error
	doc.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount for document %s: %w", doc.ID, err)
	}

	if due.Valid {
		if t, err := time.Parse("2006-01-02", due.String); err == nil {
			doc.DueDate = t
		}
	}
	if settled.Valid {
		if t, err := time.Parse("2006-01-02", settled.String); err == nil {
			doc.SettlementDate = &t
		}
	}
	return &doc, nil
}

// SaveRun persists a run record.
func (s *Storage) SaveRun(run *ReconRun) error {
	records, _ := json.Marshal(run.Records)
	skipped, _ := json.Marshal(run.Skipped)
	diagnostics, _ := json.Marshal(run.Diagnostics)
	residualLines, _ := json.Marshal(run.ResidualLines)
	residualDocs, _ := json.Marshal(run.ResidualDocuments)

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO recon_runs
		(id, started_at, finished_at, statement_file, benner_file, dry_run,
		 line_count, document_count, matched_count,
		 residual_line_count, residual_document_count,
		 records_json, skipped_json, diagnostics_json,
		 residual_lines_json, residual_documents_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.Format(time.RFC3339),
		run.FinishedAt.Format(time.RFC3339),
		run.StatementFile,
		run.BennerFile,
		run.DryRun,
		run.LineCount,
		run.DocumentCount,
		run.MatchedCount,
		run.ResidualLineCount,
		run.ResidualDocumentCount,
		string(records),
		string(skipped),
		string(diagnostics),
		string(residualLines),
		string(residualDocs),
	)
	return err
}

// GetRun retrieves a run by id, including its match records and
// residual sets.
func (s *Storage) GetRun(id string) (*ReconRun, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, finished_at, statement_file, benner_file, dry_run,
		       line_count, document_count, matched_count,
		       residual_line_count, residual_document_count,
		       records_json, skipped_json, diagnostics_json,
		       residual_lines_json, residual_documents_json
		FROM recon_runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func (s *Storage) ListRuns(limit int) ([]*ReconRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, statement_file, benner_file, dry_run,
		       line_count, document_count, matched_count,
		       residual_line_count, residual_document_count,
		       records_json, skipped_json, diagnostics_json,
		       residual_lines_json, residual_documents_json
		FROM recon_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*ReconRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row rowScanner) (*ReconRun, error) {
	var run ReconRun
	var started, finished string
	var records, skipped, diagnostics, residualLines, residualDocs sql.NullString

	if err := row.Scan(
		&run.ID, &started, &finished, &run.StatementFile, &run.BennerFile, &run.DryRun,
		&run.LineCount, &run.DocumentCount, &run.MatchedCount,
		&run.ResidualLineCount, &run.ResidualDocumentCount,
		&records, &skipped, &diagnostics, &residualLines, &residualDocs,
	); err != nil {
		return nil, err
	}

	run.StartedAt, _ = time.Parse(time.RFC3339, started)
	run.FinishedAt, _ = time.Parse(time.RFC3339, finished)

	if records.Valid {
		_ = json.Unmarshal([]byte(records.String), &run.Records)
	}
	if skipped.Valid {
		_ = json.Unmarshal([]byte(skipped.String), &run.Skipped)
	}
	if diagnostics.Valid {
		_ = json.Unmarshal([]byte(diagnostics.String), &run.Diagnostics)
	}
	if residualLines.Valid {
		_ = json.Unmarshal([]byte(residualLines.String), &run.ResidualLines)
	}
	if residualDocs.Valid {
		_ = json.Unmarshal([]byte(residualDocs.String), &run.ResidualDocuments)
	}
	return &run, nil
}
