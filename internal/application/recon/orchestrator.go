// Package recon orchestrates a reconciliation run end to end: ingest,
// persisted-state merge, matching, persistence and residual reporting.
//
// A run is single-threaded and runs to completion as one call. The
// persisted store is last-write-wins; concurrent runs against the same
// database are not coordinated.
package recon

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/matcher"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/statement"
	"github.com/financeiro-pro/reconcile-backend/internal/infrastructure/storage"
	"github.com/financeiro-pro/reconcile-backend/internal/ingest"
)

// Orchestrator wires ingestion, the matching engine and the repository.
type Orchestrator struct {
	repo      storage.Repository
	engine    *matcher.Engine
	downgrade benner.DowngradePolicy
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewOrchestrator creates an orchestrator. A nil logger falls back to
// slog.Default.
func NewOrchestrator(repo storage.Repository, engineCfg matcher.Config, downgrade benner.DowngradePolicy, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		repo:      repo,
		engine:    matcher.NewEngine(engineCfg),
		downgrade: downgrade,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Run executes one reconciliation pass over a statement file and a
// Benner file. Structural failures (unrecognizable columns, storage IO)
// abort with an error; data-quality problems degrade and surface in the
// summary diagnostics.
func (o *Orchestrator) Run(opts Options) (*Summary, error) {
	startedAt := o.now()
	runID := o.newID()

	o.logger.Info("Starting reconciliation run",
		"run_id", runID,
		"statement", opts.StatementPath,
		"benner", opts.BennerPath,
		"dry_run", opts.DryRun,
	)

	stmtBatch, err := ingest.ReadStatement(opts.StatementPath)
	if err != nil {
		return nil, err
	}

	bennerBatch, err := ingest.ReadBenner(opts.BennerPath)
	if err != nil {
		return nil, err
	}

	state, err := o.repo.LoadMatchState()
	if err != nil {
		return nil, fmt.Errorf("loading persisted match state: %w", err)
	}
	storage.MergeMatchState(stmtBatch.Lines, state)

	docs, err := o.mergeDocuments(bennerBatch.Documents)
	if err != nil {
		return nil, err
	}
	if !opts.DryRun {
		if err := o.repo.UpsertDocuments(bennerBatch.Documents, o.downgrade); err != nil {
			return nil, fmt.Errorf("upserting documents: %w", err)
		}
	}

	poolA := o.statementPool(stmtBatch.Lines, opts)
	poolB := pendingPool(docs)

	o.logger.Debug("Pools assembled",
		"statement_lines", len(poolA),
		"pending_documents", len(poolB),
		"previously_matched", len(stmtBatch.Lines)-len(poolA),
	)

	result := o.engine.Run(poolA, poolB, opts.Progress)
	residualLines, residualDocs := Residuals(poolA, poolB, result)

	if !opts.DryRun {
		if err := o.repo.SaveMatchState(stmtBatch.Lines); err != nil {
			return nil, fmt.Errorf("saving match state: %w", err)
		}
		if reconciled := consumedDocs(poolB, result); len(reconciled) > 0 {
			// Already merged against the store; write them back as-is.
			if err := o.repo.UpsertDocuments(reconciled, benner.DowngradeHonorIncoming); err != nil {
				return nil, fmt.Errorf("updating reconciled documents: %w", err)
			}
		}
	}

	summary := &Summary{
		RunID:             runID,
		Lines:             stmtBatch.Lines,
		Documents:         docs,
		Records:           result.Records,
		Skipped:           result.Skipped,
		ResidualLines:     residualLines,
		ResidualDocuments: residualDocs,
		Diagnostics:       append(stmtBatch.Diagnostics, bennerBatch.Diagnostics...),
	}

	run := &storage.ReconRun{
		ID:                    runID,
		StartedAt:             startedAt,
		FinishedAt:            o.now(),
		StatementFile:         opts.StatementPath,
		BennerFile:            opts.BennerPath,
		DryRun:                opts.DryRun,
		LineCount:             len(poolA),
		DocumentCount:         len(poolB),
		MatchedCount:          len(result.Records),
		ResidualLineCount:     len(residualLines),
		ResidualDocumentCount: len(residualDocs),
		Records:               result.Records,
		Skipped:               result.Skipped,
		Diagnostics:           summary.Diagnostics,
		ResidualLines:         fingerprints(residualLines),
		ResidualDocuments:     documentIDs(residualDocs),
	}
	if err := o.repo.SaveRun(run); err != nil {
		return nil, fmt.Errorf("saving run record: %w", err)
	}

	o.logger.Info("Reconciliation run finished",
		"run_id", runID,
		"matched", len(result.Records),
		"residual_lines", len(residualLines),
		"residual_documents", len(residualDocs),
		"skipped_documents", len(result.Skipped),
		"diagnostics", len(summary.Diagnostics),
	)

	return summary, nil
}

// mergeDocuments resolves each imported document against its stored
// prior, so the matching pool sees the effective post-upsert state even
// on dry runs.
func (o *Orchestrator) mergeDocuments(imported []*benner.Document) ([]*benner.Document, error) {
	out := make([]*benner.Document, 0, len(imported))
	for _, doc := range imported {
		prior, err := o.repo.GetDocument(doc.ID)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("reading document %s: %w", doc.ID, err)
		}
		out = append(out, benner.ResolveUpsert(prior, doc, o.downgrade))
	}
	return out, nil
}

// statementPool filters the ingested lines down to pool A: unmatched,
// within the optional month/bank scope.
func (o *Orchestrator) statementPool(lines []*statement.Line, opts Options) []*statement.Line {
	var pool []*statement.Line
	for _, l := range lines {
		if l.Matched {
			continue
		}
		if opts.MonthScope != "" && l.Date.Format("01/2006") != opts.MonthScope {
			continue
		}
		if opts.BankScope != "" && l.Bank != opts.BankScope {
			continue
		}
		pool = append(pool, l)
	}
	return pool
}

func pendingPool(docs []*benner.Document) []*benner.Document {
	var pool []*benner.Document
	for _, d := range docs {
		if d.Status == benner.StatusPending {
			pool = append(pool, d)
		}
	}
	return pool
}

func consumedDocs(docs []*benner.Document, result matcher.Result) []*benner.Document {
	var out []*benner.Document
	for _, d := range docs {
		if result.ConsumedDocs[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

func fingerprints(lines []*statement.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Fingerprint
	}
	return out
}

func documentIDs(docs []*benner.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
