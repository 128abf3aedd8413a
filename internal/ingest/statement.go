package ingest

import (
	"fmt"

	"github.com/financeiro-pro/reconcile-backend/internal/domain/normalize"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/statement"
)

// Diagnostic records a per-cell data-quality problem that was degraded
// rather than fatal.
type Diagnostic struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Problem string `json:"problem"`
}

// StatementBatch is the normalized result of ingesting one statement
// export: occurrence-indexed, fingerprinted lines plus diagnostics.
type StatementBatch struct {
	Lines       []*statement.Line
	Diagnostics []Diagnostic
}

// ParseStatement normalizes a raw statement table. Rows without a usable
// date are dropped with a diagnostic (no fingerprint can be derived);
// unparseable amounts degrade to zero with a diagnostic, which
// effectively excludes the line from value matching.
func ParseStatement(tbl *Table) (*StatementBatch, error) {
	schema, err := DetectStatementSchema(tbl.Headers)
	if err != nil {
		return nil, err
	}

	batch := &StatementBatch{}
	for i, row := range tbl.Rows {
		rowNum := i + 2 // 1-based, after the header row

		rawDate := cell(row, schema.Date)
		date, err := parseDate(rawDate)
		if err != nil {
			batch.Diagnostics = append(batch.Diagnostics, Diagnostic{
				Row: rowNum, Field: "date", Value: rawDate, Problem: "unparseable date, row dropped",
			})
			continue
		}

		rawAmount := cell(row, schema.Amount)
		amount, err := normalize.ParseAmount(rawAmount)
		if err != nil {
			batch.Diagnostics = append(batch.Diagnostics, Diagnostic{
				Row: rowNum, Field: "amount", Value: rawAmount, Problem: "unparseable amount, degraded to zero",
			})
		}
		if schema.Sign >= 0 {
			amount = normalize.ApplySign(amount, cell(row, schema.Sign))
		}

		bank := cell(row, schema.Bank)
		if bank == "" {
			bank = statement.DefaultBank
		}

		desc := cell(row, schema.Desc)
		batch.Lines = append(batch.Lines, &statement.Line{
			Date:               date,
			Amount:             amount,
			RawDescription:     desc,
			CleanedDescription: normalize.CleanText(desc),
			Bank:               bank,
		})
	}

	statement.AssignOccurrences(batch.Lines)
	return batch, nil
}

// ReadStatement loads and normalizes a statement file.
func ReadStatement(path string) (*StatementBatch, error) {
	tbl, err := ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("reading statement %s: %w", path, err)
	}
	return ParseStatement(tbl)
}
