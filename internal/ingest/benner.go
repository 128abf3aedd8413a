package ingest

import (
	"fmt"
	"strings"

	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/normalize"
)

// Benner column synonyms, evaluated in order. The id column falls back
// to the document number when no dedicated id column exists.
var (
	bennerIDSynonyms      = []string{"ID_BENNER"}
	bennerNumberSynonyms  = []string{"NUMERO", "NÚMERO"}
	bennerNameSynonyms    = []string{"NOME", "FAVORECIDO"}
	bennerTaxIDSynonyms   = []string{"CNPJ", "CPF"}
	bennerDocTypeSynonyms = []string{"TIPO DO DOC", "TIPO"}
	bennerDueDateSynonyms = []string{"VENCIMENTO"}
	bennerSettledSynonyms = []string{"BAIXA"}
	bennerAmountSynonyms  = []string{"VALOR TOTAL", "VALOR"}
)

// BennerBatch is the normalized result of ingesting one Benner export.
type BennerBatch struct {
	Documents   []*benner.Document
	Diagnostics []Diagnostic
}

// ParseBenner normalizes a raw Benner table. A document id (or number)
// column, a counterparty name column and a value column are required;
// anything else is optional. Status derives from the settlement date.
func ParseBenner(tbl *Table) (*BennerBatch, error) {
	idCol := findColumn(tbl.Headers, bennerIDSynonyms)
	numberCol := findColumn(tbl.Headers, bennerNumberSynonyms)
	nameCol := findColumn(tbl.Headers, bennerNameSynonyms)
	amountCol := findColumn(tbl.Headers, bennerAmountSynonyms)

	var missing []string
	if idCol < 0 && numberCol < 0 {
		missing = append(missing, "document id/number")
	}
	if nameCol < 0 {
		missing = append(missing, "counterparty name")
	}
	if amountCol < 0 {
		missing = append(missing, "value")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unrecognized columns %v: could not identify %s",
			tbl.Headers, strings.Join(missing, ", "))
	}

	taxCol := findColumn(tbl.Headers, bennerTaxIDSynonyms)
	typeCol := findColumn(tbl.Headers, bennerDocTypeSynonyms)
	dueCol := findColumn(tbl.Headers, bennerDueDateSynonyms)
	settledCol := findColumn(tbl.Headers, bennerSettledSynonyms)

	batch := &BennerBatch{}
	for i, row := range tbl.Rows {
		rowNum := i + 2

		id := cell(row, idCol)
		if id == "" {
			id = cell(row, numberCol)
		}
		if id == "" {
			batch.Diagnostics = append(batch.Diagnostics, Diagnostic{
				Row: rowNum, Field: "id", Problem: "missing document id, row dropped",
			})
			continue
		}

		rawAmount := cell(row, amountCol)
		amount, err := normalize.ParseAmount(rawAmount)
		if err != nil {
			batch.Diagnostics = append(batch.Diagnostics, Diagnostic{
				Row: rowNum, Field: "amount", Value: rawAmount, Problem: "unparseable amount, degraded to zero",
			})
		}

		doc := &benner.Document{
			ID:      id,
			Name:    cell(row, nameCol),
			TaxID:   cell(row, taxCol),
			DocType: cell(row, typeCol),
			Amount:  amount.Abs(), // settlement values are unsigned
		}
		doc.CleanedDescription = normalize.CleanText(doc.Name)

		if raw := cell(row, dueCol); raw != "" {
			if due, err := parseDate(raw); err == nil {
				doc.DueDate = due
			} else {
				batch.Diagnostics = append(batch.Diagnostics, Diagnostic{
					Row: rowNum, Field: "due_date", Value: raw, Problem: "unparseable date, ignored",
				})
			}
		}
		if raw := cell(row, settledCol); raw != "" {
			if settled, err := parseDate(raw); err == nil {
				doc.SettlementDate = &settled
			} else {
				batch.Diagnostics = append(batch.Diagnostics, Diagnostic{
					Row: rowNum, Field: "settlement_date", Value: raw, Problem: "unparseable date, ignored",
				})
			}
		}
		doc.DeriveStatus()

		batch.Documents = append(batch.Documents, doc)
	}

	return batch, nil
}

// ReadBenner loads and normalizes a Benner file.
func ReadBenner(path string) (*BennerBatch, error) {
	tbl, err := ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("reading benner %s: %w", path, err)
	}
	return ParseBenner(tbl)
}
