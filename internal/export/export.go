// Package export writes the outcome of a reconciliation run to CSV or
// XLSX files for review outside the system.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/financeiro-pro/reconcile-backend/internal/application/recon"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/benner"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/matcher"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/normalize"
	"github.com/financeiro-pro/reconcile-backend/internal/domain/statement"
)

const dateLayout = "02/01/2006"

var (
	matchedHeader = []string{
		"Data", "Descrição", "Banco", "Valor",
		"Documento", "Favorecido", "Valor Documento", "Score", "Diferença",
	}
	residualLineHeader = []string{"Data", "Descrição", "Banco", "Valor"}
	residualDocHeader  = []string{
		"Documento", "Favorecido", "CNPJ/CPF", "Tipo", "Vencimento", "Valor",
	}
)

// Write exports a run summary. The format follows the file extension:
// .xlsx produces one workbook with a sheet per section, .csv produces
// one file per section next to the given path.
func Write(path string, s *recon.Summary) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeXLSX(path, s)
	case ".csv":
		return writeCSVFiles(path, s)
	default:
		return fmt.Errorf("unsupported export format %q (use .csv or .xlsx)", filepath.Ext(path))
	}
}

// MatchedRows renders the accepted pairings, one row per record, in
// record order.
func MatchedRows(s *recon.Summary) [][]string {
	lines := linesByFingerprint(s.Lines)
	docs := docsByID(s.Documents)

	rows := make([][]string, 0, len(s.Records))
	for _, rec := range s.Records {
		l := lines[rec.StatementFingerprint]
		d := docs[rec.DocumentID]
		if l == nil || d == nil {
			continue
		}
		rows = append(rows, []string{
			l.Date.Format(dateLayout),
			l.RawDescription,
			l.Bank,
			normalize.FormatAmount(l.Amount),
			d.ID,
			d.Name,
			normalize.FormatAmount(d.Amount),
			scoreLabel(rec.Score),
			normalize.FormatAmount(rec.ValueDelta),
		})
	}
	return rows
}

// ResidualLineRows renders the unmatched statement lines.
func ResidualLineRows(lines []*statement.Line) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{
			l.Date.Format(dateLayout),
			l.RawDescription,
			l.Bank,
			normalize.FormatAmount(l.Amount),
		})
	}
	return rows
}

// ResidualDocRows renders the pending documents left without a match.
func ResidualDocRows(docs []*benner.Document) [][]string {
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		due := ""
		if !d.DueDate.IsZero() {
			due = d.DueDate.Format(dateLayout)
		}
		rows = append(rows, []string{
			d.ID,
			d.Name,
			d.TaxID,
			d.DocType,
			due,
			normalize.FormatAmount(d.Amount),
		})
	}
	return rows
}

func scoreLabel(score int) string {
	if score == matcher.ScoreUniqueValue {
		return "valor unico"
	}
	return strconv.Itoa(score)
}

func writeXLSX(path string, s *recon.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"Conciliados", matchedHeader, MatchedRows(s)},
		{"Residual Extrato", residualLineHeader, ResidualLineRows(s.ResidualLines)},
		{"Residual Benner", residualDocHeader, ResidualDocRows(s.ResidualDocuments)},
		{"Resumo", []string{"Indicador", "Valor"}, summaryRows(s)},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return fmt.Errorf("creating sheet %s: %w", sheet.name, err)
			}
		}
		if err := fillSheet(f, sheet.name, sheet.header, sheet.rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func fillSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("writing sheet %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

func summaryRows(s *recon.Summary) [][]string {
	matchedSum, residualLineSum, residualDocSum := sums(s)
	return [][]string{
		{"Linhas conciliadas", strconv.Itoa(s.MatchedCount())},
		{"Valor conciliado", normalize.FormatAmount(matchedSum)},
		{"Linhas residuais", strconv.Itoa(len(s.ResidualLines))},
		{"Valor residual extrato", normalize.FormatAmount(residualLineSum)},
		{"Documentos residuais", strconv.Itoa(len(s.ResidualDocuments))},
		{"Valor residual Benner", normalize.FormatAmount(residualDocSum)},
	}
}

func sums(s *recon.Summary) (matched, residualLines, residualDocs decimal.Decimal) {
	lines := linesByFingerprint(s.Lines)
	for _, rec := range s.Records {
		if l := lines[rec.StatementFingerprint]; l != nil {
			matched = matched.Add(l.Amount.Abs())
		}
	}
	for _, l := range s.ResidualLines {
		residualLines = residualLines.Add(l.Amount.Abs())
	}
	for _, d := range s.ResidualDocuments {
		residualDocs = residualDocs.Add(d.Amount)
	}
	return matched, residualLines, residualDocs
}

// writeCSVFiles writes one CSV per section, suffixing the base name:
// relatorio.csv becomes relatorio_conciliados.csv and so on.
func writeCSVFiles(path string, s *recon.Summary) error {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	files := []struct {
		suffix string
		header []string
		rows   [][]string
	}{
		{"conciliados", matchedHeader, MatchedRows(s)},
		{"residual_extrato", residualLineHeader, ResidualLineRows(s.ResidualLines)},
		{"residual_benner", residualDocHeader, ResidualDocRows(s.ResidualDocuments)},
	}
	for _, file := range files {
		name := fmt.Sprintf("%s_%s.csv", base, file.suffix)
		if err := writeCSV(name, file.header, file.rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

func linesByFingerprint(lines []*statement.Line) map[string]*statement.Line {
	out := make(map[string]*statement.Line, len(lines))
	for _, l := range lines {
		out[l.Fingerprint] = l
	}
	return out
}

func docsByID(docs []*benner.Document) map[string]*benner.Document {
	out := make(map[string]*benner.Document, len(docs))
	for _, d := range docs {
		out[d.ID] = d
	}
	return out
}
