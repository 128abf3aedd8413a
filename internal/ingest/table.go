// Package ingest reads raw statement and Benner exports (CSV or XLSX)
// and normalizes them into domain records.
//
// Column identity is resolved once per file from a declarative, ordered
// list of header synonyms. A file whose required columns cannot be
// identified is rejected as a whole; per-cell problems degrade to safe
// defaults and are collected as diagnostics instead of aborting the
// batch.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a raw tabular input: one header row plus data rows.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ReadTable loads a file by extension: .csv, .xlsx or .xlsm.
func ReadTable(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVFile(path)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func readCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses CSV content. Rows with a deviating field count are kept
// as-is; downstream cell access is bounds-checked.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	return &Table{Headers: records[0], Rows: records[1:]}, nil
}

// ReadXLSX reads the first sheet of a workbook, first row as headers.
func ReadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	return &Table{Headers: rows[0], Rows: rows[1:]}, nil
}

// cell returns the trimmed value at idx, or "" when the row is short or
// the column is absent (idx < 0).
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
