package ingest

import (
	"fmt"
	"strings"
	"time"
)

// Column synonyms are evaluated in declared order against uppercased
// headers; a synonym matches by substring containment, so "DATA LANC."
// satisfies "DATA". The first hit wins.
var (
	statementDateSynonyms   = []string{"DATA"}
	statementAmountSynonyms = []string{"VALOR"}
	statementDescSynonyms   = []string{"HIST", "DESCR", "LANC"}
	statementBankSynonyms   = []string{"BANCO", "INSTIT"}
	statementSignSynonyms   = []string{"D/C", "DEB/CRED", "NATUREZA", "TIPO"}
)

// StatementSchema maps semantic fields to column indexes. Optional
// columns are -1 when absent. Sign semantics (a debit marker forcing a
// negative amount) are part of the schema, resolved once per file rather
// than re-derived per row.
type StatementSchema struct {
	Date   int
	Amount int
	Desc   int
	Bank   int
	Sign   int
}

// DetectStatementSchema resolves statement columns from headers. Date,
// amount and description are required; failure to identify any of them
// rejects the whole batch, since column identity errors would corrupt
// every derived row.
func DetectStatementSchema(headers []string) (StatementSchema, error) {
	schema := StatementSchema{
		Date:   findColumn(headers, statementDateSynonyms),
		Amount: findColumn(headers, statementAmountSynonyms),
		Desc:   findColumn(headers, statementDescSynonyms),
		Bank:   findColumn(headers, statementBankSynonyms),
		Sign:   findColumn(headers, statementSignSynonyms),
	}

	var missing []string
	if schema.Date < 0 {
		missing = append(missing, "date")
	}
	if schema.Amount < 0 {
		missing = append(missing, "amount")
	}
	if schema.Desc < 0 {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return schema, fmt.Errorf("unrecognized columns %v: could not identify %s",
			headers, strings.Join(missing, ", "))
	}
	return schema, nil
}

// findColumn returns the index of the first header matched by the
// synonym list, or -1.
func findColumn(headers []string, synonyms []string) int {
	for _, syn := range synonyms {
		for i, h := range headers {
			if strings.Contains(strings.ToUpper(strings.TrimSpace(h)), syn) {
				return i
			}
		}
	}
	return -1
}

// Date layouts tried in order; Brazilian exports are day-first.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"2006-01-02",
	"02-01-2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
