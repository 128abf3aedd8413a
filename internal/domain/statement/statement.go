// Package statement models bank-statement lines and their stable
// identities.
//
// Each line gets a fingerprint derived from its own semantic fields only,
// so re-ingesting the same file reproduces the same fingerprints
// byte-for-byte. True duplicate rows (same date, amount and description
// within one batch) are disambiguated by an occurrence index before
// fingerprinting.
package statement

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBank is used when the source file has no recognizable bank column.
const DefaultBank = "PADRAO"

// Line is one bank transaction record.
type Line struct {
	Date               time.Time
	Amount             decimal.Decimal
	RawDescription     string
	CleanedDescription string
	Bank               string
	Occurrence         int
	Fingerprint        string

	Matched   bool
	MatchedAt *time.Time
}

// SetMatched marks the line matched at the given time.
func (l *Line) SetMatched(at time.Time) {
	l.Matched = true
	l.MatchedAt = &at
}

// ClearMatched resets the line to its unmatched default.
func (l *Line) ClearMatched() {
	l.Matched = false
	l.MatchedAt = nil
}

// AssignOccurrences sorts lines by (date, amount) with a stable sort and
// assigns each line its rank among rows sharing identical
// (date, amount, description), then computes fingerprints. Lines are
// mutated in place; the slice order after the call is the sorted order.
func AssignOccurrences(lines []*Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].Date.Equal(lines[j].Date) {
			return lines[i].Date.Before(lines[j].Date)
		}
		return lines[i].Amount.LessThan(lines[j].Amount)
	})

	counts := make(map[string]int, len(lines))
	for _, l := range lines {
		key := groupKey(l)
		l.Occurrence = counts[key]
		counts[key]++
		l.Fingerprint = ComputeFingerprint(l)
	}
}

func groupKey(l *Line) string {
	return l.Date.Format("2006-01-02") + "\x1f" + l.Amount.StringFixed(2) + "\x1f" + l.RawDescription
}

// ComputeFingerprint derives the stable identity hash of a line from its
// date, amount, raw description, bank label and occurrence index, in a
// fixed order and fixed string representation.
func ComputeFingerprint(l *Line) string {
	base := fmt.Sprintf("%s|%s|%s|%s|%d",
		l.Date.Format("2006-01-02"),
		l.Amount.StringFixed(2),
		l.RawDescription,
		l.Bank,
		l.Occurrence,
	)
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])
}
