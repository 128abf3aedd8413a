// Package normalize canonicalizes raw money strings and free-text
// descriptions into comparable primitives.
//
// Amounts follow the Brazilian convention (comma as decimal separator,
// dot as thousands separator) but the parser also accepts the plain
// "1234.56" form exported by some banks. Unparseable cells are reported
// as errors so callers can degrade to zero without aborting a batch.
package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// currency symbols and whitespace variants stripped before parsing
var amountStripper = strings.NewReplacer(
	"R$", "",
	"$", "",
	" ", "",
	" ", "",
	"\t", "",
)

// ParseAmount converts a raw money string to a decimal.
//
// Handles: "1.234,56", "1234.56", "123,45", "(123,45)", "123,45-",
// "-R$ 50,00". A bare comma is always a decimal separator; a bare dot is
// a decimal separator only when exactly two digits follow it, otherwise
// it is treated as a thousands separator.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := amountStripper.Replace(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false

	// Parenthesized negatives: (123,45)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	// Leading or trailing minus sign
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	if strings.HasSuffix(s, "-") {
		negative = true
		s = s[:len(s)-1]
	}

	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q", raw)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// normalizeSeparators rewrites an unsigned numeric literal into the
// canonical dot-decimal form accepted by decimal.NewFromString.
func normalizeSeparators(s string) string {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		// The last separator wins as the decimal point; the other is a
		// thousands separator ("1.234,56" and "1,234.56" both work).
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		// Bare comma is a decimal separator; any earlier commas are
		// thousands separators ("1,234,56" is malformed but salvageable).
		last := strings.LastIndex(s, ",")
		s = strings.ReplaceAll(s[:last], ",", "") + "." + s[last+1:]
	case hasDot:
		// Bare dot is decimal only for the "N.DD" shape; "1.234" and
		// "1.234.567" are thousands-grouped integers.
		last := strings.LastIndex(s, ".")
		if strings.Count(s, ".") == 1 && len(s)-last-1 == 2 {
			break
		}
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}

// ApplySign forces an amount negative when the resolved sign marker for
// its row denotes a debit. Markers are resolved once at schema-detection
// time; this only interprets the cell value.
func ApplySign(d decimal.Decimal, marker string) decimal.Decimal {
	switch strings.ToUpper(strings.TrimSpace(marker)) {
	case "D", "DB", "DEB", "DEBITO", "DÉBITO":
		return d.Abs().Neg()
	case "C", "CR", "CRED", "CREDITO", "CRÉDITO":
		return d.Abs()
	}
	return d
}

// FormatAmount renders a decimal in the Brazilian display convention:
// "R$ 1.234,56", negatives as "-R$ 50,00". Round-trips through
// ParseAmount.
func FormatAmount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	return fmt.Sprintf("%sR$ %s,%s", sign, strings.Join(groups, "."), fracPart)
}
