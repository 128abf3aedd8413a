package normalize

import "strings"

// Payment-rail noise tokens stripped from descriptions. These appear in
// nearly every bank statement line and would otherwise dominate the
// similarity score.
var noiseTokens = map[string]bool{
	"PIX":           true,
	"TED":           true,
	"DOC":           true,
	"TRANSF":        true,
	"TRANSFERENCIA": true,
	"PGTO":          true,
	"PAGTO":         true,
	"PAGAMENTO":     true,
	"ENVIO":         true,
	"CREDITO":       true,
	"DEBITO":        true,
}

// accentFold maps Latin-1 accented letters onto their ASCII base so that
// "CRÉDITO" and "CREDITO" clean to the same token.
var accentFold = strings.NewReplacer(
	"Á", "A", "À", "A", "Â", "A", "Ã", "A", "Ä", "A",
	"É", "E", "È", "E", "Ê", "E", "Ë", "E",
	"Í", "I", "Ì", "I", "Î", "I", "Ï", "I",
	"Ó", "O", "Ò", "O", "Ô", "O", "Õ", "O", "Ö", "O",
	"Ú", "U", "Ù", "U", "Û", "U", "Ü", "U",
	"Ç", "C", "Ñ", "N",
)

// CleanText canonicalizes a free-text description for fuzzy comparison:
// uppercase, accents folded, everything outside [A-Z0-9 ] stripped, noise
// tokens removed, whitespace collapsed.
func CleanText(raw string) string {
	s := accentFold.Replace(strings.ToUpper(raw))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if !noiseTokens[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
