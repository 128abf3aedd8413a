package matcher

import (
	"math"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// TokenSetRatio scores two cleaned descriptions 0-100 by their shared
// word tokens, regardless of order or exact substring alignment.
//
// Both texts are split into unique token sets; the score is the best
// pairwise ratio among the joined intersection and each side's
// intersection-plus-remainder string. Shared tokens therefore dominate
// the score even when one side carries extra words, which is what makes
// "PAGTO JOAO SILVA" vs "JOAO DA SILVA LTDA" score high.
func TokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var inter, restA, restB []string
	for tok := range ta {
		if tb[tok] {
			inter = append(inter, tok)
		} else {
			restA = append(restA, tok)
		}
	}
	for tok := range tb {
		if !ta[tok] {
			restB = append(restB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(restA)
	sort.Strings(restB)

	sect := strings.Join(inter, " ")
	combined1 := strings.TrimSpace(sect + " " + strings.Join(restA, " "))
	combined2 := strings.TrimSpace(sect + " " + strings.Join(restB, " "))

	best := ratio(combined1, combined2)
	if sect != "" {
		best = math.Max(best, ratio(sect, combined1))
		best = math.Max(best, ratio(sect, combined2))
	}
	return int(math.Round(best * 100))
}

// ratio is the normalized indel similarity of two strings in [0, 1].
func ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}
