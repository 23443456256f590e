package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Best-effort numeric extraction out of scraped page text. Every helper
// returns (zero, false) on garbage instead of failing; callers decide
// whether absence is fatal.

var (
	// the suffix must end at a word boundary so "to"/"total" after an
	// amount is not read as a trillion multiplier
	moneyRe   = regexp.MustCompile(`(?i)[$€£]?\s*([0-9][0-9,]*(?:\.[0-9]+)?)(?:\s?([kmbt])\b)?`)
	percentRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*%`)
	countRe   = regexp.MustCompile(`([0-9][0-9,]*)`)
)

var suffixMultiplier = map[string]decimal.Decimal{
	"k": decimal.New(1, 3),
	"m": decimal.New(1, 6),
	"b": decimal.New(1, 9),
	"t": decimal.New(1, 12),
}

// Money pulls the first monetary amount out of a text fragment. Currency
// symbols and comma separators are stripped; an optional K/M/B/T suffix
// applies the matching power-of-ten multiplier.
func Money(s string) (decimal.Decimal, bool) {
	m := moneyRe.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, false
	}
	return parseAmount(m[1], m[2])
}

// MoneyAll returns every monetary amount found in the fragment, in order.
func MoneyAll(s string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, m := range moneyRe.FindAllStringSubmatch(s, -1) {
		if v, ok := parseAmount(m[1], m[2]); ok {
			out = append(out, v)
		}
	}
	return out
}

func parseAmount(digits, suffix string) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(strings.ReplaceAll(digits, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	if suffix != "" {
		v = v.Mul(suffixMultiplier[strings.ToLower(suffix)])
	}
	return v, true
}

// Percent pulls the first percentage out of the fragment and returns it as
// a fraction ("35%" -> 0.35).
func Percent(s string) (decimal.Decimal, bool) {
	m := percentRe.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return v.Div(decimal.New(100, 0)), true
}

// Count pulls the first non-negative integer out of the fragment.
func Count(s string) (int, bool) {
	m := countRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
