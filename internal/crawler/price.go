package crawler

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var numericToken = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)?`)

// ParsePrice parses a displayed currency amount such as "1 249,00 $" or
// "49.99$". It strips non-breaking spaces, currency decoration and grouping
// spaces, converts comma decimals to a period and parses the leading numeric
// token. Anything unparseable yields nil, never an error.
func ParsePrice(text string) *float64 {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}
	t = strings.ReplaceAll(t, " ", " ")
	t = strings.ReplaceAll(t, "$", "")
	t = strings.ReplaceAll(t, " ", "")

	m := numericToken.FindString(t)
	if m == "" {
		return nil
	}
	m = strings.ReplaceAll(m, ",", ".")
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DiscountPct computes the percent reduction of sale from regular, rounded to
// two decimals. It returns nil unless both prices are present, regular is
// positive and sale does not exceed regular.
func DiscountPct(sale, regular *float64) *float64 {
	if sale == nil || regular == nil {
		return nil
	}
	if *regular <= 0 || *sale > *regular {
		return nil
	}
	pct := Round2((1 - *sale / *regular) * 100)
	return &pct
}
