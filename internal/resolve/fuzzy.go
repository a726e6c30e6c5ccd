// Package resolve decides whether a candidate connection is already one of
// the company's investors.
package resolve

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns the Ratcliff/Obershelp similarity of a and b in [0,1],
// compared rune by rune. Two empty strings are identical. The measure is not
// symmetric: longest-match ties resolve to the earliest position in a.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
