package depth

import (
	"strings"
)

// NormalizeSymbol turns a path-escaped symbol into its canonical form:
// literal %20 sequences become spaces and surrounding whitespace is trimmed.
// Option symbols contain embedded spaces, so escaping shows up in practice.
func NormalizeSymbol(symbol string) string {
	return strings.TrimSpace(strings.ReplaceAll(symbol, "%20", " "))
}
