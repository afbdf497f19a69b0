package depth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "SPY", expected: "SPY"},
		{name: "escaped spaces", input: "SPY%20%20%20250415C00500000", expected: "SPY   250415C00500000"},
		{name: "surrounding whitespace", input: "  SPY ", expected: "SPY"},
		{name: "inner spaces preserved", input: "SPY   250415C00500000", expected: "SPY   250415C00500000"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeSymbol(tc.input))
		})
	}
}
