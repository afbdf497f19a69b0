package v1

import (
	"github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/book"
)

// Snapshot is one reconstructed order-book state: the level ladder observed
// at one timestamp plus the nearest at-or-before top-of-book fields.
type Snapshot struct {
	Symbol          string
	Timestamp       int64
	Levels          []book.PriceLevel
	LastPrice       *float64
	LastSize        *float64
	UnderlyingPrice *float64
}
