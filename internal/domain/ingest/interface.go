package ingest

import (
	"context"
)

// Usecase is the write-side ingestion interface.
type Usecase interface {
	// HandleFrame processes one raw transport frame. Malformed frames and
	// storage failures are logged and swallowed; ingestion never stops on a
	// single bad message.
	HandleFrame(ctx context.Context, raw []byte)

	// SeedSymbol writes the activation placeholder rows for a newly active
	// symbol: one zero BID level, one zero ASK level and an all-null
	// top-of-book row at the activation timestamp.
	SeedSymbol(ctx context.Context, symbol string) error
}
