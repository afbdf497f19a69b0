package depth

import (
	"context"

	v1 "github.com/2187Nick/schwab-market-depth/internal/domain/depth/v1"
)

// Usecase is the read-side snapshot reconstruction interface.
type Usecase interface {
	// Latest reconstructs the most recent snapshot for a symbol. A symbol
	// with no recorded events yields an empty-levels snapshot stamped with
	// the current wall-clock time.
	Latest(ctx context.Context, symbol string) (*v1.Snapshot, error)

	// History reconstructs the full snapshot series for a symbol,
	// down-sampled with a fixed stride when limit is positive and smaller
	// than the number of distinct timestamps.
	History(ctx context.Context, symbol string, limit int) ([]v1.Snapshot, error)

	// Symbols lists every symbol observed in the resolved partition.
	Symbols(ctx context.Context) ([]string, error)
}
