package snapshot

import (
	"context"
	"time"

	"github.com/2187Nick/schwab-market-depth/internal/domain/depth"
	v1 "github.com/2187Nick/schwab-market-depth/internal/domain/depth/v1"
	"github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/book"
	"github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/topofbook"
	"github.com/2187Nick/schwab-market-depth/pkg/errors"
	"github.com/2187Nick/schwab-market-depth/pkg/logger"
)

// Activator is the subscription-registry side effect of being queried:
// asking about a symbol is how tracking begins.
type Activator interface {
	Activate(symbol string) bool
}

// Usecase reconstructs order-book snapshots from the raw event log.
type Usecase struct {
	books    book.LevelRepository
	tops     topofbook.TopOfBookRepository
	registry Activator
	logger   logger.Interface
	now      func() time.Time
}

// NewUsecase creates a new snapshot usecase.
func NewUsecase(
	books book.LevelRepository,
	tops topofbook.TopOfBookRepository,
	registry Activator,
	logger logger.Interface,
) *Usecase {
	return &Usecase{
		books:    books,
		tops:     tops,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// Latest reconstructs the most recent snapshot for a symbol. A symbol with
// no recorded events returns an empty snapshot stamped with the current
// wall-clock time: tracking has been triggered, data is not there yet.
func (u *Usecase) Latest(ctx context.Context, symbol string) (*v1.Snapshot, error) {
	symbol = depth.NormalizeSymbol(symbol)
	u.activate(ctx, symbol)

	empty := &v1.Snapshot{
		Symbol:    symbol,
		Timestamp: u.now().UnixMilli(),
		Levels:    []book.PriceLevel{},
	}

	latest, err := u.books.LatestTimestamp(ctx, symbol)
	if err != nil {
		if errors.HasCode(err, errors.NoPartitionError) {
			return empty, nil
		}
		return nil, errors.TracerFromError(err)
	}
	if latest == nil {
		return empty, nil
	}

	levels, err := u.books.LevelsAt(ctx, symbol, *latest)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	if levels == nil {
		levels = []book.PriceLevel{}
	}

	snap := &v1.Snapshot{
		Symbol:    symbol,
		Timestamp: *latest,
		Levels:    levels,
	}

	top, err := u.tops.AtOrBefore(ctx, symbol, *latest)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	if top != nil {
		snap.LastPrice = top.LastPrice
		snap.LastSize = top.LastSize
		snap.UnderlyingPrice = top.UnderlyingPrice
	}

	return snap, nil
}

// History reconstructs the full snapshot series for a symbol. When limit is
// positive and smaller than the number of distinct timestamps, the series is
// down-sampled with a fixed floor-division stride, always force-including
// the final timestamp. Timestamps with zero levels are dropped.
func (u *Usecase) History(ctx context.Context, symbol string, limit int) ([]v1.Snapshot, error) {
	symbol = depth.NormalizeSymbol(symbol)
	u.activate(ctx, symbol)

	timestamps, err := u.books.DistinctTimestamps(ctx, symbol)
	if err != nil {
		if errors.HasCode(err, errors.NoPartitionError) {
			return []v1.Snapshot{}, nil
		}
		return nil, errors.TracerFromError(err)
	}
	if len(timestamps) == 0 {
		return []v1.Snapshot{}, nil
	}

	sampled := sampleTimestamps(timestamps, limit)

	snapshots := make([]v1.Snapshot, 0, len(sampled))
	for _, ts := range sampled {
		levels, err := u.books.LevelsAt(ctx, symbol, ts)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		if len(levels) == 0 {
			// Placeholder-only moments carry no ladder; drop them rather
			// than emitting empty elements.
			continue
		}

		snap := v1.Snapshot{
			Symbol:    symbol,
			Timestamp: ts,
			Levels:    levels,
		}

		top, err := u.tops.AtOrBefore(ctx, symbol, ts)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		if top != nil {
			snap.LastPrice = top.LastPrice
			snap.LastSize = top.LastSize
			snap.UnderlyingPrice = top.UnderlyingPrice
		}

		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

// Symbols lists every symbol observed in the resolved partition. The absence
// of any partition propagates to the caller here; symbol listing is the one
// read allowed to surface it.
func (u *Usecase) Symbols(ctx context.Context) ([]string, error) {
	symbols, err := u.books.DistinctSymbols(ctx)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	return symbols, nil
}

func (u *Usecase) activate(ctx context.Context, symbol string) {
	if symbol == "" {
		return
	}
	if u.registry.Activate(symbol) {
		u.logger.InfoContext(ctx, "symbol activated by query",
			logger.Field{Key: "symbol", Value: symbol})
	}
}

// sampleTimestamps applies the fixed-stride down-sampling: stride is the
// floor of count/limit, every stride-th timestamp is taken, and the final
// timestamp is unconditionally included. The exact stride formula is load
// bearing for output compatibility; do not replace it with an even
// resampling scheme.
func sampleTimestamps(timestamps []int64, limit int) []int64 {
	if limit <= 0 || len(timestamps) <= limit {
		return timestamps
	}

	stride := len(timestamps) / limit
	sampled := make([]int64, 0, limit+1)
	for i := 0; i < len(timestamps); i += stride {
		sampled = append(sampled, timestamps[i])
	}

	last := timestamps[len(timestamps)-1]
	if sampled[len(sampled)-1] != last {
		sampled = append(sampled, last)
	}
	return sampled
}
