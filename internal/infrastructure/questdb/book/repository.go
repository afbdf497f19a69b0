package book

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/partition"
	"github.com/2187Nick/schwab-market-depth/pkg/errors"
	"github.com/2187Nick/schwab-market-depth/pkg/questdb"
)

// Repository persists and reads book-level events. Rows are append-only:
// a new book state is a new (symbol, ts) group, never a mutation.
type Repository struct {
	client questdb.Client
	days   partition.Provider
}

// NewRepository creates a new book-level repository.
func NewRepository(client questdb.Client, days partition.Provider) *Repository {
	return &Repository{
		client: client,
		days:   days,
	}
}

// AppendLevels inserts one row per level for a single side of one book update.
// It joins the transaction carried by ctx, so all rows of one decoded message
// commit or roll back together.
func (r *Repository) AppendLevels(ctx context.Context, symbol string, ts int64, side string, levels []Level) error {
	if len(levels) == 0 {
		return nil
	}

	day, err := r.days.Day(ctx)
	if err != nil {
		return err
	}

	_, err = r.client.CopyFrom(
		ctx,
		pgx.Identifier{partition.BookTable(day)},
		[]string{"symbol", "ts", "price", "quantity", "side"},
		pgx.CopyFromSlice(len(levels), func(i int) ([]any, error) {
			return []any{symbol, ts, levels[i].Price, levels[i].Quantity, side}, nil
		}),
	)
	if err != nil {
		return errors.WrapCoded(errors.StoreWriteError,
			fmt.Sprintf("failed to append %s levels for %s", side, symbol), err)
	}

	return nil
}

// LatestTimestamp returns the maximum timestamp recorded for the symbol in
// the resolved partition, or nil when the symbol has no rows.
func (r *Repository) LatestTimestamp(ctx context.Context, symbol string) (*int64, error) {
	day, err := r.days.Day(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT max(ts) FROM %s WHERE symbol = $1", partition.BookTable(day))

	var ts *int64
	if err := r.client.QueryRow(ctx, query, symbol).Scan(&ts); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest timestamp: %w", err)
	}

	return ts, nil
}

// LevelsAt returns all levels for the exact (symbol, ts) group, asks ascending
// by price followed by bids descending, the conventional ladder order.
func (r *Repository) LevelsAt(ctx context.Context, symbol string, ts int64) ([]PriceLevel, error) {
	day, err := r.days.Day(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT price, quantity, side
		FROM %s
		WHERE symbol = $1 AND ts = $2
		ORDER BY CASE WHEN side = 'ASK' THEN price ELSE -price END`,
		partition.BookTable(day))

	rows, err := r.client.Query(ctx, query, symbol, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to query levels: %w", err)
	}
	defer rows.Close()

	var levels []PriceLevel
	for rows.Next() {
		var level PriceLevel
		if err := rows.Scan(&level.Price, &level.Quantity, &level.Side); err != nil {
			return nil, fmt.Errorf("failed to scan level: %w", err)
		}
		levels = append(levels, level)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating levels: %w", err)
	}

	return levels, nil
}

// DistinctTimestamps returns all distinct timestamps for a symbol, ascending.
func (r *Repository) DistinctTimestamps(ctx context.Context, symbol string) ([]int64, error) {
	day, err := r.days.Day(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT DISTINCT ts
		FROM %s
		WHERE symbol = $1
		ORDER BY ts`, partition.BookTable(day))

	rows, err := r.client.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query timestamps: %w", err)
	}
	defer rows.Close()

	var timestamps []int64
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan timestamp: %w", err)
		}
		timestamps = append(timestamps, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timestamps: %w", err)
	}

	return timestamps, nil
}

// DistinctSymbols returns every symbol observed in the resolved partition.
func (r *Repository) DistinctSymbols(ctx context.Context) ([]string, error) {
	day, err := r.days.Day(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT DISTINCT symbol FROM %s", partition.BookTable(day))

	rows, err := r.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}

	return symbols, nil
}
