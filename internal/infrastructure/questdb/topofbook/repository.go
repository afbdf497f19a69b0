package topofbook

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/partition"
	"github.com/2187Nick/schwab-market-depth/pkg/errors"
	"github.com/2187Nick/schwab-market-depth/pkg/questdb"
)

// Repository persists and reads top-of-book events.
type Repository struct {
	client questdb.Client
	days   partition.Provider
}

// NewRepository creates a new top-of-book repository.
func NewRepository(client questdb.Client, days partition.Provider) *Repository {
	return &Repository{
		client: client,
		days:   days,
	}
}

// Append inserts one row when at least one value field is present, and is a
// no-op otherwise. It joins the transaction carried by ctx.
func (r *Repository) Append(ctx context.Context, row *TopOfBook) error {
	if !row.HasValues() {
		return nil
	}
	return r.insert(ctx, row)
}

// AppendPlaceholder inserts the one synthetic all-null row written at symbol
// activation time.
func (r *Repository) AppendPlaceholder(ctx context.Context, symbol string, ts int64) error {
	return r.insert(ctx, &TopOfBook{Symbol: symbol, Ts: ts})
}

func (r *Repository) insert(ctx context.Context, row *TopOfBook) error {
	day, err := r.days.Day(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (symbol, ts, last_price, last_size, underlying_price)
		VALUES ($1, $2, $3, $4, $5)`, partition.TopOfBookTable(day))

	err = r.client.Exec(ctx, query,
		row.Symbol, row.Ts, row.LastPrice, row.LastSize, row.UnderlyingPrice)
	if err != nil {
		return errors.WrapCoded(errors.StoreWriteError,
			fmt.Sprintf("failed to append top of book for %s", row.Symbol), err)
	}

	return nil
}

// AtOrBefore returns the most recent row with ts' <= ts for the symbol, or
// nil when none exists.
func (r *Repository) AtOrBefore(ctx context.Context, symbol string, ts int64) (*TopOfBook, error) {
	day, err := r.days.Day(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT symbol, ts, last_price, last_size, underlying_price
		FROM %s
		WHERE symbol = $1 AND ts <= $2
		ORDER BY ts DESC
		LIMIT 1`, partition.TopOfBookTable(day))

	row := &TopOfBook{}
	err = r.client.QueryRow(ctx, query, symbol, ts).Scan(
		&row.Symbol, &row.Ts, &row.LastPrice, &row.LastSize, &row.UnderlyingPrice)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get top of book: %w", err)
	}

	return row, nil
}
