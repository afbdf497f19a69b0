package partition

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/2187Nick/schwab-market-depth/pkg/errors"
	"github.com/2187Nick/schwab-market-depth/pkg/questdb"
)

// DayLayout is the partition identifier format. Identifiers sort
// lexicographically in date order, which the fallback relies on.
const DayLayout = "20060102"

const (
	bookTablePrefix      = "book_events_"
	topOfBookTablePrefix = "top_of_book_"
)

// BookTable returns the book-level table name for a partition day.
func BookTable(day string) string {
	return bookTablePrefix + day
}

// TopOfBookTable returns the top-of-book table name for a partition day.
func TopOfBookTable(day string) string {
	return topOfBookTablePrefix + day
}

// Provider resolves the partition day an operation should address.
//
//go:generate mockgen -source=partition.go -destination=mock/partition_mock.go -package=mock
type Provider interface {
	Day(ctx context.Context) (string, error)
}

// Resolver resolves the read-side partition on every call: today's tables
// when they exist, otherwise the most recent existing day. Long-lived
// readers must not cache the result across operations, so Resolver doesn't.
type Resolver struct {
	client questdb.Client
	now    func() time.Time
}

// NewResolver creates a read-side partition resolver.
func NewResolver(client questdb.Client) *Resolver {
	return &Resolver{client: client, now: time.Now}
}

// Day returns the partition day to read from.
func (r *Resolver) Day(ctx context.Context) (string, error) {
	days, err := r.listDays(ctx)
	if err != nil {
		return "", err
	}
	if len(days) == 0 {
		return "", errors.NewCodedError(errors.NoPartitionError, "no day partition exists")
	}

	today := r.now().Format(DayLayout)
	for _, d := range days {
		if d == today {
			return today, nil
		}
	}

	// Fall back to the most recent existing partition.
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days[0], nil
}

// listDays reads partition days from the QuestDB table catalog.
func (r *Resolver) listDays(ctx context.Context) ([]string, error) {
	rows, err := r.client.Query(ctx,
		"SELECT table_name FROM tables() WHERE table_name LIKE $1", bookTablePrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		days = append(days, strings.TrimPrefix(name, bookTablePrefix))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table names: %w", err)
	}
	return days, nil
}

// Writer pins the partition to the day the ingestion process started and
// creates the day's tables on first use. The writer never migrates across a
// day boundary mid-run.
type Writer struct {
	client questdb.Client
	day    string

	mu    sync.Mutex
	ready bool
}

// NewWriter creates a write-side partition provider pinned to the given start time.
func NewWriter(client questdb.Client, start time.Time) *Writer {
	return &Writer{client: client, day: start.Format(DayLayout)}
}

// Day returns the pinned partition day, creating its tables lazily. A failed
// creation is retried on the next call rather than cached.
func (w *Writer) Day(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.ready {
		if err := w.ensure(ctx); err != nil {
			return "", err
		}
		w.ready = true
	}
	return w.day, nil
}

func (w *Writer) ensure(ctx context.Context) error {
	ddl := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			symbol SYMBOL INDEX,
			ts LONG,
			price DOUBLE,
			quantity LONG,
			side SYMBOL
		)`, BookTable(w.day)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			symbol SYMBOL INDEX,
			ts LONG,
			last_price DOUBLE,
			last_size DOUBLE,
			underlying_price DOUBLE
		)`, TopOfBookTable(w.day)),
	}

	for _, stmt := range ddl {
		if err := w.client.Exec(ctx, stmt); err != nil {
			return errors.WrapCoded(errors.StoreWriteError,
				fmt.Sprintf("failed to create partition %s", w.day), err)
		}
	}
	return nil
}
