package ingest

import (
	"context"
	"time"

	"github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/book"
	"github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/topofbook"
	"github.com/2187Nick/schwab-market-depth/internal/stream"
	"github.com/2187Nick/schwab-market-depth/pkg/errors"
	"github.com/2187Nick/schwab-market-depth/pkg/logger"
	"github.com/2187Nick/schwab-market-depth/pkg/questdb"
)

// Fanout mirrors committed events to downstream consumers. Implementations
// are best-effort; failures never affect the store write.
type Fanout interface {
	PublishBook(ctx context.Context, symbol string, ts int64, side string, levels []book.Level)
	PublishTopOfBook(ctx context.Context, row *topofbook.TopOfBook)
}

// Processor normalizes decoded transport frames into event-store writes.
// All rows from one frame commit in a single transaction.
type Processor struct {
	books  book.LevelRepository
	tops   topofbook.TopOfBookRepository
	dbTx   questdb.TX
	fanout Fanout
	logger logger.Interface
	now    func() time.Time
}

// NewProcessor creates a new ingestion processor. fanout may be nil.
func NewProcessor(
	books book.LevelRepository,
	tops topofbook.TopOfBookRepository,
	dbTx questdb.TX,
	fanout Fanout,
	logger logger.Interface,
) *Processor {
	return &Processor{
		books:  books,
		tops:   tops,
		dbTx:   dbTx,
		fanout: fanout,
		logger: logger,
		now:    time.Now,
	}
}

// HandleFrame processes one raw transport frame. A malformed frame is logged
// with its payload and dropped; a storage failure is logged and the write
// abandoned. Neither stops the ingestion loop.
func (p *Processor) HandleFrame(ctx context.Context, raw []byte) {
	env, err := stream.Decode(raw)
	if err != nil {
		p.logger.Error(err,
			logger.Field{Key: "code", Value: errors.MalformedMessageError},
			logger.Field{Key: "payload", Value: string(raw)})
		return
	}
	if len(env.Data) == 0 {
		return
	}

	if err := p.handleEnvelope(ctx, env); err != nil {
		p.logger.Error(err, logger.Field{Key: "code", Value: errors.CodeOf(err)})
	}
}

func (p *Processor) handleEnvelope(ctx context.Context, env *stream.Envelope) error {
	txCtx, err := p.dbTx.Begin(ctx)
	if err != nil {
		return errors.WrapCoded(errors.StoreWriteError, "failed to begin ingest transaction", err)
	}
	defer p.dbTx.Rollback(txCtx)

	var published []func()
	for _, item := range env.Data {
		ts := item.Timestamp
		if ts == 0 {
			ts = p.now().UnixMilli()
		}

		for _, content := range item.Content {
			if content.Key == "" {
				continue
			}

			switch item.Service {
			case stream.ServiceBook:
				fns, err := p.appendBook(txCtx, content, ts)
				if err != nil {
					return err
				}
				published = append(published, fns...)
			case stream.ServiceTopOfBook:
				fn, err := p.appendTopOfBook(txCtx, content, ts)
				if err != nil {
					return err
				}
				if fn != nil {
					published = append(published, fn)
				}
			}
		}
	}

	if err := p.dbTx.Commit(txCtx); err != nil {
		return errors.WrapCoded(errors.StoreWriteError, "failed to commit ingest transaction", err)
	}

	// Mirror to downstream consumers only after the commit succeeded.
	for _, publish := range published {
		publish()
	}
	return nil
}

func (p *Processor) appendBook(ctx context.Context, content stream.Content, ts int64) ([]func(), error) {
	var published []func()

	sides := []struct {
		side   string
		levels []stream.Level
	}{
		{book.SideBid, content.Bids},
		{book.SideAsk, content.Asks},
	}

	for _, s := range sides {
		if len(s.levels) == 0 {
			continue
		}

		levels := make([]book.Level, len(s.levels))
		for i, l := range s.levels {
			levels[i] = book.Level{Price: l.Price, Quantity: l.Quantity}
		}

		if err := p.books.AppendLevels(ctx, content.Key, ts, s.side, levels); err != nil {
			return nil, err
		}

		symbol, side := content.Key, s.side
		published = append(published, func() {
			if p.fanout != nil {
				p.fanout.PublishBook(ctx, symbol, ts, side, levels)
			}
		})
	}

	return published, nil
}

func (p *Processor) appendTopOfBook(ctx context.Context, content stream.Content, ts int64) (func(), error) {
	row := &topofbook.TopOfBook{
		Symbol:          content.Key,
		Ts:              ts,
		LastPrice:       content.LastPrice,
		LastSize:        content.LastSize,
		UnderlyingPrice: content.UnderlyingPrice,
	}
	if !row.HasValues() {
		return nil, nil
	}

	if err := p.tops.Append(ctx, row); err != nil {
		return nil, err
	}

	return func() {
		if p.fanout != nil {
			p.fanout.PublishTopOfBook(ctx, row)
		}
	}, nil
}

// SeedSymbol writes the activation placeholders for a newly active symbol in
// one transaction, so the symbol is queryable before real data arrives.
func (p *Processor) SeedSymbol(ctx context.Context, symbol string) error {
	ts := p.now().UnixMilli()

	txCtx, err := p.dbTx.Begin(ctx)
	if err != nil {
		return errors.WrapCoded(errors.StoreWriteError, "failed to begin seed transaction", err)
	}
	defer p.dbTx.Rollback(txCtx)

	placeholder := []book.Level{{Price: 0, Quantity: 0}}
	if err := p.books.AppendLevels(txCtx, symbol, ts, book.SideBid, placeholder); err != nil {
		return err
	}
	if err := p.books.AppendLevels(txCtx, symbol, ts, book.SideAsk, placeholder); err != nil {
		return err
	}
	if err := p.tops.AppendPlaceholder(txCtx, symbol, ts); err != nil {
		return err
	}

	if err := p.dbTx.Commit(txCtx); err != nil {
		return errors.WrapCoded(errors.StoreWriteError, "failed to commit seed transaction", err)
	}

	p.logger.Info("seeded placeholder data",
		logger.Field{Key: "symbol", Value: symbol},
		logger.Field{Key: "ts", Value: ts})
	return nil
}
