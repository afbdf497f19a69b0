// Package subscription reconciles the query service's active-symbol set
// against the subscriptions actually issued on the upstream transport. The
// two sides live in different processes and are intentionally coupled only
// by polling, so either side can restart independently.
package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	ingestDomain "github.com/2187Nick/schwab-market-depth/internal/domain/ingest"
	"github.com/2187Nick/schwab-market-depth/internal/stream"
	"github.com/2187Nick/schwab-market-depth/pkg/errors"
	"github.com/2187Nick/schwab-market-depth/pkg/logger"
)

// DefaultSeedSymbol derives the fallback instrument for a given day, an SPY
// call at the 500 strike expiring that day. Its data is irrelevant; it only
// keeps the upstream connection from idling out with zero subscriptions.
func DefaultSeedSymbol(now time.Time) string {
	return fmt.Sprintf("SPY   %sC00500000", now.Format("060102"))
}

// Config holds the synchronizer settings.
type Config struct {
	APIURL       string
	Interval     time.Duration
	SeedSymbol   string
	BookFields   string
	LevelsFields string
}

// Synchronizer is the periodic reconciliation loop inside the ingestion
// worker. It runs one cycle at a time on a single goroutine; cycle work is
// one HTTP fetch plus a handful of subscribe calls, well inside the interval.
type Synchronizer struct {
	cfg       Config
	transport stream.Client
	seeder    ingestDomain.Usecase
	httpc     *http.Client
	logger    logger.Interface

	// Local bookkeeping, only touched by the loop goroutine.
	known      map[string]struct{}
	subscribed map[string]struct{}
}

// NewSynchronizer creates a synchronizer.
func NewSynchronizer(cfg Config, transport stream.Client, seeder ingestDomain.Usecase, logger logger.Interface) *Synchronizer {
	if cfg.SeedSymbol == "" {
		cfg.SeedSymbol = DefaultSeedSymbol(time.Now())
	}
	return &Synchronizer{
		cfg:        cfg,
		transport:  transport,
		seeder:     seeder,
		httpc:      &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		known:      make(map[string]struct{}),
		subscribed: make(map[string]struct{}),
	}
}

// Run executes reconciliation cycles on a fixed interval until ctx is done.
// The first cycle runs immediately.
func (s *Synchronizer) Run(ctx context.Context) {
	s.logger.Info("subscription synchronizer started",
		logger.Field{Key: "interval", Value: s.cfg.Interval.String()},
		logger.Field{Key: "seed_symbol", Value: s.cfg.SeedSymbol})

	s.Cycle(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("subscription synchronizer stopped")
			return
		case <-ticker.C:
			s.Cycle(ctx)
		}
	}
}

// Cycle runs one reconciliation pass: fetch the externally visible active
// set, seed placeholders for symbols seen for the first time, then subscribe
// whatever is not yet subscribed upstream. An empty set falls back to the
// default seed symbol, which takes the same seed-and-track path so its
// placeholder rows exist before real data arrives.
func (s *Synchronizer) Cycle(ctx context.Context) {
	active := s.fetchActiveSymbols(ctx)
	if len(active) == 0 {
		active = []string{s.cfg.SeedSymbol}
	}

	for _, symbol := range active {
		if _, ok := s.known[symbol]; ok {
			continue
		}
		if err := s.seeder.SeedSymbol(ctx, symbol); err != nil {
			// Leave the symbol unknown so seeding is retried next cycle.
			s.logger.Error(err, logger.Field{Key: "symbol", Value: symbol})
			continue
		}
		s.known[symbol] = struct{}{}
		s.logger.Info("new active symbol", logger.Field{Key: "symbol", Value: symbol})
	}

	s.subscribeAll(ctx, active)
}

type activeSymbolsResponse struct {
	Symbols []string `json:"symbols"`
}

// fetchActiveSymbols reads the registry through the query service's boundary
// interface. A failed fetch degrades to an empty set; the loop keeps going.
func (s *Synchronizer) fetchActiveSymbols(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.APIURL+"/active_symbols", nil)
	if err != nil {
		s.logger.Error(fmt.Errorf("failed to build active_symbols request: %w", err))
		return nil
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		s.logger.Warn("failed to fetch active symbols",
			logger.Field{Key: "error", Value: err.Error()})
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("unexpected active_symbols status",
			logger.Field{Key: "status", Value: resp.StatusCode})
		return nil
	}

	var body activeSymbolsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.logger.Error(fmt.Errorf("failed to decode active_symbols response: %w", err))
		return nil
	}
	return body.Symbols
}

// subscribeAll issues upstream subscriptions for every symbol not already
// subscribed. The subscribed map is updated only on success, so a failed
// symbol is retried on the next cycle.
func (s *Synchronizer) subscribeAll(ctx context.Context, symbols []string) {
	for _, symbol := range symbols {
		if _, ok := s.subscribed[symbol]; ok {
			continue
		}

		if err := s.transport.Subscribe(ctx, stream.ServiceBook, symbol, s.cfg.BookFields); err != nil {
			s.logger.Error(errors.WrapCoded(errors.UpstreamSubscribeError, "book subscribe failed", err),
				logger.Field{Key: "symbol", Value: symbol})
			continue
		}
		if err := s.transport.Subscribe(ctx, stream.ServiceTopOfBook, symbol, s.cfg.LevelsFields); err != nil {
			s.logger.Error(errors.WrapCoded(errors.UpstreamSubscribeError, "level one subscribe failed", err),
				logger.Field{Key: "symbol", Value: symbol})
			continue
		}

		s.subscribed[symbol] = struct{}{}
		s.logger.Info("subscribed upstream", logger.Field{Key: "symbol", Value: symbol})
	}
}
