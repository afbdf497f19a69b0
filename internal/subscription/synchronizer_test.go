package subscription

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/2187Nick/schwab-market-depth/internal/stream"
	"github.com/2187Nick/schwab-market-depth/pkg/logger"
)

type subscribeCall struct {
	service stream.ServiceKind
	symbol  string
	fields  string
}

type fakeTransport struct {
	calls []subscribeCall
	fail  func(service stream.ServiceKind, symbol string) error
}

func (f *fakeTransport) Start(_ context.Context, _ stream.Handler) error { return nil }

func (f *fakeTransport) Subscribe(_ context.Context, service stream.ServiceKind, symbol, fields string) error {
	if f.fail != nil {
		if err := f.fail(service, symbol); err != nil {
			return err
		}
	}
	f.calls = append(f.calls, subscribeCall{service: service, symbol: symbol, fields: fields})
	return nil
}

func (f *fakeTransport) Close() error { return nil }

type fakeSeeder struct {
	seeded []string
	err    error
}

func (f *fakeSeeder) HandleFrame(_ context.Context, _ []byte) {}

func (f *fakeSeeder) SeedSymbol(_ context.Context, symbol string) error {
	if f.err != nil {
		return f.err
	}
	f.seeded = append(f.seeded, symbol)
	return nil
}

func activeSymbolsServer(t *testing.T, symbols *[]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /active_symbols", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, writeJSON(w, *symbols))
	})
	return httptest.NewServer(mux)
}

func writeJSON(w http.ResponseWriter, symbols []string) error {
	body := `{"symbols":[`
	for i, s := range symbols {
		if i > 0 {
			body += ","
		}
		body += `"` + s + `"`
	}
	body += `]}`
	_, err := w.Write([]byte(body))
	return err
}

func newSynchronizer(t *testing.T, apiURL string, transport *fakeTransport, seeder *fakeSeeder) *Synchronizer {
	t.Helper()
	lg, err := logger.NewLogger()
	assert.NoError(t, err)

	return NewSynchronizer(Config{
		APIURL:       apiURL,
		Interval:     5 * time.Second,
		SeedSymbol:   "SPY   250415C00500000",
		BookFields:   "0,1,2,3,4,5,6,7,8",
		LevelsFields: "0,1,2,3,4,18,35",
	}, transport, seeder, lg)
}

func TestDefaultSeedSymbol(t *testing.T) {
	now := time.Date(2025, 4, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "SPY   250415C00500000", DefaultSeedSymbol(now))
}

func TestSynchronizer_Cycle(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds and subscribes new symbols", func(t *testing.T) {
		symbols := []string{"AAA", "BBB"}
		srv := activeSymbolsServer(t, &symbols)
		defer srv.Close()

		transport := &fakeTransport{}
		seeder := &fakeSeeder{}
		s := newSynchronizer(t, srv.URL, transport, seeder)

		s.Cycle(ctx)

		assert.Equal(t, []string{"AAA", "BBB"}, seeder.seeded)
		assert.Equal(t, []subscribeCall{
			{service: stream.ServiceBook, symbol: "AAA", fields: "0,1,2,3,4,5,6,7,8"},
			{service: stream.ServiceTopOfBook, symbol: "AAA", fields: "0,1,2,3,4,18,35"},
			{service: stream.ServiceBook, symbol: "BBB", fields: "0,1,2,3,4,5,6,7,8"},
			{service: stream.ServiceTopOfBook, symbol: "BBB", fields: "0,1,2,3,4,18,35"},
		}, transport.calls)
	})

	t.Run("does not re-seed or re-subscribe", func(t *testing.T) {
		symbols := []string{"AAA"}
		srv := activeSymbolsServer(t, &symbols)
		defer srv.Close()

		transport := &fakeTransport{}
		seeder := &fakeSeeder{}
		s := newSynchronizer(t, srv.URL, transport, seeder)

		s.Cycle(ctx)
		s.Cycle(ctx)

		assert.Equal(t, []string{"AAA"}, seeder.seeded)
		assert.Len(t, transport.calls, 2)
	})

	t.Run("falls back to seed symbol on empty set", func(t *testing.T) {
		symbols := []string{}
		srv := activeSymbolsServer(t, &symbols)
		defer srv.Close()

		transport := &fakeTransport{}
		seeder := &fakeSeeder{}
		s := newSynchronizer(t, srv.URL, transport, seeder)

		s.Cycle(ctx)

		// The fallback symbol is seeded like any other so its placeholder
		// rows exist, and it is seeded only once.
		assert.Equal(t, []string{"SPY   250415C00500000"}, seeder.seeded)
		if assert.Len(t, transport.calls, 2) {
			assert.Equal(t, "SPY   250415C00500000", transport.calls[0].symbol)
		}

		s.Cycle(ctx)
		assert.Equal(t, []string{"SPY   250415C00500000"}, seeder.seeded)
	})

	t.Run("degrades to seed symbol when fetch fails", func(t *testing.T) {
		transport := &fakeTransport{}
		seeder := &fakeSeeder{}
		s := newSynchronizer(t, "http://127.0.0.1:1", transport, seeder)

		s.Cycle(ctx)

		assert.Equal(t, []string{"SPY   250415C00500000"}, seeder.seeded)
		if assert.Len(t, transport.calls, 2) {
			assert.Equal(t, "SPY   250415C00500000", transport.calls[0].symbol)
		}
	})

	t.Run("retries seeding after failure", func(t *testing.T) {
		symbols := []string{"AAA"}
		srv := activeSymbolsServer(t, &symbols)
		defer srv.Close()

		transport := &fakeTransport{}
		seeder := &fakeSeeder{err: errors.New("store down")}
		s := newSynchronizer(t, srv.URL, transport, seeder)

		s.Cycle(ctx)
		assert.Empty(t, seeder.seeded)

		seeder.err = nil
		s.Cycle(ctx)
		assert.Equal(t, []string{"AAA"}, seeder.seeded)
	})

	t.Run("retries subscription after failure", func(t *testing.T) {
		symbols := []string{"AAA"}
		srv := activeSymbolsServer(t, &symbols)
		defer srv.Close()

		failing := true
		transport := &fakeTransport{
			fail: func(service stream.ServiceKind, _ string) error {
				if failing && service == stream.ServiceTopOfBook {
					return errors.New("connection reset")
				}
				return nil
			},
		}
		seeder := &fakeSeeder{}
		s := newSynchronizer(t, srv.URL, transport, seeder)

		// First cycle gets the book subscribe through but fails level one,
		// so the symbol stays unsubscribed.
		s.Cycle(ctx)
		assert.Len(t, transport.calls, 1)

		failing = false
		s.Cycle(ctx)
		assert.Len(t, transport.calls, 3)
	})
}

func TestNewSynchronizer_DefaultsSeedSymbol(t *testing.T) {
	lg, err := logger.NewLogger()
	assert.NoError(t, err)

	s := NewSynchronizer(Config{Interval: time.Second}, &fakeTransport{}, &fakeSeeder{}, lg)
	assert.NotEmpty(t, s.cfg.SeedSymbol)
}
