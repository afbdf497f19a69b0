package bootstrap

import (
	depthDomain "github.com/2187Nick/schwab-market-depth/internal/domain/depth"
	ingestDomain "github.com/2187Nick/schwab-market-depth/internal/domain/ingest"
	ingestUc "github.com/2187Nick/schwab-market-depth/internal/usecase/ingest"
	snapshotUc "github.com/2187Nick/schwab-market-depth/internal/usecase/snapshot"
	"github.com/2187Nick/schwab-market-depth/pkg/questdb"
)

// Fanout re-exports the processor's fan-out dependency for wiring.
type Fanout = ingestUc.Fanout

// Usecase holds the usecases for one process.
type Usecase struct {
	Depth  depthDomain.Usecase
	Ingest ingestDomain.Usecase
}

// registerUsecase registers the usecases.
func (b *Bootstrap) registerUsecase(config Config) {
	b.Usecase.Depth = snapshotUc.NewUsecase(b.Repository.Books, b.Repository.Tops, b.Registry, b.Logger)
	b.Usecase.Ingest = ingestUc.NewProcessor(
		b.Repository.Books,
		b.Repository.Tops,
		questdb.NewTxRunner(b.QuestDB),
		config.Fanout,
		b.Logger,
	)
}
