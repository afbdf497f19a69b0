package bootstrap

import (
	"time"

	"github.com/2187Nick/schwab-market-depth/internal/registry"
	"github.com/2187Nick/schwab-market-depth/pkg/logger"
	"github.com/2187Nick/schwab-market-depth/pkg/questdb"
)

// Role selects which side of the store a process wires: the query service
// re-resolves the read partition per operation, the ingestion worker pins
// the partition to its start date.
type Role int

const (
	// RoleQuery is the read-side query service.
	RoleQuery Role = iota
	// RoleIngest is the write-side ingestion worker.
	RoleIngest
)

// Bootstrap wires repositories, usecases and surfaces for one process.
type Bootstrap struct {
	Usecase    Usecase
	Logger     logger.Interface
	Repository Repository
	Registry   *registry.Registry

	QuestDB questdb.Client
}

// Config is the config for the bootstrap.
type Config struct {
	QuestDB questdb.Client
	Logger  logger.Interface
	Role    Role
	// Start pins the write partition; only used by RoleIngest.
	Start time.Time
	// Fanout is the optional event mirror; only used by RoleIngest.
	Fanout Fanout
}

// Init initializes the bootstrap.
func (b *Bootstrap) Init(config Config) Bootstrap {
	b.QuestDB = config.QuestDB
	b.Logger = config.Logger
	b.Registry = registry.New()

	b.registerRepository(config)
	b.registerUsecase(config)

	return *b
}
