package bootstrap

import (
	bookInfra "github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/book"
	"github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/partition"
	topInfra "github.com/2187Nick/schwab-market-depth/internal/infrastructure/questdb/topofbook"
)

// Repository holds the store repositories for one process.
type Repository struct {
	Partition partition.Provider
	Books     bookInfra.LevelRepository
	Tops      topInfra.TopOfBookRepository
}

// registerRepository registers the repositories with the role's partition
// discipline.
func (b *Bootstrap) registerRepository(config Config) {
	switch config.Role {
	case RoleIngest:
		b.Repository.Partition = partition.NewWriter(b.QuestDB, config.Start)
	default:
		b.Repository.Partition = partition.NewResolver(b.QuestDB)
	}

	b.Repository.Books = bookInfra.NewRepository(b.QuestDB, b.Repository.Partition)
	b.Repository.Tops = topInfra.NewRepository(b.QuestDB, b.Repository.Partition)
}
