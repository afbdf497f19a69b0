package book

import (
	"context"
)

// LevelRepository is the interface for the book-level event repository.
//
//go:generate mockgen -source=interface.go -destination=mock/repository_mock.go -package=mock
type LevelRepository interface {
	AppendLevels(ctx context.Context, symbol string, ts int64, side string, levels []Level) error
	LatestTimestamp(ctx context.Context, symbol string) (*int64, error)
	LevelsAt(ctx context.Context, symbol string, ts int64) ([]PriceLevel, error)
	DistinctTimestamps(ctx context.Context, symbol string) ([]int64, error)
	DistinctSymbols(ctx context.Context) ([]string, error)
}
