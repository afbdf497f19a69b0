package topofbook

import (
	"context"
)

// TopOfBookRepository is the interface for the top-of-book event repository.
//
//go:generate mockgen -source=interface.go -destination=mock/repository_mock.go -package=mock
type TopOfBookRepository interface {
	Append(ctx context.Context, row *TopOfBook) error
	AppendPlaceholder(ctx context.Context, symbol string, ts int64) error
	AtOrBefore(ctx context.Context, symbol string, ts int64) (*TopOfBook, error)
}
