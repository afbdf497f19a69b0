package topofbook

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	pkgerrors "github.com/2187Nick/schwab-market-depth/pkg/errors"
	mock "github.com/2187Nick/schwab-market-depth/pkg/questdb/mock"
	"github.com/2187Nick/schwab-market-depth/pkg/util"
)

type fixedDay string

func (d fixedDay) Day(_ context.Context) (string, error) { return string(d), nil }

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

func TestTopOfBook_HasValues(t *testing.T) {
	assert.False(t, (&TopOfBook{Symbol: "SPY", Ts: 1}).HasValues())
	assert.True(t, (&TopOfBook{Symbol: "SPY", Ts: 1, LastPrice: util.Float64Ptr(1.5)}).HasValues())
	assert.True(t, (&TopOfBook{Symbol: "SPY", Ts: 1, LastSize: util.Float64Ptr(3)}).HasValues())
	assert.True(t, (&TopOfBook{Symbol: "SPY", Ts: 1, UnderlyingPrice: util.Float64Ptr(500.25)}).HasValues())
}

func TestRepository_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("skips all-nil row", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := NewRepository(mock.NewMockClient(ctrl), fixedDay("20250415"))
		err := repo.Append(ctx, &TopOfBook{Symbol: "SPY", Ts: 1})
		assert.NoError(t, err)
	})

	t.Run("inserts partial row", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mock.NewMockClient(ctrl)
		client.EXPECT().
			Exec(ctx, gomock.Any(), "SPY", int64(99), util.Float64Ptr(1.5), (*float64)(nil), (*float64)(nil)).
			Return(nil)

		repo := NewRepository(client, fixedDay("20250415"))
		err := repo.Append(ctx, &TopOfBook{Symbol: "SPY", Ts: 99, LastPrice: util.Float64Ptr(1.5)})
		assert.NoError(t, err)
	})

	t.Run("wraps insert failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mock.NewMockClient(ctrl)
		client.EXPECT().
			Exec(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("write failed"))

		repo := NewRepository(client, fixedDay("20250415"))
		err := repo.Append(ctx, &TopOfBook{Symbol: "SPY", Ts: 1, LastSize: util.Float64Ptr(2)})
		assert.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.StoreWriteError))
	})
}

func TestRepository_AppendPlaceholder(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// The placeholder bypasses the HasValues guard: all value columns null.
	client := mock.NewMockClient(ctrl)
	client.EXPECT().
		Exec(ctx, gomock.Any(), "SPY   250415C00500000", int64(7),
			(*float64)(nil), (*float64)(nil), (*float64)(nil)).
		Return(nil)

	repo := NewRepository(client, fixedDay("20250415"))
	err := repo.AppendPlaceholder(ctx, "SPY   250415C00500000", 7)
	assert.NoError(t, err)
}

func TestRepository_AtOrBefore(t *testing.T) {
	ctx := context.Background()

	t.Run("returns latest row at or before ts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mock.NewMockClient(ctrl)
		client.EXPECT().
			QueryRow(ctx, gomock.Any(), "SPY", int64(500)).
			Return(fakeRow{scan: func(dest ...any) error {
				*(dest[0].(*string)) = "SPY"
				*(dest[1].(*int64)) = 450
				*(dest[2].(**float64)) = util.Float64Ptr(1.5)
				return nil
			}})

		repo := NewRepository(client, fixedDay("20250415"))
		row, err := repo.AtOrBefore(ctx, "SPY", 500)
		assert.NoError(t, err)
		if assert.NotNil(t, row) {
			assert.Equal(t, int64(450), row.Ts)
			assert.Equal(t, 1.5, *row.LastPrice)
			assert.Nil(t, row.LastSize)
		}
	})

	t.Run("nil on no rows", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mock.NewMockClient(ctrl)
		client.EXPECT().
			QueryRow(ctx, gomock.Any(), "SPY", int64(500)).
			Return(fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }})

		repo := NewRepository(client, fixedDay("20250415"))
		row, err := repo.AtOrBefore(ctx, "SPY", 500)
		assert.NoError(t, err)
		assert.Nil(t, row)
	})
}
